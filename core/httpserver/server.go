// Package httpserver hosts the ingress HTTP endpoints: the health check and,
// in webhook mode, the Telegram update receiver.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/RagaBusiness/manoya-tg-bot/core/buildinfo"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
)

const shutdownTimeout = 10 * time.Second

// Options configures the ingress server.
type Options struct {
	Addr    string
	Service string
	// WebhookPath and Webhook are mounted together; either empty disables the route.
	WebhookPath string
	Webhook     http.Handler
}

// Server wraps http.Server with the chi router built from Options.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// NewRouter returns the chi router serving GET / and the optional webhook route.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	service := opts.Service
	if service == "" {
		service = "manoya"
	}
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": service,
			"version": buildinfo.Version,
		})
	})
	if opts.Webhook != nil && opts.WebhookPath != "" {
		r.Method(http.MethodPost, opts.WebhookPath, opts.Webhook)
	}
	return r
}

// New builds a server; call Start to begin listening.
func New(opts Options) *Server {
	return &Server{srv: &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously; later serve errors are delivered on the channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.HTTP.LogAttrs(logger.Background(), slog.LevelInfo, "http.listen",
			slog.String("status", "ok"),
			slog.String("addr", ln.Addr().String()),
		)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh, nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	logger.HTTP.LogAttrs(ctx, slog.LevelInfo, "http.shutdown", slog.String("status", status))
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.HTTP.LogAttrs(r.Context(), level, "http.request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_code", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
