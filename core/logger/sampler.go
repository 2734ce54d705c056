package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type sampleRatio struct{ num, den uint64 }

// sampler passes num out of every den events. Without a ratio every event passes.
type sampler struct {
	ratio atomic.Pointer[sampleRatio]
	seen  atomic.Uint64
}

func newSampler(num, den int) *sampler {
	s := &sampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the count.
func (s *sampler) Set(num, den int) {
	defer s.seen.Store(0)
	if num <= 0 || den <= 0 {
		s.ratio.Store(nil)
		return
	}
	s.ratio.Store(&sampleRatio{num: uint64(min(num, den)), den: uint64(den)})
}

// Allow reports whether the next event passes.
func (s *sampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil {
		return true
	}
	n := s.seen.Add(1) - 1
	return n%r.den < r.num
}

// parseSampleSpec accepts "num/den", "N" (one in N) or "P%".
func parseSampleSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "":
		return 0, 0
	case strings.HasSuffix(spec, "%"):
		p, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(spec, "%")))
		if err != nil || p <= 0 {
			return 0, 0
		}
		return min(p, 100), 100
	case strings.Contains(spec, "/"):
		numStr, denStr, _ := strings.Cut(spec, "/")
		num, err1 := strconv.Atoi(strings.TrimSpace(numStr))
		den, err2 := strconv.Atoi(strings.TrimSpace(denStr))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
