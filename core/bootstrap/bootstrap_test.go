package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
	coredatabase "github.com/RagaBusiness/manoya-tg-bot/core/database"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/state"
)

func noLogger(*coreconfig.Config) error { return nil }

func configWith(t *testing.T, storage coreconfig.StorageConfig) *coreconfig.Config {
	t.Helper()
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}, Storage: storage}
	require.NoError(t, coreconfig.Normalize(cfg))
	return cfg
}

func TestRunMemoryBackend(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Config:     configWith(t, coreconfig.StorageConfig{}),
		LoggerInit: noLogger,
	})
	require.NoError(t, err)
	assert.IsType(t, &state.MemoryStore{}, res.Store)
	assert.Nil(t, res.DB)
	assert.NoError(t, res.Close())
}

func TestRunRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	res, err := Run(context.Background(), Options{
		Config:     configWith(t, coreconfig.StorageConfig{Backend: "redis", RedisURL: "redis://" + mr.Addr()}),
		LoggerInit: noLogger,
	})
	require.NoError(t, err)
	assert.IsType(t, &state.RedisStore{}, res.Store)
	require.NotNil(t, res.Redis)
	assert.NoError(t, res.Close())
}

func TestRunPostgresBackend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	var migrated bool
	res, err := Run(context.Background(), Options{
		Config:     configWith(t, coreconfig.StorageConfig{Backend: "postgres"}),
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(db, "postgres"), nil
		},
		Migrate: func(context.Context, coredatabase.Config) error {
			migrated = true
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.IsType(t, &state.PostgresStore{}, res.Store)
	require.NoError(t, res.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunPostgresMigrationFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	_, err = Run(context.Background(), Options{
		Config:     configWith(t, coreconfig.StorageConfig{Backend: "postgres"}),
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(db, "postgres"), nil
		},
		Migrate: func(context.Context, coredatabase.Config) error { return errors.New("dirty") },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLoggerFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     configWith(t, coreconfig.StorageConfig{}),
		LoggerInit: func(*coreconfig.Config) error { return errors.New("no sink") },
	})
	assert.Error(t, err)
}

func TestRunNilConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
