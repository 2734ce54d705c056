package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedMigrations(t *testing.T) {
	files := listMigrationFiles(migrationsFS, migrationsDir)
	assert.Equal(t, []string{"0001_dialog_sessions.up.sql"}, files)
}

func TestSelectApplied(t *testing.T) {
	files := []string{"0001_a.up.sql", "0002_b.up.sql", "0003_c.up.sql"}
	assert.Equal(t, []string{"0002_b.up.sql", "0003_c.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
	assert.Equal(t, uint64(2), parseVersion("0002_b.up.sql"))
	assert.Equal(t, uint64(0), parseVersion("junk"))
}

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "manoya"}
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/manoya?sslmode=disable", cfg.URL())
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}
