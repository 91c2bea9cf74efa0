package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRent-Marketplace/service-rental/internal/config"
	"github.com/GoRent-Marketplace/service-rental/migrations"
)

func TestUsesSQLMigrations(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		env    string
		want   bool
	}{
		{"postgres development", config.DriverPostgres, "development", true},
		{"postgres production", config.DriverPostgres, "production", true},
		{"sqlite development", config.DriverSQLite, "development", false},
		{"sqlite production", config.DriverSQLite, "production", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.ServiceConfig{AppEnv: tt.env, DBConfig: config.DatabaseConfig{Driver: tt.driver}}
			assert.Equal(t, tt.want, usesSQLMigrations(cfg))
		})
	}
}

func TestEmbeddedMigrationsCreateOverlapConstraint(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "bookings_no_overlap")
	assert.Contains(t, string(raw), "WHERE (status <> 'cancelled')")
}
