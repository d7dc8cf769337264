package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.Analytics.ResultTTLMinutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRE_HOURS", "2")
	t.Setenv("ANALYTICS_RESULT_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 2, cfg.JWT.ExpireHours)
	assert.Equal(t, 15, cfg.Analytics.ResultTTLMinutes)
}

func TestDSNFromComponents(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5433", User: "app", Password: "pw",
		DBName: "hotelsight", SSLMode: "require",
	}
	assert.Equal(t, "postgres://app:pw@db:5433/hotelsight?sslmode=require", c.DSN())
}

func TestDSNPrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u:p@host/db", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@host/db", c.DSN())
}
