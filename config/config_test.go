package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/campus-canteen/models"
)

func TestGetDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "250ms")
	assert.Equal(t, 250*time.Millisecond, getDuration("POLL_INTERVAL", time.Second))

	t.Setenv("POLL_INTERVAL", "3")
	assert.Equal(t, 3*time.Second, getDuration("POLL_INTERVAL", time.Second))

	t.Setenv("POLL_INTERVAL", "soon")
	assert.Equal(t, time.Second, getDuration("POLL_INTERVAL", time.Second))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_IDLE_TTL", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionIdleTTL)
}

func TestInitDBSQLite(t *testing.T) {
	db, err := InitDB(Config{DBDriver: "sqlite", DBDSN: "file:config_test?mode=memory&cache=shared"})
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.MenuItem{}))
	assert.True(t, db.Migrator().HasTable(&models.OrderItem{}))
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
