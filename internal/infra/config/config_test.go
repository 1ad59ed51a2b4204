package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_ADDR", "TICKET_BACKEND", "DATABASE_URL", "DEFAULT_SHIPPING_FEE", "CORS_ALLOWED_ORIGINS", "GUEST_TTL_HOURS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, "firestore", cfg.TicketBackend)
	assert.False(t, cfg.UsePostgresTickets())
	assert.Equal(t, 5.0, cfg.DefaultShipping)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*24*time.Hour, cfg.GuestTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICKET_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("TICKET_POLL_INTERVAL", "500ms")
	t.Setenv("DEFAULT_SHIPPING_FEE", "7.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test ,")
	t.Setenv("REDIS_DB", "oops")

	cfg := Load()
	assert.True(t, cfg.UsePostgresTickets())
	assert.Equal(t, 500*time.Millisecond, cfg.TicketPollInterval)
	assert.Equal(t, 7.5, cfg.DefaultShipping)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
}
