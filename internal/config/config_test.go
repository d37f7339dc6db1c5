package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "test-secret-key-for-jwt")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "1h", cfg.JWT.AccessExpiration)
	assert.Equal(t, 5*time.Minute, cfg.Taxonomy.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.SMTP.Timeout)
	assert.True(t, cfg.Taxonomy.Seed)
	assert.False(t, cfg.OAuth2Google.Enabled())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY is required")
}

func TestLoad_GoogleRequiresAllFields(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLIENT_ID", "client-id")

	_, err := Load()
	assert.ErrorContains(t, err, "CLIENT_SECRET is required")

	t.Setenv("CLIENT_SECRET", "client-secret")
	t.Setenv("REDIRECT_URL", "http://localhost:8080/api/v1/auth/oauth/callback/google")
	t.Setenv("SCOPES", "openid,email")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.OAuth2Google.Enabled())
	assert.Equal(t, []string{"openid", "email"}, cfg.OAuth2Google.Scopes)
}

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "feedback", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://app:pw@db:5433/feedback?sslmode=disable", cfg.DatabaseURL())
}

func TestConfig_InviteURL(t *testing.T) {
	cfg := &Config{
		App:        AppConfig{PublicURL: "https://radar.example.com/"},
		Invitation: InvitationConfig{AcceptPath: "feedback/invite/"},
	}
	got := cfg.InviteURL("0190a5b4-7c1e-7d2a-9f00-1a2b3c4d5e6f")
	assert.Equal(t, "https://radar.example.com/feedback/invite/0190a5b4-7c1e-7d2a-9f00-1a2b3c4d5e6f", got)
}
