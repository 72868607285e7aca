package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
database:
  uri: mongodb://localhost:27017/spectrum
jwt:
  secret: s3cret
`

func clearOverrides(t *testing.T) {
	for _, env := range []string{"MONGODB_URI", "JWT_SECRET", "REDIS_ADDR", "REDIS_PASSWORD",
		"GEMINI_API_KEY", "COGNITO_APP_CLIENT_SECRET", "SMTP_PASSWORD", "PORT"} {
		t.Setenv(env, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearOverrides(t)

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 1313, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "ap-south-1", cfg.Cognito.Region)
	assert.Equal(t, 24*60, cfg.JWT.Expiry)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenCacheTTL)
	assert.Equal(t, 3, cfg.RateLimit.Submissions)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, uint64(42), cfg.Screening.NetworkSeed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestParse_FileValues(t *testing.T) {
	clearOverrides(t)

	cfg, err := Parse([]byte(minimalYAML + `
server:
  port: 8080
redis:
  addr: localhost:6379
rateLimit:
  submissions: 10
  window: 15m
smtp:
  host: smtp.example.org
  moderationInbox: mods@example.org
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.RateLimit.Submissions)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.SMTPEnabled())
}

func TestParse_EnvOverrides(t *testing.T) {
	clearOverrides(t)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MONGODB_URI", "mongodb://db/other")
	t.Setenv("PORT", "9000")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "mongodb://db/other", cfg.Database.URI)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestParse_Validation(t *testing.T) {
	clearOverrides(t)

	_, err := Parse([]byte("server:\n  port: 80\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.uri is required")
	assert.Contains(t, err.Error(), "jwt.secret is required")
}

func TestLoadConfig(t *testing.T) {
	clearOverrides(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, ResolvePath(""))

	t.Setenv("CONFIG_PATH", "/etc/spectrum.yml")
	assert.Equal(t, "/etc/spectrum.yml", ResolvePath(""))
	assert.Equal(t, "local.yml", ResolvePath("local.yml"))
}
