package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override so tests see file values only.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LIFEIO_JWT_SECRET", "DATABASE_URL", "DATABASE_ADMIN_URL", "LIFEIO_PORT",
		"LOG_LEVEL", "LOG_FORMAT", "REDIS_ADDR", "KAFKA_BROKERS",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LIFEIO_HOME", "/tmp/lifeio-test")
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, 5000, cfg.API.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/lifeio-test", cfg.Database.Dir)
	assert.Equal(t, "sb-access-token", cfg.Auth.CookieName)
	assert.Equal(t, "lifeio.activities", cfg.Events.Topic)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFrom_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
port = 8080
rate_limit = 10

[auth]
jwt_secret = "from-file"

[stats]
timezone = "UTC"

[events]
brokers = ["k1:9092"]
`), 0600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 10, cfg.API.RateLimit)
	assert.Equal(t, "1m", cfg.API.RateWindow, "unset keys keep defaults")
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"k1:9092"}, cfg.Events.Brokers)

	t.Setenv("LIFEIO_JWT_SECRET", "from-env")
	t.Setenv("LIFEIO_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/lifeio")
	t.Setenv("KAFKA_BROKERS", "a:1, b:2,")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err = LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db/lifeio", cfg.Database.DSN)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Events.Brokers)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := map[string]string{
		"syntax":       `[api`,
		"driver":       "[database]\ndriver = \"mysql\"",
		"postgres dsn": "[database]\ndriver = \"postgres\"",
		"timezone":     "[stats]\ntimezone = \"Mars/Olympus\"",
		"port":         "[api]\nport = 70000",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0600))
			_, err := LoadConfigFrom(path)
			assert.Error(t, err)
		})
	}

	t.Setenv("LIFEIO_PORT", "abc")
	_, err := LoadConfigFrom(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIFEIO_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 6123
	cfg.Stats.Timezone = "Europe/Berlin"
	require.NoError(t, SaveConfig(cfg))

	got, err := LoadConfigFrom(filepath.Join(Home(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, 6123, got.API.Port)
	assert.Equal(t, "Europe/Berlin", got.Stats.Timezone)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Stats.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, parseDuration("soon", 5*time.Second))
	assert.Equal(t, 90*time.Second, parseDuration("1m30s", 5*time.Second))
}
