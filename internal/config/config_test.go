package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Empty(t, cfg.OTLPEndpoint)

	base, err := cfg.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", base.Host)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "3333")
	t.Setenv("API_SERVER_URL", "https://checkin.example.com/api")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/checkin.db")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_MAX_CONNS", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3333, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/checkin.db", cfg.SQLitePath)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT must be between"},
		{"unknown app env", map[string]string{"APP_ENV": "staging"}, "APP_ENV must be"},
		{"relative base url", map[string]string{"API_SERVER_URL": "/checkin"}, "API_SERVER_URL must be"},
		{"ftp base url", map[string]string{"API_SERVER_URL": "ftp://example.com"}, "API_SERVER_URL must be"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mysql"}, "STORE_DRIVER must be"},
		{"blank sqlite path", map[string]string{"STORE_DRIVER": "sqlite", "SQLITE_PATH": " "}, "SQLITE_PATH is required"},
		{"min conns above max", map[string]string{"DB_MAX_CONNS": "2", "DB_MIN_CONNS": "3"}, "DB_MIN_CONNS must be"},
		{"zero timeout", map[string]string{"SERVER_IDLE_TIMEOUT": "0s"}, "SERVER_IDLE_TIMEOUT must be positive"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL must be"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMemoryDriverIgnoresDatabase(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DB_MAX_CONNS", "0")

	_, err := Load()
	assert.NoError(t, err)
}
