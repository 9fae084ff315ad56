package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-course-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultValues(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "Course Portal", cfg.GetAppName())
	assert.Equal(t, "DEV", cfg.GetEnv())
	assert.Equal(t, "info", cfg.GetLogLevel())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.GetBaseURL())
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.False(t, cfg.GetDedupRefresh())
	assert.Equal(t, config.StoreDriverFile, cfg.GetStoreDriver())
	assert.Equal(t, "tokens.json", filepath.Base(cfg.GetStorePath()))
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.Equal(t, 0, cfg.GetRedisDB())
	assert.Equal(t, "coursectl:", cfg.GetKeyPrefix())
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(config.Config)
	}{
		{
			name: "api override",
			envVars: map[string]string{
				"API_BASE_URL":      "https://courses.example.com/",
				"API_TIMEOUT":       "5s",
				"API_DEDUP_REFRESH": "true",
			},
			expected: func(cfg config.Config) {
				assert.Equal(t, "https://courses.example.com", cfg.GetBaseURL())
				assert.Equal(t, 5*time.Second, cfg.GetTimeout())
				assert.True(t, cfg.GetDedupRefresh())
			},
		},
		{
			name: "token store override",
			envVars: map[string]string{
				"TOKEN_STORE_DRIVER":         "redis",
				"TOKEN_STORE_PATH":           "/tmp/tokens.json",
				"TOKEN_STORE_REDIS_ADDR":     "redis:6380",
				"TOKEN_STORE_REDIS_PASSWORD": "secret",
				"TOKEN_STORE_REDIS_DB":       "3",
				"TOKEN_STORE_KEY_PREFIX":     "portal:",
			},
			expected: func(cfg config.Config) {
				assert.Equal(t, config.StoreDriverRedis, cfg.GetStoreDriver())
				assert.Equal(t, "/tmp/tokens.json", cfg.GetStorePath())
				assert.Equal(t, "redis:6380", cfg.GetRedisAddr())
				assert.Equal(t, "secret", cfg.GetRedisPassword())
				assert.Equal(t, 3, cfg.GetRedisDB())
				assert.Equal(t, "portal:", cfg.GetKeyPrefix())
			},
		},
		{
			name: "env and log level",
			envVars: map[string]string{
				"ENV":       "prod",
				"LOG_LEVEL": "DEBUG",
				"APP_NAME":  "Campus",
			},
			expected: func(cfg config.Config) {
				assert.Equal(t, "PROD", cfg.GetEnv())
				assert.Equal(t, "debug", cfg.GetLogLevel())
				assert.Equal(t, "Campus", cfg.GetAppName())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := config.New()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	t.Setenv("TOKEN_STORE_DRIVER", "etcd")

	_, err := config.New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown token store driver")
}

func TestNew_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=http://dotenv.local:9000\n"), 0o600))
	t.Setenv("COURSECTL_ENV_FILE", path)
	// godotenv does not override variables that are already set.
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	cfg, err := config.New()
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.local:9000", cfg.GetBaseURL())
	os.Unsetenv("API_BASE_URL")
}
