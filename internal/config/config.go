package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotEnvFileVar names an optional .env file; ".env" in the working directory is used otherwise.
const dotEnvFileVar = "COURSECTL_ENV_FILE"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetDedupRefresh() bool
}

type StoreConfig interface {
	GetStoreDriver() StoreDriver
	GetStorePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetKeyPrefix() string
}

type mainConfig struct {
	EnvVars
	API        API        `envPrefix:"API_"`
	TokenStore TokenStore `envPrefix:"TOKEN_STORE_"`
}

// New loads the configuration from the environment, after applying an optional .env file.
func New() (Config, error) {
	if err := loadDotEnv(GetEnv(dotEnvFileVar, ".env")); err != nil {
		return nil, err
	}

	cfg := mainConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.TokenStore.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config.os.Stat(%s): %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config.godotenv(%s): %w", path, err)
	}
	return nil
}

func (c mainConfig) GetBaseURL() string          { return c.API.GetBaseURL() }
func (c mainConfig) GetTimeout() time.Duration   { return c.API.GetTimeout() }
func (c mainConfig) GetDedupRefresh() bool       { return c.API.GetDedupRefresh() }
func (c mainConfig) GetStoreDriver() StoreDriver { return c.TokenStore.GetStoreDriver() }
func (c mainConfig) GetStorePath() string        { return c.TokenStore.GetStorePath() }
func (c mainConfig) GetRedisAddr() string        { return c.TokenStore.GetRedisAddr() }
func (c mainConfig) GetRedisPassword() string    { return c.TokenStore.GetRedisPassword() }
func (c mainConfig) GetRedisDB() int             { return c.TokenStore.GetRedisDB() }
func (c mainConfig) GetKeyPrefix() string        { return c.TokenStore.GetKeyPrefix() }
