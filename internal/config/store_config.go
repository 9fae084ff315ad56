package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type StoreDriver string

const (
	StoreDriverFile   StoreDriver = "file"
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverMemory StoreDriver = "memory"
)

type TokenStore struct {
	Driver        StoreDriver `env:"DRIVER" envDefault:"file"`
	Path          string      `env:"PATH"`
	RedisAddr     string      `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string      `env:"REDIS_PASSWORD"`
	RedisDB       int         `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix     string      `env:"KEY_PREFIX" envDefault:"coursectl:"`
}

var _ StoreConfig = TokenStore{}

func (t TokenStore) validate() error {
	switch t.Driver {
	case StoreDriverFile, StoreDriverRedis, StoreDriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown token store driver %q", t.Driver)
	}
}

func (t TokenStore) GetStoreDriver() StoreDriver {
	return t.Driver
}

// GetStorePath returns the token file location, defaulting to the user config directory
func (t TokenStore) GetStorePath() string {
	if t.Path != "" {
		return t.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "coursectl", "tokens.json")
}

func (t TokenStore) GetRedisAddr() string {
	return t.RedisAddr
}

func (t TokenStore) GetRedisPassword() string {
	return t.RedisPassword
}

func (t TokenStore) GetRedisDB() int {
	return t.RedisDB
}

func (t TokenStore) GetKeyPrefix() string {
	return t.KeyPrefix
}
