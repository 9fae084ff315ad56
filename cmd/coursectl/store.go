package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-course-portal/internal/config"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/tokens/filestore"
	"github.com/jrsteele09/go-course-portal/tokens/redisstore"
	"github.com/jrsteele09/go-course-portal/tokens/storefake"
	"github.com/rs/zerolog/log"
)

func noClose() error { return nil }

// openTokenStore builds the configured token store. The returned func releases it.
func openTokenStore(ctx context.Context, cfg config.StoreConfig) (tokens.Store, func() error, error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverFile:
		log.Debug().Str("path", cfg.GetStorePath()).Msg("Using file token store")
		return filestore.New(cfg.GetStorePath()), noClose, nil
	case config.StoreDriverRedis:
		client, err := redisstore.Connect(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("addr", cfg.GetRedisAddr()).Msg("Using redis token store")
		return redisstore.New(client, cfg.GetKeyPrefix()), client.Close, nil
	case config.StoreDriverMemory:
		// Tokens only live for one command
		return storefake.NewFakeTokenStore(), noClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store driver %q", cfg.GetStoreDriver())
	}
}
