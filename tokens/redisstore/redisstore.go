// Package redisstore keeps session tokens in Redis for headless or shared deployments.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ tokens.Store = (*Store)(nil)

// DefaultOpTimeout bounds every Redis round trip
const DefaultOpTimeout = 3 * time.Second

type Store struct {
	client    redis.Cmdable
	prefix    string
	opTimeout time.Duration
}

type Option func(*Store)

// WithOpTimeout overrides DefaultOpTimeout
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.opTimeout = d
	}
}

// New wraps an existing client. Keys are stored as prefix+name.
func New(client redis.Cmdable, prefix string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		prefix:    prefix,
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect creates a client and verifies it with a ping. The caller owns the
// returned client and must close it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return client, nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Get(name string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Err(err).Str("key", s.key(name)).Msg("Error reading token from redis")
		return "", false
	}
	return v, true
}

func (s *Store) Set(name, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		log.Err(err).Str("key", s.key(name)).Msg("Error writing token to redis")
	}
}

func (s *Store) Clear(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		log.Err(err).Str("key", s.key(name)).Msg("Error deleting token from redis")
	}
}
