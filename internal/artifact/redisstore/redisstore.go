package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

const latestKey = "latest"

// Store keeps artifacts in Redis as JSON values with a TTL.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Open parses a redis:// or rediss:// URL and pings the server.
func Open(ctx context.Context, url string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

func (s *Store) Save(ctx context.Context, a *artifact.Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}

	// Redis treats a zero expiration as "keep forever".
	ttl := max(s.ttl, 0)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(a.Key), data, ttl)
		pipe.Set(ctx, s.key(latestKey), a.Key, ttl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context, key string) (*artifact.Artifact, error) {
	if key == artifact.Latest {
		latest, err := s.client.Get(ctx, s.key(latestKey)).Result()
		if err != nil {
			return nil, mapError(err)
		}

		key = latest
	}

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return nil, mapError(err)
	}

	var a artifact.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}

	return &a, nil
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return "artifact:" + k
	}

	return s.prefix + ":artifact:" + k
}

func mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return artifact.ErrNotFound
	}

	return fmt.Errorf("loading artifact: %w", err)
}

var _ artifact.Store = (*Store)(nil)
