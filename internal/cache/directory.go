package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"message-service/internal/models"
	"message-service/internal/observability"
	"message-service/internal/repositories"
)

const keyPrefix = "directory:"

// Store is the key/value surface the directory cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Directory caches name to id resolution in front of another DirectoryRepository.
// Only hits are cached; token lookups always go to the wrapped repository.
type Directory struct {
	next  repositories.DirectoryRepository
	store Store
	ttl   time.Duration
}

func NewDirectory(next repositories.DirectoryRepository, store Store, ttl time.Duration) *Directory {
	return &Directory{next: next, store: store, ttl: ttl}
}

func (d *Directory) ResolveTargetID(ctx context.Context, name string, kind models.TargetKind) (string, bool, error) {
	key := keyPrefix + strings.ToLower(string(kind)) + ":" + name

	id, ok, err := d.store.Get(ctx, key)
	switch {
	case err != nil:
		zap.L().Warn("directory cache get failed", zap.String("key", key), zap.Error(err))
	case ok:
		observability.IncDirectoryCache("hit")
		return id, true, nil
	}
	observability.IncDirectoryCache("miss")

	id, found, err := d.next.ResolveTargetID(ctx, name, kind)
	if err != nil || !found {
		return id, found, err
	}
	if err := d.store.Set(ctx, key, id, d.ttl); err != nil {
		zap.L().Warn("directory cache set failed", zap.String("key", key), zap.Error(err))
	}
	return id, true, nil
}

func (d *Directory) UserIDForToken(ctx context.Context, token string) (string, bool, error) {
	return d.next.UserIDForToken(ctx, token)
}

var _ repositories.DirectoryRepository = (*Directory)(nil)
