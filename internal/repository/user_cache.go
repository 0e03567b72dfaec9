package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userCachePrefix = "authuser:user:"

	// DefaultCacheTTL is used when CachedUserStore is built with a zero TTL
	DefaultCacheTTL = 5 * time.Minute
)

// UserStore is the persistence contract the cache decorates
type UserStore interface {
	FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Save(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, user *model.User) error
	Ping(ctx context.Context) error
}

// CacheClient is the subset of the go-redis client used by CachedUserStore
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// CachedUserStore is a read-through Redis cache for single-user lookups.
// Listings always go to the backing store. Writes invalidate the cached entry.
// Redis failures are logged and never fail the request.
type CachedUserStore struct {
	next  UserStore
	cache CacheClient
	ttl   time.Duration
}

// NewCachedUserStore wraps next with a Redis cache
func NewCachedUserStore(next UserStore, cache CacheClient, ttl time.Duration) *CachedUserStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedUserStore{next: next, cache: cache, ttl: ttl}
}

// cacheEntry carries the password hash, which model.User never serializes
type cacheEntry struct {
	model.User
	Password string `json:"password"`
}

func userCacheKey(id uuid.UUID) string {
	return userCachePrefix + id.String()
}

// FindAllPageable delegates to the backing store
func (s *CachedUserStore) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	return s.next.FindAllPageable(ctx, req)
}

// FindByID serves from Redis when possible, populating it on a miss
func (s *CachedUserStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := userCacheKey(id)

	raw, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cacheEntry
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			user := entry.User
			user.Password = entry.Password
			return &user, nil
		}
		slog.Warn("discarding corrupt cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		slog.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	user, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, user)
	return user, nil
}

// Save writes through to the backing store. The entry is dropped before and
// after the write, so a reader that cached the old row mid-write is evicted
// as well. A miss that reads the old row and stores it after the second
// drop can still serve it until the TTL expires.
func (s *CachedUserStore) Save(ctx context.Context, user *model.User) (*model.User, error) {
	s.invalidate(ctx, user.UserID)
	saved, err := s.next.Save(ctx, user)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, saved.UserID)
	return saved, nil
}

// Delete removes the user from the backing store, dropping the cache entry
// on both sides of the write as Save does
func (s *CachedUserStore) Delete(ctx context.Context, user *model.User) error {
	s.invalidate(ctx, user.UserID)
	if err := s.next.Delete(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, user.UserID)
	return nil
}

// Ping checks both the backing store and Redis
func (s *CachedUserStore) Ping(ctx context.Context) error {
	if err := s.next.Ping(ctx); err != nil {
		return err
	}
	if err := s.cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (s *CachedUserStore) store(ctx context.Context, user *model.User) {
	data, err := json.Marshal(cacheEntry{User: *user, Password: user.Password})
	if err != nil {
		return
	}
	key := userCacheKey(user.UserID)
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		slog.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *CachedUserStore) invalidate(ctx context.Context, id uuid.UUID) {
	key := userCacheKey(id)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		slog.Warn("cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
