package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func repoListKey(userID uint64) string {
	return fmt.Sprintf("github:repos:%d", userID)
}

// GetRepoList returns the cached repo-list JSON; redis.Nil means a miss.
func (s *Store) GetRepoList(ctx context.Context, userID uint64) (string, error) {
	return s.rdb.Get(ctx, repoListKey(userID)).Result()
}

func (s *Store) SetRepoList(ctx context.Context, userID uint64, payload string, ttl time.Duration) error {
	return s.rdb.Set(ctx, repoListKey(userID), payload, ttl).Err()
}

// InvalidateRepoList drops the cache after connect/analyze so the next read
// reflects fresh rows.
func (s *Store) InvalidateRepoList(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, repoListKey(userID)).Err()
}
