package membercache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
)

const redisKeyPrefix = "membership:"

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore backs the membership cache with redis so every instance of the
// service shares one invalidation domain.
func NewRedisStore(log *logger.Logger, ttl time.Duration) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "RedisMembershipStore"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (s *redisStore) key(userID uuid.UUID) string {
	return redisKeyPrefix + userID.String()
}

func (s *redisStore) Get(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		// Treat a corrupt entry as a miss so the caller re-reads the source.
		s.log.Warn("Dropping corrupt membership cache entry", "error", err)
		_ = s.rdb.Del(ctx, s.key(userID)).Err()
		return nil, false, nil
	}
	return ids, true, nil
}

func (s *redisStore) Set(ctx context.Context, userID uuid.UUID, clinicIDs []uuid.UUID) error {
	raw, err := json.Marshal(clinicIDs)
	if err != nil {
		return fmt.Errorf("marshal clinic ids: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
