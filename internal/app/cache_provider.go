package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
	"github.com/dentiqcloud/dentiq-backend/internal/membercache"
)

type MembershipCacheMode string

const (
	MembershipCacheModeMemory MembershipCacheMode = "memory"
	MembershipCacheModeRedis  MembershipCacheMode = "redis"
)

// resolveMembershipCache picks the membership cache backend from config.
// Unknown modes fail boot instead of silently falling back.
func resolveMembershipCache(log *logger.Logger, provider string, ttl time.Duration) (membercache.Store, error) {
	mode := MembershipCacheMode(strings.ToLower(strings.TrimSpace(provider)))
	if mode == "" {
		mode = MembershipCacheModeMemory
	}
	switch mode {
	case MembershipCacheModeMemory:
		return membercache.NewMemoryStore(ttl), nil
	case MembershipCacheModeRedis:
		store, err := membercache.NewRedisStore(log, ttl)
		if err != nil {
			return nil, fmt.Errorf("Failed to connect membership cache to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid membership cache provider %q (want memory or redis)", provider)
	}
}
