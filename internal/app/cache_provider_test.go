package app

import (
	"testing"
	"time"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestResolveMembershipCacheMemory(t *testing.T) {
	store, err := resolveMembershipCache(newTestLogger(t), "memory", time.Minute)
	if err != nil {
		t.Fatalf("memory mode: %v", err)
	}
	if store == nil {
		t.Fatal("nil store for memory mode")
	}
	store.Close()
}

func TestResolveMembershipCacheDefaultsToMemory(t *testing.T) {
	for _, provider := range []string{"", "  ", "MEMORY", " Memory "} {
		store, err := resolveMembershipCache(newTestLogger(t), provider, time.Minute)
		if err != nil {
			t.Fatalf("provider %q: %v", provider, err)
		}
		store.Close()
	}
}

func TestResolveMembershipCacheRejectsUnknownProvider(t *testing.T) {
	if _, err := resolveMembershipCache(newTestLogger(t), "memcached", time.Minute); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
