package ratelimit

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewStore_AlwaysReturnsStorage(t *testing.T) {
	if s := NewStore(RedisConfig{}); s == nil {
		t.Fatalf("expected non-nil memory store when redis addr empty")
	}

	// An unreachable address makes the redis storage constructor panic; the
	// memory fallback must be returned instead.
	if s := NewStore(RedisConfig{Addr: "127.0.0.1:1", DB: 0}); s == nil {
		t.Fatalf("expected non-nil store even with unreachable redis")
	}
}

func TestNewStore_UsesRedis(t *testing.T) {
	mrs, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mrs.Close()

	s := NewStore(RedisConfig{Addr: mrs.Addr()})
	if err := s.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mrs.Exists("k") {
		t.Fatalf("expected key to land in redis")
	}
}
