package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/yungbote/questionbot-backend/internal/platform/logger"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "u1"); err != nil || ok {
		t.Fatalf("empty Get: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "u1", 4); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "u1", 2); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	idx, ok, err := s.Get(ctx, "u1")
	if err != nil || !ok || idx != 2 {
		t.Fatalf("Get: idx=%d ok=%v err=%v", idx, ok, err)
	}
	if _, ok, _ := s.Get(ctx, "u2"); ok {
		t.Fatalf("u2 should have no entry")
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "u1"); ok {
		t.Fatalf("entry survived Delete")
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	if s.Len() != 0 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(logger.NewNop(), RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(logger.NewNop(), RedisConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "qb:",
		TTL:       time.Minute,
	})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	if err := s.Set(context.Background(), "u1", 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := mr.Get("qb:u1")
	if err != nil || got != "3" {
		t.Fatalf("raw value=%q err=%v", got, err)
	}
	if ttl := mr.TTL("qb:u1"); ttl != time.Minute {
		t.Fatalf("ttl=%s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), "u1"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(logger.NewNop(), RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	_ = mr.Set("questionbot:pending:u1", "not-a-number")
	if _, _, err := s.Get(context.Background(), "u1"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(logger.NewNop(), RedisConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}
