package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "calc:group:g1", []byte("result"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "calc:group:g1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "result" {
		t.Fatalf("expected result, got %s", val)
	}
}

func TestCacheGetMissing(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)

	val, err := cache.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing key must not error, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil value, got %s", val)
	}
}

func TestCacheExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value"), 5*time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	val, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != nil {
		t.Fatalf("expected expired key to be absent, got %s", val)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	cache.Set(ctx, "a", []byte("1"), time.Minute)
	cache.Set(ctx, "b", []byte("2"), time.Minute)

	if err := cache.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, _ := cache.Get(ctx, "a"); val != nil {
		t.Fatalf("expected a to be gone, got %s", val)
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	cache.Set(ctx, "calc:group:g1", []byte("1"), time.Minute)
	cache.Set(ctx, "calc:group:g2", []byte("2"), time.Minute)
	cache.Set(ctx, "expenses:group:g1", []byte("3"), time.Minute)

	if err := cache.DeletePrefix(ctx, "calc:"); err != nil {
		t.Fatalf("delete prefix failed: %v", err)
	}

	if val, _ := cache.Get(ctx, "calc:group:g1"); val != nil {
		t.Fatalf("expected calc scope to be gone, got %s", val)
	}
	if val, _ := cache.Get(ctx, "calc:group:g2"); val != nil {
		t.Fatalf("expected calc scope to be gone, got %s", val)
	}
	if val, _ := cache.Get(ctx, "expenses:group:g1"); val == nil {
		t.Fatalf("expected unrelated scope to survive")
	}
}
