package cartstore

import (
	"context"
	"testing"
	"time"

	pkgredis "github.com/freshsouq/freshsouq-backend/pkg/redis"
)

type stubRedis struct {
	values      map[string]string
	setTTLs     []time.Duration
	expireCalls []string
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}}
}

func (s *stubRedis) Get(ctx context.Context, key string) (string, error) {
	val, ok := s.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return val, nil
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.setTTLs = append(s.setTTLs, ttl)
	return nil
}

func (s *stubRedis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.expireCalls = append(s.expireCalls, key)
	return nil
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisRoundTrip(t *testing.T) {
	t.Parallel()

	stub := newStubRedis()
	store, err := NewRedis(stub, "fs:cart:session-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := sampleItems()
	if err := store.Save(context.Background(), items); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertSameItems(t, items, loaded)
	if len(stub.expireCalls) != 0 {
		t.Fatal("zero TTL must not refresh expiry")
	}
}

func TestRedisMissingKeyIsEmptyCart(t *testing.T) {
	t.Parallel()

	store, err := NewRedis(newStubRedis(), "fs:cart:absent", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected empty cart for missing key")
	}
}

func TestRedisCorruptBlobDegradesToEmpty(t *testing.T) {
	t.Parallel()

	stub := newStubRedis()
	stub.values["fs:cart:broken"] = "definitely not json"

	store, err := NewRedis(stub, "fs:cart:broken", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt blob must not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected empty cart from corrupt blob")
	}
}

func TestRedisTTLSlidesOnLoadAndSave(t *testing.T) {
	t.Parallel()

	stub := newStubRedis()
	store, err := NewRedis(stub, "fs:cart:session-1", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Save(context.Background(), sampleItems()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(stub.setTTLs) != 1 || stub.setTTLs[0] != time.Hour {
		t.Fatalf("expected save to carry the TTL, got %v", stub.setTTLs)
	}

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(stub.expireCalls) != 1 {
		t.Fatalf("expected load to refresh expiry, got %d calls", len(stub.expireCalls))
	}
}

func TestRedisClear(t *testing.T) {
	t.Parallel()

	stub := newStubRedis()
	store, err := NewRedis(stub, "fs:cart:session-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(context.Background(), sampleItems()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := stub.values["fs:cart:session-1"]; ok {
		t.Fatal("expected key to be deleted")
	}
}
