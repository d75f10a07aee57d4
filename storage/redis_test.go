package storage

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client)
}

func TestRedisKVRoundTrip(t *testing.T) {
	kv := newTestRedisKV(t)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "tasks"); err != nil || ok {
		t.Fatalf("missing key should be (nil, false, nil), got ok=%v err=%v", ok, err)
	}

	want := `[{"id":1}]`
	if err := kv.Set(ctx, "tasks", []byte(want)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRedisKVReportsErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv := NewRedisKV(client)

	mr.Close()
	if err := kv.Set(context.Background(), "tasks", []byte("x")); err == nil {
		t.Fatal("expected an error from a dead redis")
	}
	if _, _, err := kv.Get(context.Background(), "tasks"); err == nil {
		t.Fatal("expected an error from a dead redis")
	}
}
