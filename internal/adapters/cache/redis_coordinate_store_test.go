package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"cep-distance-service/internal/domain"
)

func newMiniStore(t *testing.T, ttl time.Duration) (*RedisCoordinateStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	s, err := NewRedisCoordinateStore(ctx, mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("NewRedisCoordinateStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisCoordinateStore_RoundTripAndTTL(t *testing.T) {
	s, mr := newMiniStore(t, time.Hour)
	ctx := context.Background()

	if _, ok, err := s.GetCoordinates(ctx, "1000-001"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	want := domain.Coordinates{Lat: 38.7223, Lon: -9.1393}
	if err := s.PutCoordinates(ctx, "1000-001", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL(coordKeyPrefix + "1000-001"); ttl != time.Hour {
		t.Fatalf("ttl=%s want 1h", ttl)
	}

	got, ok, err := s.GetCoordinates(ctx, "1000-001")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := s.GetCoordinates(ctx, "1000-001"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestRedisCoordinateStore_CorruptValueIsError(t *testing.T) {
	s, mr := newMiniStore(t, 0)
	if err := mr.Set(coordKeyPrefix+"4000-001", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, _, err := s.GetCoordinates(context.Background(), "4000-001"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisCoordinateStore_ServerDownIsError(t *testing.T) {
	s, mr := newMiniStore(t, 0)
	mr.Close()

	if _, _, err := s.GetCoordinates(context.Background(), "1000-001"); err == nil {
		t.Fatalf("expected error with redis down")
	}
}

func TestNewRedisCoordinateStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisCoordinateStore(context.Background(), "", time.Minute); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
