package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	maintnotifications "github.com/redis/go-redis/v9/maintnotifications"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/obs"
)

const coordKeyPrefix = "geocode:"

// RedisCoordinateStore shares resolved coordinates between service
// instances. Only resolved points are stored.
type RedisCoordinateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type storedCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewRedisCoordinateStore connects to addr and verifies it with PING.
func NewRedisCoordinateStore(ctx context.Context, addr string, ttl time.Duration) (*RedisCoordinateStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     16,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCoordinateStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisCoordinateStore) GetCoordinates(ctx context.Context, postalCode string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "coord.redis.Get")(&err)

	raw, err := s.rdb.Get(ctx, coordKeyPrefix+postalCode).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("redis GET %s: %w", postalCode, err)
	}

	var sc storedCoordinates
	if err := json.Unmarshal(raw, &sc); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode coordinates %s: %w", postalCode, err)
	}
	return domain.Coordinates{Lon: sc.Lon, Lat: sc.Lat}, true, nil
}

func (s *RedisCoordinateStore) PutCoordinates(ctx context.Context, postalCode string, c domain.Coordinates) (err error) {
	defer obs.Time(ctx, "coord.redis.Put")(&err)

	raw, err := json.Marshal(storedCoordinates{Lat: c.Lat, Lon: c.Lon})
	if err != nil {
		return fmt.Errorf("encode coordinates %s: %w", postalCode, err)
	}
	if err := s.rdb.Set(ctx, coordKeyPrefix+postalCode, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", postalCode, err)
	}
	return nil
}

func (s *RedisCoordinateStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
