package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SignalPull/internal/domain/models"
	domrepo "SignalPull/internal/domain/repository"
)

const (
	snapshotKeyPrefix = "signalpull:deriv:"
	snapshotTTL       = 14 * 24 * time.Hour
)

// RedisSnapshotStore keeps one derivative snapshot per UTC day so the
// open-interest lookback is an explicit input instead of hidden state.
type RedisSnapshotStore struct {
	cli *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisSnapshotStore(cfg RedisConfig) domrepo.SnapshotStore {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisSnapshotStore{cli: rdb}
}

func snapshotKey(day time.Time) string {
	return snapshotKeyPrefix + day.UTC().Format("2006-01-02")
}

func (s *RedisSnapshotStore) Save(ctx context.Context, day time.Time, readings []models.DerivativeReading) error {
	b, err := json.Marshal(readings)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.cli.Set(ctx, snapshotKey(day), b, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadBefore returns the snapshot for the given day, falling back one day at
// a time up to maxAgeDays earlier. A missing snapshot is not an error; it
// just means no lookback is available yet.
func (s *RedisSnapshotStore) LoadBefore(ctx context.Context, day time.Time, maxAgeDays int) (map[string]models.DerivativeReading, error) {
	for age := 0; age <= maxAgeDays; age++ {
		b, err := s.cli.Get(ctx, snapshotKey(day.AddDate(0, 0, -age))).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		var readings []models.DerivativeReading
		if err := json.Unmarshal(b, &readings); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out := make(map[string]models.DerivativeReading, len(readings))
		for _, r := range readings {
			out[r.Symbol] = r
		}
		return out, nil
	}
	return nil, nil
}
