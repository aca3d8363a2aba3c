package badge

import (
	"context"
	"fmt"
	"strconv"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store caches per-user badge counts in Redis so the UI's tab bar can be
// served without hitting Postgres. Counts are recomputed from the database
// on every refresh; the cache is purely derived state.
type Store struct {
	rdb *redis.Client
}

type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func key(userID uuid.UUID) string {
	return "badges:" + userID.String()
}

func (s *Store) Set(ctx context.Context, userID uuid.UUID, counts model.BadgeCounts) error {
	err := s.rdb.HSet(ctx, key(userID), map[string]interface{}{
		"rides":    counts.Rides,
		"favors":   counts.Favors,
		"townhall": counts.TownHall,
		"messages": counts.Messages,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store badge counts: %w", err)
	}
	return nil
}

// Get returns the cached counts. A user with no cached entry reads as all
// zeros, not an error.
func (s *Store) Get(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error) {
	fields, err := s.rdb.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load badge counts: %w", err)
	}

	counts := &model.BadgeCounts{}
	counts.Rides = fieldInt(fields, "rides")
	counts.Favors = fieldInt(fields, "favors")
	counts.TownHall = fieldInt(fields, "townhall")
	counts.Messages = fieldInt(fields, "messages")
	return counts, nil
}

func fieldInt(fields map[string]string, name string) int {
	n, err := strconv.Atoi(fields[name])
	if err != nil {
		return 0
	}
	return n
}
