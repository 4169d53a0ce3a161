package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

const (
	sweepKeyPrefix = "sweep:"
	idemKeyPrefix  = "idem:"
)

// SweepRepository keeps the per-session unaccounted list in Redis so an
// interrupted sweep survives a reload. It is a convenience cache with its own
// lifecycle; persisted analytics and reports never read from it.
type SweepRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSweepRepository constructs the repository.
func NewSweepRepository(client *redis.Client, ttl time.Duration) *SweepRepository {
	if ttl <= 0 {
		ttl = 18 * time.Hour
	}
	return &SweepRepository{client: client, ttl: ttl}
}

// Get loads the session's entry list. A missing key is an empty list.
func (r *SweepRepository) Get(ctx context.Context, session string) ([]models.SweepEntry, error) {
	raw, err := r.client.Get(ctx, sweepKeyPrefix+session).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load sweep %s: %w", session, err)
	}

	var entries []models.SweepEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode sweep %s: %w", session, err)
	}
	return entries, nil
}

// Save stores the session's entry list, refreshing its TTL.
func (r *SweepRepository) Save(ctx context.Context, session string, entries []models.SweepEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode sweep %s: %w", session, err)
	}
	if err := r.client.Set(ctx, sweepKeyPrefix+session, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save sweep %s: %w", session, err)
	}
	return nil
}

// Delete drops the session's entry list.
func (r *SweepRepository) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, sweepKeyPrefix+session).Err(); err != nil {
		return fmt.Errorf("clear sweep %s: %w", session, err)
	}
	return nil
}

// RememberSubmission records the report id produced for an idempotency key so
// a replayed submit returns the original report instead of writing again.
func (r *SweepRepository) RememberSubmission(ctx context.Context, session, key, reportID string) error {
	if err := r.client.Set(ctx, idemKeyPrefix+session+":"+key, reportID, r.ttl).Err(); err != nil {
		return fmt.Errorf("remember submission %s: %w", key, err)
	}
	return nil
}

// RecallSubmission returns the report id previously stored for the key, or ""
// when the key is unseen.
func (r *SweepRepository) RecallSubmission(ctx context.Context, session, key string) (string, error) {
	id, err := r.client.Get(ctx, idemKeyPrefix+session+":"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("recall submission %s: %w", key, err)
	}
	return id, nil
}
