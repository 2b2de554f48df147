// Package cache keeps computed slot lists in Redis for a short time so the
// public slots endpoint does not hit Postgres on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "slots"
	generationPrefix = "slotgen"
	scanCount        = 100
)

// Connect opens a Redis client and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{
		client: client,
		ttl:    ttl,
	}
}

// SlotKey identifies one computed slot list. Every input that changes the
// result is part of the key, including the cache generation.
func SlotKey(professionalID uuid.UUID, generation string, date time.Time, slotLength time.Duration, rule availability.OverlapRule) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d:%s", keyPrefix, professionalID, generation, date.Format(time.DateOnly), int(slotLength.Minutes()), rule)
}

// Key returns the slot key under the current generation of the professional.
// A lookup must take its key before reading the database: once an
// invalidation bumps the generation, whatever the lookup stores lands under a
// key no later reader asks for.
func (c *SlotCache) Key(ctx context.Context, professionalID uuid.UUID, date time.Time, slotLength time.Duration, rule availability.OverlapRule) (string, error) {
	values, err := c.client.MGet(ctx, generationPrefix, generationKey(professionalID)).Result()
	if err != nil {
		return "", fmt.Errorf("mget: %w", err)
	}
	generation := generationValue(values[0]) + "." + generationValue(values[1])
	return SlotKey(professionalID, generation, date, slotLength, rule), nil
}

func generationKey(professionalID uuid.UUID) string {
	return generationPrefix + ":" + professionalID.String()
}

func generationValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}

// Get returns the cached slots and whether the key was present.
func (c *SlotCache) Get(ctx context.Context, key string) ([]availability.TimeOfDay, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get: %w", err)
	}

	var slots []availability.TimeOfDay
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("unmarshal: %w", err)
	}
	return slots, true, nil
}

func (c *SlotCache) Set(ctx context.Context, key string, slots []availability.TimeOfDay) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}

// InvalidateProfessional moves the professional to a new generation and drops
// its cached slot lists.
func (c *SlotCache) InvalidateProfessional(ctx context.Context, professionalID uuid.UUID) error {
	if err := c.client.Incr(ctx, generationKey(professionalID)).Err(); err != nil {
		return fmt.Errorf("incr: %w", err)
	}
	return c.deleteMatching(ctx, fmt.Sprintf("%s:%s:*", keyPrefix, professionalID))
}

// InvalidateAll moves every professional to a new generation and drops every
// cached slot list. Clinic-wide blocks affect all professionals.
func (c *SlotCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationPrefix).Err(); err != nil {
		return fmt.Errorf("incr: %w", err)
	}
	return c.deleteMatching(ctx, keyPrefix+":*")
}

func (c *SlotCache) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
