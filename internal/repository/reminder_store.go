package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vehiclebooking/service-booking/pkg/domain"
)

const reminderKeyPrefix = "booking:reminder:"

// RedisReminderStore holds scheduled travel reminders. Entries expire on their
// own once the reminder time passes, so no sweeper is needed.
type RedisReminderStore struct {
	client *redis.Client
}

// NewRedisReminderStore creates a RedisReminderStore on the given client.
func NewRedisReminderStore(client *redis.Client) *RedisReminderStore {
	return &RedisReminderStore{client: client}
}

// Schedule stores a reminder for the booking, replacing any existing one. The
// entry lives until the reminder time.
func (s *RedisReminderStore) Schedule(ctx context.Context, bookingID string, remindAt time.Time) error {
	ttl := time.Until(remindAt)
	if ttl <= 0 {
		return domain.NewValidationError("reminder time must be in the future")
	}
	key := reminderKeyPrefix + bookingID
	if err := s.client.Set(ctx, key, remindAt.UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}

// Get returns the reminder time for a booking, or a not-found error when no
// reminder is pending.
func (s *RedisReminderStore) Get(ctx context.Context, bookingID string) (time.Time, error) {
	key := reminderKeyPrefix + bookingID
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, domain.NewNotFoundError("Reminder", bookingID)
		}
		return time.Time{}, fmt.Errorf("failed to read reminder: %w", err)
	}

	remindAt, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse reminder time: %w", err)
	}
	return remindAt, nil
}
