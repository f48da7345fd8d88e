package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
)

const routeStatsKey = "analytics:routes:live"

// RedisRouteStats keeps live route popularity counters in a Redis sorted set.
// The booking-event consumer increments them; the dashboard reads them without
// touching the database.
type RedisRouteStats struct {
	client *redis.Client
}

// NewRedisRouteStats creates a RedisRouteStats on the given client.
func NewRedisRouteStats(client *redis.Client) *RedisRouteStats {
	return &RedisRouteStats{client: client}
}

// IncrementRoute bumps the counter for a (source, destination) pair.
func (s *RedisRouteStats) IncrementRoute(ctx context.Context, source, destination string) error {
	member := routeMember(source, destination)
	if err := s.client.ZIncrBy(ctx, routeStatsKey, 1, member).Err(); err != nil {
		return fmt.Errorf("failed to increment route counter: %w", err)
	}
	return nil
}

// TopRoutes returns the highest-counted routes, highest first.
func (s *RedisRouteStats) TopRoutes(ctx context.Context, limit int) ([]bookingDomain.RouteCount, error) {
	entries, err := s.client.ZRevRangeWithScores(ctx, routeStatsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read route counters: %w", err)
	}

	routes := make([]bookingDomain.RouteCount, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		source, destination := splitRouteMember(member)
		routes = append(routes, bookingDomain.RouteCount{
			Source:      source,
			Destination: destination,
			Count:       int64(entry.Score),
		})
	}
	return routes, nil
}

func routeMember(source, destination string) string {
	return source + "|" + destination
}

func splitRouteMember(member string) (string, string) {
	parts := strings.SplitN(member, "|", 2)
	if len(parts) != 2 {
		return member, ""
	}
	return parts[0], parts[1]
}
