package application

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	analyticsDomain "github.com/vehiclebooking/service-booking/internal/domain/analytics"
	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/pkg/metrics"
)

// RouteStatsReader exposes the live route counters kept in Redis.
type RouteStatsReader interface {
	TopRoutes(ctx context.Context, limit int) ([]bookingDomain.RouteCount, error)
}

// RecordSearchRequest holds the data for one vehicle search.
type RecordSearchRequest struct {
	PhoneNumber     string                   `json:"phone_number" binding:"required"`
	Source          string                   `json:"source" binding:"required"`
	Destination     string                   `json:"destination" binding:"required"`
	TravelDate      bookingDomain.TravelDate `json:"travel_date"`
	VehicleInterest string                   `json:"vehicle_interest"`
}

// AnalyticsService aggregates search and booking data for the admin dashboard.
type AnalyticsService struct {
	searches   analyticsDomain.SearchRepository
	bookings   bookingDomain.BookingRepository
	liveRoutes RouteStatsReader
	metrics    *metrics.Metrics
	clock      bookingDomain.Clock
	logger     *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	searches analyticsDomain.SearchRepository,
	bookings bookingDomain.BookingRepository,
	liveRoutes RouteStatsReader,
	m *metrics.Metrics,
	clock bookingDomain.Clock,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		searches:   searches,
		bookings:   bookings,
		liveRoutes: liveRoutes,
		metrics:    m,
		clock:      clock,
		logger:     logger,
	}
}

// RecordSearch persists one vehicle search for demand analytics.
func (s *AnalyticsService) RecordSearch(ctx context.Context, req RecordSearchRequest) (*analyticsDomain.SearchRecord, error) {
	record, err := analyticsDomain.NewSearchRecord(
		req.PhoneNumber,
		req.Source,
		req.Destination,
		req.TravelDate,
		req.VehicleInterest,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.searches.Save(ctx, record); err != nil {
		return nil, err
	}
	s.metrics.SearchesRecorded.Inc()
	return record, nil
}

// AddVehicleInterest appends a vehicle type to the customer's most recent
// search, tracking which options they browsed after searching.
func (s *AnalyticsService) AddVehicleInterest(ctx context.Context, phone, interest string) (*analyticsDomain.SearchRecord, error) {
	record, err := s.searches.MostRecentByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}

	record.AppendVehicleInterest(interest)
	if err := s.searches.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecentSearches returns the latest search records (admin).
func (s *AnalyticsService) RecentSearches(ctx context.Context, limit int) ([]*analyticsDomain.SearchRecord, error) {
	return s.searches.Recent(ctx, limit)
}

// SearchesByPhone returns a customer's search history (admin).
func (s *AnalyticsService) SearchesByPhone(ctx context.Context, phone string) ([]*analyticsDomain.SearchRecord, error) {
	return s.searches.ByPhone(ctx, strings.TrimSpace(phone))
}

// PopularRoutes returns the most-booked routes from the database.
func (s *AnalyticsService) PopularRoutes(ctx context.Context, limit int) ([]bookingDomain.RouteCount, error) {
	routes, err := s.bookings.PopularRoutes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular routes: %w", err)
	}
	return routes, nil
}

// LiveRoutePopularity returns the event-driven route counters. Falls back to
// an empty list when the cache is unavailable rather than failing the dashboard.
func (s *AnalyticsService) LiveRoutePopularity(ctx context.Context, limit int) ([]bookingDomain.RouteCount, error) {
	routes, err := s.liveRoutes.TopRoutes(ctx, limit)
	if err != nil {
		s.logger.Warn("live route counters unavailable", zap.Error(err))
		return []bookingDomain.RouteCount{}, nil
	}
	return routes, nil
}

// MonthlyTrend returns bookings created per month for the trailing window.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context, months int) ([]bookingDomain.MonthlyCount, error) {
	if months <= 0 {
		months = 6
	}
	return s.bookings.MonthlyCounts(ctx, s.clock.Now(), months)
}

// WeeklyPatternDTO is the day-of-week booking distribution with the busiest
// day called out for the dashboard.
type WeeklyPatternDTO struct {
	Days       []bookingDomain.WeekdayCount `json:"days"`
	BusiestDay string                       `json:"busiest_day,omitempty"`
}

// WeeklyPattern returns bookings grouped by day of week and the busiest day.
func (s *AnalyticsService) WeeklyPattern(ctx context.Context) (*WeeklyPatternDTO, error) {
	counts, err := s.bookings.WeekdayCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekday counts: %w", err)
	}

	pattern := &WeeklyPatternDTO{Days: counts}
	var best int64
	for _, c := range counts {
		if c.Count > best {
			best = c.Count
			pattern.BusiestDay = c.Day
		}
	}
	return pattern, nil
}

// StatusDistribution returns booking counts grouped by status.
func (s *AnalyticsService) StatusDistribution(ctx context.Context) (map[string]int64, error) {
	return s.bookings.CountByStatus(ctx)
}
