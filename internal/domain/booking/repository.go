package booking

import (
	"context"
	"time"
)

// RouteCount is a (source, destination) pair with its booking count,
// produced by the analytics aggregations.
type RouteCount struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Count       int64  `json:"count"`
}

// MonthlyCount is the number of bookings created in a calendar month
// (YYYY-MM).
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// WeekdayCount is the number of bookings created on a given day of week.
type WeekdayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// BookingRepository defines the persistence contract for booking records.
type BookingRepository interface {
	// Create persists a new booking. A record without an ID is assigned one,
	// checked for uniqueness against the persisted set inside the same
	// transaction. A duplicate ID is rejected with a conflict error and
	// leaves the store unchanged.
	Create(ctx context.Context, record *BookingRecord) error

	// GetAll retrieves bookings with pagination, newest first.
	GetAll(ctx context.Context, page, limit int) ([]*BookingRecord, int64, error)

	// GetByID retrieves a booking by its identifier.
	GetByID(ctx context.Context, id string) (*BookingRecord, error)

	// GetByPhone retrieves a customer's bookings with pagination, newest first.
	GetByPhone(ctx context.Context, phone string, page, limit int) ([]*BookingRecord, int64, error)

	// GetByStatus retrieves every booking currently in the given status.
	GetByStatus(ctx context.Context, status BookingStatus) ([]*BookingRecord, error)

	// Update overwrites the stored record. It matches by booking ID first
	// (with an optimistic-lock version check); records without an ID fall
	// back to the createdAt timestamp as a secondary key; when neither
	// matches the record is inserted as new rather than dropped.
	Update(ctx context.Context, record *BookingRecord) error

	// DeleteAll clears the entire collection.
	DeleteAll(ctx context.Context) error

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// PopularRoutes returns the most-booked routes, highest count first.
	PopularRoutes(ctx context.Context, limit int) ([]RouteCount, error)

	// MonthlyCounts returns bookings created per month for the trailing
	// window ending at now, oldest month first.
	MonthlyCounts(ctx context.Context, now time.Time, months int) ([]MonthlyCount, error)

	// WeekdayCounts returns bookings created per day of week, Sunday first.
	WeekdayCounts(ctx context.Context) ([]WeekdayCount, error)
}
