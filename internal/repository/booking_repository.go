package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	BookingID     string          `gorm:"uniqueIndex;not null;size:40"`
	Source        string          `gorm:"not null;size:200"`
	Destination   string          `gorm:"not null;size:200"`
	TravelDate    time.Time       `gorm:"type:date;not null"`
	PhoneNumber   string          `gorm:"index;not null;size:30"`
	VehicleType   string          `gorm:"not null;size:50"`
	Status        string          `gorm:"not null;size:30;index"`
	StatusHistory json.RawMessage `gorm:"type:jsonb;not null"`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null;index"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create persists a new booking. A record without an ID is assigned one inside
// the insert transaction, so uniqueness is checked against the persisted set.
// Duplicate IDs are rejected with a conflict error.
func (r *GormBookingRepository) Create(ctx context.Context, record *bookingDomain.BookingRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.ID() == "" {
			var lookupErr error
			exists := func(candidate string) bool {
				var count int64
				if err := tx.Model(&BookingModel{}).Where("booking_id = ?", candidate).Count(&count).Error; err != nil {
					lookupErr = err
					return true
				}
				return count > 0
			}

			id, err := bookingDomain.GenerateBookingID(exists, bookingDomain.SystemClock())
			if lookupErr != nil {
				return fmt.Errorf("failed to check booking ID uniqueness: %w", lookupErr)
			}
			if err != nil {
				return err
			}
			if err := record.AssignID(id); err != nil {
				return err
			}
		}

		model, err := toBookingModel(record)
		if err != nil {
			return err
		}
		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewConflictError("booking ID already exists: " + record.ID())
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

// GetAll retrieves bookings with pagination, newest first.
func (r *GormBookingRepository) GetAll(ctx context.Context, page, limit int) ([]*bookingDomain.BookingRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// GetByID retrieves a booking by its identifier.
func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*bookingDomain.BookingRecord, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// GetByPhone retrieves a customer's bookings with pagination, newest first.
func (r *GormBookingRepository) GetByPhone(ctx context.Context, phone string, page, limit int) ([]*bookingDomain.BookingRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("phone_number = ?", phone).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("phone_number = ?", phone).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// GetByStatus retrieves every booking currently in the given status.
func (r *GormBookingRepository) GetByStatus(ctx context.Context, status bookingDomain.BookingStatus) ([]*bookingDomain.BookingRecord, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by status: %w", err)
	}

	records, _, err := toDomainBookings(models, 0)
	return records, err
}

// Update overwrites the stored record, matching by booking ID with an
// optimistic-lock version check. Records without a matching ID fall back to
// the creation timestamp as a secondary key; when neither matches the record
// is inserted as new rather than dropped.
func (r *GormBookingRepository) Update(ctx context.Context, record *bookingDomain.BookingRecord) error {
	model, err := toBookingModel(record)
	if err != nil {
		return err
	}

	columns := map[string]interface{}{
		"source":         model.Source,
		"destination":    model.Destination,
		"travel_date":    model.TravelDate,
		"phone_number":   model.PhoneNumber,
		"vehicle_type":   model.VehicleType,
		"status":         model.Status,
		"status_history": model.StatusHistory,
		"version":        model.Version,
		"updated_at":     model.UpdatedAt,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.ID() != "" {
			// Version - 1 is the persisted version; IncrementVersion ran before Update.
			expectedVersion := record.Version() - 1
			result := tx.Model(&BookingModel{}).
				Where("booking_id = ? AND version = ?", record.ID(), expectedVersion).
				Updates(columns)
			if result.Error != nil {
				return fmt.Errorf("failed to update booking: %w", result.Error)
			}
			if result.RowsAffected > 0 {
				return nil
			}

			var count int64
			if err := tx.Model(&BookingModel{}).Where("booking_id = ?", record.ID()).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check booking existence: %w", err)
			}
			if count > 0 {
				return domain.NewConflictError("booking was modified by another transaction")
			}
		}

		var existing BookingModel
		err := tx.Where("created_at = ?", model.CreatedAt).Order("id").First(&existing).Error
		if err == nil {
			// The fallback overwrites the whole stored record, identity included,
			// and touches exactly one row even if creation times collide.
			columns["booking_id"] = model.BookingID
			if err := tx.Model(&BookingModel{}).
				Where("id = ?", existing.ID).
				Updates(columns).Error; err != nil {
				return fmt.Errorf("failed to update booking by creation time: %w", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up booking by creation time: %w", err)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert booking during update: %w", err)
		}
		return nil
	})
}

// DeleteAll clears the entire bookings collection.
func (r *GormBookingRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&BookingModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete bookings: %w", err)
	}
	return nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// PopularRoutes returns the most-booked routes, highest count first.
func (r *GormBookingRepository) PopularRoutes(ctx context.Context, limit int) ([]bookingDomain.RouteCount, error) {
	var results []bookingDomain.RouteCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("source, destination, count(*) as count").
		Group("source, destination").
		Order("count DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate popular routes: %w", err)
	}
	return results, nil
}

// MonthlyCounts returns bookings created per month for the trailing window
// ending at now, oldest month first.
func (r *GormBookingRepository) MonthlyCounts(ctx context.Context, now time.Time, months int) ([]bookingDomain.MonthlyCount, error) {
	now = now.UTC()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var results []bookingDomain.MonthlyCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("to_char(created_at, 'YYYY-MM') as month, count(*) as count").
		Where("created_at >= ?", cutoff).
		Group("month").
		Order("month ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly counts: %w", err)
	}
	return results, nil
}

// WeekdayCounts returns bookings created per day of week, Sunday first.
func (r *GormBookingRepository) WeekdayCounts(ctx context.Context) ([]bookingDomain.WeekdayCount, error) {
	type dowCount struct {
		Dow   int
		Count int64
	}
	var results []dowCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("extract(dow from created_at)::int as dow, count(*) as count").
		Group("dow").
		Order("dow ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate weekday counts: %w", err)
	}

	counts := make([]bookingDomain.WeekdayCount, 0, len(results))
	for _, rc := range results {
		// Postgres dow matches time.Weekday: 0 is Sunday.
		counts = append(counts, bookingDomain.WeekdayCount{
			Day:   time.Weekday(rc.Dow).String(),
			Count: rc.Count,
		})
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(record *bookingDomain.BookingRecord) (*BookingModel, error) {
	historyJSON, err := json.Marshal(record.StatusHistory())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status history: %w", err)
	}

	return &BookingModel{
		BookingID:     record.ID(),
		Source:        record.Source(),
		Destination:   record.Destination(),
		TravelDate:    record.TravelDate().Time(),
		PhoneNumber:   record.PhoneNumber(),
		VehicleType:   record.VehicleType(),
		Status:        string(record.Status()),
		StatusHistory: historyJSON,
		Version:       record.Version(),
		CreatedAt:     record.CreatedAt(),
		UpdatedAt:     record.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.BookingRecord, error) {
	var history []bookingDomain.StatusChange
	if len(m.StatusHistory) > 0 {
		if err := json.Unmarshal(m.StatusHistory, &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
		}
	}

	// Legacy rows may carry an empty status; Reconstruct normalizes it.
	status := bookingDomain.BookingStatus(m.Status)
	if m.Status != "" {
		parsed, err := bookingDomain.ParseBookingStatus(m.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	return bookingDomain.ReconstructBookingRecord(
		m.BookingID,
		m.Source,
		m.Destination,
		bookingDomain.TravelDateOf(m.TravelDate),
		m.PhoneNumber,
		m.VehicleType,
		status,
		history,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.BookingRecord, int64, error) {
	records := make([]*bookingDomain.BookingRecord, len(models))
	for i, m := range models {
		record, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		records[i] = record
	}
	return records, total, nil
}
