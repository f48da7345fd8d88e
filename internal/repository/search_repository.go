package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	analyticsDomain "github.com/vehiclebooking/service-booking/internal/domain/analytics"
	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/pkg/domain"
)

// SearchRecordModel is the GORM model for the search_records table.
type SearchRecordModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	PhoneNumber     string    `gorm:"index;not null;size:30"`
	Source          string    `gorm:"not null;size:200"`
	Destination     string    `gorm:"not null;size:200"`
	TravelDate      time.Time `gorm:"type:date"`
	VehicleInterest string    `gorm:"size:500"`
	SearchedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (SearchRecordModel) TableName() string {
	return "search_records"
}

// GormSearchRepository is the GORM-based implementation of SearchRepository.
type GormSearchRepository struct {
	db *gorm.DB
}

// NewGormSearchRepository creates a new GormSearchRepository.
func NewGormSearchRepository(db *gorm.DB) *GormSearchRepository {
	return &GormSearchRepository{db: db}
}

// Save persists a new search record and backfills the generated ID.
func (r *GormSearchRepository) Save(ctx context.Context, record *analyticsDomain.SearchRecord) error {
	model := toSearchModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save search record: %w", err)
	}
	record.ID = model.ID
	return nil
}

// Recent retrieves the most recent search records, newest first.
func (r *GormSearchRepository) Recent(ctx context.Context, limit int) ([]*analyticsDomain.SearchRecord, error) {
	var models []SearchRecordModel
	if err := r.db.WithContext(ctx).
		Order("searched_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	return toSearchRecords(models), nil
}

// ByPhone retrieves a customer's search records, newest first.
func (r *GormSearchRepository) ByPhone(ctx context.Context, phone string) ([]*analyticsDomain.SearchRecord, error) {
	var models []SearchRecordModel
	if err := r.db.WithContext(ctx).
		Where("phone_number = ?", phone).
		Order("searched_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find searches by phone: %w", err)
	}
	return toSearchRecords(models), nil
}

// MostRecentByPhone retrieves the latest record for a phone number.
func (r *GormSearchRepository) MostRecentByPhone(ctx context.Context, phone string) (*analyticsDomain.SearchRecord, error) {
	var model SearchRecordModel
	if err := r.db.WithContext(ctx).
		Where("phone_number = ?", phone).
		Order("searched_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("SearchRecord", phone)
		}
		return nil, fmt.Errorf("failed to find latest search by phone: %w", err)
	}
	return toSearchRecord(&model), nil
}

// Update overwrites an existing record by ID.
func (r *GormSearchRepository) Update(ctx context.Context, record *analyticsDomain.SearchRecord) error {
	model := toSearchModel(record)
	result := r.db.WithContext(ctx).
		Model(&SearchRecordModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"phone_number":     model.PhoneNumber,
			"source":           model.Source,
			"destination":      model.Destination,
			"travel_date":      model.TravelDate,
			"vehicle_interest": model.VehicleInterest,
			"searched_at":      model.SearchedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update search record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("SearchRecord", fmt.Sprintf("%d", record.ID))
	}
	return nil
}

// --- Conversion Helpers ---

func toSearchModel(record *analyticsDomain.SearchRecord) *SearchRecordModel {
	return &SearchRecordModel{
		ID:              record.ID,
		PhoneNumber:     record.PhoneNumber,
		Source:          record.Source,
		Destination:     record.Destination,
		TravelDate:      record.TravelDate.Time(),
		VehicleInterest: record.VehicleInterest,
		SearchedAt:      record.SearchedAt,
	}
}

func toSearchRecord(m *SearchRecordModel) *analyticsDomain.SearchRecord {
	return &analyticsDomain.SearchRecord{
		ID:              m.ID,
		PhoneNumber:     m.PhoneNumber,
		Source:          m.Source,
		Destination:     m.Destination,
		TravelDate:      bookingDomain.TravelDateOf(m.TravelDate),
		VehicleInterest: m.VehicleInterest,
		SearchedAt:      m.SearchedAt,
	}
}

func toSearchRecords(models []SearchRecordModel) []*analyticsDomain.SearchRecord {
	records := make([]*analyticsDomain.SearchRecord, len(models))
	for i, m := range models {
		records[i] = toSearchRecord(&m)
	}
	return records
}
