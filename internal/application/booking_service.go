package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/internal/events"
	"github.com/vehiclebooking/service-booking/pkg/domain"
	"github.com/vehiclebooking/service-booking/pkg/kafka"
	"github.com/vehiclebooking/service-booking/pkg/metrics"
)

const eventSource = "service-booking"

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// ReminderStore schedules travel reminders keyed by booking ID.
type ReminderStore interface {
	Schedule(ctx context.Context, bookingID string, remindAt time.Time) error
	Get(ctx context.Context, bookingID string) (time.Time, error)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Source      string                   `json:"source" binding:"required"`
	Destination string                   `json:"destination" binding:"required"`
	TravelDate  bookingDomain.TravelDate `json:"travel_date" binding:"required"`
	PhoneNumber string                   `json:"phone_number" binding:"required"`
	VehicleType string                   `json:"vehicle_type" binding:"required"`
}

// ModifyBookingRequest holds the trip fields a customer may edit.
type ModifyBookingRequest struct {
	Source      string                   `json:"source" binding:"required"`
	Destination string                   `json:"destination" binding:"required"`
	TravelDate  bookingDomain.TravelDate `json:"travel_date" binding:"required"`
	VehicleType string                   `json:"vehicle_type"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	BookingID     string                       `json:"booking_id"`
	Source        string                       `json:"source"`
	Destination   string                       `json:"destination"`
	TravelDate    bookingDomain.TravelDate     `json:"travel_date"`
	PhoneNumber   string                       `json:"phone_number"`
	VehicleType   string                       `json:"vehicle_type"`
	Status        string                       `json:"status"`
	StatusDisplay string                       `json:"status_display"`
	StatusHistory []bookingDomain.StatusChange `json:"status_history"`
	Version       int64                        `json:"version"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// ModifyBookingResult reports the outcome of a customer edit.
type ModifyBookingResult struct {
	Booking BookingDTO `json:"booking"`
	Changed bool       `json:"changed"`
	Message string     `json:"message"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings  int64            `json:"total_bookings"`
	ActiveBookings int64            `json:"active_bookings"`
	ByStatus       map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	reminders ReminderStore
	producer  EventPublisher
	metrics   *metrics.Metrics
	clock     bookingDomain.Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	reminders ReminderStore,
	producer EventPublisher,
	m *metrics.Metrics,
	clock bookingDomain.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		reminders: reminders,
		producer:  producer,
		metrics:   m,
		clock:     clock,
		logger:    logger,
	}
}

// CreateBooking validates, persists, and announces a new booking. The booking
// ID is assigned by the repository inside the insert transaction.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	record, err := bookingDomain.NewBookingRecord(
		req.Source,
		req.Destination,
		req.TravelDate,
		req.PhoneNumber,
		req.VehicleType,
		s.clock,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			s.metrics.DuplicateRejections.Inc()
		}
		return nil, err
	}
	s.metrics.BookingsCreated.Inc()

	evt := events.BookingCreatedEvent{
		BookingID:   record.ID(),
		Source:      record.Source(),
		Destination: record.Destination(),
		TravelDate:  record.TravelDate(),
		PhoneNumber: record.PhoneNumber(),
		VehicleType: record.VehicleType(),
		OccurredAt:  s.clock.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, evt)

	result := toBookingDTO(record)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*BookingDTO, error) {
	record, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(record)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a phone number.
func (s *BookingService) GetCustomerBookings(ctx context.Context, phone string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	records, total, err := s.repo.GetByPhone(ctx, phone, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(records), total, page, limit)
	return &result, nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	records, total, err := s.repo.GetAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := domain.NewPaginatedResult(toBookingDTOs(records), total, page, limit)
	return &result, nil
}

// GetBookingsByStatus returns every booking currently in the given status (admin).
func (s *BookingService) GetBookingsByStatus(ctx context.Context, status string) ([]BookingDTO, error) {
	parsed, err := bookingDomain.ParseBookingStatus(status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	records, err := s.repo.GetByStatus(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(records), nil
}

// TransitionStatus applies a policy-checked status transition and persists it.
// An illegal transition is rejected and leaves the booking untouched.
func (s *BookingService) TransitionStatus(ctx context.Context, bookingID, target, reason string) (*BookingDTO, error) {
	targetStatus, err := bookingDomain.ParseBookingStatus(target)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	record, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := record.Status()
	if reason == "" {
		reason = "Status changed to " + targetStatus.DisplayName()
	}

	if err := record.ChangeStatus(targetStatus, reason, s.clock.Now()); err != nil {
		s.metrics.RejectedTransitions.WithLabelValues(string(from), string(targetStatus)).Inc()
		return nil, err
	}

	record.IncrementVersion()
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.metrics.StatusTransitions.WithLabelValues(string(from), string(targetStatus)).Inc()

	evt := events.StatusChangedEvent{
		BookingID:  record.ID(),
		From:       string(from),
		To:         string(targetStatus),
		Reason:     reason,
		Message:    from.TransitionMessage(targetStatus),
		OccurredAt: s.clock.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingStatusChanged, evt)

	result := toBookingDTO(record)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, reason string) (*BookingDTO, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "Booking cancelled by customer"
	}
	return s.TransitionStatus(ctx, bookingID, string(bookingDomain.StatusCancelled), reason)
}

// ModifyBooking applies a customer edit to their own booking. Identity and
// history are preserved; a confirmed booking reverts to pending for
// re-confirmation. An edit that changes nothing is a no-op.
func (s *BookingService) ModifyBooking(ctx context.Context, bookingID, phone string, req ModifyBookingRequest) (*ModifyBookingResult, error) {
	record, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if record.PhoneNumber() != strings.TrimSpace(phone) {
		return nil, domain.NewForbiddenError("booking does not belong to this customer")
	}

	source := strings.TrimSpace(req.Source)
	destination := strings.TrimSpace(req.Destination)
	vehicleType := strings.TrimSpace(req.VehicleType)

	if !bookingDomain.ModificationChangesFields(record, source, destination, req.TravelDate, vehicleType) {
		return &ModifyBookingResult{
			Booking: toBookingDTO(record),
			Changed: false,
			Message: "No changes detected",
		}, nil
	}

	from := record.Status()
	modified, err := record.CreateModifiedCopy(source, destination, req.TravelDate, vehicleType, s.clock)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.ApplyModificationSideEffect(modified, s.clock.Now()); err != nil {
		return nil, err
	}

	modified.IncrementVersion()
	if err := s.repo.Update(ctx, modified); err != nil {
		return nil, err
	}
	s.metrics.BookingsModified.Inc()

	message := "Booking updated"
	if from == bookingDomain.StatusConfirmed {
		message = "Booking updated and moved to pending for re-confirmation"
	}

	latest := modified.LatestStatusChange()
	reason := ""
	if latest != nil {
		reason = latest.Reason
	}
	evt := events.StatusChangedEvent{
		BookingID:  modified.ID(),
		From:       string(from),
		To:         string(modified.Status()),
		Reason:     reason,
		Message:    message,
		OccurredAt: s.clock.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingStatusChanged, evt)

	return &ModifyBookingResult{
		Booking: toBookingDTO(modified),
		Changed: true,
		Message: message,
	}, nil
}

// ScheduleReminder stores a travel reminder for an active booking.
func (s *BookingService) ScheduleReminder(ctx context.Context, bookingID string, remindAt time.Time) error {
	record, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if record.Status().IsTerminal() {
		return domain.NewValidationError("cannot set a reminder on a " + record.Status().DisplayName() + " booking")
	}

	if err := s.reminders.Schedule(ctx, record.ID(), remindAt); err != nil {
		return err
	}

	evt := events.ReminderSetEvent{
		BookingID:  record.ID(),
		RemindAt:   remindAt.UTC(),
		OccurredAt: s.clock.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingReminderSet, evt)
	return nil
}

// GetReminder returns the pending reminder time for a booking.
func (s *BookingService) GetReminder(ctx context.Context, bookingID string) (time.Time, error) {
	return s.reminders.Get(ctx, bookingID)
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total, active int64
	for status, c := range counts {
		total += c
		switch bookingDomain.BookingStatus(status) {
		case bookingDomain.StatusPending, bookingDomain.StatusConfirmed, bookingDomain.StatusInProgress:
			active += c
		}
	}

	return &BookingStatsDTO{
		TotalBookings:  total,
		ActiveBookings: active,
		ByStatus:       counts,
	}, nil
}

// DeleteAllBookings clears the entire collection (admin).
func (s *BookingService) DeleteAllBookings(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("all bookings deleted")
	return nil
}

// --- Helpers ---

func toBookingDTO(record *bookingDomain.BookingRecord) BookingDTO {
	return BookingDTO{
		BookingID:     record.ID(),
		Source:        record.Source(),
		Destination:   record.Destination(),
		TravelDate:    record.TravelDate(),
		PhoneNumber:   record.PhoneNumber(),
		VehicleType:   record.VehicleType(),
		Status:        string(record.Status()),
		StatusDisplay: record.Status().DisplayName(),
		StatusHistory: record.StatusHistory(),
		Version:       record.Version(),
		CreatedAt:     record.CreatedAt(),
		UpdatedAt:     record.UpdatedAt(),
	}
}

func toBookingDTOs(records []*bookingDomain.BookingRecord) []BookingDTO {
	dtos := make([]BookingDTO, len(records))
	for i, record := range records {
		dtos[i] = toBookingDTO(record)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
