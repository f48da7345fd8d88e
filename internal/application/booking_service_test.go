package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/internal/events"
	"github.com/vehiclebooking/service-booking/pkg/domain"
	"github.com/vehiclebooking/service-booking/pkg/kafka"
	"github.com/vehiclebooking/service-booking/pkg/metrics"
)

var testNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// fakeBookingRepo is an in-memory BookingRepository honoring the same
// contract as the GORM implementation.
type fakeBookingRepo struct {
	records       []*bookingDomain.BookingRecord
	nextID        int
	monthlyNow    time.Time
	monthlyMonths int
	weekdayCounts []bookingDomain.WeekdayCount
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1}
}

func (r *fakeBookingRepo) indexByID(id string) int {
	for i, rec := range r.records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

func (r *fakeBookingRepo) Create(_ context.Context, record *bookingDomain.BookingRecord) error {
	if record.ID() == "" {
		id := fmt.Sprintf("BK%013d%d", testNow.UnixMilli(), r.nextID)
		r.nextID++
		if err := record.AssignID(id); err != nil {
			return err
		}
	}
	if r.indexByID(record.ID()) >= 0 {
		return domain.NewConflictError("booking ID already exists: " + record.ID())
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeBookingRepo) GetAll(_ context.Context, page, limit int) ([]*bookingDomain.BookingRecord, int64, error) {
	return r.records, int64(len(r.records)), nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*bookingDomain.BookingRecord, error) {
	if i := r.indexByID(id); i >= 0 {
		return r.records[i], nil
	}
	return nil, domain.NewNotFoundError("Booking", id)
}

func (r *fakeBookingRepo) GetByPhone(_ context.Context, phone string, page, limit int) ([]*bookingDomain.BookingRecord, int64, error) {
	var out []*bookingDomain.BookingRecord
	for _, rec := range r.records {
		if rec.PhoneNumber() == phone {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) GetByStatus(_ context.Context, status bookingDomain.BookingStatus) ([]*bookingDomain.BookingRecord, error) {
	var out []*bookingDomain.BookingRecord
	for _, rec := range r.records {
		if rec.Status() == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, record *bookingDomain.BookingRecord) error {
	if record.ID() != "" {
		if i := r.indexByID(record.ID()); i >= 0 {
			if r.records[i] != record && r.records[i].Version() != record.Version()-1 {
				return domain.NewConflictError("booking was modified by another transaction")
			}
			r.records[i] = record
			return nil
		}
	}
	for i, rec := range r.records {
		if rec.CreatedAt().Equal(record.CreatedAt()) {
			r.records[i] = record
			return nil
		}
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeBookingRepo) DeleteAll(_ context.Context) error {
	r.records = nil
	return nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, rec := range r.records {
		counts[string(rec.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) PopularRoutes(_ context.Context, limit int) ([]bookingDomain.RouteCount, error) {
	return nil, nil
}

func (r *fakeBookingRepo) MonthlyCounts(_ context.Context, now time.Time, months int) ([]bookingDomain.MonthlyCount, error) {
	r.monthlyNow = now
	r.monthlyMonths = months
	return nil, nil
}

func (r *fakeBookingRepo) WeekdayCounts(_ context.Context) ([]bookingDomain.WeekdayCount, error) {
	return r.weekdayCounts, nil
}

// recordingPublisher captures published events instead of touching Kafka.
type recordingPublisher struct {
	published []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) lastEventType(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, p.published)
	return p.published[len(p.published)-1].Type
}

// fakeReminderStore keeps reminders in a map.
type fakeReminderStore struct {
	reminders map[string]time.Time
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[string]time.Time)}
}

func (s *fakeReminderStore) Schedule(_ context.Context, bookingID string, remindAt time.Time) error {
	if !remindAt.After(testNow) {
		return domain.NewValidationError("reminder time must be in the future")
	}
	s.reminders[bookingID] = remindAt
	return nil
}

func (s *fakeReminderStore) Get(_ context.Context, bookingID string) (time.Time, error) {
	if at, ok := s.reminders[bookingID]; ok {
		return at, nil
	}
	return time.Time{}, domain.NewNotFoundError("Reminder", bookingID)
}

type serviceFixture struct {
	service   *BookingService
	repo      *fakeBookingRepo
	publisher *recordingPublisher
	reminders *fakeReminderStore
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newFakeBookingRepo()
	publisher := &recordingPublisher{}
	reminders := newFakeReminderStore()
	service := NewBookingService(
		repo,
		reminders,
		publisher,
		metrics.New("test", prometheus.NewRegistry()),
		bookingDomain.FixedClock(testNow),
		zap.NewNop(),
	)
	return &serviceFixture{service: service, repo: repo, publisher: publisher, reminders: reminders}
}

func validCreateRequest() CreateBookingRequest {
	return CreateBookingRequest{
		Source:      "Airport",
		Destination: "Downtown",
		TravelDate:  bookingDomain.NewTravelDate(2026, time.March, 11),
		PhoneNumber: "+15551234567",
		VehicleType: "Sedan",
	}
}

func TestCreateBookingAssignsIDAndPublishes(t *testing.T) {
	f := newServiceFixture(t)

	dto, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, dto.BookingID)
	assert.Equal(t, "pending", dto.Status)
	require.Len(t, dto.StatusHistory, 1)
	assert.Equal(t, events.BookingCreated, f.publisher.lastEventType(t))

	var payload events.BookingCreatedEvent
	require.NoError(t, f.publisher.published[0].ParseData(&payload))
	assert.Equal(t, dto.BookingID, payload.BookingID)
	assert.Equal(t, "Airport", payload.Source)
}

func TestCreateBookingValidationFailureDoesNotPersist(t *testing.T) {
	f := newServiceFixture(t)

	req := validCreateRequest()
	req.PhoneNumber = "123"
	_, err := f.service.CreateBooking(context.Background(), req)

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Empty(t, f.repo.records)
	assert.Empty(t, f.publisher.published)
}

func TestTransitionStatusHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	dto, err := f.service.TransitionStatus(context.Background(), created.BookingID, "confirmed", "Approved by dispatcher")
	require.NoError(t, err)

	assert.Equal(t, "confirmed", dto.Status)
	require.Len(t, dto.StatusHistory, 2)
	assert.Equal(t, "Approved by dispatcher", dto.StatusHistory[1].Reason)
	assert.Equal(t, int64(2), dto.Version)
	assert.Equal(t, events.BookingStatusChanged, f.publisher.lastEventType(t))
}

func TestTransitionStatusRejectsIllegalMove(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	_, err = f.service.TransitionStatus(context.Background(), created.BookingID, "completed", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))

	// Persisted record is untouched.
	stored, err := f.service.GetBooking(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, int64(1), stored.Version)
}

func TestTransitionStatusUnknownBooking(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.TransitionStatus(context.Background(), "BK-missing", "confirmed", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCancelBookingUsesDefaultReason(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	dto, err := f.service.CancelBooking(context.Background(), created.BookingID, "")
	require.NoError(t, err)

	assert.Equal(t, "cancelled", dto.Status)
	assert.Equal(t, "Booking cancelled by customer", dto.StatusHistory[1].Reason)
}

func TestModifyBookingNoChangesIsNoOp(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	eventsBefore := len(f.publisher.published)

	result, err := f.service.ModifyBooking(context.Background(), created.BookingID, created.PhoneNumber, ModifyBookingRequest{
		Source:      "Airport",
		Destination: "Downtown",
		TravelDate:  bookingDomain.NewTravelDate(2026, time.March, 11),
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Len(t, result.Booking.StatusHistory, 1)
	assert.Equal(t, int64(1), result.Booking.Version)
	assert.Len(t, f.publisher.published, eventsBefore)
}

func TestModifyConfirmedBookingRevertsToPending(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(context.Background(), created.BookingID, "confirmed", "")
	require.NoError(t, err)

	result, err := f.service.ModifyBooking(context.Background(), created.BookingID, created.PhoneNumber, ModifyBookingRequest{
		Source:      "Airport",
		Destination: "Harbor",
		TravelDate:  bookingDomain.NewTravelDate(2026, time.March, 12),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, "pending", result.Booking.Status)
	assert.Equal(t, "Harbor", result.Booking.Destination)
	require.Len(t, result.Booking.StatusHistory, 3)
	assert.Equal(t, bookingDomain.ReasonModifiedReconfirm, result.Booking.StatusHistory[2].Reason)
	assert.Equal(t, created.BookingID, result.Booking.BookingID)
	assert.Equal(t, int64(3), result.Booking.Version)
}

func TestModifyInProgressBookingKeepsStatus(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(context.Background(), created.BookingID, "confirmed", "")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(context.Background(), created.BookingID, "in_progress", "")
	require.NoError(t, err)

	result, err := f.service.ModifyBooking(context.Background(), created.BookingID, created.PhoneNumber, ModifyBookingRequest{
		Source:      "Airport",
		Destination: "Harbor",
		TravelDate:  bookingDomain.NewTravelDate(2026, time.March, 12),
	})
	require.NoError(t, err)

	assert.Equal(t, "in_progress", result.Booking.Status)
	assert.Equal(t, bookingDomain.ReasonModified, result.Booking.StatusHistory[len(result.Booking.StatusHistory)-1].Reason)
}

func TestModifyBookingWrongPhoneForbidden(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	_, err = f.service.ModifyBooking(context.Background(), created.BookingID, "+19998887777", ModifyBookingRequest{
		Source:      "Airport",
		Destination: "Harbor",
		TravelDate:  bookingDomain.NewTravelDate(2026, time.March, 12),
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestScheduleReminder(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	remindAt := testNow.Add(24 * time.Hour)
	require.NoError(t, f.service.ScheduleReminder(context.Background(), created.BookingID, remindAt))

	stored, err := f.service.GetReminder(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.True(t, stored.Equal(remindAt))
	assert.Equal(t, events.BookingReminderSet, f.publisher.lastEventType(t))
}

func TestScheduleReminderRejectsTerminalBooking(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = f.service.CancelBooking(context.Background(), created.BookingID, "changed plans")
	require.NoError(t, err)

	err = f.service.ScheduleReminder(context.Background(), created.BookingID, testNow.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestGetBookingStatsCountsActive(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	second, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = f.service.CancelBooking(context.Background(), second.BookingID, "")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(context.Background(), first.BookingID, "confirmed", "")
	require.NoError(t, err)

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ActiveBookings)
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
	assert.Equal(t, int64(1), stats.ByStatus["cancelled"])
}

func TestGetCustomerBookingsFiltersByPhone(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	other := validCreateRequest()
	other.PhoneNumber = "+19998887777"
	_, err = f.service.CreateBooking(context.Background(), other)
	require.NoError(t, err)

	page, err := f.service.GetCustomerBookings(context.Background(), "+15551234567", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "+15551234567", page.Items[0].PhoneNumber)
	assert.Equal(t, int64(1), page.Total)
}
