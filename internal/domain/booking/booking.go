package booking

import (
	"strings"
	"time"

	"github.com/vehiclebooking/service-booking/pkg/domain"
)

// BookingRecord is the aggregate root for the booking domain. The status
// field changes only through ChangeStatus (policy-checked) or RevertToPending
// (the modification side effect); every change appends to the history, which
// is append-only and never empty.
type BookingRecord struct {
	id          string
	source      string
	destination string
	travelDate  TravelDate
	phoneNumber string
	vehicleType string
	status      BookingStatus
	history     []StatusChange

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBookingRecord creates a booking in the pending state with the initial
// history entry. The booking ID is not assigned here; the repository assigns
// it at save time so uniqueness is checked against the persisted set.
func NewBookingRecord(source, destination string, travelDate TravelDate, phoneNumber, vehicleType string, clock Clock) (*BookingRecord, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	phoneNumber = strings.TrimSpace(phoneNumber)
	vehicleType = strings.TrimSpace(vehicleType)

	now := clock.Now().UTC()
	if err := validateTripFields(source, destination, travelDate, now); err != nil {
		return nil, err
	}
	if !IsValidPhoneNumber(phoneNumber) {
		return nil, domain.NewValidationError("invalid phone number format")
	}
	if vehicleType == "" {
		return nil, domain.NewValidationError("vehicle type is required")
	}

	return &BookingRecord{
		source:      source,
		destination: destination,
		travelDate:  travelDate,
		phoneNumber: phoneNumber,
		vehicleType: vehicleType,
		status:      StatusPending,
		history: []StatusChange{
			{Status: StatusPending, Timestamp: now, Reason: ReasonSubmitted},
		},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBookingRecord rebuilds a BookingRecord from persistence data.
// Legacy rows may carry an empty status or history; both are normalized so
// the status and history invariants hold for every record in memory.
func ReconstructBookingRecord(
	id string,
	source, destination string,
	travelDate TravelDate,
	phoneNumber, vehicleType string,
	status BookingStatus,
	history []StatusChange,
	version int64,
	createdAt, updatedAt time.Time,
) *BookingRecord {
	if status == "" {
		status = StatusPending
	}
	if len(history) == 0 {
		history = []StatusChange{
			{Status: status, Timestamp: createdAt, Reason: ReasonSubmitted},
		}
	}
	return &BookingRecord{
		id:          id,
		source:      source,
		destination: destination,
		travelDate:  travelDate,
		phoneNumber: phoneNumber,
		vehicleType: vehicleType,
		status:      status,
		history:     history,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking identifier, or "" if not yet assigned.
func (b *BookingRecord) ID() string { return b.id }

// Source returns the trip origin.
func (b *BookingRecord) Source() string { return b.source }

// Destination returns the trip destination.
func (b *BookingRecord) Destination() string { return b.destination }

// TravelDate returns the trip date.
func (b *BookingRecord) TravelDate() TravelDate { return b.travelDate }

// PhoneNumber returns the customer's contact number, the identity key for lookups.
func (b *BookingRecord) PhoneNumber() string { return b.phoneNumber }

// VehicleType returns the requested vehicle type.
func (b *BookingRecord) VehicleType() string { return b.vehicleType }

// Status returns the current booking status.
func (b *BookingRecord) Status() BookingStatus { return b.status }

// StatusHistory returns a copy of the ordered status history.
func (b *BookingRecord) StatusHistory() []StatusChange {
	out := make([]StatusChange, len(b.history))
	copy(out, b.history)
	return out
}

// LatestStatusChange returns the most recent history entry, or nil if the
// history is somehow empty.
func (b *BookingRecord) LatestStatusChange() *StatusChange {
	if len(b.history) == 0 {
		return nil
	}
	last := b.history[len(b.history)-1]
	return &last
}

// Version returns the entity version for optimistic locking.
func (b *BookingRecord) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *BookingRecord) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *BookingRecord) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AssignID sets the booking identifier. The ID is immutable once assigned.
func (b *BookingRecord) AssignID(id string) error {
	if b.id != "" {
		return domain.NewConflictError("booking ID already assigned: " + b.id)
	}
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("booking ID must not be empty")
	}
	b.id = id
	return nil
}

// ChangeStatus applies a policy-checked transition. An illegal transition is
// rejected with an invalid-state error and leaves status and history
// untouched. This is the only sanctioned way to move the booking forward.
func (b *BookingRecord) ChangeStatus(target BookingStatus, reason string, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.history = append(b.history, StatusChange{Status: target, Timestamp: now.UTC(), Reason: reason})
	b.updatedAt = now.UTC()
	return nil
}

// AppendHistoryNote records an audit entry at the current status without
// transitioning. Used when an action must be traceable but no lifecycle
// change occurred.
func (b *BookingRecord) AppendHistoryNote(reason string, now time.Time) {
	b.history = append(b.history, StatusChange{Status: b.status, Timestamp: now.UTC(), Reason: reason})
	b.updatedAt = now.UTC()
}

// RevertToPending moves a confirmed booking back to pending. This is the
// modification side effect: editing trip details voids the confirmation, and
// the booking must be re-reviewed. It is deliberately not part of the forward
// transition table, which still rejects confirmed -> pending.
func (b *BookingRecord) RevertToPending(reason string, now time.Time) error {
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusPending))
	}
	b.status = StatusPending
	b.history = append(b.history, StatusChange{Status: StatusPending, Timestamp: now.UTC(), Reason: reason})
	b.updatedAt = now.UTC()
	return nil
}

// CreateModifiedCopy produces a new record with the trip fields replaced and
// everything else preserved: booking ID, phone number, status, and the full
// status history. Supports the customer edit flow without losing the audit trail.
func (b *BookingRecord) CreateModifiedCopy(source, destination string, travelDate TravelDate, vehicleType string, clock Clock) (*BookingRecord, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	vehicleType = strings.TrimSpace(vehicleType)

	now := clock.Now().UTC()
	if err := validateTripFields(source, destination, travelDate, now); err != nil {
		return nil, err
	}
	if vehicleType == "" {
		vehicleType = b.vehicleType
	}

	history := make([]StatusChange, len(b.history))
	copy(history, b.history)

	return &BookingRecord{
		id:          b.id,
		source:      source,
		destination: destination,
		travelDate:  travelDate,
		phoneNumber: b.phoneNumber,
		vehicleType: vehicleType,
		status:      b.status,
		history:     history,
		version:     b.version,
		createdAt:   b.createdAt,
		updatedAt:   now,
	}, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *BookingRecord) IncrementVersion() {
	b.version++
}

func validateTripFields(source, destination string, travelDate TravelDate, now time.Time) error {
	if source == "" {
		return domain.NewValidationError("source is required")
	}
	if destination == "" {
		return domain.NewValidationError("destination is required")
	}
	if travelDate.IsZero() {
		return domain.NewValidationError("travel date is required")
	}
	if travelDate.Before(TravelDateOf(now)) {
		return domain.NewValidationError("travel date must not be in the past")
	}
	return nil
}
