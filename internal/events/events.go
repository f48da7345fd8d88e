package events

import (
	"time"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
)

// TopicBookingEvents carries every event the booking service emits.
const TopicBookingEvents = "booking.events"

// Event types on TopicBookingEvents.
const (
	BookingCreated       = "booking.new"
	BookingStatusChanged = "booking.status_changed"
	BookingReminderSet   = "booking.reminder_set"
)

// BookingCreatedEvent is published after a booking is persisted.
type BookingCreatedEvent struct {
	BookingID   string                   `json:"booking_id"`
	Source      string                   `json:"source"`
	Destination string                   `json:"destination"`
	TravelDate  bookingDomain.TravelDate `json:"travel_date"`
	PhoneNumber string                   `json:"phone_number"`
	VehicleType string                   `json:"vehicle_type"`
	OccurredAt  time.Time                `json:"occurred_at"`
}

// StatusChangedEvent is published after a status transition (including the
// modification side effect) is persisted.
type StatusChangedEvent struct {
	BookingID  string    `json:"booking_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReminderSetEvent is published when a travel reminder is scheduled.
type ReminderSetEvent struct {
	BookingID  string    `json:"booking_id"`
	RemindAt   time.Time `json:"remind_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
