package booking

import "time"

// StatusChange is a single entry in a booking's status history. Entries are
// immutable once appended.
type StatusChange struct {
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Reason    string        `json:"reason"`
}

// Audit reasons written by the core flows.
const (
	ReasonSubmitted         = "Booking request submitted"
	ReasonModifiedReconfirm = "Booking modified by customer - moved to pending for re-confirmation"
	ReasonModified          = "Booking modified by customer"
)
