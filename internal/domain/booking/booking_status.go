package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// AllowedNextStatuses returns the statuses reachable from this one. The
// returned slice is a copy; terminal states yield an empty slice.
func (s BookingStatus) AllowedNextStatuses() []BookingStatus {
	allowed, exists := validTransitions[s]
	if !exists {
		return nil
	}
	out := make([]BookingStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// DisplayName returns the human-readable name of the status.
func (s BookingStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// TransitionMessage returns the customer-facing message for a transition to
// the target status, or a rejection message if the transition is not allowed.
func (s BookingStatus) TransitionMessage(target BookingStatus) string {
	if !s.CanTransitionTo(target) {
		return fmt.Sprintf("Cannot change status from %s to %s", s.DisplayName(), target.DisplayName())
	}
	switch target {
	case StatusConfirmed:
		return "Booking confirmed! You will be contacted shortly."
	case StatusInProgress:
		return "Your trip has started. Have a safe journey!"
	case StatusCompleted:
		return "Trip completed successfully. Thank you for using our service!"
	case StatusCancelled:
		return "Booking has been cancelled."
	default:
		return fmt.Sprintf("Status updated to %s", target.DisplayName())
	}
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
