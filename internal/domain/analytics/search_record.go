package analytics

import (
	"strings"
	"time"

	bookingDomain "github.com/vehiclebooking/service-booking/internal/domain/booking"
	"github.com/vehiclebooking/service-booking/pkg/domain"
)

// SearchRecord captures one vehicle search a customer performed, feeding the
// admin dashboard's demand analytics. It is a plain entity with no lifecycle
// of its own.
type SearchRecord struct {
	ID              int64                    `json:"id"`
	PhoneNumber     string                   `json:"phone_number"`
	Source          string                   `json:"source"`
	Destination     string                   `json:"destination"`
	TravelDate      bookingDomain.TravelDate `json:"travel_date"`
	VehicleInterest string                   `json:"vehicle_interest"`
	SearchedAt      time.Time                `json:"searched_at"`
}

// NewSearchRecord validates and builds a SearchRecord.
func NewSearchRecord(phoneNumber, source, destination string, travelDate bookingDomain.TravelDate, vehicleInterest string, now time.Time) (*SearchRecord, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)

	if !bookingDomain.IsValidPhoneNumber(phoneNumber) {
		return nil, domain.NewValidationError("invalid phone number format")
	}
	if source == "" {
		return nil, domain.NewValidationError("source is required")
	}
	if destination == "" {
		return nil, domain.NewValidationError("destination is required")
	}

	return &SearchRecord{
		PhoneNumber:     phoneNumber,
		Source:          source,
		Destination:     destination,
		TravelDate:      travelDate,
		VehicleInterest: strings.TrimSpace(vehicleInterest),
		SearchedAt:      now.UTC(),
	}, nil
}

// AppendVehicleInterest adds another vehicle type the customer showed
// interest in, comma-separated like the search history expects.
func (r *SearchRecord) AppendVehicleInterest(interest string) {
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return
	}
	if r.VehicleInterest == "" {
		r.VehicleInterest = interest
		return
	}
	r.VehicleInterest += ", " + interest
}
