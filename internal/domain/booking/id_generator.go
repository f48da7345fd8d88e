package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	bookingIDPrefix = "BK"
	maxIDAttempts   = 10
)

// GenerateBookingID allocates a booking identifier that is unique against
// the set reported by exists. Candidates combine a millisecond timestamp with
// a random suffix; the suffix range widens tenfold on every collision. After
// maxIDAttempts collisions an error is returned rather than looping forever.
func GenerateBookingID(exists func(id string) bool, clock Clock) (string, error) {
	suffixRange := int64(1000)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(suffixRange))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking ID: %w", err)
		}

		candidate := fmt.Sprintf("%s%d%d", bookingIDPrefix, clock.Now().UnixMilli(), n.Int64())
		if !exists(candidate) {
			return candidate, nil
		}
		suffixRange *= 10
	}
	return "", fmt.Errorf("failed to allocate a unique booking ID after %d attempts", maxIDAttempts)
}
