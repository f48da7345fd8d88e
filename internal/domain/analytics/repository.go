package analytics

import "context"

// SearchRepository defines the persistence contract for search records.
type SearchRepository interface {
	// Save persists a new search record.
	Save(ctx context.Context, record *SearchRecord) error

	// Recent retrieves the most recent search records, newest first.
	Recent(ctx context.Context, limit int) ([]*SearchRecord, error)

	// ByPhone retrieves a customer's search records, newest first.
	ByPhone(ctx context.Context, phone string) ([]*SearchRecord, error)

	// MostRecentByPhone retrieves the latest record for a phone number, or a
	// not-found error when the customer never searched.
	MostRecentByPhone(ctx context.Context, phone string) (*SearchRecord, error)

	// Update overwrites an existing record by ID.
	Update(ctx context.Context, record *SearchRecord) error
}
