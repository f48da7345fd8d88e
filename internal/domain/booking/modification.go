package booking

import "time"

// ModificationChangesFields reports whether a requested modification differs
// from the stored record in any trip field. When nothing differs the edit is
// a no-op and must not produce a history entry.
func ModificationChangesFields(b *BookingRecord, source, destination string, travelDate TravelDate, vehicleType string) bool {
	return b.Source() != source ||
		b.Destination() != destination ||
		!b.TravelDate().Equal(travelDate) ||
		(vehicleType != "" && b.VehicleType() != vehicleType)
}

// ApplyModificationSideEffect records the lifecycle consequence of a
// customer edit. A confirmed booking loses its confirmation and returns to
// pending for re-review; any other status stays put and only gains an audit
// entry.
func ApplyModificationSideEffect(b *BookingRecord, now time.Time) error {
	if b.Status() == StatusConfirmed {
		return b.RevertToPending(ReasonModifiedReconfirm, now)
	}
	b.AppendHistoryNote(ReasonModified, now)
	return nil
}
