package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConstraintViolation indicates the record failed a storage constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

// OverlapError reports that a booking write was rejected because the room is
// already reserved for an intersecting window. The check and the write happen
// inside one transaction, so a returned conflict is authoritative.
type OverlapError struct {
	Conflicting Booking
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("persistence: room %s already booked on %s between %d and %d minutes",
		e.Conflicting.RoomID, e.Conflicting.Date, e.Conflicting.StartMinutes, e.Conflicting.EndMinutes)
}
