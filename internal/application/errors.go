package application

import (
	"errors"
	"fmt"

	"github.com/example/roombooking/internal/schedule"
)

var (
	// ErrUnauthorized is returned when the caller is not an authenticated administrator.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned for a failed username/password check.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrRoomNotFound is returned when the target room does not exist.
	ErrRoomNotFound = errors.New("application: room not found")
	// ErrBookingNotFound is returned when the target booking does not exist.
	ErrBookingNotFound = errors.New("application: booking not found")
	// ErrTokenExpired is returned when a cancellation token is past its expiry.
	ErrTokenExpired = errors.New("application: cancellation token expired")
	// ErrInvalidWindow wraps the schedule package's window violations.
	ErrInvalidWindow = errors.New("application: invalid time window")
)

// CapacityError rejects a booking whose attendee count exceeds the room
// capacity. The capacity is carried so the rejection message can name it.
type CapacityError struct {
	Capacity  int
	Attendees int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("application: %d attendees exceed the room capacity of %d", e.Attendees, e.Capacity)
}

// ConflictError rejects a booking whose window overlaps an existing one.
type ConflictError struct {
	Conflicting Booking
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("application: window %s-%s conflicts with booking %s",
		e.Conflicting.Start, e.Conflicting.End, e.Conflicting.ID)
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// invalidWindowError wraps a schedule violation in the ErrInvalidWindow sentinel.
func invalidWindowError(cause error) error {
	return fmt.Errorf("%w: %s", ErrInvalidWindow, windowReason(cause))
}

func windowReason(cause error) string {
	switch {
	case errors.Is(cause, schedule.ErrWindowOrder):
		return "start must precede end"
	case errors.Is(cause, schedule.ErrOutOfHours):
		return fmt.Sprintf("bookings run from %s to %s", schedule.OpeningTime, schedule.ClosingTime)
	default:
		return cause.Error()
	}
}
