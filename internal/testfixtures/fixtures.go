package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RoomOption configures a generated room fixture.
type RoomOption func(*persistence.Room)

// NewRoomFixture returns a deterministic room record with optional overrides.
func NewRoomFixture(opts ...RoomOption) persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	capacity := 10
	room := persistence.Room{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Sala %03d", idx),
		Color:     "#FFD700",
		Capacity:  &capacity,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) { r.ID = id }
}

// WithRoomCapacity overrides the generated capacity. A nil value marks the
// room as unbounded.
func WithRoomCapacity(capacity *int) RoomOption {
	return func(r *persistence.Room) { r.Capacity = capacity }
}

// BookingOption configures a generated booking fixture.
type BookingOption func(*persistence.Booking)

// NewBookingFixture returns a deterministic booking record with optional
// overrides. Successive fixtures occupy successive non-overlapping hours.
func NewBookingFixture(roomID string, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := int(7*60 + (idx%9)*60)
	booking := persistence.Booking{
		ID:                   fmt.Sprintf("booking-%03d", idx),
		UserName:             fmt.Sprintf("Usuario %03d", idx),
		UserEmail:            fmt.Sprintf("usuario%03d@example.com", idx),
		Area:                 "Ventas",
		Date:                 "2025-03-12",
		StartMinutes:         start,
		EndMinutes:           start + 60,
		RoomID:               roomID,
		Attendees:            2,
		CancelToken:          fmt.Sprintf("token-%03d", idx),
		CancelTokenExpiresAt: referenceTime.Add(48 * time.Hour),
		CreatedAt:            referenceTime,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithWindow overrides the booking's date and minute window.
func WithWindow(date string, startMinutes, endMinutes int) BookingOption {
	return func(b *persistence.Booking) {
		b.Date = date
		b.StartMinutes = startMinutes
		b.EndMinutes = endMinutes
	}
}

// WithCancelToken overrides the cancellation token and its expiry.
func WithCancelToken(token string, expiresAt time.Time) BookingOption {
	return func(b *persistence.Booking) {
		b.CancelToken = token
		b.CancelTokenExpiresAt = expiresAt
	}
}
