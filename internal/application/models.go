package application

import (
	"time"

	"github.com/example/roombooking/internal/schedule"
)

// Room represents a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Color       string
	Description string
	// Capacity is nil when occupancy is unbounded.
	Capacity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents a persisted reservation.
type Booking struct {
	ID                   string
	UserName             string
	UserEmail            string
	Area                 string
	Date                 time.Time // calendar date, midnight UTC
	Start                schedule.TimeOfDay
	End                  schedule.TimeOfDay
	RoomID               string
	Attendees            int
	CancelToken          string
	CancelTokenExpiresAt time.Time
	CreatedAt            time.Time
}

// Window returns the booking's half-open time window.
func (b Booking) Window() schedule.Window {
	return schedule.Window{Start: b.Start, End: b.End}
}

// AdminUser represents a dashboard administrator account.
type AdminUser struct {
	ID        string
	Username  string
	Active    bool
	CreatedAt time.Time
}

// AdminCredentials pairs an administrator with the stored password hash.
type AdminCredentials struct {
	Admin        AdminUser
	PasswordHash string
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	UserName  string
	UserEmail string
	Area      string
	Date      time.Time
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
	RoomID    string
	Attendees int
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Input BookingInput
}

// UpdateBookingParams wraps the data required to update an existing booking.
type UpdateBookingParams struct {
	BookingID string
	Input     BookingInput
}

// BookingFilter narrows booking listings. A nil Date matches every date.
type BookingFilter struct {
	RoomID string
	Date   *time.Time
}

// RoomInput captures the fields needed to register a room.
type RoomInput struct {
	Name        string
	Color       string
	Description string
	Capacity    *int
}

// LoginParams captures an administrator login attempt.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult carries the issued session token and its cookie lifetime.
type LoginResult struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}
