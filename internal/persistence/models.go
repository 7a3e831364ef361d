package persistence

import "time"

// Room is the storage representation of a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Color       string
	Description string
	// Capacity is nil when the room has no occupancy limit.
	Capacity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is the storage representation of a reservation. The calendar date
// is stored as "YYYY-MM-DD" text and the window bounds as minutes since
// midnight, which keeps the overlap comparison a plain integer range check.
type Booking struct {
	ID                   string
	UserName             string
	UserEmail            string
	Area                 string
	Date                 string
	StartMinutes         int
	EndMinutes           int
	RoomID               string
	Attendees            int
	CancelToken          string
	CancelTokenExpiresAt time.Time
	CreatedAt            time.Time
}

// AdminUser is the storage representation of a dashboard administrator.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}
