package persistence

import "context"

// RoomRepository captures the storage operations for the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	ListRooms(ctx context.Context) ([]Room, error)
	CountRooms(ctx context.Context) (int, error)
}

// BookingFilter narrows booking listings. Zero values match everything.
type BookingFilter struct {
	RoomID string
	Date   string
}

// BookingRepository captures the storage operations for reservations.
//
// CreateBooking and UpdateBooking perform the overlap check and the write in
// a single transaction and return *OverlapError when the window is taken;
// UpdateBooking excludes the booking's own ID from the comparison set.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	GetBookingByCancelToken(ctx context.Context, token string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

// AdminRepository captures the storage operations for administrator accounts.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin AdminUser) error
	GetAdminByUsername(ctx context.Context, username string) (AdminUser, error)
}
