package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/schedule"
)

type bookingRepositoryStub struct {
	bookings  map[string]Booking
	byToken   map[string]Booking
	createErr error
	updateErr error
	deleteErr error
	listErr   error

	created []Booking
	updated []Booking
	deleted []string
}

func newBookingRepositoryStub() *bookingRepositoryStub {
	return &bookingRepositoryStub{
		bookings: make(map[string]Booking),
		byToken:  make(map[string]Booking),
	}
}

func (s *bookingRepositoryStub) put(booking Booking) {
	s.bookings[booking.ID] = booking
	if booking.CancelToken != "" {
		s.byToken[booking.CancelToken] = booking
	}
}

func (s *bookingRepositoryStub) CreateBooking(_ context.Context, booking Booking) (Booking, error) {
	if s.createErr != nil {
		return Booking{}, s.createErr
	}
	s.created = append(s.created, booking)
	s.put(booking)
	return booking, nil
}

func (s *bookingRepositoryStub) GetBooking(_ context.Context, id string) (Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (s *bookingRepositoryStub) GetBookingByCancelToken(_ context.Context, token string) (Booking, error) {
	booking, ok := s.byToken[token]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (s *bookingRepositoryStub) UpdateBooking(_ context.Context, booking Booking) (Booking, error) {
	if s.updateErr != nil {
		return Booking{}, s.updateErr
	}
	if _, ok := s.bookings[booking.ID]; !ok {
		return Booking{}, persistence.ErrNotFound
	}
	s.updated = append(s.updated, booking)
	s.put(booking)
	return booking, nil
}

func (s *bookingRepositoryStub) DeleteBooking(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	booking, ok := s.bookings[id]
	if !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	delete(s.byToken, booking.CancelToken)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *bookingRepositoryStub) ListBookings(_ context.Context, _ BookingFilter) ([]Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	result := make([]Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		result = append(result, booking)
	}
	return result, nil
}

type roomCatalogStub struct {
	rooms  map[string]Room
	getErr error
}

func (s *roomCatalogStub) GetRoom(_ context.Context, id string) (Room, error) {
	if s.getErr != nil {
		return Room{}, s.getErr
	}
	room, ok := s.rooms[id]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (s *roomCatalogStub) ListRooms(_ context.Context) ([]Room, error) {
	result := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		result = append(result, room)
	}
	return result, nil
}

type notifierStub struct {
	notices []Booking
}

func (s *notifierStub) BookingCreated(_ context.Context, booking Booking, _ Room) {
	s.notices = append(s.notices, booking)
}

func intPtr(value int) *int {
	return &value
}

func fixedTime() time.Time {
	return time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
}

func roomsWith(room Room) *roomCatalogStub {
	return &roomCatalogStub{rooms: map[string]Room{room.ID: room}}
}

func validInput() BookingInput {
	return BookingInput{
		UserName:  "Laura Pérez",
		UserEmail: "laura@example.com",
		Area:      "Ventas",
		Date:      time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		Start:     schedule.TimeOfDay(10 * 60),
		End:       schedule.TimeOfDay(11 * 60),
		RoomID:    "room-1",
		Attendees: 4,
	}
}

func newTestBookingService(repo *bookingRepositoryStub, rooms RoomCatalog, notifier Notifier) *BookingService {
	return NewBookingService(
		repo,
		rooms,
		notifier,
		func() string { return "booking-1" },
		func() (string, error) { return "cancel-token-1", nil },
		fixedTime,
		nil,
	)
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()

	t.Run("persists a valid booking with cancellation token and notifies", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		notifier := &notifierStub{}
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Name: "Sala Amarilla", Capacity: intPtr(12)}), notifier)

		booking, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: validInput()})
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}

		if booking.ID != "booking-1" {
			t.Fatalf("expected generated ID, got %q", booking.ID)
		}
		if booking.CancelToken != "cancel-token-1" {
			t.Fatalf("expected generated cancel token, got %q", booking.CancelToken)
		}
		wantExpiry := fixedTime().Add(48 * time.Hour)
		if !booking.CancelTokenExpiresAt.Equal(wantExpiry) {
			t.Fatalf("expected token expiry %v, got %v", wantExpiry, booking.CancelTokenExpiresAt)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one persisted booking, got %d", len(repo.created))
		}
		if len(notifier.notices) != 1 || notifier.notices[0].ID != "booking-1" {
			t.Fatalf("expected confirmation notice for booking-1, got %#v", notifier.notices)
		}
	})

	t.Run("trims whitespace from caller fields", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Capacity: intPtr(12)}), nil)

		input := validInput()
		input.UserName = "  Laura Pérez  "
		input.UserEmail = " laura@example.com "

		booking, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: input})
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
		if booking.UserName != "Laura Pérez" || booking.UserEmail != "laura@example.com" {
			t.Fatalf("expected trimmed fields, got %q / %q", booking.UserName, booking.UserEmail)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1"}), nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: BookingInput{
			UserEmail: "not-an-email",
			Attendees: 0,
		}})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"user_name", "user_email", "area", "booking_date", "room_id", "attendees"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected field error for %s, got %#v", field, vErr.FieldErrors)
			}
		}
		if len(repo.created) != 0 {
			t.Fatalf("expected no persisted booking, got %d", len(repo.created))
		}
	})

	t.Run("rejects a window that starts before opening", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), roomsWith(Room{ID: "room-1"}), nil)

		input := validInput()
		input.Start = schedule.TimeOfDay(6*60 + 30)
		input.End = schedule.TimeOfDay(8 * 60)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: input})
		if !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("expected ErrInvalidWindow, got %v", err)
		}
	})

	t.Run("rejects a window whose start does not precede its end", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), roomsWith(Room{ID: "room-1"}), nil)

		input := validInput()
		input.Start = schedule.TimeOfDay(11 * 60)
		input.End = schedule.TimeOfDay(11 * 60)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: input})
		if !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("expected ErrInvalidWindow, got %v", err)
		}
	})

	t.Run("rejects an unknown room", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), &roomCatalogStub{rooms: map[string]Room{}}, nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: validInput()})
		if !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound, got %v", err)
		}
	})

	t.Run("rejects attendees above room capacity", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), roomsWith(Room{ID: "room-1", Capacity: intPtr(8)}), nil)

		input := validInput()
		input.Attendees = 9

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: input})

		var capErr *CapacityError
		if !errors.As(err, &capErr) {
			t.Fatalf("expected CapacityError, got %v", err)
		}
		if capErr.Capacity != 8 || capErr.Attendees != 9 {
			t.Fatalf("unexpected capacity error payload: %#v", capErr)
		}
	})

	t.Run("admits any group size when the room capacity is unbounded", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Capacity: nil}), nil)

		input := validInput()
		input.Attendees = 500

		if _, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: input}); err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
	})

	t.Run("fails when the token source fails and persists nothing", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		notifier := &notifierStub{}
		svc := NewBookingService(
			repo,
			roomsWith(Room{ID: "room-1", Capacity: intPtr(12)}),
			notifier,
			func() string { return "booking-1" },
			func() (string, error) { return "", errors.New("entropy exhausted") },
			fixedTime,
			nil,
		)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: validInput()})
		if err == nil {
			t.Fatal("expected an error when the token source fails")
		}
		if len(repo.created) != 0 {
			t.Fatalf("expected no persisted booking, got %#v", repo.created)
		}
		if len(notifier.notices) != 0 {
			t.Fatalf("expected no notification, got %#v", notifier.notices)
		}
	})

	t.Run("maps an overlap rejection and skips the notification", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		repo.createErr = &persistence.OverlapError{Conflicting: persistence.Booking{
			ID:           "existing",
			Date:         "2025-03-12",
			StartMinutes: 10 * 60,
			EndMinutes:   11 * 60,
		}}
		notifier := &notifierStub{}
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Capacity: intPtr(12)}), notifier)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Input: validInput()})

		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.Conflicting.ID != "existing" {
			t.Fatalf("expected conflicting booking ID, got %q", conflict.Conflicting.ID)
		}
		if len(notifier.notices) != 0 {
			t.Fatalf("expected no notification after rejection, got %d", len(notifier.notices))
		}
	})
}

func TestBookingService_UpdateBooking(t *testing.T) {
	t.Parallel()

	t.Run("preserves the cancellation token and creation time", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		createdAt := fixedTime().Add(-time.Hour)
		repo.put(Booking{
			ID:                   "booking-1",
			UserName:             "Laura Pérez",
			UserEmail:            "laura@example.com",
			Area:                 "Ventas",
			Date:                 time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
			Start:                schedule.TimeOfDay(10 * 60),
			End:                  schedule.TimeOfDay(11 * 60),
			RoomID:               "room-1",
			Attendees:            4,
			CancelToken:          "original-token",
			CancelTokenExpiresAt: createdAt.Add(48 * time.Hour),
			CreatedAt:            createdAt,
		})
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Capacity: intPtr(12)}), nil)

		input := validInput()
		input.Start = schedule.TimeOfDay(14 * 60)
		input.End = schedule.TimeOfDay(15 * 60)

		updated, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{BookingID: "booking-1", Input: input})
		if err != nil {
			t.Fatalf("UpdateBooking failed: %v", err)
		}

		if updated.CancelToken != "original-token" {
			t.Fatalf("expected token to survive the update, got %q", updated.CancelToken)
		}
		if !updated.CreatedAt.Equal(createdAt) {
			t.Fatalf("expected creation time to survive the update, got %v", updated.CreatedAt)
		}
		if updated.Start != schedule.TimeOfDay(14*60) {
			t.Fatalf("expected new start, got %v", updated.Start)
		}
	})

	t.Run("fails for an unknown booking", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), roomsWith(Room{ID: "room-1"}), nil)

		_, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{BookingID: "missing", Input: validInput()})
		if !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})

	t.Run("maps an overlap rejection", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		repo.put(Booking{ID: "booking-1", RoomID: "room-1"})
		repo.updateErr = &persistence.OverlapError{Conflicting: persistence.Booking{ID: "other"}}
		svc := newTestBookingService(repo, roomsWith(Room{ID: "room-1", Capacity: intPtr(12)}), nil)

		_, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{BookingID: "booking-1", Input: validInput()})

		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})
}

func TestBookingService_CancelByToken(t *testing.T) {
	t.Parallel()

	seed := func(repo *bookingRepositoryStub, expiresAt time.Time) {
		repo.put(Booking{
			ID:                   "booking-1",
			CancelToken:          "cancel-token-1",
			CancelTokenExpiresAt: expiresAt,
		})
	}

	t.Run("deletes the booking for a live token", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		seed(repo, fixedTime().Add(time.Hour))
		svc := newTestBookingService(repo, nil, nil)

		if err := svc.CancelByToken(context.Background(), "cancel-token-1"); err != nil {
			t.Fatalf("CancelByToken failed: %v", err)
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != "booking-1" {
			t.Fatalf("expected booking-1 deleted, got %#v", repo.deleted)
		}
	})

	t.Run("rejects an unknown token without side effects", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		seed(repo, fixedTime().Add(time.Hour))
		svc := newTestBookingService(repo, nil, nil)

		if err := svc.CancelByToken(context.Background(), "wrong-token"); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
		if len(repo.deleted) != 0 {
			t.Fatalf("expected no deletions, got %#v", repo.deleted)
		}
	})

	t.Run("rejects an expired token and keeps the booking", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		seed(repo, fixedTime().Add(-time.Minute))
		svc := newTestBookingService(repo, nil, nil)

		if err := svc.CancelByToken(context.Background(), "cancel-token-1"); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if _, ok := repo.bookings["booking-1"]; !ok {
			t.Fatal("expected booking to survive an expired cancellation attempt")
		}
	})

	t.Run("a second cancellation reports not found", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		seed(repo, fixedTime().Add(time.Hour))
		svc := newTestBookingService(repo, nil, nil)

		if err := svc.CancelByToken(context.Background(), "cancel-token-1"); err != nil {
			t.Fatalf("first cancellation failed: %v", err)
		}
		if err := svc.CancelByToken(context.Background(), "cancel-token-1"); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound on repeat, got %v", err)
		}
	})

	t.Run("rejects a blank token", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newBookingRepositoryStub(), nil, nil)

		if err := svc.CancelByToken(context.Background(), "   "); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})
}

func TestBookingService_LookupByCancelToken(t *testing.T) {
	t.Parallel()

	repo := newBookingRepositoryStub()
	repo.put(Booking{
		ID:                   "booking-1",
		CancelToken:          "cancel-token-1",
		CancelTokenExpiresAt: fixedTime().Add(time.Hour),
	})
	svc := newTestBookingService(repo, nil, nil)

	booking, err := svc.LookupByCancelToken(context.Background(), "cancel-token-1")
	if err != nil {
		t.Fatalf("LookupByCancelToken failed: %v", err)
	}
	if booking.ID != "booking-1" {
		t.Fatalf("expected booking-1, got %q", booking.ID)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("expected lookup to leave the booking in place, got %#v", repo.deleted)
	}
}
