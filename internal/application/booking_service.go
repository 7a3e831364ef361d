package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/schedule"
)

// CancelTokenTTL is how long a cancellation link stays usable after the
// booking is created.
const CancelTokenTTL = 48 * time.Hour

// BookingRepository captures the persistence interactions needed by the service.
//
// CreateBooking and UpdateBooking are expected to enforce the overlap
// invariant atomically and surface a *ConflictError when the window is taken;
// UpdateBooking excludes the booking's own ID from the comparison.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	GetBookingByCancelToken(ctx context.Context, token string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// Notifier receives the confirmation side effect after a booking commits.
// Implementations must not block; failures are theirs to log and swallow.
type Notifier interface {
	BookingCreated(ctx context.Context, booking Booking, room Room)
}

// BookingService orchestrates validation, persistence, and the notification
// side effect for the booking lifecycle.
type BookingService struct {
	bookings       BookingRepository
	rooms          RoomCatalog
	notifier       Notifier
	idGenerator    func() string
	tokenGenerator func() (string, error)
	now            func() time.Time
	logger         *slog.Logger
}

// NewBookingService constructs a BookingService with the provided dependencies.
// The token generator supplies cancellation tokens; when it fails, the booking
// is not created.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, notifier Notifier, idGenerator func() string, tokenGenerator func() (string, error), now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() (string, error) {
			return "", errors.New("cancellation token generator not configured")
		}
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:       bookings,
		rooms:          rooms,
		notifier:       notifier,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request, persists the reservation, and fires
// the confirmation notification. The notification can never fail the call.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("booking service not fully configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateBooking",
		"room_id", input.RoomID,
		"date", input.Date.Format("2006-01-02"),
		"window", fmt.Sprintf("%s-%s", input.Start, input.End),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	var room Room
	room, err = s.validateBookingInput(ctx, input)
	if err != nil {
		return
	}

	var token string
	token, err = s.tokenGenerator()
	if err != nil {
		err = fmt.Errorf("generate cancellation token: %w", err)
		return
	}

	now := s.now()
	booking = Booking{
		ID:                   s.idGenerator(),
		UserName:             strings.TrimSpace(input.UserName),
		UserEmail:            strings.TrimSpace(input.UserEmail),
		Area:                 strings.TrimSpace(input.Area),
		Date:                 input.Date,
		Start:                input.Start,
		End:                  input.End,
		RoomID:               room.ID,
		Attendees:            input.Attendees,
		CancelToken:          token,
		CancelTokenExpiresAt: now.Add(CancelTokenTTL),
		CreatedAt:            now,
	}

	var persisted Booking
	persisted, err = s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	booking = persisted

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking, room)
	}
	return
}

// UpdateBooking applies the same validation sequence as CreateBooking, with
// the overlap check excluding the booking itself. The cancellation token and
// creation timestamp are preserved.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("booking service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking", "booking_id", params.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	var existing Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	input := params.Input
	if _, err = s.validateBookingInput(ctx, input); err != nil {
		return
	}

	updated := existing
	updated.UserName = strings.TrimSpace(input.UserName)
	updated.UserEmail = strings.TrimSpace(input.UserEmail)
	updated.Area = strings.TrimSpace(input.Area)
	updated.Date = input.Date
	updated.Start = input.Start
	updated.End = input.End
	updated.RoomID = input.RoomID
	updated.Attendees = input.Attendees

	booking, err = s.bookings.UpdateBooking(ctx, updated)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	return
}

// DeleteBooking removes a booking by internal identifier. Callers are the
// admin handlers, which run behind the access guard.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "booking_id", id)
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

// LookupByCancelToken resolves a cancellation token without side effects, for
// the confirmation page. Unknown tokens and expired tokens fail distinctly.
func (s *BookingService) LookupByCancelToken(ctx context.Context, token string) (Booking, error) {
	if s == nil || s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	return s.resolveCancelToken(ctx, token)
}

// CancelByToken deletes the booking a cancellation token points at. The
// token must match exactly and still be inside its validity window. An
// unknown or expired token is a terminal result with no side effects, so
// retries and token probing cannot alter state.
func (s *BookingService) CancelByToken(ctx context.Context, token string) (err error) {
	if s == nil || s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelByToken", "token_provided", strings.TrimSpace(token) != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "cancellation rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled via token")
	}()

	var booking Booking
	booking, err = s.resolveCancelToken(ctx, token)
	if err != nil {
		return
	}

	if err = s.bookings.DeleteBooking(ctx, booking.ID); err != nil {
		// The booking vanished between lookup and delete; same terminal answer.
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrBookingNotFound) {
			err = ErrBookingNotFound
			return
		}
		return
	}
	return
}

func (s *BookingService) resolveCancelToken(ctx context.Context, token string) (Booking, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Booking{}, ErrBookingNotFound
	}

	booking, err := s.bookings.GetBookingByCancelToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrBookingNotFound) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}

	if !booking.CancelTokenExpiresAt.IsZero() && s.now().After(booking.CancelTokenExpiresAt) {
		return Booking{}, ErrTokenExpired
	}
	return booking, nil
}

// GetBooking retrieves a booking by ID for the admin edit form.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil || s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return booking, nil
}

// ListBookings returns bookings matching the filter.
func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	if s == nil || s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	return s.bookings.ListBookings(ctx, filter)
}

// validateBookingInput runs the shared create/update validation sequence:
// field checks, operating-hours window, room existence, capacity.
func (s *BookingService) validateBookingInput(ctx context.Context, input BookingInput) (Room, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.UserName) == "" {
		vErr.add("user_name", "name is required")
	}
	email := strings.TrimSpace(input.UserEmail)
	if email == "" {
		vErr.add("user_email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("user_email", "email is invalid")
	}
	if strings.TrimSpace(input.Area) == "" {
		vErr.add("area", "area is required")
	}
	if input.Date.IsZero() {
		vErr.add("booking_date", "date is required")
	}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Attendees < 1 {
		vErr.add("attendees", "attendees must be at least 1")
	}
	if vErr.HasErrors() {
		return Room{}, vErr
	}

	if err := schedule.ValidateWindow(schedule.Window{Start: input.Start, End: input.End}); err != nil {
		return Room{}, invalidWindowError(err)
	}

	room, err := s.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrRoomNotFound) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, err
	}

	if room.Capacity != nil && input.Attendees > *room.Capacity {
		return Room{}, &CapacityError{Capacity: *room.Capacity, Attendees: input.Attendees}
	}
	return room, nil
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrBookingNotFound
	}
	var overlap *persistence.OverlapError
	if errors.As(err, &overlap) {
		return &ConflictError{Conflicting: bookingFromPersistence(overlap.Conflicting)}
	}
	return err
}

// bookingFromPersistence converts the storage representation embedded in an
// overlap rejection back into the application model.
func bookingFromPersistence(model persistence.Booking) Booking {
	date, _ := time.Parse("2006-01-02", model.Date)
	return Booking{
		ID:                   model.ID,
		UserName:             model.UserName,
		UserEmail:            model.UserEmail,
		Area:                 model.Area,
		Date:                 date,
		Start:                schedule.TimeOfDay(model.StartMinutes),
		End:                  schedule.TimeOfDay(model.EndMinutes),
		RoomID:               model.RoomID,
		Attendees:            model.Attendees,
		CancelToken:          model.CancelToken,
		CancelTokenExpiresAt: model.CancelTokenExpiresAt,
		CreatedAt:            model.CreatedAt,
	}
}
