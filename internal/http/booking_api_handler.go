package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/example/roombooking/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error)
}

type roomCatalog interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	GetRoom(ctx context.Context, id string) (application.Room, error)
}

// APIHandler serves the JSON endpoints consumed by the booking page.
type APIHandler struct {
	bookings  bookingService
	rooms     roomCatalog
	responder responder
	logger    *slog.Logger
}

// NewAPIHandler constructs the JSON API handler.
func NewAPIHandler(bookings bookingService, rooms roomCatalog, logger *slog.Logger) *APIHandler {
	base := defaultLogger(logger)
	return &APIHandler{bookings: bookings, rooms: rooms, responder: newResponder(base), logger: base}
}

func (h *APIHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "APIHandler", operation, attrs...)
}

type roomDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Capacity    *int   `json:"capacity"`
}

// bookingDTO is the public representation of a booking. The requester's
// email and the cancellation token never leave the server through listings.
type bookingDTO struct {
	ID          string `json:"id"`
	UserName    string `json:"user_name"`
	Area        string `json:"area"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	RoomID      string `json:"room_id"`
	Attendees   int    `json:"attendees"`
}

type createBookingRequest struct {
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	Area        string `json:"area"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	RoomID      string `json:"room_id"`
	Attendees   int    `json:"attendees"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:          room.ID,
		Name:        room.Name,
		Color:       room.Color,
		Description: room.Description,
		Capacity:    room.Capacity,
	}
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:          booking.ID,
		UserName:    booking.UserName,
		Area:        booking.Area,
		BookingDate: booking.Date.Format(dateLayout),
		StartTime:   booking.Start.String(),
		EndTime:     booking.End.String(),
		RoomID:      booking.RoomID,
		Attendees:   booking.Attendees,
	}
}

// ListRooms answers GET /api/rooms.
func (h *APIHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// ListBookings answers GET /api/bookings with optional room_id and date filters.
func (h *APIHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter := application.BookingFilter{RoomID: strings.TrimSpace(r.URL.Query().Get("room_id"))}
	if dateValue := strings.TrimSpace(r.URL.Query().Get("date")); dateValue != "" {
		date, err := parseDateField(dateValue)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		filter.Date = &date
	}

	bookings, err := h.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toBookingDTO(booking))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// CreateBooking answers POST /api/bookings. Form-encoded submissions are the
// primary format; the booking page's fetch client sends JSON and is accepted
// by content type.
func (h *APIHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.BookingInput
	if hasJSONBody(r) {
		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log(r.Context(), "CreateBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		parsed, err := requestToInput(req)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
			return
		}
		input = parsed
	} else {
		if err := r.ParseForm(); err != nil {
			h.log(r.Context(), "CreateBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse booking form", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		parsed, err := bookingFormFromRequest(r).toInput()
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
			return
		}
		input = parsed
	}

	logger := h.log(r.Context(), "CreateBooking", "room_id", input.RoomID)
	booking, err := h.bookings.CreateBooking(r.Context(), application.CreateBookingParams{Input: input})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created via API")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingDTO(booking))
}

func hasJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func requestToInput(req createBookingRequest) (application.BookingInput, error) {
	var zero application.BookingInput

	var date time.Time
	if strings.TrimSpace(req.BookingDate) != "" {
		parsed, err := parseDateField(req.BookingDate)
		if err != nil {
			return zero, err
		}
		date = parsed
	}

	start, err := parseTimeField(req.StartTime)
	if err != nil {
		return zero, err
	}
	end, err := parseTimeField(req.EndTime)
	if err != nil {
		return zero, err
	}

	return application.BookingInput{
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Area:      req.Area,
		Date:      date,
		Start:     start,
		End:       end,
		RoomID:    req.RoomID,
		Attendees: req.Attendees,
	}, nil
}
