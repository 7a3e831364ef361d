package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roombooking/internal/application"
)

type adminAuthService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
}

type adminBookingService interface {
	GetBooking(ctx context.Context, id string) (application.Booking, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error)
}

// AdminHandler serves the session protected dashboard pages.
type AdminHandler struct {
	auth     adminAuthService
	bookings adminBookingService
	rooms    roomCatalog
	renderer renderer
	logger   *slog.Logger
}

// NewAdminHandler constructs the dashboard handler.
func NewAdminHandler(auth adminAuthService, bookings adminBookingService, rooms roomCatalog, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{
		auth:     auth,
		bookings: bookings,
		rooms:    rooms,
		renderer: newRenderer(base),
		logger:   base,
	}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

type loginPage struct {
	Error string
}

type dashboardRow struct {
	ID        string
	Date      string
	Start     string
	End       string
	RoomName  string
	UserName  string
	UserEmail string
	Area      string
	Attendees int
}

type dashboardPage struct {
	Username     string
	Rooms        []application.Room
	SelectedRoom string
	SelectedDate string
	Bookings     []dashboardRow
}

type bookingFormPage struct {
	Title  string
	Action string
	Rooms  []application.Room
	Form   bookingForm
	Error  string
}

// LoginForm answers GET /admin/login.
func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(r.Context(), w, http.StatusOK, "admin_login.html", loginPage{})
}

// Login answers POST /admin/login. A failed attempt re-renders the form with
// 401 and never sets a cookie.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.render(r.Context(), w, http.StatusBadRequest, "admin_login.html", loginPage{Error: errBadRequestBody.Error()})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	logger := h.log(r.Context(), "Login", "username", username)

	result, err := h.auth.Login(r.Context(), application.LoginParams{
		Username: username,
		Password: r.FormValue("password"),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, application.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		logger.WarnContext(r.Context(), "admin login rejected", "error_kind", application.ErrorKind(err))
		h.renderer.render(r.Context(), w, status, "admin_login.html", loginPage{Error: serviceErrorMessage(err)})
		return
	}

	setSessionCookie(w, result.Token, result.ExpiresAt)
	logger.InfoContext(r.Context(), "admin session issued")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout answers GET /admin/logout. The cookie is cleared client side; a
// token copied elsewhere stays verifiable until it expires.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	h.log(r.Context(), "Logout").InfoContext(r.Context(), "admin session cookie cleared")
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// Dashboard answers GET /admin with the filtered booking table.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	username, _ := AdminFromContext(r.Context())
	logger := h.log(r.Context(), "Dashboard", "username", username)

	filter := application.BookingFilter{RoomID: strings.TrimSpace(r.URL.Query().Get("sala"))}
	selectedDate := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if selectedDate != "" {
		date, err := parseDateField(selectedDate)
		if err != nil {
			selectedDate = ""
		} else {
			filter.Date = &date
		}
	}

	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list rooms", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	roomNames := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	bookings, err := h.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list bookings", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rows := make([]dashboardRow, 0, len(bookings))
	for _, booking := range bookings {
		rows = append(rows, dashboardRow{
			ID:        booking.ID,
			Date:      booking.Date.Format(dateLayout),
			Start:     booking.Start.String(),
			End:       booking.End.String(),
			RoomName:  roomNames[booking.RoomID],
			UserName:  booking.UserName,
			UserEmail: booking.UserEmail,
			Area:      booking.Area,
			Attendees: booking.Attendees,
		})
	}

	h.renderer.render(r.Context(), w, http.StatusOK, "admin_dashboard.html", dashboardPage{
		Username:     username,
		Rooms:        rooms,
		SelectedRoom: filter.RoomID,
		SelectedDate: selectedDate,
		Bookings:     rows,
	})
}

// NewBookingForm answers GET /admin/bookings/new.
func (h *AdminHandler) NewBookingForm(w http.ResponseWriter, r *http.Request) {
	h.renderBookingForm(w, r, bookingFormPage{
		Title:  "Nueva reserva",
		Action: "/admin/bookings/new",
		Form:   bookingForm{Attendees: "1"},
	}, http.StatusOK)
}

// CreateBooking answers POST /admin/bookings/new.
func (h *AdminHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := bookingFormPage{Title: "Nueva reserva", Action: "/admin/bookings/new"}
	if err := r.ParseForm(); err != nil {
		page.Error = errBadRequestBody.Error()
		h.renderBookingForm(w, r, page, http.StatusBadRequest)
		return
	}

	page.Form = bookingFormFromRequest(r)
	input, err := page.Form.toInput()
	if err != nil {
		page.Error = err.Error()
		h.renderBookingForm(w, r, page, http.StatusUnprocessableEntity)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), application.CreateBookingParams{Input: input})
	if err != nil {
		page.Error = serviceErrorMessage(err)
		h.renderBookingForm(w, r, page, statusForFormError(err))
		return
	}

	h.log(r.Context(), "CreateBooking", "booking_id", booking.ID).InfoContext(r.Context(), "booking created from dashboard")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// EditBookingForm answers GET /admin/bookings/{id}/edit.
func (h *AdminHandler) EditBookingForm(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrBookingNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log(r.Context(), "EditBookingForm").ErrorContext(r.Context(), "failed to load booking", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.renderBookingForm(w, r, bookingFormPage{
		Title:  "Editar reserva",
		Action: "/admin/bookings/" + id + "/edit",
		Form:   bookingFormFromBooking(booking),
	}, http.StatusOK)
}

// UpdateBooking answers POST /admin/bookings/{id}/edit.
func (h *AdminHandler) UpdateBooking(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := bookingFormPage{Title: "Editar reserva", Action: "/admin/bookings/" + id + "/edit"}
	if err := r.ParseForm(); err != nil {
		page.Error = errBadRequestBody.Error()
		h.renderBookingForm(w, r, page, http.StatusBadRequest)
		return
	}

	page.Form = bookingFormFromRequest(r)
	input, err := page.Form.toInput()
	if err != nil {
		page.Error = err.Error()
		h.renderBookingForm(w, r, page, http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.bookings.UpdateBooking(r.Context(), application.UpdateBookingParams{BookingID: id, Input: input}); err != nil {
		if errors.Is(err, application.ErrBookingNotFound) {
			http.NotFound(w, r)
			return
		}
		page.Error = serviceErrorMessage(err)
		h.renderBookingForm(w, r, page, statusForFormError(err))
		return
	}

	h.log(r.Context(), "UpdateBooking", "booking_id", id).InfoContext(r.Context(), "booking updated from dashboard")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// DeleteBooking answers POST /admin/bookings/{id}/delete. Deleting a booking
// that is already gone still lands back on the dashboard.
func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.bookings.DeleteBooking(r.Context(), id); err != nil && !errors.Is(err, application.ErrBookingNotFound) {
		h.log(r.Context(), "DeleteBooking", "booking_id", id).ErrorContext(r.Context(), "failed to delete booking", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.log(r.Context(), "DeleteBooking", "booking_id", id).InfoContext(r.Context(), "booking deleted from dashboard")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) renderBookingForm(w http.ResponseWriter, r *http.Request, page bookingFormPage, status int) {
	if h.rooms != nil {
		if rooms, err := h.rooms.ListRooms(r.Context()); err == nil {
			page.Rooms = rooms
		}
	}
	h.renderer.render(r.Context(), w, status, "admin_booking_form.html", page)
}

func statusForFormError(err error) int {
	var conflictErr *application.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.Is(err, application.ErrRoomNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrInvalidWindow):
		return http.StatusUnprocessableEntity
	default:
		var capErr *application.CapacityError
		var vErr *application.ValidationError
		if errors.As(err, &capErr) || errors.As(err, &vErr) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
}
