package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/schedule"
)

type cancellationService interface {
	LookupByCancelToken(ctx context.Context, token string) (application.Booking, error)
	CancelByToken(ctx context.Context, token string) error
}

// PageHandler serves the public HTML pages: the booking form and the
// cancellation flow reached from the confirmation email.
type PageHandler struct {
	rooms    roomCatalog
	bookings cancellationService
	renderer renderer
	logger   *slog.Logger
}

// NewPageHandler constructs the public page handler.
func NewPageHandler(rooms roomCatalog, bookings cancellationService, logger *slog.Logger) *PageHandler {
	base := defaultLogger(logger)
	return &PageHandler{rooms: rooms, bookings: bookings, renderer: newRenderer(base), logger: base}
}

func (h *PageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PageHandler", operation, attrs...)
}

type indexPage struct {
	Rooms   []application.Room
	Opening string
	Closing string
}

type cancelConfirmPage struct {
	Token    string
	RoomName string
	Date     string
	Start    string
	End      string
	UserName string
}

type cancelResultPage struct {
	OK      bool
	Message string
}

// Index answers GET / with the booking form.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.log(r.Context(), "Index").ErrorContext(r.Context(), "failed to list rooms", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.renderer.render(r.Context(), w, http.StatusOK, "index.html", indexPage{
		Rooms:   rooms,
		Opening: schedule.OpeningTime.String(),
		Closing: schedule.ClosingTime.String(),
	})
}

// CancelConfirm answers GET /cancelar/{token} with a confirmation page so
// mail scanners following the link never cancel anything.
func (h *PageHandler) CancelConfirm(w http.ResponseWriter, r *http.Request, token string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	booking, err := h.bookings.LookupByCancelToken(r.Context(), token)
	if err != nil {
		h.renderCancelFailure(w, r, err)
		return
	}

	room, roomErr := h.rooms.GetRoom(r.Context(), booking.RoomID)
	if roomErr != nil {
		h.log(r.Context(), "CancelConfirm").ErrorContext(r.Context(), "failed to resolve room for cancellation page", "error", roomErr)
	}

	h.renderer.render(r.Context(), w, http.StatusOK, "cancel_confirm.html", cancelConfirmPage{
		Token:    token,
		RoomName: room.Name,
		Date:     booking.Date.Format(dateLayout),
		Start:    booking.Start.String(),
		End:      booking.End.String(),
		UserName: booking.UserName,
	})
}

// CancelSubmit answers POST /cancelar/{token} and performs the cancellation.
func (h *PageHandler) CancelSubmit(w http.ResponseWriter, r *http.Request, token string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.bookings.CancelByToken(r.Context(), token); err != nil {
		h.renderCancelFailure(w, r, err)
		return
	}

	h.log(r.Context(), "CancelSubmit").InfoContext(r.Context(), "booking cancelled from email link")
	h.renderer.render(r.Context(), w, http.StatusOK, "cancel_result.html", cancelResultPage{
		OK:      true,
		Message: "Tu reserva ha sido cancelada.",
	})
}

func (h *PageHandler) renderCancelFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, application.ErrBookingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, application.ErrTokenExpired):
		status = http.StatusGone
	}

	h.log(r.Context(), "Cancel").ErrorContext(r.Context(), "cancellation page rejected", "error", err, "error_kind", application.ErrorKind(err))
	h.renderer.render(r.Context(), w, status, "cancel_result.html", cancelResultPage{
		OK:      false,
		Message: serviceErrorMessage(err),
	})
}
