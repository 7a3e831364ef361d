package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/schedule"
)

var (
	errBadRequestBody = errors.New("El formato de la solicitud no es válido.")
	errInvalidDate    = errors.New("La fecha debe tener el formato AAAA-MM-DD.")
	errInvalidTime    = errors.New("La hora debe tener el formato HH:MM.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors to JSON responses with Spanish
// user facing messages. Overlaps answer 409 and expired cancellation tokens
// answer 410 so clients can distinguish a dead link from a wrong one.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err, "error_kind", application.ErrorKind(err))

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Usuario o contraseña incorrectos.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "Debes iniciar sesión para realizar esta operación."})
	case errors.Is(err, application.ErrRoomNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "La sala indicada no existe."})
	case errors.Is(err, application.ErrBookingNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "La reserva no existe o ya fue cancelada."})
	case errors.Is(err, application.ErrTokenExpired):
		r.writeJSON(ctx, w, http.StatusGone, errorResponse{Message: "El enlace de cancelación ha expirado."})
	case errors.Is(err, application.ErrInvalidWindow):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: windowMessage()})
	default:
		var capErr *application.CapacityError
		if errors.As(err, &capErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: fmt.Sprintf("La sala admite como máximo %d personas.", capErr.Capacity),
			})
			return
		}

		var conflictErr *application.ConflictError
		if errors.As(err, &conflictErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				Message: fmt.Sprintf("La sala ya está reservada de %s a %s.",
					conflictErr.Conflicting.Start, conflictErr.Conflicting.End),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Revisa los datos del formulario.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Se produjo un error interno. Inténtalo de nuevo más tarde."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func windowMessage() string {
	return fmt.Sprintf("El horario debe estar entre las %s y las %s, y la hora de inicio debe ser anterior a la de fin.",
		schedule.OpeningTime, schedule.ClosingTime)
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La solicitud no es válida."
	case http.StatusUnauthorized:
		return "Debes iniciar sesión."
	case http.StatusForbidden:
		return "No tienes permiso para realizar esta operación."
	case http.StatusNotFound:
		return "El recurso solicitado no existe."
	case http.StatusConflict:
		return "La solicitud entra en conflicto con una reserva existente."
	case http.StatusUnprocessableEntity:
		return "Revisa los datos del formulario."
	default:
		return "Se produjo un error interno."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "name is required":
		return "El nombre es obligatorio."
	case "email is required":
		return "El correo electrónico es obligatorio."
	case "email is invalid":
		return "El correo electrónico no es válido."
	case "area is required":
		return "El área o departamento es obligatorio."
	case "date is required":
		return "La fecha es obligatoria."
	case "room is required":
		return "Selecciona una sala."
	case "attendees must be at least 1":
		return "Debe asistir al menos una persona."
	case "capacity must be at least 1":
		return "La capacidad debe ser al menos 1."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
