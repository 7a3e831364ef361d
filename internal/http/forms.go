package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/schedule"
)

const dateLayout = "2006-01-02"

func parseDateField(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return date, nil
}

func parseTimeField(value string) (schedule.TimeOfDay, error) {
	tod, err := schedule.ParseTimeOfDay(strings.TrimSpace(value))
	if err != nil {
		return 0, errInvalidTime
	}
	return tod, nil
}

// bookingForm mirrors the reservation form fields as submitted, before any
// type conversion, so invalid input can be echoed back into the form.
type bookingForm struct {
	UserName  string
	UserEmail string
	Area      string
	RoomID    string
	Date      string
	Start     string
	End       string
	Attendees string
}

func bookingFormFromRequest(r interface{ FormValue(string) string }) bookingForm {
	return bookingForm{
		UserName:  r.FormValue("user_name"),
		UserEmail: r.FormValue("user_email"),
		Area:      r.FormValue("area"),
		RoomID:    r.FormValue("room_id"),
		Date:      r.FormValue("booking_date"),
		Start:     r.FormValue("start_time"),
		End:       r.FormValue("end_time"),
		Attendees: r.FormValue("attendees"),
	}
}

func bookingFormFromBooking(booking application.Booking) bookingForm {
	return bookingForm{
		UserName:  booking.UserName,
		UserEmail: booking.UserEmail,
		Area:      booking.Area,
		RoomID:    booking.RoomID,
		Date:      booking.Date.Format(dateLayout),
		Start:     booking.Start.String(),
		End:       booking.End.String(),
		Attendees: strconv.Itoa(booking.Attendees),
	}
}

// toInput converts the raw form values into a service input. Conversion
// failures come back as user facing errors; field level validation stays
// with the service.
func (f bookingForm) toInput() (application.BookingInput, error) {
	date, err := parseDateField(f.Date)
	if err != nil {
		return application.BookingInput{}, err
	}
	start, err := parseTimeField(f.Start)
	if err != nil {
		return application.BookingInput{}, err
	}
	end, err := parseTimeField(f.End)
	if err != nil {
		return application.BookingInput{}, err
	}
	attendees, err := strconv.Atoi(strings.TrimSpace(f.Attendees))
	if err != nil {
		return application.BookingInput{}, errors.New("El número de asistentes no es válido.")
	}

	return application.BookingInput{
		UserName:  f.UserName,
		UserEmail: f.UserEmail,
		Area:      f.Area,
		Date:      date,
		Start:     start,
		End:       end,
		RoomID:    f.RoomID,
		Attendees: attendees,
	}, nil
}

// serviceErrorMessage translates an application error into the Spanish
// message shown on server rendered pages.
func serviceErrorMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		return "Usuario o contraseña incorrectos."
	case errors.Is(err, application.ErrRoomNotFound):
		return "La sala indicada no existe."
	case errors.Is(err, application.ErrBookingNotFound):
		return "La reserva no existe o ya fue cancelada."
	case errors.Is(err, application.ErrTokenExpired):
		return "El enlace de cancelación ha expirado."
	case errors.Is(err, application.ErrInvalidWindow):
		return windowMessage()
	}

	var capErr *application.CapacityError
	if errors.As(err, &capErr) {
		return fmt.Sprintf("La sala admite como máximo %d personas.", capErr.Capacity)
	}

	var conflictErr *application.ConflictError
	if errors.As(err, &conflictErr) {
		return fmt.Sprintf("La sala ya está reservada de %s a %s.",
			conflictErr.Conflicting.Start, conflictErr.Conflicting.End)
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		messages := make([]string, 0, len(vErr.FieldErrors))
		for _, msg := range vErr.FieldErrors {
			messages = append(messages, translateValidationMessage(msg))
		}
		return strings.Join(messages, " ")
	}

	return "Se produjo un error interno. Inténtalo de nuevo más tarde."
}
