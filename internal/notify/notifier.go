// Package notify delivers booking confirmation messages. Delivery runs in
// the background and never feeds errors back into the booking flow.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/logging"
)

const confirmationSubject = "Confirmación de reserva de sala"

const confirmationBody = `<html>
  <body>
    <p>Hola {{.UserName}},</p>
    <p>Tu reserva ha sido registrada:</p>
    <ul>
      <li><strong>Sala:</strong> {{.RoomName}}</li>
      <li><strong>Fecha:</strong> {{.Date}}</li>
      <li><strong>Horario:</strong> {{.Start}} a {{.End}}</li>
      <li><strong>Asistentes:</strong> {{.Attendees}}</li>
    </ul>
    <p>Si necesitas cancelar la reserva, usa este enlace dentro de las
    próximas 48 horas:</p>
    <p><a href="{{.CancelURL}}">{{.CancelURL}}</a></p>
    <p>Gracias.</p>
  </body>
</html>`

var confirmationTemplate = template.Must(template.New("confirmation").Parse(confirmationBody))

type confirmationData struct {
	UserName  string
	RoomName  string
	Date      string
	Start     string
	End       string
	Attendees int
	CancelURL string
}

// messageSender abstracts gomail's dialer for tests.
type messageSender interface {
	DialAndSend(messages ...*gomail.Message) error
}

// EmailConfig carries the SMTP settings for the confirmation sender.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the externally reachable origin used to build cancel links.
	BaseURL string
}

// EmailNotifier sends the booking confirmation over SMTP.
type EmailNotifier struct {
	sender  messageSender
	from    string
	baseURL string
	logger  *slog.Logger
}

// NewEmailNotifier builds a notifier backed by a gomail SMTP dialer.
func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// BookingCreated composes and sends the confirmation in the background. SMTP
// failures are logged and dropped so the booking itself is never rolled back.
func (n *EmailNotifier) BookingCreated(ctx context.Context, booking application.Booking, room application.Room) {
	if n == nil || n.sender == nil {
		return
	}

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = n.logger
	}
	logger = logger.With("component", "EmailNotifier", "booking_id", booking.ID)

	message, err := n.buildMessage(booking, room)
	if err != nil {
		logger.Error("failed to compose confirmation email", "error", err)
		return
	}

	go func() {
		if err := n.sender.DialAndSend(message); err != nil {
			logger.Error("failed to send confirmation email", "error", err)
			return
		}
		logger.Info("confirmation email sent", "to", booking.UserEmail)
	}()
}

func (n *EmailNotifier) buildMessage(booking application.Booking, room application.Room) (*gomail.Message, error) {
	body, err := renderConfirmation(booking, room, n.baseURL)
	if err != nil {
		return nil, err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", booking.UserEmail)
	message.SetHeader("Subject", confirmationSubject)
	message.SetBody("text/html", body)
	return message, nil
}

func renderConfirmation(booking application.Booking, room application.Room, baseURL string) (string, error) {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, confirmationData{
		UserName:  booking.UserName,
		RoomName:  room.Name,
		Date:      booking.Date.Format("2006-01-02"),
		Start:     booking.Start.String(),
		End:       booking.End.String(),
		Attendees: booking.Attendees,
		CancelURL: CancelURL(baseURL, booking.CancelToken),
	})
	if err != nil {
		return "", fmt.Errorf("render confirmation body: %w", err)
	}
	return body.String(), nil
}

// CancelURL joins the public origin with the cancellation path for a token.
func CancelURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/cancelar/" + token
}

// LogNotifier stands in for the SMTP notifier when mail delivery is
// disabled. It records the would-be confirmation, cancel link included, so
// local setups can still exercise the cancellation flow.
type LogNotifier struct {
	baseURL string
	logger  *slog.Logger
}

// NewLogNotifier builds a notifier that only writes to the log.
func NewLogNotifier(baseURL string, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// BookingCreated logs the confirmation instead of sending it.
func (n *LogNotifier) BookingCreated(ctx context.Context, booking application.Booking, room application.Room) {
	if n == nil {
		return
	}
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = n.logger
	}
	logger.Info("mail delivery disabled, logging confirmation instead",
		"component", "LogNotifier",
		"booking_id", booking.ID,
		"to", booking.UserEmail,
		"room", room.Name,
		"cancel_url", CancelURL(n.baseURL, booking.CancelToken),
	)
}
