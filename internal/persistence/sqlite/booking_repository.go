package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/schedule"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
//
// Writes run the overlap check and the mutation inside one transaction.
// SQLite serializes writers, so two concurrent requests for the same window
// cannot both observe it free and commit.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = "id, user_name, user_email, area, date, start_minutes, end_minutes, room_id, attendees, cancel_token, cancel_token_expires_at, created_at"

// CreateBooking inserts a booking unless its window overlaps an existing one.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.rejectOverlapTx(tx, booking, ""); err != nil {
			return err
		}

		query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query,
			booking.ID,
			booking.UserName,
			booking.UserEmail,
			booking.Area,
			booking.Date,
			booking.StartMinutes,
			booking.EndMinutes,
			booking.RoomID,
			booking.Attendees,
			booking.CancelToken,
			booking.CancelTokenExpiresAt.UTC().Format(time.RFC3339),
			booking.CreatedAt.UTC().Format(time.RFC3339),
		)
		return mapError(err)
	})
}

// UpdateBooking rewrites a booking's fields, excluding the booking itself
// from the overlap comparison. The cancellation token columns are left
// untouched.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.rejectOverlapTx(tx, booking, booking.ID); err != nil {
			return err
		}

		query := `
			UPDATE bookings
			SET user_name = ?, user_email = ?, area = ?, date = ?, start_minutes = ?, end_minutes = ?, room_id = ?, attendees = ?
			WHERE id = ?
		`
		result, err := tx.Exec(query,
			booking.UserName,
			booking.UserEmail,
			booking.Area,
			booking.Date,
			booking.StartMinutes,
			booking.EndMinutes,
			booking.RoomID,
			booking.Attendees,
			booking.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// rejectOverlapTx loads the bookings sharing the room and date and returns an
// OverlapError when the candidate window intersects any of them.
func (r *BookingRepository) rejectOverlapTx(tx *sql.Tx, candidate persistence.Booking, excludeID string) error {
	rows, err := tx.Query(
		`SELECT `+bookingColumns+` FROM bookings WHERE room_id = ? AND date = ? ORDER BY start_minutes`,
		candidate.RoomID, candidate.Date,
	)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	var (
		existing  []persistence.Booking
		intervals []schedule.Interval
	)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return err
		}
		existing = append(existing, booking)
		intervals = append(intervals, schedule.Interval{
			BookingID: booking.ID,
			Window: schedule.Window{
				Start: schedule.TimeOfDay(booking.StartMinutes),
				End:   schedule.TimeOfDay(booking.EndMinutes),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return mapError(err)
	}

	window := schedule.Window{
		Start: schedule.TimeOfDay(candidate.StartMinutes),
		End:   schedule.TimeOfDay(candidate.EndMinutes),
	}
	conflict, found := schedule.FindConflict(intervals, window, excludeID)
	if !found {
		return nil
	}
	for _, booking := range existing {
		if booking.ID == conflict.BookingID {
			return &persistence.OverlapError{Conflicting: booking}
		}
	}
	return &persistence.OverlapError{}
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// GetBookingByCancelToken retrieves a booking by exact cancellation token.
func (r *BookingRepository) GetBookingByCancelToken(ctx context.Context, token string) (persistence.Booking, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE cancel_token = ?`, token)
	return scanBooking(row)
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookings returns bookings matching the filter, ordered for the
// dashboard: newest date first, then by start time within a day.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var (
		conditions []string
		args       []any
	)
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY date DESC, start_minutes ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(scanner rowScanner) (persistence.Booking, error) {
	var (
		booking   persistence.Booking
		expiresAt string
		createdAt string
	)
	err := scanner.Scan(
		&booking.ID,
		&booking.UserName,
		&booking.UserEmail,
		&booking.Area,
		&booking.Date,
		&booking.StartMinutes,
		&booking.EndMinutes,
		&booking.RoomID,
		&booking.Attendees,
		&booking.CancelToken,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	if booking.CancelTokenExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse cancel_token_expires_at: %w", err)
	}
	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return booking, nil
}
