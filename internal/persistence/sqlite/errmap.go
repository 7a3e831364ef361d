package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/example/roombooking/internal/persistence"
)

// mapError translates driver level errors into the persistence sentinels the
// services match on. Unrecognized errors pass through unchanged so they
// surface as server faults.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrConstraintViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}
