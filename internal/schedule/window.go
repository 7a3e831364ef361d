package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// Operating hours for every room. Bookings must fit entirely inside this range.
const (
	OpeningTime TimeOfDay = 7 * 60
	ClosingTime TimeOfDay = 17 * 60
)

var (
	// ErrWindowOrder is returned when a window does not start strictly before it ends.
	ErrWindowOrder = errors.New("schedule: start must precede end")
	// ErrOutOfHours is returned when a window falls outside the operating hours.
	ErrOutOfHours = errors.New("schedule: window outside operating hours")
)

// ParseTimeOfDay parses an ISO wall-clock time such as "09:30" or "09:30:00".
// Seconds are accepted and discarded; bookings are minute granular. The whole
// value must be a time, trailing characters are rejected.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	invalid := fmt.Errorf("schedule: invalid time %q", value)

	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, invalid
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, invalid
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, invalid
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, invalid
		}
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, invalid
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// String renders the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes returns the raw minutes-since-midnight value.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Window is a half-open [Start, End) wall-clock interval on a single day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether two half-open windows intersect. Touching
// endpoints do not overlap: a booking ending at 10:00 leaves the room free
// for one starting at 10:00.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && w.End > other.Start
}

// ValidateWindow checks ordering and the operating-hours bounds.
func ValidateWindow(w Window) error {
	if w.Start >= w.End {
		return ErrWindowOrder
	}
	if w.Start < OpeningTime || w.End > ClosingTime {
		return ErrOutOfHours
	}
	return nil
}
