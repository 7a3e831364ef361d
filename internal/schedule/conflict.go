package schedule

// Interval associates a booked window with the booking that owns it.
type Interval struct {
	BookingID string
	Window    Window
}

// FindConflict identifies the first existing interval that intersects the
// candidate window. The intervals must already be narrowed to a single room
// and date; this function only performs the window comparison.
//
// excludeID removes a booking from the comparison set so that editing a
// booking does not conflict with itself. An empty excludeID excludes nothing.
//
// Any returned conflict is a hard rejection, so "first" carries no meaning
// beyond the order of the input slice.
func FindConflict(existing []Interval, candidate Window, excludeID string) (Interval, bool) {
	for _, interval := range existing {
		if excludeID != "" && interval.BookingID == excludeID {
			continue
		}
		if interval.Window.Overlaps(candidate) {
			return interval, true
		}
	}
	return Interval{}, false
}
