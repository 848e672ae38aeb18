package timetable

import "time"

// Booking represents an occupied interval in an instructor's timetable.
type Booking struct {
	SessionID    string
	ClassID      string
	InstructorID string
	Start        time.Time
	End          time.Time
}

// Overlaps reports whether the half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Back-to-back sessions do not overlap.
func Overlaps(a, b Booking) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FirstConflict returns the first existing booking that overlaps the
// candidate, or nil when the candidate fits. Existing bookings are checked
// in the order given.
func FirstConflict(existing []Booking, candidate Booking) *Booking {
	for i := range existing {
		if existing[i].SessionID == candidate.SessionID {
			continue
		}
		if Overlaps(existing[i], candidate) {
			return &existing[i]
		}
	}
	return nil
}
