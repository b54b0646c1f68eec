package timeline

import "time"

const (
	MinDurationMinutes     = 30
	MaxDurationMinutes     = 240
	DefaultDurationMinutes = 90

	// SlotMinutes is the timeline snapping unit. Reservations store exact
	// instants, not slot indices.
	SlotMinutes = 15
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: EndTime(start, durationMinutes)}
}

// EndTime returns start + durationMinutes.
func EndTime(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// Overlaps reports whether a and b share any instant. Touching endpoints
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ValidDuration reports whether minutes lies in the closed range [30, 240].
func ValidDuration(minutes int) bool {
	return minutes >= MinDurationMinutes && minutes <= MaxDurationMinutes
}
