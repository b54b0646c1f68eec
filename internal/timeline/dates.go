package timeline

import (
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// StartOfDay returns local midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(locationOrUTC(loc))
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}

// SameDate compares calendar dates in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	loc = locationOrUTC(loc)
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// OnDate keeps reservations whose start falls on day's calendar date.
func OnDate(reservations []model.Reservation, day time.Time, loc *time.Location) []model.Reservation {
	out := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if SameDate(r.StartTime, day, loc) {
			out = append(out, r)
		}
	}
	return out
}

// Around narrows reservations to those touching the calendar days spanned by
// iv. The result is a superset of everything that can overlap iv, including
// reservations that cross midnight, so conflict checks stay exact while
// skipping the rest of the history.
func Around(reservations []model.Reservation, iv Interval, loc *time.Location) []model.Reservation {
	span := Interval{
		Start: StartOfDay(iv.Start, loc),
		End:   StartOfDay(iv.End, loc).AddDate(0, 0, 1),
	}
	out := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if Overlaps(span, reservationInterval(r)) {
			out = append(out, r)
		}
	}
	return out
}

func reservationInterval(r model.Reservation) Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
