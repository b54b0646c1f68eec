package timeline

import (
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

// CheckConflict reports every reservation on tableID overlapping
// [start, end). excludeID, when non-empty, is skipped so a reservation can be
// checked against everyone else.
func CheckConflict(reservations []model.Reservation, tableID string, start, end time.Time, excludeID string) model.ConflictCheck {
	candidate := Interval{Start: start, End: end}
	ids := []string{}
	for _, r := range reservations {
		if r.TableID != tableID {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if Overlaps(candidate, reservationInterval(r)) {
			ids = append(ids, r.ID)
		}
	}

	check := model.ConflictCheck{
		HasConflict:               len(ids) > 0,
		ConflictingReservationIDs: ids,
	}
	if check.HasConflict {
		check.Reason = model.ConflictReasonOverlap
	}
	return check
}
