package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

const sectorPreferenceBonus = 10

// MaxSlotOffsetMinutes is how far FindNextAvailableSlots looks from the
// desired start in either direction.
const MaxSlotOffsetMinutes = 60

// searchWindows are the widening neighborhoods, in minutes, probed around a
// desired start time.
var searchWindows = []int{15, 30, MaxSlotOffsetMinutes}

type SuggestionQuery struct {
	PartySize        int       `json:"party_size"`
	StartTime        time.Time `json:"start_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	SectorPreference string    `json:"sector_preference,omitempty"`
}

// ScoreTable rates how well table fits partySize. Zero means unsuitable.
// Tables sized closest to the party score highest; a table in the preferred
// sector earns a bonus.
func ScoreTable(table model.Table, partySize int, preferredSectorID string) int {
	if !table.Capacity.Fits(partySize) {
		return 0
	}

	var score int
	utilization := float64(partySize) / float64(table.Capacity.Max)
	switch {
	case partySize == table.Capacity.Max:
		score = 100
	case utilization >= 0.9:
		score = 95
	case utilization >= 0.75:
		score = 80
	case utilization >= 0.6:
		score = 65
	default:
		score = 50
	}

	if preferredSectorID != "" && table.SectorID == preferredSectorID {
		score += sectorPreferenceBonus
	}
	return score
}

// SuggestionReason describes the fit tier of table for partySize.
func SuggestionReason(table model.Table, partySize int) string {
	utilization := float64(partySize) / float64(table.Capacity.Max)
	switch {
	case partySize == table.Capacity.Max:
		return "Perfect capacity"
	case utilization >= 0.9:
		return "Excellent use of space"
	case utilization >= 0.75:
		return "Good fit"
	case utilization >= 0.6:
		return "Acceptable fit"
	default:
		return fmt.Sprintf("Capacity %d-%d people", table.Capacity.Min, table.Capacity.Max)
	}
}

// FindBestTables scores every table for q and marks it available when it
// fits the party and is free for the requested interval. Available tables
// come first; each group is ordered by descending score.
func FindBestTables(tables []model.Table, reservations []model.Reservation, q SuggestionQuery, loc *time.Location) []model.TableSuggestion {
	iv := NewInterval(q.StartTime, q.DurationMinutes)
	nearby := Around(reservations, iv, loc)

	suggestions := make([]model.TableSuggestion, 0, len(tables))
	for _, table := range tables {
		score := ScoreTable(table, q.PartySize, q.SectorPreference)
		check := CheckConflict(nearby, table.ID, iv.Start, iv.End, "")
		suggestions = append(suggestions, model.TableSuggestion{
			Table:       table,
			Score:       score,
			Reason:      SuggestionReason(table, q.PartySize),
			IsAvailable: !check.HasConflict && score > 0,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.IsAvailable != b.IsAvailable {
			return a.IsAvailable
		}
		return a.Score > b.Score
	})
	return suggestions
}

// FindNextAvailableSlots probes start times at 15 minute steps within ±15,
// ±30 and ±60 minutes of q.StartTime and returns the ones where at least one
// table is available, closest to the desired time first. The desired time
// itself is not probed.
func FindNextAvailableSlots(tables []model.Table, reservations []model.Reservation, q SuggestionQuery, loc *time.Location) []model.TimeSlotSuggestion {
	desired := q.StartTime
	searched := make(map[int]bool)
	var slots []model.TimeSlotSuggestion

	for _, window := range searchWindows {
		for offset := -window; offset <= window; offset += SlotMinutes {
			if offset == 0 || searched[offset] {
				continue
			}
			searched[offset] = true

			probe := q
			probe.StartTime = desired.Add(time.Duration(offset) * time.Minute)

			var available []model.TableSuggestion
			for _, s := range FindBestTables(tables, reservations, probe, loc) {
				if s.IsAvailable {
					available = append(available, s)
				}
			}
			if len(available) > 0 {
				slots = append(slots, model.TimeSlotSuggestion{
					StartTime:   probe.StartTime,
					Suggestions: available,
				})
			}
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return absDuration(slots[i].StartTime.Sub(desired)) < absDuration(slots[j].StartTime.Sub(desired))
	})
	return slots
}

// FormatTimeDifference renders actual relative to desired, e.g. "+15 min".
func FormatTimeDifference(desired, actual time.Time) string {
	diff := int(actual.Sub(desired).Round(time.Minute) / time.Minute)
	if diff == 0 {
		return "Requested time"
	}
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%d min", sign, diff)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
