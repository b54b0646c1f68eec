package timeline

import (
	"strings"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

type FilterOptions struct {
	SectorIDs []string
	Statuses  []model.ReservationStatus
	Search    string
}

// Filter returns the reservations starting on date that match every
// non-empty option. Search matches customer name, phone or email.
func Filter(reservations []model.Reservation, tables []model.Table, date time.Time, loc *time.Location, opts FilterOptions) []model.Reservation {
	var inSectors map[string]bool
	if len(opts.SectorIDs) > 0 {
		sectors := make(map[string]bool, len(opts.SectorIDs))
		for _, id := range opts.SectorIDs {
			sectors[id] = true
		}
		inSectors = make(map[string]bool)
		for _, t := range tables {
			if sectors[t.SectorID] {
				inSectors[t.ID] = true
			}
		}
	}

	statuses := make(map[model.ReservationStatus]bool, len(opts.Statuses))
	for _, s := range opts.Statuses {
		statuses[s] = true
	}
	query := strings.ToLower(strings.TrimSpace(opts.Search))

	out := []model.Reservation{}
	for _, r := range OnDate(reservations, date, loc) {
		if inSectors != nil && !inSectors[r.TableID] {
			continue
		}
		if len(statuses) > 0 && !statuses[r.Status] {
			continue
		}
		if query != "" && !matchesCustomer(r.Customer, query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesCustomer(c model.Customer, query string) bool {
	return strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(c.Phone, query) ||
		strings.Contains(strings.ToLower(c.Email), query)
}

// ReservationsByTable groups reservations by table id, keeping input order.
func ReservationsByTable(reservations []model.Reservation) map[string][]model.Reservation {
	out := make(map[string][]model.Reservation)
	for _, r := range reservations {
		out[r.TableID] = append(out[r.TableID], r)
	}
	return out
}

// CountByStatus always reports every known status, zero or not.
func CountByStatus(reservations []model.Reservation) map[model.ReservationStatus]int {
	counts := make(map[model.ReservationStatus]int, len(model.ReservationStatuses))
	for _, s := range model.ReservationStatuses {
		counts[s] = 0
	}
	for _, r := range reservations {
		counts[r.Status]++
	}
	return counts
}
