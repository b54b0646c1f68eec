package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

const (
	batchDateTimeLayout = "2006-01-02 15:04"
	maxAlternatives     = 3
)

const (
	reasonInvalidDateTime = "Invalid date or time"
	reasonFullyBooked     = "All suitable tables are fully booked on this date"
	reasonTimeConflict    = "Time conflict: every suitable table is occupied at this time"
	reasonImportConflict  = "Time conflict with a reservation created after the preview"
	reasonInvalidDuration = "Duration must be between 30 and 240 minutes"
)

func reasonNoCapacity(partySize int) string {
	return fmt.Sprintf("No table has capacity for %d people", partySize)
}

type placement struct {
	tableID  string
	interval Interval
}

// RequestInterval resolves the wall-clock date and time of req in loc.
func RequestInterval(req model.BatchRequest, loc *time.Location) (Interval, error) {
	start, err := time.ParseInLocation(batchDateTimeLayout, req.Date+" "+req.StartTime, locationOrUTC(loc))
	if err != nil {
		return Interval{}, fmt.Errorf("parse request date/time: %w", err)
	}
	return NewInterval(start, req.DurationMinutes), nil
}

// AssignTablesInBatch greedily gives each request the best free table.
// Requests are handled VIP first, then LARGE_GROUP, then STANDARD, larger
// parties first within a priority. Tables assigned earlier in the same run
// count as occupied, so one import never double-books a table. A request
// that cannot be placed gets a reason; it never stops the batch.
func AssignTablesInBatch(requests []model.BatchRequest, tables []model.Table, existing []model.Reservation, sectorIDs map[string]string, loc *time.Location) model.BatchAssignmentResult {
	ordered := make([]model.BatchRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].Priority.Rank(), ordered[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return ordered[i].PartySize > ordered[j].PartySize
	})

	result := model.BatchAssignmentResult{Assignments: make([]model.TableAssignment, 0, len(ordered))}
	var pending []placement

	for _, req := range ordered {
		iv, err := RequestInterval(req, loc)
		if err != nil {
			result.Assignments = append(result.Assignments, failedAssignment(req, reasonInvalidDateTime))
			result.FailureCount++
			continue
		}

		nearby := Around(existing, iv, loc)
		preferred := resolveSector(sectorIDs, req.PreferredSector)

		type candidate struct {
			table model.Table
			score int
		}
		var candidates []candidate
		for _, table := range tables {
			if !tableFree(table.ID, iv, nearby, pending) {
				continue
			}
			if score := ScoreTable(table, req.PartySize, preferred); score > 0 {
				candidates = append(candidates, candidate{table: table, score: score})
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		if len(candidates) == 0 {
			result.Assignments = append(result.Assignments, failedAssignment(req, failureReason(req, iv, tables, existing, loc)))
			result.FailureCount++
			continue
		}

		best := candidates[0].table
		alternatives := []model.Table{}
		for _, c := range candidates[1:] {
			if len(alternatives) == maxAlternatives {
				break
			}
			alternatives = append(alternatives, c.table)
		}

		result.Assignments = append(result.Assignments, model.TableAssignment{
			Request:       req,
			AssignedTable: &best,
			Alternatives:  alternatives,
		})
		result.SuccessCount++
		pending = append(pending, placement{tableID: best.ID, interval: iv})
	}

	return result
}

// CreateReservationsFromAssignments materializes the successful assignments
// as confirmed batch-import reservations. Failed rows are dropped.
func CreateReservationsFromAssignments(assignments []model.TableAssignment, env Env) []model.Reservation {
	env = env.withDefaults()
	now := env.Now()

	var out []model.Reservation
	for _, a := range assignments {
		if !a.Assigned() {
			continue
		}
		r, err := reservationFromRequest(a.Request, a.AssignedTable.ID, env.Location)
		if err != nil {
			continue
		}
		r.ID = env.NewID()
		r.CreatedAt = now
		r.UpdatedAt = now
		out = append(out, r)
	}
	return out
}

// AssignBatch runs AssignTablesInBatch against the book's reservations.
func (b Book) AssignBatch(requests []model.BatchRequest, tables []model.Table, sectorIDs map[string]string) model.BatchAssignmentResult {
	return AssignTablesInBatch(requests, tables, b.reservations, sectorIDs, b.Location())
}

// ImportAssignments commits the successful assignments. Each reservation is
// re-checked against the book as it grows, so an assignment computed from an
// older snapshot cannot double-book a table. Rows that fail the re-check come
// back as rejected assignments.
func (b Book) ImportAssignments(assignments []model.TableAssignment) (Book, []model.Reservation, []model.TableAssignment) {
	env := b.Env()
	next := b
	var created []model.Reservation
	var rejected []model.TableAssignment

	for _, a := range assignments {
		if !a.Assigned() {
			continue
		}
		r, err := reservationFromRequest(a.Request, a.AssignedTable.ID, env.Location)
		if err != nil {
			rejected = append(rejected, failedAssignment(a.Request, reasonInvalidDateTime))
			continue
		}
		if !ValidDuration(r.DurationMinutes) {
			rejected = append(rejected, failedAssignment(a.Request, reasonInvalidDuration))
			continue
		}
		if check := next.CheckConflict(r.TableID, r.StartTime, r.EndTime, ""); check.HasConflict {
			rejected = append(rejected, failedAssignment(a.Request, reasonImportConflict))
			continue
		}

		now := env.Now()
		r.ID = env.NewID()
		r.CreatedAt = now
		r.UpdatedAt = now

		rs := make([]model.Reservation, len(next.reservations), len(next.reservations)+1)
		copy(rs, next.reservations)
		next = next.with(append(rs, r))
		created = append(created, r)
	}
	return next, created, rejected
}

func reservationFromRequest(req model.BatchRequest, tableID string, loc *time.Location) (model.Reservation, error) {
	iv, err := RequestInterval(req, loc)
	if err != nil {
		return model.Reservation{}, err
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityStandard
	}
	return model.Reservation{
		TableID: tableID,
		Customer: model.Customer{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
			Email: req.CustomerEmail,
		},
		PartySize:       req.PartySize,
		StartTime:       iv.Start,
		EndTime:         iv.End,
		DurationMinutes: req.DurationMinutes,
		Status:          model.ReservationStatusConfirmed,
		Priority:        priority,
		Notes:           req.SpecialRequests,
		Source:          model.SourceBatchImport,
	}, nil
}

func tableFree(tableID string, iv Interval, existing []model.Reservation, pending []placement) bool {
	for _, r := range existing {
		if r.TableID == tableID && Overlaps(iv, reservationInterval(r)) {
			return false
		}
	}
	for _, p := range pending {
		if p.tableID == tableID && Overlaps(iv, p.interval) {
			return false
		}
	}
	return true
}

func failureReason(req model.BatchRequest, iv Interval, tables []model.Table, existing []model.Reservation, loc *time.Location) string {
	onDate := OnDate(existing, iv.Start, loc)
	booked := make(map[string]bool, len(onDate))
	for _, r := range onDate {
		booked[r.TableID] = true
	}

	var suitable int
	for _, t := range tables {
		if t.Capacity.Max < req.PartySize {
			continue
		}
		suitable++
		if !booked[t.ID] {
			return reasonTimeConflict
		}
	}
	if suitable == 0 {
		return reasonNoCapacity(req.PartySize)
	}
	return reasonFullyBooked
}

func resolveSector(sectorIDs map[string]string, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if id, ok := sectorIDs[name]; ok {
		return id
	}
	for n, id := range sectorIDs {
		if strings.EqualFold(n, name) {
			return id
		}
	}
	return ""
}

func failedAssignment(req model.BatchRequest, reason string) model.TableAssignment {
	return model.TableAssignment{
		Request:      req,
		Reason:       reason,
		Alternatives: []model.Table{},
	}
}
