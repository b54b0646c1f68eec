package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
	"go.uber.org/zap"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrCapacityMismatch = errors.New("party size does not fit table capacity")
)

// ReservationStore persists reservations of one restaurant.
type ReservationStore interface {
	ListBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	SaveAll(ctx context.Context, restaurantID string, reservations []model.Reservation) error
	Delete(ctx context.Context, ids []string) error
}

// FloorStore reads the restaurant's sectors and tables.
type FloorStore interface {
	ListSectors(ctx context.Context, restaurantID string) ([]model.Sector, error)
	ListTables(ctx context.Context, restaurantID string) ([]model.Table, error)
}

type Settings struct {
	AvgTicketPerPerson float64
	Now                func() time.Time
	NewID              func() string
}

// ImportResult is the outcome of a committed batch import.
type ImportResult struct {
	Assignments model.BatchAssignmentResult `json:"assignments"`
	Created     []model.Reservation         `json:"created"`
	Rejected    []model.TableAssignment     `json:"rejected"`
}

// span is a range of start instants whose reservations are all in memory.
type span struct {
	from, to time.Time
}

// ReservationService owns the live timeline of one restaurant. Every
// decide-then-write cycle runs under one mutex, so a conflict check and the
// write it guards can never interleave with another writer. Changes live in
// memory until Flush persists them.
//
// Load warms a window of days. Any operation touching a day outside the
// loaded spans first pulls that day from the store, so conflict checks
// always see every stored reservation that can overlap.
type ReservationService struct {
	mu sync.Mutex

	restaurant   model.Restaurant
	loc          *time.Location
	settings     Settings
	reservations ReservationStore
	floor        FloorStore

	plan    model.FloorPlan
	book    timeline.Book
	loaded  []span
	gen     uint64
	dirty   map[string]uint64
	deleted map[string]uint64

	logger *zap.Logger
}

func NewReservationService(
	restaurant model.Restaurant,
	reservations ReservationStore,
	floor FloorStore,
	settings Settings,
	logger *zap.Logger,
) (*ReservationService, error) {
	loc, err := time.LoadLocation(restaurant.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load restaurant timezone: %w", err)
	}

	s := &ReservationService{
		restaurant:   restaurant,
		loc:          loc,
		settings:     settings,
		reservations: reservations,
		floor:        floor,
		plan:         model.FloorPlan{Restaurant: restaurant},
		dirty:        make(map[string]uint64),
		deleted:      make(map[string]uint64),
		logger:       logger.With(zap.String("restaurant_id", restaurant.ID)),
	}
	s.book = timeline.NewBook(nil, s.bookOptions()...)
	return s, nil
}

func (s *ReservationService) bookOptions() []timeline.Option {
	opts := []timeline.Option{timeline.WithLocation(s.loc)}
	if s.settings.Now != nil {
		opts = append(opts, timeline.WithClock(s.settings.Now))
	}
	if s.settings.NewID != nil {
		opts = append(opts, timeline.WithIDGenerator(s.settings.NewID))
	}
	return opts
}

// Load replaces the in-memory state with the floor plan and the reservations
// starting in [from, to). Unflushed changes are discarded.
func (s *ReservationService) Load(ctx context.Context, from, to time.Time) error {
	sectors, err := s.floor.ListSectors(ctx, s.restaurant.ID)
	if err != nil {
		return fmt.Errorf("load sectors: %w", err)
	}
	tables, err := s.floor.ListTables(ctx, s.restaurant.ID)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	reservations, err := s.reservations.ListBetween(ctx, s.restaurant.ID, from, to)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = model.FloorPlan{Restaurant: s.restaurant, Sectors: sectors, Tables: tables}
	s.book = timeline.NewBook(reservations, s.bookOptions()...)
	s.loaded = []span{{from: from, to: to}}
	s.dirty = make(map[string]uint64)
	s.deleted = make(map[string]uint64)

	s.logger.Info("Timeline loaded",
		zap.Int("sectors", len(sectors)),
		zap.Int("tables", len(tables)),
		zap.Int("reservations", len(reservations)),
		zap.Time("from", from),
		zap.Time("to", to))
	return nil
}

func (s *ReservationService) Location() *time.Location {
	return s.loc
}

// Snapshot returns the current book. It is immutable, so callers may read it
// without holding any lock.
func (s *ReservationService) Snapshot() timeline.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

func (s *ReservationService) FloorPlan() model.FloorPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Get returns a reservation, reading it from the store when its day is not
// loaded yet.
func (s *ReservationService) Get(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resident(ctx, id)
}

// List returns the reservations starting on date, filtered by opts.
func (s *ReservationService) List(ctx context.Context, date time.Time, opts timeline.FilterOptions) ([]model.Reservation, error) {
	book, plan, err := s.view(ctx, s.dayInterval(date))
	if err != nil {
		return nil, err
	}
	return timeline.Filter(book.Reservations(), plan.Tables, date, s.loc, opts), nil
}

func (s *ReservationService) CountByStatus(ctx context.Context, date time.Time) (map[model.ReservationStatus]int, error) {
	book, _, err := s.view(ctx, s.dayInterval(date))
	if err != nil {
		return nil, err
	}
	return timeline.CountByStatus(timeline.OnDate(book.Reservations(), date, s.loc)), nil
}

func (s *ReservationService) Create(ctx context.Context, in model.CreateReservationInput) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTable(in.TableID, in.PartySize); err != nil {
		s.reject("create", "", in.TableID, err)
		return model.Reservation{}, err
	}
	if err := s.ensureLoaded(ctx, timeline.NewInterval(in.StartTime, in.DurationMinutes)); err != nil {
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	next, r, err := s.book.Create(in)
	if err != nil {
		s.reject("create", "", in.TableID, err)
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	s.commit(next, r.ID)

	s.logger.Info("Reservation created",
		zap.String("reservation_id", r.ID),
		zap.String("table_id", r.TableID),
		zap.Int("party_size", r.PartySize),
		zap.Time("start_time", r.StartTime),
		zap.Int("duration_minutes", r.DurationMinutes))
	return r, nil
}

// Update applies a partial update. Changes to table, start or duration are
// conflict checked; a new table or party size must fit.
func (s *ReservationService) Update(ctx context.Context, patch model.UpdateReservationInput) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.resident(ctx, patch.ID)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("update reservation: %w", err)
	}
	if patch.TableID != nil || patch.PartySize != nil {
		tableID, partySize := current.TableID, current.PartySize
		if patch.TableID != nil {
			tableID = *patch.TableID
		}
		if patch.PartySize != nil {
			partySize = *patch.PartySize
		}
		if err := s.checkTable(tableID, partySize); err != nil {
			s.reject("update", patch.ID, tableID, err)
			return model.Reservation{}, err
		}
	}
	if patch.StartTime != nil || patch.DurationMinutes != nil {
		start, minutes := current.StartTime, current.DurationMinutes
		if patch.StartTime != nil {
			start = *patch.StartTime
		}
		if patch.DurationMinutes != nil {
			minutes = *patch.DurationMinutes
		}
		if err := s.ensureLoaded(ctx, timeline.NewInterval(start, minutes)); err != nil {
			return model.Reservation{}, fmt.Errorf("update reservation: %w", err)
		}
	}

	next, err := s.book.Amend(patch)
	if err != nil {
		s.reject("update", patch.ID, current.TableID, err)
		return model.Reservation{}, fmt.Errorf("update reservation: %w", err)
	}
	s.commit(next, patch.ID)

	r, _ := next.Get(patch.ID)
	s.logger.Info("Reservation updated",
		zap.String("reservation_id", r.ID),
		zap.String("table_id", r.TableID))
	return r, nil
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.resident(ctx, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	next, err := s.book.Delete(id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	s.book = next
	s.gen++
	delete(s.dirty, id)
	s.deleted[id] = s.gen

	s.logger.Info("Reservation deleted", zap.String("reservation_id", id))
	return nil
}

func (s *ReservationService) ChangeStatus(ctx context.Context, id string, status model.ReservationStatus) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.resident(ctx, id); err != nil {
		return model.Reservation{}, fmt.Errorf("change status: %w", err)
	}
	next, err := s.book.ChangeStatus(id, status)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("change status: %w", err)
	}
	s.commit(next, id)

	r, _ := next.Get(id)
	s.logger.Info("Reservation status changed",
		zap.String("reservation_id", id),
		zap.String("status", string(status)))
	return r, nil
}

// Move places the reservation on another table and/or start time. The
// target table must exist and seat the party.
func (s *ReservationService) Move(ctx context.Context, id, tableID string, start time.Time) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.resident(ctx, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("move reservation: %w", err)
	}
	if err := s.checkTable(tableID, current.PartySize); err != nil {
		s.reject("move", id, tableID, err)
		return model.Reservation{}, err
	}
	if err := s.ensureLoaded(ctx, timeline.NewInterval(start, current.DurationMinutes)); err != nil {
		return model.Reservation{}, fmt.Errorf("move reservation: %w", err)
	}

	next, err := s.book.Move(id, tableID, start)
	if err != nil {
		s.reject("move", id, tableID, err)
		return model.Reservation{}, fmt.Errorf("move reservation: %w", err)
	}
	s.commit(next, id)

	r, _ := next.Get(id)
	s.logger.Info("Reservation moved",
		zap.String("reservation_id", id),
		zap.String("from_table_id", current.TableID),
		zap.String("table_id", r.TableID),
		zap.Time("start_time", r.StartTime))
	return r, nil
}

func (s *ReservationService) Resize(ctx context.Context, id string, durationMinutes int) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.resident(ctx, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("resize reservation: %w", err)
	}
	if err := s.ensureLoaded(ctx, timeline.NewInterval(current.StartTime, durationMinutes)); err != nil {
		return model.Reservation{}, fmt.Errorf("resize reservation: %w", err)
	}

	next, err := s.book.Resize(id, durationMinutes)
	if err != nil {
		s.reject("resize", id, current.TableID, err)
		return model.Reservation{}, fmt.Errorf("resize reservation: %w", err)
	}
	s.commit(next, id)

	r, _ := next.Get(id)
	s.logger.Info("Reservation resized",
		zap.String("reservation_id", id),
		zap.Int("duration_minutes", durationMinutes),
		zap.Time("end_time", r.EndTime))
	return r, nil
}

func (s *ReservationService) CheckConflict(ctx context.Context, tableID string, start, end time.Time, excludeID string) (model.ConflictCheck, error) {
	book, _, err := s.view(ctx, timeline.Interval{Start: start, End: end})
	if err != nil {
		return model.ConflictCheck{}, err
	}
	return book.CheckConflict(tableID, start, end, excludeID), nil
}

func (s *ReservationService) SuggestTables(ctx context.Context, q timeline.SuggestionQuery) ([]model.TableSuggestion, error) {
	book, plan, err := s.view(ctx, timeline.NewInterval(q.StartTime, q.DurationMinutes))
	if err != nil {
		return nil, err
	}
	return timeline.FindBestTables(plan.Tables, book.Reservations(), q, s.loc), nil
}

func (s *ReservationService) SuggestSlots(ctx context.Context, q timeline.SuggestionQuery) ([]model.TimeSlotSuggestion, error) {
	reach := time.Duration(timeline.MaxSlotOffsetMinutes) * time.Minute
	iv := timeline.NewInterval(q.StartTime.Add(-reach), q.DurationMinutes)
	iv.End = iv.End.Add(2 * reach)
	book, plan, err := s.view(ctx, iv)
	if err != nil {
		return nil, err
	}
	return timeline.FindNextAvailableSlots(plan.Tables, book.Reservations(), q, s.loc), nil
}

// PreviewBatch computes assignments without committing anything.
func (s *ReservationService) PreviewBatch(ctx context.Context, requests []model.BatchRequest) (model.BatchAssignmentResult, error) {
	book, plan, err := s.view(ctx, s.requestIntervals(requests)...)
	if err != nil {
		return model.BatchAssignmentResult{}, err
	}
	return book.AssignBatch(requests, plan.Tables, plan.SectorIDsByName()), nil
}

// ImportBatch assigns and commits requests in one critical section.
func (s *ReservationService) ImportBatch(ctx context.Context, requests []model.BatchRequest) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, iv := range s.requestIntervals(requests) {
		if err := s.ensureLoaded(ctx, iv); err != nil {
			return ImportResult{}, fmt.Errorf("import batch: %w", err)
		}
	}

	assignments := s.book.AssignBatch(requests, s.plan.Tables, s.plan.SectorIDsByName())
	next, created, rejected := s.book.ImportAssignments(assignments.Assignments)

	ids := make([]string, len(created))
	for i, r := range created {
		ids[i] = r.ID
	}
	s.commit(next, ids...)

	s.logger.Info("Batch imported",
		zap.Int("requests", len(requests)),
		zap.Int("assigned", assignments.SuccessCount),
		zap.Int("created", len(created)),
		zap.Int("rejected", len(rejected)),
		zap.Int("unassigned", assignments.FailureCount))

	if created == nil {
		created = []model.Reservation{}
	}
	if rejected == nil {
		rejected = []model.TableAssignment{}
	}
	return ImportResult{Assignments: assignments, Created: created, Rejected: rejected}, nil
}

// CapacityReport returns seat occupancy per 15 minute slot for date.
func (s *ReservationService) CapacityReport(ctx context.Context, date time.Time) ([]model.TimeSlotCapacity, error) {
	book, plan, err := s.view(ctx, s.dayInterval(date))
	if err != nil {
		return nil, err
	}
	day := timeline.OnDate(book.Reservations(), date, s.loc)
	return timeline.CapacityByTimeSlot(day, plan.Tables, date, s.loc, timeline.ServiceStartHour, timeline.ServiceEndHour), nil
}

func (s *ReservationService) SectorReport(ctx context.Context, date time.Time) ([]model.SectorMetrics, error) {
	book, plan, err := s.view(ctx, s.dayInterval(date))
	if err != nil {
		return nil, err
	}
	day := timeline.OnDate(book.Reservations(), date, s.loc)
	return timeline.CalculateSectorMetrics(plan.Sectors, plan.Tables, day, date, s.loc, s.settings.AvgTicketPerPerson), nil
}

// Dirty reports how many changes are waiting for Flush.
func (s *ReservationService) Dirty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) + len(s.deleted)
}

// Flush persists changed and deleted reservations. Writes happen outside
// the lock; a change made while flushing stays dirty for the next round.
func (s *ReservationService) Flush(ctx context.Context) error {
	s.mu.Lock()
	saved := make(map[string]uint64, len(s.dirty))
	var pending []model.Reservation
	for id, gen := range s.dirty {
		if r, ok := s.book.Get(id); ok {
			pending = append(pending, r)
			saved[id] = gen
		}
	}
	removed := make(map[string]uint64, len(s.deleted))
	var deletedIDs []string
	for id, gen := range s.deleted {
		deletedIDs = append(deletedIDs, id)
		removed[id] = gen
	}
	s.mu.Unlock()

	if len(pending) == 0 && len(deletedIDs) == 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	sort.Strings(deletedIDs)

	if len(pending) > 0 {
		if err := s.reservations.SaveAll(ctx, s.restaurant.ID, pending); err != nil {
			s.logger.Error("Failed to save reservations", zap.Int("count", len(pending)), zap.Error(err))
			return fmt.Errorf("save reservations: %w", err)
		}
	}
	if len(deletedIDs) > 0 {
		if err := s.reservations.Delete(ctx, deletedIDs); err != nil {
			s.logger.Error("Failed to delete reservations", zap.Int("count", len(deletedIDs)), zap.Error(err))
			return fmt.Errorf("delete reservations: %w", err)
		}
	}

	s.mu.Lock()
	for id, gen := range saved {
		if s.dirty[id] == gen {
			delete(s.dirty, id)
		}
	}
	for id, gen := range removed {
		if s.deleted[id] == gen {
			delete(s.deleted, id)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Timeline flushed",
		zap.Int("saved", len(pending)),
		zap.Int("deleted", len(deletedIDs)))
	return nil
}

// view makes every interval resident and returns the state to read.
func (s *ReservationService) view(ctx context.Context, intervals ...timeline.Interval) (timeline.Book, model.FloorPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, iv := range intervals {
		if err := s.ensureLoaded(ctx, iv); err != nil {
			return timeline.Book{}, model.FloorPlan{}, err
		}
	}
	return s.book, s.plan, nil
}

// ensureLoaded pulls from the store every reservation that can overlap iv,
// unless a loaded span already covers it. Caller holds s.mu.
func (s *ReservationService) ensureLoaded(ctx context.Context, iv timeline.Interval) error {
	if iv.Start.IsZero() {
		return nil
	}
	from, to := s.startWindow(iv)
	for _, sp := range s.loaded {
		if !from.Before(sp.from) && !to.After(sp.to) {
			return nil
		}
	}

	fetched, err := s.reservations.ListBetween(ctx, s.restaurant.ID, from, to)
	if err != nil {
		s.logger.Error("Failed to extend timeline",
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		return fmt.Errorf("load reservations: %w", err)
	}
	s.merge(fetched)
	s.loaded = append(s.loaded, span{from: from, to: to})

	s.logger.Debug("Timeline extended",
		zap.Int("reservations", len(fetched)),
		zap.Time("from", from),
		zap.Time("to", to))
	return nil
}

// startWindow returns the whole days of start instants whose reservations
// can reach into iv, given the longest allowed duration.
func (s *ReservationService) startWindow(iv timeline.Interval) (time.Time, time.Time) {
	longest := time.Duration(timeline.MaxDurationMinutes) * time.Minute
	from := timeline.StartOfDay(iv.Start.Add(-longest), s.loc)
	to := timeline.StartOfDay(iv.End, s.loc).AddDate(0, 0, 1)
	if !to.After(from) {
		to = from.AddDate(0, 0, 1)
	}
	return from, to
}

// merge adds stored reservations the book does not hold. Reservations
// deleted here but not flushed yet stay deleted. Caller holds s.mu.
func (s *ReservationService) merge(stored []model.Reservation) {
	keep := make([]model.Reservation, 0, len(stored))
	for _, r := range stored {
		if _, gone := s.deleted[r.ID]; !gone {
			keep = append(keep, r)
		}
	}
	s.book = s.book.Merge(keep)
}

// resident returns the reservation with id, reading it and its days from
// the store when it is not in memory. Caller holds s.mu.
func (s *ReservationService) resident(ctx context.Context, id string) (model.Reservation, error) {
	if r, ok := s.book.Get(id); ok {
		return r, nil
	}
	if _, gone := s.deleted[id]; gone {
		return model.Reservation{}, fmt.Errorf("%w: %s", timeline.ErrNotFound, id)
	}

	stored, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	if stored == nil {
		return model.Reservation{}, fmt.Errorf("%w: %s", timeline.ErrNotFound, id)
	}
	if err := s.ensureLoaded(ctx, timeline.Interval{Start: stored.StartTime, End: stored.EndTime}); err != nil {
		return model.Reservation{}, err
	}
	s.merge([]model.Reservation{*stored})

	r, _ := s.book.Get(id)
	return r, nil
}

func (s *ReservationService) dayInterval(date time.Time) timeline.Interval {
	start := timeline.StartOfDay(date, s.loc)
	return timeline.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// requestIntervals resolves the placements a batch asks for. Rows with an
// unreadable date or time are skipped; the assignment reports them.
func (s *ReservationService) requestIntervals(requests []model.BatchRequest) []timeline.Interval {
	out := make([]timeline.Interval, 0, len(requests))
	for _, req := range requests {
		if iv, err := timeline.RequestInterval(req, s.loc); err == nil {
			out = append(out, iv)
		}
	}
	return out
}

func (s *ReservationService) commit(next timeline.Book, ids ...string) {
	s.book = next
	s.gen++
	for _, id := range ids {
		s.dirty[id] = s.gen
		delete(s.deleted, id)
	}
}

func (s *ReservationService) checkTable(tableID string, partySize int) error {
	table, ok := s.plan.Table(tableID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	if !table.Capacity.Fits(partySize) {
		return fmt.Errorf("%w: %s seats %d-%d, party of %d", ErrCapacityMismatch, table.ID, table.Capacity.Min, table.Capacity.Max, partySize)
	}
	return nil
}

func (s *ReservationService) reject(op, reservationID, tableID string, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("reservation_id", reservationID),
		zap.String("table_id", tableID),
		zap.Error(err),
	}
	if check, ok := timeline.ConflictOf(err); ok {
		fields = append(fields, zap.Strings("conflicting_reservation_ids", check.ConflictingReservationIDs))
		s.logger.Info("Reservation rejected: conflict", fields...)
		return
	}
	s.logger.Warn("Reservation rejected", fields...)
}
