package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
)

type fakeStore struct {
	mu           sync.Mutex
	reservations []model.Reservation
	saved        []model.Reservation
	deleted      []string
	saveErr      error
	listErr      error
	listCalls    int
}

func (f *fakeStore) ListBetween(_ context.Context, _ string, from, to time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Reservation
	for _, r := range f.reservations {
		if !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveAll(_ context.Context, _ string, reservations []model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, reservations...)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakeFloor struct {
	sectors []model.Sector
	tables  []model.Table
}

func (f fakeFloor) ListSectors(context.Context, string) ([]model.Sector, error) {
	return f.sectors, nil
}

func (f fakeFloor) ListTables(context.Context, string) ([]model.Table, error) {
	return f.tables, nil
}

var day = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func demoFloor() fakeFloor {
	return fakeFloor{
		sectors: []model.Sector{
			{ID: "SECTOR_MAIN", Name: "Main Hall"},
			{ID: "SECTOR_TERRACE", Name: "Terrace"},
		},
		tables: []model.Table{
			{ID: "TABLE_M1", SectorID: "SECTOR_MAIN", Name: "M1", Capacity: model.Capacity{Min: 2, Max: 4}},
			{ID: "TABLE_M2", SectorID: "SECTOR_MAIN", Name: "M2", Capacity: model.Capacity{Min: 2, Max: 6}},
			{ID: "TABLE_T1", SectorID: "SECTOR_TERRACE", Name: "T1", Capacity: model.Capacity{Min: 1, Max: 2}},
		},
	}
}

func existing(id, tableID string, start time.Time, minutes, party int) model.Reservation {
	return model.Reservation{
		ID:              id,
		TableID:         tableID,
		Customer:        model.Customer{Name: "Guest " + id},
		PartySize:       party,
		StartTime:       start,
		EndTime:         timeline.EndTime(start, minutes),
		DurationMinutes: minutes,
		Status:          model.ReservationStatusConfirmed,
		Priority:        model.PriorityStandard,
	}
}

func newTestService(t *testing.T, reservations ...model.Reservation) (*ReservationService, *fakeStore) {
	t.Helper()
	store := &fakeStore{reservations: reservations}
	n := 0
	var idMu sync.Mutex
	svc, err := NewReservationService(
		model.Restaurant{ID: "REST_001", Name: "Bistro Central", Timezone: "UTC"},
		store,
		demoFloor(),
		Settings{
			AvgTicketPerPerson: 25,
			Now:                func() time.Time { return at(10, 0) },
			NewID: func() string {
				idMu.Lock()
				defer idMu.Unlock()
				n++
				return fmt.Sprintf("RES_%03d", n)
			},
		},
		zap.NewNop(),
	)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background(), day, day.AddDate(0, 0, 7)))
	return svc, store
}

func createInput(tableID string, start time.Time, party int) model.CreateReservationInput {
	return model.CreateReservationInput{
		TableID:         tableID,
		Customer:        model.Customer{Name: "Ana"},
		PartySize:       party,
		StartTime:       start,
		DurationMinutes: 90,
	}
}

func TestNewReservationServiceRejectsBadTimezone(t *testing.T) {
	_, err := NewReservationService(model.Restaurant{Timezone: "Mars/Olympus"}, &fakeStore{}, fakeFloor{}, Settings{}, zap.NewNop())
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("OLD", "TABLE_M1", at(19, 0).AddDate(0, 0, -1), 120, 4),
	)
	assert.Equal(t, 1, svc.Snapshot().Len())
	assert.Len(t, svc.FloorPlan().Tables, 3)
	assert.Zero(t, svc.Dirty())
}

func TestCreateAndFlush(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	r, err := svc.Create(ctx, createInput("TABLE_M1", at(20, 0), 4))
	require.NoError(t, err)
	assert.Equal(t, "RES_001", r.ID)
	assert.Equal(t, 1, svc.Dirty())

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	require.NoError(t, svc.Flush(ctx))
	assert.Zero(t, svc.Dirty())
	require.Len(t, store.saved, 1)
	assert.Equal(t, r.ID, store.saved[0].ID)

	// Nothing left to write.
	require.NoError(t, svc.Flush(ctx))
	assert.Len(t, store.saved, 1)
}

func TestCreateGuards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, existing("A", "TABLE_M1", at(19, 0), 120, 4))

	_, err := svc.Create(ctx, createInput("TABLE_X", at(20, 0), 2))
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = svc.Create(ctx, createInput("TABLE_T1", at(20, 0), 4))
	assert.ErrorIs(t, err, ErrCapacityMismatch)

	_, err = svc.Create(ctx, createInput("TABLE_M1", at(20, 0), 2))
	assert.ErrorIs(t, err, timeline.ErrConflict)
	check, ok := timeline.ConflictOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, check.ConflictingReservationIDs)

	assert.Equal(t, 1, svc.Snapshot().Len())
	assert.Zero(t, svc.Dirty())
}

func TestCreateBeyondLoadedDaysSeesStoredReservations(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 10)
	stored := existing("OLD", "TABLE_M1", later.Add(19*time.Hour), 120, 4)
	svc, store := newTestService(t, stored)
	require.Zero(t, svc.Snapshot().Len())

	_, err := svc.Create(ctx, createInput("TABLE_M1", later.Add(19*time.Hour+30*time.Minute), 4))
	require.ErrorIs(t, err, timeline.ErrConflict)
	check, ok := timeline.ConflictOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"OLD"}, check.ConflictingReservationIDs)

	// The day is resident now; the stored reservation is not marked dirty.
	assert.Equal(t, 1, svc.Snapshot().Len())
	assert.Zero(t, svc.Dirty())
	require.NoError(t, svc.Flush(ctx))
	assert.Empty(t, store.saved)

	r, err := svc.Create(ctx, createInput("TABLE_M1", later.Add(21*time.Hour), 4))
	require.NoError(t, err)
	require.NoError(t, svc.Flush(ctx))
	require.Len(t, store.saved, 1)
	assert.Equal(t, r.ID, store.saved[0].ID)
}

func TestLateReservationOfPreviousDayBlocksEarlyMorning(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 20)
	svc, _ := newTestService(t, existing("LATE", "TABLE_M2", later.Add(-time.Hour), 120, 4))

	_, err := svc.Create(ctx, createInput("TABLE_M2", later.Add(30*time.Minute), 4))
	require.ErrorIs(t, err, timeline.ErrConflict)
}

func TestExtendingLoadedDaysHitsStoreOnce(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 10)
	svc, store := newTestService(t)
	calls := store.listCalls

	_, err := svc.Create(ctx, createInput("TABLE_M1", later.Add(13*time.Hour), 2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createInput("TABLE_M2", later.Add(14*time.Hour), 2))
	require.NoError(t, err)
	assert.Equal(t, calls+1, store.listCalls)

	// Inside the initial window nothing is fetched.
	_, err = svc.Create(ctx, createInput("TABLE_M1", at(13, 0), 2))
	require.NoError(t, err)
	assert.Equal(t, calls+1, store.listCalls)
}

func TestStoreFailureRejectsWrite(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	store.listErr = errors.New("connection refused")

	_, err := svc.Create(ctx, createInput("TABLE_M1", day.AddDate(0, 0, 10).Add(20*time.Hour), 2))
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, svc.Snapshot().Len())
	assert.Zero(t, svc.Dirty())

	_, err = svc.CapacityReport(ctx, day.AddDate(0, 0, 12))
	assert.ErrorContains(t, err, "connection refused")
}

func TestLoadWindowInRestaurantTimezone(t *testing.T) {
	ctx := context.Background()
	art, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	// 22:00 on Oct 15 in Buenos Aires is 01:00 UTC on Oct 16.
	local := time.Date(2025, 10, 15, 22, 0, 0, 0, art)
	store := &fakeStore{reservations: []model.Reservation{existing("NIGHT", "TABLE_M1", local, 120, 4)}}
	svc, err := NewReservationService(
		model.Restaurant{ID: "REST_001", Timezone: "America/Argentina/Buenos_Aires"},
		store,
		demoFloor(),
		Settings{Now: func() time.Time { return local }},
		zap.NewNop(),
	)
	require.NoError(t, err)

	today := timeline.StartOfDay(local, svc.Location())
	require.NoError(t, svc.Load(ctx, today, today.AddDate(0, 0, 1)))
	assert.Equal(t, 1, svc.Snapshot().Len())

	listed, err := svc.List(ctx, today, timeline.FilterOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "NIGHT", listed[0].ID)

	// Crossing into the next local day still sees the late reservation.
	_, err = svc.Create(ctx, createInput("TABLE_M1", local.Add(90*time.Minute), 4))
	assert.ErrorIs(t, err, timeline.ErrConflict)
	assert.Equal(t, 1, svc.Snapshot().Len())
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("B", "TABLE_M2", at(21, 30), 90, 2),
	)

	_, err := svc.Move(ctx, "A", "TABLE_T1", at(19, 0))
	assert.ErrorIs(t, err, ErrCapacityMismatch)

	_, err = svc.Move(ctx, "A", "TABLE_NOPE", at(19, 0))
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = svc.Move(ctx, "A", "TABLE_M2", at(21, 0))
	assert.ErrorIs(t, err, timeline.ErrConflict)

	_, err = svc.Move(ctx, "missing", "TABLE_M2", at(12, 0))
	assert.ErrorIs(t, err, timeline.ErrNotFound)

	r, err := svc.Move(ctx, "A", "TABLE_M2", at(19, 0))
	require.NoError(t, err)
	assert.Equal(t, "TABLE_M2", r.TableID)
	assert.Equal(t, at(21, 0), r.EndTime)
	assert.Equal(t, 1, svc.Dirty())
}

func TestMoveIntoUnloadedDayChecksStoredReservations(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 10)
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("OLD", "TABLE_M2", later.Add(19*time.Hour), 120, 4),
	)

	_, err := svc.Move(ctx, "A", "TABLE_M2", later.Add(20*time.Hour))
	require.ErrorIs(t, err, timeline.ErrConflict)

	r, err := svc.Move(ctx, "A", "TABLE_M1", later.Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, later.Add(22*time.Hour), r.EndTime)
}

func TestReservationOutsideLoadedDaysIsReadThrough(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 30)
	svc, store := newTestService(t,
		existing("FAR", "TABLE_M1", later.Add(19*time.Hour), 90, 2),
		existing("NEXT", "TABLE_M1", later.Add(21*time.Hour), 90, 2),
	)
	require.Zero(t, svc.Snapshot().Len())

	r, err := svc.Get(ctx, "FAR")
	require.NoError(t, err)
	assert.Equal(t, "TABLE_M1", r.TableID)
	assert.Equal(t, 2, svc.Snapshot().Len())

	// Its neighbours came along, so resizing into them conflicts.
	_, err = svc.Resize(ctx, "FAR", 150)
	assert.ErrorIs(t, err, timeline.ErrConflict)

	require.NoError(t, svc.Delete(ctx, "NEXT"))
	_, err = svc.Get(ctx, "NEXT")
	assert.ErrorIs(t, err, timeline.ErrNotFound)

	// A later fetch of the same days must not bring the deleted one back.
	_, err = svc.CapacityReport(ctx, later.AddDate(0, 0, -1))
	require.NoError(t, err)
	_, ok := svc.Snapshot().Get("NEXT")
	assert.False(t, ok)

	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, []string{"NEXT"}, store.deleted)
}

func TestResizeAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("B", "TABLE_M1", at(21, 30), 90, 2),
	)

	r, err := svc.Resize(ctx, "A", 150)
	require.NoError(t, err)
	assert.Equal(t, at(21, 30), r.EndTime)

	_, err = svc.Resize(ctx, "A", 180)
	assert.ErrorIs(t, err, timeline.ErrConflict)

	_, err = svc.Resize(ctx, "A", 20)
	assert.ErrorIs(t, err, timeline.ErrInvalidDuration)

	r, err = svc.ChangeStatus(ctx, "B", model.ReservationStatusSeated)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusSeated, r.Status)
	assert.Equal(t, 2, svc.Dirty())

	counts, err := svc.CountByStatus(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.ReservationStatusSeated])
	assert.Equal(t, 1, counts[model.ReservationStatusConfirmed])
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("B", "TABLE_M1", at(21, 30), 90, 2),
	)

	party := 6
	_, err := svc.Update(ctx, model.UpdateReservationInput{ID: "A", PartySize: &party})
	assert.ErrorIs(t, err, ErrCapacityMismatch)

	start := at(20, 0)
	_, err = svc.Update(ctx, model.UpdateReservationInput{ID: "B", StartTime: &start})
	assert.ErrorIs(t, err, timeline.ErrConflict)

	notes := "anniversary"
	r, err := svc.Update(ctx, model.UpdateReservationInput{ID: "B", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "anniversary", r.Notes)

	_, err = svc.Update(ctx, model.UpdateReservationInput{ID: "missing", Notes: &notes})
	assert.ErrorIs(t, err, timeline.ErrNotFound)
}

func TestUpdateIntoUnloadedDay(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 9)
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(19, 0), 120, 4),
		existing("OLD", "TABLE_M1", later.Add(20*time.Hour), 90, 2),
	)

	start := later.Add(19 * time.Hour)
	_, err := svc.Update(ctx, model.UpdateReservationInput{ID: "A", StartTime: &start})
	assert.ErrorIs(t, err, timeline.ErrConflict)
}

func TestDeleteFlushesRemoval(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, existing("A", "TABLE_M1", at(19, 0), 120, 4))

	require.NoError(t, svc.Delete(ctx, "A"))
	assert.ErrorIs(t, svc.Delete(ctx, "A"), timeline.ErrNotFound)
	assert.Equal(t, 1, svc.Dirty())

	_, err := svc.Get(ctx, "A")
	assert.ErrorIs(t, err, timeline.ErrNotFound)

	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, []string{"A"}, store.deleted)
	assert.Empty(t, store.saved)
	assert.Zero(t, svc.Dirty())
}

func TestFlushFailureKeepsChanges(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	store.saveErr = errors.New("connection refused")

	_, err := svc.Create(ctx, createInput("TABLE_M1", at(20, 0), 4))
	require.NoError(t, err)

	err = svc.Flush(ctx)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 1, svc.Dirty())

	store.saveErr = nil
	require.NoError(t, svc.Flush(ctx))
	assert.Zero(t, svc.Dirty())
}

func TestConcurrentCreatesNeverDoubleBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	const writers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, conflicted int
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, createInput("TABLE_M2", at(20, 0), 4))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, timeline.ErrConflict) {
				conflicted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicted)
	assert.Equal(t, 1, svc.Snapshot().Len())
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, existing("A", "TABLE_M1", at(19, 0), 120, 4))

	tables, err := svc.SuggestTables(ctx, timeline.SuggestionQuery{PartySize: 4, StartTime: at(20, 0), DurationMinutes: 90})
	require.NoError(t, err)
	require.NotEmpty(t, tables)
	assert.Equal(t, "TABLE_M2", tables[0].Table.ID)
	assert.True(t, tables[0].IsAvailable)

	slots, err := svc.SuggestSlots(ctx, timeline.SuggestionQuery{PartySize: 4, StartTime: at(20, 0), DurationMinutes: 90})
	require.NoError(t, err)
	assert.NotEmpty(t, slots)

	check, err := svc.CheckConflict(ctx, "TABLE_M1", at(20, 0), at(21, 0), "")
	require.NoError(t, err)
	assert.True(t, check.HasConflict)
	check, err = svc.CheckConflict(ctx, "TABLE_M1", at(21, 0), at(22, 0), "")
	require.NoError(t, err)
	assert.False(t, check.HasConflict)
}

func TestSuggestionsBeyondLoadedDays(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 14)
	svc, _ := newTestService(t, existing("OLD", "TABLE_M1", later.Add(20*time.Hour), 120, 4))

	tables, err := svc.SuggestTables(ctx, timeline.SuggestionQuery{PartySize: 4, StartTime: later.Add(20 * time.Hour), DurationMinutes: 90})
	require.NoError(t, err)
	for _, s := range tables {
		if s.Table.ID == "TABLE_M1" {
			assert.False(t, s.IsAvailable)
		}
	}

	check, err := svc.CheckConflict(ctx, "TABLE_M1", later.Add(21*time.Hour), later.Add(23*time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD"}, check.ConflictingReservationIDs)
}

func TestBatchPreviewAndImport(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	requests := []model.BatchRequest{
		{CustomerName: "Standard", CustomerPhone: "1155556666", PartySize: 4, Date: "2025-10-15", StartTime: "20:00", DurationMinutes: 90, Priority: model.PriorityStandard},
		{CustomerName: "Vip", CustomerPhone: "1155557777", PartySize: 4, Date: "2025-10-15", StartTime: "20:00", DurationMinutes: 90, Priority: model.PriorityVIP},
		{CustomerName: "Nobody", CustomerPhone: "1155558888", PartySize: 12, Date: "2025-10-15", StartTime: "20:00", DurationMinutes: 90},
	}

	preview, err := svc.PreviewBatch(ctx, requests)
	require.NoError(t, err)
	assert.Equal(t, 2, preview.SuccessCount)
	assert.Equal(t, 1, preview.FailureCount)
	assert.Equal(t, "Vip", preview.Assignments[0].Request.CustomerName)
	assert.Equal(t, "TABLE_M1", preview.Assignments[0].AssignedTable.ID)
	assert.Zero(t, svc.Snapshot().Len())

	res, err := svc.ImportBatch(ctx, requests)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, 2, svc.Snapshot().Len())
	assert.Equal(t, 2, svc.Dirty())

	require.NoError(t, svc.Flush(ctx))
	assert.Len(t, store.saved, 2)
}

func TestImportBeyondLoadedDaysAvoidsStoredReservations(t *testing.T) {
	ctx := context.Background()
	later := day.AddDate(0, 0, 10)
	svc, _ := newTestService(t,
		existing("OLD_M1", "TABLE_M1", later.Add(19*time.Hour), 120, 4),
		existing("OLD_M2", "TABLE_M2", later.Add(19*time.Hour), 120, 4),
	)

	res, err := svc.ImportBatch(ctx, []model.BatchRequest{
		{CustomerName: "Vip", CustomerPhone: "1155557777", PartySize: 4, Date: "2025-10-25", StartTime: "20:00", DurationMinutes: 90, Priority: model.PriorityVIP},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Assignments.Assignments, 1)
	assert.False(t, res.Assignments.Assignments[0].Assigned())
	assert.Zero(t, svc.Dirty())
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t,
		existing("A", "TABLE_M1", at(20, 0), 90, 4),
		existing("B", "TABLE_M2", at(20, 30), 90, 5),
	)

	slots, err := svc.CapacityReport(ctx, day)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, timeline.ServiceStartHour, slots[0].Hour)
	assert.Equal(t, 12, slots[0].TotalCapacity)

	metrics, err := svc.SectorReport(ctx, day)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "SECTOR_MAIN", metrics[0].SectorID)
	assert.Equal(t, 9, metrics[0].OccupiedSeats)
	assert.InDelta(t, 225.0, metrics[0].RevenueEstimate, 0.001)
	assert.Zero(t, metrics[1].TotalReservations)

	listed, err := svc.List(ctx, day, timeline.FilterOptions{SectorIDs: []string{"SECTOR_MAIN"}})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
