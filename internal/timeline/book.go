package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

// Book is an immutable reservation collection. Every mutation returns a new
// Book; a rejected mutation returns the receiver unchanged together with an
// error wrapping ErrNotFound, ErrConflict, ErrInvalidDuration or
// ErrInvalidInput.
//
// A Book is not synchronized. Callers sharing one across goroutines must
// serialize their decide-then-write cycles.
type Book struct {
	reservations []model.Reservation
	env          Env
}

func NewBook(reservations []model.Reservation, opts ...Option) Book {
	var env Env
	for _, opt := range opts {
		opt(&env)
	}
	return Book{
		reservations: cloneReservations(reservations),
		env:          env.withDefaults(),
	}
}

func (b Book) Env() Env {
	return b.env.withDefaults()
}

func (b Book) Location() *time.Location {
	return b.Env().Location
}

// Reservations returns a copy of the collection in insertion order.
func (b Book) Reservations() []model.Reservation {
	return cloneReservations(b.reservations)
}

func (b Book) Len() int {
	return len(b.reservations)
}

func (b Book) Get(id string) (model.Reservation, bool) {
	if i := b.index(id); i >= 0 {
		return b.reservations[i], true
	}
	return model.Reservation{}, false
}

// CheckConflict runs the detector against the reservations that can touch
// [start, end), see Around.
func (b Book) CheckConflict(tableID string, start, end time.Time, excludeID string) model.ConflictCheck {
	iv := Interval{Start: start, End: end}
	return CheckConflict(Around(b.reservations, iv, b.Location()), tableID, start, end, excludeID)
}

// Merge appends the reservations whose ids the book does not hold yet. Held
// reservations keep their current version.
func (b Book) Merge(reservations []model.Reservation) Book {
	seen := make(map[string]struct{}, len(b.reservations))
	for _, r := range b.reservations {
		seen[r.ID] = struct{}{}
	}
	next := b.Reservations()
	for _, r := range reservations {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		next = append(next, r)
	}
	if len(next) == len(b.reservations) {
		return b
	}
	return b.with(next)
}

// Create validates in, checks the target slot and appends a new reservation
// with a fresh id. Status defaults to CONFIRMED and priority to STANDARD.
func (b Book) Create(in model.CreateReservationInput) (Book, model.Reservation, error) {
	if err := validateCreate(in); err != nil {
		return b, model.Reservation{}, err
	}

	end := EndTime(in.StartTime, in.DurationMinutes)
	if check := b.CheckConflict(in.TableID, in.StartTime, end, ""); check.HasConflict {
		return b, model.Reservation{}, &ConflictError{Check: check}
	}

	env := b.Env()
	now := env.Now()
	r := model.Reservation{
		ID:              env.NewID(),
		TableID:         in.TableID,
		Customer:        in.Customer,
		PartySize:       in.PartySize,
		StartTime:       in.StartTime,
		EndTime:         end,
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		Priority:        in.Priority,
		Notes:           in.Notes,
		Source:          in.Source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if r.Status == "" {
		r.Status = model.ReservationStatusConfirmed
	}
	if r.Priority == "" {
		r.Priority = model.PriorityStandard
	}

	next := make([]model.Reservation, len(b.reservations), len(b.reservations)+1)
	copy(next, b.reservations)
	return b.with(append(next, r)), r, nil
}

// Update merges the present fields of patch without any conflict check. It is
// the building block for Move, Resize and Amend; schedule-changing callers
// must go through those instead.
func (b Book) Update(patch model.UpdateReservationInput) (Book, error) {
	i := b.index(patch.ID)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrNotFound, patch.ID)
	}
	next := b.Reservations()
	next[i] = applyPatch(next[i], patch, b.Env().Now())
	return b.with(next), nil
}

// Amend is the guarded form of Update: when the patch changes the table,
// start or duration, the resulting placement must have a valid duration and
// be free of conflicts.
func (b Book) Amend(patch model.UpdateReservationInput) (Book, error) {
	current, ok := b.Get(patch.ID)
	if !ok {
		return b, fmt.Errorf("%w: %s", ErrNotFound, patch.ID)
	}
	if err := validatePatch(patch); err != nil {
		return b, err
	}
	if patch.TableID != nil || patch.StartTime != nil || patch.DurationMinutes != nil {
		placed := applyPatch(current, patch, current.UpdatedAt)
		if !ValidDuration(placed.DurationMinutes) {
			return b, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, placed.DurationMinutes)
		}
		if check := b.CheckConflict(placed.TableID, placed.StartTime, placed.EndTime, placed.ID); check.HasConflict {
			return b, &ConflictError{Check: check}
		}
	}
	return b.Update(patch)
}

func (b Book) Delete(id string) (Book, error) {
	i := b.index(id)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]model.Reservation, 0, len(b.reservations)-1)
	next = append(next, b.reservations[:i]...)
	next = append(next, b.reservations[i+1:]...)
	return b.with(next), nil
}

// ChangeStatus sets any known status regardless of the current one.
func (b Book) ChangeStatus(id string, status model.ReservationStatus) (Book, error) {
	if !status.Valid() {
		return b, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return b.Update(model.UpdateReservationInput{ID: id, Status: &status})
}

// Move places the reservation on tableID starting at start, keeping its
// duration.
func (b Book) Move(id, tableID string, start time.Time) (Book, error) {
	r, ok := b.Get(id)
	if !ok {
		return b, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if strings.TrimSpace(tableID) == "" || start.IsZero() {
		return b, fmt.Errorf("%w: move needs a table and a start time", ErrInvalidInput)
	}

	end := EndTime(start, r.DurationMinutes)
	if check := b.CheckConflict(tableID, start, end, id); check.HasConflict {
		return b, &ConflictError{Check: check}
	}
	return b.Update(model.UpdateReservationInput{ID: id, TableID: &tableID, StartTime: &start})
}

// Resize changes the duration, keeping the start. Only the end moves.
func (b Book) Resize(id string, durationMinutes int) (Book, error) {
	r, ok := b.Get(id)
	if !ok {
		return b, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !ValidDuration(durationMinutes) {
		return b, fmt.Errorf("%w: %d minutes (must be %d-%d)", ErrInvalidDuration, durationMinutes, MinDurationMinutes, MaxDurationMinutes)
	}

	end := EndTime(r.StartTime, durationMinutes)
	if check := b.CheckConflict(r.TableID, r.StartTime, end, id); check.HasConflict {
		return b, &ConflictError{Check: check}
	}
	return b.Update(model.UpdateReservationInput{ID: id, DurationMinutes: &durationMinutes})
}

func (b Book) with(reservations []model.Reservation) Book {
	return Book{reservations: reservations, env: b.env}
}

func (b Book) index(id string) int {
	for i := range b.reservations {
		if b.reservations[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(r model.Reservation, patch model.UpdateReservationInput, now time.Time) model.Reservation {
	if patch.Customer != nil {
		c := patch.Customer
		if c.Name != nil {
			r.Customer.Name = *c.Name
		}
		if c.Phone != nil {
			r.Customer.Phone = *c.Phone
		}
		if c.Email != nil {
			r.Customer.Email = *c.Email
		}
		if c.Notes != nil {
			r.Customer.Notes = *c.Notes
		}
	}
	if patch.TableID != nil {
		r.TableID = *patch.TableID
	}
	if patch.PartySize != nil {
		r.PartySize = *patch.PartySize
	}
	if patch.StartTime != nil {
		r.StartTime = *patch.StartTime
	}
	if patch.DurationMinutes != nil {
		r.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if patch.Priority != nil {
		r.Priority = *patch.Priority
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	if patch.StartTime != nil || patch.DurationMinutes != nil {
		r.EndTime = EndTime(r.StartTime, r.DurationMinutes)
	}
	r.UpdatedAt = now
	return r
}

func validateCreate(in model.CreateReservationInput) error {
	switch {
	case strings.TrimSpace(in.TableID) == "":
		return fmt.Errorf("%w: table id is required", ErrInvalidInput)
	case in.StartTime.IsZero():
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	case in.PartySize < 1:
		return fmt.Errorf("%w: party size must be positive", ErrInvalidInput)
	case strings.TrimSpace(in.Customer.Name) == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	case in.Status != "" && !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	case in.Priority != "" && !in.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, in.Priority)
	}
	if !ValidDuration(in.DurationMinutes) {
		return fmt.Errorf("%w: %d minutes (must be %d-%d)", ErrInvalidDuration, in.DurationMinutes, MinDurationMinutes, MaxDurationMinutes)
	}
	return nil
}

func validatePatch(patch model.UpdateReservationInput) error {
	switch {
	case patch.TableID != nil && strings.TrimSpace(*patch.TableID) == "":
		return fmt.Errorf("%w: table id cannot be empty", ErrInvalidInput)
	case patch.StartTime != nil && patch.StartTime.IsZero():
		return fmt.Errorf("%w: start time cannot be empty", ErrInvalidInput)
	case patch.PartySize != nil && *patch.PartySize < 1:
		return fmt.Errorf("%w: party size must be positive", ErrInvalidInput)
	case patch.Status != nil && !patch.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	case patch.Priority != nil && !patch.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *patch.Priority)
	}
	return nil
}

func cloneReservations(in []model.Reservation) []model.Reservation {
	out := make([]model.Reservation, len(in))
	copy(out, in)
	return out
}
