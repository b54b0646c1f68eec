package timeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrConflict        = errors.New("reservation conflict")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidInput    = errors.New("invalid input")
)

// ConflictError carries the detector result behind an ErrConflict rejection.
type ConflictError struct {
	Check model.ConflictCheck
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservation conflict: overlaps %s", strings.Join(e.Check.ConflictingReservationIDs, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConflictOf extracts the conflict details from err, if any.
func ConflictOf(err error) (model.ConflictCheck, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Check, true
	}
	return model.ConflictCheck{}, false
}
