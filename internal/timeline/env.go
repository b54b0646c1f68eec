package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Env is what a Book needs from the outside world: the restaurant's
// timezone for calendar-date math, a clock for audit stamps and an id source.
type Env struct {
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

func DefaultEnv() Env {
	return Env{
		Location: time.UTC,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

func (e Env) withDefaults() Env {
	def := DefaultEnv()
	if e.Location == nil {
		e.Location = def.Location
	}
	if e.Now == nil {
		e.Now = def.Now
	}
	if e.NewID == nil {
		e.NewID = def.NewID
	}
	return e
}

type Option func(*Env)

func WithLocation(loc *time.Location) Option {
	return func(e *Env) { e.Location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(e *Env) { e.Now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Env) { e.NewID = newID }
}
