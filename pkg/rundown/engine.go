package rundown

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Engine applies edits to projects. It carries the collaborators that edits
// need (a clock, an id source, a logger) so that none of them are global.
//
// An Engine holds no document state. A single Engine may serve any number of
// projects; it is safe for concurrent use as long as the injected clock and
// id source are.
type Engine struct {
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDs sets the id generator used for new entities.
func WithIDs(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithLogger sets the logger that receives guard warnings and cascade
// diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine. Defaults: time.Now, random UUIDs and a
// discarding logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger { return e.logger }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.now() }

// NewID returns a fresh entity id from the engine's id source.
func (e *Engine) NewID() string { return e.newID() }

// NewProject returns an empty project with the default beat type catalog.
func (e *Engine) NewProject(name string) Project {
	now := e.now()
	return Project{
		ID:         e.newID(),
		Name:       name,
		Beats:      []Beat{},
		BeatTypes:  DefaultBeatTypes(),
		BeatGroups: []BeatGroup{},
		Blocks:     []Block{},
		Lanes:      []Lane{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
