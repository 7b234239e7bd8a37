package editor

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rundown/pkg/document"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/observability"
	"github.com/matzehuels/rundown/pkg/rundown"
	"github.com/matzehuels/rundown/pkg/store"
)

// DefaultProjectName names projects created for an empty store.
const DefaultProjectName = "Untitled"

// =============================================================================
// Options
// =============================================================================

// Options configures an Editor.
type Options struct {
	// Key is the storage key of the project. Defaults to document.DefaultKey.
	Key string

	// Engine performs the edits. Defaults to an engine logging to Logger.
	Engine *rundown.Engine

	// Logger receives command and save logs. Defaults to a discarding logger.
	Logger *log.Logger
}

// SetDefaults fills in unset fields.
func (o *Options) SetDefaults() {
	if o.Key == "" {
		o.Key = document.DefaultKey
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Engine == nil {
		o.Engine = rundown.NewEngine(rundown.WithLogger(o.Logger))
	}
}

// Validate checks the options after defaults are applied.
func (o *Options) Validate() error {
	return rerrors.ValidateKey(o.Key)
}

// =============================================================================
// Editor
// =============================================================================

// Editor applies commands to the project stored under one key.
//
// An Editor serializes its own operations. Two Editors on the same store and
// key do not coordinate; the last save wins.
type Editor struct {
	store  store.Store
	engine *rundown.Engine
	logger *log.Logger
	key    string

	mu sync.Mutex
}

// New creates an Editor over s.
func New(s store.Store, opts Options) (*Editor, error) {
	if s == nil {
		return nil, rerrors.New(rerrors.ErrCodeInvalidInput, "store is required")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Editor{
		store:  s,
		engine: opts.Engine,
		logger: opts.Logger,
		key:    opts.Key,
	}, nil
}

// Engine returns the engine commands run on.
func (ed *Editor) Engine() *rundown.Engine { return ed.engine }

// Key returns the storage key of the project.
func (ed *Editor) Key() string { return ed.key }

// Load returns the stored project, or a new empty project when nothing is
// stored yet. The empty project is not saved.
func (ed *Editor) Load(ctx context.Context) (rundown.Project, error) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.load(ctx)
}

func (ed *Editor) load(ctx context.Context) (rundown.Project, error) {
	p, err := document.Load(ctx, ed.store, ed.key)
	if rerrors.Is(err, rerrors.ErrCodeNotFound) {
		ed.logger.Debug("no stored project, starting empty", "key", ed.key)
		return ed.engine.NewProject(DefaultProjectName), nil
	}
	return p, err
}

// Exists reports whether a project is stored.
func (ed *Editor) Exists(ctx context.Context) (bool, error) {
	_, ok, err := ed.store.Get(ctx, ed.key)
	return ok, err
}

// Init stores a new empty project named name. An existing project is only
// replaced when force is set.
func (ed *Editor) Init(ctx context.Context, name string, force bool) (rundown.Project, error) {
	if err := rerrors.ValidateName(name); err != nil {
		return rundown.Project{}, err
	}
	if name == "" {
		name = DefaultProjectName
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()

	if !force {
		exists, err := ed.Exists(ctx)
		if err != nil {
			return rundown.Project{}, rerrors.Wrap(rerrors.ErrCodeStorage, err, "check %s", ed.key)
		}
		if exists {
			return rundown.Project{}, rerrors.New(rerrors.ErrCodeInvalidInput, "a project is already stored under %q", ed.key)
		}
	}
	p := ed.engine.NewProject(name)
	if err := ed.save(ctx, p); err != nil {
		return rundown.Project{}, err
	}
	return p, nil
}

// Replace stores p as the whole project, settling its layout first.
func (ed *Editor) Replace(ctx context.Context, p rundown.Project) (rundown.Project, error) {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	p = ed.engine.Settle(document.Normalize(p))
	if err := ed.save(ctx, p); err != nil {
		return rundown.Project{}, err
	}
	return p, nil
}

func (ed *Editor) save(ctx context.Context, p rundown.Project) error {
	start := time.Now()
	if err := document.Save(ctx, ed.store, ed.key, p); err != nil {
		ed.logger.Error("save failed", "key", ed.key, "err", err)
		return err
	}
	ed.logger.Info("saved project",
		"key", ed.key,
		"beats", len(p.Beats),
		"groups", len(p.BeatGroups),
		"blocks", len(p.Blocks),
		"lanes", len(p.Lanes),
		"duration", time.Since(start))
	return nil
}

// Apply loads the project, applies cmds in order and saves the result once.
//
// Either every command is applied or none is: on the first failing command
// nothing is saved and the error names the command's position. The returned
// Result carries the final project, the id created by the last command and
// whether any command changed the project.
func (ed *Editor) Apply(ctx context.Context, cmds ...Command) (Result, error) {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	loaded, err := ed.load(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Project: loaded}
	for i, cmd := range cmds {
		next, err := ed.dispatch(ctx, res.Project, cmd)
		if err != nil {
			if len(cmds) > 1 {
				err = fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
			}
			return Result{Project: loaded}, err
		}
		res.Project, res.ID = next.Project, next.ID
		res.Changed = res.Changed || next.Changed
	}

	if reflect.DeepEqual(loaded, res.Project) {
		return res, nil
	}
	if err := ed.save(ctx, res.Project); err != nil {
		return Result{Project: loaded}, err
	}
	return res, nil
}

func (ed *Editor) dispatch(ctx context.Context, p rundown.Project, cmd Command) (Result, error) {
	hooks := observability.Editor()
	hooks.OnCommandStart(ctx, string(cmd.Op))
	start := time.Now()

	res, err := Dispatch(ed.engine, p, cmd)

	hooks.OnCommandComplete(ctx, string(cmd.Op), time.Since(start), err)
	if err != nil {
		ed.logger.Debug("command rejected", "op", cmd.Op, "err", err)
		return res, err
	}
	ed.logger.Debug("applied command", "op", cmd.Op, "id", cmp.Or(res.ID, cmd.ID), "changed", res.Changed)
	return res, nil
}
