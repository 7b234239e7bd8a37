package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/rundown/pkg/document"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/observability"
	"github.com/matzehuels/rundown/pkg/rundown"
	"github.com/matzehuels/rundown/pkg/store"
)

func newTestEngine() *rundown.Engine {
	n := 0
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	return rundown.NewEngine(
		rundown.WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		rundown.WithClock(func() time.Time {
			tick++
			return t0.Add(time.Duration(tick) * time.Second)
		}),
	)
}

func mustDispatch(t *testing.T, e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string) {
	t.Helper()
	res, err := Dispatch(e, p, c)
	if err != nil {
		t.Fatalf("Dispatch(%s): %v", c.Op, err)
	}
	return res.Project, res.ID
}

// laneProject builds a lane of two blocks, each holding two single-beat
// groups, entirely through commands.
func laneProject(t *testing.T, e *rundown.Engine) (p rundown.Project, groups, blocks []string, lane string) {
	t.Helper()
	p = e.NewProject("Evening News")
	for i := range 4 {
		var beat, group string
		p, beat = mustDispatch(t, e, p, Command{Op: OpBeatCreate, TypeID: "news"})
		p, group = mustDispatch(t, e, p, Command{Op: OpGroupCreate, Name: fmt.Sprintf("G%d", i+1), IDs: []string{beat}})
		groups = append(groups, group)
	}
	for i := range 2 {
		var block string
		p, block = mustDispatch(t, e, p, Command{Op: OpBlockCreate, IDs: groups[2*i : 2*i+2], Name: fmt.Sprintf("Segment %d", i+1)})
		blocks = append(blocks, block)
	}
	p, lane = mustDispatch(t, e, p, Command{Op: OpLaneCreate, IDs: blocks, Name: "Main Show"})
	return p, groups, blocks, lane
}

func TestDispatchRejects(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("x")
	p, beat := mustDispatch(t, e, p, Command{Op: OpBeatCreate})
	p, group := mustDispatch(t, e, p, Command{Op: OpGroupCreate, IDs: []string{beat}})

	tests := []struct {
		name string
		cmd  Command
	}{
		{"unknown op", Command{Op: "beat.explode"}},
		{"empty op", Command{}},
		{"update without id", Command{Op: OpBeatUpdate}},
		{"membership without parent", Command{Op: OpBlockAddGroup, ID: group}},
		{"block from one group", Command{Op: OpBlockCreate, IDs: []string{group}}},
		{"lane from nothing", Command{Op: OpLaneCreate}},
		{"negative duration", Command{Op: OpBeatUpdate, ID: beat, Beat: &rundown.BeatPatch{Duration: ptr(-1.0)}}},
		{"control characters", Command{Op: OpGroupCreate, Name: "bad\x00name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Dispatch(e, p, tt.cmd)
			if !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if len(res.Project.Beats) != len(p.Beats) || len(res.Project.BeatGroups) != len(p.BeatGroups) {
				t.Error("rejected command changed the project")
			}
		})
	}
}

func TestDispatchUnknownIDIsNoop(t *testing.T) {
	e := newTestEngine()
	p, groups, blocks, lane := laneProject(t, e)

	tests := []struct {
		name string
		cmd  Command
	}{
		{"beat update", Command{Op: OpBeatUpdate, ID: "missing", Beat: &rundown.BeatPatch{Title: ptr("x")}}},
		{"beat delete", Command{Op: OpBeatDelete, ID: "missing"}},
		{"group update", Command{Op: OpGroupUpdate, ID: "missing", Group: &rundown.GroupPatch{Name: ptr("x")}}},
		{"group add beats", Command{Op: OpGroupAddBeats, ID: groups[0], IDs: []string{"missing"}}},
		{"group remove beat", Command{Op: OpGroupRemoveBeat, ParentID: "missing", ID: "missing"}},
		{"block add group", Command{Op: OpBlockAddGroup, ParentID: "missing", ID: groups[0]}},
		{"block remove group", Command{Op: OpBlockRemoveGroup, ParentID: "missing", ID: groups[0]}},
		{"block delete", Command{Op: OpBlockDelete, ID: "missing"}},
		{"lane update", Command{Op: OpLaneUpdate, ID: "missing", Lane: &rundown.LanePatch{Name: ptr("x")}}},
		{"lane add block", Command{Op: OpLaneAddBlock, ParentID: "missing", ID: blocks[0]}},
		{"lane add unknown block", Command{Op: OpLaneAddBlock, ParentID: lane, ID: "missing"}},
		{"lane remove block", Command{Op: OpLaneRemoveBlock, ID: "missing"}},
		{"lane delete", Command{Op: OpLaneDelete, ID: "missing"}},
		{"settle settled project", Command{Op: OpLayoutSettle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Dispatch(e, p, tt.cmd)
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if res.Changed {
				t.Error("Changed = true")
			}
			if !reflect.DeepEqual(res.Project, p) {
				t.Error("project differs from input")
			}
		})
	}
}

func TestDispatchSettleReportsChange(t *testing.T) {
	e := newTestEngine()
	p, groups, _, _ := laneProject(t, e)

	// Grow the first row behind the dispatcher's back.
	p, extra := e.CreateBeat(p, "news")
	p = e.AddBeatsToGroup(p, groups[0], []string{extra})

	res, err := Dispatch(e, p, Command{Op: OpLayoutSettle})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Changed {
		t.Error("Changed = false for a stale lane")
	}
	if v := rundown.CheckInvariants(res.Project); len(v) != 0 {
		t.Errorf("not settled: %v", v)
	}
}

func TestDispatchDoesNotModifyInput(t *testing.T) {
	e := newTestEngine()
	p, groups, blocks, _ := laneProject(t, e)
	before, _ := document.Encode(p)

	_, _ = mustDispatch(t, e, p, Command{Op: OpBeatCreate, ParentID: groups[0]})
	_, _ = mustDispatch(t, e, p, Command{Op: OpBlockRemoveGroup, ParentID: blocks[0], ID: groups[0]})
	_, _ = mustDispatch(t, e, p, Command{Op: OpLayoutAuto})

	after, _ := document.Encode(p)
	if !bytes.Equal(before, after) {
		t.Error("Dispatch modified its input project")
	}
}

func TestDispatchRestacksLane(t *testing.T) {
	e := newTestEngine()
	p, groups, blocks, _ := laneProject(t, e)
	second, _ := p.Block(blocks[1])

	// Growing a group in the first block makes the first row taller.
	p, beat := mustDispatch(t, e, p, Command{Op: OpBeatCreate, ParentID: groups[0], Beat: &rundown.BeatPatch{Title: ptr("Late")}})

	g, _ := p.BeatGroup(groups[0])
	if !slices.Contains(g.BeatIDs, beat) {
		t.Fatalf("beat %s not added to %s: %v", beat, groups[0], g.BeatIDs)
	}
	moved, _ := p.Block(blocks[1])
	if moved.Position.Y <= second.Position.Y {
		t.Errorf("second block stayed at y=%v, want below %v", moved.Position.Y, second.Position.Y)
	}
	if v := rundown.CheckInvariants(p); len(v) != 0 {
		t.Errorf("inconsistent after command: %v", v)
	}
}

func TestDispatchCascades(t *testing.T) {
	e := newTestEngine()
	p, groups, blocks, lane := laneProject(t, e)

	// Removing a group leaves the block with one, which dissolves it, which
	// leaves the lane with one block, which dissolves the lane.
	res, err := Dispatch(e, p, Command{Op: OpBlockRemoveGroup, ParentID: blocks[0], ID: groups[0]})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	p = res.Project
	if !res.Changed {
		t.Error("Changed = false")
	}
	if _, ok := p.Block(blocks[0]); ok {
		t.Error("block with one group survived")
	}
	if _, ok := p.Lane(lane); ok {
		t.Error("lane with one block survived")
	}
	if len(p.BeatGroups) != 4 {
		t.Errorf("groups = %d, want 4", len(p.BeatGroups))
	}
	if v := rundown.CheckInvariants(p); len(v) != 0 {
		t.Errorf("inconsistent: %v", v)
	}
}

func TestDispatchBeatDeletePurges(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("x")
	p, b1 := mustDispatch(t, e, p, Command{Op: OpBeatCreate})
	p, b2 := mustDispatch(t, e, p, Command{Op: OpBeatCreate})
	p, g := mustDispatch(t, e, p, Command{Op: OpGroupCreate, IDs: []string{b1, b2}})

	p, _ = mustDispatch(t, e, p, Command{Op: OpBeatDelete, ID: b1})
	group, _ := p.BeatGroup(g)
	if len(p.Beats) != 1 || !slices.Equal(group.BeatIDs, []string{b2}) {
		t.Errorf("beats %d, members %v", len(p.Beats), group.BeatIDs)
	}
	if v := rundown.CheckInvariants(p); len(v) != 0 {
		t.Errorf("inconsistent: %v", v)
	}
}

func TestCommandJSON(t *testing.T) {
	raw := `{"op": "beat.create", "typeId": "weather", "beat": {"title": "Forecast", "duration": 90}}`
	var c Command
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	e := newTestEngine()
	res, err := Dispatch(e, e.NewProject("x"), c)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	b, ok := res.Project.Beat(res.ID)
	if !ok || b.Title != "Forecast" || b.TypeID != "weather" || b.Duration != 90 {
		t.Errorf("beat = %+v", b)
	}
}

func TestOps(t *testing.T) {
	ops := Ops()
	if !slices.IsSorted(ops) {
		t.Error("Ops not sorted")
	}
	for _, op := range []Op{OpBeatCreate, OpGroupInsertBeat, OpBlockAddGroup, OpLaneRemoveBlock, OpLayoutAuto, OpProjectUpdate} {
		if err := ValidateOp(op); err != nil {
			t.Errorf("ValidateOp(%s): %v", op, err)
		}
	}
}

// =============================================================================
// Editor
// =============================================================================

func newTestEditor(t *testing.T, s store.Store) *Editor {
	t.Helper()
	ed, err := New(s, Options{Engine: newTestEngine()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ed
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(nil, Options{}); !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Errorf("nil store err = %v", err)
	}
	if _, err := New(store.NewMemoryStore(), Options{Key: "a b"}); !rerrors.Is(err, rerrors.ErrCodeInvalidKey) {
		t.Errorf("bad key err = %v", err)
	}
	ed, err := New(store.NewMemoryStore(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ed.Key() != document.DefaultKey || ed.Engine() == nil {
		t.Errorf("defaults not applied: key %q", ed.Key())
	}
}

func TestEditorApplyPersists(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ed := newTestEditor(t, s)

	res, err := ed.Apply(ctx, Command{Op: OpBeatCreate, TypeID: "news"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	stored, err := document.Load(ctx, s, document.DefaultKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := stored.Beat(res.ID); !ok {
		t.Errorf("created beat %s not stored", res.ID)
	}
}

func TestEditorApplyBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ed := newTestEditor(t, s)

	if _, err := ed.Apply(ctx, Command{Op: OpBeatCreate}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	_, err := ed.Apply(ctx,
		Command{Op: OpBeatCreate},
		Command{Op: OpBlockCreate, IDs: []string{"nope"}},
	)
	if !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
	p, err := ed.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Beats) != 1 {
		t.Errorf("beats = %d, want 1 (failed batch must not be saved)", len(p.Beats))
	}
}

func TestEditorLoadEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ed := newTestEditor(t, s)

	p, err := ed.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != DefaultProjectName || p.Beats == nil {
		t.Errorf("empty project = %+v", p)
	}
	if ok, _ := ed.Exists(ctx); ok {
		t.Error("Load stored the empty project")
	}
}

func TestEditorInit(t *testing.T) {
	ctx := context.Background()
	ed := newTestEditor(t, store.NewMemoryStore())

	if _, err := ed.Init(ctx, "Morning Show", false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := ed.Init(ctx, "Again", false); !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Errorf("second Init err = %v, want INVALID_INPUT", err)
	}
	p, err := ed.Init(ctx, "Again", true)
	if err != nil || p.Name != "Again" {
		t.Fatalf("forced Init = %+v, %v", p, err)
	}
	loaded, _ := ed.Load(ctx)
	if loaded.Name != "Again" {
		t.Errorf("stored name = %q", loaded.Name)
	}
}

func TestEditorReplaceSettles(t *testing.T) {
	ctx := context.Background()
	ed := newTestEditor(t, store.NewMemoryStore())
	e := newTestEngine()
	p, _, blocks, _ := laneProject(t, e)

	// Knock the second block out of its row.
	for i := range p.Blocks {
		if p.Blocks[i].ID == blocks[1] {
			p.Blocks[i].Position = rundown.Position{X: 999, Y: 999}
		}
	}
	got, err := ed.Replace(ctx, p)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if v := rundown.CheckInvariants(got); len(v) != 0 {
		t.Errorf("replaced project not settled: %v", v)
	}
}

func TestEditorApplyUnknownIDKeepsStoredDocument(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := newTestEngine()
	ed, err := New(s, Options{Engine: e})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, _, _, _ := laneProject(t, e)
	if _, err := ed.Replace(ctx, p); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	before, _, err := s.Get(ctx, document.DefaultKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	loaded, err := ed.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := ed.Apply(ctx, Command{Op: OpBeatUpdate, ID: "missing", Beat: &rundown.BeatPatch{Title: ptr("x")}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Changed {
		t.Error("Changed = true")
	}
	if !reflect.DeepEqual(res.Project, loaded) {
		t.Error("result differs from the stored project")
	}
	after, _, _ := s.Get(ctx, document.DefaultKey)
	if !bytes.Equal(before, after) {
		t.Errorf("stored document rewritten:\n%s\n%s", before, after)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingStore) Set(context.Context, string, []byte) error         { return errors.New("disk full") }
func (failingStore) Delete(context.Context, string) error              { return nil }
func (failingStore) Close() error                                      { return nil }

func TestEditorSaveFailureSurfaces(t *testing.T) {
	ed := newTestEditor(t, failingStore{})
	_, err := ed.Apply(context.Background(), Command{Op: OpBeatCreate})
	if !rerrors.Is(err, rerrors.ErrCodeStorage) {
		t.Errorf("err = %v, want STORAGE_ERROR", err)
	}
}

type recordingHooks struct {
	started, failed []string
}

func (h *recordingHooks) OnCommandStart(_ context.Context, op string) {
	h.started = append(h.started, op)
}

func (h *recordingHooks) OnCommandComplete(_ context.Context, op string, _ time.Duration, err error) {
	if err != nil {
		h.failed = append(h.failed, op)
	}
}

func TestEditorHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetEditorHooks(h)
	defer observability.Reset()

	ed := newTestEditor(t, store.NewMemoryStore())
	_, _ = ed.Apply(context.Background(), Command{Op: OpBeatCreate}, Command{Op: OpLaneCreate})

	if !slices.Equal(h.started, []string{"beat.create", "lane.create"}) {
		t.Errorf("started = %v", h.started)
	}
	if !slices.Equal(h.failed, []string{"lane.create"}) {
		t.Errorf("failed = %v", h.failed)
	}
}

func ptr[T any](v T) *T { return &v }
