package rundown

import (
	"reflect"
	"testing"
)

// addBlocks creates n blocks of two groups each. The first group of every
// block holds beatsPerBlock beats.
func addBlocks(t *testing.T, e *Engine, p Project, n, beatsPerBlock int) (Project, []string) {
	t.Helper()
	var ids []string
	for i := 0; i < n; i++ {
		var g1, g2, bid string
		p, g1, _ = beatsAndGroup(e, p, beatsPerBlock)
		p, g2, _ = beatsAndGroup(e, p, 0)
		p, bid = e.CreateBlock(p, []string{g1, g2}, "")
		if bid == "" {
			t.Fatalf("block %d not created", i)
		}
		ids = append(ids, bid)
	}
	return p, ids
}

func TestCreateLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 2, 1)
	first := mustBlock(t, p, bs[0])

	p, lid := e.CreateLane(p, bs, "")
	if lid == "" {
		t.Fatal("lane not created")
	}
	l := mustLane(t, p, lid)
	if l.Name != "Lane 1" {
		t.Errorf("name = %q", l.Name)
	}
	if l.Position != first.Position {
		t.Errorf("lane at %v, want first block's %v", l.Position, first.Position)
	}

	b1 := mustBlock(t, p, bs[0])
	if want := (Position{l.Position.X, l.Position.Y + 60}); b1.Position != want {
		t.Errorf("first block at %v, want %v", b1.Position, want)
	}
	b2 := mustBlock(t, p, bs[1])
	wantY := b1.Position.Y + BlockHeight(p, b1) + Gap
	if b2.Position != (Position{l.Position.X, wantY}) {
		t.Errorf("second block at %v, want y %v", b2.Position, wantY)
	}

	// Children follow their block rigidly.
	g := mustGroup(t, p, b2.GroupIDs[0])
	if g.Position != (Position{b2.Position.X, b2.Position.Y + 50}) {
		t.Errorf("group at %v", g.Position)
	}
	beat := mustBeat(t, p, g.BeatIDs[0])
	if beat.Position != (Position{g.Position.X, g.Position.Y + 60}) {
		t.Errorf("beat at %v", beat.Position)
	}
	assertConsistent(t, p)
}

func TestCreateLaneGuard(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 1, 0)

	for _, ids := range [][]string{nil, bs, {bs[0], bs[0]}, {bs[0], "ghost"}} {
		q, id := e.CreateLane(p, ids, "")
		if id != "" || len(q.Lanes) != 0 {
			t.Errorf("lane created from %v", ids)
		}
	}
}

func TestRepositionBlocksInLaneHeights(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 3, 0)
	p, lid := e.CreateLane(p, bs, "Rundown")

	pos := Position{0, 0}
	p = e.UpdateLane(p, lid, LanePatch{Position: &pos})

	// Empty groups: each block is header + group header + padding = 115.
	for i, want := range []float64{60, 185, 310} {
		if got := mustBlock(t, p, bs[i]).Position; got != (Position{0, want}) {
			t.Errorf("block %d at %v, want y %v", i, got, want)
		}
	}
	if h := LaneHeight(p, mustLane(t, p, lid)); h != 60+3*125 {
		t.Errorf("LaneHeight = %v", h)
	}
	assertConsistent(t, p)
}

func TestAddBlockToLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 3, 2)
	p, lid := e.CreateLane(p, bs[:2], "")

	tests := []struct {
		name          string
		block, target string
		want          []string
	}{
		{"append", bs[2], "", []string{bs[0], bs[1], bs[2]}},
		{"before first", bs[2], bs[0], []string{bs[2], bs[0], bs[1]}},
		{"reorder", bs[0], "ghost", []string{bs[0], bs[1]}},
		{"swap", bs[1], bs[0], []string{bs[1], bs[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := e.AddBlockToLane(p, lid, tt.block, tt.target)
			if got := mustLane(t, q, lid).BlockIDs; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BlockIDs = %v, want %v", got, tt.want)
			}
			if !IsFirstBlockInLane(q, tt.want[0]) || IsFirstBlockInLane(q, tt.want[1]) {
				t.Errorf("IsFirstBlockInLane wrong")
			}
			assertConsistent(t, q)
		})
	}
}

func TestBlockMovesBetweenLanes(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 5, 1)
	p, l1 := e.CreateLane(p, bs[:2], "")
	p, l2 := e.CreateLane(p, bs[2:], "")

	p = e.AddBlockToLane(p, l2, bs[1], bs[3])
	if _, ok := p.Lane(l1); ok {
		t.Errorf("source lane left with one block")
	}
	if got := mustLane(t, p, l2).BlockIDs; !reflect.DeepEqual(got, []string{bs[2], bs[1], bs[3], bs[4]}) {
		t.Errorf("BlockIDs = %v", got)
	}
	if !IsFirstBlockInLane(p, bs[0]) {
		t.Errorf("block outside any lane should count as first")
	}
	assertConsistent(t, p)
}

func TestRemoveBlockFromLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 3, 1)
	p, lid := e.CreateLane(p, bs, "")
	removed := mustBlock(t, p, bs[0]).Position

	p = e.RemoveBlockFromLane(p, bs[0])
	if got := mustLane(t, p, lid).BlockIDs; !reflect.DeepEqual(got, bs[1:]) {
		t.Errorf("BlockIDs = %v", got)
	}
	if got := mustBlock(t, p, bs[0]).Position; got != removed {
		t.Errorf("removed block moved to %v", got)
	}
	if got := mustBlock(t, p, bs[1]).Position.Y; got != mustLane(t, p, lid).Position.Y+60 {
		t.Errorf("remaining block did not close ranks: y %v", got)
	}
	assertConsistent(t, p)

	p = e.RemoveBlockFromLane(p, bs[1])
	if _, ok := p.Lane(lid); ok {
		t.Errorf("lane should be deleted below two blocks")
	}
	if len(p.Blocks) != 3 {
		t.Errorf("blocks deleted with their lane")
	}
}

func TestDeleteBlockDeletesLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 2, 0)
	p, lid := e.CreateLane(p, bs, "")

	p = e.DeleteBlock(p, bs[0])
	if _, ok := p.Lane(lid); ok {
		t.Errorf("lane survived with one block")
	}
	assertConsistent(t, p)
}

func TestDeleteGroupCascadesToLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 2, 0)
	p, lid := e.CreateLane(p, bs, "")

	g := mustBlock(t, p, bs[0]).GroupIDs[0]
	p = e.DeleteBeatGroup(p, g)
	if _, ok := p.Block(bs[0]); ok {
		t.Errorf("block survived with one group")
	}
	if _, ok := p.Lane(lid); ok {
		t.Errorf("lane survived with one block")
	}
	assertConsistent(t, p)
}

func TestSettleRestacksLane(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 2, 1)
	p, _ = e.CreateLane(p, bs, "")

	g := mustBlock(t, p, bs[0]).GroupIDs[0]
	var extra string
	p, extra = e.CreateBeat(p, "news")
	p = e.AddBeatsToGroup(p, g, []string{extra})

	if len(CheckInvariants(p)) == 0 {
		t.Fatal("expected the second row to be stale before settling")
	}
	p = e.Settle(p)
	assertConsistent(t, p)

	settled := e.Settle(p)
	if !reflect.DeepEqual(positionsByID(settled.Beats), positionsByID(p.Beats)) {
		t.Errorf("Settle is not idempotent")
	}
}

func TestAutoLayout(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("show")
	p, bs := addBlocks(t, e, p, 3, 2)
	p, lid := e.CreateLane(p, bs[:2], "")
	p, _, _ = beatsAndGroup(e, p, 1)
	p, loose1 := e.CreateBeat(p, "news")
	p, loose2 := e.CreateBeat(p, "news")

	// Scramble every position.
	scrambled := p.clone()
	for i := range scrambled.Beats {
		scrambled.Beats[i].Position = Position{-1, -1}
	}
	for i := range scrambled.BeatGroups {
		scrambled.BeatGroups[i].Position = Position{-1, -1}
	}
	for i := range scrambled.Blocks {
		scrambled.Blocks[i].Position = Position{-1, -1}
	}
	for i := range scrambled.Lanes {
		scrambled.Lanes[i].Position = Position{-1, -1}
	}

	q := e.AutoLayout(scrambled)
	assertConsistent(t, q)

	l := mustLane(t, q, lid)
	if l.Position != (Position{100, 100}) {
		t.Errorf("lane at %v", l.Position)
	}
	laneBottom := LaneBounds(q, l).Bottom
	free := mustBlock(t, q, bs[2])
	if free.Position != (Position{100, laneBottom + LayoutMargin}) {
		t.Errorf("free block at %v, want y %v", free.Position, laneBottom+LayoutMargin)
	}

	a, b := mustBeat(t, q, loose1).Position, mustBeat(t, q, loose2).Position
	if a.X != 100 || b.X != 550 || a.Y != b.Y {
		t.Errorf("loose beats at %v and %v", a, b)
	}
	if a.Y <= free.Position.Y+BlockHeight(q, free) {
		t.Errorf("loose beats overlap the layout above")
	}

	if got := e.AutoLayout(q); !reflect.DeepEqual(positionsByID(got.Beats), positionsByID(q.Beats)) {
		t.Errorf("AutoLayout is not idempotent")
	}
}
