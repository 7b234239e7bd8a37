package rundown

import (
	"fmt"
	"testing"
	"time"
)

// newTestEngine returns an engine with sequential ids and a clock that moves
// forward one second per reading.
func newTestEngine() *Engine {
	n := 0
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	return NewEngine(
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time {
			tick++
			return t0.Add(time.Duration(tick) * time.Second)
		}),
	)
}

func TestNextBeatPosition(t *testing.T) {
	tests := []struct {
		count int
		want  Position
	}{
		{0, Position{100, 100}},
		{1, Position{550, 100}},
		{3, Position{1450, 100}},
		{4, Position{100, 250}},
		{7, Position{1450, 250}},
		{9, Position{550, 400}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			if got := NextBeatPosition(tt.count); got != tt.want {
				t.Errorf("NextBeatPosition(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}

	for n := 0; n < 64; n++ {
		want := Position{X: 100 + 450*float64(n%4), Y: 100 + 150*float64(n/4)}
		if got := NextBeatPosition(n); got != want {
			t.Fatalf("NextBeatPosition(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestNextGroupPosition(t *testing.T) {
	tests := []struct {
		count int
		want  Position
	}{
		{0, Position{100, 50}},
		{1, Position{600, 50}},
		{2, Position{1100, 50}},
		{3, Position{100, 250}},
		{5, Position{1100, 250}},
	}
	for _, tt := range tests {
		if got := NextGroupPosition(tt.count); got != tt.want {
			t.Errorf("NextGroupPosition(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestBeatYInGroup(t *testing.T) {
	for i, want := range []float64{160, 250, 340} {
		if got := BeatYInGroup(100, i); got != want {
			t.Errorf("BeatYInGroup(100, %d) = %v, want %v", i, got, want)
		}
	}
}

func TestBlockWidth(t *testing.T) {
	tests := map[int]float64{0: 424, 1: 424, 2: 858, 3: 1292}
	for n, want := range tests {
		if got := BlockWidth(n); got != want {
			t.Errorf("BlockWidth(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestBlockHeight(t *testing.T) {
	p := Project{
		Beats: []Beat{
			{ID: "b1", Position: Position{100, 110}},
			{ID: "b2", Position: Position{100, 200}},
		},
		BeatGroups: []BeatGroup{
			{ID: "g1", BeatIDs: []string{"b1", "b2"}, Position: Position{100, 50}},
			{ID: "g2", Position: Position{534, 50}},
		},
	}

	tests := []struct {
		name  string
		block Block
		want  float64
	}{
		{"empty", Block{Position: Position{100, 0}}, 50},
		{"unresolved groups", Block{GroupIDs: []string{"x", "y"}}, 50},
		{"headers only", Block{GroupIDs: []string{"g2"}, Position: Position{100, 0}}, 115},
		{"tallest beat wins", Block{GroupIDs: []string{"g1", "g2"}, Position: Position{100, 0}}, 295},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlockHeight(p, tt.block); got != tt.want {
				t.Errorf("BlockHeight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOrder(t *testing.T) {
	if got := NextOrder([]Beat{}); got != 1 {
		t.Errorf("NextOrder(empty) = %d, want 1", got)
	}
	beats := []Beat{{Order: 3}, {Order: 7}, {Order: 7}, {Order: 2}}
	if got := NextOrder(beats); got != 8 {
		t.Errorf("NextOrder = %d, want 8", got)
	}
	if got := NextOrder([]BeatGroup{{Order: -4}}); got != 1 {
		t.Errorf("NextOrder(negative) = %d, want 1", got)
	}
}

func TestBounds(t *testing.T) {
	e := newTestEngine()
	p := e.NewProject("bounds")
	p, b1 := e.CreateBeat(p, "news")
	g := e.CreateBeatGroup(p, "G", []string{b1})
	p = e.AddBeatGroup(p, g)

	got := GroupBounds(p, mustGroup(t, p, g.ID))
	want := Rect{Left: 100, Top: 50, Right: 524, Bottom: 190}
	if got != want {
		t.Errorf("GroupBounds = %+v, want %+v", got, want)
	}
	if got.Width() != GroupWidth || got.Height() != 140 {
		t.Errorf("size = %vx%v", got.Width(), got.Height())
	}
	if got.CenterX() != 312 || got.CenterY() != 120 {
		t.Errorf("center = (%v, %v)", got.CenterX(), got.CenterY())
	}
}

func mustGroup(t *testing.T, p Project, id string) BeatGroup {
	t.Helper()
	g, ok := p.BeatGroup(id)
	if !ok {
		t.Fatalf("group %s missing", id)
	}
	return g
}

func mustBeat(t *testing.T, p Project, id string) Beat {
	t.Helper()
	b, ok := p.Beat(id)
	if !ok {
		t.Fatalf("beat %s missing", id)
	}
	return b
}

func mustBlock(t *testing.T, p Project, id string) Block {
	t.Helper()
	b, ok := p.Block(id)
	if !ok {
		t.Fatalf("block %s missing", id)
	}
	return b
}

func mustLane(t *testing.T, p Project, id string) Lane {
	t.Helper()
	l, ok := p.Lane(id)
	if !ok {
		t.Fatalf("lane %s missing", id)
	}
	return l
}

func assertConsistent(t *testing.T, p Project) {
	t.Helper()
	for _, v := range CheckInvariants(p) {
		t.Errorf("violation: %s", v)
	}
}
