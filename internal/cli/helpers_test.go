package cli

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/rundown"
)

// testProject builds a lane of two blocks, one free group and a loose beat.
func testProject(t *testing.T) rundown.Project {
	t.Helper()
	n := 0
	e := rundown.NewEngine(
		rundown.WithClock(func() time.Time { return time.Unix(0, 0) }),
		rundown.WithIDs(func() string { n++; return "id" + string(rune('a'+n-1)) }),
	)
	p := e.NewProject("Show")

	var beats []string
	for range 6 {
		var id string
		p, id = e.CreateBeat(p, "news")
		beats = append(beats, id)
	}
	var groups []string
	for i := range 5 {
		g := e.CreateBeatGroup(p, "", []string{beats[i]})
		p = e.AddBeatGroup(p, g)
		groups = append(groups, g.ID)
	}
	p, b1 := e.CreateBlock(p, groups[0:2], "One")
	p, b2 := e.CreateBlock(p, groups[2:4], "Two")
	p, _ = e.CreateLane(p, []string{b1, b2}, "Main")
	return e.Settle(p)
}

func TestOutline(t *testing.T) {
	rows := outline(testProject(t))

	var kinds []rowKind
	var sections []string
	for _, r := range rows {
		kinds = append(kinds, r.kind)
		if r.kind == rowSection {
			sections = append(sections, r.label)
		}
	}
	want := []rowKind{
		rowLane,
		rowBlock, rowGroup, rowBeat, rowGroup, rowBeat,
		rowBlock, rowGroup, rowBeat, rowGroup, rowBeat,
		rowSection, rowGroup, rowBeat,
		rowSection, rowBeat,
	}
	if !slices.Equal(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if !slices.Equal(sections, []string{"Groups", "Unplaced beats"}) {
		t.Errorf("sections = %v", sections)
	}
	if rows[0].label != "Main" || rows[1].depth != 1 || rows[3].depth != 3 {
		t.Errorf("unexpected nesting: %+v", rows[:4])
	}
	if rows[2].label != "Untitled group" {
		t.Errorf("unnamed group label = %q", rows[2].label)
	}
}

func TestOutlineEmpty(t *testing.T) {
	if rows := outline(rundown.Project{}); len(rows) != 0 {
		t.Errorf("outline(empty) = %v", rows)
	}
}

func TestBeatSummary(t *testing.T) {
	p := rundown.Project{BeatTypes: rundown.DefaultBeatTypes()}
	tests := []struct {
		beat rundown.Beat
		want string
	}{
		{rundown.Beat{}, "(untitled)"},
		{rundown.Beat{Title: "Intro", TypeID: "custom"}, "Intro · custom"},
		{rundown.Beat{Title: "Intro", Duration: 90}, "Intro · 1:30"},
	}
	for _, tt := range tests {
		if got := beatSummary(p, tt.beat); got != tt.want {
			t.Errorf("beatSummary(%+v) = %q, want %q", tt.beat, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{59.4, "59s"},
		{59.6, "1:00"},
		{90, "1:30"},
		{3605, "60:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{"svg,pdf,png,dot", []string{"svg", "pdf", "png", "dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "pdf", "png", "dot"}, false},
		{[]string{"gif"}, true},
		{[]string{"svg", "jpeg"}, true},
	}
	for _, tt := range tests {
		err := validateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		multi  bool
		want   string
	}{
		{"default", "", "svg", false, "rundown.svg"},
		{"stdout", "-", "dot", false, "-"},
		{"as given", "out/show.graph", "svg", false, "out/show.graph"},
		{"multi strips extension", "out/show.svg", "png", true, "out/show.png"},
		{"multi base", "out/show", "pdf", true, "out/show.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.format, tt.multi); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBeatFlagsPatch(t *testing.T) {
	var f beatFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--title", "Lead", "--duration", "0", "--cue", "VO", "--cue", "SOT"}); err != nil {
		t.Fatal(err)
	}

	patch, err := f.patch(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if patch.Title == nil || *patch.Title != "Lead" {
		t.Errorf("Title = %v", patch.Title)
	}
	if patch.Duration == nil || *patch.Duration != 0 {
		t.Errorf("explicit zero duration should be set, got %v", patch.Duration)
	}
	if patch.Cues == nil || !slices.Equal(*patch.Cues, []string{"VO", "SOT"}) {
		t.Errorf("Cues = %v", patch.Cues)
	}
	if patch.Description != nil || patch.TypeID != nil || patch.Order != nil || patch.Position != nil {
		t.Errorf("unset flags leaked into patch: %+v", patch)
	}
}

func TestPositionFlags(t *testing.T) {
	tests := []struct {
		args    []string
		want    *rundown.Position
		wantErr bool
	}{
		{nil, nil, false},
		{[]string{"--x", "10", "--y", "20"}, &rundown.Position{X: 10, Y: 20}, false},
		{[]string{"--y", "20"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var f positionFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			got, err := f.position(cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("position = %v, want %v", got, tt.want)
			}
		})
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m OutlineModel, keys ...string) OutlineModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(OutlineModel)
	}
	return m
}

func TestOutlineModelNavigation(t *testing.T) {
	m := NewOutlineModel(testProject(t))
	n := len(m.Rows)

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m = press(m, "down", "j", "j")
	if m.Cursor != 3 {
		t.Errorf("cursor = %d, want 3", m.Cursor)
	}
	m = press(m, "G")
	if m.Cursor != n-1 {
		t.Errorf("cursor after end = %d, want %d", m.Cursor, n-1)
	}
	m = press(m, "g")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("cursor after home = %d/%d", m.Cursor, m.Offset)
	}
	m = press(m, "enter")
	if m.Detail {
		t.Error("enter should hide the detail box")
	}
}

func TestOutlineModelScrolls(t *testing.T) {
	m := NewOutlineModel(testProject(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(OutlineModel)
	if m.Height != 5 {
		t.Fatalf("height = %d, want 5", m.Height)
	}

	m = press(m, "j", "j", "j", "j", "j", "j")
	if m.Cursor != 6 || m.Offset != 2 {
		t.Errorf("cursor/offset = %d/%d, want 6/2", m.Cursor, m.Offset)
	}
	if view := m.View(); !strings.Contains(view, "[7/") {
		t.Errorf("view missing counter:\n%s", view)
	}
}

func TestOutlineModelQuit(t *testing.T) {
	m := NewOutlineModel(rundown.Project{Name: "Empty"})
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
	if view := m.View(); !strings.Contains(view, "(empty project)") {
		t.Errorf("view = %q", view)
	}
}

func TestIDCompletions(t *testing.T) {
	p := testProject(t)

	beats := idCompletions(p, rowBeat, "", nil)
	if len(beats) != 6 {
		t.Fatalf("beat completions = %v", beats)
	}
	first, label, ok := strings.Cut(beats[0], "\t")
	if !ok || label == "" {
		t.Errorf("completion %q has no description", beats[0])
	}

	if got := idCompletions(p, rowBeat, "", []string{first}); len(got) != 5 {
		t.Errorf("given ids should be skipped: %v", got)
	}
	if got := idCompletions(p, rowBeat, first, nil); len(got) != 1 {
		t.Errorf("prefix %q matched %v", first, got)
	}
	if got := idCompletions(p, rowLane, "", nil); len(got) != 1 || !strings.HasSuffix(got[0], "\tMain") {
		t.Errorf("lane completions = %v", got)
	}
}
