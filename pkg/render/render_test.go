package render

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/rundown/pkg/rundown"
)

func ptr[T any](v T) *T { return &v }

// testProject returns a lane of two blocks (each with two groups, one of
// them empty), plus one loose beat. Ids are b1..b4 for beats in creation
// order and g1..g4 for groups.
func testProject(t *testing.T) rundown.Project {
	t.Helper()
	beat, group := 0, 0
	next := "beat"
	e := rundown.NewEngine(rundown.WithIDs(func() string {
		switch next {
		case "beat":
			beat++
			return fmt.Sprintf("b%d", beat)
		case "group":
			group++
			return fmt.Sprintf("g%d", group)
		}
		return next
	}))

	next = "project"
	p := e.NewProject("Evening News")
	next = "beat"
	titles := []string{"Top story", `Say "hi"`, "Forecast", "Kicker"}
	for _, title := range titles {
		var id string
		p, id = e.CreateBeat(p, "news")
		p = e.UpdateBeat(p, id, rundown.BeatPatch{Title: ptr(title)})
	}
	p = e.UpdateBeat(p, "b1", rundown.BeatPatch{
		Duration:    ptr(45.0),
		Scene:       ptr("int. studio"),
		Cues:        &[]string{"VT 1"},
		Description: ptr("Good evening.\nBack to you."),
	})
	p = e.UpdateBeat(p, "b3", rundown.BeatPatch{TypeID: ptr("weather")})

	next = "group"
	for _, members := range [][]string{{"b1", "b2"}, {}, {"b3"}, {}} {
		g := e.CreateBeatGroup(p, "", members)
		p = e.AddBeatGroup(p, g)
		p = e.UpdateBeatGroup(p, g.ID, rundown.GroupPatch{Name: ptr("Group " + g.ID)})
	}

	next = "blockA"
	p, a := e.CreateBlock(p, []string{"g1", "g2"}, "Segment A")
	next = "blockB"
	p, b := e.CreateBlock(p, []string{"g3", "g4"}, "Segment B")
	next = "lane"
	p, _ = e.CreateLane(p, []string{a, b}, "Main Show")
	return e.AutoLayout(p)
}

func TestToDOTHierarchy(t *testing.T) {
	dot := ToDOT(testProject(t), Options{})

	for _, want := range []string{
		`subgraph "cluster_lane_lane" {`,
		`subgraph "cluster_block_blockA" {`,
		`subgraph "cluster_block_blockB" {`,
		`subgraph "cluster_group_g1" {`,
		`label="Segment A";`,
		`"b1" -> "b2" [style=invis];`,
		`"empty_g2" [label="", style=invis`,
		`"b2" [label="Say \"hi\""`,
		`"b4" [label="Kicker"`,
		`color="#0284c7"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Index(dot, `"b4" [`) < strings.LastIndex(dot, `subgraph "cluster_lane_lane"`) {
		t.Error("loose beat emitted before the lanes")
	}
	if strings.Count(dot, "{") != strings.Count(dot, "}") {
		t.Error("unbalanced braces")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testProject(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="Top story\nNews · 45s\nint. studio"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"b4" [label="Kicker\nNews"`) {
		t.Errorf("type-only label missing:\n%s", dot)
	}
}

func TestToDOTCanvas(t *testing.T) {
	e := rundown.NewEngine(rundown.WithIDs(func() string { return "x" }))
	p := e.NewProject("Canvas")
	p, _ = e.CreateBeat(p, "news") // lands at {100 100}

	dot := ToDOT(p, Options{Canvas: true})
	for _, want := range []string{
		"layout=neato;",
		`"x" [label="(untitled)", pos="312,-140!"`,
		`color="#dc2626"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{59.6, "1:00"},
		{90, "1:30"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites root",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(testProject(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Segment A") {
		t.Errorf("unexpected SVG:\n%.300s", svg)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testProject(t))
	for _, want := range []string{
		"# Evening News\n",
		"## Main Show\n",
		"### Segment A\n",
		"#### Group g1\n",
		"**Top story** · News · 45s\n",
		"_INT. STUDIO_\n",
		"- Cue: VT 1\n",
		"Good evening.  \nBack to you.\n",
		"## Unplaced beats\n",
		"**Kicker** · News\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Index(md, "Top story") > strings.Index(md, "Forecast") {
		t.Error("beats out of container order")
	}
}
