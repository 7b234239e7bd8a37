package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/rundown/pkg/rundown"
)

// Markdown renders p as a readable script: the hierarchy as headings, each
// beat as a title line followed by its scene, character, cues and script
// text. Beats appear in container order; free-standing entities follow the
// lanes.
func Markdown(p rundown.Project) string {
	m := &mdWriter{p: p}
	m.heading(1, p.Name)
	if p.Description != "" {
		m.para(p.Description)
	}

	for _, l := range p.Lanes {
		m.heading(2, l.Name)
		for _, id := range l.BlockIDs {
			if b, ok := p.Block(id); ok {
				m.block(3, b)
			}
		}
	}

	var blocks []rundown.Block
	for _, b := range p.Blocks {
		if _, ok := rundown.LaneForBlock(p, b.ID); !ok {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) > 0 && len(p.Lanes) > 0 {
		m.heading(2, "Other blocks")
	}
	for _, b := range blocks {
		m.block(3, b)
	}

	var groups []rundown.BeatGroup
	for _, g := range p.BeatGroups {
		if _, ok := rundown.BlockForGroup(p, g.ID); !ok {
			groups = append(groups, g)
		}
	}
	slices.SortStableFunc(groups, func(a, b rundown.BeatGroup) int { return cmp.Compare(a.Order, b.Order) })
	if len(groups) > 0 {
		m.heading(2, "Groups")
	}
	for _, g := range groups {
		m.group(3, g)
	}

	var loose []rundown.Beat
	for _, b := range rundown.SortedBeats(p) {
		if !rundown.BelongsToBeatGroup(p, b.ID) {
			loose = append(loose, b)
		}
	}
	if len(loose) > 0 {
		m.heading(2, "Unplaced beats")
	}
	for _, b := range loose {
		m.beat(b)
	}
	return m.sb.String()
}

type mdWriter struct {
	sb strings.Builder
	p  rundown.Project
}

func (m *mdWriter) heading(level int, text string) {
	if text == "" {
		text = "Untitled"
	}
	fmt.Fprintf(&m.sb, "%s %s\n\n", strings.Repeat("#", min(level, 6)), text)
}

func (m *mdWriter) para(text string) {
	m.sb.WriteString(strings.TrimRight(text, "\n"))
	m.sb.WriteString("\n\n")
}

func (m *mdWriter) block(level int, b rundown.Block) {
	m.heading(level, b.Name)
	for _, id := range b.GroupIDs {
		if g, ok := m.p.BeatGroup(id); ok {
			m.group(level+1, g)
		}
	}
}

func (m *mdWriter) group(level int, g rundown.BeatGroup) {
	m.heading(level, g.Name)
	if g.Description != "" {
		m.para("_" + g.Description + "_")
	}
	for _, id := range g.BeatIDs {
		if b, ok := m.p.Beat(id); ok {
			m.beat(b)
		}
	}
}

func (m *mdWriter) beat(b rundown.Beat) {
	title := b.Title
	if title == "" {
		title = "(untitled)"
	}
	parts := []string{"**" + title + "**"}
	if t, ok := m.p.BeatType(b.TypeID); ok {
		parts = append(parts, t.Name)
	}
	if b.Duration > 0 {
		parts = append(parts, formatSeconds(b.Duration))
	}
	if b.StartTime != "" {
		parts = append(parts, "@ "+b.StartTime)
	}
	m.para(strings.Join(parts, " · "))

	if b.Scene != "" {
		m.para("_" + strings.ToUpper(b.Scene) + "_")
	}
	if b.Character != "" {
		m.para("**" + strings.ToUpper(b.Character) + "**")
	}
	if len(b.Cues) > 0 || len(b.Assets) > 0 {
		for _, c := range b.Cues {
			fmt.Fprintf(&m.sb, "- Cue: %s\n", c)
		}
		for _, a := range b.Assets {
			fmt.Fprintf(&m.sb, "- Asset: `%s`\n", a)
		}
		m.sb.WriteByte('\n')
	}
	if b.Description != "" {
		m.para(strings.ReplaceAll(b.Description, "\n", "  \n"))
	}
}
