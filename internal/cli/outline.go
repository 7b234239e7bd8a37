package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/rundown/pkg/rundown"
)

// rowKind identifies what an outline row shows.
type rowKind int

const (
	rowSection rowKind = iota
	rowLane
	rowBlock
	rowGroup
	rowBeat
)

// outlineRow is one line of the containment tree shared by `show` and
// `browse`.
type outlineRow struct {
	kind  rowKind
	depth int
	id    string
	label string
}

// outline flattens p into rows: lanes with their blocks, then free blocks,
// free groups and loose beats under section rows.
func outline(p rundown.Project) []outlineRow {
	var rows []outlineRow
	add := func(kind rowKind, depth int, id, label string) {
		rows = append(rows, outlineRow{kind: kind, depth: depth, id: id, label: label})
	}

	group := func(depth int, g rundown.BeatGroup) {
		add(rowGroup, depth, g.ID, nameOr(g.Name, "Untitled group"))
		for _, id := range g.BeatIDs {
			if b, ok := p.Beat(id); ok {
				add(rowBeat, depth+1, b.ID, beatSummary(p, b))
			}
		}
	}
	block := func(depth int, b rundown.Block) {
		add(rowBlock, depth, b.ID, nameOr(b.Name, "Untitled block"))
		for _, id := range b.GroupIDs {
			if g, ok := p.BeatGroup(id); ok {
				group(depth+1, g)
			}
		}
	}

	for _, l := range p.Lanes {
		add(rowLane, 0, l.ID, nameOr(l.Name, "Untitled lane"))
		for _, id := range l.BlockIDs {
			if b, ok := p.Block(id); ok {
				block(1, b)
			}
		}
	}

	var freeBlocks []rundown.Block
	for _, b := range p.Blocks {
		if _, ok := rundown.LaneForBlock(p, b.ID); !ok {
			freeBlocks = append(freeBlocks, b)
		}
	}
	if len(freeBlocks) > 0 {
		add(rowSection, 0, "", "Blocks")
		for _, b := range freeBlocks {
			block(1, b)
		}
	}

	var freeGroups []rundown.BeatGroup
	for _, g := range p.BeatGroups {
		if _, ok := rundown.BlockForGroup(p, g.ID); !ok {
			freeGroups = append(freeGroups, g)
		}
	}
	slices.SortStableFunc(freeGroups, func(a, b rundown.BeatGroup) int { return cmp.Compare(a.Order, b.Order) })
	if len(freeGroups) > 0 {
		add(rowSection, 0, "", "Groups")
		for _, g := range freeGroups {
			group(1, g)
		}
	}

	var loose []rundown.Beat
	for _, b := range rundown.SortedBeats(p) {
		if !rundown.BelongsToBeatGroup(p, b.ID) {
			loose = append(loose, b)
		}
	}
	if len(loose) > 0 {
		add(rowSection, 0, "", "Unplaced beats")
		for _, b := range loose {
			add(rowBeat, 1, b.ID, beatSummary(p, b))
		}
	}
	return rows
}

// beatSummary renders "Title · Type · 1:30".
func beatSummary(p rundown.Project, b rundown.Beat) string {
	parts := []string{nameOr(b.Title, "(untitled)")}
	if t, ok := p.BeatType(b.TypeID); ok {
		parts = append(parts, t.Name)
	} else if b.TypeID != "" {
		parts = append(parts, b.TypeID)
	}
	if b.Duration > 0 {
		parts = append(parts, formatDuration(b.Duration))
	}
	return strings.Join(parts, " · ")
}

// formatDuration renders seconds as "45s" or "m:ss".
func formatDuration(seconds float64) string {
	s := int(seconds + 0.5)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// totalDuration sums the duration of every beat.
func totalDuration(p rundown.Project) float64 {
	var total float64
	for _, b := range p.Beats {
		total += b.Duration
	}
	return total
}
