package fountain

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/rundown/pkg/rundown"
)

// Write renders p as Fountain text to w.
//
// Dangling ids in containers are skipped. Output sections with nothing in
// them are omitted along with their page break.
func Write(p rundown.Project, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fw := &writer{w: bw, p: p}
	fw.project()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write fountain: %w", err)
	}
	return nil
}

// Export writes p to a Fountain file at path.
func Export(p rundown.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(p, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// String renders p as Fountain text.
func String(p rundown.Project) string {
	var sb strings.Builder
	_ = Write(p, &sb)
	return sb.String()
}

type writer struct {
	w        *bufio.Writer
	p        rundown.Project
	sections int
}

func (fw *writer) line(parts ...string) {
	var nonEmpty []string
	for _, s := range parts {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	fw.w.WriteString(strings.Join(nonEmpty, " "))
	fw.w.WriteByte('\n')
}

func (fw *writer) blank() { fw.w.WriteByte('\n') }

// section starts a top-level section, separating it from the previous one.
func (fw *writer) section() {
	if fw.sections > 0 {
		fw.line("===")
		fw.blank()
	}
	fw.sections++
}

func (fw *writer) project() {
	fw.line("Title:", fw.p.Name, annotate("id", fw.p.ID))
	if fw.p.Description != "" {
		lines := strings.Split(fw.p.Description, "\n")
		if len(lines) == 1 {
			fw.line("Description:", lines[0])
		} else {
			fw.line("Description:")
			for _, l := range lines {
				fw.w.WriteString("    " + l + "\n")
			}
		}
	}
	fw.blank()

	// ===== Lanes =====
	if len(fw.p.Lanes) > 0 {
		fw.section()
		for _, l := range fw.p.Lanes {
			fw.line("#", l.Name, annotate("id", l.ID))
			fw.blank()
			for _, id := range l.BlockIDs {
				if b, ok := fw.p.Block(id); ok {
					fw.block(b)
				}
			}
		}
	}

	// ===== Free blocks =====
	var blocks []rundown.Block
	for _, b := range fw.p.Blocks {
		if _, ok := rundown.LaneForBlock(fw.p, b.ID); !ok {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) > 0 {
		fw.section()
		for _, b := range blocks {
			fw.block(b)
		}
	}

	// ===== Free groups =====
	var groups []rundown.BeatGroup
	for _, g := range fw.p.BeatGroups {
		if _, ok := rundown.BlockForGroup(fw.p, g.ID); !ok {
			groups = append(groups, g)
		}
	}
	slices.SortStableFunc(groups, func(a, b rundown.BeatGroup) int { return cmp.Compare(a.Order, b.Order) })
	if len(groups) > 0 {
		fw.section()
		for _, g := range groups {
			fw.group(g)
		}
	}

	// ===== Loose beats =====
	var loose []rundown.Beat
	for _, b := range rundown.SortedBeats(fw.p) {
		if !rundown.BelongsToBeatGroup(fw.p, b.ID) {
			loose = append(loose, b)
		}
	}
	if len(loose) > 0 {
		fw.section()
		for _, b := range loose {
			fw.beat(b)
		}
	}
}

func (fw *writer) block(b rundown.Block) {
	fw.line("##", b.Name, annotate("id", b.ID))
	fw.blank()
	for _, id := range b.GroupIDs {
		if g, ok := fw.p.BeatGroup(id); ok {
			fw.group(g)
		}
	}
}

func (fw *writer) group(g rundown.BeatGroup) {
	parts := []string{"###", g.Name, annotate("id", g.ID), annotate("order", strconv.Itoa(g.Order))}
	if g.Color != "" {
		parts = append(parts, annotate("color", g.Color))
	}
	if g.Collapsed {
		parts = append(parts, annotate("collapsed", ""))
	}
	if g.Description != "" {
		parts = append(parts, annotate("description", g.Description))
	}
	fw.line(parts...)
	fw.blank()
	for _, id := range g.BeatIDs {
		if b, ok := fw.p.Beat(id); ok {
			fw.beat(b)
		}
	}
}

func (fw *writer) beat(b rundown.Beat) {
	parts := []string{annotate("beat", b.ID)}
	if b.TypeID != "" {
		parts = append(parts, annotate("type", b.TypeID))
	}
	parts = append(parts, annotate("order", strconv.Itoa(b.Order)))
	if b.Duration > 0 {
		parts = append(parts, annotate("duration", strconv.FormatFloat(b.Duration, 'f', -1, 64)))
	}
	if b.StartTime != "" {
		parts = append(parts, annotate("start", b.StartTime))
	}
	fw.line(parts...)
	for _, c := range b.Cues {
		fw.line(annotate("cue", c))
	}
	for _, a := range b.Assets {
		fw.line(annotate("asset", a))
	}
	if b.Title != "" {
		fw.line("=", flatten(b.Title))
	}
	if b.Scene != "" {
		fw.line("." + flatten(b.Scene))
	}
	if b.Character != "" {
		fw.line("@" + flatten(b.Character))
	}
	if b.Description != "" {
		for _, l := range strings.Split(strings.ReplaceAll(b.Description, "\r\n", "\n"), "\n") {
			if needsEscape(l) {
				l = "!" + l
			}
			fw.line(l)
		}
	}
	fw.blank()
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
