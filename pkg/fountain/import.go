package fountain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// maxLineLength bounds a single line of input.
const maxLineLength = 1 << 20

// Read parses Fountain text from r into a new project and lays it out with
// e.AutoLayout.
//
// Read never rejects a document for its content: unknown annotations are
// ignored, missing or repeated ids are replaced by fresh ones and undersized
// blocks and lanes are dissolved. It fails only when r cannot be read.
// Read does not close r.
func Read(r io.Reader, e *rundown.Engine) (rundown.Project, error) {
	ps := newParser(e)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for sc.Scan() {
		ps.feed(strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return rundown.Project{}, rerrors.Wrap(rerrors.ErrCodeInvalidFormat, err, "read fountain")
	}
	return e.AutoLayout(ps.finish()), nil
}

// Import reads a Fountain file at path.
func Import(path string, e *rundown.Engine) (rundown.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return rundown.Project{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, e)
}

// Parse reads a project from Fountain text.
func Parse(text string, e *rundown.Engine) (rundown.Project, error) {
	return Read(strings.NewReader(text), e)
}

// =============================================================================
// Parser
// =============================================================================

// parser consumes one line at a time. Containers are referenced by index
// into the project's slices, which only ever grow while parsing.
type parser struct {
	e   *rundown.Engine
	p   rundown.Project
	now time.Time

	inTitlePage bool
	titleKey    string

	lane, block, group, beat int
	desc                     []string

	seen          map[string]bool
	explicitBeat  map[int]bool
	explicitGroup map[int]bool
}

func newParser(e *rundown.Engine) *parser {
	p := e.NewProject("Untitled")
	return &parser{
		e:             e,
		p:             p,
		now:           p.CreatedAt,
		inTitlePage:   true,
		lane:          -1,
		block:         -1,
		group:         -1,
		beat:          -1,
		seen:          map[string]bool{p.ID: true},
		explicitBeat:  map[int]bool{},
		explicitGroup: map[int]bool{},
	}
}

func (ps *parser) feed(line string) {
	if ps.inTitlePage {
		if ps.titlePage(line) {
			return
		}
		ps.inTitlePage = false
	}

	switch {
	case strings.TrimSpace(line) == "":
		if ps.beat >= 0 && len(ps.desc) > 0 {
			ps.desc = append(ps.desc, "")
		}
	case pageBreakRe.MatchString(line):
		ps.closeBeat()
		ps.lane, ps.block, ps.group = -1, -1, -1
	case line[0] == '!':
		ps.text(line[1:])
	case line[0] == '#':
		ps.heading(line)
	default:
		rest, anns := splitAnnotations(line)
		if len(anns) > 0 && rest == "" {
			ps.annotations(anns)
			return
		}
		switch line[0] {
		case '=':
			ps.title(strings.TrimSpace(line[1:]))
		case '.':
			ps.scene(strings.TrimSpace(line[1:]))
		case '@':
			ps.character(strings.TrimSpace(line[1:]))
		default:
			ps.text(line)
		}
	}
}

// titlePage consumes a title page line and reports whether it was one.
func (ps *parser) titlePage(line string) bool {
	if line == "" {
		if ps.titleKey == "" {
			return true // leading blank lines
		}
		return false
	}
	if ps.titleKey != "" && (line[0] == ' ' || line[0] == '\t') {
		if ps.titleKey == "description" {
			ps.p.Description = strings.TrimLeft(ps.p.Description+"\n"+strings.TrimSpace(line), "\n")
		}
		return true
	}
	m := titleKeyRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	ps.titleKey = strings.ToLower(strings.TrimSpace(m[1]))
	value, anns := splitAnnotations(m[2])
	switch ps.titleKey {
	case "title":
		if value != "" {
			ps.p.Name = value
		}
		if id := annotationValue(anns, "id"); id != "" {
			delete(ps.seen, ps.p.ID)
			ps.p.ID = id
			ps.seen[id] = true
		}
	case "description":
		ps.p.Description = value
	}
	return true
}

// ===== Structure =====

func (ps *parser) heading(line string) {
	level := len(line) - len(strings.TrimLeft(line, "#"))
	if level > 3 {
		ps.text(line)
		return
	}
	name, anns := splitAnnotations(line[level:])
	id := ps.claim(annotationValue(anns, "id"))
	ps.closeBeat()

	switch level {
	case 1:
		ps.p.Lanes = append(ps.p.Lanes, rundown.Lane{
			ID: id, Name: name, BlockIDs: []string{}, CreatedAt: ps.now, UpdatedAt: ps.now,
		})
		ps.lane, ps.block, ps.group = len(ps.p.Lanes)-1, -1, -1
	case 2:
		ps.p.Blocks = append(ps.p.Blocks, rundown.Block{
			ID: id, Name: name, GroupIDs: []string{}, CreatedAt: ps.now, UpdatedAt: ps.now,
		})
		ps.block, ps.group = len(ps.p.Blocks)-1, -1
		if ps.lane >= 0 {
			l := &ps.p.Lanes[ps.lane]
			l.BlockIDs = append(l.BlockIDs, id)
		}
	case 3:
		ps.p.BeatGroups = append(ps.p.BeatGroups, rundown.BeatGroup{
			ID: id, Name: name, BeatIDs: []string{}, CreatedAt: ps.now, UpdatedAt: ps.now,
		})
		ps.group = len(ps.p.BeatGroups) - 1
		ps.groupAnnotations(anns)
		if ps.block >= 0 {
			b := &ps.p.Blocks[ps.block]
			b.GroupIDs = append(b.GroupIDs, id)
		}
	}
}

func (ps *parser) groupAnnotations(anns []annotation) {
	g := &ps.p.BeatGroups[ps.group]
	for _, a := range anns {
		switch a.key {
		case "order":
			if n, err := strconv.Atoi(a.value); err == nil {
				g.Order = n
				ps.explicitGroup[ps.group] = true
			}
		case "color":
			g.Color = a.value
		case "collapsed":
			g.Collapsed = a.value == "" || a.value == "true"
		case "description":
			g.Description = a.value
		}
	}
}

// ===== Beats =====

func (ps *parser) openBeat(id string) {
	ps.closeBeat()
	ps.p.Beats = append(ps.p.Beats, rundown.Beat{
		ID: ps.claim(id), CreatedAt: ps.now, UpdatedAt: ps.now,
	})
	ps.beat = len(ps.p.Beats) - 1
	if ps.group >= 0 {
		g := &ps.p.BeatGroups[ps.group]
		g.BeatIDs = append(g.BeatIDs, ps.p.Beats[ps.beat].ID)
	}
}

func (ps *parser) closeBeat() {
	if ps.beat < 0 {
		return
	}
	lines := ps.desc
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	ps.p.Beats[ps.beat].Description = strings.Join(lines, "\n")
	ps.beat, ps.desc = -1, nil
}

func (ps *parser) annotations(anns []annotation) {
	for _, a := range anns {
		if a.key == "beat" {
			ps.openBeat(a.value)
		}
	}
	if ps.beat < 0 {
		if ps.group >= 0 {
			ps.groupAnnotations(anns)
		}
		return
	}
	b := &ps.p.Beats[ps.beat]
	for _, a := range anns {
		switch a.key {
		case "type":
			b.TypeID = a.value
		case "order":
			if n, err := strconv.Atoi(a.value); err == nil {
				b.Order = n
				ps.explicitBeat[ps.beat] = true
			}
		case "duration":
			if d, err := strconv.ParseFloat(a.value, 64); err == nil && d >= 0 {
				b.Duration = d
			}
		case "start":
			b.StartTime = a.value
		case "cue":
			b.Cues = append(b.Cues, a.value)
		case "asset":
			b.Assets = append(b.Assets, a.value)
		}
	}
}

// current returns the open beat, opening an unmarked one when none is open
// or when set reports the open beat already has the field being written.
func (ps *parser) current(set func(rundown.Beat) bool) *rundown.Beat {
	if ps.beat < 0 || (set != nil && set(ps.p.Beats[ps.beat])) {
		ps.openBeat("")
	}
	return &ps.p.Beats[ps.beat]
}

func (ps *parser) title(s string) {
	ps.current(func(b rundown.Beat) bool { return b.Title != "" }).Title = s
}

func (ps *parser) scene(s string) {
	ps.current(func(b rundown.Beat) bool { return b.Scene != "" }).Scene = s
}

func (ps *parser) character(s string) {
	ps.current(nil).Character = s
}

func (ps *parser) text(s string) {
	ps.current(nil)
	ps.desc = append(ps.desc, s)
}

// ===== Finish =====

// claim returns id when it is usable and unused, or a fresh id otherwise.
func (ps *parser) claim(id string) string {
	if id == "" || ps.seen[id] {
		id = ps.e.NewID()
	}
	ps.seen[id] = true
	return id
}

func (ps *parser) finish() rundown.Project {
	ps.closeBeat()
	p := ps.p

	next := 0
	for i := range p.Beats {
		if ps.explicitBeat[i] {
			next = max(next, p.Beats[i].Order)
		}
	}
	for i := range p.Beats {
		if !ps.explicitBeat[i] {
			next++
			p.Beats[i].Order = next
		}
	}
	next = 0
	for i := range p.BeatGroups {
		if ps.explicitGroup[i] {
			next = max(next, p.BeatGroups[i].Order)
		}
	}
	for i := range p.BeatGroups {
		if !ps.explicitGroup[i] {
			next++
			p.BeatGroups[i].Order = next
		}
	}

	// Dissolve containers below their floor. Blocks go first since dropping
	// one can leave its lane short.
	var dropped []string
	p.Blocks = slices.DeleteFunc(p.Blocks, func(b rundown.Block) bool {
		if len(b.GroupIDs) < 2 {
			dropped = append(dropped, b.ID)
			return true
		}
		return false
	})
	for i := range p.Lanes {
		p.Lanes[i].BlockIDs = slices.DeleteFunc(p.Lanes[i].BlockIDs, func(id string) bool {
			return slices.Contains(dropped, id)
		})
	}
	p.Lanes = slices.DeleteFunc(p.Lanes, func(l rundown.Lane) bool {
		return len(l.BlockIDs) < 2
	})
	if len(dropped) > 0 {
		ps.e.Logger().Debug("dissolved undersized blocks on import", "blocks", dropped)
	}
	return p
}

func annotationValue(anns []annotation, key string) string {
	for _, a := range anns {
		if a.key == key {
			return a.value
		}
	}
	return ""
}
