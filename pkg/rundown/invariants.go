package rundown

import (
	"fmt"
	"math"
)

// ViolationKind classifies a broken document rule.
type ViolationKind string

const (
	ViolationDuplicateID ViolationKind = "duplicate_id"
	ViolationDangling    ViolationKind = "dangling_ref"
	ViolationExclusivity ViolationKind = "exclusivity"
	ViolationFloor       ViolationKind = "floor"
	ViolationPosition    ViolationKind = "position"
)

// Violation describes one broken rule on one entity.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	ID      string        `json:"id"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s", v.Kind, v.ID, v.Message)
}

const positionEpsilon = 1e-6

// CheckInvariants returns every rule p breaks, or nil for a consistent
// document. It checks id uniqueness, references, containment exclusivity,
// container floors and the layout of every container's children.
func CheckInvariants(p Project) []Violation {
	c := &checker{p: p}
	c.uniqueIDs()
	c.references()
	c.exclusivity()
	c.floors()
	c.positions()
	return c.out
}

type checker struct {
	p   Project
	out []Violation
}

func (c *checker) add(kind ViolationKind, id, format string, args ...any) {
	c.out = append(c.out, Violation{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) uniqueIDs() {
	seen := make(map[string]string)
	note := func(kind, id string) {
		if prev, ok := seen[id]; ok {
			c.add(ViolationDuplicateID, id, "%s id already used by a %s", kind, prev)
			return
		}
		seen[id] = kind
	}
	for _, b := range c.p.Beats {
		note("beat", b.ID)
	}
	for _, g := range c.p.BeatGroups {
		note("group", g.ID)
	}
	for _, b := range c.p.Blocks {
		note("block", b.ID)
	}
	for _, l := range c.p.Lanes {
		note("lane", l.ID)
	}
}

func (c *checker) references() {
	for _, g := range c.p.BeatGroups {
		for _, id := range g.BeatIDs {
			if indexOf(c.p.Beats, id) < 0 {
				c.add(ViolationDangling, g.ID, "group references missing beat %q", id)
			}
		}
	}
	for _, b := range c.p.Blocks {
		for _, id := range b.GroupIDs {
			if indexOf(c.p.BeatGroups, id) < 0 {
				c.add(ViolationDangling, b.ID, "block references missing group %q", id)
			}
		}
	}
	for _, l := range c.p.Lanes {
		for _, id := range l.BlockIDs {
			if indexOf(c.p.Blocks, id) < 0 {
				c.add(ViolationDangling, l.ID, "lane references missing block %q", id)
			}
		}
	}
}

func (c *checker) exclusivity() {
	owners := make(map[string]string)
	claim := func(parent, child string) {
		if prev, ok := owners[child]; ok {
			c.add(ViolationExclusivity, child, "held by both %s and %s", prev, parent)
			return
		}
		owners[child] = parent
	}
	for _, g := range c.p.BeatGroups {
		for _, id := range g.BeatIDs {
			claim(g.ID, id)
		}
	}
	for _, b := range c.p.Blocks {
		for _, id := range b.GroupIDs {
			claim(b.ID, id)
		}
	}
	for _, l := range c.p.Lanes {
		for _, id := range l.BlockIDs {
			claim(l.ID, id)
		}
	}
}

func (c *checker) floors() {
	for _, b := range c.p.Blocks {
		if len(b.GroupIDs) < 2 {
			c.add(ViolationFloor, b.ID, "block has %d groups, needs at least 2", len(b.GroupIDs))
		}
	}
	for _, l := range c.p.Lanes {
		if len(l.BlockIDs) < 2 {
			c.add(ViolationFloor, l.ID, "lane has %d blocks, needs at least 2", len(l.BlockIDs))
		}
	}
}

func (c *checker) positions() {
	for _, g := range c.p.BeatGroups {
		for idx, id := range g.BeatIDs {
			b, ok := c.p.Beat(id)
			if !ok {
				continue
			}
			want := Position{X: g.Position.X, Y: BeatYInGroup(g.Position.Y, idx)}
			c.expect(b.ID, "beat", b.Position, want)
		}
	}
	for _, blk := range c.p.Blocks {
		for idx, id := range blk.GroupIDs {
			g, ok := c.p.BeatGroup(id)
			if !ok {
				continue
			}
			want := Position{X: GroupXInBlock(blk.Position.X, idx), Y: blk.Position.Y + BlockHeaderHeight}
			c.expect(g.ID, "group", g.Position, want)
		}
	}
	for _, l := range c.p.Lanes {
		y := l.Position.Y + LaneHeaderHeight + Gap
		for _, id := range l.BlockIDs {
			blk, ok := c.p.Block(id)
			if !ok {
				continue
			}
			c.expect(blk.ID, "block", blk.Position, Position{X: l.Position.X, Y: y})
			y += BlockHeight(c.p, blk) + Gap
		}
	}
}

func (c *checker) expect(id, kind string, got, want Position) {
	if math.Abs(got.X-want.X) > positionEpsilon || math.Abs(got.Y-want.Y) > positionEpsilon {
		c.add(ViolationPosition, id, "%s at (%g, %g), layout puts it at (%g, %g)", kind, got.X, got.Y, want.X, want.Y)
	}
}
