package rundown

import (
	"cmp"
	"slices"
)

// LayoutMargin separates top-level sections laid out by [Engine.AutoLayout].
const LayoutMargin = 50.0

// Settle brings every container back to its layout rule. Each block is laid
// out, free-standing groups restack their beats, and finally every lane is
// restacked so rows follow the blocks' current heights.
//
// The lower-level operations never restack a lane on their own. Callers that
// apply a sequence of edits run Settle once after each one.
func (e *Engine) Settle(p Project) Project {
	for _, b := range p.Blocks {
		p = e.LayoutBlock(p, b.ID)
	}
	for _, g := range p.BeatGroups {
		if _, ok := BlockForGroup(p, g.ID); !ok {
			p = e.RepositionBeatsInGroup(p, g.ID)
		}
	}
	for _, l := range p.Lanes {
		p = e.RepositionBlocksInLane(p, l.ID)
	}
	return p
}

// AutoLayout places the whole document from scratch, top to bottom:
//
//  1. lanes, each with its blocks stacked,
//  2. blocks outside any lane,
//  3. groups outside any block, on a three-column grid by Order,
//  4. beats outside any group, on a four-column grid by Order.
//
// Every section starts at X = [BeatOriginX] and LayoutMargin below the
// previous one. Membership is not changed. Entities that move get a fresh
// UpdatedAt; a document already laid out this way is returned as is.
func (e *Engine) AutoLayout(p Project) Project {
	in := p
	now := e.now()
	p = p.clone()
	moved := false
	x := BeatOriginX
	y := BeatOriginY

	// ===== Lanes =====
	for i := range p.Lanes {
		l := &p.Lanes[i]
		moved = moveTo(&l.Position, &l.UpdatedAt, Position{X: x, Y: y}, now) || moved
		for _, id := range p.Lanes[i].BlockIDs {
			p = e.LayoutBlock(p, id)
		}
		p = e.RepositionBlocksInLane(p, p.Lanes[i].ID)
		y = LaneBounds(p, p.Lanes[i]).Bottom + LayoutMargin
	}

	// ===== Free blocks =====
	for i := range p.Blocks {
		if _, ok := LaneForBlock(p, p.Blocks[i].ID); ok {
			continue
		}
		b := &p.Blocks[i]
		moved = moveTo(&b.Position, &b.UpdatedAt, Position{X: x, Y: y}, now) || moved
		p = e.LayoutBlock(p, p.Blocks[i].ID)
		y += BlockHeight(p, p.Blocks[i]) + LayoutMargin
	}

	// ===== Free groups =====
	var free []BeatGroup
	for _, g := range p.BeatGroups {
		if _, ok := BlockForGroup(p, g.ID); !ok {
			free = append(free, g)
		}
	}
	slices.SortStableFunc(free, func(a, b BeatGroup) int { return cmp.Compare(a.Order, b.Order) })
	for start := 0; start < len(free); start += GroupColumns {
		row := free[start:min(start+GroupColumns, len(free))]
		bottom := y
		for col, g := range row {
			i := indexOf(p.BeatGroups, g.ID)
			grp := &p.BeatGroups[i]
			moved = moveTo(&grp.Position, &grp.UpdatedAt, Position{X: x + float64(col)*GroupSpacingX, Y: y}, now) || moved
			moved = stackBeats(p.Beats, *grp, now) || moved
			bottom = max(bottom, GroupBounds(p, *grp).Bottom)
		}
		y = bottom + LayoutMargin
	}

	// ===== Loose beats =====
	var loose []Beat
	for _, b := range p.Beats {
		if !BelongsToBeatGroup(p, b.ID) {
			loose = append(loose, b)
		}
	}
	slices.SortStableFunc(loose, func(a, b Beat) int { return cmp.Compare(a.Order, b.Order) })
	for n, b := range loose {
		i := indexOf(p.Beats, b.ID)
		target := Position{
			X: x + float64(n%BeatColumns)*BeatSpacingX,
			Y: y + float64(n/BeatColumns)*BeatSpacingY,
		}
		moved = moveTo(&p.Beats[i].Position, &p.Beats[i].UpdatedAt, target, now) || moved
	}

	if !moved && samePositions(in, p) {
		return in
	}
	p.UpdatedAt = now
	return p
}

// samePositions reports whether every entity of a sits where its
// counterpart in b does. Both must hold the same entities in the same order.
func samePositions(a, b Project) bool {
	return slices.EqualFunc(a.Beats, b.Beats, func(x, y Beat) bool { return x.Position == y.Position }) &&
		slices.EqualFunc(a.BeatGroups, b.BeatGroups, func(x, y BeatGroup) bool { return x.Position == y.Position }) &&
		slices.EqualFunc(a.Blocks, b.Blocks, func(x, y Block) bool { return x.Position == y.Position }) &&
		slices.EqualFunc(a.Lanes, b.Lanes, func(x, y Lane) bool { return x.Position == y.Position })
}
