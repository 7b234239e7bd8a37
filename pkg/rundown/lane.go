package rundown

import (
	"fmt"
	"slices"
	"time"
)

// LanePatch holds the fields to change on a lane. Changing Position restacks
// the lane's blocks at the new spot.
type LanePatch struct {
	Name     *string   `json:"name,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// CreateLane stacks the given blocks into a new lane and returns its id.
//
// At least two existing blocks are required; otherwise p is returned
// unchanged and the id is empty. Blocks owned by another lane are moved out
// of it first. The lane takes over the first block's position. Each block is
// then moved to its row, and everything inside it is translated by the same
// delta.
func (e *Engine) CreateLane(p Project, blockIDs []string, name string) (Project, string) {
	ids := make([]string, 0, len(blockIDs))
	for _, id := range uniqueIDs(blockIDs) {
		if indexOf(p.Blocks, id) >= 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		e.logger.Warn("lane needs at least two blocks", "blocks", len(ids))
		return p, ""
	}
	if name == "" {
		name = fmt.Sprintf("Lane %d", len(p.Lanes)+1)
	}

	for _, id := range ids {
		if _, ok := LaneForBlock(p, id); ok {
			p = e.RemoveBlockFromLane(p, id)
		}
	}

	first, _ := p.Block(ids[0])
	now := e.now()
	l := Lane{
		ID:        e.newID(),
		Name:      name,
		BlockIDs:  ids,
		Position:  first.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p = p.clone()
	p.Lanes = append(p.Lanes, l)
	p.UpdatedAt = now
	return e.RepositionBlocksInLane(p, l.ID), l.ID
}

// UpdateLane merges patch into the lane.
func (e *Engine) UpdateLane(p Project, id string, patch LanePatch) Project {
	i := indexOf(p.Lanes, id)
	if i < 0 {
		return p
	}
	now := e.now()
	p = p.clone()
	l := p.Lanes[i]
	setIf(&l.Name, patch.Name)
	setIf(&l.Position, patch.Position)
	l.UpdatedAt = now
	p.Lanes[i] = l
	p.UpdatedAt = now
	if patch.Position != nil {
		return e.RepositionBlocksInLane(p, id)
	}
	return p
}

// DeleteLane removes the lane. Its blocks stay where they are.
func (e *Engine) DeleteLane(p Project, id string) Project {
	i := indexOf(p.Lanes, id)
	if i < 0 {
		return p
	}
	p = p.clone()
	p.Lanes = slices.Delete(p.Lanes, i, i+1)
	p.UpdatedAt = e.now()
	return p
}

// RepositionBlocksInLane stacks the lane's blocks top to bottom.
//
// The first row starts one header and one gap below the lane. Each block is
// moved to the lane's X and the current row's Y, and its groups and beats are
// translated by the same delta. The next row starts one gap below the
// block's content-driven height.
func (e *Engine) RepositionBlocksInLane(p Project, laneID string) Project {
	l, ok := p.Lane(laneID)
	if !ok {
		return p
	}
	now := e.now()
	q := p.clone()
	moved := false
	y := l.Position.Y + LaneHeaderHeight + Gap
	for _, id := range l.BlockIDs {
		i := indexOf(q.Blocks, id)
		if i < 0 {
			continue
		}
		target := Position{X: l.Position.X, Y: y}
		if delta := target.Sub(q.Blocks[i].Position); !delta.IsZero() {
			moveTo(&q.Blocks[i].Position, &q.Blocks[i].UpdatedAt, target, now)
			translateBlock(q, q.Blocks[i], delta, now)
			moved = true
		}
		y += BlockHeight(q, q.Blocks[i]) + Gap
	}
	if !moved {
		return p
	}
	q.UpdatedAt = now
	return q
}

// AddBlockToLane puts blockID into the lane, before targetBlockID when that
// is a member, else at the bottom. A block owned by another lane is moved out
// of it first. The lane is restacked; the moved block carries its content
// along.
func (e *Engine) AddBlockToLane(p Project, laneID, blockID, targetBlockID string) Project {
	if indexOf(p.Lanes, laneID) < 0 || indexOf(p.Blocks, blockID) < 0 {
		return p
	}
	if owner, ok := LaneForBlock(p, blockID); ok && owner.ID != laneID {
		p = e.RemoveBlockFromLane(p, blockID)
	}

	now := e.now()
	p = p.clone()
	i := indexOf(p.Lanes, laneID)
	l := p.Lanes[i]
	if ids, ok := moveBefore(l.BlockIDs, blockID, targetBlockID); ok {
		l.BlockIDs = ids
	} else if !slices.Contains(l.BlockIDs, blockID) {
		l.BlockIDs = append(slices.Clone(l.BlockIDs), blockID)
	}
	l.UpdatedAt = now
	p.Lanes[i] = l
	p.UpdatedAt = now
	return e.RepositionBlocksInLane(p, laneID)
}

// RemoveBlockFromLane takes blockID out of whichever lane holds it. If that
// would leave one block or none, the lane is deleted instead. Otherwise the
// remaining blocks are restacked. The removed block keeps its position.
func (e *Engine) RemoveBlockFromLane(p Project, blockID string) Project {
	l, ok := LaneForBlock(p, blockID)
	if !ok {
		return p
	}
	if len(l.BlockIDs)-1 <= 1 {
		e.logger.Debug("lane below two blocks, deleting", "lane", l.ID)
		return e.DeleteLane(p, l.ID)
	}
	now := e.now()
	p = p.clone()
	i := indexOf(p.Lanes, l.ID)
	l.BlockIDs = withoutID(l.BlockIDs, blockID)
	l.UpdatedAt = now
	p.Lanes[i] = l
	p.UpdatedAt = now
	return e.RepositionBlocksInLane(p, l.ID)
}

// translateBlock moves every group of b, and every beat of those groups, by
// delta and stamps them with now. p must own its group and beat slices.
func translateBlock(p Project, b Block, delta Position, now time.Time) {
	for _, gid := range b.GroupIDs {
		gi := indexOf(p.BeatGroups, gid)
		if gi < 0 {
			continue
		}
		g := &p.BeatGroups[gi]
		moveTo(&g.Position, &g.UpdatedAt, g.Position.Add(delta), now)
		for _, bid := range g.BeatIDs {
			if bi := indexOf(p.Beats, bid); bi >= 0 {
				moveTo(&p.Beats[bi].Position, &p.Beats[bi].UpdatedAt, p.Beats[bi].Position.Add(delta), now)
			}
		}
	}
}
