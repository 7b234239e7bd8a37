package rundown

import (
	"slices"
)

// BlockPatch holds the fields to change on a block. Changing Position lays
// the block's groups and beats out again at the new spot.
type BlockPatch struct {
	Name     *string   `json:"name,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// CreateBlock groups the given groups into a new block and returns its id.
//
// At least two existing groups are required; otherwise p is returned
// unchanged and the id is empty. Groups owned by another block are moved out
// of it first. The block header is placed right above the first group, then
// the groups are laid out left to right under it.
func (e *Engine) CreateBlock(p Project, groupIDs []string, name string) (Project, string) {
	ids := make([]string, 0, len(groupIDs))
	for _, id := range uniqueIDs(groupIDs) {
		if indexOf(p.BeatGroups, id) >= 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		e.logger.Warn("block needs at least two groups", "groups", len(ids))
		return p, ""
	}

	for _, id := range ids {
		if owner, ok := BlockForGroup(p, id); ok {
			p = e.RemoveGroupFromBlock(p, owner.ID, id)
		}
	}

	first, _ := p.BeatGroup(ids[0])
	now := e.now()
	b := Block{
		ID:        e.newID(),
		Name:      name,
		GroupIDs:  ids,
		Position:  Position{X: first.Position.X, Y: first.Position.Y - BlockHeaderHeight},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p = p.clone()
	p.Blocks = append(p.Blocks, b)
	p.UpdatedAt = now
	return e.LayoutBlock(p, b.ID), b.ID
}

// UpdateBlock merges patch into the block.
func (e *Engine) UpdateBlock(p Project, id string, patch BlockPatch) Project {
	i := indexOf(p.Blocks, id)
	if i < 0 {
		return p
	}
	now := e.now()
	p = p.clone()
	b := p.Blocks[i]
	setIf(&b.Name, patch.Name)
	setIf(&b.Position, patch.Position)
	b.UpdatedAt = now
	p.Blocks[i] = b
	p.UpdatedAt = now
	if patch.Position != nil {
		return e.LayoutBlock(p, id)
	}
	return p
}

// DeleteBlock removes the block. Its groups remain as free-standing groups
// where they are. The block is first taken out of its lane, which deletes the
// lane if it would be left with a single block.
func (e *Engine) DeleteBlock(p Project, id string) Project {
	if indexOf(p.Blocks, id) < 0 {
		return p
	}
	p = e.RemoveBlockFromLane(p, id)
	i := indexOf(p.Blocks, id)
	p = p.clone()
	p.Blocks = slices.Delete(p.Blocks, i, i+1)
	p.UpdatedAt = e.now()
	return p
}

// AddGroupToBlock puts groupID into the block, before targetGroupID when that
// is a member, else at the end. A group owned by another block is moved out
// of it first. The block's groups and their beats are laid out again.
//
// The block's lane is not restacked; see [Engine.Settle].
func (e *Engine) AddGroupToBlock(p Project, blockID, groupID, targetGroupID string) Project {
	if indexOf(p.Blocks, blockID) < 0 || indexOf(p.BeatGroups, groupID) < 0 {
		return p
	}
	if owner, ok := BlockForGroup(p, groupID); ok && owner.ID != blockID {
		p = e.RemoveGroupFromBlock(p, owner.ID, groupID)
	}

	now := e.now()
	p = p.clone()
	i := indexOf(p.Blocks, blockID)
	b := p.Blocks[i]
	if ids, ok := moveBefore(b.GroupIDs, groupID, targetGroupID); ok {
		b.GroupIDs = ids
	} else if !slices.Contains(b.GroupIDs, groupID) {
		b.GroupIDs = append(slices.Clone(b.GroupIDs), groupID)
	}
	b.UpdatedAt = now
	p.Blocks[i] = b
	p.UpdatedAt = now
	return e.LayoutBlock(p, blockID)
}

// RemoveGroupFromBlock takes groupID out of the block. If that would leave
// one group or none, the whole block is deleted instead. Otherwise the
// remaining groups close ranks.
func (e *Engine) RemoveGroupFromBlock(p Project, blockID, groupID string) Project {
	i := indexOf(p.Blocks, blockID)
	if i < 0 || !slices.Contains(p.Blocks[i].GroupIDs, groupID) {
		return p
	}
	if len(p.Blocks[i].GroupIDs)-1 <= 1 {
		e.logger.Debug("block below two groups, deleting", "block", blockID)
		return e.DeleteBlock(p, blockID)
	}
	now := e.now()
	p = p.clone()
	b := p.Blocks[i]
	b.GroupIDs = withoutID(b.GroupIDs, groupID)
	b.UpdatedAt = now
	p.Blocks[i] = b
	p.UpdatedAt = now
	return e.LayoutBlock(p, blockID)
}

// RepositionGroupsInBlock lines the member groups up left to right under the
// block header. Only group positions change; beats are left alone. When every
// group is already in place p is returned as is.
func (e *Engine) RepositionGroupsInBlock(p Project, blockID string) Project {
	b, ok := p.Block(blockID)
	if !ok {
		return p
	}
	now := e.now()
	q := p.clone()
	moved := false
	for idx, id := range b.GroupIDs {
		if i := indexOf(q.BeatGroups, id); i >= 0 {
			target := Position{
				X: GroupXInBlock(b.Position.X, idx),
				Y: b.Position.Y + BlockHeaderHeight,
			}
			moved = moveTo(&q.BeatGroups[i].Position, &q.BeatGroups[i].UpdatedAt, target, now) || moved
		}
	}
	if !moved {
		return p
	}
	q.UpdatedAt = now
	return q
}

// LayoutBlock lines up the block's groups and then restacks each group's
// beats.
func (e *Engine) LayoutBlock(p Project, blockID string) Project {
	b, ok := p.Block(blockID)
	if !ok {
		return p
	}
	p = e.RepositionGroupsInBlock(p, blockID)
	for _, gid := range b.GroupIDs {
		p = e.RepositionBeatsInGroup(p, gid)
	}
	return p
}
