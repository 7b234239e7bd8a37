package rundown

import (
	"slices"
	"time"
)

// GroupPatch holds the fields to change on a group. Nil fields are left
// alone. Changing Position moves the member beats with the group.
type GroupPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Collapsed   *bool     `json:"collapsed,omitempty"`
	Order       *int      `json:"order,omitempty"`
	Position    *Position `json:"position,omitempty"`
}

// CreateBeatGroup builds a group placed on the next group grid cell. The
// group is not part of p until passed to [Engine.AddBeatGroup].
func (e *Engine) CreateBeatGroup(p Project, name string, beatIDs []string) BeatGroup {
	now := e.now()
	return BeatGroup{
		ID:        e.newID(),
		Name:      name,
		BeatIDs:   uniqueIDs(beatIDs),
		Position:  NextGroupPosition(len(p.BeatGroups)),
		Order:     NextOrder(p.BeatGroups),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddBeatGroup appends g to the project. Member ids that do not name a beat
// are dropped; members owned by another group are moved out of it first.
// The member beats are stacked under the group before returning. A group
// whose id is already taken is refused.
func (e *Engine) AddBeatGroup(p Project, g BeatGroup) Project {
	if g.ID == "" || indexOf(p.BeatGroups, g.ID) >= 0 {
		e.logger.Warn("refusing to add beat group with duplicate or empty id", "group", g.ID)
		return p
	}
	members := make([]string, 0, len(g.BeatIDs))
	for _, id := range uniqueIDs(g.BeatIDs) {
		if indexOf(p.Beats, id) < 0 {
			continue
		}
		if owner, ok := GroupForBeat(p, id); ok {
			p = e.RemoveBeatFromGroup(p, id, owner.ID)
		}
		members = append(members, id)
	}
	g.BeatIDs = members

	p = p.clone()
	p.BeatGroups = append(p.BeatGroups, g)
	p.UpdatedAt = e.now()
	return e.RepositionBeatsInGroup(p, g.ID)
}

// UpdateBeatGroup merges patch into the group. When the position changes the
// member beats follow it.
func (e *Engine) UpdateBeatGroup(p Project, id string, patch GroupPatch) Project {
	i := indexOf(p.BeatGroups, id)
	if i < 0 {
		return p
	}
	now := e.now()
	p = p.clone()
	g := p.BeatGroups[i]
	setIf(&g.Name, patch.Name)
	setIf(&g.Description, patch.Description)
	setIf(&g.Color, patch.Color)
	setIf(&g.Collapsed, patch.Collapsed)
	setIf(&g.Order, patch.Order)
	setIf(&g.Position, patch.Position)
	g.UpdatedAt = now
	p.BeatGroups[i] = g
	p.UpdatedAt = now
	if patch.Position != nil {
		return e.RepositionBeatsInGroup(p, id)
	}
	return p
}

// DeleteBeatGroup removes the group. Its beats stay where they are. The group
// is first taken out of its block, which deletes the block if it would be
// left with a single group.
func (e *Engine) DeleteBeatGroup(p Project, id string) Project {
	if indexOf(p.BeatGroups, id) < 0 {
		return p
	}
	if b, ok := BlockForGroup(p, id); ok {
		p = e.RemoveGroupFromBlock(p, b.ID, id)
	}
	i := indexOf(p.BeatGroups, id)
	p = p.clone()
	p.BeatGroups = slices.Delete(p.BeatGroups, i, i+1)
	p.UpdatedAt = e.now()
	return p
}

// AddBeatsToGroup appends beatIDs to the group, skipping ids already present
// and ids that do not name a beat. Beats owned by another group are moved
// out of it first. All members are restacked.
func (e *Engine) AddBeatsToGroup(p Project, groupID string, beatIDs []string) Project {
	if indexOf(p.BeatGroups, groupID) < 0 {
		return p
	}
	var incoming []string
	for _, id := range uniqueIDs(beatIDs) {
		if indexOf(p.Beats, id) < 0 {
			continue
		}
		if owner, ok := GroupForBeat(p, id); ok && owner.ID != groupID {
			p = e.RemoveBeatFromGroup(p, id, owner.ID)
		}
		incoming = append(incoming, id)
	}
	if len(incoming) == 0 {
		return p
	}

	now := e.now()
	p = p.clone()
	i := indexOf(p.BeatGroups, groupID)
	g := p.BeatGroups[i]
	g.BeatIDs = unionIDs(g.BeatIDs, incoming)
	g.UpdatedAt = now
	p.BeatGroups[i] = g
	p.UpdatedAt = now
	return e.RepositionBeatsInGroup(p, groupID)
}

// InsertBeatBeforeInGroup places beatID directly above targetBeatID in the
// group. A beat already in the group is reordered; a beat from elsewhere is
// moved in. Nothing happens when the target is not a member.
func (e *Engine) InsertBeatBeforeInGroup(p Project, groupID, beatID, targetBeatID string) Project {
	g, ok := p.BeatGroup(groupID)
	if !ok || indexOf(p.Beats, beatID) < 0 {
		return p
	}
	if beatID == targetBeatID || !slices.Contains(g.BeatIDs, targetBeatID) {
		return p
	}
	if owner, ok := GroupForBeat(p, beatID); ok && owner.ID != groupID {
		p = e.RemoveBeatFromGroup(p, beatID, owner.ID)
	}

	now := e.now()
	p = p.clone()
	i := indexOf(p.BeatGroups, groupID)
	g = p.BeatGroups[i]
	g.BeatIDs, _ = moveBefore(g.BeatIDs, beatID, targetBeatID)
	g.UpdatedAt = now
	p.BeatGroups[i] = g
	p.UpdatedAt = now
	return e.RepositionBeatsInGroup(p, groupID)
}

// RepositionBeatsInGroup stacks every member beat under the group header in
// BeatIDs order. Beats outside the group are untouched. Moved beats get a
// fresh UpdatedAt; when every member is already in place p is returned as is.
func (e *Engine) RepositionBeatsInGroup(p Project, groupID string) Project {
	g, ok := p.BeatGroup(groupID)
	if !ok {
		return p
	}
	now := e.now()
	q := p.clone()
	if !stackBeats(q.Beats, g, now) {
		return p
	}
	q.UpdatedAt = now
	return q
}

// RemoveBeatFromGroup takes beatID out of the group and restacks the
// remaining members so no hole is left. The removed beat keeps its position.
func (e *Engine) RemoveBeatFromGroup(p Project, beatID, groupID string) Project {
	i := indexOf(p.BeatGroups, groupID)
	if i < 0 || !slices.Contains(p.BeatGroups[i].BeatIDs, beatID) {
		return p
	}
	now := e.now()
	p = p.clone()
	g := p.BeatGroups[i]
	g.BeatIDs = withoutID(g.BeatIDs, beatID)
	g.UpdatedAt = now
	p.BeatGroups[i] = g
	p.UpdatedAt = now
	return e.RepositionBeatsInGroup(p, groupID)
}

// stackBeats writes the stacked position of every member of g into beats,
// which the caller must own, and reports whether any beat moved.
func stackBeats(beats []Beat, g BeatGroup, now time.Time) bool {
	moved := false
	for idx, id := range g.BeatIDs {
		if i := indexOf(beats, id); i >= 0 {
			target := Position{X: g.Position.X, Y: BeatYInGroup(g.Position.Y, idx)}
			moved = moveTo(&beats[i].Position, &beats[i].UpdatedAt, target, now) || moved
		}
	}
	return moved
}
