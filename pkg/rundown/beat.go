package rundown

import (
	"cmp"
	"slices"
)

// BeatPatch holds the fields to change on a beat. Nil fields are left alone.
type BeatPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	TypeID      *string   `json:"typeId,omitempty"`
	Order       *int      `json:"order,omitempty"`
	Position    *Position `json:"position,omitempty"`
	Duration    *float64  `json:"duration,omitempty"`
	StartTime   *string   `json:"startTime,omitempty"`
	Scene       *string   `json:"scene,omitempty"`
	Character   *string   `json:"character,omitempty"`
	Cues        *[]string `json:"cues,omitempty"`
	Assets      *[]string `json:"assets,omitempty"`
}

func (pt BeatPatch) apply(b Beat) Beat {
	setIf(&b.Title, pt.Title)
	setIf(&b.Description, pt.Description)
	setIf(&b.TypeID, pt.TypeID)
	setIf(&b.Order, pt.Order)
	setIf(&b.Position, pt.Position)
	setIf(&b.Duration, pt.Duration)
	setIf(&b.StartTime, pt.StartTime)
	setIf(&b.Scene, pt.Scene)
	setIf(&b.Character, pt.Character)
	if pt.Cues != nil {
		b.Cues = slices.Clone(*pt.Cues)
	}
	if pt.Assets != nil {
		b.Assets = slices.Clone(*pt.Assets)
	}
	return b
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// CreateBeat appends a new beat of the given type and returns its id.
//
// The beat lands on the grid cell for the current beat count, not the first
// free cell, so after deletions it may overlap an existing beat. Its order is
// one past the largest existing order.
func (e *Engine) CreateBeat(p Project, typeID string) (Project, string) {
	now := e.now()
	b := Beat{
		ID:        e.newID(),
		TypeID:    typeID,
		Order:     NextOrder(p.Beats),
		Position:  NextBeatPosition(len(p.Beats)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p = p.clone()
	p.Beats = append(p.Beats, b)
	p.UpdatedAt = now
	return p, b.ID
}

// UpdateBeat merges patch into the beat with the given id. Unknown ids leave
// p unchanged.
func (e *Engine) UpdateBeat(p Project, id string, patch BeatPatch) Project {
	i := indexOf(p.Beats, id)
	if i < 0 {
		return p
	}
	now := e.now()
	p = p.clone()
	b := patch.apply(p.Beats[i])
	b.UpdatedAt = now
	p.Beats[i] = b
	p.UpdatedAt = now
	return p
}

// DeleteBeat removes the beat from the project. Group membership is not
// touched; use [Engine.PurgeBeat] to remove the beat everywhere.
func (e *Engine) DeleteBeat(p Project, id string) Project {
	i := indexOf(p.Beats, id)
	if i < 0 {
		return p
	}
	p = p.clone()
	p.Beats = slices.Delete(p.Beats, i, i+1)
	p.UpdatedAt = e.now()
	return p
}

// PurgeBeat removes the beat from its group (closing the gap) and then from
// the project.
func (e *Engine) PurgeBeat(p Project, id string) Project {
	if g, ok := GroupForBeat(p, id); ok {
		p = e.RemoveBeatFromGroup(p, id, g.ID)
	}
	return e.DeleteBeat(p, id)
}

// SortedBeats returns the beats ordered by their Order field. Equal orders
// keep their storage order. The input is not modified.
func SortedBeats(p Project) []Beat {
	out := slices.Clone(p.Beats)
	slices.SortStableFunc(out, func(a, b Beat) int { return cmp.Compare(a.Order, b.Order) })
	return out
}
