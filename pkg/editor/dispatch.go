package editor

import (
	"reflect"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// handler applies one command to p. It returns the edited project and, for
// create commands, the new entity's id.
type handler func(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error)

var handlers = map[Op]handler{
	OpProjectUpdate: projectUpdate,

	OpBeatCreate: beatCreate,
	OpBeatUpdate: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.UpdateBeat(p, c.ID, deref(c.Beat))
	}),
	OpBeatDelete: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.PurgeBeat(p, c.ID)
	}),

	OpGroupCreate: groupCreate,
	OpGroupUpdate: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.UpdateBeatGroup(p, c.ID, deref(c.Group))
	}),
	OpGroupDelete: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.DeleteBeatGroup(p, c.ID)
	}),
	OpGroupAddBeats: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.AddBeatsToGroup(p, c.ID, c.IDs)
	}),
	OpGroupInsertBeat: withMember(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.InsertBeatBeforeInGroup(p, c.ParentID, c.ID, c.TargetID)
	}),
	OpGroupRemoveBeat: withMember(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.RemoveBeatFromGroup(p, c.ID, c.ParentID)
	}),

	OpBlockCreate: blockCreate,
	OpBlockUpdate: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.UpdateBlock(p, c.ID, deref(c.Block))
	}),
	OpBlockDelete: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.DeleteBlock(p, c.ID)
	}),
	OpBlockAddGroup: withMember(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.AddGroupToBlock(p, c.ParentID, c.ID, c.TargetID)
	}),
	OpBlockRemoveGroup: withMember(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.RemoveGroupFromBlock(p, c.ParentID, c.ID)
	}),

	OpLaneCreate: laneCreate,
	OpLaneUpdate: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.UpdateLane(p, c.ID, deref(c.Lane))
	}),
	OpLaneDelete: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.DeleteLane(p, c.ID)
	}),
	OpLaneAddBlock: withMember(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.AddBlockToLane(p, c.ParentID, c.ID, c.TargetID)
	}),
	OpLaneRemoveBlock: withID(func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project {
		return e.RemoveBlockFromLane(p, c.ID)
	}),

	OpLayoutAuto: func(e *rundown.Engine, p rundown.Project, _ Command) (rundown.Project, string, error) {
		return e.AutoLayout(p), "", nil
	},
	OpLayoutSettle: func(_ *rundown.Engine, p rundown.Project, _ Command) (rundown.Project, string, error) {
		return p, "", nil
	},
}

// Dispatch applies c to p and settles the layout.
//
// Dispatch is pure: p is not modified and nothing is stored. Commands that
// reference unknown ids succeed with p returned as is and Result.Changed
// false, matching the core. Create commands the core refuses (too few
// members) fail with INVALID_INPUT, as do malformed commands.
func Dispatch(e *rundown.Engine, p rundown.Project, c Command) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{Project: p}, err
	}
	next, id, err := handlers[c.Op](e, p, c)
	if err != nil {
		return Result{Project: p}, err
	}
	if c.Op != OpLayoutSettle && reflect.DeepEqual(p, next) {
		return Result{Project: p, ID: id}, nil
	}
	settled := e.Settle(next)
	return Result{
		Project: settled,
		ID:      id,
		Changed: !reflect.DeepEqual(p, settled),
	}, nil
}

// =============================================================================
// Create Commands
// =============================================================================

func projectUpdate(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
	if c.Project == nil {
		return p, "", nil
	}
	if c.Project.Name != nil {
		p.Name = *c.Project.Name
	}
	if c.Project.Description != nil {
		p.Description = *c.Project.Description
	}
	p.UpdatedAt = e.Now()
	return p, "", nil
}

// beatCreate creates a beat, applies c.Beat to it and, when ParentID is
// set, appends it to that group.
func beatCreate(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
	p, id := e.CreateBeat(p, c.TypeID)
	if c.Beat != nil {
		p = e.UpdateBeat(p, id, *c.Beat)
	}
	if c.ParentID != "" {
		p = e.AddBeatsToGroup(p, c.ParentID, []string{id})
	}
	return p, id, nil
}

// groupCreate creates a group holding c.IDs and, when ParentID is set,
// appends it to that block.
func groupCreate(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
	g := e.CreateBeatGroup(p, c.Name, c.IDs)
	p = e.AddBeatGroup(p, g)
	if c.Group != nil {
		p = e.UpdateBeatGroup(p, g.ID, *c.Group)
	}
	if c.ParentID != "" {
		p = e.AddGroupToBlock(p, c.ParentID, g.ID, c.TargetID)
	}
	return p, g.ID, nil
}

// blockCreate creates a block from c.IDs and, when ParentID is set, appends
// it to that lane.
func blockCreate(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
	p, id := e.CreateBlock(p, c.IDs, c.Name)
	if id == "" {
		return p, "", rerrors.New(rerrors.ErrCodeInvalidInput, "a block needs at least 2 existing groups")
	}
	if c.ParentID != "" {
		p = e.AddBlockToLane(p, c.ParentID, id, c.TargetID)
	}
	return p, id, nil
}

func laneCreate(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
	p, id := e.CreateLane(p, c.IDs, c.Name)
	if id == "" {
		return p, "", rerrors.New(rerrors.ErrCodeInvalidInput, "a lane needs at least 2 existing blocks")
	}
	return p, id, nil
}

// =============================================================================
// Helpers
// =============================================================================

type edit func(e *rundown.Engine, p rundown.Project, c Command) rundown.Project

// withID wraps an edit on the entity named by c.ID.
func withID(fn edit) handler {
	return func(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
		if c.ID == "" {
			return p, "", rerrors.New(rerrors.ErrCodeInvalidInput, "%s requires id", c.Op)
		}
		return fn(e, p, c), "", nil
	}
}

// withMember wraps a membership edit of c.ID inside c.ParentID.
func withMember(fn edit) handler {
	return func(e *rundown.Engine, p rundown.Project, c Command) (rundown.Project, string, error) {
		if c.ID == "" || c.ParentID == "" {
			return p, "", rerrors.New(rerrors.ErrCodeInvalidInput, "%s requires id and parentId", c.Op)
		}
		return fn(e, p, c), "", nil
	}
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
