package editor

import (
	"slices"
	"strings"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// Op names an edit command.
type Op string

// Project commands.
const (
	OpProjectUpdate Op = "project.update"
)

// Beat commands.
const (
	OpBeatCreate Op = "beat.create"
	OpBeatUpdate Op = "beat.update"
	OpBeatDelete Op = "beat.delete"
)

// Group commands.
const (
	OpGroupCreate     Op = "group.create"
	OpGroupUpdate     Op = "group.update"
	OpGroupDelete     Op = "group.delete"
	OpGroupAddBeats   Op = "group.add_beats"
	OpGroupInsertBeat Op = "group.insert_beat"
	OpGroupRemoveBeat Op = "group.remove_beat"
)

// Block commands.
const (
	OpBlockCreate      Op = "block.create"
	OpBlockUpdate      Op = "block.update"
	OpBlockDelete      Op = "block.delete"
	OpBlockAddGroup    Op = "block.add_group"
	OpBlockRemoveGroup Op = "block.remove_group"
)

// Lane commands.
const (
	OpLaneCreate      Op = "lane.create"
	OpLaneUpdate      Op = "lane.update"
	OpLaneDelete      Op = "lane.delete"
	OpLaneAddBlock    Op = "lane.add_block"
	OpLaneRemoveBlock Op = "lane.remove_block"
)

// Layout commands.
const (
	OpLayoutAuto   Op = "layout.auto"
	OpLayoutSettle Op = "layout.settle"
)

// Ops returns every known command in a stable order.
func Ops() []Op {
	ops := make([]Op, 0, len(handlers))
	for op := range handlers {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// ValidateOp checks that op names a known command.
func ValidateOp(op Op) error {
	if _, ok := handlers[op]; !ok {
		names := make([]string, 0, len(handlers))
		for _, o := range Ops() {
			names = append(names, string(o))
		}
		return rerrors.New(rerrors.ErrCodeInvalidInput, "unknown op %q (must be one of: %s)", op, strings.Join(names, ", "))
	}
	return nil
}

// ProjectPatch holds the project-level fields to change.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Command is one edit. Which fields are read depends on Op:
//
//   - ID names the entity the command acts on (the beat, group, block or
//     lane; for membership commands, the member being moved)
//   - ParentID names the container for membership commands, and the
//     container a newly created entity should join
//   - TargetID names the sibling to insert before; empty appends
//   - IDs lists members for create and add commands
//   - Name, TypeID and the patches carry field values
//
// Command supports JSON serialization for the HTTP API.
type Command struct {
	Op       Op       `json:"op"`
	ID       string   `json:"id,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
	TargetID string   `json:"targetId,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	Name     string   `json:"name,omitempty"`
	TypeID   string   `json:"typeId,omitempty"`

	Project *ProjectPatch       `json:"project,omitempty"`
	Beat    *rundown.BeatPatch  `json:"beat,omitempty"`
	Group   *rundown.GroupPatch `json:"group,omitempty"`
	Block   *rundown.BlockPatch `json:"block,omitempty"`
	Lane    *rundown.LanePatch  `json:"lane,omitempty"`
}

// Validate checks that the command names a known op and carries well-formed
// names. Whether referenced ids exist is not checked: the core treats
// unknown ids as no-ops.
func (c Command) Validate() error {
	if err := ValidateOp(c.Op); err != nil {
		return err
	}
	names := []string{c.Name}
	for _, p := range []*string{
		patchField(c.Project, func(p *ProjectPatch) *string { return p.Name }),
		patchField(c.Group, func(p *rundown.GroupPatch) *string { return p.Name }),
		patchField(c.Block, func(p *rundown.BlockPatch) *string { return p.Name }),
		patchField(c.Lane, func(p *rundown.LanePatch) *string { return p.Name }),
		patchField(c.Beat, func(p *rundown.BeatPatch) *string { return p.Title }),
	} {
		if p != nil {
			names = append(names, *p)
		}
	}
	for _, n := range names {
		if err := rerrors.ValidateName(n); err != nil {
			return err
		}
	}
	if c.Beat != nil && c.Beat.Duration != nil && *c.Beat.Duration < 0 {
		return rerrors.New(rerrors.ErrCodeInvalidInput, "duration must not be negative")
	}
	return nil
}

func patchField[P any](p *P, get func(*P) *string) *string {
	if p == nil {
		return nil
	}
	return get(p)
}

// Result is the outcome of a command.
type Result struct {
	// Project is the settled project after the command.
	Project rundown.Project `json:"project"`

	// ID is the id of the entity a create command produced.
	ID string `json:"id,omitempty"`

	// Changed reports whether the command altered the project, settling
	// included. Commands on unknown ids leave it false.
	Changed bool `json:"changed"`
}
