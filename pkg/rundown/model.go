package rundown

import (
	"slices"
	"time"
)

// =============================================================================
// Position
// =============================================================================

// Position is a point on the canvas. The origin is the top-left corner and Y
// grows downward.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position { return Position{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the vector from q to p.
func (p Position) Sub(q Position) Position { return Position{X: p.X - q.X, Y: p.Y - q.Y} }

// IsZero reports whether p is the origin (or a zero delta).
func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 }

// moveTo sets *pos to target, stamping *updated with now only when the
// position actually changes. It reports whether anything moved.
func moveTo(pos *Position, updated *time.Time, target Position, now time.Time) bool {
	if *pos == target {
		return false
	}
	*pos = target
	*updated = now
	return true
}

// =============================================================================
// Entities
// =============================================================================

// Beat is the atomic unit of a rundown. Group membership lives on the
// BeatGroup, not on the Beat.
type Beat struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // script text
	TypeID      string    `json:"typeId"`
	Order       int       `json:"order"`
	Position    Position  `json:"position"`
	Duration    float64   `json:"duration,omitempty"` // seconds
	StartTime   string    `json:"startTime,omitempty"`
	Scene       string    `json:"scene,omitempty"`
	Character   string    `json:"character,omitempty"`
	Cues        []string  `json:"cues,omitempty"`
	Assets      []string  `json:"assets,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeatType classifies beats. The catalog is fixed; see [DefaultBeatTypes].
type BeatType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// BeatGroup is an ordered vertical stack of beats anchored at Position.
// BeatIDs is in visual order, top to bottom.
type BeatGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	BeatIDs     []string  `json:"beatIds"`
	Position    Position  `json:"position"`
	Collapsed   bool      `json:"collapsed"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Block is an ordered horizontal row of groups. Position is the top-left of
// the block header; GroupIDs is in left-to-right order.
type Block struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GroupIDs  []string  `json:"groupIds"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lane is an ordered vertical stack of blocks. BlockIDs is in top-to-bottom
// order.
type Lane struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BlockIDs  []string  `json:"blockIds"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project is the document root. Entity slices are unordered storage;
// ordering and containment are expressed by the *IDs fields of containers.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Beats       []Beat      `json:"beats"`
	BeatTypes   []BeatType  `json:"beatTypes"`
	BeatGroups  []BeatGroup `json:"beatGroups"`
	Blocks      []Block     `json:"blocks"`
	Lanes       []Lane      `json:"lanes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DefaultBeatTypes returns the built-in beat type catalog.
func DefaultBeatTypes() []BeatType {
	return []BeatType{
		{ID: "opening", Name: "Opening", Color: "#4f46e5", Icon: "play"},
		{ID: "news", Name: "News", Color: "#dc2626", Icon: "newspaper"},
		{ID: "sports", Name: "Sports", Color: "#16a34a", Icon: "trophy"},
		{ID: "weather", Name: "Weather", Color: "#0284c7", Icon: "cloud"},
		{ID: "closing", Name: "Closing", Color: "#9333ea", Icon: "stop"},
	}
}

// =============================================================================
// Lookups
// =============================================================================

// Beat returns the beat with the given id.
func (p Project) Beat(id string) (Beat, bool) { return find(p.Beats, id) }

// BeatGroup returns the group with the given id.
func (p Project) BeatGroup(id string) (BeatGroup, bool) { return find(p.BeatGroups, id) }

// Block returns the block with the given id.
func (p Project) Block(id string) (Block, bool) { return find(p.Blocks, id) }

// Lane returns the lane with the given id.
func (p Project) Lane(id string) (Lane, bool) { return find(p.Lanes, id) }

// BeatType returns the beat type with the given id.
func (p Project) BeatType(id string) (BeatType, bool) {
	i := slices.IndexFunc(p.BeatTypes, func(t BeatType) bool { return t.ID == id })
	if i < 0 {
		return BeatType{}, false
	}
	return p.BeatTypes[i], true
}

// GroupForBeat returns the group whose BeatIDs contains beatID.
func GroupForBeat(p Project, beatID string) (BeatGroup, bool) {
	for _, g := range p.BeatGroups {
		if slices.Contains(g.BeatIDs, beatID) {
			return g, true
		}
	}
	return BeatGroup{}, false
}

// BelongsToBeatGroup reports whether beatID is a member of any group.
func BelongsToBeatGroup(p Project, beatID string) bool {
	_, ok := GroupForBeat(p, beatID)
	return ok
}

// BlockForGroup returns the block whose GroupIDs contains groupID.
func BlockForGroup(p Project, groupID string) (Block, bool) {
	for _, b := range p.Blocks {
		if slices.Contains(b.GroupIDs, groupID) {
			return b, true
		}
	}
	return Block{}, false
}

// LaneForBlock returns the lane whose BlockIDs contains blockID.
func LaneForBlock(p Project, blockID string) (Lane, bool) {
	for _, l := range p.Lanes {
		if slices.Contains(l.BlockIDs, blockID) {
			return l, true
		}
	}
	return Lane{}, false
}

// IsFirstBlockInLane reports whether blockID heads its lane. A block that is
// not in any lane counts as first.
func IsFirstBlockInLane(p Project, blockID string) bool {
	l, ok := LaneForBlock(p, blockID)
	if !ok {
		return true
	}
	return len(l.BlockIDs) > 0 && l.BlockIDs[0] == blockID
}

// =============================================================================
// Internal Helpers
// =============================================================================

type identified interface {
	Beat | BeatGroup | Block | Lane
	key() string
}

func (b Beat) key() string      { return b.ID }
func (g BeatGroup) key() string { return g.ID }
func (b Block) key() string     { return b.ID }
func (l Lane) key() string      { return l.ID }

func indexOf[T identified](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.key() == id })
}

func find[T identified](items []T, id string) (T, bool) {
	if i := indexOf(items, id); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

// clone returns p with entity slices that the caller owns. Inner id slices
// are still shared and must be replaced, never written through.
func (p Project) clone() Project {
	p.Beats = slices.Clone(p.Beats)
	p.BeatGroups = slices.Clone(p.BeatGroups)
	p.Blocks = slices.Clone(p.Blocks)
	p.Lanes = slices.Clone(p.Lanes)
	return p
}

// withoutID returns a fresh slice holding ids minus every occurrence of id.
func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// moveBefore returns a fresh slice with id placed directly before target.
// id is taken out of its current slot first, so the target index is read
// after the removal shifts it. ok is false when target is absent or equals id.
func moveBefore(ids []string, id, target string) (out []string, ok bool) {
	if id == target {
		return ids, false
	}
	rest := withoutID(ids, id)
	at := slices.Index(rest, target)
	if at < 0 {
		return ids, false
	}
	return slices.Insert(rest, at, id), true
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// unionIDs appends incoming ids not already in existing.
func unionIDs(existing, incoming []string) []string {
	return uniqueIDs(append(slices.Clone(existing), incoming...))
}
