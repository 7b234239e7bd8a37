package rundown

// =============================================================================
// Constants
// =============================================================================

// Canvas units shared by every layout rule.
const (
	BeatHeight   = 80.0
	BeatColumns  = 4
	BeatSpacingX = 450.0
	BeatSpacingY = 150.0
	BeatOriginX  = 100.0
	BeatOriginY  = 100.0

	GroupHeaderHeight = 50.0
	GroupWidth        = 424.0
	GroupColumns      = 3
	GroupSpacingX     = 500.0
	GroupSpacingY     = 200.0
	GroupOriginX      = 100.0
	GroupOriginY      = 50.0

	BlockHeaderHeight = 50.0
	BlockPadding      = 15.0

	LaneHeaderHeight = 50.0

	// Gap separates stacked siblings at every level.
	Gap = 10.0
)

// =============================================================================
// Grid Packing
// =============================================================================

// NextBeatPosition returns the grid cell for the count-th beat. It does not
// look at existing positions: after deletions two beats can share a cell.
func NextBeatPosition(count int) Position {
	col := count % BeatColumns
	row := count / BeatColumns
	return Position{
		X: BeatOriginX + float64(col)*BeatSpacingX,
		Y: BeatOriginY + float64(row)*BeatSpacingY,
	}
}

// NextGroupPosition returns the grid cell for the count-th group.
func NextGroupPosition(count int) Position {
	col := count % GroupColumns
	row := count / GroupColumns
	return Position{
		X: GroupOriginX + float64(col)*GroupSpacingX,
		Y: GroupOriginY + float64(row)*GroupSpacingY,
	}
}

// =============================================================================
// Stacking
// =============================================================================

// BeatYInGroup returns the Y of the index-th beat in a group whose header
// starts at groupY. A gap separates the header from the first beat.
func BeatYInGroup(groupY float64, index int) float64 {
	return groupY + GroupHeaderHeight + Gap + float64(index)*(BeatHeight+Gap)
}

// GroupXInBlock returns the X of the index-th group in a block at blockX.
func GroupXInBlock(blockX float64, index int) float64 {
	return blockX + float64(index)*(GroupWidth+Gap)
}

// BlockWidth returns the width of a block holding groupCount groups. An empty
// block is as wide as one group.
func BlockWidth(groupCount int) float64 {
	if groupCount <= 0 {
		return GroupWidth
	}
	return float64(groupCount)*GroupWidth + float64(groupCount-1)*Gap
}

// BlockHeight returns the height of b measured from its header down to the
// lowest group header or beat it contains, plus padding. It reads the
// positions stored in p, so it reflects the block's current content.
func BlockHeight(p Project, b Block) float64 {
	if len(b.GroupIDs) == 0 {
		return BlockHeaderHeight
	}
	beats := positionsByID(p.Beats)
	bottom := b.Position.Y
	found := false
	for _, gid := range b.GroupIDs {
		g, ok := p.BeatGroup(gid)
		if !ok {
			continue
		}
		found = true
		bottom = max(bottom, g.Position.Y+GroupHeaderHeight)
		for _, bid := range g.BeatIDs {
			if pos, ok := beats[bid]; ok {
				bottom = max(bottom, pos.Y+BeatHeight)
			}
		}
	}
	if !found {
		return BlockHeaderHeight
	}
	return bottom - b.Position.Y + BlockPadding
}

// LaneHeight returns the height of l: header, gap, then every member block
// followed by a gap.
func LaneHeight(p Project, l Lane) float64 {
	h := LaneHeaderHeight + Gap
	for _, id := range l.BlockIDs {
		if b, ok := p.Block(id); ok {
			h += BlockHeight(p, b) + Gap
		}
	}
	return h
}

// =============================================================================
// Ordering
// =============================================================================

// Sortable is implemented by entities that carry an explicit sort key.
type Sortable interface {
	SortOrder() int
}

// SortOrder returns the beat's order field.
func (b Beat) SortOrder() int { return b.Order }

// SortOrder returns the group's order field.
func (g BeatGroup) SortOrder() int { return g.Order }

// NextOrder returns one more than the largest order in items (or 1 when
// items is empty or all orders are negative). Freed values are never reused.
func NextOrder[T Sortable](items []T) int {
	top := 0
	for _, it := range items {
		top = max(top, it.SortOrder())
	}
	return top + 1
}

// =============================================================================
// Bounds
// =============================================================================

// Rect is an axis-aligned rectangle in canvas units.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// Width returns the horizontal span of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center of r.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center of r.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// GroupBounds returns the rectangle covered by g's header and its beats.
func GroupBounds(p Project, g BeatGroup) Rect {
	r := Rect{
		Left:   g.Position.X,
		Top:    g.Position.Y,
		Right:  g.Position.X + GroupWidth,
		Bottom: g.Position.Y + GroupHeaderHeight,
	}
	beats := positionsByID(p.Beats)
	for _, id := range g.BeatIDs {
		if pos, ok := beats[id]; ok {
			r.Bottom = max(r.Bottom, pos.Y+BeatHeight)
		}
	}
	return r
}

// BlockBounds returns the rectangle covered by b.
func BlockBounds(p Project, b Block) Rect {
	return Rect{
		Left:   b.Position.X,
		Top:    b.Position.Y,
		Right:  b.Position.X + BlockWidth(len(b.GroupIDs)),
		Bottom: b.Position.Y + BlockHeight(p, b),
	}
}

// LaneBounds returns the rectangle covered by l. Its width is that of the
// widest member block.
func LaneBounds(p Project, l Lane) Rect {
	width := GroupWidth
	for _, id := range l.BlockIDs {
		if b, ok := p.Block(id); ok {
			width = max(width, BlockWidth(len(b.GroupIDs)))
		}
	}
	return Rect{
		Left:   l.Position.X,
		Top:    l.Position.Y,
		Right:  l.Position.X + width,
		Bottom: l.Position.Y + LaneHeight(p, l),
	}
}

func positionsByID(beats []Beat) map[string]Position {
	m := make(map[string]Position, len(beats))
	for _, b := range beats {
		m[b.ID] = b.Position
	}
	return m
}
