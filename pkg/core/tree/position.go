package tree

import (
	"slices"
	"strings"
	"time"
)

// Spacing holds the layout constants for the positioner. All values are in
// layout units; the consumer decides what a unit means on screen. Passing
// the constants explicitly (instead of burying them in the package) keeps
// the engine testable with varied spacing.
type Spacing struct {
	// NodeWidth is the horizontal footprint of a single node.
	NodeWidth float64
	// SpouseSpacing is the center-to-center distance between the two
	// partners of a couple. Must exceed NodeWidth for couples not to touch.
	SpouseSpacing float64
	// HorizontalSpacing is the gap between adjacent couples in a row.
	HorizontalSpacing float64
	// VerticalSpacing is the distance between generation rows.
	VerticalSpacing float64
}

// DefaultSpacing returns the spacing constants used when the caller does not
// supply its own.
func DefaultSpacing() Spacing {
	return Spacing{
		NodeWidth:         140,
		SpouseSpacing:     180,
		HorizontalSpacing: 48,
		VerticalSpacing:   200,
	}
}

// valid reports whether the spacing constants are usable.
func (s Spacing) valid() bool {
	return s.NodeWidth > 0 && s.SpouseSpacing > 0 && s.HorizontalSpacing >= 0 && s.VerticalSpacing > 0
}

// Point is a node position in layout units. Y is always generation times
// vertical spacing; X only promises local ordering and non-overlap within
// a row.
type Point struct {
	X float64
	Y float64
}

// rowTolerance absorbs float noise when matching nodes to a row by Y.
const rowTolerance = 0.5

// PositionNodes computes the position of every visible person.
//
// In full view, visible people are grouped into generation rows, paired into
// couples, and each row is centered around x = 0. In focused view the focal
// couple is anchored at the origin, parents are placed one row above,
// children one row below, and anything revealed purely by expansion is
// appended to the right of whatever already occupies its row.
//
// For identical inputs the result is bit-for-bit identical across runs.
func PositionNodes(snap *Snapshot, idx *Index, visible idSet, generations map[string]int, focalID string, fullView bool, spacing Spacing) map[string]Point {
	if !spacing.valid() {
		spacing = DefaultSpacing()
	}
	p := &positioner{
		snap:        snap,
		idx:         idx,
		visible:     visible,
		generations: generations,
		spacing:     spacing,
		positions:   make(map[string]Point, len(visible)),
	}
	if fullView {
		p.layoutFull()
	} else {
		p.layoutFocused(focalID)
	}
	return p.positions
}

type positioner struct {
	snap        *Snapshot
	idx         *Index
	visible     idSet
	generations map[string]int
	spacing     Spacing
	positions   map[string]Point
}

// couple is one placement unit in a row: a primary node and an optional
// partner rendered immediately to its right.
type couple struct {
	primary string
	partner string // empty for singles
}

func (c couple) width(s Spacing) float64 {
	if c.partner == "" {
		return s.NodeWidth
	}
	return s.NodeWidth + s.SpouseSpacing
}

// =============================================================================
// Full view
// =============================================================================

func (p *positioner) layoutFull() {
	rows := make(map[int][]string)
	for id := range p.visible {
		gen := generationOf(id, p.idx, p.generations)
		rows[gen] = append(rows[gen], id)
	}

	for _, gen := range sortedKeys(rows) {
		ids := p.sortByBirth(rows[gen])
		couples := p.buildCouples(ids)
		p.placeRow(couples, -p.rowWidth(couples)/2, float64(gen)*p.spacing.VerticalSpacing)
	}
}

// buildCouples scans birth-sorted ids and pairs each unprocessed id with its
// first visible spouse from the same row, if that spouse is itself still
// unprocessed. The scan order makes the earlier-encountered partner the
// primary of the couple.
func (p *positioner) buildCouples(ids []string) []couple {
	inRow := make(idSet, len(ids))
	for _, id := range ids {
		inRow.add(id)
	}

	processed := make(idSet, len(ids))
	var couples []couple
	for _, id := range ids {
		if processed.has(id) {
			continue
		}
		processed.add(id)
		c := couple{primary: id}
		for _, sp := range p.idx.Spouses(id) {
			if p.visible.has(sp) && inRow.has(sp) && !processed.has(sp) {
				c.partner = sp
				processed.add(sp)
				break
			}
		}
		couples = append(couples, c)
	}
	return couples
}

func (p *positioner) rowWidth(couples []couple) float64 {
	var total float64
	for i, c := range couples {
		if i > 0 {
			total += p.spacing.HorizontalSpacing
		}
		total += c.width(p.spacing)
	}
	return total
}

// placeRow lays couples left to right starting at startX, which is the left
// edge of the row (not the first node center).
func (p *positioner) placeRow(couples []couple, startX, y float64) {
	cursor := startX
	for _, c := range couples {
		x := cursor + p.spacing.NodeWidth/2
		p.positions[c.primary] = Point{X: x, Y: y}
		if c.partner != "" {
			p.positions[c.partner] = Point{X: x + p.spacing.SpouseSpacing, Y: y}
		}
		cursor += c.width(p.spacing) + p.spacing.HorizontalSpacing
	}
}

// =============================================================================
// Focused view
// =============================================================================

func (p *positioner) layoutFocused(focalID string) {
	// Focal couple anchored at the origin, spouse to the right.
	p.positions[focalID] = Point{X: 0, Y: 0}
	mid := 0.0
	if sp := p.visibleSpouse(focalID); sp != "" {
		p.positions[sp] = Point{X: p.spacing.SpouseSpacing, Y: 0}
		mid = p.spacing.SpouseSpacing / 2
	}

	p.placeParents(focalID, mid)
	p.placeChildren(focalID, mid)
	p.placeExpansionLeftovers()
}

// placeParents puts the focal person's visible parents one row above the
// origin. A parent pair that is married (to each other) and fully visible is
// centered as a couple under the focal couple's midpoint; any other
// combination is spaced evenly.
func (p *positioner) placeParents(focalID string, mid float64) {
	var parents []string
	for _, id := range p.idx.Parents(focalID) {
		if p.visible.has(id) {
			parents = append(parents, id)
		}
	}
	if len(parents) == 0 {
		return
	}
	parents = p.sortByBirth(parents)
	y := -p.spacing.VerticalSpacing

	if len(parents) == 2 && p.idx.AreSpouses(parents[0], parents[1]) {
		p.positions[parents[0]] = Point{X: mid - p.spacing.SpouseSpacing/2, Y: y}
		p.positions[parents[1]] = Point{X: mid + p.spacing.SpouseSpacing/2, Y: y}
		return
	}

	total := float64(len(parents))*p.spacing.NodeWidth + float64(len(parents)-1)*p.spacing.HorizontalSpacing
	cursor := mid - total/2
	for _, id := range parents {
		p.positions[id] = Point{X: cursor + p.spacing.NodeWidth/2, Y: y}
		cursor += p.spacing.NodeWidth + p.spacing.HorizontalSpacing
	}
}

// placeChildren puts the focal couple's visible children (step-children
// included) one row below, centered under the couple's midpoint. A child
// with a visible spouse occupies a couple's width so the spouse lands next
// to it.
func (p *positioner) placeChildren(focalID string, mid float64) {
	seen := make(idSet)
	var children []string
	collect := func(parent string) {
		for _, c := range p.idx.Children(parent) {
			if p.visible.has(c) && !seen.has(c) {
				seen.add(c)
				children = append(children, c)
			}
		}
	}
	collect(focalID)
	for _, sp := range p.idx.Spouses(focalID) {
		if p.visible.has(sp) {
			collect(sp)
		}
	}
	if len(children) == 0 {
		return
	}

	children = p.sortByBirth(children)
	couples := make([]couple, 0, len(children))
	for _, c := range children {
		cp := couple{primary: c}
		if sp := p.visibleSpouse(c); sp != "" {
			if _, placed := p.positions[sp]; !placed && !seen.has(sp) {
				cp.partner = sp
			}
		}
		couples = append(couples, cp)
	}

	p.placeRow(couples, mid-p.rowWidth(couples)/2, p.spacing.VerticalSpacing)
}

// placeExpansionLeftovers positions every visible id the explicit focused
// placement did not reach - relatives revealed purely by expansion. Each
// leftover row is appended to the right of whatever is already positioned at
// the same y; an empty row is centered like a full-view row.
func (p *positioner) placeExpansionLeftovers() {
	rows := make(map[int][]string)
	for id := range p.visible {
		if _, done := p.positions[id]; done {
			continue
		}
		gen := generationOf(id, p.idx, p.generations)
		rows[gen] = append(rows[gen], id)
	}

	for _, gen := range sortedKeys(rows) {
		ids := p.sortByBirth(rows[gen])
		couples := p.buildCouples(ids)
		y := float64(gen) * p.spacing.VerticalSpacing

		startX := -p.rowWidth(couples) / 2
		if maxX, occupied := p.maxXAt(y); occupied {
			startX = maxX + p.spacing.HorizontalSpacing + p.spacing.NodeWidth/2
		}
		p.placeRow(couples, startX, y)
	}
}

// maxXAt returns the largest x already assigned at row y (within tolerance)
// and whether the row holds any node at all.
func (p *positioner) maxXAt(y float64) (float64, bool) {
	var maxX float64
	found := false
	for _, pt := range p.positions {
		if pt.Y > y-rowTolerance && pt.Y < y+rowTolerance {
			if !found || pt.X > maxX {
				maxX = pt.X
				found = true
			}
		}
	}
	return maxX, found
}

// =============================================================================
// Shared helpers
// =============================================================================

// sortByBirth orders ids by birth date ascending with unknown dates last;
// ties break on the id itself so fixtures reproduce exactly.
func (p *positioner) sortByBirth(ids []string) []string {
	birth := func(id string) (time.Time, bool) {
		person, ok := p.snap.Person(id)
		if !ok || person.BirthDate == nil {
			return time.Time{}, false
		}
		return *person.BirthDate, true
	}

	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b string) int {
		ta, okA := birth(a)
		tb, okB := birth(b)
		switch {
		case okA && okB:
			if c := ta.Compare(tb); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

// visibleSpouse returns the first visible spouse of id, or "". People with
// several recorded spouses are linked to a single companion node per layout;
// the sorted spouse order makes the choice deterministic.
func (p *positioner) visibleSpouse(id string) string {
	for _, sp := range p.idx.Spouses(id) {
		if p.visible.has(sp) {
			return sp
		}
	}
	return ""
}
