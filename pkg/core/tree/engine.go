// Package tree implements the genealogical tree layout engine: it turns a
// snapshot of persons and typed relationships into node positions and drawn
// edges for a family tree diagram.
//
// The engine is pure computation - it performs no I/O, holds no state across
// invocations, and is referentially transparent given (snapshot, request,
// spacing). It is safe to call concurrently and safe to memoize on a cache
// keyed by its inputs.
//
// Internally one layout run flows through six passes: index construction,
// visibility selection, generation assignment, node positioning, edge
// building, and hidden-relative detection. See Layout.
package tree

import (
	"github.com/kintreehq/kintree/pkg/errors"
)

// DefaultZoom is the viewport zoom emitted with every diagram.
const DefaultZoom = 1.0

// Request describes one layout invocation.
type Request struct {
	// FocalID is the person the view is centered on. Must exist in the
	// snapshot.
	FocalID string
	// Mode selects the focused sub-view or the full tree.
	Mode ViewMode
	// ExpandedIDs lists nodes whose surrounding ring of relatives should be
	// revealed in focused mode. Unknown ids are ignored.
	ExpandedIDs []string
	// GenerationDepth is accepted for future row limiting. The layout does
	// not truncate by it yet, but it participates in cache keys so callers
	// can memoize safely.
	GenerationDepth int
}

// TreeNode is one rendered person: the resolved person record, its position,
// the hidden-relative flags, and whether it is the focal node.
type TreeNode struct {
	Person Person
	X      float64
	Y      float64
	Hidden HiddenRelatives
	Focal  bool
}

// Viewport tells the consumer where to center and how far to zoom.
// It always centers on the focal person's computed position.
type Viewport struct {
	CenterX float64
	CenterY float64
	Zoom    float64
}

// Diagram is the complete output of one layout run. Nodes are sorted by
// person id and edges by edge id, so two runs with identical inputs produce
// deeply equal diagrams.
type Diagram struct {
	Nodes    []TreeNode
	Edges    []Edge
	Viewport Viewport
}

// Node returns the node for id and true, or a zero node and false.
func (d *Diagram) Node(id string) (TreeNode, bool) {
	for _, n := range d.Nodes {
		if n.Person.ID == id {
			return n, true
		}
	}
	return TreeNode{}, false
}

// Layout computes the diagram for one request against one snapshot.
//
// It fails with ErrCodePersonNotFound when the focal id has no person record
// (an empty diagram would silently hide the mistake from the user) and with
// ErrCodeInvalidRequest for an unknown mode or negative generation depth.
// Relationship records pointing at ids with no person record are skipped
// without error; unconfirmed genealogies are expected input.
func Layout(snap *Snapshot, req Request, spacing Spacing) (*Diagram, error) {
	if req.Mode == "" {
		req.Mode = ModeFocused
	}
	if !req.Mode.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "unknown view mode %q", req.Mode)
	}
	if req.GenerationDepth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "generation depth must not be negative")
	}
	if !snap.Has(req.FocalID) {
		return nil, errors.New(errors.ErrCodePersonNotFound, "person %q not found", req.FocalID)
	}

	idx := BuildIndex(snap.Relationships())
	visible := VisibleSet(snap, idx, req.FocalID, req.Mode, req.ExpandedIDs)
	generations := AssignGenerations(idx, req.FocalID)
	positions := PositionNodes(snap, idx, visible, generations, req.FocalID, req.Mode == ModeFull, spacing)
	edges := BuildEdges(snap.Relationships(), visible, positions)
	hidden := DetectHidden(idx, visible)

	nodes := make([]TreeNode, 0, len(visible))
	for _, id := range visible.sorted() {
		person, ok := snap.Person(id)
		if !ok {
			continue
		}
		pos := positions[id]
		nodes = append(nodes, TreeNode{
			Person: *person,
			X:      pos.X,
			Y:      pos.Y,
			Hidden: hidden[id],
			Focal:  id == req.FocalID,
		})
	}

	focalPos := positions[req.FocalID]
	return &Diagram{
		Nodes: nodes,
		Edges: edges,
		Viewport: Viewport{
			CenterX: focalPos.X,
			CenterY: focalPos.Y,
			Zoom:    DefaultZoom,
		},
	}, nil
}
