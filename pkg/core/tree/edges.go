package tree

import (
	"slices"
	"strings"
)

// EdgeKind distinguishes the two drawn edge families.
type EdgeKind string

// Drawn edge kinds.
const (
	EdgeParentChild EdgeKind = "parent-child"
	EdgeSpouse      EdgeKind = "spouse"
)

// Edge is one drawn connection between two visible nodes.
// Parent-child edges run parent→child. Spouse edges are oriented left to
// right by assigned x position and carry the divorce flag.
type Edge struct {
	ID       string
	From     string
	To       string
	Kind     EdgeKind
	Divorced bool
}

// BuildEdges emits the deduplicated edge list for the visible part of the
// diagram. Upstream data may contain redundant relationship records, so
// parent-child edges are keyed by the (parent, child) pair and spouse edges
// by the unordered id pair; the first record for a key wins.
//
// The result is sorted by edge ID so identical inputs produce identical
// output ordering.
func BuildEdges(relationships []Relationship, visible idSet, positions map[string]Point) []Edge {
	seen := make(map[string]struct{})
	var edges []Edge

	for _, r := range relationships {
		switch r.Kind {
		case KindParent:
			child, parent := r.From, r.To
			if !visible.has(child) || !visible.has(parent) {
				continue
			}
			id := "pc:" + parent + ":" + child
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			edges = append(edges, Edge{
				ID:   id,
				From: parent,
				To:   child,
				Kind: EdgeParentChild,
			})

		case KindSpouse:
			a, b := r.From, r.To
			if !visible.has(a) || !visible.has(b) {
				continue
			}
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			id := "sp:" + lo + ":" + hi
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			edges = append(edges, Edge{
				ID:       id,
				From:     a,
				To:       b,
				Kind:     EdgeSpouse,
				Divorced: r.Divorced(),
			})
		}
	}

	// Orient spouse edges left to right by assigned x.
	for i := range edges {
		if edges[i].Kind != EdgeSpouse {
			continue
		}
		from, to := edges[i].From, edges[i].To
		pf, okF := positions[from]
		pt, okT := positions[to]
		if okF && okT && pt.X < pf.X {
			edges[i].From, edges[i].To = to, from
		}
	}

	slices.SortFunc(edges, func(a, b Edge) int { return strings.Compare(a.ID, b.ID) })
	return edges
}
