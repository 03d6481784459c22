package tree

import (
	"cmp"
	"slices"
)

// sortedKeys returns the keys of m in ascending order. It is the Go 1.21
// equivalent of slices.Sorted(maps.Keys(m)).
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// idSet is a set of person IDs.
type idSet map[string]struct{}

func (s idSet) add(id string) { s[id] = struct{}{} }

func (s idSet) has(id string) bool { _, ok := s[id]; return ok }

func (s idSet) sorted() []string { return sortedKeys(s) }

// Index holds the four adjacency views derived from a relationship list.
// It is rebuilt per layout invocation and discarded afterwards; all traversal
// in the engine goes through it rather than through raw relationships.
//
// Sibling derivation is inclusive: two people are siblings iff their parent
// sets intersect, so half-siblings count as siblings.
type Index struct {
	childToParents   map[string]idSet
	parentToChildren map[string]idSet
	spouses          map[string]idSet
	siblings         map[string]idSet
}

// BuildIndex constructs the four adjacency maps from a flat relationship
// list. Parent and spouse facts are indexed in a single pass; siblings need
// a second pass because their derivation requires parent→children to exist.
//
// Relationships with an unrecognized kind are ignored. Self-loops (a person
// related to themselves) are ignored as well - including them would feed
// degenerate adjacency to the traversals downstream.
func BuildIndex(relationships []Relationship) *Index {
	idx := &Index{
		childToParents:   make(map[string]idSet),
		parentToChildren: make(map[string]idSet),
		spouses:          make(map[string]idSet),
		siblings:         make(map[string]idSet),
	}

	for _, r := range relationships {
		if r.From == "" || r.To == "" || r.From == r.To {
			continue
		}
		switch r.Kind {
		case KindParent:
			idx.set(idx.childToParents, r.From).add(r.To)
			idx.set(idx.parentToChildren, r.To).add(r.From)
		case KindSpouse:
			idx.set(idx.spouses, r.From).add(r.To)
			idx.set(idx.spouses, r.To).add(r.From)
		}
	}

	// Second pass: everyone sharing a parent is a sibling of everyone else
	// under that parent.
	for _, children := range idx.parentToChildren {
		for a := range children {
			for b := range children {
				if a == b {
					continue
				}
				idx.set(idx.siblings, a).add(b)
			}
		}
	}

	return idx
}

// set returns the idSet for id in m, allocating it on first use.
func (idx *Index) set(m map[string]idSet, id string) idSet {
	s, ok := m[id]
	if !ok {
		s = make(idSet)
		m[id] = s
	}
	return s
}

// Parents returns the parents of id in sorted order, or nil.
func (idx *Index) Parents(id string) []string { return sortedOrNil(idx.childToParents[id]) }

// Children returns the children of id in sorted order, or nil.
func (idx *Index) Children(id string) []string { return sortedOrNil(idx.parentToChildren[id]) }

// Spouses returns the spouses of id in sorted order, or nil.
func (idx *Index) Spouses(id string) []string { return sortedOrNil(idx.spouses[id]) }

// Siblings returns the siblings of id in sorted order, or nil.
// Half-siblings are included.
func (idx *Index) Siblings(id string) []string { return sortedOrNil(idx.siblings[id]) }

// AreSpouses reports whether a and b are recorded as spouses.
func (idx *Index) AreSpouses(a, b string) bool { return idx.spouses[a].has(b) }

func sortedOrNil(s idSet) []string {
	if len(s) == 0 {
		return nil
	}
	return s.sorted()
}
