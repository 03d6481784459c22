package tree

// ViewMode selects between the focused sub-view and the full tree view.
type ViewMode string

// Supported view modes.
const (
	ModeFocused ViewMode = "focused"
	ModeFull    ViewMode = "full"
)

// Valid reports whether m is a recognized view mode.
func (m ViewMode) Valid() bool { return m == ModeFocused || m == ModeFull }

// VisibleSet computes the set of person IDs that must appear in the diagram.
//
// In full mode every known person is visible and all filtering is left to the
// generation and position passes. In focused mode the set grows outward from
// the focal person: spouses, parents and their spouses, children and their
// spouses, step-children via the focal's spouses, and finally one ring of
// relatives around every id in expanded that resolves to a known person.
//
// IDs that do not resolve to a person in the snapshot are never added, which
// is how partially-entered genealogies (a recorded parent with no person
// record) stay harmless. The result always contains focalID, and the
// computation is a pure function of its inputs.
func VisibleSet(snap *Snapshot, idx *Index, focalID string, mode ViewMode, expanded []string) idSet {
	visible := make(idSet)

	if mode == ModeFull {
		for _, id := range snap.PersonIDs() {
			visible.add(id)
		}
		visible.add(focalID)
		return visible
	}

	include := func(id string) {
		if snap.Has(id) {
			visible.add(id)
		}
	}
	includeWithSpouses := func(id string) {
		if !snap.Has(id) {
			return
		}
		visible.add(id)
		for _, sp := range idx.Spouses(id) {
			include(sp)
		}
	}

	visible.add(focalID)
	for _, sp := range idx.Spouses(focalID) {
		include(sp)
	}
	for _, p := range idx.Parents(focalID) {
		includeWithSpouses(p)
	}
	for _, c := range idx.Children(focalID) {
		includeWithSpouses(c)
	}
	// Step-children: children of the focal's spouses that are not the
	// focal's own children still belong to the household row.
	for _, sp := range idx.Spouses(focalID) {
		for _, c := range idx.Children(sp) {
			includeWithSpouses(c)
		}
	}

	// Expansion reveals one additional ring of relatives around the expanded
	// node, not a whole subtree.
	for _, id := range expanded {
		if !snap.Has(id) {
			continue
		}
		visible.add(id)
		for _, p := range idx.Parents(id) {
			includeWithSpouses(p)
		}
		for _, c := range idx.Children(id) {
			includeWithSpouses(c)
		}
		for _, sib := range idx.Siblings(id) {
			includeWithSpouses(sib)
		}
		for _, sp := range idx.Spouses(id) {
			include(sp)
		}
	}

	return visible
}
