package tree

// HiddenRelatives flags, per visible node, which relative categories exist
// in the index but fall outside the visible set. The consuming UI turns
// these into expand affordances.
type HiddenRelatives struct {
	Parents  bool
	Children bool
	Spouses  bool
	Siblings bool
}

// Any reports whether at least one category is hidden.
func (h HiddenRelatives) Any() bool {
	return h.Parents || h.Children || h.Spouses || h.Siblings
}

// DetectHidden computes the hidden-relative flags for every visible person.
// Pure set-difference checks against the index; no recursion.
func DetectHidden(idx *Index, visible idSet) map[string]HiddenRelatives {
	out := make(map[string]HiddenRelatives, len(visible))
	for id := range visible {
		out[id] = HiddenRelatives{
			Parents:  anyHidden(idx.Parents(id), visible),
			Children: anyHidden(idx.Children(id), visible),
			Spouses:  anyHidden(idx.Spouses(id), visible),
			Siblings: anyHidden(idx.Siblings(id), visible),
		}
	}
	return out
}

func anyHidden(ids []string, visible idSet) bool {
	for _, id := range ids {
		if !visible.has(id) {
			return true
		}
	}
	return false
}
