package tree

// AssignGenerations walks the parent/child structure outward from the focal
// person and assigns every reachable person an integer generation offset:
// the focal person is 0, ancestors are negative, descendants positive.
//
// The traversal is a FIFO breadth-first search, so a person reachable along
// several ancestry paths (cousin marriage and the like) keeps the generation
// of the shortest path - first discovery wins. The visited check is the
// engine's primary cycle guard: even corrupt data that makes someone their
// own ancestor only costs a bounded walk, never an infinite loop.
//
// Spouses are deliberately not traversed. Generation is a purely vertical
// concept; the positioner later forces a spouse onto its partner's row.
func AssignGenerations(idx *Index, focalID string) map[string]int {
	type entry struct {
		id  string
		gen int
	}

	generations := make(map[string]int)
	queue := []entry{{id: focalID, gen: 0}}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		if _, seen := generations[e.id]; seen {
			continue
		}
		generations[e.id] = e.gen

		for _, p := range idx.Parents(e.id) {
			queue = append(queue, entry{id: p, gen: e.gen - 1})
		}
		for _, c := range idx.Children(e.id) {
			queue = append(queue, entry{id: c, gen: e.gen + 1})
		}
	}

	return generations
}

// generationOf resolves the row for an id during positioning. People who are
// only connected by marriage never appear in the BFS result, so they borrow
// the generation of their first spouse that has one; anyone else defaults to
// the focal row.
func generationOf(id string, idx *Index, generations map[string]int) int {
	if g, ok := generations[id]; ok {
		return g
	}
	for _, sp := range idx.Spouses(id) {
		if g, ok := generations[sp]; ok {
			return g
		}
	}
	return 0
}
