package sheet

import (
	"tally/grid"
)

// checkCycle rejects a candidate outgoing set for a formula write at
// writer. A reference equal to writer, or any path from a reference
// back to writer over dependsOn edges, is a cycle. Missing targets
// have no outgoing edges and end the walk. The visited set keeps the
// traversal linear in the reachable subgraph.
func (s *Sheet) checkCycle(writer grid.Position, refs []grid.Position) error {
	visited := make(map[grid.Position]struct{})

	var visit func(pos grid.Position) bool
	visit = func(pos grid.Position) bool {
		if pos == writer {
			return true
		}
		if _, ok := visited[pos]; ok {
			return false
		}
		visited[pos] = struct{}{}
		cell, ok := s.cells[pos]
		if !ok {
			return false
		}
		for _, dep := range cell.dependsOn {
			if visit(dep) {
				return true
			}
		}
		return false
	}

	for _, r := range refs {
		if visit(r) {
			return CircularDependencyError{Pos: writer}
		}
	}
	return nil
}

// invalidateFrom drops the memoized result at pos and at every cell in
// its reverse-reachable set. The graph is acyclic by invariant, but
// the visited set also guards against stale reverse edges.
func (s *Sheet) invalidateFrom(pos grid.Position) {
	s.invalidate(pos, make(map[grid.Position]struct{}))
}

func (s *Sheet) invalidate(pos grid.Position, visited map[grid.Position]struct{}) {
	if _, ok := visited[pos]; ok {
		return
	}
	visited[pos] = struct{}{}
	cell, ok := s.cells[pos]
	if !ok {
		return
	}
	cell.dropCache()
	for _, d := range cell.dependents {
		s.invalidate(d, visited)
	}
}

// installEdges publishes the outgoing set of a committed formula
// write: populated targets learn their new dependent directly, absent
// ones through the pending pool.
func (s *Sheet) installEdges(writer grid.Position, refs []grid.Position) {
	for _, r := range refs {
		if target, ok := s.cells[r]; ok {
			target.addDependent(writer)
		} else {
			s.addPending(r, writer)
		}
	}
}
