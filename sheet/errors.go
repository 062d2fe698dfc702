package sheet

import (
	"fmt"

	"tally/grid"
)

// InvalidPositionError reports an operation on a position outside the
// addressable area.
type InvalidPositionError struct {
	Pos grid.Position
}

func (e InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position (%d,%d)", e.Pos.Row, e.Pos.Col)
}

// CircularDependencyError reports a formula write that would close a
// cycle in the dependency graph.
type CircularDependencyError struct {
	Pos grid.Position
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency at %s", e.Pos)
}

// NoCellError reports an operation that needs a populated source cell.
type NoCellError struct {
	Pos grid.Position
}

func (e NoCellError) Error() string {
	return fmt.Sprintf("no cell at %s", e.Pos)
}
