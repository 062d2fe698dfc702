package sheet

import (
	"strconv"

	"tally/grid"
)

// Sheet is a sparse grid of cells with automatic recomputation. Only
// populated positions are stored; reads of anything else see an empty
// value. Formula cells reference each other by position through an
// acyclic dependency graph, and the pending pool records references to
// positions that do not exist yet.
type Sheet struct {
	cells   map[grid.Position]*Cell
	print   grid.Size
	psStale bool
	pending map[grid.Position]map[grid.Position]struct{}
	dummy   *Cell
}

func New() *Sheet {
	return &Sheet{
		cells:   make(map[grid.Position]*Cell),
		pending: make(map[grid.Position]map[grid.Position]struct{}),
	}
}

// SetCell installs text at pos, creating the cell if needed. Formula
// text is parsed and checked before anything is published; on failure
// the sheet is unchanged. A successful write resolves any pending
// references aimed at pos.
func (s *Sheet) SetCell(pos grid.Position, text string) error {
	if !pos.IsValid() {
		return InvalidPositionError{Pos: pos}
	}

	cell, exists := s.cells[pos]
	if !exists {
		cell = &Cell{sheet: s, pos: pos}
	}
	if err := cell.setData(text); err != nil {
		return err
	}
	if !exists {
		s.cells[pos] = cell
	}

	s.printExpand(pos)
	s.resolvePending(pos)
	return nil
}

// GetCell returns the cell at pos, the shared empty DUMMY cell when
// pos is only known from pending references, and nil otherwise.
func (s *Sheet) GetCell(pos grid.Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, InvalidPositionError{Pos: pos}
	}
	if cell, ok := s.cells[pos]; ok {
		return cell, nil
	}
	if _, ok := s.pending[pos]; ok {
		return s.getDummy(), nil
	}
	return nil, nil
}

// ClearCell destroys the cell at pos. Dependent caches are invalidated
// first, and the destroyed cell's incoming edges move to the pending
// pool so that a future repopulation of pos reconnects them.
func (s *Sheet) ClearCell(pos grid.Position) error {
	if !pos.IsValid() {
		return InvalidPositionError{Pos: pos}
	}
	cell, ok := s.cells[pos]
	if !ok {
		return nil
	}

	cell.clear()
	for _, d := range cell.dependents {
		if dep, ok := s.cells[d]; ok && dep.refersTo(pos) {
			s.addPending(pos, d)
		}
	}
	delete(s.cells, pos)
	s.printShrink(pos)
	return nil
}

// refersTo reports whether pos appears in the cell's outgoing edges.
func (c *Cell) refersTo(pos grid.Position) bool {
	for _, d := range c.dependsOn {
		if d == pos {
			return true
		}
	}
	return false
}

// CopyCell re-sets to from the source cell's raw text, re-running the
// whole write protocol. The source must be populated.
func (s *Sheet) CopyCell(from, to grid.Position) error {
	if !from.IsValid() {
		return InvalidPositionError{Pos: from}
	}
	if !to.IsValid() {
		return InvalidPositionError{Pos: to}
	}
	src, ok := s.cells[from]
	if !ok {
		return NoCellError{Pos: from}
	}
	if from == to {
		return nil
	}

	dst, exists := s.cells[to]
	if !exists {
		dst = &Cell{sheet: s, pos: to}
	}
	if err := dst.copyFrom(src); err != nil {
		return err
	}
	if !exists {
		s.cells[to] = dst
	}

	s.printExpand(to)
	s.resolvePending(to)
	return nil
}

// MoveCell transfers the source cell's content to another position,
// leaving the source Raw. Both reverse-reachable cache sets are
// invalidated.
func (s *Sheet) MoveCell(from, to grid.Position) error {
	if !from.IsValid() {
		return InvalidPositionError{Pos: from}
	}
	if !to.IsValid() {
		return InvalidPositionError{Pos: to}
	}
	src, ok := s.cells[from]
	if !ok {
		return NoCellError{Pos: from}
	}
	if from == to {
		return nil
	}

	dst, exists := s.cells[to]
	if !exists {
		dst = &Cell{sheet: s, pos: to}
		s.cells[to] = dst
	}
	dst.moveFrom(src)

	s.printExpand(to)
	s.resolvePending(to)
	return nil
}

// Erase drops every cell, the pending pool, and the printable area.
func (s *Sheet) Erase() {
	s.cells = make(map[grid.Position]*Cell)
	s.pending = make(map[grid.Position]map[grid.Position]struct{})
	s.print = grid.Size{}
	s.psStale = false
}

// IsEmpty reports whether no position is populated.
func (s *Sheet) IsEmpty() bool {
	return len(s.cells) == 0
}

// Positions returns every populated position, in map order.
func (s *Sheet) Positions() []grid.Position {
	out := make([]grid.Position, 0, len(s.cells))
	for pos := range s.cells {
		out = append(out, pos)
	}
	return out
}

// Equal compares two sheets by populated positions and their textual
// content.
func (s *Sheet) Equal(other *Sheet) bool {
	if len(s.cells) != len(other.cells) {
		return false
	}
	for pos, cell := range s.cells {
		rhs, ok := other.cells[pos]
		if !ok || cell.GetText() != rhs.GetText() {
			return false
		}
	}
	return true
}

// GetPrintableSize returns the minimal rectangle covering all
// populated positions, recomputing it when a boundary clear left it
// stale.
func (s *Sheet) GetPrintableSize() grid.Size {
	if s.psStale {
		s.printRecompute()
	}
	return s.print
}

// UpdateFutureReferences reconciles the whole pending pool: entries
// whose target is now populated are linked and their holders
// invalidated; the rest stay in place.
func (s *Sheet) UpdateFutureReferences() {
	for pos := range s.pending {
		if _, ok := s.cells[pos]; ok {
			s.resolvePending(pos)
		}
	}
}

// resolvePending links every recorded holder of a reference to pos and
// invalidates its reverse-reachable caches, then drops the entry. The
// caller guarantees pos is populated.
func (s *Sheet) resolvePending(pos grid.Position) {
	holders, ok := s.pending[pos]
	if !ok {
		return
	}
	cell := s.cells[pos]
	for holder := range holders {
		cell.addDependent(holder)
		s.invalidateFrom(holder)
	}
	delete(s.pending, pos)
}

func (s *Sheet) addPending(pos, holder grid.Position) {
	set, ok := s.pending[pos]
	if !ok {
		set = make(map[grid.Position]struct{})
		s.pending[pos] = set
	}
	set[holder] = struct{}{}
}

// getDummy returns the shared empty cell handed out for pending
// positions, creating it on first use.
func (s *Sheet) getDummy() *Cell {
	if s.dummy == nil {
		s.dummy = &Cell{sheet: s, pos: grid.None, kind: kindEmpty}
	}
	return s.dummy
}

// resolve is the Resolver handed to formula evaluation: absent cells
// read as zero, text coerces through toNumber, and errors
// propagate as grid.FormulaError values.
func (s *Sheet) resolve(pos grid.Position) (float64, error) {
	cell, ok := s.cells[pos]
	if !ok {
		return 0, nil
	}
	return toNumber(cell.GetValue())
}

// toNumber coerces a cell value for use inside a formula. Empty text
// is zero; other text must fully parse as a decimal number.
func toNumber(v Value) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case grid.FormulaError:
		return 0, v
	case string:
		if v == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, grid.FormulaError{Category: grid.ErrValue}
		}
		return f, nil
	}
	return 0, nil
}

// printExpand grows the printable rectangle to cover pos.
func (s *Sheet) printExpand(pos grid.Position) {
	if s.print.Rows <= pos.Row {
		s.print.Rows = pos.Row + 1
	}
	if s.print.Cols <= pos.Col {
		s.print.Cols = pos.Col + 1
	}
}

// printShrink reacts to a clear: interior positions leave the
// rectangle tight, boundary positions mark it for recomputation.
func (s *Sheet) printShrink(pos grid.Position) {
	if s.print.Rows > pos.Row+1 && s.print.Cols > pos.Col+1 {
		return
	}
	s.print = grid.Size{}
	s.psStale = true
}

// printRecompute rescans every populated position.
func (s *Sheet) printRecompute() {
	s.print = grid.Size{}
	for pos := range s.cells {
		s.printExpand(pos)
	}
	s.psStale = false
}
