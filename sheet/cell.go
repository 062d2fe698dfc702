package sheet

import (
	"tally/formula"
	"tally/grid"
)

// Value is the computed content of a cell: a string for text cells, a
// float64 for numeric formula results, or a grid.FormulaError.
type Value interface{}

type cellKind int

const (
	kindRaw cellKind = iota
	kindEmpty
	kindText
	kindFormula
)

// Cell is one addressable entry of a Sheet. It holds one of four
// kinds of content and, for formulas, a memoized evaluation result.
// The edge lists track the dependency graph by position: dependsOn is
// the distinct set of valid references in the formula, dependents the
// cells whose formulas mention this one.
type Cell struct {
	sheet *Sheet
	pos   grid.Position

	kind cellKind
	raw  string
	form *formula.Formula

	cached bool
	cache  Value

	dependsOn  []grid.Position
	dependents []grid.Position
}

// setData installs new content. Formula text runs the full write
// protocol: parse, cycle check, reverse-cache invalidation, edge
// install, publish. On a parse or cycle error the cell is unchanged.
// Re-setting the exact same text is a no-op.
func (c *Cell) setData(text string) error {
	if c.kind != kindRaw && c.raw == text {
		return nil
	}

	if len(text) > 1 && text[0] == grid.FormulaSign {
		f, err := formula.Parse(text[1:])
		if err != nil {
			return err
		}
		refs := f.ReferencedCells()
		if err := c.sheet.checkCycle(c.pos, refs); err != nil {
			return err
		}
		c.sheet.invalidateFrom(c.pos)
		c.sheet.installEdges(c.pos, refs)
		c.kind = kindFormula
		c.raw = text
		c.form = f
		c.cached = false
		c.cache = nil
		c.dependsOn = refs
		return nil
	}

	c.sheet.invalidateFrom(c.pos)
	if text == "" {
		c.kind = kindEmpty
	} else {
		c.kind = kindText
	}
	c.raw = text
	c.form = nil
	c.cached = false
	c.cache = nil
	c.dependsOn = nil
	return nil
}

// GetValue returns the computed content: 0.0 for an uninitialized
// cell, "" for an explicitly empty one, the displayed text (escape
// sigil stripped) for text, and the cached or freshly evaluated result
// for a formula.
func (c *Cell) GetValue() Value {
	switch c.kind {
	case kindRaw:
		return 0.0
	case kindEmpty:
		return ""
	case kindText:
		if c.raw[0] == grid.EscapeSign {
			return c.raw[1:]
		}
		return c.raw
	default:
		if !c.cached {
			val, err := c.form.Evaluate(c.sheet.resolve)
			if err != nil {
				c.cache = err.(grid.FormulaError)
			} else {
				c.cache = val
			}
			c.cached = true
		}
		return c.cache
	}
}

// GetText returns the canonical textual representation: "" for Raw and
// Empty, the stored string (sigil intact) for text, and "=" plus the
// canonical expression for a formula.
func (c *Cell) GetText() string {
	switch c.kind {
	case kindRaw, kindEmpty:
		return ""
	case kindText:
		return c.raw
	default:
		return string(grid.FormulaSign) + c.form.Expression()
	}
}

// GetReferencedCells returns the distinct valid positions the cell's
// formula references, in parse order.
func (c *Cell) GetReferencedCells() []grid.Position {
	if c.kind != kindFormula {
		return nil
	}
	return c.form.ReferencedCells()
}

// IsFormula reports whether the cell holds a formula.
func (c *Cell) IsFormula() bool {
	return c.kind == kindFormula
}

// IsText reports whether the cell holds literal text.
func (c *Cell) IsText() bool {
	return c.kind == kindText
}

// IsEmpty reports whether the cell was explicitly set to the empty
// string.
func (c *Cell) IsEmpty() bool {
	return c.kind == kindEmpty
}

// IsRaw reports whether the cell has never held content.
func (c *Cell) IsRaw() bool {
	return c.kind == kindRaw
}

// ClearCache drops the memoized result here and across the reverse
// reachable set.
func (c *Cell) ClearCache() {
	c.sheet.invalidateFrom(c.pos)
}

// dropCache releases only this cell's memo.
func (c *Cell) dropCache() {
	c.cached = false
	c.cache = nil
}

// clear releases the content, propagating invalidation to dependents
// first. The edge lists stay; the Sheet tidies them.
func (c *Cell) clear() {
	c.sheet.invalidateFrom(c.pos)
	c.kind = kindRaw
	c.raw = ""
	c.form = nil
	c.cached = false
	c.cache = nil
}

// copyFrom re-sets this cell from the source's raw text. Content-equal
// cells are left alone.
func (c *Cell) copyFrom(other *Cell) error {
	if c == other || (c.kind != kindRaw && other.kind != kindRaw && c.raw == other.raw) {
		return nil
	}
	return c.setData(other.raw)
}

// moveFrom transfers content and raw text, leaving the source Raw.
// Both reverse-reachable cache sets are invalidated; edge lists stay
// with their positions.
func (c *Cell) moveFrom(other *Cell) {
	if c == other {
		return
	}
	c.sheet.invalidateFrom(c.pos)
	c.sheet.invalidateFrom(other.pos)

	c.kind = other.kind
	c.raw = other.raw
	c.form = other.form
	c.cached = false
	c.cache = nil

	other.kind = kindRaw
	other.raw = ""
	other.form = nil
	other.cached = false
	other.cache = nil
}

// addDependent records an incoming edge, keeping the list
// duplicate-free.
func (c *Cell) addDependent(pos grid.Position) {
	for _, d := range c.dependents {
		if d == pos {
			return
		}
	}
	c.dependents = append(c.dependents, pos)
}

// Dependents returns the positions whose formulas mention this cell.
func (c *Cell) Dependents() []grid.Position {
	return c.dependents
}

// DependsOn returns the positions this cell's formula references.
func (c *Cell) DependsOn() []grid.Position {
	return c.dependsOn
}
