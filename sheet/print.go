package sheet

import (
	"io"
	"strconv"

	"tally/grid"
)

// PrintValues writes the printable rectangle row by row, cells
// separated by a single tab and rows terminated by a newline. Raw and
// empty cells contribute nothing but keep their separators. An empty
// sheet prints nothing.
func (s *Sheet) PrintValues(out io.Writer) {
	s.printArea(out, func(cell *Cell) string {
		if cell.kind == kindRaw || cell.kind == kindEmpty {
			return ""
		}
		return FormatValue(cell.GetValue())
	})
}

// PrintTexts writes the printable rectangle using each cell's
// canonical text.
func (s *Sheet) PrintTexts(out io.Writer) {
	s.printArea(out, func(cell *Cell) string {
		return cell.GetText()
	})
}

func (s *Sheet) printArea(out io.Writer, render func(*Cell) string) {
	size := s.GetPrintableSize()
	row := make([]byte, 0, 64)
	for i := 0; i < size.Rows; i++ {
		row = row[:0]
		for j := 0; j < size.Cols; j++ {
			if j > 0 {
				row = append(row, '\t')
			}
			if cell, ok := s.cells[grid.Position{Row: i, Col: j}]; ok {
				row = append(row, render(cell)...)
			}
		}
		row = append(row, '\n')
		out.Write(row)
	}
}

// FormatValue renders a cell value the way the printable area does:
// numbers in their shortest decimal form, errors in wire form.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case grid.FormulaError:
		return v.String()
	case string:
		return v
	}
	return ""
}
