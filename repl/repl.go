package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"tally/formula"
	"tally/grid"
	"tally/sheet"
)

const PROMPT = "tally> "

// Start begins an interactive session over one sheet. When in/out are
// a real terminal the line editor runs in raw mode with history;
// otherwise input is read line by line.
func Start(in io.Reader, out io.Writer) {
	s := sheet.New()

	var (
		scanner *bufio.Scanner
		tty     *ttyInput
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
	} else {
		scanner = bufio.NewScanner(in)
	}

	sessionOut := out
	if tty != nil {
		// In raw TTY mode, normalize LF to CRLF so lines start in column 0.
		sessionOut = newTTYLineWriter(out)
	}

	fmt.Fprintf(sessionOut, "tally - interactive sheet\n")
	fmt.Fprintf(sessionOut, "Commands: set, get, text, refs, deps, clear, copy, move, size, values, texts, erase\n")
	fmt.Fprintf(sessionOut, "Type :help for details, :quit to leave.\n\n")

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(PROMPT)
			if !ok {
				return
			}
		} else {
			fmt.Fprint(out, PROMPT)
			if !scanner.Scan() {
				return
			}
			line = scanner.Text()
		}

		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			if handleCommand(line, sessionOut) {
				return
			}
			continue
		}

		if err := Execute(s, line, sessionOut); err != nil {
			printError(sessionOut, err)
		}
	}
}

// handleCommand processes REPL commands (starting with :).
// Returns true if the REPL should exit.
func handleCommand(cmd string, out io.Writer) bool {
	switch strings.TrimSpace(cmd) {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case ":help", ":h":
		fmt.Fprintln(out, "Sheet commands:")
		fmt.Fprintln(out, "  set <cell> <text>   set a cell; formulas start with =, text may start with '")
		fmt.Fprintln(out, "  get <cell>          print the computed value")
		fmt.Fprintln(out, "  text <cell>         print the canonical text")
		fmt.Fprintln(out, "  refs <cell>         print the cells the formula references")
		fmt.Fprintln(out, "  deps <cell>         print the cells that reference this one")
		fmt.Fprintln(out, "  clear <cell>        remove a cell")
		fmt.Fprintln(out, "  copy <from> <to>    copy a cell's content")
		fmt.Fprintln(out, "  move <from> <to>    move a cell's content")
		fmt.Fprintln(out, "  size                print the printable rectangle")
		fmt.Fprintln(out, "  values              dump the printable area by value")
		fmt.Fprintln(out, "  texts               dump the printable area by text")
		fmt.Fprintln(out, "  erase               drop every cell")

	case ":clear":
		clearScreen(out)

	default:
		fmt.Fprintf(out, "Unknown command: %s (try :help)\n", cmd)
	}

	return false
}

// Execute runs one shell command against the sheet. Blank lines and
// '#' comments are ignored. The same commands drive script files via
// the run subcommand.
func Execute(s *sheet.Sheet, line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "set":
		label, text, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: set <cell> <text>")
		}
		pos, err := parseLabel(label)
		if err != nil {
			return err
		}
		return s.SetCell(pos, text)

	case "get":
		cell, err := lookup(s, rest)
		if err != nil {
			return err
		}
		if cell == nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprintln(out, sheet.FormatValue(cell.GetValue()))
		return nil

	case "text":
		cell, err := lookup(s, rest)
		if err != nil {
			return err
		}
		if cell == nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprintln(out, cell.GetText())
		return nil

	case "refs":
		cell, err := lookup(s, rest)
		if err != nil {
			return err
		}
		if cell == nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprintln(out, joinPositions(cell.GetReferencedCells()))
		return nil

	case "deps":
		cell, err := lookup(s, rest)
		if err != nil {
			return err
		}
		if cell == nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprintln(out, joinPositions(cell.Dependents()))
		return nil

	case "clear":
		pos, err := parseLabel(rest)
		if err != nil {
			return err
		}
		return s.ClearCell(pos)

	case "copy", "move":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("usage: %s <from> <to>", verb)
		}
		from, err := parseLabel(fields[0])
		if err != nil {
			return err
		}
		to, err := parseLabel(fields[1])
		if err != nil {
			return err
		}
		if verb == "copy" {
			return s.CopyCell(from, to)
		}
		return s.MoveCell(from, to)

	case "size":
		size := s.GetPrintableSize()
		fmt.Fprintf(out, "%dx%d\n", size.Rows, size.Cols)
		return nil

	case "values":
		s.PrintValues(out)
		return nil

	case "texts":
		s.PrintTexts(out)
		return nil

	case "erase":
		s.Erase()
		return nil
	}

	return fmt.Errorf("unknown command %q (try :help)", verb)
}

func parseLabel(label string) (grid.Position, error) {
	if label == "" {
		return grid.None, fmt.Errorf("missing cell label")
	}
	pos := grid.FromString(label)
	if !pos.IsValid() {
		return grid.None, fmt.Errorf("bad cell label %q", label)
	}
	return pos, nil
}

func lookup(s *sheet.Sheet, label string) (*sheet.Cell, error) {
	pos, err := parseLabel(label)
	if err != nil {
		return nil, err
	}
	return s.GetCell(pos)
}

func joinPositions(positions []grid.Position) string {
	parts := make([]string, len(positions))
	for i, pos := range positions {
		parts[i] = pos.String()
	}
	return strings.Join(parts, " ")
}

func printError(out io.Writer, err error) {
	var pe *formula.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(out, "Error: %s\n", pe.Detailed())
		return
	}
	fmt.Fprintf(out, "Error: %s\n", err)
}
