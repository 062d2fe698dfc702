package formula

import (
	"math"

	"tally/ast"
	"tally/grid"
	"tally/lexer"
	"tally/parser"
)

// Resolver produces the numeric value of a referenced cell. It may
// fail with a grid.FormulaError, which aborts the evaluation and
// becomes its result.
type Resolver func(grid.Position) (float64, error)

// ParseError reports a formula body that does not conform to the
// grammar.
type ParseError struct {
	Source string
	Errors []parser.ParseError
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "parse error"
	}
	return e.Errors[0].Error()
}

// Detailed renders every underlying error with source context.
func (e *ParseError) Detailed() string {
	return parser.FormatParseErrors(e.Errors, e.Source)
}

// Formula is a parsed arithmetic expression with cell references. It
// is immutable after Parse.
type Formula struct {
	expr ast.Expression
	refs []grid.Position
}

// Parse builds a Formula from an expression body (the text after the
// '=' sigil).
func Parse(body string) (*Formula, error) {
	p := parser.New(lexer.New(body))
	expr := p.ParseFormula()
	if errs := p.ErrorsDetailed(); len(errs) > 0 {
		return nil, &ParseError{Source: body, Errors: errs}
	}
	return &Formula{expr: expr, refs: p.References()}, nil
}

// Expression returns the canonical text of the formula, with only the
// parentheses needed to preserve precedence and associativity.
func (f *Formula) Expression() string {
	return ast.ExprString(f.expr)
}

// Tree exposes the root of the parsed expression.
func (f *Formula) Tree() ast.Expression {
	return f.expr
}

// ReferenceList returns every reference in parse order, duplicates and
// invalid positions (grid.None) included.
func (f *Formula) ReferenceList() []grid.Position {
	return f.refs
}

// ReferencedCells returns the distinct valid positions the formula
// mentions, in parse order.
func (f *Formula) ReferencedCells() []grid.Position {
	var out []grid.Position
	seen := make(map[grid.Position]struct{}, len(f.refs))
	for _, pos := range f.refs {
		if !pos.IsValid() {
			continue
		}
		if _, ok := seen[pos]; ok {
			continue
		}
		seen[pos] = struct{}{}
		out = append(out, pos)
	}
	return out
}

// HasRefs reports whether at least one cell reference appears.
func (f *Formula) HasRefs() bool {
	return len(f.refs) > 0
}

// Evaluate computes the formula. The returned error, when non-nil, is
// always a grid.FormulaError.
func (f *Formula) Evaluate(resolve Resolver) (float64, error) {
	return eval(f.expr, resolve)
}

func eval(e ast.Expression, resolve Resolver) (float64, error) {
	switch e := e.(type) {
	case *ast.NumberLiteral:
		return e.Value, nil

	case *ast.CellRef:
		if !e.Pos.IsValid() {
			return 0, grid.FormulaError{Category: grid.ErrRef}
		}
		return resolve(e.Pos)

	case *ast.PrefixExpression:
		val, err := eval(e.Right, resolve)
		if err != nil {
			return 0, err
		}
		if e.Operator == "-" {
			return -val, nil
		}
		return val, nil

	case *ast.InfixExpression:
		left, err := eval(e.Left, resolve)
		if err != nil {
			return 0, err
		}
		right, err := eval(e.Right, resolve)
		if err != nil {
			return 0, err
		}
		var result float64
		switch e.Operator {
		case "+":
			result = left + right
		case "-":
			result = left - right
		case "*":
			result = left * right
		case "/":
			result = left / right
		}
		if math.IsInf(result, 0) || math.IsNaN(result) {
			return 0, grid.FormulaError{Category: grid.ErrDiv0}
		}
		return result, nil
	}
	return 0, nil
}
