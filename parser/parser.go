package parser

import (
	"fmt"
	"strconv"

	"tally/ast"
	"tally/grid"
	"tally/lexer"
	"tally/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns one formula body into an expression tree. While parsing
// it records every cell reference in the order encountered, keeping
// duplicates and out-of-range labels (recorded as grid.None) so that
// callers can diagnose them.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []ParseError
	refs   []grid.Position

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

const (
	_ int = iota
	LOWEST
	SUM
	PRODUCT
	PREFIX
)

var precedences = map[token.TokenType]int{
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []ParseError{}}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.CELLREF, p.parseCellRef)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)

	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

func (p *Parser) Errors() []string {
	if len(p.errors) == 0 {
		return nil
	}
	out := make([]string, len(p.errors))
	for i, err := range p.errors {
		out[i] = err.Message
	}
	return out
}

func (p *Parser) ErrorsDetailed() []ParseError {
	return p.errors
}

// References returns every cell reference in parse order. Duplicates
// and grid.None entries are retained.
func (p *Parser) References() []grid.Position {
	return p.refs
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, ParseError{Message: msg, Token: tok})
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseFormula consumes the whole input as a single expression.
// Trailing tokens after a complete expression are an error.
func (p *Parser) ParseFormula() ast.Expression {
	if p.curToken.Type == token.EOF {
		p.addError(p.curToken, "empty formula")
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if len(p.errors) == 0 && p.peekToken.Type != token.EOF {
		p.addError(p.peekToken, fmt.Sprintf("unexpected token %s after expression", describe(p.peekToken)))
	}
	if len(p.errors) > 0 {
		return nil
	}
	return expr
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken, fmt.Sprintf("unexpected token %s", describe(p.curToken)))
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as a number", p.curToken.Literal))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseCellRef() ast.Expression {
	pos := grid.FromString(p.curToken.Literal)
	p.refs = append(p.refs, pos)
	return &ast.CellRef{Token: p.curToken, Pos: pos}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	prec := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected %s, got %s", t, describe(p.peekToken)))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of formula"
	}
	return fmt.Sprintf("%q", tok.Literal)
}
