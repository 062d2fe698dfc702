package lexer

import (
	"tally/token"
)

// Lexer scans a formula body (the text after the '=' sigil) into the
// formula token set. Cell references are any run of uppercase letters
// followed by a run of digits; whether such a run names a position
// inside the addressable area is decided later, by the parser.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch != 0 {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startColumn := l.column
	startOffset := l.position

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		tok = l.newToken(token.SLASH)
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case 0:
		tok = token.Token{Type: token.EOF}
	default:
		if isDigit(l.ch) {
			tok = token.Token{Type: token.NUMBER, Literal: l.readNumber()}
		} else if isUpperLetter(l.ch) {
			lit, ok := l.readCellRef()
			if ok {
				tok = token.Token{Type: token.CELLREF, Literal: lit}
			} else {
				tok = token.Token{Type: token.ILLEGAL, Literal: lit}
			}
		} else {
			tok = l.newToken(token.ILLEGAL)
		}
		tok.Column = startColumn
		tok.Offset = startOffset
		return tok
	}

	tok.Column = startColumn
	tok.Offset = startOffset
	l.readChar()
	return tok
}

func (l *Lexer) newToken(t token.TokenType) token.Token {
	if l.ch == 0 {
		return token.Token{Type: t}
	}
	return token.Token{Type: t, Literal: string(l.ch)}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readNumber scans an integer with an optional fractional part.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// readCellRef scans letters-then-digits. A run of letters with no
// trailing digits is not a reference and comes back as not ok.
func (l *Lexer) readCellRef() (string, bool) {
	start := l.position
	for isUpperLetter(l.ch) {
		l.readChar()
	}
	if !isDigit(l.ch) {
		return l.input[start:l.position], false
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position], true
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isUpperLetter(ch byte) bool {
	return 'A' <= ch && ch <= 'Z'
}
