package parser

import (
	"fmt"
	"strings"

	"tally/token"
)

type ParseError struct {
	Message string
	Token   token.Token
}

func (e ParseError) Error() string {
	return "parse error: " + e.Message
}

// FormatParseErrors renders every error with a caret pointing into the
// formula source.
func FormatParseErrors(errs []ParseError, source string) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, formatParseError(err, source))
	}
	return strings.Join(parts, "\n")
}

func formatParseError(err ParseError, source string) string {
	if err.Token.Column == 0 || source == "" {
		return "parse error: " + err.Message
	}
	col := err.Token.Column
	if col > len(source)+1 {
		col = len(source) + 1
	}
	caret := strings.Repeat(" ", col-1) + "^"
	return fmt.Sprintf(
		"parse error: %s\n  | %s\n  | %s",
		err.Message,
		source,
		caret,
	)
}
