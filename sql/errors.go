package sql

import "fmt"

// ParseError is returned by the lexer and parser for malformed input.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "sql parser error: " + e.Message
	}
	return fmt.Sprintf("sql parser error: %s at Line: %d, Column: %d", e.Message, e.Line, e.Column)
}

func newParseError(line, column int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}
