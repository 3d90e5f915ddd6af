package parser

import (
	"fmt"

	"github.com/robinvdvleuten/beanload/ast"
)

// ParseError represents a syntax error during parsing. A ParseError aborts
// the parse of the file it occurred in.
type ParseError struct {
	Pos        ast.Position
	Message    string
	Underlying error
}

func (e *ParseError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d", e.Pos.Line)
	}

	return fmt.Sprintf("%s: %s", location, e.Message)
}

// GetPosition returns the location of the error.
func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

func newErrorf(pos ast.Position, format string, args ...any) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}
