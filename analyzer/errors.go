package analyzer

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanload/ast"
)

// IncludeCycleError is returned when a file includes itself, directly or
// through other files. Chain lists the active include chain ending with the
// file that closed the cycle.
type IncludeCycleError struct {
	Pos   ast.Position
	Chain []string
}

func (e *IncludeCycleError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d", e.Pos.Line)
	}

	return fmt.Sprintf("%s: Recursive include detected: %s", location, strings.Join(e.Chain, " -> "))
}

// GetPosition returns the location of the include that closed the cycle.
func (e *IncludeCycleError) GetPosition() ast.Position {
	return e.Pos
}
