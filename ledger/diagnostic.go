package ledger

import "fmt"

// Level is the severity of a Diagnostic.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalText renders the level by name, so JSON output reads "WARNING"
// rather than 1.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Diagnostic is a message collected while loading. SourceLine is 0 when the
// message is not tied to a line.
type Diagnostic struct {
	Level          Level  `json:"level"`
	Message        string `json:"message"`
	SourceFilename string `json:"filename,omitempty"`
	SourceLine     int    `json:"line,omitempty"`
}

// String formats the diagnostic as "file:line: LEVEL: message".
func (d Diagnostic) String() string {
	switch {
	case d.SourceFilename != "" && d.SourceLine > 0:
		return fmt.Sprintf("%s:%d: %s: %s", d.SourceFilename, d.SourceLine, d.Level, d.Message)
	case d.SourceFilename != "":
		return fmt.Sprintf("%s: %s: %s", d.SourceFilename, d.Level, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Level, d.Message)
	}
}

// FirstError returns the first diagnostic with level Error.
func FirstError(diags []Diagnostic) (Diagnostic, bool) {
	for _, d := range diags {
		if d.Level == Error {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// Count returns the number of diagnostics at the given level.
func Count(diags []Diagnostic, level Level) int {
	n := 0
	for _, d := range diags {
		if d.Level == level {
			n++
		}
	}
	return n
}
