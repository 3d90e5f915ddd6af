// Package output styles text for the terminal.
//
// Colors follow the capabilities of the writer: a pipe or a file gets plain
// text, so the same code serves terminals and redirected output.
package output

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/robinvdvleuten/beanload/ledger"
)

// Styles renders styled strings for one writer.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates styles matching the color support of w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

// Plain creates styles that never emit escape sequences.
func Plain(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

func (s *Styles) color(text, color string, bold bool) string {
	styled := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		styled = styled.Bold()
	}
	return styled.String()
}

// Success is green and bold.
func (s *Styles) Success(text string) string { return s.color(text, "2", true) }

// Error is red and bold.
func (s *Styles) Error(text string) string { return s.color(text, "1", true) }

// Warning is yellow and bold.
func (s *Styles) Warning(text string) string { return s.color(text, "3", true) }

func (s *Styles) FilePath(text string) string { return s.color(text, "6", false) }

func (s *Styles) Account(text string) string { return s.color(text, "3", false) }

// Amount styles numbers and currencies.
func (s *Styles) Amount(text string) string { return s.color(text, "5", false) }

func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim styles secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing styles a duration: red when slow, dimmed otherwise.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, "1", false)
	}
	return s.Dim(text)
}

// Level styles text with the color of a diagnostic level.
func (s *Styles) Level(level ledger.Level, text string) string {
	switch level {
	case ledger.Error:
		return s.Error(text)
	case ledger.Warning:
		return s.Warning(text)
	default:
		return s.Dim(text)
	}
}

// Output returns the underlying termenv output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
