// Package errors renders load failures and diagnostics for people and for
// programs.
//
// TextFormatter writes bean-check style messages, optionally followed by the
// source lines around the problem. JSONFormatter writes the same information
// as structured JSON.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanload/analyzer"
	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/parser"
	"github.com/robinvdvleuten/beanload/validation"
)

// Formatter formats errors and diagnostics.
type Formatter interface {
	Format(err error) string
	FormatDiagnostics(diags []ledger.Diagnostic) string
}

// SourceFunc returns the content of a source file.
type SourceFunc func(filename string) ([]byte, error)

type positioned interface {
	GetPosition() ast.Position
}

type diagnosed interface {
	GetDiagnostic() ledger.Diagnostic
}

// TextFormatter formats errors for the command line.
type TextFormatter struct {
	source SourceFunc
	cache  map[string][]string
}

// TextFormatterOption configures a TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource shows the source lines around each located problem, read
// through fn. Unreadable files are shown without context.
func WithSource(fn SourceFunc) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = fn
	}
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{cache: make(map[string][]string)}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats err. Errors carrying a position or a diagnostic get the
// source context when a source is configured.
func (tf *TextFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var withPos positioned
	if stderrors.As(err, &withPos) {
		return tf.withContext(err.Error(), withPos.GetPosition())
	}

	var withDiag diagnosed
	if stderrors.As(err, &withDiag) {
		d := withDiag.GetDiagnostic()
		return tf.withContext(err.Error(), ast.Position{Filename: d.SourceFilename, Line: d.SourceLine})
	}

	return err.Error()
}

// FormatDiagnostics formats diagnostics one per block, separated by blank
// lines when source context is shown.
func (tf *TextFormatter) FormatDiagnostics(diags []ledger.Diagnostic) string {
	blocks := make([]string, 0, len(diags))
	for _, d := range diags {
		blocks = append(blocks, tf.withContext(d.String(), ast.Position{Filename: d.SourceFilename, Line: d.SourceLine}))
	}

	sep := "\n"
	if tf.source != nil {
		sep = "\n\n"
	}
	return strings.Join(blocks, sep)
}

// withContext appends up to two lines before and one line after pos, with a
// caret under the column when it is known.
func (tf *TextFormatter) withContext(message string, pos ast.Position) string {
	lines := tf.lines(pos.Filename)
	if lines == nil || pos.Line < 1 || pos.Line > len(lines) {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	start := max(pos.Line-3, 0)
	end := min(pos.Line, len(lines)-1)
	for i := start; i <= end; i++ {
		buf.WriteString("   ")
		buf.WriteString(lines[i])
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

func (tf *TextFormatter) lines(filename string) []string {
	if tf.source == nil || filename == "" {
		return nil
	}
	if lines, ok := tf.cache[filename]; ok {
		return lines
	}

	var lines []string
	if content, err := tf.source(filename); err == nil {
		lines = strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	}
	tf.cache[filename] = lines
	return lines
}

// JSONFormatter formats errors and diagnostics as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON is the JSON form of an error.
type ErrorJSON struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Position *PositionJSON     `json:"position,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// PositionJSON is a source location.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

// Report is the complete JSON output of a check.
type Report struct {
	Diagnostics []ledger.Diagnostic `json:"diagnostics"`
	Error       *ErrorJSON          `json:"error,omitempty"`
}

// Format formats err as a JSON object.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.ToJSON(err))
	return string(data)
}

// FormatDiagnostics formats diags as a JSON array.
func (jf *JSONFormatter) FormatDiagnostics(diags []ledger.Diagnostic) string {
	if diags == nil {
		diags = []ledger.Diagnostic{}
	}
	data, _ := json.MarshalIndent(diags, "", "  ")
	return string(data)
}

// FormatReport formats diagnostics and an optional error as one document.
func (jf *JSONFormatter) FormatReport(diags []ledger.Diagnostic, err error) string {
	report := Report{Diagnostics: diags}
	if report.Diagnostics == nil {
		report.Diagnostics = []ledger.Diagnostic{}
	}
	if err != nil {
		e := jf.ToJSON(err)
		report.Error = &e
	}
	data, _ := json.MarshalIndent(report, "", "  ")
	return string(data)
}

// ToJSON converts err. Type names the kind of failure: parse,
// include_cycle, validation, booking or error.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	e := ErrorJSON{Type: "error", Message: err.Error()}

	var (
		parseErr   *parser.ParseError
		cycleErr   *analyzer.IncludeCycleError
		failedErr  *validation.FailedError
		bookingErr *inventory.BookingError
	)
	switch {
	case stderrors.As(err, &parseErr):
		e.Type = "parse"
	case stderrors.As(err, &cycleErr):
		e.Type = "include_cycle"
		e.Details = map[string]string{"chain": strings.Join(cycleErr.Chain, " -> ")}
	case stderrors.As(err, &failedErr):
		e.Type = "validation"
		d := failedErr.First
		if d.SourceFilename != "" {
			e.Position = &PositionJSON{Filename: d.SourceFilename, Line: d.SourceLine}
		}
	case stderrors.As(err, &bookingErr):
		e.Type = "booking"
		e.Details = map[string]string{
			"account":  bookingErr.Account,
			"currency": bookingErr.Currency,
			"entry_id": fmt.Sprint(bookingErr.EntryID),
		}
	}

	var withPos positioned
	if stderrors.As(err, &withPos) {
		pos := withPos.GetPosition()
		e.Position = &PositionJSON{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
	}

	return e
}
