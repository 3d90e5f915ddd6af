// Package validation runs rules over a loaded ledger.
//
// A [Rule] inspects a [ledger.Data] and reports problems as diagnostics. The
// [Runner] runs every rule to completion, collecting all diagnostics, and
// fails with a [*FailedError] when any of them is an error:
//
//	runner := validation.NewRunner(validation.AccountNames(), validation.OpenClose())
//	diags, err := runner.Run(ctx, data)
//
// Rules are registered by name so configuration can select them, see
// [Lookup] and [Register].
package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/telemetry"
)

// ErrValidationFailed is matched by every *FailedError.
var ErrValidationFailed = errors.New("validation failed")

// Rule checks one property of a ledger.
type Rule interface {
	Name() string
	Validate(ctx context.Context, data *ledger.Data) []ledger.Diagnostic
}

// FailedError is returned by Runner.Run when a rule reported an error.
// First is the first error diagnostic in rule order.
type FailedError struct {
	First ledger.Diagnostic
}

func (e *FailedError) Error() string {
	d := e.First
	switch {
	case d.SourceFilename != "" && d.SourceLine > 0:
		return fmt.Sprintf("%s:%d: %s", d.SourceFilename, d.SourceLine, d.Message)
	case d.SourceFilename != "":
		return fmt.Sprintf("%s: %s", d.SourceFilename, d.Message)
	default:
		return d.Message
	}
}

// GetDiagnostic returns the diagnostic that failed validation.
func (e *FailedError) GetDiagnostic() ledger.Diagnostic {
	return e.First
}

func (e *FailedError) Unwrap() error {
	return ErrValidationFailed
}

// Runner runs a fixed list of rules in order.
type Runner struct {
	rules []Rule
}

// NewRunner creates a runner for rules.
func NewRunner(rules ...Rule) *Runner {
	return &Runner{rules: rules}
}

// Rules returns the names of the rules in run order.
func (r *Runner) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}

// Run validates data with every rule. The diagnostics of all rules are
// returned, also on failure. Cancelling ctx stops between rules.
func (r *Runner) Run(ctx context.Context, data *ledger.Data) ([]ledger.Diagnostic, error) {
	var diags []ledger.Diagnostic
	for _, rule := range r.rules {
		if err := ctx.Err(); err != nil {
			return diags, err
		}

		rctx, timer := telemetry.Start(ctx, "validation."+rule.Name())
		diags = append(diags, rule.Validate(rctx, data)...)
		timer.End()
	}

	if first, ok := ledger.FirstError(diags); ok {
		return diags, &FailedError{First: first}
	}

	return diags, nil
}

// errorAt builds an error diagnostic at the source location of entry.
func errorAt(entry ledger.Entry, format string, args ...any) ledger.Diagnostic {
	return ledger.Diagnostic{
		Level:          ledger.Error,
		Message:        fmt.Sprintf(format, args...),
		SourceFilename: entry.SourceFilename,
		SourceLine:     entry.SourceLine,
	}
}
