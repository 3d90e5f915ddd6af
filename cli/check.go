package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanload/errors"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/loader"
)

type CheckCmd struct {
	File string `help:"Beancount input filename." arg:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.withTelemetry(context.Background(), commandName("check", cmd.File), ctx.Stderr)
	defer report()

	ldr, err := globals.newLoader(cmd.File, nil)
	if err != nil {
		return err
	}

	result, err := ldr.Load(runCtx, cmd.File)
	if globals.Format == "json" {
		return writeJSONReport(ctx.Stdout, result, err)
	}
	return writeCheckReport(ctx.Stdout, ctx.Stderr, result, err)
}

// loadDiagnostics returns the diagnostics of a load, successful or not.
func loadDiagnostics(result *loader.Result, err error) []ledger.Diagnostic {
	if result != nil {
		return result.Diagnostics
	}
	var loadErr *loader.Error
	if stdErrors.As(err, &loadErr) {
		return loadErr.Diagnostics
	}
	return nil
}

// writeCheckReport prints diagnostics and the outcome in bean-check style.
func writeCheckReport(stdout, stderr io.Writer, result *loader.Result, err error) error {
	tf := errors.NewTextFormatter(errors.WithSource(os.ReadFile))

	diags := loadDiagnostics(result, err)
	if len(diags) > 0 {
		_, _ = fmt.Fprintln(stderr, tf.FormatDiagnostics(diags))
		_, _ = fmt.Fprintln(stderr)
	}

	if err != nil {
		// A booking failure is already among the diagnostics.
		if !hasError(diags) {
			_, _ = fmt.Fprintln(stderr, tf.Format(err))
			_, _ = fmt.Fprintln(stderr)
		}
		printError(stderr, failureSummary(err))
		return NewCommandError(1)
	}

	if n := ledger.Count(diags, ledger.Error); n > 0 {
		printError(stderr, fmt.Sprintf("%d error(s) found", n))
		return NewCommandError(1)
	}

	summary := fmt.Sprintf("Check passed: %d entries in %s", result.Data.Len(), pathStyle.Render(result.Root))
	if n := ledger.Count(diags, ledger.Warning); n > 0 {
		summary += fmt.Sprintf(", %d warning(s)", n)
	}
	printSuccess(stdout, summary)
	return nil
}

func writeJSONReport(w io.Writer, result *loader.Result, err error) error {
	diags := loadDiagnostics(result, err)
	_, _ = fmt.Fprintln(w, errors.NewJSONFormatter().FormatReport(diags, err))
	if err != nil || hasError(diags) {
		return NewCommandError(1)
	}
	return nil
}

func hasError(diags []ledger.Diagnostic) bool {
	_, ok := ledger.FirstError(diags)
	return ok
}

func failureSummary(err error) string {
	var jf errors.JSONFormatter
	switch jf.ToJSON(err).Type {
	case "parse":
		return "parse error"
	case "include_cycle":
		return "include error"
	case "validation":
		return "validation failed"
	case "booking":
		return "booking failed"
	default:
		return "load failed"
	}
}
