package loader

import (
	"errors"

	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
)

// Error is returned by Load for every failure. Diagnostics holds what was
// collected before the failure, including a diagnostic for a booking error.
type Error struct {
	Diagnostics []ledger.Diagnostic
	Err         error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// bookingDiagnostic turns a booking failure into an error diagnostic at the
// transaction that caused it.
func bookingDiagnostic(data *ledger.Data, err error) []ledger.Diagnostic {
	var bookingErr *inventory.BookingError
	if !errors.As(err, &bookingErr) {
		return nil
	}

	d := ledger.Diagnostic{Level: ledger.Error, Message: bookingErr.Error()}
	if entry, ok := data.Entry(bookingErr.EntryID); ok {
		d.SourceFilename = entry.SourceFilename
		d.SourceLine = entry.SourceLine
	}
	return []ledger.Diagnostic{d}
}
