package inventory

import (
	"context"
	"strings"

	"github.com/robinvdvleuten/beanload/ledger"
	"golang.org/x/exp/slices"
)

// EntryOrder returns the entries of data sorted by date, ties broken by id.
// This is the order postings are booked in.
func EntryOrder(data *ledger.Data) []ledger.Entry {
	entries := data.Entries()
	slices.SortStableFunc(entries, func(a, b ledger.Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return entries
}

// UseOpenMethods applies the booking method of every open directive that
// declares one. Unknown method names are skipped.
func (e *Engine) UseOpenMethods(data *ledger.Data) {
	for _, open := range data.Opens() {
		if strings.TrimSpace(open.BookingMethod) == "" {
			continue
		}
		if m, err := ParseMethod(open.BookingMethod); err == nil {
			e.SetAccountMethod(open.Account, m)
		}
	}
}

// Replay books the postings of data in EntryOrder. When visit is non-nil it
// is called for every entry once that entry's postings are booked. Replay
// stops at the first booking failure or visit error.
func (e *Engine) Replay(ctx context.Context, data *ledger.Data, visit func(ledger.Entry) error) error {
	for i, entry := range EntryOrder(data) {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if entry.IsTransaction() {
			if err := e.BookAll(data.PostingsFor(entry.ID)); err != nil {
				return err
			}
		}

		if visit != nil {
			if err := visit(entry); err != nil {
				return err
			}
		}
	}
	return nil
}
