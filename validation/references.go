package validation

import (
	"github.com/robinvdvleuten/beanload/ledger"
	"golang.org/x/exp/slices"
)

// reference is one use of an account by an entry.
type reference struct {
	entryID int
	account string
	kind    string
}

// references lists every account reference in data, sorted by entry id.
// References within one entry keep the order of their records.
func references(data *ledger.Data) []reference {
	var refs []reference
	add := func(id int, account, kind string) {
		if account != "" {
			refs = append(refs, reference{entryID: id, account: account, kind: kind})
		}
	}

	for _, r := range data.Opens() {
		add(r.EntryID, r.Account, ledger.TypeOpen)
	}
	for _, r := range data.Closes() {
		add(r.EntryID, r.Account, ledger.TypeClose)
	}
	for _, r := range data.Pads() {
		add(r.EntryID, r.Account, ledger.TypePad)
		add(r.EntryID, r.SourceAccount, ledger.TypePad)
	}
	for _, r := range data.Balances() {
		add(r.EntryID, r.Account, ledger.TypeBalance)
	}
	for _, r := range data.Notes() {
		add(r.EntryID, r.Account, ledger.TypeNote)
	}
	for _, r := range data.Documents() {
		add(r.EntryID, r.Account, ledger.TypeDocument)
	}
	for _, p := range data.Postings() {
		add(p.EntryID, p.Account, ledger.TypeTransaction)
	}

	slices.SortStableFunc(refs, func(a, b reference) int {
		return a.entryID - b.entryID
	})
	return refs
}
