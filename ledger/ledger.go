// Package ledger provides the canonical model produced by loading a Beancount
// file: a list of entries with sequential ids and, keyed by those ids, one
// detail record per directive kind plus the postings and metadata of every
// entry.
//
// The entry id is the only link between an entry and its details. Details
// never point back at their entry and no detail exists without an entry;
// [Builder] enforces this while the model is assembled.
//
// A [Data] value is immutable. Accessors return copies, so callers may keep
// and modify what they receive without affecting the ledger:
//
//	data := result.Data
//	for _, entry := range data.Entries() {
//		for _, posting := range data.PostingsFor(entry.ID) {
//			fmt.Println(entry.Date.Format("2006-01-02"), posting.Account)
//		}
//	}
package ledger

import (
	"strings"
	"time"
)

// Directive types as stored in Entry.Type. Directives without a dedicated
// record keep the keyword they were written with (for example "commodity").
const (
	TypeTransaction = "txn"
	TypeOpen        = "open"
	TypeClose       = "close"
	TypePad         = "pad"
	TypeBalance     = "balance"
	TypeNote        = "note"
	TypeDocument    = "document"
	TypeEvent       = "event"
	TypeQuery       = "query"
	TypePrice       = "price"
)

// Entry is one dated directive after semantic analysis.
type Entry struct {
	ID             int
	Date           time.Time
	Type           string
	SourceFilename string
	SourceLine     int

	// Transaction is set for entries of type "txn" only.
	Transaction *TransactionPayload
}

// TransactionPayload carries the transaction-only fields of an entry. Tags
// and Links are rendered as comma-joined strings in their final order; an
// empty string means none.
type TransactionPayload struct {
	Flag      string
	Payee     string
	Narration string
	Tags      string
	Links     string
}

// TagList returns the tags as a slice.
func (p *TransactionPayload) TagList() []string {
	return splitList(p.Tags)
}

// LinkList returns the links as a slice.
func (p *TransactionPayload) LinkList() []string {
	return splitList(p.Links)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// IsTransaction reports whether the entry is a transaction.
func (e Entry) IsTransaction() bool {
	return e.Type == TypeTransaction
}

func (e Entry) copy() Entry {
	if e.Transaction != nil {
		payload := *e.Transaction
		e.Transaction = &payload
	}
	return e
}
