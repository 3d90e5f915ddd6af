package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a number with its currency.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// OpenRecord is the detail of an open directive.
type OpenRecord struct {
	EntryID       int
	Account       string
	Currencies    []string
	BookingMethod string
}

// CloseRecord is the detail of a close directive.
type CloseRecord struct {
	EntryID int
	Account string
}

// PadRecord is the detail of a pad directive.
type PadRecord struct {
	EntryID       int
	Account       string
	SourceAccount string
}

// BalanceRecord is the detail of a balance assertion. Tolerance and Diff are
// nil when not written.
type BalanceRecord struct {
	EntryID   int
	Account   string
	Amount    Amount
	Tolerance *Amount
	Diff      *Amount
}

// NoteRecord is the detail of a note directive.
type NoteRecord struct {
	EntryID int
	Account string
	Comment string
}

// DocumentRecord is the detail of a document directive.
type DocumentRecord struct {
	EntryID  int
	Account  string
	Filename string
}

// EventRecord is the detail of an event directive.
type EventRecord struct {
	EntryID     int
	Type        string
	Description string
}

// QueryRecord is the detail of a query directive.
type QueryRecord struct {
	EntryID     int
	Name        string
	QueryString string
}

// PriceRecord is the detail of a price directive.
type PriceRecord struct {
	EntryID  int
	Currency string
	Amount   Amount
}

// PostingRecord is one posting of a transaction after auto-posting expansion
// and number inference. Optional numbers are nil when absent, CostDate is the
// zero time when absent. Cost and price numbers are always per unit.
type PostingRecord struct {
	ID      int
	EntryID int
	Flag    string
	Account string

	Number   *decimal.Decimal
	Currency string

	CostNumber   *decimal.Decimal
	CostCurrency string
	CostDate     time.Time
	CostLabel    string

	PriceNumber   *decimal.Decimal
	PriceCurrency string
}

// HasCost reports whether any cost field is set.
func (p PostingRecord) HasCost() bool {
	return p.CostNumber != nil || p.CostCurrency != "" || !p.CostDate.IsZero() || p.CostLabel != ""
}

// MetadataRecord is one effective metadata pair. PostingID is zero for
// entry-level metadata.
type MetadataRecord struct {
	EntryID   int
	PostingID int
	Key       string
	Value     string
}

func (r OpenRecord) copy() OpenRecord {
	r.Currencies = append([]string(nil), r.Currencies...)
	return r
}

func (r BalanceRecord) copy() BalanceRecord {
	if r.Tolerance != nil {
		tolerance := *r.Tolerance
		r.Tolerance = &tolerance
	}
	if r.Diff != nil {
		diff := *r.Diff
		r.Diff = &diff
	}
	return r
}

func (p PostingRecord) copy() PostingRecord {
	p.Number = copyDecimal(p.Number)
	p.CostNumber = copyDecimal(p.CostNumber)
	p.PriceNumber = copyDecimal(p.PriceNumber)
	return p
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
