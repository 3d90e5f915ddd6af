package ast

import "github.com/shopspring/decimal"

// Transaction records movements between accounts. Metadata lives on the
// embedded Header. Comments holds the text of comment lines inside the
// transaction body and of the trailing comment on the header line.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine" #trip ^invoice-12
//	  Liabilities:CreditCard:CapitalOne         -37.45 USD
//	  Expenses:Restaurant
type Transaction struct {
	Header
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Postings  []*Posting
	Comments  []string
	UsedPipe  bool
}

// Posting is one leg of a transaction. Indent is the number of leading
// whitespace characters on the posting line; metadata and comment lines
// indented deeper than the posting belong to it.
type Posting struct {
	Pos      Position
	Flag     string
	Account  string
	Amount   *Amount
	Cost     *Cost
	Price    *PriceAnnotation
	Indent   int
	Metadata []*Meta
	Comments []string
}

// Amount is a number with a currency. On postings either part may be
// missing and is inferred later.
type Amount struct {
	Number   *decimal.Decimal
	Currency string
}

// Cost is a cost basis specification. Total is set for the "{{...}}" form,
// where Number is the total cost rather than the per-unit cost. Date is kept
// as written.
//
//	10 HOOL {518.73 USD}
//	10 HOOL {518.73 USD, 2014-05-01, "first-lot"}
//	10 HOOL {{5187.30 USD}}
type Cost struct {
	Number   *decimal.Decimal
	Currency string
	Date     string
	Label    string
	Total    bool
}

// IsEmpty reports whether the cost is the "{}" any-lot specification.
func (c *Cost) IsEmpty() bool {
	return c != nil && c.Number == nil && c.Currency == "" && c.Date == "" && c.Label == ""
}

// PriceAnnotation is the "@ price" or "@@ total" suffix of a posting.
type PriceAnnotation struct {
	Number   *decimal.Decimal
	Currency string
	Total    bool
}
