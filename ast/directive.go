package ast

var (
	_ Directive = &Open{}
	_ Directive = &Close{}
	_ Directive = &Pad{}
	_ Directive = &Balance{}
	_ Directive = &Note{}
	_ Directive = &Document{}
	_ Directive = &Event{}
	_ Directive = &Query{}
	_ Directive = &Price{}
	_ Directive = &Generic{}
	_ Directive = &Transaction{}
)

// Open declares the opening of an account, optionally constraining the
// currencies it may hold and its booking method.
//
// Example:
//
//	2014-05-01 open Assets:US:BofA:Checking USD
//	2014-05-01 open Assets:Investments:Brokerage USD,EUR "FIFO"
type Open struct {
	Header
	Account       string
	Currencies    []string
	BookingMethod string
}

// Close declares the closing of an account.
//
// Example:
//
//	2015-09-23 close Assets:US:BofA:Checking
type Close struct {
	Header
	Account string
}

// Pad inserts a balancing transaction between Account and SourceAccount up
// to the next balance assertion.
//
// Example:
//
//	2014-01-01 pad Assets:US:BofA:Checking Equity:Opening-Balances
type Pad struct {
	Header
	Account       string
	SourceAccount string
}

// Balance asserts the balance of an account at the beginning of a date.
// Tolerance is the explicit "~ 0.01" tolerance, Diff an optional trailing
// amount recording a known difference.
//
// Example:
//
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
//	2014-08-09 balance Assets:Cash 100.00 ~ 0.01 USD
type Balance struct {
	Header
	Account   string
	Amount    *Amount
	Tolerance *Amount
	Diff      *Amount
}

// Note attaches a dated comment to an account.
type Note struct {
	Header
	Account string
	Comment string
}

// Document associates an external file with an account.
type Document struct {
	Header
	Account  string
	Filename string
}

// Event records the value of a named variable from a date onwards.
//
// Example:
//
//	2014-07-09 event "location" "Paris, France"
type Event struct {
	Header
	EventType   string
	Description string
}

// Query stores a named query.
type Query struct {
	Header
	Name        string
	QueryString string
}

// Price records the price of a currency in another currency.
//
// Example:
//
//	2014-07-09 price HOOL 579.18 USD
type Price struct {
	Header
	Currency string
	Amount   *Amount
}

// Generic is any other well-formed dated directive (commodity, custom, or a
// keyword this parser has no dedicated node for). Its content is preserved in
// Header.Lines.
type Generic struct {
	Header
}
