package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/shopspring/decimal"
)

// Lot is a quantity of one commodity held at an optional cost. Short lots
// have negative units and no cost. Lots never hold zero units.
type Lot struct {
	Units        decimal.Decimal
	CostNumber   *decimal.Decimal
	CostCurrency string
	CostDate     time.Time
	CostLabel    string
}

// IsCosted reports whether any cost field is set.
func (l Lot) IsCosted() bool {
	return l.CostNumber != nil || l.CostCurrency != "" || !l.CostDate.IsZero() || l.CostLabel != ""
}

// IsShort reports whether the lot holds negative units.
func (l Lot) IsShort() bool {
	return l.Units.IsNegative()
}

// String renders the lot as "UNITS {COST, DATE, "LABEL"}".
func (l Lot) String() string {
	if !l.IsCosted() {
		return l.Units.String()
	}

	parts := make([]string, 0, 3)
	if l.CostNumber != nil || l.CostCurrency != "" {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s", costString(l.CostNumber), l.CostCurrency)))
	}
	if !l.CostDate.IsZero() {
		parts = append(parts, l.CostDate.Format("2006-01-02"))
	}
	if l.CostLabel != "" {
		parts = append(parts, fmt.Sprintf("%q", l.CostLabel))
	}

	return fmt.Sprintf("%s {%s}", l.Units.String(), strings.Join(parts, ", "))
}

func costString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (l Lot) copy() Lot {
	if l.CostNumber != nil {
		cost := *l.CostNumber
		l.CostNumber = &cost
	}
	return l
}

// lotFromPosting creates a lot carrying the posting's cost fields.
func lotFromPosting(units decimal.Decimal, p ledger.PostingRecord) Lot {
	lot := Lot{
		Units:        units,
		CostCurrency: p.CostCurrency,
		CostDate:     p.CostDate,
		CostLabel:    p.CostLabel,
	}
	if p.CostNumber != nil {
		cost := *p.CostNumber
		lot.CostNumber = &cost
	}
	return lot
}

// matches reports whether every cost field the posting specifies equals the
// lot's. Fields left empty on the posting match anything.
func (l Lot) matches(p ledger.PostingRecord) bool {
	if p.CostNumber != nil && (l.CostNumber == nil || !p.CostNumber.Equal(*l.CostNumber)) {
		return false
	}
	if p.CostCurrency != "" && p.CostCurrency != l.CostCurrency {
		return false
	}
	if !p.CostDate.IsZero() && !p.CostDate.Equal(l.CostDate) {
		return false
	}
	if p.CostLabel != "" && p.CostLabel != l.CostLabel {
		return false
	}
	return true
}
