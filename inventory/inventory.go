package inventory

import (
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// averageMinScale is the minimum number of fraction digits kept when
// blending costs under the Average method.
const averageMinScale = 8

var two = decimal.NewFromInt(2)

// CommodityInventory holds the lots of one currency in one account.
// Positive lots are kept oldest first, as are short lots.
type CommodityInventory struct {
	currency string
	lots     []Lot
	shorts   []Lot
}

// Currency returns the commodity tracked by the inventory.
func (c *CommodityInventory) Currency() string {
	return c.currency
}

// Lots returns copies of the positive lots followed by the short lots.
func (c *CommodityInventory) Lots() []Lot {
	out := make([]Lot, 0, len(c.lots)+len(c.shorts))
	for _, lot := range c.lots {
		out = append(out, lot.copy())
	}
	for _, lot := range c.shorts {
		out = append(out, lot.copy())
	}
	return out
}

// ShortLots returns copies of the short lots.
func (c *CommodityInventory) ShortLots() []Lot {
	out := make([]Lot, len(c.shorts))
	for i, lot := range c.shorts {
		out[i] = lot.copy()
	}
	return out
}

// Units returns the net units held, short lots included.
func (c *CommodityInventory) Units() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range c.lots {
		total = total.Add(lot.Units)
	}
	for _, lot := range c.shorts {
		total = total.Add(lot.Units)
	}
	return total
}

// HasCostedHoldings reports whether any positive lot carries a cost.
func (c *CommodityInventory) HasCostedHoldings() bool {
	for _, lot := range c.lots {
		if lot.IsCosted() {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the inventory holds no lots at all.
func (c *CommodityInventory) IsEmpty() bool {
	return len(c.lots) == 0 && len(c.shorts) == 0
}

func (c *CommodityInventory) apply(units decimal.Decimal, p ledger.PostingRecord, method Method) error {
	if units.IsPositive() {
		return c.increase(units, p, method)
	}
	return c.decrease(units.Abs(), p, method)
}

// increase closes short lots first, oldest first, then books what remains.
// Under STRICT only the remainder left after shorts needs a cost.
func (c *CommodityInventory) increase(units decimal.Decimal, p ledger.PostingRecord, method Method) error {
	if method == Strict && (p.CostNumber == nil || p.CostCurrency == "") && units.GreaterThan(c.owed()) {
		return ErrStrictBookingRequiresCost
	}

	remaining := c.offsetShorts(units)
	if !remaining.IsPositive() {
		return nil
	}

	if method == Average {
		c.addAverage(remaining, p)
		return nil
	}

	c.lots = append(c.lots, lotFromPosting(remaining, p))
	return nil
}

// owed is the total number of units held short.
func (c *CommodityInventory) owed() decimal.Decimal {
	total := decimal.Zero
	for _, short := range c.shorts {
		total = total.Add(short.Units.Abs())
	}
	return total
}

func (c *CommodityInventory) offsetShorts(units decimal.Decimal) decimal.Decimal {
	remaining := units
	for len(c.shorts) > 0 && remaining.IsPositive() {
		short := &c.shorts[0]
		owed := short.Units.Abs()

		if owed.GreaterThan(remaining) {
			short.Units = short.Units.Add(remaining)
			return decimal.Zero
		}

		remaining = remaining.Sub(owed)
		c.shorts = slices.Delete(c.shorts, 0, 1)
	}
	return remaining
}

// addAverage merges units into the single averaged lot. The blended cost is
// (existing cost * existing units + new cost * new units) / total units,
// rounded half to even at max(existing scale, new scale, 8) digits.
func (c *CommodityInventory) addAverage(units decimal.Decimal, p ledger.PostingRecord) {
	if len(c.lots) == 0 {
		c.lots = append(c.lots, lotFromPosting(units, p))
		return
	}

	existing := c.lots[0]
	total := existing.Units.Add(units)

	costCurrency := existing.CostCurrency
	if costCurrency == "" {
		costCurrency = p.CostCurrency
	}

	cost := existing.CostNumber
	switch {
	case existing.CostNumber != nil && p.CostNumber != nil:
		scale := max(scaleOf(*existing.CostNumber), scaleOf(*p.CostNumber), averageMinScale)
		value := existing.CostNumber.Mul(existing.Units).Add(p.CostNumber.Mul(units))
		blended := divRoundHalfEven(value, total, scale)
		cost = &blended
	case existing.CostNumber == nil && p.CostNumber != nil:
		adopted := *p.CostNumber
		cost = &adopted
	}

	c.lots = []Lot{{Units: total, CostNumber: cost, CostCurrency: costCurrency}}
}

// decrease consumes lots per method. Whatever cannot be matched opens a
// short lot, except under Strict.
func (c *CommodityInventory) decrease(units decimal.Decimal, p ledger.PostingRecord, method Method) error {
	if method == Strict {
		return c.decreaseStrict(units, p)
	}

	remaining := units
	for len(c.lots) > 0 && remaining.IsPositive() {
		i := 0
		if method == LIFO {
			i = len(c.lots) - 1
		}
		lot := &c.lots[i]

		if lot.Units.GreaterThan(remaining) {
			lot.Units = lot.Units.Sub(remaining)
			remaining = decimal.Zero
			break
		}

		remaining = remaining.Sub(lot.Units)
		c.lots = slices.Delete(c.lots, i, i+1)
	}

	if remaining.IsPositive() {
		c.shorts = append(c.shorts, Lot{Units: remaining.Neg()})
	}
	return nil
}

func (c *CommodityInventory) decreaseStrict(units decimal.Decimal, p ledger.PostingRecord) error {
	match := -1
	for i, lot := range c.lots {
		if !lot.matches(p) {
			continue
		}
		if match >= 0 {
			return ErrStrictLotAmbiguous
		}
		match = i
	}

	if match < 0 {
		return ErrStrictLotNotFound
	}

	lot := &c.lots[match]
	if lot.Units.LessThan(units) {
		return ErrStrictInsufficientUnits
	}

	lot.Units = lot.Units.Sub(units)
	if lot.Units.IsZero() {
		c.lots = slices.Delete(c.lots, match, match+1)
	}
	return nil
}

// AccountInventory holds the commodity inventories of one account.
type AccountInventory struct {
	account     string
	commodities map[string]*CommodityInventory
}

func newAccountInventory(account string) *AccountInventory {
	return &AccountInventory{
		account:     account,
		commodities: make(map[string]*CommodityInventory),
	}
}

// Account returns the account name.
func (a *AccountInventory) Account() string {
	return a.account
}

// Currencies returns the tracked currencies, sorted.
func (a *AccountInventory) Currencies() []string {
	currencies := maps.Keys(a.commodities)
	slices.Sort(currencies)
	return currencies
}

// Commodity returns the inventory of one currency.
func (a *AccountInventory) Commodity(currency string) (*CommodityInventory, bool) {
	c, ok := a.commodities[currency]
	return c, ok
}

func (a *AccountInventory) commodity(currency string) *CommodityInventory {
	c, ok := a.commodities[currency]
	if !ok {
		c = &CommodityInventory{currency: currency}
		a.commodities[currency] = c
	}
	return c
}

// scaleOf returns the number of fraction digits of d.
func scaleOf(d decimal.Decimal) int32 {
	return -d.Exponent()
}

// divRoundHalfEven divides n by d and rounds the quotient half to even at
// scale fraction digits. The quotient is exact before rounding.
func divRoundHalfEven(n, d decimal.Decimal, scale int32) decimal.Decimal {
	q, r := n.QuoRem(d, scale)
	if r.IsZero() {
		return q
	}

	// Compare the remainder with half a unit in the last place of q.
	cmp := r.Abs().Mul(two).Cmp(d.Abs().Shift(-scale))
	if cmp < 0 {
		return q
	}
	if cmp == 0 && q.Shift(scale).Mod(two).IsZero() {
		return q
	}

	ulp := decimal.New(1, -scale)
	if n.Sign()*d.Sign() < 0 {
		return q.Sub(ulp)
	}
	return q.Add(ulp)
}
