package inventory

import (
	"github.com/robinvdvleuten/beanload/ledger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Engine books postings into per-account inventories. It is not safe for
// concurrent use.
type Engine struct {
	method         Method
	accountMethods map[string]Method
	accounts       map[string]*AccountInventory
}

// New creates an engine that books with method unless an account overrides it.
func New(method Method) *Engine {
	return &Engine{
		method:         method,
		accountMethods: make(map[string]Method),
		accounts:       make(map[string]*AccountInventory),
	}
}

// Method returns the engine's default booking method.
func (e *Engine) Method() Method {
	return e.method
}

// SetAccountMethod overrides the booking method for one account.
func (e *Engine) SetAccountMethod(account string, method Method) {
	e.accountMethods[account] = method
}

// MethodFor returns the booking method used for account.
func (e *Engine) MethodFor(account string) Method {
	if m, ok := e.accountMethods[account]; ok {
		return m
	}
	return e.method
}

// Book applies one posting and returns the resulting lots of its
// (account, currency) pair. Postings without units, account or currency
// are ignored and return nil. A failed booking leaves the inventory as it
// was before the call.
func (e *Engine) Book(p ledger.PostingRecord) ([]Lot, error) {
	if p.Number == nil || p.Number.IsZero() || p.Account == "" || p.Currency == "" {
		return nil, nil
	}

	account, ok := e.accounts[p.Account]
	if !ok {
		account = newAccountInventory(p.Account)
		e.accounts[p.Account] = account
	}

	commodity := account.commodity(p.Currency)
	if err := commodity.apply(*p.Number, p, e.MethodFor(p.Account)); err != nil {
		if commodity.IsEmpty() {
			delete(account.commodities, p.Currency)
		}
		if len(account.commodities) == 0 {
			delete(e.accounts, p.Account)
		}
		return nil, &BookingError{
			Account:   p.Account,
			Currency:  p.Currency,
			EntryID:   p.EntryID,
			PostingID: p.ID,
			Err:       err,
		}
	}

	return commodity.Lots(), nil
}

// BookAll books postings in order and stops at the first failure.
func (e *Engine) BookAll(postings []ledger.PostingRecord) error {
	for _, p := range postings {
		if _, err := e.Book(p); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns copies of the lots held for (account, currency): positive
// lots first, then short lots.
func (e *Engine) Snapshot(account, currency string) []Lot {
	c, ok := e.lookup(account, currency)
	if !ok {
		return nil
	}
	return c.Lots()
}

// ShortLots returns copies of the short lots held for (account, currency).
func (e *Engine) ShortLots(account, currency string) []Lot {
	c, ok := e.lookup(account, currency)
	if !ok {
		return nil
	}
	return c.ShortLots()
}

// HasCostedHoldings reports whether account holds a positive lot of currency
// with any cost field set.
func (e *Engine) HasCostedHoldings(account, currency string) bool {
	c, ok := e.lookup(account, currency)
	return ok && c.HasCostedHoldings()
}

// Accounts returns the names of every account with an inventory, sorted.
func (e *Engine) Accounts() []string {
	names := maps.Keys(e.accounts)
	slices.Sort(names)
	return names
}

// Account returns the inventory of one account.
func (e *Engine) Account(name string) (*AccountInventory, bool) {
	a, ok := e.accounts[name]
	return a, ok
}

func (e *Engine) lookup(account, currency string) (*CommodityInventory, bool) {
	a, ok := e.accounts[account]
	if !ok {
		return nil, false
	}
	return a.Commodity(currency)
}
