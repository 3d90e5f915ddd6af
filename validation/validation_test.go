package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// fixture builds ledger data one line at a time. Every entry is placed on
// the next line of main.beancount.
type fixture struct {
	b    *ledger.Builder
	line int
}

func newFixture() *fixture {
	return &fixture{b: ledger.NewBuilder()}
}

func (f *fixture) entry(day, typ string) int {
	f.line++
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	e := ledger.Entry{Date: d, Type: typ, SourceFilename: "main.beancount", SourceLine: f.line}
	if typ == ledger.TypeTransaction {
		e.Transaction = &ledger.TransactionPayload{Flag: "*"}
	}
	return f.b.AddEntry(e)
}

func (f *fixture) open(day, account string) {
	f.b.AddOpen(ledger.OpenRecord{EntryID: f.entry(day, ledger.TypeOpen), Account: account})
}

func (f *fixture) close(day, account string) {
	f.b.AddClose(ledger.CloseRecord{EntryID: f.entry(day, ledger.TypeClose), Account: account})
}

type leg struct {
	account  string
	units    string
	currency string
	cost     string
}

func (f *fixture) txn(day string, legs ...leg) {
	id := f.entry(day, ledger.TypeTransaction)
	for _, l := range legs {
		n := decimal.RequireFromString(l.units)
		p := ledger.PostingRecord{EntryID: id, Account: l.account, Number: &n, Currency: l.currency}
		if l.cost != "" {
			c := decimal.RequireFromString(l.cost)
			p.CostNumber = &c
			p.CostCurrency = "USD"
		}
		f.b.AddPosting(p)
	}
}

func (f *fixture) build() *ledger.Data {
	return f.b.Build()
}

func messages(diags []ledger.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

func TestValidAccountName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Assets:Cash", true},
		{"Assets:US:BofA:Checking", true},
		{"Assets:2024", true},
		{"Liabilities:Credit-Card", true},
		{"Aktiva:Bankkonto:Girokonto", true},
		{"Ausgaben:Ärzte", true},
		{"Ausgaben:Zahnärzte", true},
		{"Assets", false},
		{"assets:Cash", false},
		{"Assets:cash", false},
		{"Assets::Cash", false},
		{"Assets:Cash:", false},
		{"Assets:Cash Money", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidAccountName(tt.name))
		})
	}
}

func TestAccountNameRule(t *testing.T) {
	f := newFixture()
	f.open("2014-01-01", "Assets:Cash")
	f.open("2014-01-01", "Assets:cash")
	f.txn("2014-01-02",
		leg{account: "Assets:Cash", units: "1", currency: "USD"},
		leg{account: "expenses:Food", units: "-1", currency: "USD"},
		leg{account: "expenses:Food", units: "0", currency: "USD"},
	)

	diags := AccountNames().Validate(context.Background(), f.build())
	assert.Equal(t, []string{
		"main.beancount:2: ERROR: Invalid account name: Assets:cash",
		"main.beancount:3: ERROR: Invalid account name: expenses:Food",
	}, messages(diags))
}

func TestOpenCloseRule(t *testing.T) {
	f := newFixture()
	f.open("2014-01-05", "Assets:Cash")
	f.open("2014-01-06", "Assets:Cash")
	f.close("2014-01-07", "Assets:Bank")
	f.close("2014-01-01", "Assets:Cash")
	f.close("2014-02-01", "Assets:Cash")
	f.txn("2014-01-01", leg{account: "Assets:Cash", units: "1", currency: "USD"})
	f.txn("2014-03-01",
		leg{account: "Assets:Cash", units: "1", currency: "USD"},
		leg{account: "Assets:Cash", units: "-1", currency: "USD"},
	)

	diags := OpenClose().Validate(context.Background(), f.build())
	assert.Equal(t, []string{
		"main.beancount:2: ERROR: Duplicate open directive for Assets:Cash",
		"main.beancount:3: ERROR: Unopened account Assets:Bank is being closed",
		"main.beancount:4: ERROR: Account Assets:Cash is closed before it was opened",
		"main.beancount:5: ERROR: Duplicate close directive for Assets:Cash",
		"main.beancount:7: ERROR: Invalid reference to inactive account 'Assets:Cash'",
	}, messages(diags))
}

func TestOpenCloseAllowsUseOnCloseDate(t *testing.T) {
	f := newFixture()
	f.open("2014-01-01", "Assets:Cash")
	f.txn("2014-02-01", leg{account: "Assets:Cash", units: "1", currency: "USD"})
	f.close("2014-02-01", "Assets:Cash")

	assert.Equal(t, 0, len(OpenClose().Validate(context.Background(), f.build())))
}

func TestClosedHoldingsRule(t *testing.T) {
	f := newFixture()
	f.open("2014-01-01", "Assets:Brokerage")
	f.open("2014-01-01", "Assets:Sold")
	f.txn("2014-01-02",
		leg{account: "Assets:Brokerage", units: "10", currency: "HOOL", cost: "5"},
		leg{account: "Assets:Sold", units: "3", currency: "HOOL", cost: "5"},
	)
	f.txn("2014-01-03", leg{account: "Assets:Sold", units: "-3", currency: "HOOL"})
	f.close("2014-02-01", "Assets:Brokerage")
	f.close("2014-02-01", "Assets:Sold")

	diags := ClosedHoldings().Validate(context.Background(), f.build())
	assert.Equal(t, []string{
		"main.beancount:5: ERROR: Account Assets:Brokerage closed with holdings at cost of HOOL",
	}, messages(diags))
}

func TestClosedHoldingsEmptyAfterSale(t *testing.T) {
	f := newFixture()
	f.open("2014-01-01", "Assets:Brokerage")
	f.close("2014-03-01", "Assets:Brokerage")
	f.txn("2014-02-02", leg{account: "Assets:Brokerage", units: "-10", currency: "HOOL"})
	f.txn("2014-02-01", leg{account: "Assets:Brokerage", units: "10", currency: "HOOL", cost: "5"})

	diags := ClosedHoldings(inventory.LIFO).Validate(context.Background(), f.build())
	assert.Equal(t, 0, len(diags))
}

func TestRunnerCollectsEveryRule(t *testing.T) {
	f := newFixture()
	f.open("2014-01-01", "assets:Cash")
	f.close("2014-01-02", "Assets:Bank")
	data := f.build()

	diags, err := NewRunner(AccountNames(), OpenClose()).Run(context.Background(), data)
	assert.Error(t, err)
	assert.Equal(t, 2, len(diags))

	var failed *FailedError
	assert.True(t, errors.As(err, &failed))
	assert.Equal(t, 1, failed.First.SourceLine)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.EqualError(t, err, "main.beancount:1: Invalid account name: assets:Cash")
}

func TestRunnerPassesWarnings(t *testing.T) {
	warn := ruleFunc{name: "warn", diags: []ledger.Diagnostic{{Level: ledger.Warning, Message: "careful"}}}

	diags, err := NewRunner(warn).Run(context.Background(), newFixture().build())
	assert.NoError(t, err)
	assert.Equal(t, []string{"WARNING: careful"}, messages(diags))
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(AccountNames()).Run(ctx, newFixture().build())
	assert.True(t, errors.Is(err, context.Canceled))
}

type ruleFunc struct {
	name  string
	diags []ledger.Diagnostic
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Validate(context.Context, *ledger.Data) []ledger.Diagnostic { return r.diags }

func TestRegistry(t *testing.T) {
	rules, err := Resolve(nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultRules, NewRunner(rules...).Rules())

	_, err = Lookup("no-such-rule")
	assert.True(t, errors.Is(err, ErrUnknownRule))
	assert.EqualError(t, err, `unknown validation rule "no-such-rule"`)

	Register("test-warn", func() Rule { return ruleFunc{name: "test-warn"} })
	rule, err := Lookup("test-warn")
	assert.NoError(t, err)
	assert.Equal(t, "test-warn", rule.Name())
	assert.True(t, slices.Contains(Names(), "closed-holdings"))
	assert.True(t, slices.Contains(Names(), "test-warn"))
}
