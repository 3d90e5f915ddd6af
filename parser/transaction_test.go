package parser

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanload/ast"
)

func parseTransaction(t *testing.T, input string) *ast.Transaction {
	t.Helper()
	result, err := ParseString(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Statements))

	txn, ok := result.Statements[0].(*ast.Transaction)
	assert.True(t, ok, "expected *ast.Transaction, got %T", result.Statements[0])
	return txn
}

func TestParseTransactionHeader(t *testing.T) {
	txn := parseTransaction(t, `2014-05-05 * "Cafe Mogador" "Lamb tagine with wine" #trip ^invoice-12 ; paid cash
  Liabilities:CreditCard:CapitalOne         -37.45 USD
    receipt: "yes"
  ; general note
  Expenses:Restaurant
`)

	assert.Equal(t, "txn", txn.Type)
	assert.Equal(t, "2014-05-05", txn.Date)
	assert.Equal(t, "*", txn.Flag)
	assert.Equal(t, "Cafe Mogador", txn.Payee)
	assert.Equal(t, "Lamb tagine with wine", txn.Narration)
	assert.Equal(t, []string{"trip"}, txn.Tags)
	assert.Equal(t, []string{"invoice-12"}, txn.Links)
	assert.Equal(t, []string{"paid cash", "general note"}, txn.Comments)
	assert.False(t, txn.UsedPipe)

	assert.Equal(t, []string{
		`"Cafe Mogador" "Lamb tagine with wine" #trip ^invoice-12`,
		"Liabilities:CreditCard:CapitalOne         -37.45 USD",
		`receipt: "yes"`,
		"; general note",
		"Expenses:Restaurant",
	}, txn.Lines)

	assert.Equal(t, 2, len(txn.Postings))

	first := txn.Postings[0]
	assert.Equal(t, "Liabilities:CreditCard:CapitalOne", first.Account)
	assertDecimal(t, "-37.45", first.Amount.Number)
	assert.Equal(t, "USD", first.Amount.Currency)
	assert.Equal(t, 2, first.Indent)
	assert.Equal(t, ast.Position{Line: 2, Column: 3}, first.Pos)
	assert.Equal(t, 1, len(first.Metadata))
	assert.Equal(t, "receipt", first.Metadata[0].Key)
	assert.Equal(t, "yes", first.Metadata[0].Value)

	second := txn.Postings[1]
	assert.Equal(t, "Expenses:Restaurant", second.Account)
	assert.Zero(t, second.Amount)
	assert.Zero(t, second.Cost)
	assert.Zero(t, second.Price)
}

func TestParseTransactionFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flag  string
	}{
		{"txn keyword", "2014-01-01 txn \"x\"\n", "*"},
		{"pending", "2014-01-01 ! \"x\"\n", "!"},
		{"txn with flag", "2014-01-01 txn ! \"x\"\n", "!"},
		{"custom flag", "2014-01-01 & \"x\"\n", "&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := parseTransaction(t, tt.input)
			assert.Equal(t, tt.flag, txn.Flag)
			assert.Equal(t, "x", txn.Narration)
			assert.Equal(t, "", txn.Payee)
		})
	}
}

func TestParseTransactionMetadataOwnership(t *testing.T) {
	txn := parseTransaction(t, `2014-01-01 * "Split"
  invoice: "INV-1"
  Assets:Cash       -10 USD
    note: "posting level"
  category: "shared"
  Expenses:Food
`)

	assert.Equal(t, 2, len(txn.Metadata))
	assert.Equal(t, "invoice", txn.Metadata[0].Key)
	assert.Equal(t, "INV-1", txn.Metadata[0].Value)
	assert.Equal(t, "category", txn.Metadata[1].Key)

	assert.Equal(t, 1, len(txn.Postings[0].Metadata))
	assert.Equal(t, "note", txn.Postings[0].Metadata[0].Key)
	assert.Equal(t, "posting level", txn.Postings[0].Metadata[0].Value)
	assert.Equal(t, 0, len(txn.Postings[1].Metadata))
}

func TestParsePostingFlagsAndComments(t *testing.T) {
	txn := parseTransaction(t, `2014-01-01 * "x"
  ! Assets:Cash  10 USD ; verify
    ; deeper comment
  Equity:Opening
`)

	cash := txn.Postings[0]
	assert.Equal(t, "!", cash.Flag)
	assert.Equal(t, "Assets:Cash", cash.Account)
	assert.Equal(t, []string{"verify", "deeper comment"}, cash.Comments)
	assert.Equal(t, 0, len(txn.Comments))
}

func TestParsePostingCosts(t *testing.T) {
	txn := parseTransaction(t, `2014-02-11 * "Buy"
  Assets:Brokerage  10 HOOL {518.73 USD, 2014-02-01, "first-lot"} @ 520.25 USD
  Assets:Brokerage  5 HOOL {{2593.65 USD}} @@ 2601.25 USD
  Assets:Brokerage  -3 HOOL {}
  Assets:Brokerage  -2 HOOL {USD, *}
  Assets:Cash
`)

	assert.Equal(t, 5, len(txn.Postings))

	perUnit := txn.Postings[0]
	assertDecimal(t, "10", perUnit.Amount.Number)
	assert.Equal(t, "HOOL", perUnit.Amount.Currency)
	assertDecimal(t, "518.73", perUnit.Cost.Number)
	assert.Equal(t, "USD", perUnit.Cost.Currency)
	assert.Equal(t, "2014-02-01", perUnit.Cost.Date)
	assert.Equal(t, "first-lot", perUnit.Cost.Label)
	assert.False(t, perUnit.Cost.Total)
	assertDecimal(t, "520.25", perUnit.Price.Number)
	assert.Equal(t, "USD", perUnit.Price.Currency)
	assert.False(t, perUnit.Price.Total)

	total := txn.Postings[1]
	assert.True(t, total.Cost.Total)
	assertDecimal(t, "2593.65", total.Cost.Number)
	assert.True(t, total.Price.Total)
	assertDecimal(t, "2601.25", total.Price.Number)

	empty := txn.Postings[2]
	assert.True(t, empty.Cost.IsEmpty())

	currencyOnly := txn.Postings[3]
	assert.Zero(t, currencyOnly.Cost.Number)
	assert.Equal(t, "USD", currencyOnly.Cost.Currency)
	assert.False(t, currencyOnly.Cost.IsEmpty())
}

func TestParseTransactionPipe(t *testing.T) {
	txn := parseTransaction(t, "2014-01-01 * \"Payee\" | \"Narration\"\n")
	assert.True(t, txn.UsedPipe)
	assert.Equal(t, "Payee", txn.Payee)
	assert.Equal(t, "Narration", txn.Narration)
}

func TestParseTransactionBodyAcrossColumnOneComments(t *testing.T) {
	result, err := ParseString(context.Background(), `2014-01-01 * "x"
  Assets:Cash  1 USD
; interleaved
  Expenses:Food
; trailing
2014-01-02 close Assets:Cash
`)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result.Statements))

	txn := result.Statements[0].(*ast.Transaction)
	assert.Equal(t, 2, len(txn.Postings))
	assert.Equal(t, 0, len(txn.Comments))
}

func TestParseTransactionUnexpectedBodyLine(t *testing.T) {
	var events []string
	tracer := TracerFunc(func(_ ast.Position, event string) { events = append(events, event) })

	result, err := ParseString(context.Background(), `2014-01-01 * "x"
  Assets:Cash  1 USD
  "stray" text
`, WithTracer(tracer))
	assert.NoError(t, err)

	txn := result.Statements[0].(*ast.Transaction)
	assert.Equal(t, []string{`"stray" text`}, txn.Comments)
	assert.Equal(t, []string{"unexpected line in transaction kept as comment"}, events)
}

func TestParseTransactionEmptyTagsSkipped(t *testing.T) {
	txn := parseTransaction(t, "2014-01-01 * \"x\" # ^ #real\n")
	assert.Equal(t, []string{"real"}, txn.Tags)
	assert.Equal(t, 0, len(txn.Links))
}
