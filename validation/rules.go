package validation

import (
	"context"
	"regexp"

	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
)

// accountPattern matches a root component starting with an uppercase letter
// followed by at least one component starting with an uppercase letter or
// a digit.
var accountPattern = regexp.MustCompile(`^\p{Lu}[\p{L}\p{Nd}-]*(:[\p{Lu}\p{Nd}][\p{L}\p{Nd}-]*)+$`)

// ValidAccountName reports whether name is a well-formed account name.
func ValidAccountName(name string) bool {
	return accountPattern.MatchString(name)
}

type accountNameRule struct{}

// AccountNames reports every malformed account name, once per entry.
func AccountNames() Rule { return accountNameRule{} }

func (accountNameRule) Name() string { return "account-name" }

func (accountNameRule) Validate(ctx context.Context, data *ledger.Data) []ledger.Diagnostic {
	var diags []ledger.Diagnostic

	type key struct {
		entryID int
		account string
	}
	reported := make(map[key]bool)

	for _, ref := range references(data) {
		k := key{ref.entryID, ref.account}
		if reported[k] || ValidAccountName(ref.account) {
			continue
		}
		reported[k] = true

		entry, _ := data.Entry(ref.entryID)
		diags = append(diags, errorAt(entry, "Invalid account name: %s", ref.account))
	}

	return diags
}

type openCloseRule struct{}

// OpenClose checks the lifecycle of accounts: an account is opened once,
// closed at most once and not before its open, and not used after it was
// closed.
func OpenClose() Rule { return openCloseRule{} }

func (openCloseRule) Name() string { return "open-close" }

func (openCloseRule) Validate(ctx context.Context, data *ledger.Data) []ledger.Diagnostic {
	var diags []ledger.Diagnostic

	opened := make(map[string]ledger.Entry)
	for _, r := range data.Opens() {
		entry, _ := data.Entry(r.EntryID)
		if _, ok := opened[r.Account]; ok {
			diags = append(diags, errorAt(entry, "Duplicate open directive for %s", r.Account))
			continue
		}
		opened[r.Account] = entry
	}

	closed := make(map[string]ledger.Entry)
	for _, r := range data.Closes() {
		entry, _ := data.Entry(r.EntryID)

		open, ok := opened[r.Account]
		if !ok {
			diags = append(diags, errorAt(entry, "Unopened account %s is being closed", r.Account))
			continue
		}
		if _, ok := closed[r.Account]; ok {
			diags = append(diags, errorAt(entry, "Duplicate close directive for %s", r.Account))
			continue
		}
		if entry.Date.Before(open.Date) {
			diags = append(diags, errorAt(entry, "Account %s is closed before it was opened", r.Account))
		}
		closed[r.Account] = entry
	}

	reported := make(map[int]bool)
	for _, ref := range references(data) {
		if ref.kind == ledger.TypeOpen || ref.kind == ledger.TypeClose {
			continue
		}
		closing, ok := closed[ref.account]
		if !ok || reported[ref.entryID] {
			continue
		}

		entry, _ := data.Entry(ref.entryID)
		if entry.Date.After(closing.Date) {
			reported[ref.entryID] = true
			diags = append(diags, errorAt(entry, "Invalid reference to inactive account '%s'", ref.account))
		}
	}

	return diags
}

type closedHoldingsRule struct {
	method *inventory.Method
}

// ClosedHoldings replays every posting through a booking engine and reports
// accounts closed while they still hold lots at cost. The engine books with
// the ledger's booking_method option unless method is given.
func ClosedHoldings(method ...inventory.Method) Rule {
	r := closedHoldingsRule{}
	if len(method) > 0 {
		r.method = &method[0]
	}
	return r
}

func (closedHoldingsRule) Name() string { return "closed-holdings" }

func (r closedHoldingsRule) Validate(ctx context.Context, data *ledger.Data) []ledger.Diagnostic {
	method := inventory.FIFO
	if r.method != nil {
		method = *r.method
	} else if m, err := inventory.ParseMethod(data.Options().BookingMethod); err == nil {
		method = m
	}

	engine := inventory.New(method)
	engine.UseOpenMethods(data)

	closes := make(map[int]string)
	for _, c := range data.Closes() {
		closes[c.EntryID] = c.Account
	}

	var diags []ledger.Diagnostic
	// Booking failures end the replay; they are reported by the loader.
	_ = engine.Replay(ctx, data, func(entry ledger.Entry) error {
		account, ok := closes[entry.ID]
		if !ok {
			return nil
		}
		inv, ok := engine.Account(account)
		if !ok {
			return nil
		}
		for _, currency := range inv.Currencies() {
			if engine.HasCostedHoldings(account, currency) {
				diags = append(diags, errorAt(entry, "Account %s closed with holdings at cost of %s", account, currency))
			}
		}
		return nil
	})

	return diags
}
