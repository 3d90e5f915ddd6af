package analyzer

import (
	"github.com/shopspring/decimal"
)

// isAutoPosting reports whether a posting leaves everything to inference:
// no units, no currency, no cost and no price.
func isAutoPosting(p pendingPosting) bool {
	r := p.record
	return r.Number == nil && r.Currency == "" &&
		r.CostNumber == nil && r.CostCurrency == "" &&
		r.PriceNumber == nil && r.PriceCurrency == ""
}

// weightCurrency is the currency a posting balances in: its cost currency,
// else its price currency, else its own currency.
func weightCurrency(p pendingPosting) string {
	switch {
	case p.record.CostCurrency != "":
		return p.record.CostCurrency
	case p.record.PriceCurrency != "":
		return p.record.PriceCurrency
	default:
		return p.record.Currency
	}
}

type indexedPosting struct {
	index   int
	posting pendingPosting
}

// expandAutoPostings splits auto postings when a transaction balances in
// several currencies. Each auto posting is cloned once per currency group;
// the result lists the groups in the order their currency first appeared,
// each in source order, followed by postings without any currency.
func expandAutoPostings(postings []pendingPosting) []pendingPosting {
	var (
		autos         []indexedPosting
		uncategorized []indexedPosting
		order         []string
		groups        = make(map[string][]indexedPosting)
	)

	for i, p := range postings {
		if isAutoPosting(p) {
			autos = append(autos, indexedPosting{i, p})
			continue
		}

		currency := weightCurrency(p)
		if currency == "" {
			uncategorized = append(uncategorized, indexedPosting{i, p})
			continue
		}
		if _, ok := groups[currency]; !ok {
			order = append(order, currency)
		}
		groups[currency] = append(groups[currency], indexedPosting{i, p})
	}

	if len(autos) == 0 || len(order) <= 1 {
		return postings
	}

	expanded := make([]pendingPosting, 0, len(postings)+len(autos)*(len(order)-1))
	for _, currency := range order {
		group := groups[currency]
		for _, auto := range autos {
			clone := auto.posting
			clone.record.Currency = currency
			group = insertByIndex(group, indexedPosting{auto.index, clone})
		}
		for _, p := range group {
			expanded = append(expanded, p.posting)
		}
	}
	for _, p := range uncategorized {
		expanded = append(expanded, p.posting)
	}

	return expanded
}

// insertByIndex inserts p keeping group sorted by source index. Equal indices
// keep insertion order.
func insertByIndex(group []indexedPosting, p indexedPosting) []indexedPosting {
	i := len(group)
	for i > 0 && group[i-1].index > p.index {
		i--
	}
	group = append(group, indexedPosting{})
	copy(group[i+1:], group[i:])
	group[i] = p
	return group
}

// inferMissingNumbers fills in units the ledger left out. Every posting is
// summed into its currency; postings held at a cost, or priced, in another
// currency also add their weight to that currency. A currency with exactly
// one posting missing its units gets the negated sum. Postings without a
// currency take their cost currency, or the single currency the rest of the
// transaction balances in.
func inferMissingNumbers(postings []pendingPosting) []pendingPosting {
	if len(postings) == 0 {
		return postings
	}

	var weights []string
	for _, p := range postings {
		if p.record.Currency != "" {
			weights = appendUnique(weights, weightCurrency(p))
		}
	}

	var fallback string
	if len(weights) == 1 {
		fallback = weights[0]
	}

	currencyOf := func(p pendingPosting) string {
		switch {
		case p.record.Currency != "":
			return p.record.Currency
		case p.record.CostCurrency != "":
			return p.record.CostCurrency
		default:
			return fallback
		}
	}

	sums := make(map[string]decimal.Decimal)
	missing := make(map[string][]int)

	for i, p := range postings {
		r := p.record
		if currency := currencyOf(p); currency != "" {
			if r.Number != nil {
				sums[currency] = sums[currency].Add(*r.Number)
			} else {
				missing[currency] = append(missing[currency], i)
			}
		}

		if r.Number == nil {
			continue
		}
		switch {
		case r.CostCurrency != "" && r.CostNumber != nil && r.CostCurrency != r.Currency:
			sums[r.CostCurrency] = sums[r.CostCurrency].Add(r.Number.Mul(*r.CostNumber))
		case r.CostCurrency == "" && r.PriceCurrency != "" && r.PriceNumber != nil && r.PriceCurrency != r.Currency:
			sums[r.PriceCurrency] = sums[r.PriceCurrency].Add(r.Number.Mul(*r.PriceNumber))
		}
	}

	inferred := make(map[int]decimal.Decimal)
	for currency, indices := range missing {
		if len(indices) == 1 {
			inferred[indices[0]] = sums[currency].Neg()
		}
	}

	out := make([]pendingPosting, len(postings))
	for i, p := range postings {
		if p.record.Number == nil {
			if n, ok := inferred[i]; ok {
				p.record.Number = &n
			}
		}
		p.record.Currency = currencyOf(p)
		out[i] = p
	}

	return out
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
