package analyzer

import (
	"strings"
	"time"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// beginEntry resolves the date of a directive and registers its entry. It
// returns false when the date is invalid; no id is consumed then.
func (s *state) beginEntry(h *ast.Header, typ string, payload *ledger.TransactionPayload) (int, time.Time, bool) {
	date, err := ast.ParseDate(h.Date)
	if err != nil {
		s.errorf(h.Pos, "Invalid date: %s", h.Date)
		return 0, time.Time{}, false
	}

	id := s.builder.AddEntry(ledger.Entry{
		Date:           date,
		Type:           typ,
		SourceFilename: h.Pos.Filename,
		SourceLine:     h.Pos.Line,
		Transaction:    payload,
	})

	for _, m := range s.effectiveMetadata(h.Metadata) {
		s.builder.AddMetadata(ledger.MetadataRecord{EntryID: id, Key: m.key, Value: m.value})
	}

	return id, date, true
}

// processDirective lowers every dated directive other than transactions.
func (s *state) processDirective(d ast.Directive) {
	h := d.DirectiveHeader()
	typ := strings.ToLower(h.Type)

	id, _, ok := s.beginEntry(h, typ, nil)
	if !ok {
		return
	}

	switch d := d.(type) {
	case *ast.Open:
		s.builder.AddOpen(ledger.OpenRecord{
			EntryID:       id,
			Account:       d.Account,
			Currencies:    append([]string(nil), d.Currencies...),
			BookingMethod: d.BookingMethod,
		})
		s.opened[d.Account] = true

	case *ast.Close:
		s.builder.AddClose(ledger.CloseRecord{EntryID: id, Account: d.Account})
		s.useAccount(h.Pos, d.Account)

	case *ast.Pad:
		s.builder.AddPad(ledger.PadRecord{EntryID: id, Account: d.Account, SourceAccount: d.SourceAccount})
		s.useAccount(h.Pos, d.Account)
		s.useAccount(h.Pos, d.SourceAccount)

	case *ast.Balance:
		record := ledger.BalanceRecord{
			EntryID:   id,
			Account:   d.Account,
			Tolerance: lowerAmount(d.Tolerance),
			Diff:      lowerAmount(d.Diff),
		}
		if amount := lowerAmount(d.Amount); amount != nil {
			record.Amount = *amount
		}
		s.builder.AddBalance(record)
		s.useAccount(h.Pos, d.Account)

	case *ast.Note:
		s.builder.AddNote(ledger.NoteRecord{EntryID: id, Account: d.Account, Comment: d.Comment})
		s.useAccount(h.Pos, d.Account)

	case *ast.Document:
		s.builder.AddDocument(ledger.DocumentRecord{EntryID: id, Account: d.Account, Filename: d.Filename})
		s.useAccount(h.Pos, d.Account)

	case *ast.Event:
		s.builder.AddEvent(ledger.EventRecord{EntryID: id, Type: d.EventType, Description: d.Description})

	case *ast.Query:
		s.builder.AddQuery(ledger.QueryRecord{EntryID: id, Name: d.Name, QueryString: d.QueryString})
		if d.Name == "" {
			s.warnf(h.Pos, "Query directive missing name")
		}

	case *ast.Price:
		record := ledger.PriceRecord{EntryID: id, Currency: d.Currency}
		if amount := lowerAmount(d.Amount); amount != nil {
			record.Amount = *amount
		}
		s.builder.AddPrice(record)
		if d.Currency == "" {
			s.warnf(h.Pos, "Price directive missing currency")
		}

	case *ast.Generic:
		s.logger.Debug("directive kept without detail record", zap.String("type", typ), zap.Int("line", h.Pos.Line))
	}
}

func lowerAmount(a *ast.Amount) *ledger.Amount {
	if a == nil {
		return nil
	}
	out := &ledger.Amount{Currency: a.Currency}
	if a.Number != nil {
		out.Number = *a.Number
	}
	return out
}

// pendingPosting is a posting between lowering and id assignment.
type pendingPosting struct {
	record ledger.PostingRecord
	node   *ast.Posting
}

func (s *state) processTransaction(txn *ast.Transaction) {
	payload := &ledger.TransactionPayload{
		Flag:      txn.Flag,
		Payee:     txn.Payee,
		Narration: txn.Narration,
	}

	tags := make([]string, 0, len(s.tags)+len(txn.Tags))
	links := make([]string, 0, len(s.links)+len(txn.Links))
	tags = append(tags, s.tags...)
	links = append(links, s.links...)
	for _, tag := range txn.Tags {
		if tag = normalizeTag(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	for _, link := range txn.Links {
		if link = normalizeLink(link); link != "" {
			links = append(links, link)
		}
	}
	for _, comment := range txn.Comments {
		for _, word := range strings.Fields(comment) {
			switch {
			case len(word) > 1 && word[0] == '#':
				tags = append(tags, word[1:])
			case len(word) > 1 && word[0] == '^':
				links = append(links, word[1:])
			}
		}
	}
	payload.Tags = strings.Join(s.ordering.Order(dedupe(tags)), ",")
	payload.Links = strings.Join(s.ordering.Order(dedupe(links)), ",")

	id, date, ok := s.beginEntry(&txn.Header, ledger.TypeTransaction, payload)
	if !ok {
		return
	}

	if txn.UsedPipe && !s.options.AllowPipeSeparator {
		s.errorf(txn.Pos, "Pipe symbol is deprecated.")
	}

	pending := make([]pendingPosting, 0, len(txn.Postings))
	for _, p := range txn.Postings {
		record := s.lowerPosting(id, date, p)
		pending = append(pending, pendingPosting{record: record, node: p})
		s.useAccount(p.Pos, p.Account)
	}

	pending = expandAutoPostings(pending)
	pending = inferMissingNumbers(pending)

	for _, p := range pending {
		postingID := s.builder.AddPosting(p.record)
		for _, m := range p.node.Metadata {
			s.builder.AddMetadata(ledger.MetadataRecord{EntryID: id, PostingID: postingID, Key: m.Key, Value: m.Value})
		}
	}
}

// lowerPosting converts a posting node. Total costs and total prices are
// turned into per-unit values when the units are known.
func (s *state) lowerPosting(entryID int, date time.Time, p *ast.Posting) ledger.PostingRecord {
	record := ledger.PostingRecord{
		EntryID: entryID,
		Flag:    p.Flag,
		Account: p.Account,
	}

	var units *decimal.Decimal
	if p.Amount != nil {
		units = copyDecimal(p.Amount.Number)
		record.Number = units
		record.Currency = p.Amount.Currency
	}

	if c := p.Cost; c != nil {
		record.CostNumber = perUnit(c.Number, units, c.Total)
		record.CostCurrency = c.Currency
		record.CostLabel = c.Label
		if c.Date != "" {
			if d, err := ast.ParseDate(c.Date); err != nil {
				s.errorf(p.Pos, "Invalid date: %s", c.Date)
			} else {
				record.CostDate = d
			}
		}
	}

	if record.CostDate.IsZero() && record.CostNumber != nil && units != nil && units.IsPositive() {
		record.CostDate = date
	}

	if pr := p.Price; pr != nil {
		record.PriceNumber = perUnit(pr.Number, units, pr.Total)
		record.PriceCurrency = pr.Currency
	}

	return record
}

func perUnit(n, units *decimal.Decimal, total bool) *decimal.Decimal {
	if n == nil {
		return nil
	}
	if !total || units == nil || units.IsZero() {
		return copyDecimal(n)
	}
	v := n.Div(units.Abs())
	return &v
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
