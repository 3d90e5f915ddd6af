package parser

import "github.com/robinvdvleuten/beanload/ast"

// Directive parsing methods. Each is called with the date consumed and the
// directive keyword as the next token.

// beginDirective records the header remainder and consumes the keyword.
func (p *Parser) beginDirective(h *ast.Header) Token {
	h.Lines = []string{p.headerRemainder()}
	return p.advance()
}

// parseOpen parses: DATE open ACCOUNT [CURRENCY (, CURRENCY)*] ["BOOKING"]
func (p *Parser) parseOpen(header ast.Header) (*ast.Open, error) {
	kw := p.beginDirective(&header)
	open := &ast.Open{Header: header}

	account, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	open.Account = account

	for p.checkOnLine(CURRENCY, kw.Line) {
		currency, _ := p.parseCurrency(kw.Line)
		open.Currencies = append(open.Currencies, currency)

		if !p.checkOnLine(COMMA, kw.Line) {
			break
		}
		p.advance()
	}

	if p.checkOnLine(STRING, kw.Line) {
		open.BookingMethod, _ = p.parseString(kw.Line)
	}

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&open.Header)

	return open, nil
}

// parseClose parses: DATE close ACCOUNT
func (p *Parser) parseClose(header ast.Header) (*ast.Close, error) {
	kw := p.beginDirective(&header)
	closeDir := &ast.Close{Header: header}

	account, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	closeDir.Account = account

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&closeDir.Header)

	return closeDir, nil
}

// parsePad parses: DATE pad ACCOUNT ACCOUNT
func (p *Parser) parsePad(header ast.Header) (*ast.Pad, error) {
	kw := p.beginDirective(&header)
	pad := &ast.Pad{Header: header}

	account, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	source, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	pad.Account = account
	pad.SourceAccount = source

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&pad.Header)

	return pad, nil
}

// parseBalance parses: DATE balance ACCOUNT AMOUNT [~ TOLERANCE] [DIFF]
//
// Both tolerance placements are accepted:
//
//	2014-08-09 balance Assets:Cash 100.00 ~ 0.01 USD
//	2014-08-09 balance Assets:Cash 100.00 USD ~ 0.01
func (p *Parser) parseBalance(header ast.Header) (*ast.Balance, error) {
	kw := p.beginDirective(&header)
	line := kw.Line
	balance := &ast.Balance{Header: header}

	account, err := p.parseAccount(line)
	if err != nil {
		return nil, err
	}
	balance.Account = account

	if !p.checkOnLine(NUMBER, line) {
		return nil, p.errorExpected("amount", line)
	}
	number, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	balance.Amount = &ast.Amount{Number: number}

	if p.checkOnLine(TILDE, line) {
		if balance.Tolerance, err = p.parseTolerance(line); err != nil {
			return nil, err
		}
	}

	currency, err := p.parseCurrency(line)
	if err != nil {
		return nil, err
	}
	balance.Amount.Currency = currency

	if balance.Tolerance == nil && p.checkOnLine(TILDE, line) {
		if balance.Tolerance, err = p.parseTolerance(line); err != nil {
			return nil, err
		}
		if p.checkOnLine(CURRENCY, line) {
			balance.Tolerance.Currency, _ = p.parseCurrency(line)
		}
	}
	if balance.Tolerance != nil && balance.Tolerance.Currency == "" {
		balance.Tolerance.Currency = currency
	}

	if p.checkOnLine(NUMBER, line) {
		if balance.Diff, err = p.parseAmount(line); err != nil {
			return nil, err
		}
	}

	p.finishLine(line, nil)
	p.parseDirectiveBody(&balance.Header)

	return balance, nil
}

// parseTolerance parses: ~ NUMBER
func (p *Parser) parseTolerance(line int) (*ast.Amount, error) {
	tilde := p.advance()
	if !p.checkOnLine(NUMBER, line) {
		return nil, p.errorAtToken(tilde, "expected tolerance after ~")
	}
	n, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	return &ast.Amount{Number: n}, nil
}

// parseNote parses: DATE note ACCOUNT "COMMENT"
func (p *Parser) parseNote(header ast.Header) (*ast.Note, error) {
	kw := p.beginDirective(&header)
	note := &ast.Note{Header: header}

	account, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	comment, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	note.Account = account
	note.Comment = comment

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&note.Header)

	return note, nil
}

// parseDocument parses: DATE document ACCOUNT "PATH"
func (p *Parser) parseDocument(header ast.Header) (*ast.Document, error) {
	kw := p.beginDirective(&header)
	doc := &ast.Document{Header: header}

	account, err := p.parseAccount(kw.Line)
	if err != nil {
		return nil, err
	}
	filename, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	doc.Account = account
	doc.Filename = filename

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&doc.Header)

	return doc, nil
}

// parseEvent parses: DATE event "TYPE" "DESCRIPTION"
func (p *Parser) parseEvent(header ast.Header) (*ast.Event, error) {
	kw := p.beginDirective(&header)
	event := &ast.Event{Header: header}

	eventType, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	description, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	event.EventType = eventType
	event.Description = description

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&event.Header)

	return event, nil
}

// parseQuery parses: DATE query "NAME" "SQL"
func (p *Parser) parseQuery(header ast.Header) (*ast.Query, error) {
	kw := p.beginDirective(&header)
	query := &ast.Query{Header: header}

	name, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	queryString, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	query.Name = name
	query.QueryString = queryString

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&query.Header)

	return query, nil
}

// parsePrice parses: DATE price CURRENCY NUMBER CURRENCY
//
// The priced currency may be missing; the analyzer reports that case.
func (p *Parser) parsePrice(header ast.Header) (*ast.Price, error) {
	kw := p.beginDirective(&header)
	price := &ast.Price{Header: header}

	if p.checkOnLine(CURRENCY, kw.Line) {
		price.Currency, _ = p.parseCurrency(kw.Line)
	}

	if !p.checkOnLine(NUMBER, kw.Line) {
		return nil, p.errorExpected("price amount", kw.Line)
	}
	amount, err := p.parseAmount(kw.Line)
	if err != nil {
		return nil, err
	}
	if amount.Currency == "" {
		return nil, p.errorExpected("currency", kw.Line)
	}
	price.Amount = amount

	p.finishLine(kw.Line, nil)
	p.parseDirectiveBody(&price.Header)

	return price, nil
}

// parseGeneric keeps a directive without a dedicated node. Its header line
// and body are preserved in Lines; metadata is still collected.
func (p *Parser) parseGeneric(header ast.Header) (*ast.Generic, error) {
	kw := p.beginDirective(&header)
	generic := &ast.Generic{Header: header}

	for !p.isAtEnd() && p.peek().Line == kw.Line {
		tok := p.advance()
		if tok.Type == ILLEGAL && p.source[tok.Start] == '"' {
			return nil, p.errorAtToken(tok, "unterminated string")
		}
	}
	p.parseDirectiveBody(&generic.Header)

	return generic, nil
}
