package parser

import "github.com/robinvdvleuten/beanload/ast"

// parseTransaction parses a transaction header followed by its body:
//
//	DATE (txn | FLAG) [[PAYEE [|]] NARRATION] [#TAG | ^LINK]*
//	  [FLAG] ACCOUNT [AMOUNT] [COST] [@ PRICE]
//	    key: value
func (p *Parser) parseTransaction(header ast.Header) (*ast.Transaction, error) {
	header.Lines = []string{p.headerRemainder()}
	kw := p.advance()
	line := kw.Line

	txn := &ast.Transaction{Header: header, Flag: "*"}
	if kw.Type == FLAG {
		txn.Flag = kw.String(p.source)
	} else if p.checkOnLine(FLAG, line) {
		txn.Flag = p.advance().String(p.source)
	}

	var strs []string
	for !p.isAtEnd() && p.peek().Line == line {
		tok := p.peek()

		switch tok.Type {
		case STRING:
			p.advance()
			strs = append(strs, unquote(tok.String(p.source)))
		case PIPE:
			p.advance()
			txn.UsedPipe = true
			p.trace(tok, "pipe separator between payee and narration")
		case TAG:
			p.advance()
			if name := tok.String(p.source)[1:]; name != "" {
				txn.Tags = append(txn.Tags, name)
			}
		case LINK:
			p.advance()
			if name := tok.String(p.source)[1:]; name != "" {
				txn.Links = append(txn.Links, name)
			}
		case ILLEGAL:
			if p.source[tok.Start] == '"' {
				return nil, p.errorAtToken(tok, "unterminated string")
			}
			p.finishLine(line, &txn.Comments)
		default:
			p.finishLine(line, &txn.Comments)
		}
	}

	switch len(strs) {
	case 0:
	case 1:
		txn.Narration = strs[0]
	case 2:
		txn.Payee = strs[0]
		txn.Narration = strs[1]
	default:
		return nil, p.errorAtToken(kw, "too many strings on transaction line (%d)", len(strs))
	}

	if err := p.parseTransactionBody(txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// parseTransactionBody consumes postings, metadata and comments. Metadata
// and comments indented deeper than the preceding posting belong to it.
func (p *Parser) parseTransactionBody(txn *ast.Transaction) error {
	var current *ast.Posting

	for p.atBodyLine() {
		tok := p.peek()
		indent := tok.Column - 1
		txn.Lines = append(txn.Lines, p.lineText(tok.Line))
		ownedByPosting := current != nil && indent > current.Indent

		switch {
		case tok.Type == COMMENT:
			p.advance()
			text := commentText(tok.String(p.source))
			if ownedByPosting {
				current.Comments = append(current.Comments, text)
			} else {
				txn.Comments = append(txn.Comments, text)
			}

		case p.isMetadataStart():
			meta := p.parseMetadata()
			if ownedByPosting {
				current.Metadata = append(current.Metadata, meta)
			} else {
				txn.Metadata = append(txn.Metadata, meta)
			}

		case tok.Type == ACCOUNT, tok.Type == FLAG && p.peekAhead(1).Type == ACCOUNT && p.peekAhead(1).Line == tok.Line:
			posting, err := p.parsePosting(indent)
			if err != nil {
				return err
			}
			txn.Postings = append(txn.Postings, posting)
			current = posting

		default:
			p.trace(tok, "unexpected line in transaction kept as comment")
			if text := p.restOfLine(tok.Line, tok.Start); text != "" {
				txn.Comments = append(txn.Comments, text)
			}
		}
	}

	return nil
}

// parsePosting parses: [FLAG] ACCOUNT [NUMBER] [CURRENCY] [COST] [@ PRICE]
func (p *Parser) parsePosting(indent int) (*ast.Posting, error) {
	first := p.peek()
	line := first.Line

	posting := &ast.Posting{
		Pos:    tokenPosition(first, p.filename),
		Indent: indent,
	}

	if first.Type == FLAG {
		posting.Flag = p.advance().String(p.source)
	}

	account, err := p.parseAccount(line)
	if err != nil {
		return nil, err
	}
	posting.Account = account

	switch {
	case p.checkOnLine(NUMBER, line):
		if posting.Amount, err = p.parseAmount(line); err != nil {
			return nil, err
		}
	case p.checkOnLine(CURRENCY, line):
		currency, _ := p.parseCurrency(line)
		posting.Amount = &ast.Amount{Currency: currency}
	}

	if p.checkOnLine(LBRACE, line) || p.checkOnLine(LDBRACE, line) {
		if posting.Cost, err = p.parseCost(line); err != nil {
			return nil, err
		}
	}

	if p.checkOnLine(AT, line) || p.checkOnLine(ATAT, line) {
		if posting.Price, err = p.parsePriceAnnotation(line); err != nil {
			return nil, err
		}
	}

	p.finishLine(line, &posting.Comments)

	return posting, nil
}

// parseCost parses: { [NUMBER [CURRENCY]] [, DATE] [, "LABEL"] [, *] }
// or the same between {{ and }} for a total cost. Components may appear in
// any order and the specification must close on the same line.
func (p *Parser) parseCost(line int) (*ast.Cost, error) {
	open := p.advance()
	cost := &ast.Cost{Total: open.Type == LDBRACE}

	closing := RBRACE
	if cost.Total {
		closing = RDBRACE
	}

	for {
		tok := p.peek()
		if tok.Type == EOF || tok.Line != line {
			return nil, p.errorAtToken(open, "unterminated cost specification")
		}

		switch tok.Type {
		case closing:
			p.advance()
			return cost, nil
		case COMMA:
			p.advance()
		case NUMBER:
			amount, err := p.parseAmount(line)
			if err != nil {
				return nil, err
			}
			cost.Number = amount.Number
			if amount.Currency != "" {
				cost.Currency = amount.Currency
			}
		case CURRENCY:
			cost.Currency, _ = p.parseCurrency(line)
		case DATE:
			cost.Date = p.advance().String(p.source)
		case STRING:
			cost.Label, _ = p.parseString(line)
		case FLAG:
			// "*" merges lots; nothing to record.
			if tok.String(p.source) != "*" {
				return nil, p.errorAtToken(tok, "unexpected %s in cost specification", describe(tok, p.source))
			}
			p.advance()
		default:
			return nil, p.errorAtToken(tok, "unexpected %s in cost specification", describe(tok, p.source))
		}
	}
}

// parsePriceAnnotation parses: @ [NUMBER] [CURRENCY] or @@ [NUMBER] [CURRENCY]
func (p *Parser) parsePriceAnnotation(line int) (*ast.PriceAnnotation, error) {
	at := p.advance()
	price := &ast.PriceAnnotation{Total: at.Type == ATAT}

	switch {
	case p.checkOnLine(NUMBER, line):
		amount, err := p.parseAmount(line)
		if err != nil {
			return nil, err
		}
		price.Number = amount.Number
		price.Currency = amount.Currency
	case p.checkOnLine(CURRENCY, line):
		price.Currency, _ = p.parseCurrency(line)
	}

	return price, nil
}
