package parser

import (
	"strconv"
	"strings"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/number"
	"github.com/shopspring/decimal"
)

// Helper parsing methods used across directive parsers.
// These implement the common patterns in Beancount syntax.

// parseAccount parses an ACCOUNT token on the given line.
// The account name is interned to save memory.
func (p *Parser) parseAccount(line int) (string, error) {
	tok := p.peek()
	if tok.Type != ACCOUNT || tok.Line != line {
		return "", p.errorExpected("account", line)
	}
	p.advance()
	return p.interner.InternBytes(tok.Bytes(p.source)), nil
}

// parseCurrency parses a CURRENCY token on the given line.
func (p *Parser) parseCurrency(line int) (string, error) {
	tok := p.peek()
	if tok.Type != CURRENCY || tok.Line != line {
		return "", p.errorExpected("currency", line)
	}
	p.advance()
	return p.interner.InternBytes(tok.Bytes(p.source)), nil
}

// parseString parses a STRING token on the given line and unquotes it.
func (p *Parser) parseString(line int) (string, error) {
	tok := p.peek()
	if tok.Type != STRING || tok.Line != line {
		return "", p.errorExpected("string", line)
	}
	p.advance()
	return unquote(tok.String(p.source)), nil
}

// parseNumber consumes a NUMBER token and converts it with the decimal parser.
func (p *Parser) parseNumber() (*decimal.Decimal, error) {
	tok := p.advance()
	d, err := number.Parse(tok.String(p.source))
	if err != nil {
		return nil, &ParseError{
			Pos:        tokenPosition(tok, p.filename),
			Message:    err.Error(),
			Underlying: err,
		}
	}
	return d, nil
}

// parseAmount parses: NUMBER [CURRENCY]. The currency is optional; callers
// that require one check it themselves.
func (p *Parser) parseAmount(line int) (*ast.Amount, error) {
	n, err := p.parseNumber()
	if err != nil {
		return nil, err
	}

	amount := &ast.Amount{Number: n}
	if p.checkOnLine(CURRENCY, line) {
		amount.Currency = p.interner.InternBytes(p.advance().Bytes(p.source))
	}
	return amount, nil
}

// isMetadataStart reports whether the next tokens form "key:". Keys can be
// identifiers or keywords (e.g. "price:", "note:").
func (p *Parser) isMetadataStart() bool {
	key := p.peek()
	if key.Type != IDENT && !key.Type.IsKeyword() {
		return false
	}
	colon := p.peekAhead(1)
	return colon.Type == COLON && colon.Line == key.Line && colon.Start == key.End
}

// parseMetadata parses a "key: value" line. The value is the rest of the
// line, unquoted when it is a single string.
func (p *Parser) parseMetadata() *ast.Meta {
	key := p.advance()
	colon := p.advance()

	return &ast.Meta{
		Pos:   tokenPosition(key, p.filename),
		Key:   key.String(p.source),
		Value: unquote(p.restOfLine(key.Line, colon.End)),
	}
}

// parseDirectiveBody consumes the indented lines below a non-transaction
// directive, collecting metadata.
func (p *Parser) parseDirectiveBody(h *ast.Header) {
	for p.atBodyLine() {
		tok := p.peek()
		h.Lines = append(h.Lines, p.lineText(tok.Line))

		switch {
		case tok.Type == COMMENT:
			p.advance()
		case p.isMetadataStart():
			h.Metadata = append(h.Metadata, p.parseMetadata())
		default:
			p.trace(tok, "unexpected line in "+h.Type+" directive ignored")
			p.skipLine(tok.Line)
		}
	}
}

// atBodyLine reports whether the next token starts an indented line that
// belongs to the directive above it. Column-1 comments between body lines
// are skipped.
func (p *Parser) atBodyLine() bool {
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].Type == COMMENT && p.tokens[i].Column == 1 {
		i++
	}
	if i >= len(p.tokens) {
		return false
	}

	tok := p.tokens[i]
	if tok.Type == EOF || tok.Column == 1 {
		return false
	}

	p.pos = i
	return true
}

// finishLine consumes what is left of line. Comments are appended to
// comments when it is non-nil. Any other text is reported to the tracer and,
// when comments is non-nil, kept as a comment.
func (p *Parser) finishLine(line int, comments *[]string) {
	for !p.isAtEnd() && p.peek().Line == line {
		tok := p.peek()

		if tok.Type == COMMENT {
			p.advance()
			if comments != nil {
				if text := commentText(tok.String(p.source)); text != "" {
					*comments = append(*comments, text)
				}
			}
			continue
		}

		text := p.restOfLine(line, tok.Start)
		p.trace(tok, "trailing text folded into comment: "+text)
		if comments != nil && text != "" {
			*comments = append(*comments, text)
		}
	}
}

// restOfLine consumes every token left on line and returns the source text
// from offset from up to the last non-comment token, trimmed.
func (p *Parser) restOfLine(line, from int) string {
	end := from
	for !p.isAtEnd() && p.peek().Line == line {
		tok := p.advance()
		if tok.Type != COMMENT {
			end = tok.End
		}
	}
	return strings.TrimSpace(string(p.source[from:end]))
}

// headerRemainder returns the text after the current token up to the last
// non-comment token on its line, without consuming anything.
func (p *Parser) headerRemainder() string {
	start := p.peek()
	end := start.End
	for i := p.pos + 1; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		if tok.Type == EOF || tok.Line != start.Line {
			break
		}
		if tok.Type != COMMENT {
			end = tok.End
		}
	}
	return strings.TrimSpace(string(p.source[start.End:end]))
}

// lineText returns the trimmed source text of a line.
func (p *Parser) lineText(line int) string {
	if line < 1 || line > len(p.lineStarts) {
		return ""
	}
	start := p.lineStarts[line-1]
	end := len(p.source)
	if line < len(p.lineStarts) {
		end = p.lineStarts[line]
	}
	return strings.TrimSpace(string(p.source[start:end]))
}

func (p *Parser) skipLine(line int) {
	for !p.isAtEnd() && p.peek().Line == line {
		p.advance()
	}
}

func (p *Parser) trace(tok Token, event string) {
	p.tracer.Trace(tokenPosition(tok, p.filename), event)
}

// unquote removes surrounding quotes from a string and resolves escapes.
// Strings that strconv cannot unquote (for instance ones spanning lines)
// have backslash escapes resolved literally.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}

	body := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// commentText strips the leading ';' of a comment token.
func commentText(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(raw, ";"))
}

// Helper methods for token navigation

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) Token {
	pos := p.pos + n
	if pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[pos]
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return Token{Type: ILLEGAL}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Type == typ
}

// checkOnLine reports whether the next token has type typ and sits on line.
func (p *Parser) checkOnLine(typ TokenType, line int) bool {
	tok := p.peek()
	return tok.Type == typ && tok.Line == line
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

// Error helpers

// errorExpected reports a missing token. When the line ended early the error
// points at the last token of that line.
func (p *Parser) errorExpected(what string, line int) error {
	tok := p.peek()
	if tok.Type == EOF || tok.Line != line {
		return p.errorAtToken(p.previous(), "expected %s at end of line", what)
	}
	return p.errorAtToken(tok, "expected %s but got %s", what, describe(tok, p.source))
}

func (p *Parser) errorAtToken(tok Token, format string, args ...any) error {
	return newErrorf(tokenPosition(tok, p.filename), format, args...)
}

// tokenPosition extracts position information from a token.
func tokenPosition(tok Token, filename string) ast.Position {
	return ast.Position{
		Filename: filename,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}
