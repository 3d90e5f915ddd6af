// Package parser implements a recursive-descent parser for Beancount files.
//
// The parser turns source text into an [ast.File] whose statements appear
// in source order. It does not resolve includes, dates or the push/pop
// context stacks; that is left to the analyzer.
//
// Syntax errors abort the parse and are returned as *ParseError. Constructs
// the parser can recover from are reported to an optional Tracer.
package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/robinvdvleuten/beanload/ast"
)

// ctxCheckInterval is the number of statements between cancellation checks.
const ctxCheckInterval = 256

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	tokens     []Token
	pos        int
	source     []byte
	filename   string
	lineStarts []int
	interner   *Interner
	tracer     Tracer
}

// ParseBytes parses src, reporting positions against filename.
func ParseBytes(ctx context.Context, filename string, src []byte, opts ...Option) (*ast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := options{tracer: noopTracer{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.interner == nil {
		o.interner = NewInterner(len(src)/40 + 64)
	}

	lexer := NewLexer(src, filename)
	tokens := lexer.ScanAll()

	p := &Parser{
		tokens:     tokens,
		source:     src,
		filename:   filename,
		lineStarts: lexer.LineStarts(),
		interner:   o.interner,
		tracer:     o.tracer,
	}
	return p.parseFile(ctx)
}

// Parse reads r to the end and parses it.
func Parse(ctx context.Context, filename string, r io.Reader, opts ...Option) (*ast.File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return ParseBytes(ctx, filename, src, opts...)
}

// ParseString parses an in-memory ledger with no filename.
func ParseString(ctx context.Context, s string, opts ...Option) (*ast.File, error) {
	return ParseBytes(ctx, "", []byte(s), opts...)
}

func (p *Parser) parseFile(ctx context.Context) (*ast.File, error) {
	file := &ast.File{Filename: p.filename}

	for !p.isAtEnd() {
		if len(file.Statements)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tok := p.peek()

		if tok.Type == COMMENT {
			p.advance()
			continue
		}

		if tok.Column > 1 {
			return nil, p.errorAtToken(tok, "unexpected indented %s", describe(tok, p.source))
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		file.Statements = append(file.Statements, stmt)
	}

	return file, nil
}

// parseStatement parses one top-level statement starting at column 1.
func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()

	switch tok.Type {
	case DATE:
		return p.parseDated()
	case INCLUDE, INCLUDEONCE:
		return p.parseInclude()
	case OPTION, PLUGIN, PUSHTAG, POPTAG, PUSHMETA, POPMETA, PUSHLINK, POPLINK, IDENT:
		return p.parseGlobal()
	case ILLEGAL:
		if p.source[tok.Start] == '"' {
			return nil, p.errorAtToken(tok, "unterminated string")
		}
		return nil, p.errorAtToken(tok, "unexpected character %q", tok.String(p.source))
	default:
		return nil, p.errorAtToken(tok, "unexpected %s", describe(tok, p.source))
	}
}

// parseDated parses a directive or transaction: DATE TYPE ...
func (p *Parser) parseDated() (ast.Statement, error) {
	dateTok := p.advance()

	typeTok := p.peek()
	if typeTok.Type == EOF || typeTok.Line != dateTok.Line {
		return nil, p.errorAtToken(dateTok, "expected directive after date")
	}

	header := ast.Header{
		Pos:  tokenPosition(dateTok, p.filename),
		Date: dateTok.String(p.source),
		Type: typeTok.String(p.source),
	}

	switch typeTok.Type {
	case TXN, FLAG:
		header.Type = "txn"
		return p.parseTransaction(header)
	case OPEN:
		return p.parseOpen(header)
	case CLOSE:
		return p.parseClose(header)
	case PAD:
		return p.parsePad(header)
	case BALANCE:
		return p.parseBalance(header)
	case NOTE:
		return p.parseNote(header)
	case DOCUMENT:
		return p.parseDocument(header)
	case EVENT:
		return p.parseEvent(header)
	case QUERY:
		return p.parseQuery(header)
	case PRICE:
		return p.parsePrice(header)
	case COMMODITY, CUSTOM:
		return p.parseGeneric(header)
	case IDENT:
		p.trace(typeTok, fmt.Sprintf("unknown directive %q kept as generic", header.Type))
		return p.parseGeneric(header)
	default:
		return nil, p.errorAtToken(typeTok, "unexpected %s after date", describe(typeTok, p.source))
	}
}

// parseInclude parses: include "PATH" | include-once "PATH"
func (p *Parser) parseInclude() (*ast.Include, error) {
	kw := p.advance()

	pathTok := p.peek()
	if pathTok.Type != STRING || pathTok.Line != kw.Line {
		return nil, p.errorAtToken(kw, "expected quoted path after %s", kw.String(p.source))
	}
	p.advance()

	include := &ast.Include{
		Pos:  tokenPosition(kw, p.filename),
		Path: unquote(pathTok.String(p.source)),
		Once: kw.Type == INCLUDEONCE,
	}

	p.finishLine(kw.Line, nil)

	return include, nil
}

// parseGlobal parses an undated directive line. Arguments are the remaining
// tokens of the line with strings unquoted; pushmeta and popmeta take the
// raw remainder of the line as their only argument.
func (p *Parser) parseGlobal() (*ast.GlobalDirective, error) {
	kw := p.advance()

	directive := &ast.GlobalDirective{
		Pos:  tokenPosition(kw, p.filename),
		Kind: kw.String(p.source),
	}

	if kw.Type == PUSHMETA || kw.Type == POPMETA {
		if rest := p.restOfLine(kw.Line, kw.End); rest != "" {
			directive.Args = []string{rest}
		}
		return directive, nil
	}

	for !p.isAtEnd() && p.peek().Line == kw.Line {
		tok := p.advance()
		switch tok.Type {
		case COMMENT:
		case STRING:
			directive.Args = append(directive.Args, unquote(tok.String(p.source)))
		case ILLEGAL:
			if p.source[tok.Start] == '"' {
				return nil, p.errorAtToken(tok, "unterminated string")
			}
			directive.Args = append(directive.Args, tok.String(p.source))
		default:
			directive.Args = append(directive.Args, tok.String(p.source))
		}
	}

	return directive, nil
}

// describe renders a token for error messages.
func describe(tok Token, source []byte) string {
	switch tok.Type {
	case EOF:
		return "end of file"
	case ACCOUNT, CURRENCY, NUMBER, IDENT, STRING, DATE:
		return fmt.Sprintf("%s %q", tok.Type, tok.String(source))
	default:
		return fmt.Sprintf("%q", tok.String(source))
	}
}
