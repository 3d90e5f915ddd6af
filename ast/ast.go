// Package ast declares the types used to represent syntax trees for Beancount files.
//
// A parsed file is an ordered list of statements. Statements are a closed set of
// types: includes, undated global directives (option, pushtag, ...) and dated
// directives. Consumers switch over the concrete type:
//
//	for _, stmt := range file.Statements {
//		switch s := stmt.(type) {
//		case *ast.Include:
//		case *ast.GlobalDirective:
//		case *ast.Transaction:
//		case *ast.Open:
//		}
//	}
package ast

// File is the syntax tree of a single source file.
type File struct {
	Filename   string
	Statements []Statement
}

// Statement is implemented by every top-level node. The interface is sealed;
// only types in this package satisfy it.
type Statement interface {
	Position() Position
	statement()
}

// Directive is a dated statement.
type Directive interface {
	Statement
	DirectiveHeader() *Header
}

// Include pulls another file into the ledger at this point.
//
// Example:
//
//	include "accounts.beancount"
//	include-once "prices/*.beancount"
type Include struct {
	Pos  Position
	Path string
	Once bool
}

func (i *Include) Position() Position { return i.Pos }
func (*Include) statement()            {}

// GlobalDirective is an undated line such as option, plugin, pushtag or
// pushmeta. Args holds the unquoted arguments; for pushmeta and popmeta it
// holds the remainder of the line as a single argument.
//
// Example:
//
//	option "operating_currency" "USD"
//	pushtag #trip
//	pushmeta location: "Berlin"
type GlobalDirective struct {
	Pos  Position
	Kind string
	Args []string
}

func (g *GlobalDirective) Position() Position { return g.Pos }
func (*GlobalDirective) statement()            {}

// Arg returns the i-th argument or "" when absent.
func (g *GlobalDirective) Arg(i int) string {
	if i < 0 || i >= len(g.Args) {
		return ""
	}
	return g.Args[i]
}

// Meta is a single "key: value" line attached to a directive or posting.
type Meta struct {
	Pos   Position
	Key   string
	Value string
}

// Header carries the fields shared by all dated directives. Date is kept as
// written; resolving it is left to the consumer so that a malformed date does
// not abort the parse of the whole file.
type Header struct {
	Pos      Position
	Date     string
	Type     string
	Lines    []string // trimmed header remainder followed by continuation lines
	Metadata []*Meta
}

func (h *Header) Position() Position       { return h.Pos }
func (h *Header) DirectiveHeader() *Header { return h }
func (*Header) statement()                 {}
