package parser

import "github.com/robinvdvleuten/beanload/ast"

// Tracer receives recoverable parser events: things the parser accepted but
// a strict grammar would not, such as an unknown directive keyword or stray
// text after a complete directive. Events never affect the result.
type Tracer interface {
	Trace(pos ast.Position, event string)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(pos ast.Position, event string)

func (f TracerFunc) Trace(pos ast.Position, event string) { f(pos, event) }

type noopTracer struct{}

func (noopTracer) Trace(ast.Position, string) {}

// Option configures a parse.
type Option func(*options)

type options struct {
	tracer   Tracer
	interner *Interner
}

// WithTracer routes recoverable events to t.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithInterner shares a string pool across several parses.
func WithInterner(i *Interner) Option {
	return func(o *options) {
		if i != nil {
			o.interner = i
		}
	}
}
