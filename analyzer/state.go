package analyzer

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/pycompat"
	"go.uber.org/zap"
)

// metaPair is one pushed metadata value.
type metaPair struct {
	key   string
	value string
}

// state is the mutable context of a single analysis. Stacks are ordered
// bottom to top.
type state struct {
	source   Source
	ordering *pycompat.Ordering
	logger   *zap.Logger

	tags  []string
	links []string
	meta  []metaPair

	active []string        // include chain, root first
	seen   map[string]bool // every file loaded so far
	files  []string        // seen, in load order
	opened map[string]bool // accounts opened so far

	options     ledger.Options
	builder     *ledger.Builder
	diagnostics []ledger.Diagnostic
}

func newState(a *Analyzer) *state {
	return &state{
		source:   a.source,
		ordering: a.ordering,
		logger:   a.logger,
		seen:     make(map[string]bool),
		opened:   make(map[string]bool),
		options:  ledger.NewOptions(),
		builder:  ledger.NewBuilder(),
	}
}

func (s *state) report(level ledger.Level, pos ast.Position, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, ledger.Diagnostic{
		Level:          level,
		Message:        fmt.Sprintf(format, args...),
		SourceFilename: pos.Filename,
		SourceLine:     pos.Line,
	})
}

func (s *state) infof(pos ast.Position, format string, args ...any) {
	s.report(ledger.Info, pos, format, args...)
}

func (s *state) warnf(pos ast.Position, format string, args ...any) {
	s.report(ledger.Warning, pos, format, args...)
}

func (s *state) errorf(pos ast.Position, format string, args ...any) {
	s.report(ledger.Error, pos, format, args...)
}

// removeTopmost removes the entry nearest the top of stack that equals name.
func removeTopmost(stack []string, name string) ([]string, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return append(stack[:i], stack[i+1:]...), true
		}
	}
	return stack, false
}

// effectiveMetadata merges inline metadata with the metadata stack. Inline
// keys come first and win; pushed keys follow bottom to top, the newest push
// of a key winning over older ones.
func (s *state) effectiveMetadata(inline []*ast.Meta) []metaPair {
	out := make([]metaPair, 0, len(inline)+len(s.meta))
	set := make(map[string]bool, len(inline)+len(s.meta))

	for _, m := range inline {
		if set[m.Key] {
			continue
		}
		set[m.Key] = true
		out = append(out, metaPair{key: m.Key, value: m.Value})
	}

	var pushed []metaPair
	for i := len(s.meta) - 1; i >= 0; i-- {
		m := s.meta[i]
		if set[m.key] {
			continue
		}
		set[m.key] = true
		pushed = append(pushed, m)
	}
	for i := len(pushed) - 1; i >= 0; i-- {
		out = append(out, pushed[i])
	}

	return out
}

// useAccount warns when account is referenced before it was opened.
// Equity accounts are exempt.
func (s *state) useAccount(pos ast.Position, account string) {
	if account == "" || s.opened[account] || strings.HasPrefix(account, "Equity:") {
		return
	}
	s.warnf(pos, "Account used before open: %s", account)
}

