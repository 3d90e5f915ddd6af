// Package analyzer turns parsed Beancount files into a [ledger.Data].
//
// The analyzer walks the statements of the root file in order, splicing in
// included files where their include statement appears. Along the way it
// keeps the push/pop context stacks for tags, links and metadata, records
// options, and lowers every dated directive into a ledger entry with the
// next sequential id plus its detail records.
//
// Problems that do not prevent building the model are reported as
// diagnostics on the [Result]. Parse errors, include cycles and a missing
// root file abort the analysis.
//
//	a := analyzer.New(analyzer.NewFileSource())
//	result, err := a.Analyze(ctx, "main.beancount")
//	if err != nil {
//		return err
//	}
//	for _, d := range result.Diagnostics {
//		fmt.Println(d)
//	}
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/pycompat"
	"github.com/robinvdvleuten/beanload/telemetry"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Result is the outcome of a successful analysis. Diagnostics holds every
// message collected, in the order they were produced.
type Result struct {
	Data        *ledger.Data
	Diagnostics []ledger.Diagnostic

	// Files lists every file loaded, root first, in load order.
	Files []string
}

// Analyzer performs semantic analysis. An Analyzer holds no per-load state
// and may be used for several loads, also concurrently, provided its Source
// is safe for concurrent use.
type Analyzer struct {
	source   Source
	ordering *pycompat.Ordering
	logger   *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithKeys sets the hash keys used to order tags and links.
func WithKeys(keys pycompat.Keys) Option {
	return func(a *Analyzer) {
		a.ordering = pycompat.NewOrdering(keys)
	}
}

// WithLogger sets the logger for debug events such as include resolution.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer reading files from source.
func New(source Source, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:   source,
		ordering: pycompat.NewOrdering(pycompat.DefaultKeys),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze loads root and every file it includes.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	s := newState(a)
	path := filepath.Clean(root)

	file, err := s.parse(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ledger file not found: %w", err)
		}
		return nil, err
	}

	if err := s.processFile(ctx, path, file); err != nil {
		return nil, err
	}

	s.builder.SetOptions(s.options)

	return &Result{
		Data:        s.builder.Build(),
		Diagnostics: s.diagnostics,
		Files:       s.files,
	}, nil
}

// processFile evaluates the statements of one file. The file is already
// parsed so that a missing include can be reported at its include statement.
func (s *state) processFile(ctx context.Context, path string, file *ast.File) error {
	s.active = append(s.active, path)
	if !s.seen[path] {
		s.seen[path] = true
		s.files = append(s.files, path)
	}
	defer func() { s.active = s.active[:len(s.active)-1] }()

	s.logger.Debug("analyzing file", zap.String("file", path), zap.Int("statements", len(file.Statements)))

	for _, stmt := range file.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch st := stmt.(type) {
		case *ast.Include:
			if err := s.processInclude(ctx, path, st); err != nil {
				return err
			}
		case *ast.GlobalDirective:
			s.processGlobal(st)
		case *ast.Transaction:
			s.processTransaction(st)
		case ast.Directive:
			s.processDirective(st)
		}
	}

	return nil
}

func (s *state) processInclude(ctx context.Context, from string, inc *ast.Include) error {
	paths := s.resolveInclude(from, inc)

	for _, path := range paths {
		if inc.Once && s.seen[path] {
			s.logger.Debug("include-once already loaded", zap.String("file", path))
			continue
		}

		for _, active := range s.active {
			if active == path {
				chain := append(append([]string(nil), s.active...), path)
				return &IncludeCycleError{Pos: inc.Pos, Chain: chain}
			}
		}

		file, err := s.parse(ctx, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.errorf(inc.Pos, "Ledger file not found: %s", path)
				continue
			}
			return err
		}

		s.logger.Debug("including file", zap.String("file", path), zap.String("from", from), zap.Int("line", inc.Pos.Line))

		if err := s.processFile(ctx, path, file); err != nil {
			return err
		}
	}

	return nil
}

// parse reads one file through the source, timed as its own stage.
func (s *state) parse(ctx context.Context, path string) (*ast.File, error) {
	_, timer := telemetry.Start(ctx, "parse "+filepath.Base(path))
	defer timer.End()
	return s.source.Parse(ctx, path)
}

// resolveInclude resolves an include path against the directory of the
// including file. Glob patterns expand to their matches in sorted order.
func (s *state) resolveInclude(from string, inc *ast.Include) []string {
	path := filepath.FromSlash(inc.Path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}
	path = filepath.Clean(path)

	if !strings.ContainsAny(inc.Path, "*?[") {
		return []string{path}
	}

	matches, err := s.source.Glob(path)
	if err != nil {
		s.warnf(inc.Pos, "Invalid include pattern: %s", inc.Path)
		return nil
	}
	if len(matches) == 0 {
		s.warnf(inc.Pos, "Include pattern matched no files: %s", inc.Path)
		return nil
	}

	resolved := make([]string, len(matches))
	for i, m := range matches {
		resolved[i] = filepath.Clean(m)
	}
	slices.Sort(resolved)
	return resolved
}
