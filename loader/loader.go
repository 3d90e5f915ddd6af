// Package loader is the single entry point for loading a Beancount ledger.
//
// Loading runs four stages in order: parsing (the root file and every
// include), semantic analysis into a [ledger.Data], validation, and booking
// every posting into a lot inventory. The result carries all three along
// with every diagnostic collected on the way.
//
// Example usage:
//
//	// Load with defaults: FIFO unless the ledger says otherwise, the
//	// default validation rules, no parse cache
//	result, err := loader.New().Load(ctx, "main.beancount")
//
//	// Share parsed files between loads and force a booking method
//	cache := loader.NewParseCache(10 * time.Minute)
//	l := loader.New(
//		loader.WithParseCache(cache),
//		loader.WithBookingMethod(inventory.Strict),
//	)
//	result, err := l.Load(ctx, "main.beancount")
//
// Every failure is returned as a *Error holding the diagnostics collected
// before it; use errors.As to reach the underlying parse, include, validation
// or booking error.
package loader

import (
	"context"
	"path/filepath"

	"github.com/robinvdvleuten/beanload/analyzer"
	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/parser"
	"github.com/robinvdvleuten/beanload/pycompat"
	"github.com/robinvdvleuten/beanload/telemetry"
	"github.com/robinvdvleuten/beanload/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader loads ledgers. A Loader may be shared between goroutines; every
// Load uses its own analyzer state and booking engine.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithBookingMethod(inventory.LIFO), WithLogger(logger))
type Loader struct {
	logger  *zap.Logger
	keys    pycompat.Keys
	booking *inventory.Method
	rules   []validation.Rule
	cache   *ParseCache
}

// Result is a successfully loaded ledger.
type Result struct {
	// Root is the absolute path of the root file.
	Root string

	// Files lists every loaded file, root first.
	Files []string

	Data        *ledger.Data
	Diagnostics []ledger.Diagnostic

	// Inventory holds the lots of every account after booking all postings.
	Inventory *inventory.Engine
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger routes debug events of every stage to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithKeys sets the hash keys that decide the order of tags and links.
func WithKeys(keys pycompat.Keys) Option {
	return func(l *Loader) {
		l.keys = keys
	}
}

// WithBookingMethod books with method regardless of the ledger's
// booking_method option. Accounts that declare a method on their open
// directive keep it.
func WithBookingMethod(method inventory.Method) Option {
	return func(l *Loader) {
		l.booking = &method
	}
}

// WithRules replaces the validation rules. Passing no rules disables
// validation.
func WithRules(rules ...validation.Rule) Option {
	return func(l *Loader) {
		l.rules = append([]validation.Rule{}, rules...)
	}
}

// WithParseCache reuses parsed files between loads while they are unchanged
// on disk.
func WithParseCache(cache *ParseCache) Option {
	return func(l *Loader) {
		l.cache = cache
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: zap.NewNop(),
		keys:   pycompat.DefaultKeys,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.rules == nil {
		// The default rule names are always registered.
		l.rules, _ = validation.Resolve(nil)
	}

	return l
}

// Load loads the ledger rooted at filename.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	ctx, timer := telemetry.Start(ctx, "load "+filepath.Base(filename))
	defer timer.End()

	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, &Error{Err: err}
	}

	logger := l.logger.With(zap.String("root", filename))

	actx, analyzeTimer := telemetry.Start(ctx, "analyze")
	analyzed, err := analyzer.New(l.source(logger), analyzer.WithKeys(l.keys), analyzer.WithLogger(logger)).
		Analyze(actx, filename)
	analyzeTimer.End()
	if err != nil {
		return nil, &Error{Err: err}
	}

	data := analyzed.Data
	diags := analyzed.Diagnostics

	vctx, validateTimer := telemetry.Start(ctx, "validate")
	ruleDiags, err := validation.NewRunner(l.rules...).Run(vctx, data)
	validateTimer.End()
	diags = append(diags, ruleDiags...)
	if err != nil {
		return nil, &Error{Diagnostics: diags, Err: err}
	}

	bctx, bookTimer := telemetry.Start(ctx, "book")
	engine := inventory.New(l.bookingMethod(data, logger))
	engine.UseOpenMethods(data)
	err = engine.Replay(bctx, data, nil)
	bookTimer.End()
	if err != nil {
		return nil, &Error{Diagnostics: append(diags, bookingDiagnostic(data, err)...), Err: err}
	}

	logger.Debug("ledger loaded",
		zap.Int("entries", data.Len()),
		zap.Int("postings", len(data.Postings())),
		zap.Int("diagnostics", len(diags)),
		zap.Stringer("booking", engine.Method()),
	)

	return &Result{
		Root:        root,
		Files:       analyzed.Files,
		Data:        data,
		Diagnostics: diags,
		Inventory:   engine,
	}, nil
}

// LoadAll loads independent ledgers in parallel. Results are in the order
// of filenames. The first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, filenames ...string) ([]*Result, error) {
	results := make([]*Result, len(filenames))

	g, ctx := errgroup.WithContext(ctx)
	for i, filename := range filenames {
		g.Go(func() error {
			result, err := l.Load(ctx, filename)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// bookingMethod picks the engine's default method: the loader override,
// then the ledger's booking_method option, then FIFO.
func (l *Loader) bookingMethod(data *ledger.Data, logger *zap.Logger) inventory.Method {
	if l.booking != nil {
		return *l.booking
	}
	if name := data.Options().BookingMethod; name != "" {
		if m, err := inventory.ParseMethod(name); err == nil {
			return m
		}
		logger.Debug("ignoring booking_method option", zap.String("value", name))
	}
	return inventory.FIFO
}

func (l *Loader) source(logger *zap.Logger) analyzer.Source {
	opts := []parser.Option{parser.WithTracer(zapTracer(logger))}
	if l.cache != nil {
		return l.cache.source(opts...)
	}
	return analyzer.NewFileSource(opts...)
}

// zapTracer logs recoverable parser events at debug level.
func zapTracer(logger *zap.Logger) parser.Tracer {
	return parser.TracerFunc(func(pos ast.Position, event string) {
		logger.Debug(event, zap.String("file", pos.Filename), zap.Int("line", pos.Line))
	})
}
