// Package telemetry times the stages of a load as a tree.
//
// A Collector travels in the context, so instrumented code needs no extra
// parameters. Without a collector every call is a no-op:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	ctx, timer := telemetry.Start(ctx, "load main.beancount")
//	defer timer.End()
//
//	_, parse := telemetry.Start(ctx, "parse") // nested under "load"
//	parse.End()
//
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/beanload/output"
)

type collectorKey struct{}

type timerKey struct{}

// Collector records timers.
type Collector interface {
	// Start begins a top-level timer.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for
	// plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer is one timed operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, collector)
}

// FromContext returns the collector of ctx, or one that records nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// Start begins a timer nested under the timer carried by ctx, or a
// top-level timer when there is none. The returned context carries the new
// timer, so stages started from it nest below.
func Start(ctx context.Context, name string) (context.Context, Timer) {
	var timer Timer
	if parent, ok := ctx.Value(timerKey{}).(Timer); ok {
		timer = parent.Child(name)
	} else {
		timer = FromContext(ctx).Start(name)
	}
	return context.WithValue(ctx, timerKey{}, timer), timer
}

type noOpCollector struct{}

func (noOpCollector) Start(string) Timer { return noOpTimer{} }

func (noOpCollector) Report(io.Writer, *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(string) Timer { return noOpTimer{} }
