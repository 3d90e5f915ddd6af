package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/robinvdvleuten/beanload/config"
	"github.com/robinvdvleuten/beanload/loader"
	"github.com/robinvdvleuten/beanload/output"
	"github.com/robinvdvleuten/beanload/telemetry"
	"go.uber.org/zap"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Config file (default: beanload.yaml next to the ledger)." type:"path" short:"c"`
	Booking   string `help:"Booking method, overrides the config and the ledger option."`
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Debug     bool   `help:"Log debug events to stderr."`
	Format    string `help:"Output format." enum:"text,json" default:"text"`
}

type Commands struct {
	Globals

	Check     CheckCmd     `cmd:"" help:"Load a ledger and report its diagnostics."`
	Inventory InventoryCmd `cmd:"" help:"Show the lots held by each account after booking."`
	Hash      HashCmd      `cmd:"" help:"Show Python string hashes and set order for a hash seed."`
	Watch     WatchCmd     `cmd:"" help:"Check a ledger again whenever one of its files changes."`
	Doctor    DoctorCmd    `cmd:"" help:"Doctor utilities for debugging beancount files."`
}

// logger returns a development logger when debugging, a no-op one otherwise.
func (g *Globals) logger() (*zap.Logger, error) {
	if !g.Debug {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// settings reads the config for ledger and applies environment and flag
// overrides.
func (g *Globals) settings(ledger string) (*config.Config, error) {
	cfg := &config.Config{}

	path := g.Config
	if path == "" {
		path = config.Find(ledger)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	env, err := config.Environ()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}

	if g.Booking != "" {
		cfg.Booking = g.Booking
	}
	return cfg, cfg.Validate()
}

// newLoader builds the loader for ledger. cache may be nil.
func (g *Globals) newLoader(ledger string, cache *loader.ParseCache) (*loader.Loader, error) {
	cfg, err := g.settings(ledger)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.LoaderOptions(cache)
	if err != nil {
		return nil, err
	}

	logger, err := g.logger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return loader.New(append(opts, loader.WithLogger(logger))...), nil
}

// withTelemetry attaches a collector to ctx when telemetry is enabled. The
// returned function ends the command timer and writes the report to w.
func (g *Globals) withTelemetry(ctx context.Context, name string, w io.Writer) (context.Context, func()) {
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	ctx, timer := telemetry.Start(ctx, name)

	return ctx, func() {
		timer.End()
		_, _ = fmt.Fprintln(w)
		collector.Report(w, output.NewStyles(w))
	}
}

func commandName(cmd, file string) string {
	return cmd + " " + filepath.Base(file)
}
