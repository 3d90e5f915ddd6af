package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanload/config"
	"github.com/robinvdvleuten/beanload/pycompat"
)

// HashCmd shows how a set of strings hashes and iterates under a seed. The
// seed comes from --seed, else from BEANLOAD_HASH_SEED or PYTHONHASHSEED,
// else the default seed.
type HashCmd struct {
	Seed    *uint32  `help:"Hash seed, as PYTHONHASHSEED."`
	Strings []string `help:"Strings to hash." arg:""`
}

type hashReport struct {
	Seed   *uint32          `json:"seed,omitempty"`
	Hashes map[string]int64 `json:"hashes"`
	Order  []string         `json:"order"`
}

func (cmd *HashCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg := &config.Config{HashSeed: cmd.Seed}
	if cmd.Seed == nil {
		env, err := config.Environ()
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(env); err != nil {
			return err
		}
	}

	keys, err := cfg.HashKeys()
	if err != nil {
		return err
	}

	order := pycompat.NewOrdering(keys).Order(cmd.Strings)

	if globals.Format == "json" {
		report := hashReport{Seed: cfg.HashSeed, Hashes: make(map[string]int64, len(cmd.Strings)), Order: order}
		for _, s := range cmd.Strings {
			report.Hashes[s] = pycompat.Hash(keys, s)
		}
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	rows := make([][]string, 0, len(cmd.Strings))
	for _, s := range cmd.Strings {
		rows = append(rows, []string{s, fmt.Sprint(pycompat.Hash(keys, s))})
	}
	writeTable(ctx.Stdout, rows, 1)
	_, _ = fmt.Fprintf(ctx.Stdout, "order: %s\n", strings.Join(order, " "))
	return nil
}
