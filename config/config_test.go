package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/loader"
	"github.com/robinvdvleuten/beanload/pycompat"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
booking: lifo
hash_seed: 29
rules: [account-name, closed-holdings]
parse_cache_ttl: 10m
`))
	assert.NoError(t, err)
	assert.Equal(t, "lifo", cfg.Booking)
	assert.Equal(t, uint32(29), *cfg.HashSeed)
	assert.Equal(t, []string{"account-name", "closed-holdings"}, cfg.Rules)
	assert.Equal(t, 10*time.Minute, cfg.ParseCacheTTL)

	keys, err := cfg.HashKeys()
	assert.NoError(t, err)
	assert.Equal(t, pycompat.KeysFromSeed(29), keys)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	assert.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	keys, err := cfg.HashKeys()
	assert.NoError(t, err)
	assert.Equal(t, pycompat.DefaultKeys, keys)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"unknown field", "bookng: FIFO\n", "field bookng not found"},
		{"bad booking", "booking: HIFO\n", `invalid booking: unknown booking method "HIFO"`},
		{"bad rule", "rules: [nope]\n", `unknown validation rule "nope"`},
		{"bad key", "keys: {k0: xyz, k1: '0'}\n", `invalid keys.k0 "xyz"`},
		{"negative ttl", "parse_cache_ttl: -1s\n", "invalid parse_cache_ttl: -1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestExplicitKeys(t *testing.T) {
	cfg, err := Parse([]byte("hash_seed: 1\nkeys:\n  k0: \"0x8242e80971a3bf85\"\n  k1: \"452e7c62c21c1e46\"\n"))
	assert.NoError(t, err)

	keys, err := cfg.HashKeys()
	assert.NoError(t, err)
	assert.Equal(t, pycompat.Keys{K0: 0x8242e80971a3bf85, K1: 0x452e7c62c21c1e46}, keys)
}

func TestLoadAndFind(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "main.beancount")
	assert.Equal(t, "", Find(ledgerPath))

	path := filepath.Join(dir, FileName)
	assert.NoError(t, os.WriteFile(path, []byte("booking: STRICT\n"), 0o644))
	assert.Equal(t, path, Find(ledgerPath))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "STRICT", cfg.Booking)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{Booking: "FIFO", Rules: []string{"open-close"}}
	err := cfg.ApplyEnv(map[string]string{
		"BEANLOAD_BOOKING": "average",
		"PYTHONHASHSEED":   "29",
		"BEANLOAD_RULES":   "account-name, closed-holdings,",
	})
	assert.NoError(t, err)
	assert.Equal(t, "average", cfg.Booking)
	assert.Equal(t, uint32(29), *cfg.HashSeed)
	assert.Equal(t, []string{"account-name", "closed-holdings"}, cfg.Rules)

	// BEANLOAD_HASH_SEED wins over PYTHONHASHSEED.
	assert.NoError(t, cfg.ApplyEnv(map[string]string{"BEANLOAD_HASH_SEED": "0", "PYTHONHASHSEED": "29"}))
	assert.Equal(t, uint32(0), *cfg.HashSeed)

	assert.NoError(t, cfg.ApplyEnv(map[string]string{"PYTHONHASHSEED": "random"}))
	assert.Equal(t, uint32(0), *cfg.HashSeed)

	assert.Error(t, cfg.ApplyEnv(map[string]string{"BEANLOAD_HASH_SEED": "-1"}))
	assert.Error(t, (&Config{}).ApplyEnv(map[string]string{"BEANLOAD_BOOKING": "HIFO"}))
}

func TestEnviron(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	assert.NoError(t, os.WriteFile(envFile, []byte("BEANLOAD_BOOKING=LIFO\nBEANLOAD_RULES=open-close\n"), 0o644))

	t.Setenv("BEANLOAD_RULES", "account-name")

	env, err := Environ(envFile, filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
	assert.Equal(t, "LIFO", env["BEANLOAD_BOOKING"])
	assert.Equal(t, "account-name", env["BEANLOAD_RULES"])
}

func TestLoaderOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.beancount")
	assert.NoError(t, os.WriteFile(path, []byte(`2014-01-01 open Assets:Brokerage
2014-02-01 * "Buy"
  Assets:Brokerage  10 HOOL {1 USD}
  Equity:Opening
2014-02-02 * "Buy"
  Assets:Brokerage  10 HOOL {2 USD}
  Equity:Opening
`), 0o644))

	cfg := &Config{Booking: "average", ParseCacheTTL: time.Minute}
	opts, err := cfg.LoaderOptions(nil)
	assert.NoError(t, err)

	result, err := loader.New(opts...).Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, inventory.Average, result.Inventory.Method())
	assert.Equal(t, 1, len(result.Inventory.Snapshot("Assets:Brokerage", "HOOL")))

	_, err = (&Config{Rules: []string{"nope"}}).LoaderOptions(nil)
	assert.Error(t, err)
}
