// Package config reads loader settings from a YAML file and the
// environment.
//
// A config file is optional. When present it usually sits next to the
// ledger as beanload.yaml:
//
//	booking: LIFO
//	hash_seed: 29
//	rules: [account-name, open-close, closed-holdings]
//	parse_cache_ttl: 10m
//
// Environment variables override the file. They are read from the process
// environment and from an optional .env file:
//
//	BEANLOAD_BOOKING     booking method
//	BEANLOAD_HASH_SEED   hash seed, falls back to PYTHONHASHSEED
//	BEANLOAD_RULES       comma separated rule names
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/loader"
	"github.com/robinvdvleuten/beanload/pycompat"
	"github.com/robinvdvleuten/beanload/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the name Find looks for next to a ledger.
const FileName = "beanload.yaml"

// Config holds loader settings. The zero value selects every default.
type Config struct {
	// Booking overrides the ledger's booking_method option.
	Booking string `yaml:"booking"`

	// HashSeed derives the hash keys like PYTHONHASHSEED does. Keys wins
	// when both are set.
	HashSeed *uint32 `yaml:"hash_seed"`
	Keys     *Keys   `yaml:"keys"`

	// Rules names the validation rules to run, in order. Empty means the
	// default rules.
	Rules []string `yaml:"rules"`

	// ParseCacheTTL enables the parse cache when positive.
	ParseCacheTTL time.Duration `yaml:"parse_cache_ttl"`
}

// Keys are explicit hash keys, written as hexadecimal strings.
type Keys struct {
	K0 string `yaml:"k0"`
	K1 string `yaml:"k1"`
}

// Load reads the config file at path. Unknown fields are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config document and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the config file next to ledger, or "" when there is none.
func Find(ledger string) string {
	path := filepath.Join(filepath.Dir(ledger), FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Environ returns the environment overrides. Values from envFiles (".env"
// when none is given) fill in variables the process environment does not
// set; missing files are skipped.
func Environ(envFiles ...string) (map[string]string, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	env := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		for k, v := range values {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}

	for _, key := range []string{"BEANLOAD_BOOKING", "BEANLOAD_HASH_SEED", "PYTHONHASHSEED", "BEANLOAD_RULES"} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}

	return env, nil
}

// ApplyEnv applies environment overrides to c.
func (c *Config) ApplyEnv(env map[string]string) error {
	if v := strings.TrimSpace(env["BEANLOAD_BOOKING"]); v != "" {
		c.Booking = v
	}

	seed, ok := env["BEANLOAD_HASH_SEED"]
	if !ok || strings.TrimSpace(seed) == "" {
		seed, ok = env["PYTHONHASHSEED"]
	}
	// PYTHONHASHSEED=random means no fixed seed.
	if seed = strings.TrimSpace(seed); ok && seed != "" && seed != "random" {
		n, err := strconv.ParseUint(seed, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid hash seed %q: %w", seed, err)
		}
		s := uint32(n)
		c.HashSeed = &s
		c.Keys = nil
	}

	if v := strings.TrimSpace(env["BEANLOAD_RULES"]); v != "" {
		c.Rules = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Rules = append(c.Rules, name)
			}
		}
	}

	return c.Validate()
}

// Validate checks that every value can be used.
func (c *Config) Validate() error {
	if c.Booking != "" {
		if _, err := inventory.ParseMethod(c.Booking); err != nil {
			return fmt.Errorf("invalid booking: %w", err)
		}
	}
	if _, err := c.HashKeys(); err != nil {
		return err
	}
	for _, name := range c.Rules {
		if _, err := validation.Lookup(name); err != nil {
			return err
		}
	}
	if c.ParseCacheTTL < 0 {
		return fmt.Errorf("invalid parse_cache_ttl: %s", c.ParseCacheTTL)
	}
	return nil
}

// HashKeys returns the hash keys the config selects: explicit keys, else
// keys derived from the seed, else the default keys.
func (c *Config) HashKeys() (pycompat.Keys, error) {
	switch {
	case c.Keys != nil:
		k0, err := strconv.ParseUint(strings.TrimPrefix(c.Keys.K0, "0x"), 16, 64)
		if err != nil {
			return pycompat.Keys{}, fmt.Errorf("invalid keys.k0 %q: %w", c.Keys.K0, err)
		}
		k1, err := strconv.ParseUint(strings.TrimPrefix(c.Keys.K1, "0x"), 16, 64)
		if err != nil {
			return pycompat.Keys{}, fmt.Errorf("invalid keys.k1 %q: %w", c.Keys.K1, err)
		}
		return pycompat.Keys{K0: k0, K1: k1}, nil
	case c.HashSeed != nil:
		return pycompat.KeysFromSeed(*c.HashSeed), nil
	default:
		return pycompat.DefaultKeys, nil
	}
}

// LoaderOptions turns the config into loader options. A parse cache is
// created when ParseCacheTTL is positive and none is passed in.
func (c *Config) LoaderOptions(cache *loader.ParseCache) ([]loader.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	keys, _ := c.HashKeys()
	opts := []loader.Option{loader.WithKeys(keys)}

	if c.Booking != "" {
		method, _ := inventory.ParseMethod(c.Booking)
		opts = append(opts, loader.WithBookingMethod(method))
	}

	if len(c.Rules) > 0 {
		rules, err := validation.Resolve(c.Rules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, loader.WithRules(rules...))
	}

	if cache == nil && c.ParseCacheTTL > 0 {
		cache = loader.NewParseCache(c.ParseCacheTTL)
	}
	if cache != nil {
		opts = append(opts, loader.WithParseCache(cache))
	}

	return opts, nil
}
