package validation

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrUnknownRule is returned by Lookup for a name nothing registered.
var ErrUnknownRule = errors.New("unknown validation rule")

// DefaultRules are the rules run when configuration names none.
var DefaultRules = []string{"account-name", "open-close"}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Rule{
		"account-name":    func() Rule { return AccountNames() },
		"open-close":      func() Rule { return OpenClose() },
		"closed-holdings": func() Rule { return ClosedHoldings() },
	}
)

// Register makes a rule available under name. Registering a name twice
// replaces the earlier constructor.
func Register(name string, newRule func() Rule) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = newRule
}

// Lookup returns a new instance of the rule registered under name.
func Lookup(name string) (Rule, error) {
	registryMu.RLock()
	newRule, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	return newRule(), nil
}

// Resolve looks up every name in order. An empty list resolves to
// DefaultRules.
func Resolve(names []string) ([]Rule, error) {
	if len(names) == 0 {
		names = DefaultRules
	}

	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		rule, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Names returns every registered rule name, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}
