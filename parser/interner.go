package parser

import "sync"

// Interner deduplicates strings that repeat throughout a ledger, mostly
// account names and currency codes. A single Interner may be shared by the
// parses of every file in a load, including parses running concurrently.
type Interner struct {
	mu   sync.Mutex
	pool map[string]string
}

// NewInterner creates a new string interner with the given initial capacity.
func NewInterner(capacity int) *Interner {
	return &Interner{
		pool: make(map[string]string, capacity),
	}
}

// Intern returns the canonical version of the string.
func (i *Interner) Intern(s string) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if interned, ok := i.pool[s]; ok {
		return interned
	}
	i.pool[s] = s
	return s
}

// InternBytes converts a byte slice to a string and interns it.
func (i *Interner) InternBytes(b []byte) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	// The conversion in the map index does not allocate.
	if interned, ok := i.pool[string(b)]; ok {
		return interned
	}
	s := string(b)
	i.pool[s] = s
	return s
}

// Size returns the number of unique strings in the pool.
func (i *Interner) Size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.pool)
}
