// Package inventory tracks cost-basis lots per account and commodity.
//
// An [Engine] replays postings in order. Each account gets an
// [AccountInventory] and each (account, currency) pair a
// [CommodityInventory], created on first use. Increases first close open
// short lots and then book a new lot; decreases consume lots according to
// the booking [Method]:
//
//	engine := inventory.New(inventory.FIFO)
//	for _, p := range data.Postings() {
//		if _, err := engine.Book(p); err != nil {
//			return err
//		}
//	}
//	lots := engine.Snapshot("Assets:Brokerage", "HOOL")
package inventory

import (
	"fmt"
	"strings"
)

// Method is a booking method.
type Method int

const (
	// FIFO reduces the oldest lot first.
	FIFO Method = iota
	// LIFO reduces the newest lot first.
	LIFO
	// Average keeps a single lot per commodity at the weighted average cost.
	Average
	// Strict requires every reduction to match exactly one lot.
	Strict
)

var methodNames = map[Method]string{
	FIFO:    "FIFO",
	LIFO:    "LIFO",
	Average: "AVERAGE",
	Strict:  "STRICT",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod parses a booking method name, ignoring case and surrounding
// whitespace.
func ParseMethod(s string) (Method, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return FIFO, fmt.Errorf("%w %q", ErrUnknownMethod, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so a Method can be
// read directly from configuration files.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
