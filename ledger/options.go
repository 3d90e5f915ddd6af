package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
)

// Options holds the option and plugin declarations of a ledger. Values are
// kept as declared; interpreting the booking method is left to the
// inventory engine.
type Options struct {
	BookingMethod       string
	OperatingCurrencies []string

	// Tolerance settings. InferredToleranceDefaults is keyed by currency;
	// DefaultInferredTolerance is the "*" entry.
	ToleranceMultiplier       *decimal.Decimal
	InferredToleranceDefaults map[string]decimal.Decimal
	DefaultInferredTolerance  *decimal.Decimal
	InferToleranceFromCost    bool
	Tolerance                 *decimal.Decimal
	ToleranceMap              map[string]decimal.Decimal

	AllowPipeSeparator bool
	RenderCommas       bool

	// DisplayPrecision maps a currency to the number of fraction digits to
	// render.
	DisplayPrecision map[string]int32

	Plugins []Plugin
}

// Plugin is a declared plugin. Plugins are recorded, never executed.
type Plugin struct {
	Name   string
	Config string
}

// NewOptions returns options with empty maps.
func NewOptions() Options {
	return Options{
		InferredToleranceDefaults: make(map[string]decimal.Decimal),
		ToleranceMap:              make(map[string]decimal.Decimal),
		DisplayPrecision:          make(map[string]int32),
	}
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	c := o
	c.OperatingCurrencies = append([]string(nil), o.OperatingCurrencies...)
	c.ToleranceMultiplier = copyDecimal(o.ToleranceMultiplier)
	c.DefaultInferredTolerance = copyDecimal(o.DefaultInferredTolerance)
	c.Tolerance = copyDecimal(o.Tolerance)
	c.InferredToleranceDefaults = maps.Clone(o.InferredToleranceDefaults)
	c.ToleranceMap = maps.Clone(o.ToleranceMap)
	c.DisplayPrecision = maps.Clone(o.DisplayPrecision)
	c.Plugins = append([]Plugin(nil), o.Plugins...)
	return c
}
