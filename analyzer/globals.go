package analyzer

import (
	"strings"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/number"
	"github.com/shopspring/decimal"
)

func (s *state) processGlobal(g *ast.GlobalDirective) {
	switch strings.ToLower(g.Kind) {
	case "option":
		s.processOption(g)
	case "plugin":
		s.processPlugin(g)
	case "pushtag":
		s.pushTag(g)
	case "poptag":
		s.popTag(g)
	case "pushlink":
		s.pushLink(g)
	case "poplink":
		s.popLink(g)
	case "pushmeta":
		s.pushMeta(g)
	case "popmeta":
		s.popMeta(g)
	default:
		s.infof(g.Pos, "Unhandled global directive: %s", g.Kind)
	}
}

func normalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

func normalizeLink(link string) string {
	return strings.TrimPrefix(strings.TrimSpace(link), "^")
}

func (s *state) pushTag(g *ast.GlobalDirective) {
	tag := normalizeTag(g.Arg(0))
	if tag == "" {
		s.warnf(g.Pos, "pushtag requires a tag name")
		return
	}
	s.tags = append(s.tags, tag)
}

// popTag pops the top of the tag stack, or the topmost occurrence of the
// named tag.
func (s *state) popTag(g *ast.GlobalDirective) {
	if len(s.tags) == 0 {
		s.warnf(g.Pos, "poptag with empty stack")
		return
	}

	tag := normalizeTag(g.Arg(0))
	if tag == "" {
		s.tags = s.tags[:len(s.tags)-1]
		return
	}

	var ok bool
	if s.tags, ok = removeTopmost(s.tags, tag); !ok {
		s.warnf(g.Pos, "poptag could not find tag: %s", tag)
	}
}

func (s *state) pushLink(g *ast.GlobalDirective) {
	link := normalizeLink(g.Arg(0))
	if link == "" {
		s.warnf(g.Pos, "pushlink requires a link name")
		return
	}
	s.links = append(s.links, link)
}

func (s *state) popLink(g *ast.GlobalDirective) {
	if len(s.links) == 0 {
		s.warnf(g.Pos, "poplink with empty stack")
		return
	}

	link := normalizeLink(g.Arg(0))
	if link == "" {
		s.links = s.links[:len(s.links)-1]
		return
	}

	var ok bool
	if s.links, ok = removeTopmost(s.links, link); !ok {
		s.warnf(g.Pos, "poplink could not find link: %s", link)
	}
}

func (s *state) pushMeta(g *ast.GlobalDirective) {
	pair, ok := parseMetaArgument(g.Arg(0))
	if !ok {
		s.warnf(g.Pos, `pushmeta requires "key value"`)
		return
	}
	s.meta = append(s.meta, pair)
}

func (s *state) popMeta(g *ast.GlobalDirective) {
	if len(s.meta) == 0 {
		s.warnf(g.Pos, "popmeta with empty stack")
		return
	}

	key := strings.TrimSuffix(strings.TrimSpace(g.Arg(0)), ":")
	if key == "" {
		s.meta = s.meta[:len(s.meta)-1]
		return
	}

	for i := len(s.meta) - 1; i >= 0; i-- {
		if s.meta[i].key == key {
			s.meta = append(s.meta[:i], s.meta[i+1:]...)
			return
		}
	}
	s.warnf(g.Pos, "popmeta could not find metadata key: %s", key)
}

// parseMetaArgument splits "key: value" at the first colon, or "key value"
// at the first space. Surrounding quotes are stripped from the value.
func parseMetaArgument(raw string) (metaPair, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return metaPair{}, false
	}

	var key, value string
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		key, value = raw[:i], raw[i+1:]
	} else if i := strings.IndexByte(raw, ' '); i >= 0 {
		key, value = raw[:i], raw[i+1:]
	} else {
		return metaPair{}, false
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return metaPair{}, false
	}

	return metaPair{key: key, value: stripQuotes(strings.TrimSpace(value))}, true
}

func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func (s *state) processPlugin(g *ast.GlobalDirective) {
	name := g.Arg(0)
	if name == "" {
		name = "<unknown>"
	}
	s.options.Plugins = append(s.options.Plugins, ledger.Plugin{Name: name, Config: g.Arg(1)})
	s.warnf(g.Pos, "Plugin '%s' ignored. Plugins are not executed, so results may differ from bean-check.", name)
}

func (s *state) processOption(g *ast.GlobalDirective) {
	if len(g.Args) == 0 {
		s.warnf(g.Pos, "option directive missing name/value; ignoring")
		return
	}

	name := strings.ToLower(g.Arg(0))
	value := g.Arg(1)
	opts := &s.options

	switch name {
	case "tolerance_multiplier", "inferred_tolerance_multiplier":
		if d, ok := parseOptionDecimal(value); ok {
			opts.ToleranceMultiplier = &d
		} else {
			s.warnf(g.Pos, "invalid tolerance_multiplier value: %s", value)
		}

	case "inferred_tolerance_default":
		currency, d, ok := s.parseCurrencyValue(g, name, value)
		if !ok {
			return
		}
		if currency == "*" {
			opts.DefaultInferredTolerance = &d
		} else {
			opts.InferredToleranceDefaults[currency] = d
		}

	case "infer_tolerance_from_cost":
		if b, ok := parseOptionBool(value); ok {
			opts.InferToleranceFromCost = b
		} else {
			s.warnf(g.Pos, "invalid infer_tolerance_from_cost value: %s", value)
		}

	case "operating_currency":
		if strings.TrimSpace(value) == "" {
			s.warnf(g.Pos, "operating_currency requires a currency code")
			return
		}
		currency := strings.TrimSpace(value)
		for _, existing := range opts.OperatingCurrencies {
			if existing == currency {
				return
			}
		}
		opts.OperatingCurrencies = append(opts.OperatingCurrencies, currency)

	case "tolerance":
		if d, ok := parseOptionDecimal(value); ok {
			abs := d.Abs()
			opts.Tolerance = &abs
		} else {
			s.warnf(g.Pos, "invalid tolerance value: %s", value)
		}

	case "tolerance_map":
		if currency, d, ok := s.parseCurrencyValue(g, name, value); ok {
			opts.ToleranceMap[currency] = d.Abs()
		}

	case "render_commas":
		if b, ok := parseOptionBool(value); ok {
			opts.RenderCommas = b
		} else {
			s.warnf(g.Pos, "invalid render_commas value: %s", value)
		}

	case "allow_pipe_separator":
		if b, ok := parseOptionBool(value); ok {
			opts.AllowPipeSeparator = b
		} else {
			s.warnf(g.Pos, "invalid allow_pipe_separator value: %s", value)
		}

	case "display_precision":
		if currency, d, ok := s.parseCurrencyValue(g, name, value); ok {
			opts.DisplayPrecision[currency] = max(-d.Exponent(), 0)
		}

	case "booking_method":
		if _, err := inventory.ParseMethod(value); err != nil {
			s.warnf(g.Pos, "invalid booking_method value: %s", value)
			return
		}
		opts.BookingMethod = strings.ToUpper(strings.TrimSpace(value))

	default:
		s.infof(g.Pos, "%s: option directive not yet supported -> %s", g.Kind, strings.Join(g.Args, " "))
	}
}

// parseCurrencyValue parses the "CURRENCY:value" form shared by several
// options. The decimal is normalised by dropping trailing zeros.
func (s *state) parseCurrencyValue(g *ast.GlobalDirective, name, value string) (string, decimal.Decimal, bool) {
	currency, raw, found := strings.Cut(value, ":")
	if !found {
		s.warnf(g.Pos, "invalid %s format; expected CURRENCY:value", name)
		return "", decimal.Decimal{}, false
	}

	d, ok := parseOptionDecimal(raw)
	if !ok {
		s.warnf(g.Pos, "invalid %s value: %s", name, value)
		return "", decimal.Decimal{}, false
	}

	currency = strings.TrimSpace(currency)
	if currency == "" {
		s.warnf(g.Pos, "%s currency missing", name)
		return "", decimal.Decimal{}, false
	}

	return currency, stripTrailingZeros(d), true
}

func parseOptionDecimal(value string) (decimal.Decimal, bool) {
	d, err := number.Parse(value)
	if err != nil || d == nil {
		return decimal.Decimal{}, false
	}
	return *d, true
}

func parseOptionBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}

// stripTrailingZeros returns d with the smallest exponent that keeps its
// value, so 0.0100 becomes 0.01 and 100 stays 100.
func stripTrailingZeros(d decimal.Decimal) decimal.Decimal {
	if d.Exponent() >= 0 {
		return d
	}
	trimmed, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return trimmed
}
