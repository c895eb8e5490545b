// Package translate converts between the terminal's schema and the
// provider's. Inbound it validates request parameters against a widget's
// declared specs; outbound it reshapes provider records into the tabular
// form the terminal renders. Both directions fail with errors naming the
// offending parameter or column.
package translate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// dateLayout is the canonical textual date form on both wire surfaces.
const dateLayout = "2006-01-02"

// Value is one validated parameter, tagged by its declared type.
type Value struct {
	Type registry.ParamType
	Str  string
	Num  decimal.Decimal
	Date time.Time
}

// Canonical returns the value in provider query form.
func (v Value) Canonical() string {
	switch v.Type {
	case registry.ParamNumber:
		return v.Num.String()
	case registry.ParamDate:
		return v.Date.Format(dateLayout)
	default:
		return v.Str
	}
}

// Values maps parameter names to validated values. Optional parameters
// without a default are simply absent.
type Values map[string]Value

// TemplateData exposes the values to markdown templates as canonical text.
func (vs Values) TemplateData() map[string]string {
	data := make(map[string]string, len(vs))
	for name, v := range vs {
		data[name] = v.Canonical()
	}
	return data
}

// ValidateParams checks raw query parameters against the widget's declared
// specs. Undeclared parameters are ignored: the terminal rides ambient
// params like theme on every call. Empty values count as absent.
func ValidateParams(desc *registry.Descriptor, raw map[string]string) (Values, error) {
	values := make(Values, len(desc.Params))
	for _, spec := range desc.Params {
		text, ok := raw[spec.Name]
		if !ok || text == "" {
			if spec.Default != "" {
				text = spec.Default
			} else if spec.Required {
				return nil, errors.Validation(spec.Name, "parameter %q is required", spec.Name)
			} else {
				continue
			}
		}
		value, err := parseParam(spec, text)
		if err != nil {
			return nil, err
		}
		values[spec.Name] = value
	}
	return values, nil
}

func parseParam(spec registry.ParamSpec, text string) (Value, error) {
	switch spec.Type {
	case registry.ParamString:
		return Value{Type: spec.Type, Str: text}, nil

	case registry.ParamEnum:
		for _, choice := range spec.Choices {
			if text == choice {
				return Value{Type: spec.Type, Str: text}, nil
			}
		}
		return Value{}, errors.Validation(spec.Name, "parameter %q must be one of %s, got %q",
			spec.Name, strings.Join(spec.Choices, ", "), text)

	case registry.ParamNumber:
		num, err := decimal.NewFromString(text)
		if err != nil {
			return Value{}, errors.Validation(spec.Name, "parameter %q must be a number, got %q", spec.Name, text)
		}
		if spec.Min != nil && num.LessThan(decimal.NewFromFloat(*spec.Min)) {
			return Value{}, errors.Validation(spec.Name, "parameter %q must be at least %g", spec.Name, *spec.Min)
		}
		if spec.Max != nil && num.GreaterThan(decimal.NewFromFloat(*spec.Max)) {
			return Value{}, errors.Validation(spec.Name, "parameter %q must be at most %g", spec.Name, *spec.Max)
		}
		return Value{Type: spec.Type, Num: num}, nil

	case registry.ParamDate:
		for _, layout := range []string{dateLayout, time.RFC3339} {
			if t, err := time.Parse(layout, text); err == nil {
				return Value{Type: spec.Type, Date: t}, nil
			}
		}
		return Value{}, errors.Validation(spec.Name, "parameter %q must be a date (YYYY-MM-DD), got %q", spec.Name, text)
	}
	return Value{}, errors.Validation(spec.Name, "parameter %q has unsupported type %q", spec.Name, spec.Type)
}

// BuildRequest resolves a validated parameter set into a provider request.
// Symbols are upper-cased and comma-split; an empty entry in a symbol list
// is a validation failure, not a silent skip.
func BuildRequest(desc *registry.Descriptor, values Values) (upstream.Request, error) {
	binding := desc.Source
	if binding == nil {
		return upstream.Request{}, errors.Internal(fmt.Errorf("widget %q has no provider binding", desc.ID))
	}

	req := upstream.Request{
		Namespace: binding.Namespace,
		Dataset:   binding.Dataset,
		Query:     url.Values{},
	}

	if binding.SymbolsParam != "" {
		v, ok := values[binding.SymbolsParam]
		if !ok {
			return upstream.Request{}, errors.Validation(binding.SymbolsParam,
				"parameter %q is required", binding.SymbolsParam)
		}
		symbols, err := splitSymbols(binding.SymbolsParam, v.Str)
		if err != nil {
			return upstream.Request{}, err
		}
		req.Symbols = symbols
	}

	for key, val := range binding.Static {
		req.Query.Set(key, val)
	}
	for key, paramName := range binding.Query {
		if v, ok := values[paramName]; ok {
			req.Query.Set(key, v.Canonical())
		}
	}
	return req, nil
}

func splitSymbols(param, text string) ([]string, error) {
	parts := strings.Split(text, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" {
			return nil, errors.Validation(param, "parameter %q contains an empty symbol", param)
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}
