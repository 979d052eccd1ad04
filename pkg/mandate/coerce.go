package mandate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Payloads arrive as generic JSON maps. The helpers below coerce the loosely
// typed values into what the mandate builders need, mirroring how the request
// layer would have decoded them.

func mapValue(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// stringField defaults only when the key is absent or not a string; an
// explicit empty string is kept.
func stringField(m map[string]any, key, fallback string) string {
	raw, ok := m[key]
	if !ok {
		return fallback
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fallback
}

// intValue reads a numeric value leniently: anything non-numeric falls back.
func intValue(v any, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

// int64Value reads a numeric value strictly: a present but non-numeric value
// is an error rather than a silent fallback.
func int64Value(v any, fallback int64) (int64, error) {
	switch t := v.(type) {
	case nil:
		return fallback, nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", t)
		}
		return n, nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", t.String())
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}

// decimalValue parses a monetary value from any JSON representation. Missing
// values default to zero; present but unparseable values are an error.
func decimalValue(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a decimal: %q", t)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a decimal: %q", t.String())
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("not a decimal: %v", v)
	}
}
