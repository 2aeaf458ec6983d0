// Package normalize maps loosely typed router records onto view models.
//
// The router reports numbers as strings, omits empty attributes and, depending
// on the transport, spells keys either hyphenated or camel-cased. Every
// function here is pure and never fails; missing or malformed input yields the
// documented default.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

// Field is a record attribute with its accepted keys in lookup order.
type Field struct {
	Name string
	Keys []string
}

// NewField builds a Field from its primary key and alternates. Each key is
// followed by its camel-cased spelling.
func NewField(key string, alternates ...string) Field {
	keys := make([]string, 0, 2*(len(alternates)+1))
	seen := map[string]struct{}{}
	for _, candidate := range append([]string{key}, alternates...) {
		for _, spelling := range []string{candidate, CamelCase(candidate)} {
			if _, ok := seen[spelling]; ok {
				continue
			}
			seen[spelling] = struct{}{}
			keys = append(keys, spelling)
		}
	}
	return Field{Name: key, Keys: keys}
}

// CamelCase turns a hyphenated RouterOS key into its camel-cased form.
func CamelCase(key string) string {
	if !strings.Contains(key, "-") {
		return key
	}
	var b strings.Builder
	upper := false
	for _, r := range key {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		} else if upper {
			b.WriteRune('-')
		}
		upper = false
		b.WriteRune(r)
	}
	if upper {
		b.WriteRune('-')
	}
	return b.String()
}

// Lookup returns the first present, non-nil, non-blank value for f.
func Lookup(rec model.Record, f Field) (any, bool) {
	if rec == nil {
		return nil, false
	}
	for _, key := range f.Keys {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return value, true
	}
	return nil, false
}

// Int coerces a native number or base-10 numeric string. Anything else is 0.
func Int(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return clampUint(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return clampUint(t)
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case json.Number:
		return parseNumeric(t.String())
	case string:
		return parseNumeric(t)
	default:
		return 0
	}
}

// String renders v as trimmed text, returning def when v is missing or blank.
func String(v any, def string) string {
	var out string
	switch t := v.(type) {
	case nil:
		return def
	case string:
		out = t
	case fmt.Stringer:
		out = t.String()
	case float64:
		out = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		out = fmt.Sprintf("%v", v)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return def
	}
	return out
}

// IntField looks up f and coerces it with Int, falling back to def when absent.
func IntField(rec model.Record, f Field, def int64) int64 {
	value, ok := Lookup(rec, f)
	if !ok {
		return def
	}
	return Int(value)
}

// StringField looks up f and coerces it with String.
func StringField(rec model.Record, f Field, def string) string {
	value, _ := Lookup(rec, f)
	return String(value, def)
}

// OptionalString is StringField that reports absence as nil.
func OptionalString(rec model.Record, f Field) *string {
	value, ok := Lookup(rec, f)
	if !ok {
		return nil
	}
	s := String(value, "")
	return &s
}

// OptionalInt is IntField that reports absence as nil.
func OptionalInt(rec model.Record, f Field) *int64 {
	value, ok := Lookup(rec, f)
	if !ok {
		return nil
	}
	n := Int(value)
	return &n
}

func parseNumeric(raw string) int64 {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0
	}
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return n
	}
	if !isPlainDecimal(clean) {
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return floatToInt(f)
}

// isPlainDecimal matches [+-]?digits(.digits)? so exponent, hex and
// Inf/NaN spellings never reach ParseFloat.
func isPlainDecimal(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasDot || allDigits(fracPart)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func floatToInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(f)
}

func clampUint(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
