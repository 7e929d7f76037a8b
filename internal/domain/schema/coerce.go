package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sigmotoa/plantilla/internal/domain/model"
)

// collector accumulates violations for one document, prefixing field paths.
type collector struct {
	prefix string
	errs   []error
}

func (c *collector) path(field string) string {
	if c.prefix == "" {
		return field
	}
	return c.prefix + "." + field
}

func (c *collector) typeMismatch(field, format string, args ...any) {
	c.errs = append(c.errs, model.TypeMismatch(c.path(field), format, args...))
}

func (c *collector) violation(field, format string, args ...any) {
	c.errs = append(c.errs, model.ConstraintViolation(c.path(field), format, args...))
}

// nested runs fn with a collector rooted at field and merges its findings.
func (c *collector) nested(field string, fn func(*collector)) {
	child := &collector{prefix: c.path(field)}
	fn(child)
	c.errs = append(c.errs, child.errs...)
}

func (c *collector) err() error {
	return errors.Join(c.errs...)
}

// lookup distinguishes a missing key from an explicit null.
func lookup(doc map[string]any, key string) (v any, present bool) {
	v, present = doc[key]
	return v, present
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float32:
		return integral(float64(n))
	case float64:
		return integral(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return integral(f)
		}
	}
	return 0, false
}

// integral accepts whole numbers representable as int64. The upper bound
// is exclusive because float64(math.MaxInt64) rounds up to 2^63.
func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toDate(v any) (model.Date, bool) {
	switch d := v.(type) {
	case string:
		parsed, err := model.ParseDate(strings.TrimSpace(d))
		return parsed, err == nil
	case time.Time:
		return model.DateOf(d), true
	case model.Date:
		return d, true
	}
	return model.Date{}, false
}

// toMap accepts JSON objects and YAML mappings with string keys.
func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func kindName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// Field readers. Each records at most one violation and returns the zero
// value on failure.

func (c *collector) requiredString(doc map[string]any, key string) (string, bool) {
	v, ok := lookup(doc, key)
	if !ok {
		c.violation(key, "field required")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.typeMismatch(key, "expected a string, got %s", kindName(v))
		return "", false
	}
	return s, true
}

// requiredText is a required string that must not be blank; it is returned trimmed.
func (c *collector) requiredText(doc map[string]any, key string) string {
	s, ok := c.requiredString(doc, key)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		c.violation(key, "must not be empty")
	}
	return s
}

func (c *collector) optionalString(doc map[string]any, key string) *string {
	v, ok := lookup(doc, key)
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.typeMismatch(key, "expected a string or null, got %s", kindName(v))
		return nil
	}
	return &s
}

// intField reads an integer that must be >= min. A missing key yields def
// unless required is set.
func (c *collector) intField(doc map[string]any, key string, required bool, def, min int) int {
	v, ok := lookup(doc, key)
	if !ok {
		if required {
			c.violation(key, "field required")
		}
		return def
	}
	n, ok := toInt(v)
	if !ok {
		c.typeMismatch(key, "expected an integer within the int64 range, got %s", kindName(v))
		return def
	}
	if n < min {
		c.violation(key, "must be greater than or equal to %d, got %d", min, n)
	}
	return n
}

func (c *collector) positiveFloat(doc map[string]any, key string) float64 {
	v, ok := lookup(doc, key)
	if !ok {
		c.violation(key, "field required")
		return 0
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		c.typeMismatch(key, "expected a finite number, got %s", kindName(v))
		return 0
	}
	if !(f > 0) {
		c.violation(key, "must be greater than 0, got %v", f)
	}
	return f
}

func (c *collector) boolField(doc map[string]any, key string, def bool) bool {
	v, ok := lookup(doc, key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		c.typeMismatch(key, "expected a boolean, got %s", kindName(v))
		return def
	}
	return b
}

// nullableBool returns def when the key is missing and nil when it is null.
func (c *collector) nullableBool(doc map[string]any, key string, def *bool) *bool {
	v, ok := lookup(doc, key)
	if !ok {
		return def
	}
	if v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		c.typeMismatch(key, "expected a boolean or null, got %s", kindName(v))
		return def
	}
	return &b
}

// optionalDate rejects dates after notAfter when notAfter is non-nil.
func (c *collector) optionalDate(doc map[string]any, key string, notAfter *model.Date) *model.Date {
	v, ok := lookup(doc, key)
	if !ok || v == nil {
		return nil
	}
	d, ok := toDate(v)
	if !ok {
		c.typeMismatch(key, "expected a YYYY-MM-DD date, got %s", kindName(v))
		return nil
	}
	if notAfter != nil && d.After(*notAfter) {
		c.violation(key, "must not be in the future (%s > %s)", d, *notAfter)
		return nil
	}
	return &d
}

// optionalIntMap reads a mapping of text keys to integers.
func (c *collector) optionalIntMap(doc map[string]any, key string) map[string]int {
	v, ok := lookup(doc, key)
	if !ok || v == nil {
		return nil
	}
	m, ok := toMap(v)
	if !ok {
		c.typeMismatch(key, "expected a mapping, got %s", kindName(v))
		return nil
	}
	out := make(map[string]int, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		raw := m[k]
		n, ok := toInt(raw)
		if !ok {
			c.typeMismatch(key+"."+k, "expected an integer within the int64 range, got %s", kindName(raw))
			continue
		}
		out[k] = n
	}
	return out
}
