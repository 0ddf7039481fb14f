package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key is a primary or foreign key value normalized to its textual form, so that
// a numeric id and its string rendering resolve to the same record.
type Key string

// Entity is an opaque backend record. Only key extraction and field formatting
// are interpreted; everything else is passed through untouched.
//
// Entities handed out by the engine are shared and must be treated as read-only.
type Entity map[string]any

// timeLayouts are the timestamp formats the backend emits.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Field returns the raw value stored under name.
func (e Entity) Field(name string) (any, bool) {
	v, ok := e[name]
	return v, ok
}

// String renders the field as text. Missing and null fields render as "".
func (e Entity) String(name string) string {
	return FormatValue(e[name])
}

// Key returns the field normalized as a Key.
func (e Entity) Key(name string) Key {
	return Key(strings.TrimSpace(e.String(name)))
}

// Number parses the field as a float. Decimal columns arrive either as JSON
// numbers or as strings, both are accepted.
func (e Entity) Number(name string) (float64, bool) {
	switch v := e[name].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool reports whether the field holds a true value.
func (e Entity) Bool(name string) bool {
	switch v := e[name].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// Time parses the field as a timestamp.
func (e Entity) Time(name string) (time.Time, bool) {
	s := strings.TrimSpace(e.String(name))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatValue renders a decoded JSON value as display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
