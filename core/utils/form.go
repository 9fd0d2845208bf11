package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ToStringSlice reads a list value sent either as a JSON array, a single
// string, a comma separated string, or repeated form fields.
// Blank entries are dropped.
func ToStringSlice(val any) []string {
	var raw []string
	switch v := val.(type) {
	case nil:
		return []string{}
	case []string:
		if len(v) == 1 {
			return ToStringSlice(v[0])
		}
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, ToString(item))
		}
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			var list []string
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				raw = list
				break
			}
		}
		raw = strings.Split(s, ",")
	default:
		raw = []string{ToString(v)}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ToOptionalInt parses s as an int. Empty or invalid input yields nil.
func ToOptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}

// ToOptionalBool parses s as a bool. Empty or invalid input yields nil.
func ToOptionalBool(s string) *bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}
