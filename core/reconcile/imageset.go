package reconcile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageSet is an ordered, duplicate-free list of image refs.
// Index 0 is the principal (cover) image.
//
// In the database it is stored as JSON text. Rows written by older revisions
// may hold a JSON string, a native list, or garbage; decoding never fails and
// falls back to an empty set.
type ImageSet []ImageRef

// Dedup returns a copy of refs without duplicates, keeping the first occurrence.
// Empty refs are dropped.
func Dedup(refs []ImageRef) ImageSet {
	out := make(ImageSet, 0, len(refs))
	seen := make(map[ImageRef]struct{}, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// Principal returns the principal image or "" for an empty set.
func (s ImageSet) Principal() ImageRef {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Contains reports whether ref is part of the set.
func (s ImageSet) Contains(ref ImageRef) bool {
	for _, r := range s {
		if r == ref {
			return true
		}
	}
	return false
}

// ParseImageSet converts a persisted value into an ImageSet.
// The second return value is false when raw was present but malformed.
func ParseImageSet(raw any) (ImageSet, bool) {
	switch v := raw.(type) {
	case nil:
		return ImageSet{}, true
	case ImageSet:
		return Dedup(v), true
	case []string:
		return Dedup(v), true
	case []any:
		refs := make([]ImageRef, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return ImageSet{}, false
			}
			refs = append(refs, s)
		}
		return Dedup(refs), true
	case []byte:
		return parseImageSetJSON(v)
	case string:
		return parseImageSetJSON([]byte(v))
	case json.RawMessage:
		return parseImageSetJSON(v)
	default:
		return ImageSet{}, false
	}
}

func parseImageSetJSON(data []byte) (ImageSet, bool) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return ImageSet{}, true
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return ImageSet{}, false
	}

	// A column migrated through a string type may hold a JSON string that itself encodes the list.
	if inner, ok := decoded.(string); ok {
		var nested any
		if err := json.Unmarshal([]byte(inner), &nested); err != nil {
			return ImageSet{}, false
		}
		decoded = nested
	}

	list, ok := decoded.([]any)
	if !ok {
		return ImageSet{}, false
	}
	return ParseImageSet(list)
}

// Scan implements sql.Scanner.
func (s *ImageSet) Scan(value any) error {
	set, _ := ParseImageSet(value)
	*s = set
	return nil
}

// Value implements driver.Valuer.
func (s ImageSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]ImageRef(s))
	if err != nil {
		return nil, fmt.Errorf("encode image set: %w", err)
	}
	return string(data), nil
}

// UnmarshalJSON accepts a list, a JSON-encoded list string, or null.
func (s *ImageSet) UnmarshalJSON(data []byte) error {
	set, _ := parseImageSetJSON(data)
	*s = set
	return nil
}

// MarshalJSON always emits a list, never null.
func (s ImageSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ImageRef(s))
}

// GormDataType tells GORM which column type to use for migrations.
func (ImageSet) GormDataType() string {
	return "text"
}
