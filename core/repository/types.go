package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScanJSON decodes a JSON text column into dst. NULL and empty values leave dst untouched.
func ScanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// JSONValue encodes v as JSON text for storage.
func JSONValue(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// StringList is a []string stored as a JSON text column.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var out []string
	if err := ScanJSON(src, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return JSONValue([]string(l))
}

// MarshalJSON never emits null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// GormDataType stores the list as text.
func (StringList) GormDataType() string {
	return "text"
}
