package sqlutil

import (
	"encoding/json"
	"fmt"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go values and JSONB columns

// ToNullJSON marshals val into a JSONB value. A nil val is stored as NULL.
func ToNullJSON(val interface{}) (pqtype.NullRawMessage, error) {
	if val == nil {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal json column: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// FromNullStrings decodes a JSONB array of strings. NULL yields an empty slice.
func FromNullStrings(val pqtype.NullRawMessage) ([]string, error) {
	if !val.Valid || len(val.RawMessage) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(val.RawMessage, &out); err != nil {
		return nil, fmt.Errorf("unmarshal json column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
