// Package decode converts between typed values and the generic JSON maps
// stored in the table store.
package decode

import (
	"encoding/json"
	"fmt"
)

// FromMap decodes a generic map into T through its JSON form.
func FromMap[T any](data map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(data)
	if err != nil {
		return result, fmt.Errorf("encode map: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("decode %T: %w", result, err)
	}
	return result, nil
}

// ToMap encodes v as a generic map through its JSON form. v must encode to
// a JSON object.
func ToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}

	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	return result, nil
}
