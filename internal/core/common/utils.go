package common

import (
	"encoding/json"
	"fmt"
)

// Decode converts v into a T. v may already be a T or *T, raw JSON as []byte,
// json.RawMessage or string, or any value whose JSON encoding has the shape
// of a T (typically a decoded map[string]any).
func Decode[T any](v any) (T, error) {
	var zero T
	switch in := v.(type) {
	case nil:
		return zero, fmt.Errorf("nothing to decode")
	case T:
		return in, nil
	case *T:
		if in == nil {
			return zero, fmt.Errorf("nothing to decode")
		}
		return *in, nil
	case []byte:
		return unmarshal[T](in)
	case json.RawMessage:
		return unmarshal[T](in)
	case string:
		return unmarshal[T]([]byte(in))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return unmarshal[T](data)
}

func unmarshal[T any](data []byte) (T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// RequireKeys fails unless the JSON object in data carries every key.
func RequireKeys(data []byte, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("missing field %q", k)
		}
	}
	return nil
}

// Strings reads a list of strings out of a decoded JSON value. Non-string
// entries are skipped.
func Strings(v any) []string {
	switch in := v.(type) {
	case []string:
		return append([]string(nil), in...)
	case []any:
		out := make([]string, 0, len(in))
		for _, item := range in {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
