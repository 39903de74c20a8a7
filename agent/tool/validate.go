package tool

import (
	"fmt"
	"reflect"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// ValidateArgs checks a flat argument map against a JSON-schema-shaped
// descriptor: required keys, per-property type, enum membership. Tool
// schemas here are shallow object schemas, so nothing deeper is needed.
func ValidateArgs(args map[string]any, schema map[string]any) error {
	props, _ := schema["properties"].(map[string]any)

	for _, key := range requiredKeys(schema) {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("%w: missing required parameter %q", contractx.ErrValidation, key)
		}
	}

	for key, value := range args {
		raw, ok := props[key]
		if !ok {
			return fmt.Errorf("%w: unexpected parameter %q", contractx.ErrValidation, key)
		}
		prop, _ := raw.(map[string]any)
		if err := checkType(key, value, prop); err != nil {
			return err
		}
		if err := checkEnum(key, value, prop); err != nil {
			return err
		}
	}
	return nil
}

func requiredKeys(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		keys := make([]string, 0, len(req))
		for _, item := range req {
			if s, ok := item.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	default:
		return nil
	}
}

func checkType(key string, value any, prop map[string]any) error {
	wantType, _ := prop["type"].(string)
	if wantType == "" {
		return nil
	}

	switch wantType {
	case "string":
		if _, ok := value.(string); !ok {
			return typeMismatch(key, wantType, value)
		}
	case "integer":
		if _, ok := asInt64(value); !ok {
			return typeMismatch(key, wantType, value)
		}
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return typeMismatch(key, wantType, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return typeMismatch(key, wantType, value)
		}
	case "array":
		kind := reflect.ValueOf(value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return typeMismatch(key, wantType, value)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return typeMismatch(key, wantType, value)
		}
	}
	return nil
}

func checkEnum(key string, value any, prop map[string]any) error {
	allowed, ok := prop["enum"].([]string)
	if !ok || len(allowed) == 0 {
		return nil
	}
	got, ok := value.(string)
	if !ok {
		return typeMismatch(key, "string", value)
	}
	for _, candidate := range allowed {
		if got == candidate {
			return nil
		}
	}
	return fmt.Errorf("%w: parameter %q must be one of %v, got %q", contractx.ErrValidation, key, allowed, got)
}

func typeMismatch(key, wantType string, value any) error {
	return fmt.Errorf("%w: parameter %q must be a %s, got %T", contractx.ErrValidation, key, wantType, value)
}

// asInt64 accepts the integer encodings that survive a JSON round trip.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}
