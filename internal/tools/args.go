package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// Arguments arrive as JSON-decoded values from a model or as strings from the
// CLI, so the accessors below accept both.

// StringArg returns a string argument and whether it was present.
func StringArg(args map[string]any, key string) (string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgType, key, v)
	}
	return s, true, nil
}

// IntArg returns an integer argument and whether it was present.
func IntArg(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n != float64(int(n)) {
			return 0, true, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgType, key, n)
		}
		return int(n), true, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, true, fmt.Errorf("%w: %s must be an integer: %v", ErrInvalidArgType, key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgType, key, v)
	}
}

// BoolArg returns a boolean argument and whether it was present.
func BoolArg(args map[string]any, key string) (bool, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, true, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, true, fmt.Errorf("%w: %s must be a boolean: %v", ErrInvalidArgType, key, err)
		}
		return parsed, true, nil
	default:
		return false, true, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidArgType, key, v)
	}
}

// ParseKeyValues turns CLI "key=value" pairs into an argument map.
func ParseKeyValues(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", pair)
		}
		args[key] = value
	}
	return args, nil
}
