package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

// StringArg returns a trimmed string argument, or "" when it is absent.
func StringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case fmt.Stringer:
		return strings.TrimSpace(s.String()), nil
	default:
		return "", errorskg.Invalid("parameter %s must be a string, got %T", name, v)
	}
}

// IntArg returns an integer argument, or def when it is absent. Models send
// numbers as JSON numbers or, occasionally, as strings.
func IntArg(args map[string]any, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return wholeNumber(name, float64(n))
	case float64:
		return wholeNumber(name, n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errorskg.Invalid("parameter %s must be an integer, got %q", name, n)
		}
		return int(i), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, errorskg.Invalid("parameter %s must be an integer, got %q", name, n)
		}
		return i, nil
	default:
		return 0, errorskg.Invalid("parameter %s must be an integer, got %T", name, v)
	}
}

func wholeNumber(name string, f float64) (int, error) {
	if f != math.Trunc(f) {
		return 0, errorskg.Invalid("parameter %s must be an integer, got %v", name, f)
	}
	return int(f), nil
}
