package tools

import (
	"strconv"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

func intInput(inputs map[string]any, key string) (int, bool) {
	switch v := inputs[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func stringInput(inputs map[string]any, key string) (string, bool) {
	switch v := inputs[key].(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case domain.Field:
		return string(v), v != ""
	default:
		return "", false
	}
}

func boolInput(inputs map[string]any, key string) (bool, bool) {
	switch v := inputs[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

func stringsInput(inputs map[string]any, key string) []string {
	switch v := inputs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	default:
		return nil
	}
}
