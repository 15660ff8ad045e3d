package draft

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// stringify renders a decoded JSON scalar the way it appeared upstream:
// integral floats lose the ".0", nil and containers become "".
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) && math.Abs(val) < 1e18 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// firstString returns the first key whose value stringifies non-empty.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringify(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// extractMap safely extracts a map from a map
func extractMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]any); ok {
			return mapVal
		}
	}
	return map[string]any{}
}

// extractArray safely extracts an array from a map
func extractArray(m map[string]any, key string) ([]any, bool) {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]any); ok {
			return arrVal, true
		}
	}
	return nil, false
}

// nameOf reads a string-or-object field: "Knockout" or {"name":"Knockout"}.
func nameOf(v any) string {
	if obj, ok := v.(map[string]any); ok {
		return firstString(obj, "name", "displayName", "slug", "id")
	}
	return stringify(v)
}

// hasData mirrors JSON truthiness: null, "", 0, false, {} and [] carry nothing.
func hasData(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	case map[string]any:
		return len(val) > 0
	case []any:
		return len(val) > 0
	}
	return true
}
