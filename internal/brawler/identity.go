package brawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
)

// Object keys tried in order when an entry arrives as a JSON object.
var nameKeys = []string{"name", "brawlerName", "brawler", "slug", "id", "brawlerId"}

// IdentityMap maps numeric brawler ids (as strings) to display slugs.
// The zero value is an empty map and is ready to use.
type IdentityMap struct {
	ids map[string]string
}

func NewIdentityMap(ids map[string]string) IdentityMap {
	cp := make(map[string]string, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return IdentityMap{ids: cp}
}

// LoadIdentityMap reads a JSON object of id -> slug. A missing file is not an
// error. Any other failure still returns a usable (empty) map.
func LoadIdentityMap(path string) (IdentityMap, error) {
	if path == "" {
		return IdentityMap{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return IdentityMap{}, nil
	}
	if err != nil {
		return IdentityMap{}, fmt.Errorf("reading identity map: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return IdentityMap{}, fmt.Errorf("decoding identity map: %w", err)
	}

	ids := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			ids[k] = val
		case float64:
			ids[k] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return IdentityMap{ids: ids}, nil
}

func (m IdentityMap) Len() int { return len(m.ids) }

// Resolve turns one raw pick/ban entry into a display string. It accepts
// whatever encoding/json produced (nil, string, float64, json.Number, bool,
// map[string]any) and never fails; unknown ids come back as the id itself.
func (m IdentityMap) Resolve(entry any) string {
	switch v := entry.(type) {
	case nil:
		return ""
	case map[string]any:
		for _, key := range nameKeys {
			if val, ok := v[key]; ok && !isEmpty(val) {
				return m.Resolve(val)
			}
		}
		return ""
	case string:
		if isDigits(v) {
			return m.resolveID(v)
		}
		return v
	case float64:
		// outside int64 range the conversion is undefined
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e18 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return m.lookupOrID(strconv.FormatInt(int64(v), 10))
	case int:
		return m.lookupOrID(strconv.Itoa(v))
	case int64:
		return m.lookupOrID(strconv.FormatInt(v, 10))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return m.lookupOrID(strconv.FormatInt(i, 10))
		}
		if f, err := v.Float64(); err == nil {
			return m.Resolve(f)
		}
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// resolveID handles digit-only strings, dropping leading zeros so "023" and 23
// share a key.
func (m IdentityMap) resolveID(digits string) string {
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		// too long for uint64, still a valid id string
		return m.lookupOrID(digits)
	}
	return m.lookupOrID(strconv.FormatUint(n, 10))
}

func (m IdentityMap) lookupOrID(key string) string {
	if slug, ok := m.ids[key]; ok {
		return slug
	}
	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}
