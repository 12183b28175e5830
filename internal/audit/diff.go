package audit

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"

	"cvportal/internal/models"
)

// Diff returns the sorted keys whose values differ between old and new.
// A key missing on one side equals an explicit null. A numeric string equals
// the number it spells when the other side is a number.
func Diff(old, new models.Snapshot) []string {
	keys := map[string]struct{}{}
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range new {
		keys[k] = struct{}{}
	}
	changed := make([]string, 0)
	for k := range keys {
		if !equal(old[k], new[k]) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

func equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if fa, ok := a.(float64); ok {
		if fb, ok := asNumber(b); ok {
			return fa == fb
		}
	}
	if fb, ok := b.(float64); ok {
		if fa, ok := asNumber(a); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

// normalize folds Go values into the shapes encoding/json produces so that a
// snapshot built in memory compares equal to one read back from storage.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
