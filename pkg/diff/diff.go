package diff

import (
	"reflect"
	"strconv"
)

// Wire property names for delta entries.
const (
	KeyOld     = "__old"
	KeyNew     = "__new"
	KeyAdded   = "__added"
	KeyRemoved = "__removed"
)

// Delta is the structural difference between two snapshots.
// Values are either entry maps (see package doc) or nested Deltas.
// The alias keeps JSON round-trips free of conversions.
type Delta = map[string]any

// Diff compares two plain snapshots and returns their delta, or nil when
// they are deeply equal. Pure: neither input is modified. Key order is
// irrelevant.
func Diff(oldSnap, newSnap map[string]any) Delta {
	return diffMaps(oldSnap, newSnap)
}

func diffMaps(oldSnap, newSnap map[string]any) Delta {
	delta := Delta{}

	for key, oldVal := range oldSnap {
		newVal, ok := newSnap[key]
		if !ok {
			delta[key] = Delta{KeyRemoved: oldVal}
			continue
		}
		if d := diffValues(oldVal, newVal); d != nil {
			delta[key] = d
		}
	}

	for key, newVal := range newSnap {
		if _, ok := oldSnap[key]; !ok {
			delta[key] = Delta{KeyAdded: newVal}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffValues compares two leaf-or-container values. Returns nil when equal,
// a nested Delta for container recursion, or a changed entry for leaves.
func diffValues(oldVal, newVal any) any {
	oldMap, oldIsMap := oldVal.(map[string]any)
	newMap, newIsMap := newVal.(map[string]any)
	if oldIsMap && newIsMap {
		if d := diffMaps(oldMap, newMap); d != nil {
			return d
		}
		return nil
	}

	oldArr, oldIsArr := oldVal.([]any)
	newArr, newIsArr := newVal.([]any)
	if oldIsArr && newIsArr {
		if d := diffSlices(oldArr, newArr); d != nil {
			return d
		}
		return nil
	}

	if leafEqual(oldVal, newVal) {
		return nil
	}
	return Delta{KeyOld: oldVal, KeyNew: newVal}
}

// diffSlices compares index-aligned up to the longer length. Trailing
// elements only in the new slice are added; only in the old, removed.
func diffSlices(oldArr, newArr []any) Delta {
	delta := Delta{}

	longer := len(oldArr)
	if len(newArr) > longer {
		longer = len(newArr)
	}

	for i := 0; i < longer; i++ {
		key := strconv.Itoa(i)
		switch {
		case i >= len(oldArr):
			delta[key] = Delta{KeyAdded: newArr[i]}
		case i >= len(newArr):
			delta[key] = Delta{KeyRemoved: oldArr[i]}
		default:
			if d := diffValues(oldArr[i], newArr[i]); d != nil {
				delta[key] = d
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// leafEqual compares two leaf values. Numeric values compare by magnitude
// across Go types, so an int written locally equals the float64 the same
// value becomes after a JSON round-trip.
func leafEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// isEntry reports whether m is an entry map rather than a nested delta,
// and returns its kind key.
func isEntry(m map[string]any) (string, bool) {
	if _, ok := m[KeyAdded]; ok {
		return KeyAdded, true
	}
	if _, ok := m[KeyRemoved]; ok {
		return KeyRemoved, true
	}
	_, hasOld := m[KeyOld]
	_, hasNew := m[KeyNew]
	if hasOld || hasNew {
		return KeyNew, true
	}
	return "", false
}
