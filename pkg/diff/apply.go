package diff

import (
	"sort"
	"strconv"
)

// Apply patches target in place with the given delta: changed and added
// entries are written, removed entries deleted, nested deltas recurse.
// Intermediate maps are created as needed.
//
// A nil, empty, or malformed delta is a no-op — deltas may arrive straight
// off the wire, and garbage must not take the process down. Entries whose
// shape is not recognized are skipped.
func Apply(target map[string]any, delta Delta) {
	if target == nil || len(delta) == 0 {
		return
	}

	for key, raw := range delta {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if kind, isEnt := isEntry(node); isEnt {
			switch kind {
			case KeyAdded:
				target[key] = node[KeyAdded]
			case KeyRemoved:
				delete(target, key)
			default:
				target[key] = node[KeyNew]
			}
			continue
		}

		// Nested delta: recurse into the existing container, creating
		// a map when the path does not exist yet.
		switch existing := target[key].(type) {
		case map[string]any:
			Apply(existing, node)
		case []any:
			target[key] = applySlice(existing, node)
		default:
			child := map[string]any{}
			Apply(child, node)
			target[key] = child
		}
	}
}

// applySlice applies an index-keyed delta to a slice, growing for added
// trailing elements and dropping removed ones. Returns the new slice.
func applySlice(arr []any, delta map[string]any) []any {
	result := make([]any, len(arr))
	copy(result, arr)

	var removed []int

	// Deterministic application order: ascending index.
	indexes := make([]int, 0, len(delta))
	byIndex := make(map[int]map[string]any, len(delta))
	for key, raw := range delta {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 {
			continue
		}
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		indexes = append(indexes, i)
		byIndex[i] = node
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		node := byIndex[i]
		if kind, isEnt := isEntry(node); isEnt {
			switch kind {
			case KeyAdded:
				for len(result) <= i {
					result = append(result, nil)
				}
				result[i] = node[KeyAdded]
			case KeyRemoved:
				removed = append(removed, i)
			default:
				if i < len(result) {
					result[i] = node[KeyNew]
				}
			}
			continue
		}

		if i >= len(result) {
			continue
		}
		switch existing := result[i].(type) {
		case map[string]any:
			Apply(existing, node)
		case []any:
			result[i] = applySlice(existing, node)
		}
	}

	// Drop removed indexes from the back so earlier positions stay valid.
	sort.Sort(sort.Reverse(sort.IntSlice(removed)))
	for _, i := range removed {
		if i < len(result) {
			result = append(result[:i], result[i+1:]...)
		}
	}

	return result
}
