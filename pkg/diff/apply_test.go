package diff

import (
	"reflect"
	"testing"
)

// clone makes a deep copy of a snapshot so Apply targets stay independent.
func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = clone(val)
		case []any:
			arr := make([]any, len(val))
			for i, e := range val {
				if em, ok := e.(map[string]any); ok {
					arr[i] = clone(em)
				} else {
					arr[i] = e
				}
			}
			out[k] = arr
		default:
			out[k] = v
		}
	}
	return out
}

func TestApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		from map[string]any
		to   map[string]any
	}{
		{
			name: "flat change",
			from: map[string]any{"a": 1, "b": "x"},
			to:   map[string]any{"a": 2, "b": "x"},
		},
		{
			name: "add and remove",
			from: map[string]any{"a": 1, "gone": true},
			to:   map[string]any{"a": 1, "fresh": "v"},
		},
		{
			name: "nested object",
			from: map[string]any{"user": map[string]any{"name": "Burt", "age": 30}},
			to:   map[string]any{"user": map[string]any{"name": "Michael", "age": 30}},
		},
		{
			name: "array grow",
			from: map[string]any{"items": []any{"a"}},
			to:   map[string]any{"items": []any{"a", "b", "c"}},
		},
		{
			name: "array shrink",
			from: map[string]any{"items": []any{"a", "b", "c"}},
			to:   map[string]any{"items": []any{"a"}},
		},
		{
			name: "array element change",
			from: map[string]any{"items": []any{"a", "b"}},
			to:   map[string]any{"items": []any{"a", "z"}},
		},
		{
			name: "nested array of objects",
			from: map[string]any{"rows": []any{map[string]any{"id": 1, "v": "x"}}},
			to:   map[string]any{"rows": []any{map[string]any{"id": 1, "v": "y"}}},
		},
		{
			name: "subtree replaced",
			from: map[string]any{"cfg": map[string]any{"a": 1}},
			to:   map[string]any{"cfg": map[string]any{"b": 2}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Diff(tc.from, tc.to)
			target := clone(tc.from)
			Apply(target, d)

			if !reflect.DeepEqual(target, tc.to) {
				t.Errorf("round trip mismatch:\n got %v\nwant %v", target, tc.to)
			}
		})
	}
}

func TestApplyNilDeltaNoop(t *testing.T) {
	target := map[string]any{"a": 1}
	Apply(target, nil)

	if target["a"] != 1 || len(target) != 1 {
		t.Errorf("nil delta must be a no-op, got %v", target)
	}
}

func TestApplyMalformedDeltaNoop(t *testing.T) {
	target := map[string]any{"a": 1}

	// Entries with unrecognized shapes are skipped, not applied.
	Apply(target, Delta{
		"a":    "not-an-entry",
		"b":    42,
		"junk": []any{"x"},
	})

	if target["a"] != 1 || len(target) != 1 {
		t.Errorf("malformed delta must be a no-op, got %v", target)
	}
}

func TestApplyNilTargetNoop(t *testing.T) {
	// Must not panic.
	Apply(nil, Delta{"a": map[string]any{KeyAdded: 1}})
}

func TestApplyCreatesIntermediatePath(t *testing.T) {
	target := map[string]any{}
	Apply(target, Delta{
		"user": Delta{
			"name": map[string]any{KeyAdded: "Burt"},
		},
	})

	user, ok := target["user"].(map[string]any)
	if !ok || user["name"] != "Burt" {
		t.Errorf("expected intermediate map creation, got %v", target)
	}
}
