package diff

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiffIdenticalIsNil(t *testing.T) {
	snap := map[string]any{
		"name": "Burt",
		"tags": []any{"a", "b"},
		"nested": map[string]any{
			"count": 3,
		},
	}

	if d := Diff(snap, snap); d != nil {
		t.Errorf("diff of identical snapshots must be nil, got %v", d)
	}
}

func TestDiffEqualCopiesIsNil(t *testing.T) {
	a := map[string]any{"x": 1, "y": map[string]any{"z": "v"}}
	b := map[string]any{"y": map[string]any{"z": "v"}, "x": 1}

	if d := Diff(a, b); d != nil {
		t.Errorf("diff of deeply equal snapshots must be nil, got %v", d)
	}
}

func TestDiffChanged(t *testing.T) {
	a := map[string]any{"count": 1}
	b := map[string]any{"count": 2}

	d := Diff(a, b)
	entry, ok := d["count"].(map[string]any)
	if !ok {
		t.Fatalf("expected changed entry for count, got %v", d)
	}
	if entry[KeyOld] != 1 || entry[KeyNew] != 2 {
		t.Errorf("expected {__old:1 __new:2}, got %v", entry)
	}
}

func TestDiffAddedRemoved(t *testing.T) {
	a := map[string]any{"gone": "x"}
	b := map[string]any{"fresh": "y"}

	d := Diff(a, b)

	if entry := d["gone"].(map[string]any); entry[KeyRemoved] != "x" {
		t.Errorf("expected removed entry, got %v", entry)
	}
	if entry := d["fresh"].(map[string]any); entry[KeyAdded] != "y" {
		t.Errorf("expected added entry, got %v", entry)
	}
}

func TestDiffNestedRecursion(t *testing.T) {
	a := map[string]any{"user": map[string]any{"name": "Burt", "age": 30}}
	b := map[string]any{"user": map[string]any{"name": "Michael", "age": 30}}

	d := Diff(a, b)
	nested, ok := d["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested delta under user, got %v", d)
	}
	if _, unchanged := nested["age"]; unchanged {
		t.Error("unchanged nested key must not appear in delta")
	}
	entry := nested["name"].(map[string]any)
	if entry[KeyOld] != "Burt" || entry[KeyNew] != "Michael" {
		t.Errorf("expected nested change entry, got %v", entry)
	}
}

func TestDiffArrays(t *testing.T) {
	a := map[string]any{"items": []any{"a", "b"}}
	b := map[string]any{"items": []any{"a", "c", "d"}}

	d := Diff(a, b)
	arr := d["items"].(map[string]any)

	if entry := arr["1"].(map[string]any); entry[KeyNew] != "c" {
		t.Errorf("expected index 1 changed to c, got %v", entry)
	}
	if entry := arr["2"].(map[string]any); entry[KeyAdded] != "d" {
		t.Errorf("expected index 2 added, got %v", entry)
	}
	if _, present := arr["0"]; present {
		t.Error("unchanged index must not appear in delta")
	}
}

func TestDiffArrayShrink(t *testing.T) {
	a := map[string]any{"items": []any{"a", "b", "c"}}
	b := map[string]any{"items": []any{"a"}}

	d := Diff(a, b)
	arr := d["items"].(map[string]any)

	if entry := arr["1"].(map[string]any); entry[KeyRemoved] != "b" {
		t.Errorf("expected index 1 removed, got %v", entry)
	}
	if entry := arr["2"].(map[string]any); entry[KeyRemoved] != "c" {
		t.Errorf("expected index 2 removed, got %v", entry)
	}
}

func TestDiffNumericNormalization(t *testing.T) {
	// A JSON round-trip turns int into float64; the same magnitude must
	// not register as a change.
	a := map[string]any{"count": 5}
	b := map[string]any{"count": float64(5)}

	if d := Diff(a, b); d != nil {
		t.Errorf("int 5 vs float64 5 must be equal, got %v", d)
	}
}

func TestDiffPure(t *testing.T) {
	a := map[string]any{"x": 1}
	b := map[string]any{"x": 2, "y": 3}

	_ = Diff(a, b)

	if len(a) != 1 || len(b) != 2 {
		t.Error("Diff must not modify its inputs")
	}
}

func TestDeltaJSONRoundTrip(t *testing.T) {
	a := map[string]any{"count": float64(1), "user": map[string]any{"name": "Burt"}}
	b := map[string]any{"count": float64(2), "user": map[string]any{"name": "Michael"}, "active": true}

	d := Diff(a, b)

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal delta: %v", err)
	}

	var decoded Delta
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal delta: %v", err)
	}

	// Applying the decoded delta must reproduce b from a copy of a.
	target := map[string]any{"count": float64(1), "user": map[string]any{"name": "Burt"}}
	Apply(target, decoded)

	if !reflect.DeepEqual(target, b) {
		t.Errorf("wire round-trip apply mismatch:\n got %v\nwant %v", target, b)
	}
}
