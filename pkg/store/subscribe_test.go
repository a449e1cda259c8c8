package store

import (
	"testing"
)

func TestSubscriberDependencyIsolation(t *testing.T) {
	s := New(map[string]any{"a": 1, "b": 1})

	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
		_ = s.Get("a") // narrows the dependency set to {a}
	})
	defer unsubscribe()

	// First change primes the tracked set.
	s.Set("a", 2)
	if invocations != 1 {
		t.Fatalf("expected 1 invocation after priming, got %d", invocations)
	}

	// Mutating b must not invoke a subscriber that only reads a.
	s.Set("b", 2)
	if invocations != 1 {
		t.Errorf("write to untracked key invoked subscriber, got %d", invocations)
	}

	// Mutating a must.
	s.Set("a", 3)
	if invocations != 2 {
		t.Errorf("write to tracked key must invoke subscriber, got %d", invocations)
	}
}

func TestSubscriberConservativeWithoutReads(t *testing.T) {
	s := New(map[string]any{"a": 1, "b": 1})

	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
	})
	defer unsubscribe()

	// A callback that reads nothing fires on every change.
	s.Set("a", 2)
	s.Set("b", 2)

	if invocations != 2 {
		t.Errorf("read-nothing subscriber must fire on any change, got %d", invocations)
	}
}

func TestSubscriberReceivesSnapshots(t *testing.T) {
	s := New(map[string]any{"count": 1})

	var gotNew, gotOld map[string]any
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		gotNew, gotOld = newState, oldState
	})
	defer unsubscribe()

	s.Set("count", 2)

	if gotNew["count"] != 2 {
		t.Errorf("expected new snapshot count=2, got %v", gotNew["count"])
	}
	if gotOld["count"] != 1 {
		t.Errorf("expected old snapshot count=1, got %v", gotOld["count"])
	}
}

func TestSubscriberBatchCoalescing(t *testing.T) {
	s := New(map[string]any{"a": 0})

	invocations := 0
	var final any
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
		final = newState["a"]
	})
	defer unsubscribe()

	s.Batch(func() {
		s.Set("a", 1)
		s.Set("a", 2)
		s.Set("a", 3)
	})

	if invocations != 1 {
		t.Errorf("expected exactly one invocation for the batch, got %d", invocations)
	}
	if final != 3 {
		t.Errorf("expected subscriber to observe final value 3, got %v", final)
	}
}

func TestSubscriberManualBatch(t *testing.T) {
	s := New(map[string]any{"a": 0})

	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
	})
	defer unsubscribe()

	s.BeginBatch()
	s.Set("a", 1)
	s.Set("a", 2)
	if invocations != 0 {
		t.Fatalf("no invocation expected before commit, got %d", invocations)
	}
	s.CommitBatch()

	if invocations != 1 {
		t.Errorf("expected one invocation after commit, got %d", invocations)
	}
}

func TestSubscriberBatchPanicStillFlushes(t *testing.T) {
	s := New(map[string]any{"a": 0})

	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
	})
	defer unsubscribe()

	func() {
		defer func() { _ = recover() }()
		s.Batch(func() {
			s.Set("a", 1)
			panic("boom")
		})
	}()

	if s.Get("a") != 1 {
		t.Error("writes before the panic must stay applied")
	}
	if invocations != 1 {
		t.Errorf("expected flush after panicking batch, got %d", invocations)
	}

	// Batching is not wedged.
	s.Batch(func() { s.Set("a", 2) })
	if invocations != 2 {
		t.Errorf("later batches must still notify, got %d", invocations)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	s := New(map[string]any{"a": 0})

	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
	})

	unsubscribe()
	unsubscribe() // second call is a no-op

	s.Set("a", 1)
	if invocations != 0 {
		t.Errorf("unsubscribed callback must not run, got %d", invocations)
	}
}

func TestSubscriberOrderFIFO(t *testing.T) {
	s := New(map[string]any{"a": 0})

	var order []string
	unsub1 := s.Subscribe(func(newState, oldState map[string]any) {
		order = append(order, "first")
	})
	defer unsub1()
	unsub2 := s.Subscribe(func(newState, oldState map[string]any) {
		order = append(order, "second")
	})
	defer unsub2()

	s.Set("a", 1)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected registration-order invocation, got %v", order)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := New(map[string]any{
		"firstName": "Burt",
		"lastName":  "Macklin",
	})
	s.Set("fullName", Compute(func() any {
		return s.Get("firstName").(string) + " " + s.Get("lastName").(string)
	}))

	var observed any
	invocations := 0
	unsubscribe := s.Subscribe(func(newState, oldState map[string]any) {
		invocations++
		observed = newState["fullName"]
	})
	defer unsubscribe()

	s.Set("firstName", "Michael")

	if invocations != 1 {
		t.Fatalf("expected one invocation, got %d", invocations)
	}
	if observed != "Michael Macklin" {
		t.Errorf("expected snapshot fullName %q, got %v", "Michael Macklin", observed)
	}
}

func TestComputedOverStore(t *testing.T) {
	s := New(map[string]any{"a": 1, "b": 2})

	computations := 0
	s.Set("sum", Compute(func() any {
		computations++
		return s.Get("a").(int) + s.Get("b").(int)
	}))

	if s.Get("sum") != 3 {
		t.Errorf("expected 3, got %v", s.Get("sum"))
	}

	// Cached between reads.
	_ = s.Get("sum")
	if computations != 1 {
		t.Errorf("expected cached value, got %d computations", computations)
	}

	s.Set("a", 10)
	if s.Get("sum") != 12 {
		t.Errorf("expected 12 after write to a, got %v", s.Get("sum"))
	}
	s.Set("b", 20)
	if s.Get("sum") != 30 {
		t.Errorf("expected 30 after write to b, got %v", s.Get("sum"))
	}
}

func TestIsComputed(t *testing.T) {
	if !IsComputed(Compute(func() any { return 1 })) {
		t.Error("expected true for computed value")
	}

	for _, v := range []any{nil, 42, "fn", map[string]any{}, []any{}, func() {}} {
		if IsComputed(v) {
			t.Errorf("expected false for %T", v)
		}
	}
}
