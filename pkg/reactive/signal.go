package reactive

import (
	"reflect"
	"sync"
)

// signalBase provides type-erased subscriber management.
// It is embedded in Signal[T] and Memo[T] to share subscription logic.
type signalBase struct {
	id uint64

	// subs are the listeners subscribed to this source, in subscription
	// order. Notification preserves this order so call sequencing is
	// deterministic for a given set of subscribers.
	subs []Listener

	// subMu protects the subs slice.
	subMu sync.RWMutex
}

// subscribe adds a listener, deduplicating by listener ID.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener. Removal preserves the order of the
// remaining subscribers.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifySubscribers notifies all subscribers that this source changed.
// Iterates over a copied snapshot of the subscriber list so listeners may
// unsubscribe themselves (or others) during notification.
//
// Inside a batch, memo invalidation still happens synchronously; only
// external listeners are queued for the batch flush. A memo left stale
// until commit would serve outdated values to reads inside the batch body.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			if eager, ok := sub.(eagerListener); ok {
				eager.MarkDirty()
			} else {
				queuePendingUpdate(sub)
			}
		}
		return
	}

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// track registers the currently active listener as a subscriber of src.
// Called from Get on both signals and memos.
func track(base *signalBase, src Source) {
	if listener := getCurrentListener(); listener != nil {
		base.subscribe(listener)
		if tracker, ok := listener.(SourceTracker); ok {
			tracker.AddSource(src)
		}
	}
}

// Signal is a reactive value container.
// Reading a Signal's value during a tracked context (memo computation,
// effect execution, or store subscription) automatically subscribes the
// current listener to receive notifications when the value changes.
type Signal[T any] struct {
	base signalBase

	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// equal determines whether a write changed the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base: signalBase{
			id: NextID(),
		},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener, if any.
func (s *Signal[T]) Get() T {
	// Read value first, then track, so the value lock is never held while
	// touching the subscriber list.
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	track(&s.base, s)

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if it changed
// under the signal's equality rule. Setting an equal value fires nothing.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the signal's value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Invalidate notifies subscribers without changing the value, bypassing
// the equality gate. Container-level operations use it when the cell
// itself changes (for example, key removal) while the held value does
// not. Batch coalescing applies as usual.
func (s *Signal[T]) Invalidate() {
	s.base.notifySubscribers()
}

// Subscribe adds a listener to this signal. Implements Source.
func (s *Signal[T]) Subscribe(l Listener) {
	s.base.subscribe(l)
}

// Unsubscribe removes a listener from this signal. Implements Source.
func (s *Signal[T]) Unsubscribe(l Listener) {
	s.base.unsubscribe(l)
}

// WithEquals configures a custom equality function and returns the signal.
// Useful where reflect.DeepEqual is too expensive or has the wrong
// semantics (for example, treating any non-identical map as changed).
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking:
// == for primitive types, reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

var _ Source = (*Signal[int])(nil)
