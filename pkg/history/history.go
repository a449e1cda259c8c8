package history

import (
	"sync"
	"time"

	"github.com/ripplestate/ripple/pkg/diff"
	"github.com/ripplestate/ripple/pkg/store"
)

// DefaultMaxEntries caps the log when no WithMaxEntries option is given.
const DefaultMaxEntries = 100

// Entry is one recorded state in the log.
type Entry struct {
	// State is the plain snapshot captured after the change.
	State map[string]any

	// Diff is the delta from the previous entry's state, nil for the
	// initial entry.
	Diff diff.Delta

	// Timestamp is when the entry was captured.
	Timestamp time.Time
}

// Controller owns the time-travel log for one store.
type Controller struct {
	mu sync.Mutex

	st         *store.Store
	entries    []Entry
	current    int
	maxEntries int
	throttle   time.Duration
	active     bool

	// restoring suppresses capture while a travel writes into the store.
	restoring bool

	// timer is the pending throttle debounce, nil when idle.
	timer *time.Timer

	unsubscribe func()
	destroyed   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxEntries caps the log length. Values below 1 fall back to the
// default.
func WithMaxEntries(n int) Option {
	return func(c *Controller) {
		if n >= 1 {
			c.maxEntries = n
		}
	}
}

// WithThrottle coalesces bursts of mutations: changes arriving within d of
// each other produce a single entry, captured after the burst settles.
func WithThrottle(d time.Duration) Option {
	return func(c *Controller) {
		c.throttle = d
	}
}

// WithActive sets the initial capture state. An inactive controller keeps
// its entries queryable but records nothing and travels nowhere.
func WithActive(active bool) Option {
	return func(c *Controller) {
		c.active = active
	}
}

// New attaches a time-travel controller to st. The controller captures an
// initial entry immediately and a new entry on every store change until
// Destroy is called.
func New(st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		st:         st,
		maxEntries: DefaultMaxEntries,
		active:     true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.entries = []Entry{{
		State:     st.GetState(),
		Timestamp: time.Now(),
	}}
	c.current = 0

	c.unsubscribe = st.Subscribe(func(newState, oldState map[string]any) {
		c.onChange()
	})

	return c
}

// onChange handles one store notification wave.
func (c *Controller) onChange() {
	c.mu.Lock()

	if c.destroyed || !c.active || c.restoring {
		c.mu.Unlock()
		return
	}

	if c.throttle > 0 {
		// Debounce: push the capture out until the burst settles.
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.throttle, func() {
			c.mu.Lock()
			c.timer = nil
			if c.destroyed || !c.active || c.restoring {
				c.mu.Unlock()
				return
			}
			c.captureLocked()
			c.mu.Unlock()
		})
		c.mu.Unlock()
		return
	}

	c.captureLocked()
	c.mu.Unlock()
}

// captureLocked appends a new entry for the store's current state.
// Caller holds c.mu.
func (c *Controller) captureLocked() {
	snapshot := c.st.GetState()

	prev := c.entries[c.current].State
	delta := diff.Diff(prev, snapshot)
	if delta == nil {
		// The wave produced no observable state change.
		return
	}

	// Branch-on-write: a mutation while time-traveled discards the
	// future entries before appending.
	if c.current < len(c.entries)-1 {
		c.entries = c.entries[:c.current+1]
	}

	c.entries = append(c.entries, Entry{
		State:     snapshot,
		Diff:      delta,
		Timestamp: time.Now(),
	})

	// Ring eviction: drop the oldest entry, shift the index down one.
	if len(c.entries) > c.maxEntries {
		c.entries = c.entries[1:]
	}
	c.current = len(c.entries) - 1
}

// TravelTo restores the entry at index into the live store. Out-of-range
// indexes clamp to the valid range rather than failing: history travel is
// a navigation aid, not an API to validate against. No-op on an inactive
// or destroyed controller.
func (c *Controller) TravelTo(index int) {
	c.mu.Lock()
	if c.destroyed || !c.active {
		c.mu.Unlock()
		return
	}

	if index < 0 {
		index = 0
	}
	if index > len(c.entries)-1 {
		index = len(c.entries) - 1
	}

	entry := c.entries[index]
	c.current = index
	c.restoring = true
	c.mu.Unlock()

	// Restore outside the lock: the store fires subscriber waves, and one
	// of them is our own onChange.
	c.st.Restore(entry.State)

	c.mu.Lock()
	c.restoring = false
	c.mu.Unlock()
}

// Back travels one entry backward; no-op at the oldest entry.
func (c *Controller) Back() {
	c.mu.Lock()
	target := c.current - 1
	c.mu.Unlock()

	if target < 0 {
		return
	}
	c.TravelTo(target)
}

// Forward travels one entry forward; no-op at the tail.
func (c *Controller) Forward() {
	c.mu.Lock()
	target := c.current + 1
	last := len(c.entries) - 1
	c.mu.Unlock()

	if target > last {
		return
	}
	c.TravelTo(target)
}

// Clear resets the log to a single entry capturing current live state.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.entries = []Entry{{
		State:     c.st.GetState(),
		Timestamp: time.Now(),
	}}
	c.current = 0
}

// Destroy unsubscribes from the store. Later store mutations no longer
// touch the log, and travel becomes a no-op. Idempotent.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetActive toggles capture and travel without dropping accumulated
// entries. Useful for temporarily disabling overhead.
func (c *Controller) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
	if !active && c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Active reports whether the controller is capturing.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Entries returns a copy of the log.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CurrentIndex returns the index of the entry the store currently
// reflects.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CanBack reports whether Back would travel.
func (c *Controller) CanBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current > 0
}

// CanForward reports whether Forward would travel.
func (c *Controller) CanForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current < len(c.entries)-1
}
