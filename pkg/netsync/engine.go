package netsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ripplestate/ripple/pkg/diff"
	"github.com/ripplestate/ripple/pkg/store"
)

// Engine keeps one store synchronized over one channel.
type Engine struct {
	st       *store.Store
	ch       Channel
	clientID string
	logger   *slog.Logger
	tracer   trace.Tracer

	// mu protects lastSynced.
	mu         sync.Mutex
	lastSynced map[string]any

	// applying suppresses outbound broadcast of changes the engine is
	// writing into the store itself.
	applying atomic.Bool

	unsubscribe func()

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClientID overrides the generated client identifier. Useful in tests
// and when identity comes from the session layer.
func WithClientID(id string) EngineOption {
	return func(e *Engine) {
		e.clientID = id
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine attaches a sync engine to st over ch. Local changes are
// broadcast immediately from creation on; call Start to also consume the
// channel's inbound side.
func NewEngine(st *store.Store, ch Channel, opts ...EngineOption) *Engine {
	e := &Engine{
		st:       st,
		ch:       ch,
		clientID: newClientID(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("ripple/netsync"),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.lastSynced = st.GetState()
	e.unsubscribe = st.Subscribe(func(newState, oldState map[string]any) {
		e.onLocalChange()
	})

	return e
}

// ClientID returns the engine's identity on the wire.
func (e *Engine) ClientID() string {
	return e.clientID
}

// Start launches the receive loop. It returns immediately; the loop exits
// when the channel closes.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			msg, err := e.ch.Receive()
			if err != nil {
				if !errors.Is(err, ErrChannelClosed) {
					e.logger.Error("netsync receive failed", "client_id", e.clientID, "error", err)
				}
				return
			}
			e.HandleMessage(msg)
		}
	}()
}

// onLocalChange broadcasts the delta between the last synchronized
// snapshot and the store's current state.
func (e *Engine) onLocalChange() {
	if e.applying.Load() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.st.GetState()
	delta := diff.Diff(e.lastSynced, current)
	if delta == nil {
		return
	}

	data, err := encodeEnvelope(Envelope{ClientID: e.clientID, Changes: delta})
	if err != nil {
		e.logger.Error("netsync encode failed", "client_id", e.clientID, "error", err)
		return
	}

	if err := e.ch.Send(data); err != nil {
		e.logger.Warn("netsync send failed", "client_id", e.clientID, "error", err)
		return
	}

	envelopesSent.WithLabelValues(e.clientID).Inc()
	e.lastSynced = current
}

// HandleMessage applies one wire payload to the local store. Envelopes
// from this engine's own clientId are dropped (echo suppression); payloads
// that fail to decode are counted and dropped, never fatal. Exposed so
// transports that deliver messages by callback can feed the engine
// directly.
func (e *Engine) HandleMessage(data []byte) {
	env, err := decodeEnvelope(data)
	if err != nil {
		envelopesDropped.WithLabelValues(e.clientID).Inc()
		e.logger.Warn("netsync dropped malformed payload", "client_id", e.clientID, "error", err)
		return
	}

	if env.ClientID == e.clientID {
		envelopesIgnored.WithLabelValues(e.clientID).Inc()
		return
	}

	_, span := e.tracer.Start(context.Background(), "netsync.apply",
		trace.WithAttributes(
			attribute.String("sync.sender", env.ClientID),
			attribute.Int("sync.changed_keys", len(env.Changes)),
		))
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Materialize, patch, restore: the delta lands on a plain snapshot
	// and flows back through the store's write path, so subscribers see
	// one coalesced wave and computed members re-derive. Last writer
	// wins per property.
	target := e.st.GetState()
	diff.Apply(target, env.Changes)

	e.applying.Store(true)
	e.st.Restore(target)
	e.applying.Store(false)

	e.lastSynced = e.st.GetState()
	envelopesReceived.WithLabelValues(e.clientID).Inc()
}

// Close detaches from the store and closes the channel. Idempotent.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
		err = e.ch.Close()
		e.wg.Wait()
	})
	return err
}
