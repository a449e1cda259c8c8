// Package hub implements the relay server side of ripple's network sync.
// It holds no state of its own: every message a client sends is fanned
// out verbatim to every other client, and each client's sync engine
// handles echo suppression and delta application locally.
package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxMessageSize = 1 << 20
	defaultPingInterval   = 30 * time.Second

	writeTimeout  = 10 * time.Second
	sendQueueSize = 32
)

// Hub relays sync messages between connected clients.
type Hub struct {
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *metrics
	gatherer     prometheus.Gatherer
	serveMetrics bool
	upgrader     websocket.Upgrader
	maxMsgSize   int64
	pingInterval time.Duration

	mu      sync.Mutex
	clients map[uint64]*client
	nextID  uint64
	closed  bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithRegistry registers the hub's metrics with reg and serves them from
// /metrics. Defaults to the process-wide Prometheus registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(h *Hub) {
		h.metrics = newMetrics(reg)
		h.gatherer = reg
	}
}

// WithMetricsEndpoint toggles the /metrics route. Enabled by default.
func WithMetricsEndpoint(enabled bool) Option {
	return func(h *Hub) {
		h.serveMetrics = enabled
	}
}

// WithMaxMessageSize caps inbound frames in bytes.
func WithMaxMessageSize(n int64) Option {
	return func(h *Hub) {
		h.maxMsgSize = n
	}
}

// WithPingInterval sets how often idle connections are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		h.pingInterval = d
	}
}

// New creates a hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		logger:       slog.Default(),
		tracer:       otel.Tracer("ripple/hub"),
		gatherer:     prometheus.DefaultGatherer,
		serveMetrics: true,
		maxMsgSize:   defaultMaxMessageSize,
		pingInterval: defaultPingInterval,
		clients:      make(map[uint64]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	return h
}

// Router returns the hub's HTTP surface: GET /sync upgrades to the relay
// websocket, GET /metrics serves Prometheus metrics, GET /healthz reports
// liveness.
func (h *Hub) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/sync", h.handleSync)
	if h.serveMetrics {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// client is one attached websocket connection.
type client struct {
	id   uint64
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (h *Hub) handleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.nextID++
	c.id = h.nextID
	h.clients[c.id] = c
	h.mu.Unlock()

	h.metrics.clientsTotal.Inc()
	h.metrics.connectedClients.Inc()
	h.logger.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)

	h.detach(c)
}

// detach removes a client and tears its connection down. Safe to call
// more than once per client.
func (h *Hub) detach(c *client) {
	h.mu.Lock()
	_, present := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	c.close()
	if present {
		h.metrics.connectedClients.Dec()
		h.logger.Info("client disconnected", "client", c.id)
	}
}

// readPump consumes frames from one client and relays each to its peers.
// Runs on the connection's handler goroutine; returning ends the session.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(h.maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(h.pingInterval * 2))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(h.pingInterval * 2))
		return nil
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.metrics.relayErrors.WithLabelValues("read").Inc()
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.relay(c, msg)
	}
}

// writePump owns all writes on one connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.metrics.relayErrors.WithLabelValues("write").Inc()
				h.detach(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.detach(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

// relay fans one message out to every client except the sender. Slow
// clients get dropped rather than stalling the sender's read loop.
func (h *Hub) relay(sender *client, msg []byte) {
	_, span := h.tracer.Start(context.Background(), "hub.relay",
		trace.WithAttributes(attribute.Int("relay.bytes", len(msg))))
	defer span.End()

	h.mu.Lock()
	peers := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.id != sender.id {
			peers = append(peers, c)
		}
	}
	h.mu.Unlock()

	span.SetAttributes(attribute.Int("relay.peers", len(peers)))

	for _, peer := range peers {
		select {
		case peer.send <- msg:
			h.metrics.messagesRelayed.Inc()
			h.metrics.relayedBytes.Add(float64(len(msg)))
		default:
			h.metrics.relayErrors.WithLabelValues("slow_client").Inc()
			h.logger.Warn("dropping slow client", "client", peer.id)
			h.detach(peer)
		}
	}
}

// ClientCount reports how many clients are attached.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.detach(c)
	}
}
