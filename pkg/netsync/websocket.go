package netsync

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds a single frame write.
const wsWriteTimeout = 10 * time.Second

// wsChannel adapts a gorilla websocket connection to the Channel
// interface. Gorilla connections allow one concurrent writer, so sends are
// serialized with a mutex; reads happen from the engine's single receive
// loop.
type wsChannel struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a sync relay (for example, a ripple hub's /sync
// endpoint) and returns the websocket-backed channel.
func Dial(url string) (Channel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWebsocketChannel(conn), nil
}

// NewWebsocketChannel adopts an already-established connection, for
// callers that negotiated the upgrade themselves.
func NewWebsocketChannel(conn *websocket.Conn) Channel {
	return &wsChannel{conn: conn}
}

func (w *wsChannel) Send(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("websocket send: %w", err)
	}
	return nil
}

func (w *wsChannel) Receive() ([]byte, error) {
	for {
		msgType, msg, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				return nil, ErrChannelClosed
			}
			return nil, fmt.Errorf("websocket receive: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return msg, nil
	}
}

func (w *wsChannel) Close() error {
	w.closeOnce.Do(func() {
		w.writeMu.Lock()
		w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		w.writeMu.Unlock()

		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}
