package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/core"
)

var errConnClosed = errors.New("connection closed")

// Conn wraps one websocket with the bounded outbound buffer the
// dispatcher writes into. The buffer decouples the coordinator from
// socket I/O: TrySend never blocks, the write pump drains.
type Conn struct {
	ws   *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, sendBuffer int) *Conn {
	return &Conn{ws: ws, send: make(chan core.Frame, sendBuffer)}
}

// TrySend enqueues a frame without waiting. A full buffer returns
// core.ErrBackpressure and the frame is lost for this connection.
func (c *Conn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close is idempotent and safe to call from either pump.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
	c.mu.Unlock()
}

// writePump drains the send buffer to the socket and keeps the peer
// alive with periodic pings. Exits on write error, closed buffer or a
// missed pong (the read side notices the dead socket and cleans up).
func (c *Conn) writePump(ctx context.Context, pingPeriod, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Msg("writePump ping failed")
				return
			}
		}
	}
}
