// Package ws adapts the coordinator to browsers over gorilla websockets:
// one upgrade endpoint, one read pump and one write pump per connection.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/app"
	"github.com/pomecrenate/parley/internal/domain"
)

// maxDecodeErrors closes a connection after this many undecodable
// frames in a row.
const maxDecodeErrors = 3

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Options carries the transport tuning knobs from config.
type Options struct {
	SendBuffer   int
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

type Handler struct {
	coord   *app.Coordinator
	limiter *RateLimiter
	opts    Options
}

func NewHandler(coord *app.Coordinator, limiter *RateLimiter, opts Options) *Handler {
	return &Handler{coord: coord, limiter: limiter, opts: opts}
}

// HandleWS upgrades the request and registers the connection with the
// coordinator before the first frame is read. The optional "name" query
// parameter seeds the display name; create/join events may change it.
func (h *Handler) HandleWS(ctx context.Context, c *gin.Context) {
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := newConn(socket, h.opts.SendBuffer)
	log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Str("ct", c.GetString("client_token")).Msg("connection open")

	h.coord.Connect(id, c.Query("name"), conn)

	go conn.writePump(ctx, h.opts.PingPeriod, h.opts.WriteTimeout)
	go h.readPump(ctx, id, conn)
}

// readPump owns the socket's read side and the connection's lifecycle:
// whatever ends the loop, the coordinator hears exactly one disconnect.
func (h *Handler) readPump(ctx context.Context, id domain.ConnID, c *Conn) {
	defer func() {
		c.Close()
		h.coord.Disconnect(id)
		h.limiter.Forget(id)
		log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Msg("connection closed")
	}()

	c.ws.SetReadLimit(h.opts.ReadLimit)
	pongWait := h.opts.PingPeriod * 10 / 9
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	decodeErrors := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("conn", string(id)).Msg("read error")
			}
			return
		}

		if !h.limiter.Allow(id) {
			h.sendError(c, app.CodeRateLimited, "slow down")
			continue
		}

		if h.handleFrame(id, c, data) {
			decodeErrors = 0
			continue
		}
		decodeErrors++
		if decodeErrors >= maxDecodeErrors {
			log.Warn().Str("module", "adapters.ws").Str("conn", string(id)).Msg("too many bad frames")
			return
		}
	}
}

// handleFrame decodes one wire frame and hands the event to the
// coordinator. Returns false when the frame could not be decoded.
func (h *Handler) handleFrame(id domain.ConnID, c *Conn, data []byte) bool {
	var env app.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendError(c, app.CodeBadPayload, "frame is not a type/payload envelope")
		return false
	}

	switch env.Type {
	case app.EvPing:
		h.reply(c, app.EvPong, nil)
	case app.EvCreateRoom:
		var ev app.CreateRoom
		if !h.decode(c, env.Payload, &ev) {
			return false
		}
		h.coord.Dispatch(id, ev)
	case app.EvJoinRoom:
		var ev app.JoinRoom
		if !h.decode(c, env.Payload, &ev) {
			return false
		}
		h.coord.Dispatch(id, ev)
	case app.EvLeaveRoom:
		var ev app.LeaveRoom
		if !h.decode(c, env.Payload, &ev) {
			return false
		}
		h.coord.Dispatch(id, ev)
	case app.EvChatMessage:
		var ev app.ChatMessage
		if !h.decode(c, env.Payload, &ev) {
			return false
		}
		h.coord.Dispatch(id, ev)
	case app.EvListRooms:
		h.coord.Dispatch(id, app.ListRooms{})
	case app.EvWhoami:
		h.coord.Dispatch(id, app.Whoami{})
	default:
		log.Warn().Str("module", "adapters.ws").Str("type", env.Type).Msg("unknown event type")
		h.sendError(c, app.CodeBadPayload, "unknown event type")
	}
	return true
}

func (h *Handler) decode(c *Conn, raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		h.sendError(c, app.CodeBadPayload, "missing payload")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		h.sendError(c, app.CodeBadPayload, "malformed payload")
		return false
	}
	return true
}

func (h *Handler) reply(c *Conn, eventType string, payload any) {
	frame, err := app.EncodeFrame(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Str("event", eventType).Msg("encode reply")
		return
	}
	_ = c.TrySend(frame)
}

func (h *Handler) sendError(c *Conn, code, reason string) {
	h.reply(c, app.EvError, app.ErrorPayload{Code: code, Reason: reason})
}
