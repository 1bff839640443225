// Package ws serves the chat and voice relay websockets.
package ws

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dkeye/huddle/internal/app"
	"github.com/dkeye/huddle/internal/core"
	"github.com/dkeye/huddle/internal/domain"
	"github.com/dkeye/huddle/internal/proto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	Orch      *app.Orchestrator
	Opts      Options
	ReadLimit int64
}

func NewController(orch *app.Orchestrator, opts Options, readLimit int64) *Controller {
	return &Controller{Orch: orch, Opts: opts, ReadLimit: readLimit}
}

// HandleChat serves GET /ws/chat/:room/:user.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	ctl.serve(ctx, c, domain.TextChannel)
}

// HandleVoice serves GET /ws/voice/:room/:user.
func (ctl *Controller) HandleVoice(ctx context.Context, c *gin.Context) {
	ctl.serve(ctx, c, domain.VoiceChannel)
}

func (ctl *Controller) serve(ctx context.Context, c *gin.Context, ch domain.Channel) {
	roomID := domain.RoomID(c.Param("room"))
	user, err := domain.NewUser(c.Param("user"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid := core.SessionID(c.GetString("sid"))
	if sid == "" {
		sid = core.SessionID(uuid.NewString())
	}
	logger := log.With().
		Str("module", "adapters.ws").
		Str("sid", string(sid)).
		Str("room", string(roomID)).
		Str("user", user.Username).
		Str("channel", ch.String()).
		Logger()

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		wsConn.SetReadLimit(ctl.ReadLimit)
	}

	conn := NewWSConnection(wsConn, messageType(ch), ctl.Opts)
	ms := core.NewMemberSession(sid, domain.NewMember(user, roomID, ch), conn)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := ctl.Orch.Join(ms, cancel); err != nil {
		logger.Info().Err(err).Msg("join rejected")
		conn.Reject(messageType(ch), rejection(ch, err))
		return
	}
	logger.Info().Msg("joined")

	go conn.WriteLoop(connCtx)
	ctl.readLoop(ms, wsConn, &logger)
}

// readLoop blocks until the peer goes away. On exit the member is removed
// from its room; clean close and read errors are treated alike.
func (ctl *Controller) readLoop(ms core.MemberSession, c WSConn, logger *zerolog.Logger) {
	sid := ms.ID()
	ch := ms.Meta().Channel
	defer func() {
		ctl.Orch.OnDisconnect(sid)
		ms.Conn().Close()
		logger.Info().Msg("left")
	}()

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			logReadError(logger, err)
			return
		}
		switch {
		case ch == domain.TextChannel && mt == websocket.TextMessage:
			ctl.Orch.OnText(sid, string(data))
		case ch == domain.VoiceChannel && mt == websocket.BinaryMessage:
			ctl.Orch.OnFrame(sid, core.Frame(data))
		default:
			logger.Warn().Int("message_type", mt).Msg("protocol violation, unit discarded")
		}
	}
}

func logReadError(logger *zerolog.Logger, err error) {
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
		errors.Is(err, io.EOF):
		logger.Debug().Err(err).Msg("peer disconnected")
	case errors.Is(err, websocket.ErrReadLimit):
		logger.Warn().Err(err).Msg("message exceeded read limit")
	default:
		logger.Debug().Err(err).Msg("read error")
	}
}

func messageType(ch domain.Channel) int {
	if ch == domain.VoiceChannel {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func rejection(ch domain.Channel, err error) []byte {
	full := errors.Is(err, core.ErrRoomFull)
	if ch == domain.VoiceChannel {
		if full {
			return proto.ErrRoomFullCode
		}
		return proto.ErrNoRoomCode
	}
	if full {
		return []byte(proto.RoomFullNotice)
	}
	return []byte(proto.NoRoomNotice)
}
