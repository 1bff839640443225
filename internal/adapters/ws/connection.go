package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/huddle/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Options struct {
	SendBuffer int
	WriteWait  time.Duration
	PingPeriod time.Duration
}

// WSConnection is a transport endpoint (WebSocket).
// It implements core.Connection; every queued frame goes out as msgType.
type WSConnection struct {
	conn    WSConn
	msgType int
	opts    Options
	send    chan core.Frame
	done    chan struct{}
	once    sync.Once
}

var _ core.Connection = (*WSConnection)(nil)

func NewWSConnection(conn WSConn, msgType int, opts Options) *WSConnection {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 5 * time.Second
	}
	return &WSConnection{
		conn:    conn,
		msgType: msgType,
		opts:    opts,
		send:    make(chan core.Frame, opts.SendBuffer),
		done:    make(chan struct{}),
	}
}

// TrySend queues f without blocking.
func (c *WSConnection) TrySend(f core.Frame) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *WSConnection) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Reject writes a single message followed by a close frame and closes the
// connection. Used before the write loop is started.
func (c *WSConnection) Reject(mt int, payload []byte) {
	defer c.Close()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	if err := c.conn.WriteMessage(mt, payload); err != nil {
		log.Debug().Err(err).Str("module", "adapters.ws").Msg("reject write")
		return
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""))
}

// WriteLoop pumps frames to the network until ctx is done or a write fails.
// Adapter owns transport resources and closes them on exit.
func (c *WSConnection) WriteLoop(ctx context.Context) {
	defer c.Close()

	var ping <-chan time.Time
	if c.opts.PingPeriod > 0 {
		ticker := time.NewTicker(c.opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.write(c.msgType, data); err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Msg("write error")
				return
			}
		case <-ping:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Msg("ping error")
				return
			}
		}
	}
}

func (c *WSConnection) write(mt int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(mt, data)
}
