package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/huddle/internal/proto"
)

// ChatSession owns the text websocket. Lines arrive on Input from the shell;
// lines starting with "/" go to Commands and are never transmitted.
type ChatSession struct {
	ServerURL string
	Room      string
	User      string
	Input     <-chan string
	Commands  *Commands
	Dialer    *websocket.Dialer
	Printer   Printer
}

// Run returns when either pump ends, Input is closed or ctx is cancelled.
// The connection is always closed on return.
func (c *ChatSession) Run(ctx context.Context) error {
	p := printerOrNop(c.Printer)
	logger := log.With().Str("module", "client.chat").Str("room", c.Room).Str("user", c.User).Logger()

	target, err := wsURL(c.ServerURL, proto.ChatPath(c.Room, c.User))
	if err != nil {
		return err
	}
	conn, _, err := dialerOrDefault(c.Dialer).DialContext(ctx, target, nil)
	if err != nil {
		p.Print(fmt.Sprintf("⚠️ Chat connection error: %v", err))
		return fmt.Errorf("%w: chat dial: %v", ErrTransport, err)
	}
	defer conn.Close()
	p.Print(fmt.Sprintf("✅ Connected to chat in room %s as %s", c.Room, c.User))

	pumpCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(pumpCtx)
	g.Go(func() error {
		defer stop()
		return c.send(gctx, conn)
	})
	g.Go(func() error {
		defer stop()
		return c.receive(gctx, conn, p)
	})
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})

	err = g.Wait()
	logger.Debug().Err(err).Msg("chat session ended")
	return err
}

func (c *ChatSession) send(ctx context.Context, conn *websocket.Conn) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-c.Input:
			if !ok {
				return nil
			}
			line = l
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if c.Commands != nil {
				c.Commands.Handle(line)
			}
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return fmt.Errorf("%w: chat send: %v", ErrTransport, err)
		}
	}
}

func (c *ChatSession) receive(ctx context.Context, conn *websocket.Conn, p Printer) error {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.ClosePolicyViolation) {
				p.Print("🔌 Chat websocket closed")
				return nil
			}
			return fmt.Errorf("%w: chat receive: %v", ErrTransport, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		p.Print(string(data))
	}
}
