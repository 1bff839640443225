package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/huddle/internal/client/audio"
	"github.com/dkeye/huddle/internal/proto"
)

// VoiceSession is one activation of the voice path: a fresh audio bridge and
// one voice websocket. Run it again for a new activation.
type VoiceSession struct {
	ServerURL    string
	Room         string
	User         string
	Driver       audio.Driver
	BlockSamples int
	State        *State
	Dialer       *websocket.Dialer
	Printer      Printer
}

// Run blocks until the socket drops, the server rejects the member or ctx is
// cancelled. Devices are released and both queues terminated before it
// returns.
func (v *VoiceSession) Run(ctx context.Context) (err error) {
	p := printerOrNop(v.Printer)
	logger := log.With().Str("module", "client.voice").Str("room", v.Room).Str("user", v.User).Logger()

	v.State.setVoice(VoiceStarting)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := audio.NewBridge(audio.BridgeOptions{
		Driver:       v.Driver,
		Gate:         v.State.Gate,
		BlockSamples: v.BlockSamples,
		OnError:      func(err error) { p.Print("⚠️ " + err.Error()) },
	})
	bridge.Start(ctx)
	defer func() {
		bridge.Outgoing.Terminate()
		bridge.Incoming.Terminate()
		bridge.Stop()
		bridge.Wait()
		v.State.stopVoice()
		logger.Debug().Err(err).Msg("voice session ended")
	}()

	target, err := wsURL(v.ServerURL, proto.VoicePath(v.Room, v.User))
	if err != nil {
		return err
	}
	conn, _, err := dialerOrDefault(v.Dialer).DialContext(ctx, target, nil)
	if err != nil {
		p.Print(fmt.Sprintf("⚠️ Voice websocket error: %v", err))
		return fmt.Errorf("%w: voice dial: %v", ErrTransport, err)
	}
	defer conn.Close()

	if !v.State.markRunning() {
		logger.Debug().Stringer("state", v.State.Voice()).Msg("voice superseded while connecting")
		return ctx.Err()
	}
	p.Print("🎤 Voice websocket connected")

	pumpCtx, stopPumps := context.WithCancel(ctx)
	defer stopPumps()
	g, gctx := errgroup.WithContext(pumpCtx)
	g.Go(func() error {
		defer stopPumps()
		return sendFrames(gctx, conn, bridge.Outgoing)
	})
	var rejected error
	g.Go(func() error {
		defer stopPumps()
		err := receiveFrames(gctx, conn, bridge.Incoming)
		if errors.Is(err, ErrRejected) {
			rejected = err
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})

	err = g.Wait()
	if rejected != nil {
		err = rejected
		p.Print("❌ Voice " + err.Error())
	} else if err != nil && ctx.Err() == nil {
		p.Print(fmt.Sprintf("⚠️ Voice websocket error: %v", err))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func sendFrames(ctx context.Context, conn *websocket.Conn, out *audio.Queue) error {
	for {
		frame, ok, err := out.Pop(ctx)
		if err != nil || !ok {
			return nil
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return fmt.Errorf("%w: voice send: %v", ErrTransport, err)
		}
	}
}

func receiveFrames(ctx context.Context, conn *websocket.Conn, in *audio.Queue) error {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: voice receive: %v", ErrTransport, err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		if proto.IsVoiceRejection(data) {
			return fmt.Errorf("%w: %s", ErrRejected, rejectionReason(data))
		}
		in.Push(audio.Frame(data))
	}
}

func rejectionReason(code []byte) string {
	if bytes.Equal(code, proto.ErrRoomFullCode) {
		return "room full"
	}
	return "room does not exist"
}
