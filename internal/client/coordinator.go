package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runner is a session the coordinator supervises.
type Runner interface {
	Run(ctx context.Context) error
}

type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultRestartGrace = 200 * time.Millisecond
)

// Coordinator supervises the chat session and at most one voice session at a
// time. Voice restarts never interrupt chat.
type Coordinator struct {
	ServerURL string
	Room      string
	// Precheck looks the room up in GET /rooms before connecting.
	Precheck   bool
	HTTPClient *http.Client

	Chat     Runner
	NewVoice func() Runner
	State    *State
	Printer  Printer

	PollInterval time.Duration
	RestartGrace time.Duration
}

type voiceRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Run returns when the chat session ends. The voice session is cancelled and
// given the restart grace period to finish before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	p := printerOrNop(c.Printer)
	logger := log.With().Str("module", "client.coordinator").Str("room", c.Room).Logger()

	if c.Precheck {
		if err := c.checkRoom(ctx, p, &logger); err != nil {
			return err
		}
	}

	poll := c.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	grace := c.RestartGrace
	if grace <= 0 {
		grace = defaultRestartGrace
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chatDone := make(chan error, 1)
	go func() { chatDone <- c.Chat.Run(ctx) }()
	voice := c.startVoice(ctx, &logger)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case err := <-chatDone:
			voice.cancel()
			c.releaseVoice(voice, grace, &logger)
			return chatResult(err)
		case <-ticker.C:
			if !c.State.RestartRequested() {
				continue
			}
			c.State.setVoice(VoiceRestarting)
			voice.cancel()
			if ended, err := c.awaitTeardown(voice, chatDone, grace, &logger); ended {
				c.State.clearRestart()
				c.releaseVoice(voice, grace, &logger)
				return chatResult(err)
			}
			voice = c.startVoice(ctx, &logger)
			c.State.clearRestart()
		}
	}
}

func chatResult(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Coordinator) startVoice(parent context.Context, logger *zerolog.Logger) *voiceRun {
	vctx, cancel := context.WithCancel(parent)
	vr := &voiceRun{cancel: cancel, done: make(chan struct{})}
	session := c.NewVoice()
	go func() {
		defer close(vr.done)
		if err := session.Run(vctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("voice session ended")
		}
	}()
	return vr
}

// awaitTeardown waits for the old session to release its devices. A slow
// teardown is logged but still awaited so two sessions never overlap. The
// wait is abandoned when chat ends meanwhile; err is then chat's result.
func (c *Coordinator) awaitTeardown(vr *voiceRun, chatDone <-chan error, grace time.Duration, logger *zerolog.Logger) (ended bool, err error) {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-vr.done:
		return false, nil
	case chatErr := <-chatDone:
		return true, chatErr
	case <-timer.C:
		logger.Warn().Dur("grace", grace).Msg("voice teardown slower than grace period")
	}
	select {
	case <-vr.done:
		return false, nil
	case chatErr := <-chatDone:
		return true, chatErr
	}
}

// releaseVoice gives a cancelled session the grace period to finish once chat
// has ended. A session stuck in a device call is left behind.
func (c *Coordinator) releaseVoice(vr *voiceRun, grace time.Duration, logger *zerolog.Logger) {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-vr.done:
	case <-timer.C:
		logger.Warn().Dur("grace", grace).Msg("voice session still tearing down at exit")
	}
}

func (c *Coordinator) checkRoom(ctx context.Context, p Printer, logger *zerolog.Logger) error {
	rooms, err := FetchRooms(ctx, c.HTTPClient, c.ServerURL)
	if err != nil {
		logger.Warn().Err(err).Msg("room pre-check failed")
		p.Print("⚠️ Could not fetch room list; proceeding to connect anyway")
		return nil
	}
	for _, r := range rooms {
		if r.ID == c.Room {
			return nil
		}
	}
	p.Print("❌ Room does not exist / not listed")
	return ErrRoomNotFound
}
