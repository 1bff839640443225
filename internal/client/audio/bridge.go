package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// BridgeOptions configures one bridge activation.
type BridgeOptions struct {
	Driver       Driver
	Gate         *Gate
	BlockSamples int
	// OnError receives at most one error per direction.
	OnError func(error)
}

// Bridge runs the capture and playback workers of one voice activation.
// Captured blocks that pass the gate go to Outgoing; blocks in Incoming are
// played until Incoming is terminated.
type Bridge struct {
	Outgoing *Queue
	Incoming *Queue

	opts    BridgeOptions
	wg      conc.WaitGroup
	stopped atomic.Bool

	captureOnce  sync.Once
	playbackOnce sync.Once
}

func NewBridge(opts BridgeOptions) *Bridge {
	if opts.BlockSamples <= 0 {
		opts.BlockSamples = DefaultBlockSamples
	}
	if opts.Gate == nil {
		opts.Gate = NewGate("", nil)
	}
	return &Bridge{
		Outgoing: NewQueue(),
		Incoming: NewQueue(),
		opts:     opts,
	}
}

// Start opens both devices and launches the workers. A device that fails to
// open is reported and its direction stays disabled; the other one runs.
func (b *Bridge) Start(ctx context.Context) {
	capDev, err := b.opts.Driver.OpenCapture(b.opts.BlockSamples)
	if err != nil {
		b.report(&b.captureOnce, fmt.Errorf("voice send disabled: %w", err))
	} else {
		b.wg.Go(func() { b.capture(ctx, capDev) })
	}

	playDev, err := b.opts.Driver.OpenPlayback(b.opts.BlockSamples)
	if err != nil {
		b.report(&b.playbackOnce, fmt.Errorf("playback disabled: %w", err))
		playDev = discard{}
	}
	b.wg.Go(func() { b.playback(ctx, playDev) })
}

// Stop asks the capture worker to exit after its current block. Playback
// exits when Incoming is terminated or ctx is done.
func (b *Bridge) Stop() {
	b.stopped.Store(true)
}

// Wait blocks until both workers have exited.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) capture(ctx context.Context, dev CaptureDevice) {
	defer dev.Close()
	size := BlockBytes(b.opts.BlockSamples)
	for !b.stopped.Load() && ctx.Err() == nil {
		block := make(Frame, size)
		if err := dev.Read(block); err != nil {
			if b.stopped.Load() || ctx.Err() != nil {
				return
			}
			b.report(&b.captureOnce, fmt.Errorf("audio read error, voice send disabled: %w", err))
			return
		}
		if !b.opts.Gate.Open() {
			continue
		}
		b.Outgoing.Push(block)
	}
}

func (b *Bridge) playback(ctx context.Context, dev PlaybackDevice) {
	defer func() {
		if err := dev.Close(); err != nil {
			log.Debug().Str("module", "client.audio").Err(err).Msg("close playback device")
		}
	}()
	for {
		block, ok, err := b.Incoming.Pop(ctx)
		if err != nil || !ok {
			return
		}
		if err := dev.Write(block); err != nil {
			log.Debug().Str("module", "client.audio").Err(err).Msg("playback write failed")
		}
	}
}

func (b *Bridge) report(once *sync.Once, err error) {
	once.Do(func() {
		log.Warn().Str("module", "client.audio").Err(err).Msg("audio device")
		if b.opts.OnError != nil {
			b.opts.OnError(err)
		}
	})
}
