package audio

import (
	"errors"
	"sync"
	"time"
)

var errDeviceClosed = errors.New("device closed")

// NullDriver captures silence at real-time pace and discards playback.
type NullDriver struct{}

func (NullDriver) OpenCapture(blockSamples int) (CaptureDevice, error) {
	return newPacer(BlockDuration(blockSamples)), nil
}

func (NullDriver) OpenPlayback(int) (PlaybackDevice, error) {
	return discard{}, nil
}

// pacer blocks each Read for one block period, like a microphone would.
type pacer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func newPacer(period time.Duration) *pacer {
	return &pacer{ticker: time.NewTicker(period), done: make(chan struct{})}
}

func (p *pacer) wait() error {
	select {
	case <-p.ticker.C:
		return nil
	case <-p.done:
		return errDeviceClosed
	}
}

func (p *pacer) Read(block Frame) error {
	if err := p.wait(); err != nil {
		return err
	}
	clear(block)
	return nil
}

func (p *pacer) Close() error {
	p.once.Do(func() {
		p.ticker.Stop()
		close(p.done)
	})
	return nil
}

type discard struct{}

func (discard) Write(Frame) error { return nil }
func (discard) Close() error      { return nil }
