package client

import (
	"context"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	router "github.com/dkeye/huddle/internal/adapters/http"
	"github.com/dkeye/huddle/internal/app"
	"github.com/dkeye/huddle/internal/client/audio"
	"github.com/dkeye/huddle/internal/config"
	"github.com/dkeye/huddle/internal/domain"
)

const waitFor = 2 * time.Second

type capturePrinter struct {
	mu    sync.Mutex
	lines []string
}

func (p *capturePrinter) Print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
}

func (p *capturePrinter) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.lines)
}

func (p *capturePrinter) has(line string) bool {
	return slices.Contains(p.all(), line)
}

// toneDriver captures blocks filled with a marker byte and records playback.
type toneDriver struct {
	marker byte

	mu     sync.Mutex
	played []audio.Frame
}

type toneCapture struct {
	marker byte
	done   chan struct{}
	once   sync.Once
}

func (c *toneCapture) Read(block audio.Frame) error {
	select {
	case <-c.done:
		return context.Canceled
	case <-time.After(2 * time.Millisecond):
	}
	for i := range block {
		block[i] = c.marker
	}
	return nil
}

func (c *toneCapture) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

type tonePlayback struct{ d *toneDriver }

func (p tonePlayback) Write(block audio.Frame) error {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	p.d.played = append(p.d.played, block)
	return nil
}

func (p tonePlayback) Close() error { return nil }

func (d *toneDriver) OpenCapture(int) (audio.CaptureDevice, error) {
	return &toneCapture{marker: d.marker, done: make(chan struct{})}, nil
}

func (d *toneDriver) OpenPlayback(int) (audio.PlaybackDevice, error) {
	return tonePlayback{d: d}, nil
}

func (d *toneDriver) playedFrames() []audio.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.played)
}

func newRelay(t *testing.T, rooms map[string]int) *httptest.Server {
	t.Helper()
	reg := app.NewRoomRegistry()
	for id, capacity := range rooms {
		_, err := reg.Create(domain.RoomID(id), "", capacity)
		require.NoError(t, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.ServerConfig{Mode: "test", ReadLimit: 65536, WriteWait: time.Second, SendBuffer: 256}
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, app.NewOrchestrator(reg)))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}
