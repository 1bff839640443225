package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/huddle/internal/client/audio"
)

const testBlock = 64

func newVoice(srvURL, user string, drv audio.Driver, p Printer) *VoiceSession {
	return &VoiceSession{
		ServerURL:    srvURL,
		Room:         "lobby",
		User:         user,
		Driver:       drv,
		BlockSamples: testBlock,
		State:        NewState(audio.NewGate("space", nil)),
		Printer:      p,
	}
}

func runAsync(ctx context.Context, r Runner) <-chan error {
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return done
}

func allFilled(frames []audio.Frame, marker byte) bool {
	want := bytes.Repeat([]byte{marker}, audio.BlockBytes(testBlock))
	for _, f := range frames {
		if !bytes.Equal(f, want) {
			return false
		}
	}
	return true
}

func TestVoiceRelayBetweenSessions(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drvA := &toneDriver{marker: 0xAA}
	drvB := &toneDriver{marker: 0xBB}
	a := newVoice(srv.URL, "A", drvA, &capturePrinter{})
	b := newVoice(srv.URL, "B", drvB, &capturePrinter{})

	doneA := runAsync(ctx, a)
	doneB := runAsync(ctx, b)

	assert.Eventually(t, func() bool {
		return len(drvA.playedFrames()) >= 3 && len(drvB.playedFrames()) >= 3
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, VoiceRunning, a.State.Voice())

	assert.True(t, allFilled(drvB.playedFrames(), 0xAA), "B plays exactly what A captured")
	assert.True(t, allFilled(drvA.playedFrames(), 0xBB), "A never hears itself")

	cancel()
	for _, done := range []<-chan error{doneA, doneB} {
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(waitFor):
			t.Fatal("voice session did not stop")
		}
	}
	assert.Equal(t, VoiceStopped, a.State.Voice())
	assert.Equal(t, VoiceStopped, b.State.Voice())
}

func TestVoiceMutedSendsNothing(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drvA := &toneDriver{marker: 0xAA}
	drvB := &toneDriver{marker: 0xBB}
	a := newVoice(srv.URL, "A", drvA, nil)
	a.State.Gate.SetMuted(true)
	b := newVoice(srv.URL, "B", drvB, nil)

	doneA := runAsync(ctx, a)
	runAsync(ctx, b)

	assert.Eventually(t, func() bool { return len(drvA.playedFrames()) >= 3 }, waitFor, 5*time.Millisecond)
	assert.Empty(t, drvB.playedFrames())

	cancel()
	<-doneA
}

func TestVoiceRejectedWhenFull(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newVoice(srv.URL, "A", &toneDriver{marker: 1}, nil)
	runAsync(ctx, a)
	assert.Eventually(t, func() bool { return a.State.Voice() == VoiceRunning }, waitFor, 5*time.Millisecond)

	p := &capturePrinter{}
	drvB := &toneDriver{marker: 2}
	b := newVoice(srv.URL, "B", drvB, p)
	b.State.Gate.SetMuted(true)

	select {
	case err := <-runAsync(ctx, b):
		assert.ErrorIs(t, err, ErrRejected)
	case <-time.After(waitFor):
		t.Fatal("rejected session did not end")
	}
	assert.True(t, p.has("❌ Voice rejected by server: room full"), p.all())
	assert.Empty(t, drvB.playedFrames(), "rejection code is not played as audio")
	assert.Equal(t, VoiceStopped, b.State.Voice())
}

func TestVoiceUnknownRoom(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 1})
	v := newVoice(srv.URL, "A", &toneDriver{}, nil)
	v.Room = "nope"
	v.State.Gate.SetMuted(true)

	err := v.Run(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestVoiceDialFailure(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 1})
	url := srv.URL
	srv.Close()

	p := &capturePrinter{}
	v := newVoice(url, "A", &toneDriver{}, p)
	err := v.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, VoiceStopped, v.State.Voice())
	assert.NotEmpty(t, p.all())
}

func TestWSURL(t *testing.T) {
	got, err := wsURL("http://localhost:8000/", "/ws/chat/lobby/A")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws/chat/lobby/A", got)

	got, err = wsURL("https://example.test", "/ws/voice/lobby/A")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.test/ws/voice/lobby/A", got)

	_, err = wsURL("ftp://example.test", "/x")
	assert.Error(t, err)
}

func TestVoiceSupersededWhileConnecting(t *testing.T) {
	srv := newRelay(t, map[string]int{"lobby": 2})
	p := &capturePrinter{}
	v := newVoice(srv.URL, "A", &toneDriver{marker: 0xAA}, p)

	// The coordinator claims the state for a restart while the dial is in flight.
	dialer := NewDialer()
	dialer.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		v.State.setVoice(VoiceRestarting)
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
	v.Dialer = dialer

	select {
	case err := <-runAsync(context.Background(), v):
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("superseded voice session kept running")
	}
	assert.Equal(t, VoiceRestarting, v.State.Voice(), "a late dial never overwrites a restart")
	assert.False(t, p.has("🎤 Voice websocket connected"))
}
