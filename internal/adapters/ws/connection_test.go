package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/huddle/internal/core"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type written struct {
	mt   int
	data []byte
}

type fakeWS struct {
	mu     sync.Mutex
	writes []written
	closed bool
}

func (f *fakeWS) ReadMessage() (int, []byte, error) { select {} }

func (f *fakeWS) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, written{mt: mt, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeWS) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWS) snapshot() ([]written, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]written(nil), f.writes...), f.closed
}

func TestTrySendBackpressure(t *testing.T) {
	conn := NewWSConnection(&fakeWS{}, websocket.TextMessage, Options{SendBuffer: 2})
	require.NoError(t, conn.TrySend(core.Frame("1")))
	require.NoError(t, conn.TrySend(core.Frame("2")))
	assert.ErrorIs(t, conn.TrySend(core.Frame("3")), ErrBackpressure)

	conn.Close()
	conn.Close()
	assert.ErrorIs(t, conn.TrySend(core.Frame("4")), ErrClosed)
}

func TestWriteLoopDeliversInOrder(t *testing.T) {
	fw := &fakeWS{}
	conn := NewWSConnection(fw, websocket.BinaryMessage, Options{SendBuffer: 8})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.WriteLoop(ctx)
		close(done)
	}()

	require.NoError(t, conn.TrySend(core.Frame{1}))
	require.NoError(t, conn.TrySend(core.Frame{2}))
	assert.Eventually(t, func() bool {
		w, _ := fw.snapshot()
		return len(w) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	w, closed := fw.snapshot()
	assert.True(t, closed, "write loop closes the transport on exit")
	assert.Equal(t, []written{
		{mt: websocket.BinaryMessage, data: []byte{1}},
		{mt: websocket.BinaryMessage, data: []byte{2}},
	}, w)
}

func TestRejectWritesPayloadThenClose(t *testing.T) {
	fw := &fakeWS{}
	conn := NewWSConnection(fw, websocket.BinaryMessage, Options{})
	conn.Reject(websocket.BinaryMessage, []byte("ERR:ROOM_FULL"))

	w, closed := fw.snapshot()
	require.Len(t, w, 2)
	assert.Equal(t, written{mt: websocket.BinaryMessage, data: []byte("ERR:ROOM_FULL")}, w[0])
	assert.Equal(t, websocket.CloseMessage, w[1].mt)
	assert.True(t, closed)

	assert.ErrorIs(t, conn.TrySend(core.Frame("late")), ErrClosed, "rejected connection accepts no frames")
}
