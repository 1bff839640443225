package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkeye/huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   error
	closed atomic.Bool
}

func (c *fakeConn) TrySend(f Frame) error {
	if c.fail != nil {
		return c.fail
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() { c.closed.Store(true) }

func (c *fakeConn) received() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Frame(nil), c.frames...)
}

func newSession(t *testing.T, sid, user string, ch domain.Channel) (MemberSession, *fakeConn) {
	t.Helper()
	u, err := domain.NewUser(user)
	require.NoError(t, err)
	conn := &fakeConn{}
	return NewMemberSession(SessionID(sid), domain.NewMember(u, "lobby", ch), conn), conn
}

func newRoom(t *testing.T, capacity int) RoomService {
	t.Helper()
	r, err := domain.NewRoom("lobby", "Lobby", capacity)
	require.NoError(t, err)
	return NewRoomService(r)
}

func TestJoinRespectsCapacityPerChannel(t *testing.T) {
	room := newRoom(t, 2)

	a, _ := newSession(t, "a", "A", domain.TextChannel)
	b, _ := newSession(t, "b", "B", domain.TextChannel)
	c, _ := newSession(t, "c", "C", domain.TextChannel)
	require.NoError(t, room.Join(a))
	require.NoError(t, room.Join(b))
	assert.ErrorIs(t, room.Join(c), ErrRoomFull)
	assert.Equal(t, 2, room.MemberCount(domain.TextChannel))

	v, _ := newSession(t, "v", "C", domain.VoiceChannel)
	require.NoError(t, room.Join(v), "voice capacity is counted separately")
	assert.Equal(t, 1, room.MemberCount(domain.VoiceChannel))
}

func TestConcurrentJoinNeverExceedsCapacity(t *testing.T) {
	room := newRoom(t, 3)
	var wg sync.WaitGroup
	var admitted atomic.Int32
	sessions := make([]MemberSession, 50)
	for i := range sessions {
		sessions[i], _ = newSession(t, fmt.Sprintf("s%d", i), "U", domain.VoiceChannel)
	}
	for _, ms := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if room.Join(ms) == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 3, admitted.Load())
	assert.Equal(t, 3, room.MemberCount(domain.VoiceChannel))
}

func TestMembersKeepJoinOrder(t *testing.T) {
	room := newRoom(t, 5)
	for _, name := range []string{"A", "B", "C"} {
		ms, _ := newSession(t, name, name, domain.TextChannel)
		require.NoError(t, room.Join(ms))
	}
	b, _ := newSession(t, "B", "B", domain.TextChannel)
	assert.True(t, room.Leave(b))
	assert.False(t, room.Leave(b), "second leave is a no-op")

	d, _ := newSession(t, "D", "D", domain.TextChannel)
	require.NoError(t, room.Join(d))

	var names []string
	for _, m := range room.MembersSnapshot(domain.TextChannel) {
		names = append(names, m.Username)
	}
	assert.Equal(t, []string{"A", "C", "D"}, names)
}

func TestBroadcastSkipsSenderAndOtherChannel(t *testing.T) {
	room := newRoom(t, 5)
	a, connA := newSession(t, "a", "A", domain.VoiceChannel)
	b, connB := newSession(t, "b", "B", domain.VoiceChannel)
	txt, connT := newSession(t, "t", "T", domain.TextChannel)
	require.NoError(t, room.Join(a))
	require.NoError(t, room.Join(b))
	require.NoError(t, room.Join(txt))

	frame := Frame{1, 2, 3, 4}
	res := room.Broadcast(domain.VoiceChannel, "a", frame)
	assert.Equal(t, 1, res.SentTo)
	assert.Empty(t, res.Dropped)
	assert.Empty(t, connA.received())
	assert.Equal(t, []Frame{frame}, connB.received())
	assert.Empty(t, connT.received())
}

func TestBroadcastEmptyExceptReachesEveryone(t *testing.T) {
	room := newRoom(t, 5)
	a, connA := newSession(t, "a", "A", domain.TextChannel)
	b, connB := newSession(t, "b", "B", domain.TextChannel)
	require.NoError(t, room.Join(a))
	require.NoError(t, room.Join(b))

	res := room.Broadcast(domain.TextChannel, "", Frame("A: hello"))
	assert.Equal(t, 2, res.SentTo)
	assert.Len(t, connA.received(), 1)
	assert.Len(t, connB.received(), 1)
}

func TestBroadcastFailingRecipientDoesNotStopOthers(t *testing.T) {
	room := newRoom(t, 5)
	a, _ := newSession(t, "a", "A", domain.TextChannel)
	bad, badConn := newSession(t, "bad", "X", domain.TextChannel)
	c, connC := newSession(t, "c", "C", domain.TextChannel)
	badConn.fail = errors.New("send buffer full")
	require.NoError(t, room.Join(a))
	require.NoError(t, room.Join(bad))
	require.NoError(t, room.Join(c))

	res := room.Broadcast(domain.TextChannel, "a", Frame("A: hi"))
	assert.Equal(t, 1, res.SentTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, SessionID("bad"), res.Dropped[0].ID())
	assert.Equal(t, []Frame{Frame("A: hi")}, connC.received())
}
