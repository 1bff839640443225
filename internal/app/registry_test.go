package app

import (
	"testing"

	"github.com/dkeye/huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryUnbindOnce(t *testing.T) {
	rooms := NewRoomRegistry()
	room, err := rooms.Create("lobby", "", 2)
	require.NoError(t, err)
	ms, _ := newFakeSession(t, "a", "lobby", "A", domain.TextChannel)

	reg := NewRegistry()
	canceled := 0
	reg.Bind(room, ms, func() { canceled++ })

	gotRoom, gotMS, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Same(t, room, gotRoom)
	assert.Same(t, ms, gotMS)

	assert.True(t, reg.Cancel("a"))
	assert.Equal(t, 1, canceled)

	_, _, ok = reg.Unbind("a")
	assert.True(t, ok)
	_, _, ok = reg.Unbind("a")
	assert.False(t, ok)
	assert.False(t, reg.Cancel("a"))
	assert.Zero(t, reg.Len())
}
