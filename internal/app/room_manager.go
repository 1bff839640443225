package app

import (
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/huddle/internal/core"
	"github.com/dkeye/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry is the in-memory core.RoomRegistry. Rooms are only ever added.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

var _ core.RoomRegistry = (*RoomRegistry)(nil)

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomRegistry) Create(id domain.RoomID, name domain.RoomName, capacity int) (core.RoomService, error) {
	room, err := domain.NewRoom(id, name, capacity)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[id]; ok {
		return nil, core.ErrDuplicateRoom
	}
	rs := core.NewRoomService(room)
	f.rooms[id] = rs
	log.Info().
		Str("module", "app.rooms").
		Str("room", string(id)).
		Str("name", string(room.Name)).
		Int("capacity", capacity).
		Msg("room created")
	return rs, nil
}

func (f *RoomRegistry) Get(id domain.RoomID) (core.RoomService, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	return room, nil
}

func (f *RoomRegistry) List() []core.RoomSummary {
	f.mu.RLock()
	out := make([]core.RoomSummary, 0, len(f.rooms))
	for _, r := range f.rooms {
		room := r.Room()
		out = append(out, core.RoomSummary{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
			Users:    r.MemberCount(domain.TextChannel),
		})
	}
	f.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.RoomSummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}
