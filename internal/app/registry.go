package app

import (
	"context"
	"sync"

	"github.com/dkeye/huddle/internal/core"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Room    core.RoomService
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry maps live connections to the room they were admitted into.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) Bind(room core.RoomService, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = &sessionEntry{
		Room:    room,
		Session: sess,
		Cancel:  cancel,
	}
	log.Debug().
		Str("module", "app.registry").
		Str("sid", string(sess.ID())).
		Str("room", string(room.Room().ID)).
		Msg("bound session")
}

func (r *Registry) Lookup(sid core.SessionID) (core.RoomService, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, nil, false
	}
	return e.Room, e.Session, true
}

// Unbind removes sid and returns what it was bound to. Only the first call
// for a given sid reports ok.
func (r *Registry) Unbind(sid core.SessionID) (core.RoomService, core.MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, nil, false
	}
	delete(r.sessions, sid)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return e.Room, e.Session, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
