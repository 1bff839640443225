package core

import (
	"slices"
	"sync"
)

// membership is an ordered-by-join set of sessions. The mutex covers
// structural changes and snapshots only; fan-out iterates a copy.
type membership struct {
	mu      sync.Mutex
	members []MemberSession
}

// admit appends ms if the set holds fewer than capacity sessions.
// The check and the append happen under one lock.
func (m *membership) admit(ms MemberSession, capacity int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.members) >= capacity {
		return false
	}
	m.members = append(m.members, ms)
	return true
}

func (m *membership) remove(sid SessionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ms := range m.members {
		if ms.ID() == sid {
			m.members = slices.Delete(m.members, i, i+1)
			return true
		}
	}
	return false
}

func (m *membership) snapshot() []MemberSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemberSession, len(m.members))
	copy(out, m.members)
	return out
}

func (m *membership) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members)
}
