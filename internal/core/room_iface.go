package core

import (
	"github.com/dkeye/huddle/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomService is the core-facing API of a room.
// It owns the text and voice membership sets but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount(ch domain.Channel) int
	MembersSnapshot(ch domain.Channel) []MemberDTO

	// Join admits ms into the channel named by its meta, or returns ErrRoomFull.
	Join(ms MemberSession) error
	Leave(ms MemberSession) bool
	// Broadcast delivers data to every member of ch except the session `except`.
	// An empty except delivers to everyone.
	Broadcast(ch domain.Channel, except SessionID, data Frame) PublishResult
}

// RoomSummary is the listing view of a room.
type RoomSummary struct {
	ID       domain.RoomID   `json:"id"`
	Name     domain.RoomName `json:"name"`
	Capacity int             `json:"capacity"`
	Users    int             `json:"users"`
}

type RoomRegistry interface {
	Create(id domain.RoomID, name domain.RoomName, capacity int) (RoomService, error)
	Get(id domain.RoomID) (RoomService, error)
	List() []RoomSummary
}
