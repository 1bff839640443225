package app

import (
	"github.com/dkeye/huddle/internal/core"
	"github.com/dkeye/huddle/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// SimplePolicy drops audio for a lagging listener, since a lost block is a
// glitch, and kicks a chat member whose send buffer is full.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ core.RoomService, member core.MemberSession) BackpressureAction {
	if member.Meta().Channel == domain.VoiceChannel {
		return DropFrame
	}
	return KickMember
}
