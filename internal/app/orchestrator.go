package app

import (
	"context"

	"github.com/dkeye/huddle/internal/core"
	"github.com/dkeye/huddle/internal/domain"
	"github.com/dkeye/huddle/internal/proto"
	"github.com/rs/zerolog/log"
)

// Orchestrator admits connections into rooms and relays what they send.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomRegistry
	Policy   Policy
}

func NewOrchestrator(rooms core.RoomRegistry) *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    rooms,
		Policy:   SimplePolicy{},
	}
}

// Join admits ms into the room and channel named by its meta. It returns
// core.ErrRoomNotFound or core.ErrRoomFull without any membership side effect.
// cancel is invoked if the session is later kicked.
func (o *Orchestrator) Join(ms core.MemberSession, cancel context.CancelFunc) error {
	meta := ms.Meta()
	room, err := o.Rooms.Get(meta.RoomID)
	if err != nil {
		return err
	}
	if err := room.Join(ms); err != nil {
		return err
	}
	o.Registry.Bind(room, ms, cancel)

	if meta.Channel == domain.TextChannel {
		o.publish(room, domain.TextChannel, "", core.Frame(proto.JoinedNotice(meta.User.Username)))
	}
	return nil
}

// OnText fans a typed line out to every text member, the sender included.
func (o *Orchestrator) OnText(sid core.SessionID, line string) {
	room, ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	msg := proto.ChatLine(ms.Meta().User.Username, line)
	o.publish(room, domain.TextChannel, "", core.Frame(msg))
}

// OnFrame forwards an audio frame verbatim to every other voice member.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) {
	room, _, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	o.publish(room, domain.VoiceChannel, sid, data)
}

func (o *Orchestrator) publish(room core.RoomService, ch domain.Channel, except core.SessionID, data core.Frame) {
	res := room.Broadcast(ch, except, data)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().
				Str("module", "app.orch").
				Str("sid", string(slow.ID())).
				Str("room", string(room.Room().ID)).
				Msg("kicking member with blocked send buffer")
			o.KickBySID(slow.ID())
		case DropFrame, NoAction:
		}
	}
}

// KickBySID closes the member's connection; its read loop then runs the
// regular disconnect path.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	_, ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	o.Registry.Cancel(sid)
	ms.Conn().Close()
}

// OnDisconnect removes the session from its room. Clean close and read error
// take the same path; text rooms get one "left" notice.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	room, ms, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	if !room.Leave(ms) {
		return
	}
	meta := ms.Meta()
	if meta.Channel == domain.TextChannel {
		o.publish(room, domain.TextChannel, "", core.Frame(proto.LeftNotice(meta.User.Username)))
	}
}
