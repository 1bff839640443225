package core

import (
	"github.com/dkeye/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	text  membership
	voice membership
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{room: room}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) set(ch domain.Channel) *membership {
	if ch == domain.VoiceChannel {
		return &r.voice
	}
	return &r.text
}

func (r *roomImpl) MemberCount(ch domain.Channel) int {
	return r.set(ch).len()
}

func (r *roomImpl) Join(ms MemberSession) error {
	meta := ms.Meta()
	if !r.set(meta.Channel).admit(ms, r.room.Capacity) {
		return ErrRoomFull
	}
	log.Info().
		Str("module", "core.room").
		Str("room", string(r.room.ID)).
		Str("channel", meta.Channel.String()).
		Str("sid", string(ms.ID())).
		Str("user", meta.User.Username).
		Msg("member added")
	return nil
}

func (r *roomImpl) Leave(ms MemberSession) bool {
	ch := ms.Meta().Channel
	removed := r.set(ch).remove(ms.ID())
	if removed {
		log.Info().
			Str("module", "core.room").
			Str("room", string(r.room.ID)).
			Str("channel", ch.String()).
			Str("sid", string(ms.ID())).
			Msg("member removed")
	}
	return removed
}

func (r *roomImpl) Broadcast(ch domain.Channel, except SessionID, data Frame) PublishResult {
	res := PublishResult{}
	for _, m := range r.set(ch).snapshot() {
		if except != "" && m.ID() == except {
			continue
		}
		if err := m.Conn().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().
		Str("module", "core.room").
		Str("room", string(r.room.ID)).
		Str("channel", ch.String()).
		Str("from", string(except)).
		Int("sent_to", res.SentTo).
		Int("dropped", len(res.Dropped)).
		Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot(ch domain.Channel) []MemberDTO {
	members := r.set(ch).snapshot()
	out := make([]MemberDTO, 0, len(members))
	for _, ms := range members {
		u := ms.Meta().User
		out = append(out, MemberDTO{ID: u.ID, Username: u.Username})
	}
	return out
}
