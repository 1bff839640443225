package domain

// Channel says which relay a member joined: text lines or voice frames.
type Channel int

const (
	TextChannel Channel = iota
	VoiceChannel
)

func (c Channel) String() string {
	switch c {
	case TextChannel:
		return "text"
	case VoiceChannel:
		return "voice"
	default:
		return "unknown"
	}
}

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User    *User
	RoomID  RoomID
	Channel Channel
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user *User, room RoomID, ch Channel) *Member {
	return &Member{User: user, RoomID: room, Channel: ch}
}
