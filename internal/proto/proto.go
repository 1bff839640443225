// Package proto holds the wire-level constants shared by the relay server
// and the client: endpoint paths, server notices and rejection codes.
package proto

import (
	"bytes"
	"fmt"
	"net/url"
)

const (
	RoomsPath  = "/rooms"
	ChatRoute  = "/ws/chat/:room/:user"
	VoiceRoute = "/ws/voice/:room/:user"
)

// Text channel rejections. Sent as a single line before close.
const (
	NoRoomNotice   = "❌ Room does not exist!"
	RoomFullNotice = "❌ Room full, cannot join!"
)

// Voice channel rejections. Sent as a single binary message before close.
var (
	ErrNoRoomCode   = []byte("ERR:NO_ROOM")
	ErrRoomFullCode = []byte("ERR:ROOM_FULL")
)

func JoinedNotice(user string) string { return fmt.Sprintf("✅ %s joined the room", user) }

func LeftNotice(user string) string { return fmt.Sprintf("🚪 %s left the room", user) }

// ChatLine is what the server fans out for a line typed by user.
func ChatLine(user, line string) string { return user + ": " + line }

// IsVoiceRejection reports whether a binary payload is one of the voice
// rejection codes rather than audio.
func IsVoiceRejection(p []byte) bool {
	return bytes.Equal(p, ErrNoRoomCode) || bytes.Equal(p, ErrRoomFullCode)
}

func ChatPath(room, user string) string {
	return "/ws/chat/" + url.PathEscape(room) + "/" + url.PathEscape(user)
}

func VoicePath(room, user string) string {
	return "/ws/voice/" + url.PathEscape(room) + "/" + url.PathEscape(user)
}
