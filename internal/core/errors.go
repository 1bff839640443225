package core

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room full")
	ErrDuplicateRoom = errors.New("duplicate room")
)
