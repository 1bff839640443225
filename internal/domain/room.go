package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type (
	RoomName string
	RoomID   string
)

var ErrInvalidRoom = errors.New("invalid room")

// Room is the static description of a room. Membership lives in core.
type Room struct {
	ID       RoomID   `json:"id" validate:"required,max=64,excludesall=/?#"`
	Name     RoomName `json:"name" validate:"max=128"`
	Capacity int      `json:"capacity" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRoom validates the description; an empty name falls back to the id.
func NewRoom(id RoomID, name RoomName, capacity int) (*Room, error) {
	if name == "" {
		name = RoomName(id)
	}
	r := &Room{ID: id, Name: name, Capacity: capacity}
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRoom, id, err)
	}
	return r, nil
}
