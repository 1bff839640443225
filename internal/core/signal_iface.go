package core

// Frame is a raw binary payload: an audio block or an encoded chat line.
type Frame []byte

// Connection abstracts a member's transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	TrySend(Frame) error
	Close()
}
