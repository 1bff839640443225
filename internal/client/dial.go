package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrRejected     = errors.New("rejected by server")
	ErrRoomNotFound = errors.New("room not found")
)

// NewDialer returns the websocket dialer used by both sessions.
func NewDialer() *websocket.Dialer {
	return &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
}

func dialerOrDefault(d *websocket.Dialer) *websocket.Dialer {
	if d == nil {
		return NewDialer()
	}
	return d
}

// wsURL joins an http(s) server base with an already escaped path and
// switches the scheme to ws(s).
func wsURL(server, path string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("server url %q: unsupported scheme", server)
	}
	return strings.TrimRight(u.String(), "/") + path, nil
}
