package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dkeye/huddle/internal/proto"
)

// RoomInfo is one entry of the server's room listing.
type RoomInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Users    int    `json:"users"`
}

// FetchRooms reads GET /rooms from the server.
func FetchRooms(ctx context.Context, hc *http.Client, server string) ([]RoomInfo, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(server, "/")+proto.RoomsPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list rooms: status %s", ErrTransport, resp.Status)
	}

	var body struct {
		Rooms []RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode room list: %w", err)
	}
	return body.Rooms, nil
}
