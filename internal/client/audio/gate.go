package audio

import "sync/atomic"

// KeyProbe reports whether a keyboard key is currently held down.
type KeyProbe interface {
	Held(key string) bool
}

type KeyProbeFunc func(key string) bool

func (f KeyProbeFunc) Held(key string) bool { return f(key) }

// Gate decides, per captured block, whether the block leaves the client.
// Flags are read by the capture worker and flipped by local commands.
type Gate struct {
	muted      atomic.Bool
	pushToTalk atomic.Bool
	key        string
	probe      KeyProbe
}

// NewGate returns an open gate. A nil probe never reports the key as held.
func NewGate(key string, probe KeyProbe) *Gate {
	return &Gate{key: key, probe: probe}
}

func (g *Gate) SetMuted(v bool)      { g.muted.Store(v) }
func (g *Gate) Muted() bool          { return g.muted.Load() }
func (g *Gate) SetPushToTalk(v bool) { g.pushToTalk.Store(v) }
func (g *Gate) PushToTalk() bool     { return g.pushToTalk.Load() }
func (g *Gate) Key() string          { return g.key }

// CanSenseKey reports whether a probe watches the PTT key. Without one,
// push-to-talk would never open the gate.
func (g *Gate) CanSenseKey() bool { return g.probe != nil }

// Open reports whether the current block should be sent.
func (g *Gate) Open() bool {
	if g.muted.Load() {
		return false
	}
	if !g.pushToTalk.Load() {
		return true
	}
	return g.probe != nil && g.probe.Held(g.key)
}
