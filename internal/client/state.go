// Package client runs one participant's chat and voice sessions against a
// huddle server.
package client

import (
	"sync/atomic"

	"github.com/dkeye/huddle/internal/client/audio"
)

type VoiceState int32

const (
	VoiceStopped VoiceState = iota
	VoiceStarting
	VoiceRunning
	VoiceRestarting
)

func (s VoiceState) String() string {
	switch s {
	case VoiceStopped:
		return "stopped"
	case VoiceStarting:
		return "starting"
	case VoiceRunning:
		return "running"
	case VoiceRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// State is shared between the shell, the sessions and the coordinator.
// Every field is safe for concurrent use.
type State struct {
	Gate *audio.Gate

	voice   atomic.Int32
	restart atomic.Bool
}

func NewState(gate *audio.Gate) *State {
	if gate == nil {
		gate = audio.NewGate("", nil)
	}
	return &State{Gate: gate}
}

func (s *State) Voice() VoiceState { return VoiceState(s.voice.Load()) }

func (s *State) setVoice(v VoiceState) { s.voice.Store(int32(v)) }

// markRunning moves Starting to Running. It fails when a restart or a stop
// claimed the state while the session was still connecting.
func (s *State) markRunning() bool {
	return s.voice.CompareAndSwap(int32(VoiceStarting), int32(VoiceRunning))
}

// stopVoice moves to Stopped unless a restart has claimed the state.
func (s *State) stopVoice() {
	for {
		cur := s.voice.Load()
		if VoiceState(cur) == VoiceRestarting {
			return
		}
		if s.voice.CompareAndSwap(cur, int32(VoiceStopped)) {
			return
		}
	}
}

func (s *State) RequestRestart()        { s.restart.Store(true) }
func (s *State) RestartRequested() bool { return s.restart.Load() }
func (s *State) clearRestart()          { s.restart.Store(false) }

// Printer shows user-facing lines. It is distinct from diagnostic logging.
type Printer interface {
	Print(line string)
}

type PrinterFunc func(line string)

func (f PrinterFunc) Print(line string) { f(line) }

type nopPrinter struct{}

func (nopPrinter) Print(string) {}

func printerOrNop(p Printer) Printer {
	if p == nil {
		return nopPrinter{}
	}
	return p
}
