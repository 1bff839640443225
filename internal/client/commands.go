package client

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

const helpText = `Commands:
  /mute           - mute your mic locally
  /unmute         - unmute
  /ptt on         - enable push-to-talk (hold %s)
  /ptt off        - disable push-to-talk
  /restart-voice  - restart voice streaming
  /help           - this help`

const (
	unknownCommand = "Unknown command. Type /help"
	pttUnavailable = "⚠️ Push-to-talk unavailable: no key listener in this client (mic stays open)"
)

// Commands interprets slash commands typed into the chat input. They only
// change local state and never reach the server.
type Commands struct {
	State   *State
	Printer Printer
}

// Handle runs one command line, e.g. "/ptt on".
func (c *Commands) Handle(line string) {
	p := printerOrNop(c.Printer)
	args, err := shellwords.Parse(strings.TrimSpace(line))
	if err != nil || len(args) == 0 {
		p.Print(unknownCommand)
		return
	}

	gate := c.State.Gate
	switch {
	case len(args) == 1 && args[0] == "/mute":
		gate.SetMuted(true)
		p.Print("🔇 Muted (local)")
	case len(args) == 1 && args[0] == "/unmute":
		gate.SetMuted(false)
		p.Print("🎙️ Unmuted (local)")
	case len(args) == 2 && args[0] == "/ptt" && args[1] == "on":
		if !gate.CanSenseKey() {
			p.Print(pttUnavailable)
			return
		}
		gate.SetPushToTalk(true)
		p.Print(fmt.Sprintf("▶ Push-to-talk enabled (hold %s)", keyLabel(gate.Key())))
	case len(args) == 2 && args[0] == "/ptt" && args[1] == "off":
		gate.SetPushToTalk(false)
		p.Print("▶ Push-to-talk disabled (open mic)")
	case len(args) == 1 && args[0] == "/restart-voice":
		c.State.RequestRestart()
		p.Print("🔁 Voice restart requested")
	case len(args) == 1 && args[0] == "/help":
		p.Print(fmt.Sprintf(helpText, keyLabel(gate.Key())))
	default:
		p.Print(unknownCommand)
	}
}

func keyLabel(key string) string {
	if key == "" {
		return "the PTT key"
	}
	return strings.ToUpper(key)
}
