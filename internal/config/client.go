package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

type AudioConfig struct {
	Driver         string `mapstructure:"driver" validate:"oneof=null wav portaudio"`
	CaptureDevice  string `mapstructure:"capture_device"`
	PlaybackDevice string `mapstructure:"playback_device"`
	BlockSamples   int    `mapstructure:"block_samples" validate:"gt=0"`
	WavInput       string `mapstructure:"wav_input" validate:"required_if=Driver wav"`
	WavOutput      string `mapstructure:"wav_output"`
}

type ClientConfig struct {
	ServerURL    string        `mapstructure:"server_url" validate:"required,url"`
	PTTKey       string        `mapstructure:"ptt_key"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	RestartGrace time.Duration `mapstructure:"restart_grace"`
	LogLevel     string        `mapstructure:"log_level"`
	Audio        AudioConfig   `mapstructure:"audio"`
}

var clientFlags = map[string]string{
	"server_url":            "server",
	"ptt_key":               "ptt-key",
	"log_level":             "log-level",
	"audio.driver":          "audio-driver",
	"audio.capture_device":  "capture-device",
	"audio.playback_device": "playback-device",
	"audio.wav_input":       "wav-input",
	"audio.wav_output":      "wav-output",
}

func LoadClient(file string, flags *pflag.FlagSet) (*ClientConfig, error) {
	v, err := newViper(file, flags, clientFlags)
	if err != nil {
		return nil, err
	}

	v.SetDefault("server_url", "http://localhost:8000")
	v.SetDefault("ptt_key", "space")
	v.SetDefault("poll_interval", "100ms")
	v.SetDefault("restart_grace", "200ms")
	v.SetDefault("log_level", "warn")
	v.SetDefault("audio.driver", "portaudio")
	v.SetDefault("audio.capture_device", "")
	v.SetDefault("audio.playback_device", "")
	v.SetDefault("audio.block_samples", 1024)
	v.SetDefault("audio.wav_input", "")
	v.SetDefault("audio.wav_output", "")

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return &cfg, nil
}
