package audio

import (
	"errors"
	"fmt"

	"github.com/dkeye/huddle/internal/config"
)

var ErrDeviceUnavailable = errors.New("audio device unavailable")

// CaptureDevice fills each block completely, blocking until it can.
type CaptureDevice interface {
	Read(block Frame) error
	Close() error
}

// PlaybackDevice plays one block, blocking until the device accepts it.
type PlaybackDevice interface {
	Write(block Frame) error
	Close() error
}

// Driver opens devices for blocks of the given number of samples.
type Driver interface {
	OpenCapture(blockSamples int) (CaptureDevice, error)
	OpenPlayback(blockSamples int) (PlaybackDevice, error)
}

// NewDriver picks the driver named in cfg.
func NewDriver(cfg config.AudioConfig) (Driver, error) {
	switch cfg.Driver {
	case "null":
		return NullDriver{}, nil
	case "wav":
		return &WavDriver{Input: cfg.WavInput, Output: cfg.WavOutput}, nil
	case "portaudio", "":
		return newPortAudioDriver(cfg.CaptureDevice, cfg.PlaybackDevice), nil
	default:
		return nil, fmt.Errorf("unknown audio driver %q", cfg.Driver)
	}
}

func unavailable(dir string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, dir, err)
}
