//go:build !portaudio

package audio

import "errors"

var errNoPortAudio = errors.New("built without portaudio support (rebuild with -tags portaudio)")

type stubDriver struct{}

func newPortAudioDriver(string, string) Driver { return stubDriver{} }

func (stubDriver) OpenCapture(int) (CaptureDevice, error) {
	return nil, unavailable("capture", errNoPortAudio)
}

func (stubDriver) OpenPlayback(int) (PlaybackDevice, error) {
	return nil, unavailable("playback", errNoPortAudio)
}
