//go:build portaudio

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDriver opens real devices by name; an empty name selects the
// system default.
type PortAudioDriver struct {
	CaptureName  string
	PlaybackName string
}

func newPortAudioDriver(capture, playback string) Driver {
	return &PortAudioDriver{CaptureName: capture, PlaybackName: playback}
}

func (d *PortAudioDriver) OpenCapture(blockSamples int) (CaptureDevice, error) {
	s, err := openStream(d.CaptureName, true, blockSamples)
	if err != nil {
		return nil, unavailable("capture", err)
	}
	return s, nil
}

func (d *PortAudioDriver) OpenPlayback(blockSamples int) (PlaybackDevice, error) {
	s, err := openStream(d.PlaybackName, false, blockSamples)
	if err != nil {
		return nil, unavailable("playback", err)
	}
	return s, nil
}

type paStream struct {
	stream *portaudio.Stream
	buf    []int16
	once   sync.Once
}

func openStream(name string, input bool, blockSamples int) (*paStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	dev, err := findDevice(name, input)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	var params portaudio.StreamParameters
	if input {
		params = portaudio.LowLatencyParameters(dev, nil)
		params.Input.Channels = Channels
	} else {
		params = portaudio.LowLatencyParameters(nil, dev)
		params.Output.Channels = Channels
	}
	params.SampleRate = SampleRate
	params.FramesPerBuffer = blockSamples

	s := &paStream{buf: make([]int16, blockSamples*Channels)}
	s.stream, err = portaudio.OpenStream(params, s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	return s, nil
}

func findDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	if name == "" {
		if input {
			return portaudio.DefaultInputDevice()
		}
		return portaudio.DefaultOutputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name != name {
			continue
		}
		if (input && d.MaxInputChannels > 0) || (!input && d.MaxOutputChannels > 0) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no device named %q", name)
}

func (s *paStream) Read(block Frame) error {
	if err := s.stream.Read(); err != nil {
		return err
	}
	for i, v := range s.buf {
		binary.LittleEndian.PutUint16(block[i*BytesPerSample:], uint16(v))
	}
	return nil
}

func (s *paStream) Write(block Frame) error {
	for i := range s.buf {
		off := i * BytesPerSample
		if off+BytesPerSample > len(block) {
			s.buf[i] = 0
			continue
		}
		s.buf[i] = int16(binary.LittleEndian.Uint16(block[off:]))
	}
	return s.stream.Write()
}

func (s *paStream) Close() error {
	var err error
	s.once.Do(func() {
		s.stream.Stop()
		err = s.stream.Close()
		portaudio.Terminate()
	})
	return err
}
