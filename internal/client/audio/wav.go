package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/youpy/go-wav"
)

// WavDriver captures by looping the PCM of Input and records playback into
// Output. Output is written when the playback device is closed; an empty
// Output discards playback.
type WavDriver struct {
	Input  string
	Output string
}

func (d *WavDriver) OpenCapture(blockSamples int) (CaptureDevice, error) {
	pcm, err := readWavPCM(d.Input)
	if err != nil {
		return nil, unavailable("capture", err)
	}
	return &wavCapture{pcm: pcm, pacer: newPacer(BlockDuration(blockSamples))}, nil
}

func (d *WavDriver) OpenPlayback(int) (PlaybackDevice, error) {
	if d.Output == "" {
		return discard{}, nil
	}
	f, err := os.Create(d.Output)
	if err != nil {
		return nil, unavailable("playback", err)
	}
	return &wavRecorder{file: f}, nil
}

func readWavPCM(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := wav.NewReader(file)
	format, err := r.Format()
	if err != nil {
		return nil, fmt.Errorf("read wav format: %w", err)
	}
	if format.NumChannels != Channels || format.SampleRate != SampleRate || format.BitsPerSample != BitsPerSample {
		return nil, fmt.Errorf("%s: want %d Hz %d-bit mono, got %d Hz %d-bit %d channels",
			path, SampleRate, BitsPerSample, format.SampleRate, format.BitsPerSample, format.NumChannels)
	}

	var pcm bytes.Buffer
	buf := make([]byte, 8192)
	for {
		n, err := r.Read(buf)
		pcm.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wav data: %w", err)
		}
	}
	// A truncated data chunk can end mid-sample; looping must stay aligned.
	n := pcm.Len() - pcm.Len()%BytesPerSample
	if n < BytesPerSample {
		return nil, fmt.Errorf("%s: no samples", path)
	}
	return pcm.Bytes()[:n], nil
}

type wavCapture struct {
	*pacer
	pcm []byte
	pos int
}

func (c *wavCapture) Read(block Frame) error {
	if err := c.wait(); err != nil {
		return err
	}
	for n := 0; n < len(block); {
		k := copy(block[n:], c.pcm[c.pos:])
		n += k
		c.pos = (c.pos + k) % len(c.pcm)
	}
	return nil
}

type wavRecorder struct {
	mu   sync.Mutex
	file *os.File
	pcm  bytes.Buffer
	once sync.Once
}

func (r *wavRecorder) Write(block Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.pcm.Write(block)
	return err
}

// Close writes the header and the recorded samples.
func (r *wavRecorder) Close() error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		samples := uint32(r.pcm.Len() / BytesPerSample)
		w := wav.NewWriter(r.file, samples, Channels, SampleRate, BitsPerSample)
		if _, werr := w.Write(r.pcm.Bytes()[:int(samples)*BytesPerSample]); werr != nil {
			err = werr
		}
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
