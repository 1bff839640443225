// Package audio moves fixed-size PCM blocks between local audio devices and
// a pair of frame queues.
package audio

import "time"

// Wire format of every frame: mono, signed 16-bit little endian at 16 kHz.
const (
	SampleRate          = 16000
	Channels            = 1
	BitsPerSample       = 16
	BytesPerSample      = BitsPerSample / 8
	DefaultBlockSamples = 1024
)

// Frame is one block of raw PCM. It carries no sequence number or timestamp.
type Frame []byte

// BlockBytes is the byte length of a block of n samples.
func BlockBytes(n int) int {
	return n * Channels * BytesPerSample
}

// BlockDuration is the play time of a block of n samples.
func BlockDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}
