package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ringBufferMillis is the ring buffer length in milliseconds of audio.
const ringBufferMillis = 170

// AudioPlayer manages audio playback via oto.
// It writes int16 samples to a ring buffer which oto's player
// reads from in a pull model.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	audioBytes []byte // Pre-allocated buffer for int16-to-byte conversion
	frameBytes int
}

// oto allows one context per process, so the first player fixes the
// output format.
var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
	otoRate     int
	otoChannels int
)

// ensureOtoContext initializes the oto audio context on first use.
func ensureOtoContext(sampleRate, channels int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoRate, otoChannels = sampleRate, channels
		<-readyChan
	})
	if otoInitErr == nil && (sampleRate != otoRate || channels != otoChannels) {
		return nil, fmt.Errorf("audio context is %d Hz x%d, requested %d Hz x%d", otoRate, otoChannels, sampleRate, channels)
	}
	return otoCtx, otoInitErr
}

// BufferBytes returns the byte size of d of audio in the given format.
func BufferBytes(sampleRate, channels int, d time.Duration) int {
	frames := int(int64(sampleRate) * int64(d) / int64(time.Second))
	return frames * channels * 2
}

// NewAudioPlayer creates and initializes audio playback via oto.
func NewAudioPlayer(sampleRate, channels int, volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	rb := NewAudioRingBuffer(BufferBytes(sampleRate, channels, ringBufferMillis*time.Millisecond), channels*2)
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(BufferBytes(sampleRate, channels, 100*time.Millisecond))
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		audioBytes: make([]byte, 0, 4096),
		frameBytes: channels * 2,
	}, nil
}

// QueueSamples converts int16 samples to bytes and writes them
// to the ring buffer for oto to consume.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}

	// Convert int16 samples to little-endian bytes using pre-allocated buffer
	needed := len(samples) * 2
	if cap(a.audioBytes) < needed {
		a.audioBytes = make([]byte, 0, needed)
	}
	a.audioBytes = EncodeSamples(a.audioBytes[:0], samples)

	a.ringBuffer.Write(a.audioBytes)
}

// EncodeSamples appends samples to dst as signed 16-bit little-endian.
func EncodeSamples(dst []byte, samples []int16) []byte {
	for _, sample := range samples {
		dst = append(dst, byte(sample), byte(sample>>8))
	}
	return dst
}

// GetBufferLevel returns the total bytes of audio data currently buffered
// (ring buffer + oto player internal buffer). Used for ADT pacing.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ringBuffer.Buffered() + a.player.BufferedSize()
}

// Drained reports whether all queued audio has been played.
func (a *AudioPlayer) Drained() bool {
	return a.GetBufferLevel() < a.frameBytes
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Pause stops pulling from the ring buffer. Queued audio is kept.
func (a *AudioPlayer) Pause() {
	a.player.Pause()
}

// Resume restarts a paused player.
func (a *AudioPlayer) Resume() {
	a.player.Play()
}

// Close cleans up audio resources.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
