package ui

import (
	"io"
	"sync"
)

// AudioRingBuffer is a thread-safe ring buffer implementing io.Reader.
// The playback goroutine writes PCM via Write(), and oto's player
// reads it via Read(). Read blocks when empty; Write drops the oldest
// whole frames on overflow so the producer never stalls and the
// channel order survives.
type AudioRingBuffer struct {
	buf      []byte
	readPos  int
	writePos int
	count    int
	capacity int
	frame    int
	dropped  int64
	mu       sync.Mutex
	cond     *sync.Cond
	closed   bool
}

// NewAudioRingBuffer creates a ring buffer holding up to capacity bytes,
// rounded down to a whole number of frame-byte frames.
func NewAudioRingBuffer(capacity, frame int) *AudioRingBuffer {
	if frame < 1 {
		frame = 1
	}
	capacity -= capacity % frame
	if capacity < frame {
		capacity = frame
	}
	rb := &AudioRingBuffer{
		buf:      make([]byte, capacity),
		capacity: capacity,
		frame:    frame,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write adds data to the buffer. Non-blocking; if the buffer overflows,
// the oldest frames are dropped to make room for new data.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		return
	}

	n := len(p)
	if n == 0 {
		return
	}

	// Keep only the newest capacity bytes
	if n > rb.capacity {
		rb.dropped += int64(n - rb.capacity)
		p = p[n-rb.capacity:]
		n = rb.capacity
	}

	overflow := rb.count + n - rb.capacity
	if overflow > 0 {
		if r := overflow % rb.frame; r != 0 {
			overflow += rb.frame - r
		}
		overflow = min(overflow, rb.count)
		rb.readPos = (rb.readPos + overflow) % rb.capacity
		rb.count -= overflow
		rb.dropped += int64(overflow)
	}

	// Write data to buffer (may wrap around)
	firstChunk := rb.capacity - rb.writePos
	if firstChunk >= n {
		copy(rb.buf[rb.writePos:], p)
	} else {
		copy(rb.buf[rb.writePos:], p[:firstChunk])
		copy(rb.buf[0:], p[firstChunk:])
	}
	rb.writePos = (rb.writePos + n) % rb.capacity
	rb.count += n

	rb.cond.Signal()
}

// Read implements io.Reader. Blocks until data is available or the buffer
// is closed. Returns io.EOF when closed and empty.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := min(len(p), rb.count)

	// Copy data from buffer (may wrap around)
	firstChunk := rb.capacity - rb.readPos
	if firstChunk >= n {
		copy(p, rb.buf[rb.readPos:rb.readPos+n])
	} else {
		copy(p, rb.buf[rb.readPos:])
		copy(p[firstChunk:], rb.buf[:n-firstChunk])
	}
	rb.readPos = (rb.readPos + n) % rb.capacity
	rb.count -= n

	return n, nil
}

// Buffered returns the number of bytes currently in the buffer.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Capacity returns the usable size in bytes.
func (rb *AudioRingBuffer) Capacity() int {
	return rb.capacity
}

// Dropped returns the number of bytes discarded by overflow.
func (rb *AudioRingBuffer) Dropped() int64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.dropped
}

// Clear resets the buffer, discarding all data.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
}

// Close signals shutdown. Subsequent Reads return io.EOF when the buffer
// is empty. Unblocks any goroutines waiting in Read.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
