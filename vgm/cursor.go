package vgm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cursor is a bounds-checked little-endian reader over a VGM byte stream.
// It only moves forward, except for Seek, which the decoder uses to jump
// back to the loop point.
type Cursor struct {
	r    io.ReadSeeker
	off  int64
	size int64
	buf  [4]byte
}

// NewCursor wraps r. The stream size is taken once, up front.
func NewCursor(r io.ReadSeeker) (*Cursor, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("vgm: sizing stream: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("vgm: rewinding stream: %w", err)
	}
	return &Cursor{r: r, size: size}, nil
}

// Offset returns the absolute position of the next byte.
func (c *Cursor) Offset() int64 {
	return c.off
}

// Len returns the total stream size.
func (c *Cursor) Len() int64 {
	return c.size
}

// Read fills dst or fails with ErrTruncatedStream.
func (c *Cursor) Read(dst []byte) error {
	n, err := io.ReadFull(c.r, dst)
	c.off += int64(n)
	if err != nil {
		return fmt.Errorf("reading %d bytes at 0x%04X: %w", len(dst), c.off-int64(n), ErrTruncatedStream)
	}
	return nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.Read(c.buf[:1]); err != nil {
		return 0, err
	}
	return c.buf[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.Read(c.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.buf[:2]), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.Read(c.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.buf[:4]), nil
}

// Skip advances n bytes. Skipping past the end leaves the cursor at the
// end and returns ErrTruncatedStream.
func (c *Cursor) Skip(n int64) error {
	if n < 0 || n > c.size-c.off {
		at := c.off
		c.off = c.size
		if _, err := c.r.Seek(c.size, io.SeekStart); err != nil {
			return fmt.Errorf("vgm: seek: %w", err)
		}
		return fmt.Errorf("skipping %d bytes at 0x%04X: %w", n, at, ErrTruncatedStream)
	}
	if _, err := c.r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("vgm: seek: %w", err)
	}
	c.off += n
	return nil
}

// Seek moves to an absolute offset inside the stream.
func (c *Cursor) Seek(abs int64) error {
	if abs < 0 || abs > c.size {
		return fmt.Errorf("seek to 0x%04X past end 0x%04X: %w", abs, c.size, ErrBadDataOffset)
	}
	if _, err := c.r.Seek(abs, io.SeekStart); err != nil {
		return fmt.Errorf("vgm: seek: %w", err)
	}
	c.off = abs
	return nil
}
