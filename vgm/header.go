package vgm

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/user-none/emvgm/chip"
)

// NativeRate is the sample rate all VGM wait counts are expressed in.
const NativeRate = 44100

const (
	headerSize = 0x40
	extEnd     = 0x100

	// clockMask strips the variant flags carried in the top clock bits.
	clockMask = 0x3FFFFFFF
)

var magic = [4]byte{'V', 'g', 'm', ' '}

// Header is the fixed VGM file header plus the extended clocks read when
// the data starts beyond 0x40.
type Header struct {
	Ident        [4]byte
	EOFOffset    uint32
	Version      uint32
	SN76489Clock uint32
	YM2413Clock  uint32
	GD3Offset    uint32
	TotalSamples uint32
	LoopOffset   uint32
	LoopSamples  uint32
	Rate         uint32

	SN76489Feedback uint16
	SN76489Width    uint8
	SN76489Flags    uint8

	YM2612Clock      uint32
	YM2151Clock      uint32
	DataOffset       uint32
	SegaPCMClock     uint32
	SegaPCMInterface uint32

	// Extended header, zero when absent.
	YM3812Clock uint32
	DMGClock    uint32
	NESAPUClock uint32
	POKEYClock  uint32
}

// ParseHeader reads the header from the start of c and leaves c at the
// first opcode.
func ParseHeader(c *Cursor) (Header, error) {
	var h Header
	var raw [headerSize]byte
	if err := c.Read(raw[:]); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	copy(h.Ident[:], raw[0x00:])
	if h.Ident != magic {
		return h, fmt.Errorf("header ident %q: %w", h.Ident[:], ErrBadMagic)
	}

	le := binary.LittleEndian
	h.EOFOffset = le.Uint32(raw[0x04:])
	h.Version = le.Uint32(raw[0x08:])
	h.SN76489Clock = le.Uint32(raw[0x0C:])
	h.YM2413Clock = le.Uint32(raw[0x10:])
	h.GD3Offset = le.Uint32(raw[0x14:])
	h.TotalSamples = le.Uint32(raw[0x18:])
	h.LoopOffset = le.Uint32(raw[0x1C:])
	h.LoopSamples = le.Uint32(raw[0x20:])
	h.Rate = le.Uint32(raw[0x24:])
	h.SN76489Feedback = le.Uint16(raw[0x28:])
	h.SN76489Width = raw[0x2A]
	h.SN76489Flags = raw[0x2B]
	h.YM2612Clock = le.Uint32(raw[0x2C:])
	h.YM2151Clock = le.Uint32(raw[0x30:])
	h.DataOffset = le.Uint32(raw[0x34:])
	h.SegaPCMClock = le.Uint32(raw[0x38:])
	h.SegaPCMInterface = le.Uint32(raw[0x3C:])

	start := h.DataStart()
	if start < headerSize || start > c.Len() {
		return h, fmt.Errorf("data start 0x%X in a %d byte stream: %w", start, c.Len(), ErrBadDataOffset)
	}

	if start > headerSize {
		n := min(start, extEnd) - headerSize
		ext := make([]byte, extEnd-headerSize)
		if err := c.Read(ext[:n]); err != nil {
			return h, fmt.Errorf("extended header: %w", err)
		}
		at := func(off int) uint32 {
			return le.Uint32(ext[off-headerSize:])
		}
		h.YM3812Clock = at(0x50)
		h.DMGClock = at(0x80)
		h.NESAPUClock = at(0x84)
		h.POKEYClock = at(0xB0)
	}

	if err := c.Skip(start - c.Offset()); err != nil {
		return h, fmt.Errorf("seeking to data: %w", err)
	}
	return h, nil
}

// DataStart returns the absolute offset of the first opcode. An offset
// of zero means the pre-1.50 fixed start at 0x40.
func (h Header) DataStart() int64 {
	if h.DataOffset == 0 {
		return headerSize
	}
	return 0x34 + int64(h.DataOffset)
}

// LoopStart returns the absolute loop point, or 0 when the file does
// not loop.
func (h Header) LoopStart() int64 {
	if h.LoopOffset == 0 {
		return 0
	}
	return 0x1C + int64(h.LoopOffset)
}

// Duration is the playing time of one pass through the stream.
func (h Header) Duration() time.Duration {
	return time.Duration(h.TotalSamples) * time.Second / NativeRate
}

// Clock returns the clock in Hz for a bank slot with the variant flag
// bits removed. Zero means the file does not use that chip.
func (h Header) Clock(id chip.ID) uint32 {
	var v uint32
	switch id {
	case chip.PSG:
		v = h.SN76489Clock
	case chip.NESAPU:
		v = h.NESAPUClock
	case chip.OPL:
		v = h.YM3812Clock
	case chip.FM:
		v = h.YM2612Clock
	case chip.DMG:
		v = h.DMGClock
	case chip.POKEY:
		v = h.POKEYClock
	}
	return v & clockMask
}

// PAL reports whether the NES APU clock carries the PAL frequency.
func (h Header) PAL() bool {
	return h.Clock(chip.NESAPU) == 1662607
}

// VersionString formats the BCD version field, e.g. "1.71".
func (h Header) VersionString() string {
	return fmt.Sprintf("%x.%02x", h.Version>>8, h.Version&0xFF)
}
