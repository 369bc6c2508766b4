package vgm

import (
	"fmt"

	"github.com/user-none/emvgm/chip"
)

// Options configures a Player.
type Options struct {
	SampleRate int // output rate, 0 means NativeRate
	Channels   int // 1 for mono, 2 for interleaved dual-mono
	Loops      int // see Decoder.Loops
	Trace      func(Event)
}

// Player drives a Decoder and a Bank to fill fixed-size audio buffers.
// Waits decoded beyond the end of one buffer carry into the next.
type Player struct {
	hdr  Header
	dec  *Decoder
	bank *chip.Bank

	rate     int
	channels int

	pending int32  // decoded output samples not yet rendered
	rem     uint64 // rate conversion remainder, in NativeRate units
	pos     int64
	err     error

	mono []int16
}

// NewPlayer returns a player reading opcodes from c, which must be
// positioned at the data start of hdr (as ParseHeader leaves it).
func NewPlayer(c *Cursor, hdr Header, bank *chip.Bank, opts Options) *Player {
	dec := NewDecoder(c, hdr, bank)
	dec.Loops = opts.Loops
	dec.Trace = opts.Trace

	rate := opts.SampleRate
	if rate <= 0 {
		rate = NativeRate
	}
	channels := opts.Channels
	if channels != 2 {
		channels = 1
	}
	return &Player{
		hdr:      hdr,
		dec:      dec,
		bank:     bank,
		rate:     rate,
		channels: channels,
	}
}

// Header returns the parsed file header.
func (p *Player) Header() Header {
	return p.hdr
}

// Bank returns the chips the player renders through.
func (p *Player) Bank() *chip.Bank {
	return p.bank
}

// Finished reports whether the stream has ended.
func (p *Player) Finished() bool {
	return p.dec.Finished()
}

// Err returns the first fatal error, or nil.
func (p *Player) Err() error {
	return p.err
}

// Position returns the number of sample frames rendered from the stream.
func (p *Player) Position() int64 {
	return p.pos
}

// SampleRate returns the output rate.
func (p *Player) SampleRate() int {
	return p.rate
}

// Channels returns 1 or 2.
func (p *Player) Channels() int {
	return p.channels
}

// Render zero-fills buf and renders into it. With two channels buf holds
// interleaved frames and a trailing odd sample is left silent. Once the
// stream has finished the buffer stays silent. A fatal decode error is
// returned by the call that hit it and kept in Err.
func (p *Player) Render(buf []int16) error {
	if len(buf) == 0 {
		return nil
	}
	clear(buf)

	if p.channels == 1 {
		return p.render(buf)
	}

	frames := len(buf) / 2
	if cap(p.mono) < frames {
		p.mono = make([]int16, frames)
	}
	mono := p.mono[:frames]
	clear(mono)
	err := p.render(mono)
	for i, v := range mono {
		buf[2*i] = v
		buf[2*i+1] = v
	}
	return err
}

func (p *Player) render(out []int16) error {
	watchdog := 2*len(out) + 64
	for len(out) > 0 && !p.dec.Finished() {
		if p.pending > 0 {
			n := min(int(p.pending), len(out))
			p.bank.Render(out[:n])
			out = out[n:]
			p.pending -= int32(n)
			p.pos += int64(n)
		} else {
			native, err := p.dec.Advance()
			if err != nil {
				return p.fail(err)
			}
			p.pending += p.convert(native)
			// a pass that moved stream time but rounded to no output
			// samples is still progress
			if native > 0 && p.pending == 0 {
				continue
			}
		}

		watchdog--
		if watchdog < 0 {
			return p.fail(p.dec.abort(fmt.Errorf("render of %d samples: %w", len(out), ErrRunawayDecode)))
		}
	}
	return nil
}

func (p *Player) fail(err error) error {
	if p.err == nil {
		p.err = err
	}
	return err
}

// convert turns a count of 44.1 kHz samples into output samples,
// carrying the fractional remainder between calls.
func (p *Player) convert(native uint32) int32 {
	if p.rate == NativeRate {
		return int32(native)
	}
	v := uint64(native)*uint64(p.rate) + p.rem
	p.rem = v % NativeRate
	return int32(v / NativeRate)
}
