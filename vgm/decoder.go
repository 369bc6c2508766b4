package vgm

import (
	"fmt"

	"github.com/user-none/emvgm/chip"
)

// maxOpcodes bounds one Advance call. A stream that runs this long
// without a wait or an end is corrupt.
const maxOpcodes = 1000

// Decoder parses opcodes from a Cursor and routes chip writes to a Bank.
type Decoder struct {
	cur  *Cursor
	hdr  Header
	bank *chip.Bank

	// Loops is the number of times 0x66 jumps back to the loop point
	// before ending. Negative loops forever.
	Loops int

	// Trace, when set, receives every decoded event.
	Trace func(Event)

	finished bool
	err      error

	pcm    []byte // type 0x00 data blocks, concatenated
	pcmPos uint32
	pcmEnd int64 // stream offset past the last block loaded into pcm
}

// NewDecoder returns a decoder reading opcodes from c, which must be
// positioned at the data start of hdr.
func NewDecoder(c *Cursor, hdr Header, bank *chip.Bank) *Decoder {
	return &Decoder{cur: c, hdr: hdr, bank: bank}
}

// Finished reports whether the stream has ended or failed.
func (d *Decoder) Finished() bool {
	return d.finished
}

// Err returns the error that ended decoding, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Offset returns the absolute position of the next opcode.
func (d *Decoder) Offset() int64 {
	return d.cur.Offset()
}

// PCMSize returns the number of bytes held in the PCM bank.
func (d *Decoder) PCMSize() int {
	return len(d.pcm)
}

// Advance decodes opcodes until at least one sample of wait has been
// produced or the stream finishes. The count is in 44.1 kHz samples.
func (d *Decoder) Advance() (uint32, error) {
	var count uint32
	for n := 0; count == 0 && !d.finished; n++ {
		if n >= maxOpcodes {
			return 0, d.abort(fmt.Errorf("%d opcodes without a wait at 0x%04X: %w", maxOpcodes, d.cur.Offset(), ErrRunawayDecode))
		}
		samples, err := d.step()
		if err != nil {
			return 0, d.abort(err)
		}
		count += samples
	}
	return count, nil
}

// abort ends playback with err, silencing the bank.
func (d *Decoder) abort(err error) error {
	d.finished = true
	if d.err == nil {
		d.err = err
	}
	d.bank.Mute()
	return err
}

func (d *Decoder) emit(e Event) {
	if d.Trace != nil {
		d.Trace(e)
	}
}

// step decodes a single opcode and returns its wait in native samples.
func (d *Decoder) step() (uint32, error) {
	at := d.cur.Offset()
	op, err := d.cur.ReadU8()
	if err != nil {
		return 0, err
	}
	info := opTable[op]

	switch info.kind {
	case opWrite:
		var reg, data uint8
		if info.width == 1 {
			data, err = d.cur.ReadU8()
		} else {
			reg, err = d.cur.ReadU8()
			if err == nil {
				data, err = d.cur.ReadU8()
			}
		}
		if err != nil {
			return 0, err
		}
		d.bank.Write(info.chip, info.port, reg, data)
		d.emit(Event{Offset: at, Opcode: op, Kind: EventWrite, Chip: info.chip, Port: info.port, Reg: reg, Data: data})
		return 0, nil

	case opWaitN:
		n, err := d.cur.ReadU16()
		if err != nil {
			return 0, err
		}
		return d.wait(at, op, uint32(n)), nil

	case opWaitNTSC:
		return d.wait(at, op, waitNTSC), nil

	case opWaitPAL:
		return d.wait(at, op, waitPAL), nil

	case opWaitShort:
		return d.wait(at, op, uint32(op&0x0F)+1), nil

	case opWaitDAC:
		if len(d.pcm) > 0 && int(d.pcmPos) < len(d.pcm) {
			b := d.pcm[d.pcmPos]
			d.pcmPos++
			d.bank.Write(chip.FM, 0, DACRegister, b)
			d.emit(Event{Offset: at, Opcode: op, Kind: EventWrite, Chip: chip.FM, Reg: DACRegister, Data: b})
		}
		return d.wait(at, op, uint32(op&0x0F)), nil

	case opEnd:
		return 0, d.end(at, op)

	case opDataBlock:
		return 0, d.dataBlock(at, op)

	case opSeekPCM:
		pos, err := d.cur.ReadU32()
		if err != nil {
			return 0, err
		}
		d.pcmPos = pos
		d.emit(Event{Offset: at, Opcode: op, Kind: EventSeekPCM, Pos: pos})
		return 0, nil

	case opSkip:
		if err := d.cur.Skip(int64(info.width)); err != nil {
			return 0, err
		}
		d.emit(Event{Offset: at, Opcode: op, Kind: EventSkip, Size: uint32(info.width)})
		return 0, nil
	}

	return 0, &OpcodeError{Opcode: op, Offset: at}
}

// DACRegister is the FM register the 0x8n opcodes feed from the PCM bank.
const DACRegister = 0x2A

func (d *Decoder) wait(at int64, op uint8, n uint32) uint32 {
	d.emit(Event{Offset: at, Opcode: op, Kind: EventWait, Samples: n})
	return n
}

// end either rewinds to the loop point or finishes the stream.
func (d *Decoder) end(at int64, op uint8) error {
	loop := d.hdr.LoopStart()
	if d.Loops != 0 && loop != 0 {
		if loop < d.hdr.DataStart() {
			return fmt.Errorf("loop point 0x%X before data start 0x%X: %w", loop, d.hdr.DataStart(), ErrBadDataOffset)
		}
		if err := d.cur.Seek(loop); err != nil {
			return err
		}
		if d.Loops > 0 {
			d.Loops--
		}
		d.emit(Event{Offset: at, Opcode: op, Kind: EventLoop})
		return nil
	}

	d.finished = true
	d.bank.Mute()
	d.emit(Event{Offset: at, Opcode: op, Kind: EventEnd})
	return nil
}

// dataBlock handles 0x67 0x66 tt ssssssss. Type 0x00 is YM2612 PCM and
// is appended to the PCM bank the first time it is read; other types
// are skipped.
func (d *Decoder) dataBlock(at int64, op uint8) error {
	guard, err := d.cur.ReadU8()
	if err != nil {
		return err
	}
	if guard != 0x66 {
		return fmt.Errorf("block at 0x%04X has guard 0x%02X: %w", at, guard, ErrBadDataBlock)
	}
	typ, err := d.cur.ReadU8()
	if err != nil {
		return err
	}
	size, err := d.cur.ReadU32()
	if err != nil {
		return err
	}
	size &= 0x7FFFFFFF // top bit flags the second chip
	if size > MaxDataBlock {
		return fmt.Errorf("block at 0x%04X is %d bytes: %w", at, size, ErrBadDataBlock)
	}
	if int64(size) > d.cur.Len()-d.cur.Offset() {
		return fmt.Errorf("block at 0x%04X is %d bytes: %w", at, size, ErrTruncatedStream)
	}

	// blocks replayed by a loop are already in the bank
	if typ == 0x00 && at >= d.pcmEnd {
		if len(d.pcm)+int(size) > MaxDataBlock {
			return fmt.Errorf("PCM bank exceeds %d bytes: %w", MaxDataBlock, ErrBadDataBlock)
		}
		n := len(d.pcm)
		d.pcm = append(d.pcm, make([]byte, size)...)
		if err := d.cur.Read(d.pcm[n:]); err != nil {
			d.pcm = d.pcm[:n]
			return err
		}
		d.pcmEnd = d.cur.Offset()
	} else if err := d.cur.Skip(int64(size)); err != nil {
		return err
	}

	d.emit(Event{Offset: at, Opcode: op, Kind: EventDataBlock, BlockType: typ, Size: size})
	return nil
}
