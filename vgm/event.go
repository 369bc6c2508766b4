package vgm

import (
	"fmt"

	"github.com/user-none/emvgm/chip"
)

// EventKind classifies a decoded opcode.
type EventKind uint8

const (
	EventWrite EventKind = iota
	EventWait
	EventDataBlock
	EventSeekPCM
	EventSkip
	EventLoop
	EventEnd
)

var eventNames = [...]string{"write", "wait", "data", "seek", "skip", "loop", "end"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", k)
}

// Event is one decoded opcode as passed to Decoder.Trace.
type Event struct {
	Offset int64
	Opcode uint8
	Kind   EventKind

	Chip chip.ID // EventWrite
	Port uint8
	Reg  uint8
	Data uint8

	Samples uint32 // EventWait, native 44.1 kHz samples

	BlockType uint8  // EventDataBlock
	Size      uint32 // EventDataBlock payload size, EventSkip operand bytes
	Pos       uint32 // EventSeekPCM
}

func (e Event) String() string {
	var detail string
	switch e.Kind {
	case EventWrite:
		detail = fmt.Sprintf("%-6s port=%d reg=%02X data=%02X", e.Chip, e.Port, e.Reg, e.Data)
	case EventWait:
		detail = fmt.Sprintf("%d", e.Samples)
	case EventDataBlock:
		detail = fmt.Sprintf("type=%02X size=%d", e.BlockType, e.Size)
	case EventSeekPCM:
		detail = fmt.Sprintf("pos=%d", e.Pos)
	case EventSkip:
		detail = fmt.Sprintf("%d bytes", e.Size)
	}
	return fmt.Sprintf("%06X %02X %-5s %s", e.Offset, e.Opcode, e.Kind, detail)
}
