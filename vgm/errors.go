package vgm

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic        = errors.New("vgm: bad magic")
	ErrTruncatedStream = errors.New("vgm: truncated stream")
	ErrUnknownOpcode   = errors.New("vgm: unknown opcode")
	ErrRunawayDecode   = errors.New("vgm: runaway decode")
	ErrBadDataOffset   = errors.New("vgm: bad data offset")
	ErrBadDataBlock    = errors.New("vgm: bad data block")
)

// OpcodeError reports a byte that is neither a known nor a reserved
// opcode. It matches ErrUnknownOpcode with errors.Is.
type OpcodeError struct {
	Opcode uint8
	Offset int64
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("vgm: unknown opcode 0x%02X at 0x%04X", e.Opcode, e.Offset)
}

func (e *OpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}
