package vgm

import "github.com/user-none/emvgm/chip"

type opKind uint8

const (
	opUnknown opKind = iota
	opWrite          // chip register write
	opWaitN          // 0x61 nnnn
	opWaitNTSC       // 0x62
	opWaitPAL        // 0x63
	opEnd            // 0x66
	opDataBlock      // 0x67
	opSeekPCM        // 0xE0
	opWaitShort      // 0x7n
	opWaitDAC        // 0x8n
	opSkip           // consumed and ignored
)

const (
	waitNTSC = 735
	waitPAL  = 882
)

// MaxDataBlock is the largest data block payload accepted.
const MaxDataBlock = 16 << 20

type opInfo struct {
	kind  opKind
	width int // operand bytes following the opcode
	chip  chip.ID
	port  uint8
}

var opTable [256]opInfo

func skipRange(lo, hi, width int) {
	for op := lo; op <= hi; op++ {
		opTable[op] = opInfo{kind: opSkip, width: width}
	}
}

func init() {
	// reserved for future use
	skipRange(0x30, 0x3F, 1)
	skipRange(0x40, 0x4E, 2)
	skipRange(0xA1, 0xAF, 2)
	skipRange(0xBC, 0xBF, 2)
	skipRange(0xC5, 0xCF, 3)
	skipRange(0xD5, 0xDF, 3)
	skipRange(0xE1, 0xFF, 4)

	// chips with no bank slot
	skipRange(0x51, 0x51, 2)
	skipRange(0x54, 0x59, 2)
	skipRange(0x5B, 0x5F, 2)
	skipRange(0xA0, 0xA0, 2)
	skipRange(0xB0, 0xB2, 2)
	skipRange(0xB5, 0xBA, 2)
	skipRange(0xC0, 0xC4, 3)
	skipRange(0xD0, 0xD4, 3)

	// PCM RAM writes and DAC stream control
	skipRange(0x68, 0x68, 11)
	skipRange(0x90, 0x91, 4)
	skipRange(0x92, 0x92, 5)
	skipRange(0x93, 0x93, 10)
	skipRange(0x94, 0x94, 1)
	skipRange(0x95, 0x95, 4)

	for op := 0x70; op <= 0x7F; op++ {
		opTable[op] = opInfo{kind: opWaitShort}
	}
	for op := 0x80; op <= 0x8F; op++ {
		opTable[op] = opInfo{kind: opWaitDAC}
	}

	opTable[0x4F] = opInfo{kind: opWrite, width: 1, chip: chip.PSG}
	opTable[0x50] = opInfo{kind: opWrite, width: 1, chip: chip.PSG}
	opTable[0x52] = opInfo{kind: opWrite, width: 2, chip: chip.FM, port: 0}
	opTable[0x53] = opInfo{kind: opWrite, width: 2, chip: chip.FM, port: 1}
	opTable[0x5A] = opInfo{kind: opWrite, width: 2, chip: chip.OPL}
	opTable[0xB3] = opInfo{kind: opWrite, width: 2, chip: chip.DMG}
	opTable[0xB4] = opInfo{kind: opWrite, width: 2, chip: chip.NESAPU}
	opTable[0xBB] = opInfo{kind: opWrite, width: 2, chip: chip.POKEY}

	opTable[0x61] = opInfo{kind: opWaitN, width: 2}
	opTable[0x62] = opInfo{kind: opWaitNTSC}
	opTable[0x63] = opInfo{kind: opWaitPAL}
	opTable[0x66] = opInfo{kind: opEnd}
	opTable[0x67] = opInfo{kind: opDataBlock}
	opTable[0xE0] = opInfo{kind: opSeekPCM, width: 4}
}

// OperandWidth returns the number of operand bytes following op and
// whether op is a known or reserved opcode. Data blocks report 0; their
// length is variable.
func OperandWidth(op uint8) (int, bool) {
	info := opTable[op]
	return info.width, info.kind != opUnknown
}
