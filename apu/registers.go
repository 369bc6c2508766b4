package apu

// Channel indices. Pulse and noise share the envelope/length layout;
// register groups are 4 bytes apart starting at 0x00.
const (
	chPulse1 = iota
	chPulse2
	chTriangle
	chNoise
)

// Register offsets relative to $4000.
const (
	regStatus    = 0x15
	regFrameMode = 0x17
	numRegisters = 0x18
)

// registers is the raw write-only register file. All fields are decoded
// through accessors.
type registers [numRegisters]uint8

func (r *registers) duty(ch int) uint8 {
	return r[ch*4] >> 6
}

// volume is the constant volume or envelope period (pulse, noise).
func (r *registers) volume(ch int) uint8 {
	return r[ch*4] & 0x0F
}

// constant reports the constant-volume flag (pulse, noise).
func (r *registers) constant(ch int) bool {
	return r[ch*4]&0x10 != 0
}

// loop reports the envelope loop / length halt flag (pulse, noise).
func (r *registers) loop(ch int) bool {
	return r[ch*4]&0x20 != 0
}

func (r *registers) sweepEnabled(ch int) bool {
	return r[ch*4+1]&0x80 != 0
}

func (r *registers) sweepPeriod(ch int) uint8 {
	return (r[ch*4+1] >> 4) & 0x07
}

func (r *registers) sweepNegate(ch int) bool {
	return r[ch*4+1]&0x08 != 0
}

func (r *registers) sweepShift(ch int) uint8 {
	return r[ch*4+1] & 0x07
}

// timer is the 11-bit period (pulse, triangle).
func (r *registers) timer(ch int) uint16 {
	return uint16(r[ch*4+2]) | uint16(r[ch*4+3]&0x07)<<8
}

// lengthIndex is the 5-bit length counter load field.
func (r *registers) lengthIndex(ch int) uint8 {
	return r[ch*4+3] >> 3
}

// linearControl is the triangle's length halt / linear control flag.
func (r *registers) linearControl() bool {
	return r[0x08]&0x80 != 0
}

func (r *registers) linearReload() uint8 {
	return r[0x08] & 0x7F
}

func (r *registers) noisePeriod() uint8 {
	return r[0x0E] & 0x0F
}

// noiseShort reports mode 1 (93-step sequence).
func (r *registers) noiseShort() bool {
	return r[0x0E]&0x80 != 0
}

func (r *registers) enabled(ch int) bool {
	return r[regStatus]&(1<<uint(ch)) != 0
}

// fiveStep reports the frame sequencer mode bit.
func (r *registers) fiveStep() bool {
	return r[regFrameMode]&0x80 != 0
}
