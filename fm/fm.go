// Package fm emulates the YM2612 (OPN2) six-channel, four-operator FM
// synthesizer, including the channel 6 DAC used for sampled drums.
package fm

import "github.com/user-none/emvgm/sound"

// Envelope phases.
const (
	envAttack = iota
	envDecay
	envSustain
	envRelease
)

// Channel 3 modes from register $27 bits 7-6.
const (
	ch3Normal  = 0
	ch3Special = 1 // per-operator frequencies
	ch3CSM     = 2 // per-operator frequencies, Timer A keys the channel on
)

// DACRegister is the register receiving 8-bit unsigned PCM samples.
const DACRegister = 0x2A

// cyclesPerSample is the master clock divider for one native sample.
const cyclesPerSample = 144

type operator struct {
	dt  uint8 // detune, bit 2 is the sign
	mul uint8 // 0 = x0.5
	tl  uint8 // total level, 0 = loudest
	rs  uint8 // rate scaling
	ar  uint8
	d1r uint8
	d2r uint8
	d1l uint8
	rr  uint8
	am  bool

	ssg         uint8
	ssgInverted bool

	phase    uint32 // 20-bit accumulator
	phaseInc uint32

	env     uint8
	level   uint16 // 10-bit attenuation, 0x3FF = silent
	keyOn   bool
	keyCode uint8

	history [2]int16 // last two outputs, for feedback
}

type channel struct {
	op [4]operator

	fNum  uint16
	block uint8

	algorithm uint8
	feedback  uint8
	panL      bool
	panR      bool
	ams       uint8
	fms       uint8
}

// Synth is a YM2612 producing mono output at a host sample rate.
type Synth struct {
	sampleRate int
	native     int // clock / 144

	ch [6]channel

	dacEnable bool
	dacSample uint8

	lfoEnable bool
	lfoFreq   uint8
	lfoCnt    uint16
	lfoStep   uint8
	lfoAM     uint8

	timerA     timer
	timerB     timer
	timerBDiv  uint8
	loadA      bool
	loadB      bool
	enableA    bool
	enableB    bool
	overflowA  bool
	overflowB  bool
	csmKeyedOn bool

	ch3Mode  uint8
	ch3Freq  [4]uint16
	ch3Block [4]uint8

	egCounter uint16 // 12-bit, wraps to 1
	egDiv     uint8

	resample int   // Bresenham accumulator between native and output rate
	last     int16 // most recent native sample
}

// New creates a YM2612 clocked at clock Hz producing sampleRate output.
func New(clock, sampleRate int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		native:     clock / cyclesPerSample,
		dacSample:  0x80,
	}
	for c := range s.ch {
		s.ch[c].panL = true
		s.ch[c].panR = true
		for o := range s.ch[c].op {
			s.ch[c].op[o].env = envRelease
			s.ch[c].op[o].level = 0x3FF
		}
	}
	return s
}

// Write stores data in register reg of the given port. Port 0 addresses
// channels 1-3 and the global registers, port 1 channels 4-6.
func (s *Synth) Write(port, reg, data uint8) {
	part := int(port & 1)
	switch {
	case reg < 0x20:
	case reg < 0x30:
		if part == 0 {
			s.writeGlobal(reg, data)
		}
	case reg < 0xA0:
		s.writeOperator(part, reg, data)
	default:
		s.writeChannel(part, reg, data)
	}
}

func (s *Synth) writeGlobal(reg, data uint8) {
	switch reg {
	case 0x22:
		s.lfoEnable = data&0x08 != 0
		s.lfoFreq = data & 0x07
		if !s.lfoEnable {
			s.lfoStep = 0
			s.lfoCnt = 0
		}
	case 0x24:
		s.timerA.period = s.timerA.period&0x003 | uint16(data)<<2
	case 0x25:
		s.timerA.period = s.timerA.period&0x3FC | uint16(data&0x03)
	case 0x26:
		s.timerB.period = uint16(data)
	case 0x27:
		s.ch3Mode = data >> 6
		s.loadA = data&0x01 != 0
		s.loadB = data&0x02 != 0
		s.enableA = data&0x04 != 0
		s.enableB = data&0x08 != 0
		if data&0x10 != 0 {
			s.overflowA = false
		}
		if data&0x20 != 0 {
			s.overflowB = false
		}
	case 0x28:
		s.keyOnOff(data)
	case DACRegister:
		s.dacSample = data
	case 0x2B:
		s.dacEnable = data&0x80 != 0
	}
}

// slotOrder maps the register slot (S1, S3, S2, S4) to operator index.
var slotOrder = [4]int{0, 2, 1, 3}

func (s *Synth) writeOperator(part int, reg, data uint8) {
	slot := int(reg & 0x03)
	if slot == 3 {
		return
	}
	c := slot + part*3
	o := slotOrder[(reg>>2)&0x03]
	op := &s.ch[c].op[o]

	switch reg & 0xF0 {
	case 0x30:
		op.dt = (data >> 4) & 0x07
		op.mul = data & 0x0F
		s.updateIncrement(c, o)
	case 0x40:
		op.tl = data & 0x7F
	case 0x50:
		op.rs = data >> 6
		op.ar = data & 0x1F
	case 0x60:
		op.am = data&0x80 != 0
		op.d1r = data & 0x1F
	case 0x70:
		op.d2r = data & 0x1F
	case 0x80:
		op.d1l = data >> 4
		op.rr = data & 0x0F
	case 0x90:
		v := data & 0x0F
		if v&ssgOn == 0 {
			v = 0
		}
		if (v^op.ssg)&ssgAttack != 0 {
			op.ssgInverted = !op.ssgInverted
		}
		op.ssg = v
	}
}

func (s *Synth) writeChannel(part int, reg, data uint8) {
	slot := int(reg & 0x03)
	if slot == 3 {
		return
	}
	c := slot + part*3
	ch := &s.ch[c]

	switch {
	case reg >= 0xA0 && reg <= 0xA2:
		ch.fNum = ch.fNum&0x700 | uint16(data)
		s.updateFrequency(c)
	case reg >= 0xA4 && reg <= 0xA6:
		// latched until the low byte is written
		ch.block = (data >> 3) & 0x07
		ch.fNum = ch.fNum&0x0FF | uint16(data&0x07)<<8
	case reg >= 0xA8 && reg <= 0xAA:
		if part != 0 {
			return
		}
		i := int(reg - 0xA8)
		s.ch3Freq[i] = s.ch3Freq[i]&0x700 | uint16(data)
		if s.ch3Mode != ch3Normal {
			if o := ch3Operator(i); o >= 0 {
				s.updateIncrement(2, o)
			}
		}
	case reg >= 0xAC && reg <= 0xAE:
		if part != 0 {
			return
		}
		i := int(reg - 0xAC)
		s.ch3Block[i] = (data >> 3) & 0x07
		s.ch3Freq[i] = s.ch3Freq[i]&0x0FF | uint16(data&0x07)<<8
	case reg >= 0xB0 && reg <= 0xB2:
		ch.algorithm = data & 0x07
		ch.feedback = (data >> 3) & 0x07
	case reg >= 0xB4 && reg <= 0xB6:
		ch.panL = data&0x80 != 0
		ch.panR = data&0x40 != 0
		ch.ams = (data >> 4) & 0x03
		ch.fms = data & 0x07
	}
}

// keyOnOff handles register $28: bits 0-2 select the channel (4-6 on
// port 1 start at value 4), bits 4-7 the operators.
func (s *Synth) keyOnOff(data uint8) {
	c := int(data & 0x03)
	if c == 3 {
		return
	}
	if data&0x04 != 0 {
		c += 3
	}
	ch := &s.ch[c]
	for i := range ch.op {
		on := data&(0x10<<uint(i)) != 0
		op := &ch.op[i]
		switch {
		case on && !op.keyOn:
			op.keyOn = true
			s.attack(op)
		case !on && op.keyOn:
			op.keyOn = false
			release(op)
		}
	}
}

// attack restarts an operator's phase and envelope.
func (s *Synth) attack(op *operator) {
	op.phase = 0
	op.env = envAttack
	op.ssgInverted = op.ssg&ssgAttack != 0
	if s.rate(op.ar, op) >= 62 {
		op.level = 0
		op.env = envDecay
	}
}

func release(op *operator) {
	if op.ssg&ssgOn != 0 && op.ssgInverted {
		op.level = (ssgCenter - op.level) & 0x3FF
		op.ssgInverted = false
	}
	op.env = envRelease
}

// rate returns 2*r + key scaling, capped at 63. r == 0 stays frozen.
func (s *Synth) rate(r uint8, op *operator) uint8 {
	if r == 0 {
		return 0
	}
	v := int(2*r) + int(op.keyCode>>(3-op.rs))
	if v > 63 {
		v = 63
	}
	return uint8(v)
}

func (s *Synth) updateIncrement(c, o int) {
	ch := &s.ch[c]
	op := &ch.op[o]
	fNum, block := ch.fNum, ch.block
	if s.ch3Mode != ch3Normal && c == 2 {
		if i := ch3Slot(o); i >= 0 {
			fNum = s.ch3Freq[i]
			block = s.ch3Block[i]
			op.keyCode = keyCode(fNum, block)
		}
	}
	op.phaseInc = phaseIncrement(uint32(fNum)<<1, block, op.keyCode, op.dt, op.mul)
}

func (s *Synth) updateFrequency(c int) {
	ch := &s.ch[c]
	kc := keyCode(ch.fNum, ch.block)
	for o := range ch.op {
		ch.op[o].keyCode = kc
		s.updateIncrement(c, o)
	}
}

// keyCode is block<<2 | F11 | the OPN2 rounding bit from F10-F8.
func keyCode(fNum uint16, block uint8) uint8 {
	f11 := (fNum >> 10) & 1
	f10 := (fNum >> 9) & 1
	f9 := (fNum >> 8) & 1
	f8 := (fNum >> 7) & 1
	low := f11&(f10|f9|f8) | (1^f11)&f10&f9&f8
	return block<<2 | uint8(f11<<1) | uint8(low)
}

// step advances the chip by one native sample and returns the mono mix.
func (s *Synth) step() int16 {
	s.stepTimers()
	s.stepLFO()

	s.egDiv++
	if s.egDiv >= 3 {
		s.egDiv = 0
		s.egCounter++
		if s.egCounter >= 4096 {
			s.egCounter = 1
		}
		s.stepEnvelopes()
	}

	var left, right int32
	for c := range s.ch {
		v := int32(s.channelOut(c))
		if s.ch[c].panL {
			left += v
		}
		if s.ch[c].panR {
			right += v
		}
	}
	return sound.Saturate((left + right) >> 2)
}

// Render adds len(out) samples into out. Native samples are picked with
// a Bresenham walk from clock/144 to the output rate.
func (s *Synth) Render(out []int16) {
	if s.native <= 0 {
		return
	}
	for i := range out {
		s.resample += s.native
		for s.resample >= s.sampleRate {
			s.resample -= s.sampleRate
			s.last = s.step()
		}
		out[i] = sound.Saturate(int32(out[i]) + int32(s.last))
	}
}

// Silence keys off every operator, drops them to full attenuation and
// disables the DAC.
func (s *Synth) Silence() {
	for c := range s.ch {
		for o := range s.ch[c].op {
			op := &s.ch[c].op[o]
			op.keyOn = false
			op.env = envRelease
			op.level = 0x3FF
			op.ssgInverted = false
		}
	}
	s.dacEnable = false
	s.last = 0
}
