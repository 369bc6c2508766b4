package fm

// SSG-EG control bits and the half-scale boundary.
const (
	ssgOn        = 0x08
	ssgAttack    = 0x04
	ssgAlternate = 0x02
	ssgHold      = 0x01
	ssgCenter    = 0x200
)

// egPattern holds the increment pattern for rates 4-47, selected by
// rate&3. The update interval comes from the rate group.
var egPattern = [4][8]uint8{
	{0, 1, 0, 1, 0, 1, 0, 1},
	{0, 1, 0, 1, 1, 1, 0, 1},
	{0, 1, 1, 1, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 1},
}

// egFast holds one increment pattern per rate for rates 48-63, which
// update on every counter tick.
var egFast = [16][8]uint8{
	{1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 2, 1, 1, 1, 2},
	{1, 2, 1, 2, 1, 2, 1, 2},
	{1, 2, 2, 2, 1, 2, 2, 2},
	{2, 2, 2, 2, 2, 2, 2, 2},
	{2, 2, 2, 4, 2, 2, 2, 4},
	{2, 4, 2, 4, 2, 4, 2, 4},
	{2, 4, 4, 4, 2, 4, 4, 4},
	{4, 4, 4, 4, 4, 4, 4, 4},
	{4, 4, 4, 8, 4, 4, 4, 8},
	{4, 8, 4, 8, 4, 8, 4, 8},
	{4, 8, 8, 8, 4, 8, 8, 8},
	{8, 8, 8, 8, 8, 8, 8, 8},
	{8, 8, 8, 8, 8, 8, 8, 8},
	{8, 8, 8, 8, 8, 8, 8, 8},
	{8, 8, 8, 8, 8, 8, 8, 8},
}

func (s *Synth) stepEnvelopes() {
	for c := range s.ch {
		for o := range s.ch[c].op {
			s.stepEnvelope(&s.ch[c].op[o], s.egCounter)
		}
	}
}

// egIncrement returns the attenuation step for a rate at this counter
// value, or 0 when the rate does not fire.
func egIncrement(rate uint8, counter uint16) uint8 {
	if rate >= 48 {
		return egFast[rate-48][counter&7]
	}
	shift := uint(11 - rate>>2)
	if shift > 0 && counter&(1<<shift-1) != 0 {
		return 0
	}
	return egPattern[rate&3][(counter>>shift)&7]
}

func (s *Synth) stepEnvelope(op *operator, counter uint16) {
	// sustain is checked before stepping so decay never overshoots
	if op.env == envDecay && op.level >= sustainLevel(op.d1l) {
		op.env = envSustain
	}

	var r uint8
	switch op.env {
	case envAttack:
		r = s.rate(op.ar, op)
	case envDecay:
		r = s.rate(op.d1r, op)
	case envSustain:
		r = s.rate(op.d2r, op)
	case envRelease:
		r = s.rate(2*op.rr+1, op)
	}
	if r == 0 {
		return
	}

	inc := egIncrement(r, counter)
	if inc == 0 {
		return
	}

	if op.ssg&ssgOn != 0 && op.env != envAttack {
		if op.level < ssgCenter {
			inc *= 4
		} else {
			inc = 0
		}
	}

	switch op.env {
	case envAttack:
		if r >= 62 {
			op.level = 0
		} else {
			// exponential approach toward 0
			next := int32(op.level) + (^int32(op.level)*int32(inc))>>4
			if next <= 0 {
				op.level = 0
			} else {
				op.level = uint16(next)
			}
		}
		if op.level == 0 {
			op.env = envDecay
		}
	case envDecay, envSustain:
		op.level += uint16(inc)
	case envRelease:
		op.level += uint16(inc)
		if op.ssg&ssgOn != 0 && op.level >= ssgCenter {
			op.level = 0x3FF
		}
	}
	if op.level > 0x3FF {
		op.level = 0x3FF
	}
}

// sustainLevel expands the 4-bit D1L to 10 bits. 15 maps to 0x3E0.
func sustainLevel(d1l uint8) uint16 {
	if d1l >= 15 {
		return 0x3E0
	}
	return uint16(d1l) << 5
}

// ssgLevel handles SSG-EG boundary crossings for an operator and returns
// the attenuation to use for output.
func ssgLevel(op *operator) uint16 {
	if op.env == envRelease {
		return op.level
	}
	if op.level >= ssgCenter {
		if op.ssg&ssgAlternate != 0 {
			hold := op.ssg&ssgHold != 0
			if !hold || (op.ssg&ssgAttack != 0) == op.ssgInverted {
				op.ssgInverted = !op.ssgInverted
			}
		} else if op.ssg&ssgHold == 0 {
			op.phase = 0
		}
		if op.ssg&ssgHold == 0 && (op.env == envDecay || op.env == envSustain) {
			op.env = envAttack
		}
	}
	if op.ssgInverted {
		return (ssgCenter - op.level) & 0x3FF
	}
	return op.level
}

// attenuation combines envelope and total level, capped at 0x3FF.
func attenuation(level uint16, tl uint8) uint16 {
	a := level + uint16(tl)<<3
	if a > 0x3FF {
		return 0x3FF
	}
	return a
}
