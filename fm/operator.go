package fm

import "math"

// logSin is a quarter-wave table of -log2(sin) in 4.8 fixed point.
var logSin [256]uint16

// exp2 converts the fractional part of a log attenuation to an 11-bit
// linear amplitude.
var exp2 [256]uint16

func init() {
	for i := range logSin {
		x := math.Sin(float64(2*i+1) / 512 * math.Pi / 2)
		logSin[i] = uint16(math.Round(-math.Log2(x) * 256))
	}
	for i := range exp2 {
		exp2[i] = uint16(math.Round(math.Pow(2, 1-float64(i+1)/256) * 1024))
	}
}

// sine returns the signed 14-bit operator output for a 20-bit phase and
// a 10-bit attenuation.
func sine(phase uint32, atten uint16) int16 {
	idx := (phase >> 10) & 0x3FF
	quarter := idx & 0xFF
	if idx&0x100 != 0 {
		quarter = 0xFF - quarter
	}

	total := uint32(logSin[quarter]) + uint32(atten)<<2
	lin := (uint32(exp2[total&0xFF]) << 2) >> (total >> 8)

	if idx&0x200 != 0 {
		return -int16(lin)
	}
	return int16(lin)
}

// channelOut computes one native sample for channel c.
func (s *Synth) channelOut(c int) int16 {
	ch := &s.ch[c]

	if c == 5 && s.dacEnable {
		return (int16(s.dacSample) - 128) << 6
	}

	if ch.fms != 0 && s.lfoEnable {
		for i := range ch.op {
			op := &ch.op[i]
			fNum, block := ch.fNum, ch.block
			if s.ch3Mode != ch3Normal && c == 2 {
				if slot := ch3Slot(i); slot >= 0 {
					fNum = s.ch3Freq[slot]
					block = s.ch3Block[slot]
				}
			}
			mod := uint32(int32(fNum)<<1+s.pmOffset(ch.fms, fNum)) & 0xFFF
			op.phase = (op.phase + phaseIncrement(mod, block, op.keyCode, op.dt, op.mul)) & 0xFFFFF
		}
	} else {
		for i := range ch.op {
			op := &ch.op[i]
			op.phase = (op.phase + op.phaseInc) & 0xFFFFF
		}
	}

	am := s.amAttenuation(ch.ams)
	return algorithms[ch.algorithm](ch, am)
}

// feedback returns OP1's self-modulation.
func feedback(ch *channel) int32 {
	if ch.feedback == 0 {
		return 0
	}
	op := &ch.op[0]
	return (int32(op.history[0]) + int32(op.history[1])) >> (10 - uint(ch.feedback))
}

// out evaluates operator o with phase modulation mod, in the 10-bit
// phase index domain, and records its output for feedback.
func out(ch *channel, o int, mod int32, am uint16) int16 {
	op := &ch.op[o]
	level := op.level
	if op.ssg&ssgOn != 0 {
		level = ssgLevel(op)
	}
	atten := attenuation(level, op.tl)
	if op.am {
		atten += am
		if atten > 0x3FF {
			atten = 0x3FF
		}
	}
	v := sine(op.phase+uint32(mod<<10), atten)
	op.history[1] = op.history[0]
	op.history[0] = v
	return v
}

// clampSum limits an accumulated carrier sum to the 14-bit DAC range.
func clampSum(v int32) int32 {
	if v > 0x1FE0 {
		return 0x1FE0
	}
	if v < -0x1FF0 {
		return -0x1FF0
	}
	return v
}

// q9 drops the low 5 bits, matching the 9-bit output DAC.
func q9(v int16) int32 {
	return int32(v &^ 0x1F)
}

// sum adds carriers with the DAC clamp applied after each addition.
func sum(vs ...int16) int16 {
	acc := q9(vs[0])
	for _, v := range vs[1:] {
		acc = clampSum(acc + q9(v))
	}
	return int16(acc)
}

// algorithms wires the four operators. Modulator outputs are halved
// before being used as phase offsets.
var algorithms = [8]func(ch *channel, am uint16) int16{
	// 1 -> 2 -> 3 -> 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s2 := out(ch, 1, int32(s1)>>1, am)
		s3 := out(ch, 2, int32(s2)>>1, am)
		return sum(out(ch, 3, int32(s3)>>1, am))
	},
	// (1 + 2) -> 3 -> 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s2 := out(ch, 1, 0, am)
		s3 := out(ch, 2, (int32(s1)+int32(s2))>>1, am)
		return sum(out(ch, 3, int32(s3)>>1, am))
	},
	// 1 + (2 -> 3) -> 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s2 := out(ch, 1, 0, am)
		s3 := out(ch, 2, int32(s2)>>1, am)
		return sum(out(ch, 3, (int32(s1)+int32(s3))>>1, am))
	},
	// (1 -> 2) + 3 -> 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s2 := out(ch, 1, int32(s1)>>1, am)
		s3 := out(ch, 2, 0, am)
		return sum(out(ch, 3, (int32(s2)+int32(s3))>>1, am))
	},
	// (1 -> 2) + (3 -> 4)
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s3 := out(ch, 2, 0, am)
		s2 := out(ch, 1, int32(s1)>>1, am)
		s4 := out(ch, 3, int32(s3)>>1, am)
		return sum(s2, s4)
	},
	// 1 -> (2 + 3 + 4)
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		m := int32(s1) >> 1
		s3 := out(ch, 2, m, am)
		s2 := out(ch, 1, m, am)
		s4 := out(ch, 3, m, am)
		return sum(s2, s3, s4)
	},
	// (1 -> 2) + 3 + 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s3 := out(ch, 2, 0, am)
		s2 := out(ch, 1, int32(s1)>>1, am)
		s4 := out(ch, 3, 0, am)
		return sum(s2, s3, s4)
	},
	// 1 + 2 + 3 + 4
	func(ch *channel, am uint16) int16 {
		s1 := out(ch, 0, feedback(ch), am)
		s3 := out(ch, 2, 0, am)
		s2 := out(ch, 1, 0, am)
		s4 := out(ch, 3, 0, am)
		return sum(s1, s2, s3, s4)
	},
}
