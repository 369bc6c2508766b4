package fm

// lfoPeriod is the number of native samples per LFO step for each
// frequency setting.
var lfoPeriod = [8]uint16{108, 77, 71, 67, 62, 44, 8, 5}

// amShift scales the 7-bit AM triangle by AMS. 8 disables it.
var amShift = [4]uint8{8, 3, 1, 0}

// pmDepth is the vibrato offset contributed by F-number bit 10, indexed
// by FMS and the quarter-wave position. Lower bits contribute less.
var pmDepth = [8][8]int32{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 4, 4, 4, 4},
	{0, 0, 0, 4, 4, 4, 8, 8},
	{0, 0, 4, 4, 8, 8, 12, 12},
	{0, 0, 4, 8, 8, 8, 12, 16},
	{0, 0, 8, 12, 16, 16, 20, 24},
	{0, 0, 16, 24, 32, 32, 40, 48},
	{0, 0, 32, 48, 64, 64, 80, 96},
}

func (s *Synth) stepLFO() {
	if !s.lfoEnable {
		s.lfoAM = 0
		return
	}
	s.lfoCnt++
	if s.lfoCnt >= lfoPeriod[s.lfoFreq] {
		s.lfoCnt = 0
		s.lfoStep = (s.lfoStep + 1) & 0x7F
	}
	// triangle: 126 down to 0, then back up
	if s.lfoStep < 64 {
		s.lfoAM = (63 - s.lfoStep) * 2
	} else {
		s.lfoAM = (s.lfoStep - 64) * 2
	}
}

// amAttenuation is the tremolo attenuation for a channel's AMS.
func (s *Synth) amAttenuation(ams uint8) uint16 {
	sh := amShift[ams&3]
	if sh >= 8 {
		return 0
	}
	return uint16(s.lfoAM) >> sh
}

// pmOffset returns the signed vibrato offset applied to fNum<<1.
func (s *Synth) pmOffset(fms uint8, fNum uint16) int32 {
	if fms == 0 || !s.lfoEnable {
		return 0
	}
	pos := s.lfoStep >> 2
	q := pos & 0x07
	if pos&0x08 != 0 {
		q = 7 - q
	}
	depth := pmDepth[fms][q]

	var d int32
	for bit := uint(4); bit <= 10; bit++ {
		if fNum&(1<<bit) != 0 {
			d += depth >> (10 - bit)
		}
	}
	if pos&0x10 != 0 {
		d = -d
	}
	return d
}
