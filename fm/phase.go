package fm

// detune holds phase increment offsets indexed by key code and DT&3.
var detune = [32][4]uint32{
	{0, 0, 1, 2}, {0, 0, 1, 2}, {0, 0, 1, 2}, {0, 0, 1, 2},
	{0, 1, 2, 2}, {0, 1, 2, 3}, {0, 1, 2, 3}, {0, 1, 2, 3},
	{0, 1, 2, 4}, {0, 1, 3, 4}, {0, 1, 3, 4}, {0, 1, 3, 5},
	{0, 2, 4, 5}, {0, 2, 4, 6}, {0, 2, 4, 6}, {0, 2, 5, 7},
	{0, 2, 5, 8}, {0, 3, 6, 8}, {0, 3, 6, 9}, {0, 3, 7, 10},
	{0, 4, 8, 11}, {0, 4, 8, 12}, {0, 4, 9, 13}, {0, 5, 10, 14},
	{0, 5, 11, 16}, {0, 6, 12, 17}, {0, 6, 13, 19}, {0, 7, 14, 20},
	{0, 8, 16, 22}, {0, 8, 16, 22}, {0, 8, 16, 22}, {0, 8, 16, 22},
}

// phaseIncrement computes the 20-bit increment from a 12-bit F-number
// (the 11-bit register value shifted left once, plus any vibrato offset).
func phaseIncrement(fNum12 uint32, block, kc, dt, mul uint8) uint32 {
	base := (fNum12 << block) >> 2

	d := detune[kc&0x1F][dt&0x03]
	if dt&0x04 != 0 {
		base -= d // underflow wraps, as on hardware
	} else {
		base += d
	}
	base &= 0x1FFFF

	if mul == 0 {
		return (base >> 1) & 0xFFFFF
	}
	return (base * uint32(mul)) & 0xFFFFF
}

// ch3Slot maps an operator to its channel 3 special-mode frequency slot.
// OP4 keeps the channel frequency and returns -1.
func ch3Slot(o int) int {
	switch o {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 0
	}
	return -1
}

// ch3Operator is the inverse of ch3Slot.
func ch3Operator(slot int) int {
	switch slot {
	case 0:
		return 2
	case 1:
		return 0
	case 2:
		return 1
	}
	return -1
}
