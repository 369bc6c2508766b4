package fm

import "testing"

const ntscClock = 7670454

// keyPatch programs channel c with algorithm 7, instant attack and no
// decay, then keys all four operators on.
func keyPatch(s *Synth, c int) {
	port := uint8(c / 3)
	slot := uint8(c % 3)
	s.Write(port, 0xB0+slot, 0x07)
	for _, base := range []uint8{0x30, 0x34, 0x38, 0x3C} {
		s.Write(port, base+slot, 0x01)      // MUL 1
		s.Write(port, base+0x10+slot, 0x00) // TL 0
		s.Write(port, base+0x20+slot, 0x1F) // AR 31
		s.Write(port, base+0x50+slot, 0x0F) // RR 15
	}
	s.Write(port, 0xA4+slot, 0x22)
	s.Write(port, 0xA0+slot, 0x69)
	key := uint8(c % 3)
	if c >= 3 {
		key |= 0x04
	}
	s.Write(0, 0x28, 0xF0|key)
}

func peak(buf []int16) int {
	var p int
	for _, v := range buf {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > p {
			p = a
		}
	}
	return p
}

func TestInitialState(t *testing.T) {
	s := New(ntscClock, 48000)
	for c := range s.ch {
		if !s.ch[c].panL || !s.ch[c].panR {
			t.Errorf("ch%d: expected L+R panning enabled", c)
		}
		for o := range s.ch[c].op {
			if s.ch[c].op[o].level != 0x3FF {
				t.Errorf("ch%d op%d: level got 0x%03X, want 0x3FF", c, o, s.ch[c].op[o].level)
			}
		}
	}

	buf := make([]int16, 256)
	s.Render(buf)
	if p := peak(buf); p != 0 {
		t.Errorf("idle chip: peak got %d, want 0", p)
	}
}

func TestOperatorSlotMapping(t *testing.T) {
	s := New(ntscClock, 48000)

	// $34 is slot S3, which is operator index 2
	s.Write(0, 0x34, 0x35)
	if op := s.ch[0].op[2]; op.dt != 3 || op.mul != 5 {
		t.Errorf("ch0 op2: got dt=%d mul=%d, want dt=3 mul=5", op.dt, op.mul)
	}

	// port 1 addresses channels 4-6
	s.Write(1, 0x41, 0x7F)
	if tl := s.ch[4].op[0].tl; tl != 0x7F {
		t.Errorf("ch4 op0 tl: got 0x%02X, want 0x7F", tl)
	}

	// slot 3 is unused
	s.Write(0, 0x33, 0xFF)
	for c := range s.ch {
		if s.ch[c].op[0].mul == 0x0F {
			t.Errorf("ch%d: slot 3 write leaked", c)
		}
	}
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		fNum  uint16
		block uint8
		want  uint8
	}{
		{0x269, 4, 16},
		{0x7FF, 7, 31},
		{0x400, 0, 2},
		{0x380, 1, 5},
		{0x000, 0, 0},
	}
	for _, tt := range tests {
		if got := keyCode(tt.fNum, tt.block); got != tt.want {
			t.Errorf("keyCode(0x%03X, %d): got %d, want %d", tt.fNum, tt.block, got, tt.want)
		}
	}
}

func TestKeyOnProducesTone(t *testing.T) {
	s := New(ntscClock, 48000)
	keyPatch(s, 0)

	buf := make([]int16, 4800)
	s.Render(buf)
	if p := peak(buf); p < 1000 {
		t.Errorf("keyed channel: peak got %d, want >= 1000", p)
	}

	var pos, neg int
	for _, v := range buf {
		if v > 0 {
			pos++
		} else if v < 0 {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		t.Errorf("expected a bipolar waveform, got %d positive %d negative", pos, neg)
	}
}

func TestKeyOnPortOneChannel(t *testing.T) {
	s := New(ntscClock, 48000)
	keyPatch(s, 4)

	if !s.ch[4].op[0].keyOn {
		t.Fatal("ch4 op0 not keyed on")
	}
	buf := make([]int16, 2400)
	s.Render(buf)
	if p := peak(buf); p < 1000 {
		t.Errorf("ch4: peak got %d, want >= 1000", p)
	}
}

func TestSilence(t *testing.T) {
	s := New(ntscClock, 48000)
	keyPatch(s, 0)
	s.Write(0, 0x2B, 0x80)
	s.Write(0, DACRegister, 0xFF)

	buf := make([]int16, 1024)
	s.Render(buf)

	s.Silence()
	for i := range buf {
		buf[i] = 0
	}
	s.Render(buf)
	if p := peak(buf); p != 0 {
		t.Errorf("after Silence: peak got %d, want 0", p)
	}
}

func TestDACOutput(t *testing.T) {
	s := New(ntscClock, 48000)
	s.Write(0, 0x2B, 0x80)
	s.Write(0, DACRegister, 0xFF)

	buf := make([]int16, 64)
	s.Render(buf)

	// (0xFF - 0x80) << 6 on both sides, summed and divided by 4
	want := int16(((0xFF - 0x80) << 6 * 2) >> 2)
	for i, v := range buf {
		if v != want {
			t.Fatalf("sample %d: got %d, want %d", i, v, want)
		}
	}

	s.Write(0, 0x2B, 0x00)
	for i := range buf {
		buf[i] = 0
	}
	s.Render(buf)
	if p := peak(buf); p != 0 {
		t.Errorf("DAC disabled: peak got %d, want 0", p)
	}
}

func TestRenderAdds(t *testing.T) {
	s := New(ntscClock, 48000)
	s.Write(0, 0x2B, 0x80)
	s.Write(0, DACRegister, 0x90)

	buf := make([]int16, 16)
	for i := range buf {
		buf[i] = 100
	}
	s.Render(buf)

	want := int16(100 + ((0x90-0x80)<<6*2)>>2)
	if buf[8] != want {
		t.Errorf("got %d, want %d", buf[8], want)
	}
}

func TestTimerAStatus(t *testing.T) {
	s := New(ntscClock, 48000)
	s.Write(0, 0x24, 0xFF)
	s.Write(0, 0x25, 0x03)
	s.Write(0, 0x27, 0x05)

	buf := make([]int16, 8)
	s.Render(buf)
	if s.Status()&0x01 == 0 {
		t.Fatalf("timer A overflow flag not set, status 0x%02X", s.Status())
	}

	s.Write(0, 0x27, 0x15)
	if s.Status()&0x01 != 0 {
		t.Errorf("timer A flag not cleared by reset bit, status 0x%02X", s.Status())
	}
}

func TestTimerDisabledNoFlag(t *testing.T) {
	s := New(ntscClock, 48000)
	s.Write(0, 0x24, 0xFF)
	s.Write(0, 0x25, 0x03)
	s.Write(0, 0x27, 0x01) // load without enable

	buf := make([]int16, 64)
	s.Render(buf)
	if st := s.Status(); st != 0 {
		t.Errorf("status got 0x%02X, want 0", st)
	}
}

func TestAlgorithmMutedModulators(t *testing.T) {
	// With OP1 and OP3 muted, algorithm 4 reduces to the OP2 + OP4 carrier
	// sum that algorithm 7 also produces.
	render := func(alg uint8) []int16 {
		s := New(ntscClock, 48000)
		keyPatch(s, 0)
		s.Write(0, 0xB0, alg)
		s.Write(0, 0x40, 0x7F) // S1 -> OP1
		s.Write(0, 0x44, 0x7F) // S3 -> OP3
		buf := make([]int16, 2400)
		s.Render(buf)
		return buf
	}

	a4 := render(4)
	a7 := render(7)
	if peak(a4) == 0 {
		t.Fatal("algorithm 4 produced no output")
	}
	for i := range a4 {
		if a4[i] != a7[i] {
			t.Fatalf("sample %d: algorithm 4 got %d, algorithm 7 got %d", i, a4[i], a7[i])
		}
	}
}

func TestAlgorithmSerialModulates(t *testing.T) {
	// Algorithm 0 runs OP1 through OP4 in series. Muting the modulators
	// leaves a pure sine whose shape differs from the modulated one.
	render := func(muteMods bool) []int16 {
		s := New(ntscClock, 48000)
		keyPatch(s, 0)
		s.Write(0, 0xB0, 0x00)
		if muteMods {
			s.Write(0, 0x40, 0x7F)
			s.Write(0, 0x44, 0x7F)
			s.Write(0, 0x48, 0x7F)
		}
		buf := make([]int16, 2400)
		s.Render(buf)
		return buf
	}

	pure := render(true)
	mod := render(false)
	if peak(pure) == 0 || peak(mod) == 0 {
		t.Fatal("expected output from both renders")
	}
	same := true
	for i := range pure {
		if pure[i] != mod[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("modulated and unmodulated outputs are identical")
	}
}

func TestPhaseIncrementMul(t *testing.T) {
	half := phaseIncrement(0x269<<1, 4, 16, 0, 0)
	one := phaseIncrement(0x269<<1, 4, 16, 0, 1)
	two := phaseIncrement(0x269<<1, 4, 16, 0, 2)
	if one != 2*half && one != 2*half+1 {
		t.Errorf("MUL 0 should be half of MUL 1: got %d and %d", half, one)
	}
	if two != 2*one {
		t.Errorf("MUL 2: got %d, want %d", two, 2*one)
	}
}
