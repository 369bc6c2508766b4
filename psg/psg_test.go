package psg

import (
	"math"
	"testing"
)

const (
	testClock = 3579545
	testRate  = 44100
)

func newTestPSG() *PSG {
	return New(testClock, testRate, 0, 0)
}

func peak(buf []int16) int {
	p := 0
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

func TestAttenuationIsMonotonic(t *testing.T) {
	prev := math.MaxInt32
	for atten := uint8(0); atten < 16; atten++ {
		p := newTestPSG()
		p.Write(0, 0, 0x80|0x08) // tone 0 low nibble
		p.Write(0, 0, 0x04)      // tone 0 high bits
		p.Write(0, 0, 0x90|atten)

		buf := make([]int16, 2000)
		p.Render(buf)
		got := peak(buf)
		if got > prev {
			t.Errorf("atten %d: peak %d exceeds previous %d", atten, got, prev)
		}
		prev = got
		if atten == 15 && got != 0 {
			t.Errorf("atten 15: peak got %d, want 0", got)
		}
	}
}

func TestToneEndToEnd(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0x85) // latch tone 0, low nibble 5
	p.Write(0, 0, 0x02) // high bits 2
	p.Write(0, 0, 0x90) // tone 0 attenuation 0

	if got := p.Tone(0); got != 0x25 {
		t.Fatalf("tone period: got 0x%03X, want 0x025", got)
	}

	buf := make([]int16, 1000)
	p.Render(buf)
	steady := buf[50:]

	freq := float64(testClock) / (32 * 0x25)
	crossings := 0
	for i := 1; i < len(steady); i++ {
		if (steady[i-1] < 0) != (steady[i] < 0) {
			crossings++
		}
	}
	want := 2 * freq * float64(len(steady)) / testRate
	if math.Abs(float64(crossings)-want) > 4 {
		t.Errorf("crossings: got %d, want ~%.1f", crossings, want)
	}

	var sum float64
	for _, v := range steady {
		sum += float64(v) * float64(v)
	}
	got := math.Sqrt(sum / float64(len(steady)))
	expect := float64(Amplitude(0)) * toneGain * 0x7000
	if math.Abs(got-expect)/expect > 0.15 {
		t.Errorf("rms: got %.0f, want ~%.0f", got, expect)
	}
}

func TestLatchKeepsHighBits(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0xA3) // latch tone 1, low 3
	p.Write(0, 0, 0x3F) // high bits 0x3F
	p.Write(0, 0, 0xA7) // new low nibble
	if got := p.Tone(1); got != 0x3F7 {
		t.Errorf("tone 1: got 0x%03X, want 0x3F7", got)
	}
}

func TestContinuationFollowsVolumeLatch(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0xDF) // tone 2 attenuation 15
	if got := p.ToneVolume(2); got != 0 {
		t.Errorf("tone 2 volume: got %f, want 0", got)
	}
	p.Write(0, 0, 0x00) // continuation: attenuation 0
	if got := p.ToneVolume(2); got != Amplitude(0) {
		t.Errorf("tone 2 volume after continuation: got %f, want %f", got, Amplitude(0))
	}
	if got := p.Tone(2); got != 0 {
		t.Errorf("tone 2 period: got %d, want 0 (continuation must not touch tone)", got)
	}
}

func TestNoiseControlResetsShiftRegister(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0xE4) // white noise, divider 512
	p.Write(0, 0, 0xF0) // noise attenuation 0
	p.Render(make([]int16, 500))
	if p.NoiseShift() == 0x8000 {
		t.Fatal("noise register did not advance")
	}
	p.Write(0, 0, 0xE5)
	if got := p.NoiseShift(); got != 0x8000 {
		t.Errorf("after reprogram: got 0x%04X, want 0x8000", got)
	}
}

func TestNoiseWidthFromHeader(t *testing.T) {
	p := New(testClock, testRate, 0x0003, 15)
	p.Write(0, 0, 0xE4)
	if got := p.NoiseShift(); got != 0x4000 {
		t.Errorf("15-bit seed: got 0x%04X, want 0x4000", got)
	}
}

func TestNoiseProducesOutput(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0xE4)
	p.Write(0, 0, 0xF0)
	buf := make([]int16, 2000)
	p.Render(buf)
	if peak(buf) == 0 {
		t.Error("expected audible noise")
	}
}

func TestSilenceLeavesNoiseVolume(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0x90)
	p.Write(0, 0, 0xB0)
	p.Write(0, 0, 0xD0)
	p.Write(0, 0, 0xF2)

	p.Silence()
	for ch := 0; ch < 3; ch++ {
		if got := p.ToneVolume(ch); got != 0 {
			t.Errorf("tone %d volume: got %f, want 0", ch, got)
		}
	}
	if got := p.NoiseVolume(); got != Amplitude(2) {
		t.Errorf("noise volume: got %f, want %f", got, Amplitude(2))
	}
}

func TestZeroPeriodIsSilent(t *testing.T) {
	p := newTestPSG()
	p.Write(0, 0, 0x80) // tone 0 period 0
	p.Write(0, 0, 0x00)
	p.Write(0, 0, 0x90)
	buf := make([]int16, 1000)
	p.Render(buf)
	if got := peak(buf); got != 0 {
		t.Errorf("peak: got %d, want 0", got)
	}
}

func TestDiscreteRendersTone(t *testing.T) {
	d := NewDiscrete(testClock, testRate, 0, 0)
	d.Write(0, 0, 0x85)
	d.Write(0, 0, 0x02)
	d.Write(0, 0, 0x90)
	if got := d.Volume(0); got != 0 {
		t.Errorf("volume: got %d, want 0", got)
	}

	buf := make([]int16, 3000)
	d.Render(buf)
	if peak(buf) == 0 {
		t.Error("expected audible output")
	}

	d.Silence()
	for ch := 0; ch < 3; ch++ {
		if got := d.Volume(ch); got != 0x0F {
			t.Errorf("channel %d after silence: got %d, want 15", ch, got)
		}
	}
}

func TestVariantConfig(t *testing.T) {
	if got := VariantConfig(0x0003, 15); got.LFSRBits != 15 || got.WhiteNoiseTaps != 0x0003 {
		t.Errorf("TI: got %+v", got)
	}
	if got := VariantConfig(0, 0); got.LFSRBits != 16 || got.WhiteNoiseTaps != 0x0009 {
		t.Errorf("default: got %+v", got)
	}
	if got := VariantConfig(0x0006, 16); got.WhiteNoiseTaps != 0x0006 {
		t.Errorf("custom taps: got %+v", got)
	}
}
