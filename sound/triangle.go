package sound

// triangleSteps is the number of accumulator units in one cycle.
const triangleSteps = 32

// Triangle is a phase-accumulator triangle oscillator. The accumulator
// advances by triangleSteps*freq/sampleRate per sample and the output is
// the accumulator folded into a ramp between -volume and +volume.
type Triangle struct {
	sampleRate float64
	accum      float32
	delta      float32
	volume     float32
}

// NewTriangle returns a silent triangle oscillator running at sampleRate.
func NewTriangle(sampleRate float64) *Triangle {
	return &Triangle{sampleRate: sampleRate}
}

// SetFreq sets the frequency in Hz. Non-positive values hold the phase.
func (t *Triangle) SetFreq(hz float64) {
	if hz <= 0 {
		t.delta = 0
		return
	}
	t.delta = float32(triangleSteps / t.sampleRate * hz)
}

// SetVolume sets the peak amplitude.
func (t *Triangle) SetVolume(v float32) {
	t.volume = v
}

// Render adds len(out) samples scaled by gain into out.
func (t *Triangle) Render(out []float32, gain float32) {
	if t.volume == 0 {
		return
	}
	v := t.volume * gain
	for i := range out {
		t.accum += t.delta
		for t.accum >= triangleSteps {
			t.accum -= triangleSteps
		}
		// 0..16 rises from -1 to +1, 16..32 falls back
		x := t.accum
		if x >= triangleSteps/2 {
			x = triangleSteps - x
		}
		out[i] += (x/(triangleSteps/4) - 1) * v
	}
}
