package sound

const (
	// scratchSize is the oversampled working buffer, in floats.
	scratchSize = 1024

	dcCoeff    = 0.0005
	outputGain = 0x7000
)

// Oscillator is anything that can add oversampled audio into a buffer.
type Oscillator interface {
	Render(out []float32, gain float32)
}

// Voice pairs an oscillator with its mix gain.
type Voice struct {
	Osc  Oscillator
	Gain float32
}

// Mixer renders voices at twice the output rate, decimates to the output
// rate, removes slowly varying DC and quantizes to 16 bits with
// triangular dither.
type Mixer struct {
	dec     Decimator
	dc      float32
	dither  uint64
	scratch [scratchSize]float32
}

// NewMixer returns a mixer with its dither generator seeded to 1.
func NewMixer() *Mixer {
	return &Mixer{dither: 1}
}

// Oversample is the ratio between the voice rate and the output rate.
const Oversample = 2

// Render mixes voices into out. Samples are added to what is already in
// out and saturate at the int16 limits.
func (m *Mixer) Render(out []int16, voices ...Voice) {
	for len(out) > 0 {
		n := len(out)
		if n > scratchSize/Oversample {
			n = scratchSize / Oversample
		}
		buf := m.scratch[:n*Oversample]
		for i := range buf {
			buf[i] = 0
		}
		for _, v := range voices {
			if v.Osc != nil {
				v.Osc.Render(buf, v.Gain)
			}
		}

		for i := 0; i < n; i++ {
			a := m.dec.Step(buf[i*2], buf[i*2+1])
			m.dc += (a - m.dc) * dcCoeff
			a -= m.dc
			if a > 1 {
				a = 1
			} else if a < -1 {
				a = -1
			}
			s := int32(a*outputGain + m.triangular())
			out[i] = Saturate(int32(out[i]) + s)
		}
		out = out[n:]
	}
}

// triangular returns a triangular-distributed value in (-1, 1).
func (m *Mixer) triangular() float32 {
	return m.uniform() + m.uniform() - 1
}

// uniform returns a value strictly inside (0, 1) from a 64-bit xorshift.
func (m *Mixer) uniform() float32 {
	x := m.dither
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	m.dither = x
	return (float32(x>>41) + 0.5) / (1 << 23)
}

// Saturate clamps v to the int16 range.
func Saturate(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
