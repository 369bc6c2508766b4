// Package sound provides the band-limited oscillators and the oversampling
// mixer shared by the register-driven chip models.
package sound

import "math"

const (
	ringSize   = 32
	kernelTaps = 16
	phases     = 32

	// blitLeak is the integrator feedback. Values below 1 bleed off the DC
	// that accumulates from float rounding in the impulse sums.
	blitLeak = 0.9995
)

// kernels holds one windowed-sinc impulse per fractional edge position.
// Each row sums to 1 so a full edge integrates to exactly its delta.
var kernels [phases][kernelTaps]float32

func init() {
	const cutoff = 0.45
	for p := 0; p < phases; p++ {
		frac := float64(p) / phases
		var sum float64
		var row [kernelTaps]float64
		for k := 0; k < kernelTaps; k++ {
			x := float64(k) - kernelTaps/2 - frac
			s := 2 * cutoff
			if x != 0 {
				s = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
			}
			// Blackman window over the kernel span
			w := 0.42 + 0.5*math.Cos(math.Pi*x/(kernelTaps/2)) + 0.08*math.Cos(2*math.Pi*x/(kernelTaps/2))
			if math.Abs(x) >= kernelTaps/2 {
				w = 0
			}
			row[k] = s * w
			sum += row[k]
		}
		for k := range row {
			kernels[p][k] = float32(row[k] / sum)
		}
	}
}

// Blit is a band-limited pulse oscillator. Each transition of the ideal
// pulse is placed into a short ring of future samples as a windowed-sinc
// impulse; the running integral of the ring is the output.
type Blit struct {
	sampleRate float32
	period     float32
	duty       float32
	volume     float32
	hcycle     [2]float32

	next  float32 // samples until the next edge
	edge  int     // 0 = high half-cycle, 1 = low half-cycle
	amp   float32 // level most recently emitted as an edge
	accum float32 // integrator
	ring  [ringSize]float32
	index int
}

// NewBlit returns a silent 50% duty oscillator running at sampleRate.
func NewBlit(sampleRate float64) *Blit {
	return &Blit{sampleRate: float32(sampleRate), duty: 0.5}
}

// SetFreq programs the oscillator frequency in Hz. Zero, negative, or
// frequencies at or above half the sample rate silence the voice.
func (b *Blit) SetFreq(hz float64) {
	if hz <= 0 {
		b.period = 0
	} else {
		b.period = b.sampleRate / float32(hz)
	}
	b.split()
}

// SetDuty sets the fraction of the period spent in the high half-cycle.
func (b *Blit) SetDuty(duty float64) {
	b.duty = float32(duty)
	b.split()
}

// SetVolume sets the peak amplitude. The change takes effect at the start
// of the next rendered sample.
func (b *Blit) SetVolume(v float32) {
	b.volume = v
}

// Volume returns the programmed amplitude.
func (b *Blit) Volume() float32 {
	return b.volume
}

// Period returns the current period in samples, or 0 when silent.
func (b *Blit) Period() float32 {
	return b.period
}

func (b *Blit) split() {
	b.hcycle[0] = b.period * b.duty
	b.hcycle[1] = b.period - b.hcycle[0]
	if b.next > b.hcycle[b.edge] {
		b.next = b.hcycle[b.edge]
	}
}

func (b *Blit) silent() bool {
	return b.period < 2 || b.hcycle[0] <= 0 || b.hcycle[1] <= 0
}

func (b *Blit) level() float32 {
	if b.silent() {
		return 0
	}
	if b.edge == 0 {
		return b.volume
	}
	return -b.volume
}

// impulse adds a band-limited edge of height delta at fractional position
// frac within the current sample.
func (b *Blit) impulse(frac, delta float32) {
	if delta == 0 {
		return
	}
	p := int(frac * phases)
	if p >= phases {
		p = phases - 1
	}
	k := &kernels[p]
	for i := 0; i < kernelTaps; i++ {
		b.ring[(b.index+i)&(ringSize-1)] += delta * k[i]
	}
}

// Render adds len(out) samples scaled by gain into out.
func (b *Blit) Render(out []float32, gain float32) {
	for i := range out {
		if lv := b.level(); lv != b.amp {
			b.impulse(0, lv-b.amp)
			b.amp = lv
		}
		if !b.silent() {
			for b.next < 1 {
				frac := b.next
				b.edge ^= 1
				b.next += b.hcycle[b.edge]
				lv := b.level()
				b.impulse(frac, lv-b.amp)
				b.amp = lv
			}
			b.next--
		}

		b.accum = b.accum*blitLeak + b.ring[b.index]
		b.ring[b.index] = 0
		b.index = (b.index + 1) & (ringSize - 1)
		out[i] += b.accum * gain
	}
}
