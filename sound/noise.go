package sound

// Noise is a linear-feedback shift register clocked once every Period
// samples. The new top bit is the parity of the register masked by Taps;
// the output is +volume or -volume depending on bit 0.
type Noise struct {
	reg     uint32
	taps    uint32
	top     uint
	period  float64
	counter float64
	volume  float32
}

// NewNoise returns a register of width bits seeded with seed.
func NewNoise(width uint, taps, seed uint32) *Noise {
	return &Noise{reg: seed, taps: taps, top: width - 1}
}

// Configure replaces the feedback taps and register width, and reloads
// the register with seed.
func (n *Noise) Configure(width uint, taps, seed uint32) {
	n.top = width - 1
	n.taps = taps
	n.reg = seed
}

// SetTaps changes the feedback mask without touching the register.
func (n *Noise) SetTaps(taps uint32) {
	n.taps = taps
}

// Reset reloads the register and restarts the clock divider.
func (n *Noise) Reset(seed uint32) {
	n.reg = seed
	n.counter = 0
}

// SetPeriod sets the number of samples between register clocks.
// Non-positive periods stop the register.
func (n *Noise) SetPeriod(samples float64) {
	n.period = samples
}

// SetVolume sets the output amplitude.
func (n *Noise) SetVolume(v float32) {
	n.volume = v
}

// Volume returns the programmed amplitude.
func (n *Noise) Volume() float32 {
	return n.volume
}

// Register returns the current shift register contents.
func (n *Noise) Register() uint32 {
	return n.reg
}

// Clock shifts the register once.
func (n *Noise) Clock() {
	n.reg = n.reg>>1 | parity(n.reg&n.taps)<<n.top
}

// Render adds len(out) samples scaled by gain into out.
func (n *Noise) Render(out []float32, gain float32) {
	v := n.volume * gain
	for i := range out {
		if n.period > 0 {
			n.counter++
			for n.counter >= n.period {
				n.counter -= n.period
				n.Clock()
			}
		}
		if v == 0 {
			continue
		}
		if n.reg&1 != 0 {
			out[i] += v
		} else {
			out[i] -= v
		}
	}
}

func parity(x uint32) uint32 {
	x ^= x >> 16
	x ^= x >> 8
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x & 1
}
