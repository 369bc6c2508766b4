package sound

// Half-band coefficients, 9 taps. Odd taps other than the centre are zero.
const (
	h0 = 8192.0 / 16384.0
	h1 = 5042.0 / 16384.0
	h3 = -1277.0 / 16384.0
	h5 = 429.0 / 16384.0
	h7 = -116.0 / 16384.0
	h9 = 18.0 / 16384.0
)

// Decimator halves the sample rate with a 9-tap half-band FIR in
// transposed form. The coefficients sum to 1, so DC passes at unit gain.
type Decimator struct {
	r [9]float32
}

// Step consumes two input samples and returns one output sample.
func (d *Decimator) Step(x0, x1 float32) float32 {
	h9x0 := h9 * x0
	h7x0 := h7 * x0
	h5x0 := h5 * x0
	h3x0 := h3 * x0
	h1x0 := h1 * x0

	r := &d.r
	out := r[8] + h9x0
	r[8] = r[7] + h7x0
	r[7] = r[6] + h5x0
	r[6] = r[5] + h3x0
	r[5] = r[4] + h1x0
	r[4] = r[3] + h1x0 + h0*x1
	r[3] = r[2] + h3x0
	r[2] = r[1] + h5x0
	r[1] = r[0] + h7x0
	r[0] = h9x0
	return out
}

// Reset clears the filter delay line.
func (d *Decimator) Reset() {
	d.r = [9]float32{}
}
