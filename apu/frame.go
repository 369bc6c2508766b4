package apu

// sequencerRate is the frame sequencer tick rate in Hz.
const sequencerRate = 240

// Step kinds produced by the frame sequencer.
type step uint8

const (
	stepNone    step = 0
	stepQuarter step = 1 << 0 // envelopes and triangle linear counter
	stepHalf    step = 1 << 1 // length counters and sweeps
)

var (
	fourStep = [4]step{stepQuarter, stepQuarter | stepHalf, stepQuarter, stepQuarter | stepHalf}
	fiveStep = [5]step{stepQuarter, stepQuarter | stepHalf, stepQuarter, stepNone, stepQuarter | stepHalf}
)

// sequencer divides the output sample clock down to ~240 Hz ticks and
// walks the 4 or 5 step pattern.
type sequencer struct {
	sampleRate int
	acc        int // remainder carried between ticks, in 1/240 samples
	until      int // output samples to the next tick
	index      int
}

func newSequencer(sampleRate int) sequencer {
	s := sequencer{sampleRate: sampleRate}
	s.until = s.interval()
	return s
}

// interval returns the sample count of the next tick, carrying the
// fractional part so ticks average sampleRate/240 samples apart.
func (s *sequencer) interval() int {
	s.acc += s.sampleRate
	n := s.acc / sequencerRate
	s.acc -= n * sequencerRate
	if n < 1 {
		n = 1
	}
	return n
}

// reset restarts the pattern at step 0.
func (s *sequencer) reset() {
	s.index = 0
}

// tick advances the pattern and returns the step that fired.
func (s *sequencer) tick(five bool) step {
	var st step
	if five {
		st = fiveStep[s.index%len(fiveStep)]
	} else {
		st = fourStep[s.index%len(fourStep)]
	}
	s.index++
	return st
}
