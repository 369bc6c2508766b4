// Package apu emulates the NES 2A03 audio processing unit: two pulse
// channels, a triangle, and a noise channel driven by a frame sequencer.
package apu

import (
	"github.com/user-none/emvgm/sound"
)

// Mix gains per voice.
const (
	pulseGain    = 0.6
	triangleGain = 0.8
	noiseGain    = 0.1

	triangleLevel = 0.5
)

// Noise shift register feedback taps for the two modes.
const (
	noiseTapsLong  = 0x0003
	noiseTapsShort = 0x0041
	noiseWidth     = 15
)

// APU is a register-level model of the NES sound hardware rendered
// through the band-limited oscillators in package sound.
type APU struct {
	region Region
	clock  float64
	rate   float64 // oversampled voice rate

	regs registers

	env    [4]envelope // pulse 1, pulse 2, unused, noise
	length [4]lengthCounter
	sweep  [2]sweep
	timer  [2]uint16 // pulse timers, modified by sweep
	linear linearCounter
	seq    sequencer

	pulse    [2]*sound.Blit
	triangle *sound.Triangle
	noise    *sound.Noise

	mixer  *sound.Mixer
	voices []sound.Voice
}

// New creates an APU for region producing sampleRate output.
func New(region Region, sampleRate int) *APU {
	rate := float64(sampleRate * sound.Oversample)
	a := &APU{
		region:   region,
		clock:    float64(region.Clock()),
		rate:     rate,
		seq:      newSequencer(sampleRate),
		triangle: sound.NewTriangle(rate),
		noise:    sound.NewNoise(noiseWidth, noiseTapsLong, 1),
		mixer:    sound.NewMixer(),
	}
	a.sweep[0].ones = true
	for i := range a.pulse {
		a.pulse[i] = sound.NewBlit(rate)
	}
	a.voices = []sound.Voice{
		{Osc: a.pulse[0], Gain: pulseGain},
		{Osc: a.pulse[1], Gain: pulseGain},
		{Osc: a.triangle, Gain: triangleGain},
		{Osc: a.noise, Gain: noiseGain},
	}
	a.updateNoise()
	return a
}

// Region returns the configured video standard.
func (a *APU) Region() Region {
	return a.region
}

// Write stores data into register reg ($4000 + reg). Port is unused.
// Writes outside the register file are ignored.
func (a *APU) Write(port, reg, data uint8) {
	if int(reg) >= numRegisters {
		return
	}
	a.regs[reg] = data

	switch reg {
	case 0x00, 0x04:
		ch := int(reg / 4)
		a.env[ch].loop = a.regs.loop(ch)
		a.env[ch].period = a.regs.volume(ch)
		a.length[ch].halt = a.regs.loop(ch)
		a.updatePulse(ch)
	case 0x01, 0x05:
		ch := int(reg / 4)
		s := &a.sweep[ch]
		s.enabled = a.regs.sweepEnabled(ch)
		s.period = a.regs.sweepPeriod(ch)
		s.negate = a.regs.sweepNegate(ch)
		s.shift = a.regs.sweepShift(ch)
		s.reload = true
		a.updatePulse(ch)
	case 0x02, 0x06:
		ch := int(reg / 4)
		a.timer[ch] = a.regs.timer(ch)
		a.updatePulse(ch)
	case 0x03, 0x07:
		ch := int(reg / 4)
		a.timer[ch] = a.regs.timer(ch)
		a.length[ch].load(a.regs.lengthIndex(ch))
		a.env[ch].start = true
		a.updatePulse(ch)
	case 0x08:
		a.linear.control = a.regs.linearControl()
		a.linear.period = a.regs.linearReload()
		a.length[chTriangle].halt = a.regs.linearControl()
	case 0x0A:
		a.updateTriangle()
	case 0x0B:
		a.length[chTriangle].load(a.regs.lengthIndex(chTriangle))
		a.linear.reload = true
		a.updateTriangle()
	case 0x0C:
		a.env[chNoise].loop = a.regs.loop(chNoise)
		a.env[chNoise].period = a.regs.volume(chNoise)
		a.length[chNoise].halt = a.regs.loop(chNoise)
	case 0x0E:
		a.updateNoise()
	case 0x0F:
		a.length[chNoise].load(a.regs.lengthIndex(chNoise))
		a.env[chNoise].start = true
	case regStatus:
		for ch := chPulse1; ch <= chNoise; ch++ {
			if !a.regs.enabled(ch) {
				a.length[ch].value = 0
			}
		}
	case regFrameMode:
		a.seq.reset()
	}
	a.updateVolumes()
}

// updatePulse recomputes duty and frequency for pulse channel ch.
func (a *APU) updatePulse(ch int) {
	p := a.pulse[ch]
	p.SetDuty(dutyTable[a.regs.duty(ch)])
	t := a.timer[ch]
	if a.sweep[ch].muting(t) {
		p.SetFreq(0)
		return
	}
	p.SetFreq(a.clock / (16 * float64(t+1)))
}

// updateTriangle recomputes the triangle frequency. Timers below 2 are
// ultrasonic and leave the previous frequency in place.
func (a *APU) updateTriangle() {
	t := a.regs.timer(chTriangle)
	if t < 2 {
		return
	}
	a.triangle.SetFreq(a.clock / (32 * float64(t+1)))
}

func (a *APU) updateNoise() {
	if a.regs.noiseShort() {
		a.noise.SetTaps(noiseTapsShort)
	} else {
		a.noise.SetTaps(noiseTapsLong)
	}
	cycles := float64(a.region.noisePeriods()[a.regs.noisePeriod()])
	a.noise.SetPeriod(a.rate * cycles / a.clock)
}

// audible applies the status enable and length counter gates.
func (a *APU) audible(ch int) bool {
	return a.regs.enabled(ch) && a.length[ch].value > 0
}

func (a *APU) updateVolumes() {
	for ch := chPulse1; ch <= chPulse2; ch++ {
		var v float32
		if a.audible(ch) {
			v = float32(a.env[ch].output(a.regs.constant(ch), a.regs.volume(ch))) / 32
		}
		a.pulse[ch].SetVolume(v)
	}

	var tv float32
	if a.audible(chTriangle) && a.linear.value > 0 && a.regs.timer(chTriangle) >= 2 {
		tv = triangleLevel
	}
	a.triangle.SetVolume(tv)

	var nv float32
	if a.audible(chNoise) {
		nv = float32(a.env[chNoise].output(a.regs.constant(chNoise), a.regs.volume(chNoise))) / 32
	}
	a.noise.SetVolume(nv)
}

// clockFrame applies one frame sequencer tick and returns its kind.
func (a *APU) clockFrame() step {
	st := a.seq.tick(a.regs.fiveStep())
	if st&stepQuarter != 0 {
		a.env[chPulse1].clock()
		a.env[chPulse2].clock()
		a.env[chNoise].clock()
		a.linear.clock()
	}
	if st&stepHalf != 0 {
		for ch := range a.length {
			a.length[ch].clock()
		}
		for ch := range a.sweep {
			a.timer[ch] = a.sweep[ch].clock(a.timer[ch])
			a.updatePulse(ch)
		}
	}
	a.updateVolumes()
	return st
}

// Render adds len(out) samples into out, splitting the work at frame
// sequencer ticks so envelope and length changes land on time.
func (a *APU) Render(out []int16) {
	for len(out) > 0 {
		n := a.seq.until
		if n > len(out) {
			n = len(out)
		}
		a.mixer.Render(out[:n], a.voices...)
		out = out[n:]
		a.seq.until -= n
		if a.seq.until == 0 {
			a.clockFrame()
			a.seq.until = a.seq.interval()
		}
	}
}

// Silence disables all channels through the status register.
func (a *APU) Silence() {
	a.Write(0, regStatus, 0)
}
