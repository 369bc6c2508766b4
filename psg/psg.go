// Package psg emulates the SN76489 family of 3-tone plus noise
// programmable sound generators.
package psg

import (
	"github.com/user-none/emvgm/sound"
)

// Register addressing bits of a latch byte.
const (
	latchBit  = 0x80
	volumeBit = 0x10
	whiteBit  = 0x04
)

// Default noise shift register layout for the Sega variant.
const (
	DefaultFeedback = 0x0009
	DefaultWidth    = 16
)

const (
	toneGain  = 0.4
	noiseGain = 0.3
)

// volumeTable maps 4-bit attenuation to amplitude, 2dB per step.
// Entry 15 is silence.
var volumeTable = [16]uint16{
	0x7FFF, 0x65AC, 0x50C3, 0x4026,
	0x32F5, 0x287A, 0x2027, 0x19A8,
	0x1449, 0x101D, 0x0CCD, 0x0A2B,
	0x0813, 0x066A, 0x0518, 0x0000,
}

// noiseDividers are the fixed noise clock dividers selected by the low
// two bits of the noise control register. Selection 3 follows tone 2.
var noiseDividers = [3]float64{512, 1024, 2048}

// Amplitude returns the linear amplitude for a 4-bit attenuation.
func Amplitude(atten uint8) float32 {
	return float32(volumeTable[atten&0x0F]) / 0xFFFF
}

// PSG is the band-limited model of the chip. Tones render through
// sound.Blit, noise through sound.Noise, and the mix goes through a
// 2x oversampling sound.Mixer.
type PSG struct {
	clock float64
	rate  float64 // oversampled voice rate

	tone     [3]uint16 // 10-bit periods
	tones    [3]*sound.Blit
	noise    *sound.Noise
	noiseCtl uint8
	latch    uint8

	feedback uint32
	width    uint

	mixer  *sound.Mixer
	voices []sound.Voice
}

// New creates a PSG clocked at clock Hz producing sampleRate output.
// feedback and width describe the noise shift register; zero selects
// the Sega defaults.
func New(clock, sampleRate int, feedback uint16, width uint8) *PSG {
	if feedback == 0 {
		feedback = DefaultFeedback
	}
	if width == 0 || width > 16 {
		width = DefaultWidth
	}

	rate := float64(sampleRate * sound.Oversample)
	p := &PSG{
		clock:    float64(clock),
		rate:     rate,
		feedback: uint32(feedback),
		width:    uint(width),
		mixer:    sound.NewMixer(),
	}
	for i := range p.tones {
		p.tones[i] = sound.NewBlit(rate)
	}
	p.noise = sound.NewNoise(p.width, p.feedback, p.seed())

	p.voices = []sound.Voice{
		{Osc: p.tones[0], Gain: toneGain},
		{Osc: p.tones[1], Gain: toneGain},
		{Osc: p.tones[2], Gain: toneGain},
		{Osc: p.noise, Gain: noiseGain},
	}
	return p
}

func (p *PSG) seed() uint32 {
	return 1 << (p.width - 1)
}

// Write handles one byte of the latch/continuation protocol. Port and
// register are unused: the chip has a single write-only data port.
func (p *PSG) Write(port, reg, data uint8) {
	if data&latchBit != 0 {
		p.latch = data
		ch := (data >> 5) & 0x03
		switch {
		case data&volumeBit != 0:
			p.setVolume(ch, data)
		case ch == 3:
			p.setNoise(data)
		default:
			p.tone[ch] = p.tone[ch]&0x3F0 | uint16(data&0x0F)
			p.updateTone(ch)
		}
		return
	}

	ch := (p.latch >> 5) & 0x03
	switch {
	case p.latch&volumeBit != 0:
		p.setVolume(ch, data)
	case ch == 3:
		p.setNoise(data)
	default:
		p.tone[ch] = p.tone[ch]&0x0F | uint16(data&0x3F)<<4
		p.updateTone(ch)
	}
}

func (p *PSG) setVolume(ch, data uint8) {
	v := Amplitude(data)
	if ch < 3 {
		p.tones[ch].SetVolume(v)
		return
	}
	p.noise.SetVolume(v)
}

// toneFreq returns the output frequency of a tone channel, or 0 when its
// period is 0.
func (p *PSG) toneFreq(ch uint8) float64 {
	if p.tone[ch] == 0 {
		return 0
	}
	return p.clock / (32 * float64(p.tone[ch]))
}

func (p *PSG) updateTone(ch uint8) {
	p.tones[ch].SetFreq(p.toneFreq(ch))
	if ch == 2 && p.noiseCtl&0x03 == 3 {
		p.updateNoiseRate()
	}
}

// setNoise reprograms the noise generator and resets its shift register.
func (p *PSG) setNoise(data uint8) {
	p.noiseCtl = data & 0x07
	if data&whiteBit != 0 {
		p.noise.SetTaps(p.feedback)
	} else {
		p.noise.SetTaps(0x0001)
	}
	p.noise.Reset(p.seed())
	p.updateNoiseRate()
}

func (p *PSG) updateNoiseRate() {
	var hz float64
	if sel := p.noiseCtl & 0x03; sel < 3 {
		hz = p.clock / noiseDividers[sel]
	} else {
		hz = p.toneFreq(2)
	}
	if hz <= 0 {
		p.noise.SetPeriod(0)
		return
	}
	p.noise.SetPeriod(p.rate / hz)
}

// Render adds len(out) samples into out.
func (p *PSG) Render(out []int16) {
	p.mixer.Render(out, p.voices...)
}

// Silence zeroes the three tone volumes. The noise volume is left as
// last written.
func (p *PSG) Silence() {
	for _, t := range p.tones {
		t.SetVolume(0)
	}
}

// Tone returns the 10-bit period of tone channel ch.
func (p *PSG) Tone(ch int) uint16 {
	return p.tone[ch]
}

// ToneVolume returns the amplitude of tone channel ch.
func (p *PSG) ToneVolume(ch int) float32 {
	return p.tones[ch].Volume()
}

// NoiseVolume returns the amplitude of the noise channel.
func (p *PSG) NoiseVolume() float32 {
	return p.noise.Volume()
}

// NoiseShift returns the current noise shift register.
func (p *PSG) NoiseShift() uint32 {
	return p.noise.Register()
}
