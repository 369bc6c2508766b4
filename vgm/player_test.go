package vgm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user-none/emvgm/chip"
	"github.com/user-none/emvgm/psg"
)

func TestRenderZeroLengthIsIdempotent(t *testing.T) {
	p, rec := player(t, stream(0x50, 0x9F, 0x61, 0x64, 0x00, 0x66), Options{})

	before := p.dec.Offset()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Render(nil))
		require.NoError(t, p.Render([]int16{}))
	}
	require.Equal(t, before, p.dec.Offset())
	require.Zero(t, p.pending)
	require.Empty(t, rec.writes)

	require.NoError(t, p.Render(make([]int16, 10)))
	pending := p.pending
	offset := p.dec.Offset()
	require.Equal(t, int32(90), pending)

	require.NoError(t, p.Render(nil))
	require.Equal(t, pending, p.pending)
	require.Equal(t, offset, p.dec.Offset())
}

func TestRenderSpillAcrossBuffers(t *testing.T) {
	p, rec := player(t, stream(0x61, 0x64, 0x00, 0x66), Options{})

	buf := make([]int16, 30)
	for i, want := range []int{30, 60, 90} {
		require.NoError(t, p.Render(buf))
		require.Equal(t, want, rec.rendered, "call %d", i)
		require.False(t, p.Finished())
	}

	require.NoError(t, p.Render(buf))
	require.Equal(t, 100, rec.rendered)
	require.True(t, p.Finished())
	require.Equal(t, int64(100), p.Position())
	for i, v := range buf {
		if i < 10 {
			require.Equal(t, int16(1), v, "sample %d", i)
		} else {
			require.Zero(t, v, "sample %d", i)
		}
	}

	// stays silent once finished
	for i := range buf {
		buf[i] = 99
	}
	require.NoError(t, p.Render(buf))
	for _, v := range buf {
		require.Zero(t, v)
	}
}

func TestRenderRetainsError(t *testing.T) {
	p, rec := player(t, stream(0x50, 0x9F, 0x70, 0x00), Options{})

	buf := make([]int16, 8)
	err := p.Render(buf)
	require.ErrorIs(t, err, ErrUnknownOpcode)
	require.ErrorIs(t, p.Err(), ErrUnknownOpcode)
	require.True(t, p.Finished())
	require.Len(t, rec.writes, 1)
	require.Equal(t, 1, rec.silenced)
	require.Equal(t, []int16{1, 0, 0, 0, 0, 0, 0, 0}, buf)

	require.NoError(t, p.Render(buf))
	require.ErrorIs(t, p.Err(), ErrUnknownOpcode)
}

func TestRenderRateConversion(t *testing.T) {
	p, rec := player(t, stream(0x61, 0xE8, 0x03, 0x66), Options{SampleRate: 22050})
	require.NoError(t, p.Render(make([]int16, 1000)))
	require.Equal(t, 500, rec.rendered)
	require.Equal(t, int64(500), p.Position())
	require.True(t, p.Finished())

	// single-sample waits carry their remainder
	p, rec = player(t, stream(0x70, 0x70, 0x70, 0x70, 0x70, 0x66), Options{SampleRate: 22050})
	require.NoError(t, p.Render(make([]int16, 10)))
	require.Equal(t, 2, rec.rendered)

	p, rec = player(t, stream(0x61, 0xE8, 0x03, 0x66), Options{SampleRate: 48000})
	require.NoError(t, p.Render(make([]int16, 2000)))
	require.Equal(t, 1088, rec.rendered)
}

func TestRenderDualMono(t *testing.T) {
	p, rec := player(t, stream(0x63, 0x66), Options{Channels: 2})
	require.Equal(t, 2, p.Channels())

	buf := make([]int16, 9)
	require.NoError(t, p.Render(buf))
	require.Equal(t, 4, rec.rendered)
	for i := 0; i < 8; i += 2 {
		require.Equal(t, int16(1), buf[i])
		require.Equal(t, buf[i], buf[i+1])
	}
	require.Zero(t, buf[8])
}

func TestRenderLoopWithoutWaitFails(t *testing.T) {
	// a loop whose body never waits trips the decoder watchdog
	data := stream(0x70, 0x66)
	data[0x1C] = 0x41 - 0x1C
	p, rec := player(t, data, Options{Loops: -1})

	err := p.Render(make([]int16, 64))
	require.ErrorIs(t, err, ErrRunawayDecode)
	require.True(t, p.Finished())
	require.Equal(t, 1, rec.rendered)
	require.NotZero(t, rec.silenced)
}

func TestRenderPSGEndToEnd(t *testing.T) {
	const clock = 3579545
	data := stream(
		0x50, 0x85, // latch tone 0, low nibble 5
		0x50, 0x02, // high bits 2
		0x50, 0x90, // tone 0 attenuation 0
		0x61, 0xE8, 0x03,
		0x66,
	)
	c := cursor(t, data)
	h, err := ParseHeader(c)
	require.NoError(t, err)

	var bank chip.Bank
	bank.Set(chip.PSG, psg.New(clock, NativeRate, psg.DefaultFeedback, psg.DefaultWidth))
	p := NewPlayer(c, h, &bank, Options{})

	buf := make([]int16, 1000)
	require.NoError(t, p.Render(buf))
	require.Equal(t, int64(1000), p.Position())
	steady := buf[50:]

	freq := float64(clock) / (32 * 0x25)
	crossings := 0
	for i := 1; i < len(steady); i++ {
		if (steady[i-1] < 0) != (steady[i] < 0) {
			crossings++
		}
	}
	want := 2 * freq * float64(len(steady)) / NativeRate
	if math.Abs(float64(crossings)-want) > 4 {
		t.Errorf("crossings: got %d, want ~%.1f", crossings, want)
	}

	var sum float64
	for _, v := range steady {
		sum += float64(v) * float64(v)
	}
	rms := math.Sqrt(sum / float64(len(steady)))
	expect := float64(psg.Amplitude(0)) * 0.4 * 0x7000 // tone gain
	if math.Abs(rms-expect)/expect > 0.15 {
		t.Errorf("rms: got %.0f, want ~%.0f", rms, expect)
	}

	// the stream ended, so the bank was muted and the next buffer is silent
	require.True(t, p.Finished())
	require.NoError(t, p.Render(buf))
	for _, v := range buf {
		require.Zero(t, v)
	}
}

func TestRenderAttenuationSweep(t *testing.T) {
	const clock = 3579545
	var peaks []int
	for atten := uint8(0); atten < 16; atten++ {
		data := stream(0x50, 0x85, 0x50, 0x02, 0x50, 0x90|atten, 0x61, 0xE8, 0x03, 0x66)
		c := cursor(t, data)
		h, err := ParseHeader(c)
		require.NoError(t, err)

		var bank chip.Bank
		bank.Set(chip.PSG, psg.New(clock, NativeRate, psg.DefaultFeedback, psg.DefaultWidth))
		p := NewPlayer(c, h, &bank, Options{})

		buf := make([]int16, 1000)
		require.NoError(t, p.Render(buf))
		var pk int
		for _, v := range buf {
			pk = max(pk, int(math.Abs(float64(v))))
		}
		peaks = append(peaks, pk)
	}

	for i := 1; i < len(peaks); i++ {
		if peaks[i] > peaks[i-1] {
			t.Errorf("attenuation %d: peak %d above attenuation %d peak %d", i, peaks[i], i-1, peaks[i-1])
		}
	}
	require.Zero(t, peaks[15])
}
