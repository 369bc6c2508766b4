package adapter

import (
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/user-none/emvgm/apu"
	"github.com/user-none/emvgm/chip"
	"github.com/user-none/emvgm/config"
	"github.com/user-none/emvgm/fm"
	"github.com/user-none/emvgm/psg"
	"github.com/user-none/emvgm/vgm"
)

func genesisHeader() vgm.Header {
	return vgm.Header{
		SN76489Clock:    3579545,
		SN76489Feedback: 0x0009,
		SN76489Width:    16,
		YM2612Clock:     7670454,
		NESAPUClock:     1789772,
	}
}

func TestNewBankFromClocks(t *testing.T) {
	f := NewFactory(nil)
	bank := f.NewBank(genesisHeader())

	require.Equal(t, []chip.ID{chip.PSG, chip.NESAPU, chip.FM}, bank.Occupied())
	require.IsType(t, &psg.PSG{}, bank.Get(chip.PSG))
	require.IsType(t, &apu.APU{}, bank.Get(chip.NESAPU))
	require.IsType(t, &fm.Synth{}, bank.Get(chip.FM))
}

func TestNewBankHonorsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chips.PSGModel = config.PSGDiscrete
	cfg.Chips.Disable = []string{"fm"}
	cfg.Chips.Region = config.RegionPAL

	bank := NewFactory(cfg).NewBank(genesisHeader())
	require.Equal(t, []chip.ID{chip.PSG, chip.NESAPU}, bank.Occupied())
	require.IsType(t, &psg.Discrete{}, bank.Get(chip.PSG))
	require.Equal(t, apu.PAL, bank.Get(chip.NESAPU).(*apu.APU).Region())
}

func TestRegion(t *testing.T) {
	f := NewFactory(nil)
	h := vgm.Header{NESAPUClock: 1662607}
	require.Equal(t, apu.PAL, f.Region(h))
	h.NESAPUClock = 1789772
	require.Equal(t, apu.NTSC, f.Region(h))

	f.Config.Chips.Region = config.RegionPAL
	require.Equal(t, apu.PAL, f.Region(h))
}

func TestUnsupported(t *testing.T) {
	h := genesisHeader()
	require.Empty(t, Unsupported(h))

	h.YM3812Clock = 3579545
	h.POKEYClock = 1789772
	require.Equal(t, []chip.ID{chip.OPL, chip.POKEY}, Unsupported(h))
}

func file(clockAt int, clock uint32, body ...byte) []byte {
	data := make([]byte, 0x40, 0x40+len(body))
	copy(data, "Vgm ")
	binary.LittleEndian.PutUint32(data[clockAt:], clock)
	return append(data, body...)
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/psg.vgm", file(0x0C, 3579545, 0x50, 0x90, 0x62, 0x66), 0644))
	require.NoError(t, afero.WriteFile(fs, "/ym2413.vgm", file(0x10, 3579545, 0x62, 0x66), 0644))

	cfg := config.Default()
	cfg.Audio.Channels = 1
	var events int
	f := NewFactory(cfg)
	f.Trace = func(vgm.Event) { events++ }

	p, err := f.Open(fs, "/psg.vgm")
	require.NoError(t, err)
	require.Equal(t, 1, p.Channels())
	require.Equal(t, 44100, p.SampleRate())

	buf := make([]int16, 1024)
	require.NoError(t, p.Render(buf))
	require.True(t, p.Finished())
	require.Equal(t, int64(735), p.Position())
	require.Equal(t, 3, events)

	_, err = f.Open(fs, "/ym2413.vgm")
	require.Error(t, err)
}
