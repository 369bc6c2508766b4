package main

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/user-none/emvgm/adapter"
)

func TestWavPath(t *testing.T) {
	tests := []struct {
		in, dir, want string
	}{
		{"music/a.vgm", "", "music/a.wav"},
		{"music/b.vgz", "out", "out/b.wav"},
		{"c", "", "c.wav"},
	}
	for _, tt := range tests {
		if got := wavPath(tt.in, tt.dir); got != tt.want {
			t.Errorf("wavPath(%q, %q): got %q, want %q", tt.in, tt.dir, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	data := make([]byte, 0x40)
	copy(data, "Vgm ")
	binary.LittleEndian.PutUint32(data[0x08:], 0x150)
	binary.LittleEndian.PutUint32(data[0x0C:], 3579545)
	data = append(data, 0x50, 0x90, 0x62, 0x66)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in.vgm", data, 0644))

	require.NoError(t, render(fs, adapter.NewFactory(nil), "/in.vgm", "/in.wav", time.Minute))
	fi, err := fs.Stat("/in.wav")
	require.NoError(t, err)
	// 44-byte header plus 735 stereo 16-bit frames
	if fi.Size() != 44+735*4 {
		t.Errorf("size: got %d, want %d", fi.Size(), 44+735*4)
	}

	require.Error(t, render(fs, adapter.NewFactory(nil), "/missing.vgm", "/missing.wav", time.Minute))
}
