package vgm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadPlainAndCompressed(t *testing.T) {
	data := stream(0x62, 0x66)
	binary.LittleEndian.PutUint32(data[0x0C:], 3579545)
	binary.LittleEndian.PutUint32(data[0x18:], 735)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/song.vgm", data, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/music/song.vgz", gzipBytes(t, data), 0o644))

	plainCur, plain, err := Open(fs, "/music/song.vgm")
	require.NoError(t, err)
	packedCur, packed, err := Open(fs, "/music/song.vgz")
	require.NoError(t, err)

	require.Equal(t, plain, packed)
	require.Equal(t, plainCur.Len(), packedCur.Len())
	require.Equal(t, int64(len(data)), packedCur.Len())
	require.Equal(t, int64(0x40), packedCur.Offset())
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "/missing.vgm")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/broken.vgz", []byte{0x1F, 0x8B, 0x00, 0x01}, 0o644))
	_, err = Load(fs, "/broken.vgz")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/text.vgm", []byte("not a vgm file at all, just text padding it out past the header size........"), 0o644))
	_, _, err = Open(fs, "/text.vgm")
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDecompressPassthrough(t *testing.T) {
	data := []byte{0x1F}
	out, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCursorBounds(t *testing.T) {
	c := cursor(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05})

	v, err := c.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x04030201), v)

	_, err = c.ReadU16()
	require.ErrorIs(t, err, ErrTruncatedStream)

	require.NoError(t, c.Seek(1))
	require.ErrorIs(t, c.Skip(5), ErrTruncatedStream)
	require.Equal(t, int64(5), c.Offset())

	require.NoError(t, c.Seek(0))
	require.NoError(t, c.Skip(5))
	_, err = c.ReadU8()
	require.ErrorIs(t, err, ErrTruncatedStream)

	require.ErrorIs(t, c.Seek(6), ErrBadDataOffset)
}
