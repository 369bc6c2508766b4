package vgm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// maxFileSize bounds the decompressed size of a loaded file.
const maxFileSize = 256 << 20

// Load reads a .vgm or gzip-compressed .vgz file and returns a cursor
// over its uncompressed bytes.
func Load(fs afero.Fs, path string) (*Cursor, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("vgm: reading %s: %w", path, err)
	}
	data, err = Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("vgm: %s: %w", path, err)
	}
	return NewCursor(bytes.NewReader(data))
}

// Decompress returns data unchanged unless it starts with the gzip magic,
// in which case it returns the inflated stream.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1F || data[1] != 0x8B {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if len(out) > maxFileSize {
		return nil, fmt.Errorf("gzip: stream larger than %d bytes", maxFileSize)
	}
	return out, nil
}

// Open loads path, parses its header and returns the cursor positioned at
// the first opcode.
func Open(fs afero.Fs, path string) (*Cursor, Header, error) {
	c, err := Load(fs, path)
	if err != nil {
		return nil, Header{}, err
	}
	h, err := ParseHeader(c)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, h, nil
}
