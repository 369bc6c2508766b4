package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/user-none/emvgm/vgm"
)

// renderChunk is the number of frames rendered per encoder write.
const renderChunk = 4096

// RenderWAV renders p into a 16-bit PCM WAV written to w until the
// stream ends or limit of audio has been produced. A zero limit renders
// to the end. It returns the number of frames written. Silence after
// the end of the stream is not written.
func RenderWAV(w io.WriteSeeker, p *vgm.Player, limit time.Duration) (int64, error) {
	rate, nch := p.SampleRate(), p.Channels()

	maxFrames := int64(-1)
	if limit > 0 {
		maxFrames = int64(limit) * int64(rate) / int64(time.Second)
	}

	enc := wav.NewEncoder(w, rate, 16, nch, 1)
	pcm := make([]int16, renderChunk*nch)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: nch,
			SampleRate:  rate,
		},
		Data:           make([]int, 0, len(pcm)),
		SourceBitDepth: 16,
	}

	var written int64
	var renderErr error
	for !p.Finished() && (maxFrames < 0 || written < maxFrames) {
		before := p.Position()
		renderErr = p.Render(pcm)

		frames := p.Position() - before
		if maxFrames >= 0 {
			frames = min(frames, maxFrames-written)
		}
		if frames > 0 {
			intBuf.Data = intBuf.Data[:0]
			for _, v := range pcm[:frames*int64(nch)] {
				intBuf.Data = append(intBuf.Data, int(v))
			}
			if err := enc.Write(intBuf); err != nil {
				return written, fmt.Errorf("wav write: %w", err)
			}
			written += frames
		}
		if renderErr != nil {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return written, fmt.Errorf("wav close: %w", err)
	}
	if renderErr != nil {
		return written, fmt.Errorf("render: %w", renderErr)
	}
	return written, nil
}
