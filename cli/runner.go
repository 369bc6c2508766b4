// Package cli provides the command-line front end: real-time playback
// through the audio device, offline WAV rendering and terminal status.
package cli

import (
	"log"
	"sync"
	"time"

	"github.com/user-none/emvgm/ui"
	"github.com/user-none/emvgm/vgm"
)

// buffersPerSecond is how often the playback loop renders.
const buffersPerSecond = 60

// ADT buffer thresholds as playing time.
const (
	adtMinBuffer = 50 * time.Millisecond
	adtMaxBuffer = 100 * time.Millisecond
)

// drainTimeout bounds the wait for queued audio after the stream ends.
const drainTimeout = 2 * time.Second

// Runner plays a VGM stream in real time.
// The player runs on a dedicated goroutine with audio-driven timing.
type Runner struct {
	player      *vgm.Player
	audioPlayer *ui.AudioPlayer
	progress    *Progress

	// ADT goroutine control
	control *ui.PlayControl
	done    chan struct{}
	err     error

	minBuffer int
	maxBuffer int

	closeOnce sync.Once
}

// NewRunner creates a Runner for p. Audio initialization failure is
// non-fatal; the runner keeps time without sound. progress may be nil.
func NewRunner(p *vgm.Player, volume float64, progress *Progress) *Runner {
	player, err := ui.NewAudioPlayer(p.SampleRate(), p.Channels(), volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	return &Runner{
		player:      p,
		audioPlayer: player,
		progress:    progress,
		control:     ui.NewPlayControl(),
		done:        make(chan struct{}),
		minBuffer:   ui.BufferBytes(p.SampleRate(), p.Channels(), adtMinBuffer),
		maxBuffer:   ui.BufferBytes(p.SampleRate(), p.Channels(), adtMaxBuffer),
	}
}

// Control returns the pause/stop handle for the playback goroutine.
func (r *Runner) Control() *ui.PlayControl {
	return r.control
}

// TogglePause pauses or resumes playback and the audio device with it.
func (r *Runner) TogglePause() {
	if !r.control.ShouldRun() {
		return
	}
	r.control.TogglePause()
	if r.audioPlayer == nil {
		return
	}
	if r.control.IsPaused() {
		r.audioPlayer.Pause()
	} else {
		r.audioPlayer.Resume()
	}
}

// IsPaused reports whether playback is paused.
func (r *Runner) IsPaused() bool {
	return r.control.IsPaused()
}

// Stop asks the playback goroutine to exit without waiting for it.
func (r *Runner) Stop() {
	r.control.Stop()
}

// Start launches the playback goroutine.
func (r *Runner) Start() {
	go r.playbackLoop()
}

// Wait blocks until playback ends and returns the decode error, if any.
func (r *Runner) Wait() error {
	<-r.done
	return r.err
}

// Close stops playback and releases the audio device. It must follow Start.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.control.Stop()
		<-r.done
		if r.audioPlayer != nil {
			r.audioPlayer.Close()
		}
	})
}

// playbackLoop runs on a dedicated goroutine with ADT.
func (r *Runner) playbackLoop() {
	defer close(r.done)
	defer r.control.Stop()

	frameTime := time.Second / buffersPerSecond
	frames := r.player.SampleRate() / buffersPerSecond
	buf := make([]int16, frames*r.player.Channels())
	lastFrameTime := time.Now()

	for {
		if !r.control.CheckPause() {
			return
		}
		if r.player.Finished() {
			r.drain()
			return
		}

		if err := r.player.Render(buf); err != nil && r.err == nil {
			r.err = err
		}

		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(buf)
		}
		if r.progress != nil {
			r.progress.Update(r.elapsed())
		}

		level := -1
		if r.audioPlayer != nil {
			level = r.audioPlayer.GetBufferLevel()
		}
		sleepTime := adtSleep(frameTime, time.Since(lastFrameTime), level, r.minBuffer, r.maxBuffer)
		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// adtSleep shortens the frame sleep when the audio buffer runs low and
// lengthens it when the buffer runs high. A negative level means there
// is no audio device and the frame time is used as is.
func adtSleep(frameTime, elapsed time.Duration, level, minBuffer, maxBuffer int) time.Duration {
	sleepTime := frameTime - elapsed
	if level < 0 {
		return sleepTime
	}
	if level < minBuffer {
		sleepTime = time.Duration(float64(sleepTime) * 0.9)
	} else if level > maxBuffer {
		sleepTime = time.Duration(float64(sleepTime) * 1.1)
	}
	return sleepTime
}

// drain waits for queued audio to finish playing.
func (r *Runner) drain() {
	if r.progress != nil {
		r.progress.Update(r.elapsed())
	}
	if r.audioPlayer == nil {
		return
	}
	deadline := time.Now().Add(drainTimeout)
	for !r.audioPlayer.Drained() && time.Now().Before(deadline) && r.control.ShouldRun() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (r *Runner) elapsed() time.Duration {
	return time.Duration(r.player.Position()) * time.Second / time.Duration(r.player.SampleRate())
}
