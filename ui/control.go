package ui

import (
	"sync"
	"time"
)

// PlayControl manages pause/resume/stop coordination between
// the front end and the playback goroutine. Requests take effect
// between render calls.
type PlayControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	running  bool
	stopReq  bool
	ackCh    chan struct{}
}

// NewPlayControl creates a new playback control.
func NewPlayControl() *PlayControl {
	return &PlayControl{
		running: true,
		ackCh:   make(chan struct{}, 1),
	}
}

// RequestPause asks the playback goroutine to pause and blocks
// until it acknowledges the pause.
func (pc *PlayControl) RequestPause() {
	pc.mu.Lock()
	if pc.paused || pc.pauseReq || !pc.running {
		pc.mu.Unlock()
		return
	}
	pc.pauseReq = true
	pc.mu.Unlock()

	// Wait for playback goroutine to acknowledge
	<-pc.ackCh
}

// RequestResume tells the playback goroutine to resume.
func (pc *PlayControl) RequestResume() {
	pc.mu.Lock()
	pc.pauseReq = false
	pc.paused = false
	pc.mu.Unlock()
}

// TogglePause pauses a running goroutine or resumes a paused one.
func (pc *PlayControl) TogglePause() {
	if pc.IsPaused() {
		pc.RequestResume()
		return
	}
	pc.RequestPause()
}

// CheckPause is called by the playback goroutine between buffers.
// If a pause has been requested, it sends an acknowledgment and
// spins until resumed or stopped. Returns false if the goroutine
// should exit.
func (pc *PlayControl) CheckPause() bool {
	pc.mu.Lock()
	if !pc.running || pc.stopReq {
		pc.mu.Unlock()
		return false
	}
	if !pc.pauseReq {
		pc.mu.Unlock()
		return true
	}

	// Acknowledge pause request
	pc.paused = true
	pc.mu.Unlock()

	// Non-blocking send of ack (buffer size 1)
	select {
	case pc.ackCh <- struct{}{}:
	default:
	}

	// Spin-wait until resumed or stopped
	for {
		pc.mu.Lock()
		if !pc.running || pc.stopReq {
			pc.mu.Unlock()
			return false
		}
		if !pc.pauseReq {
			pc.paused = false
			pc.mu.Unlock()
			return true
		}
		pc.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop signals the playback goroutine to exit.
func (pc *PlayControl) Stop() {
	pc.mu.Lock()
	pc.running = false
	pc.stopReq = true
	// Also clear pause so CheckPause unblocks
	pc.pauseReq = false
	pc.mu.Unlock()

	// Release a RequestPause caller that is waiting on an ack
	select {
	case pc.ackCh <- struct{}{}:
	default:
	}
}

// ShouldRun returns true if the goroutine should continue running.
func (pc *PlayControl) ShouldRun() bool {
	pc.mu.Lock()
	r := pc.running && !pc.stopReq
	pc.mu.Unlock()
	return r
}

// IsPaused returns true if the playback goroutine is currently paused.
func (pc *PlayControl) IsPaused() bool {
	pc.mu.Lock()
	p := pc.paused
	pc.mu.Unlock()
	return p
}
