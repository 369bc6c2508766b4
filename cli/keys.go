package cli

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/term"
)

var errNotTerminal = errors.New("stdin is not a terminal")

// Controller is the playback surface driven by key presses. Both Runner
// and ui.PlayControl satisfy it.
type Controller interface {
	TogglePause()
	Stop()
	IsPaused() bool
}

// KeyWatcher puts a terminal in raw mode and maps key presses to
// playback control: space or p toggles pause, q, Esc or Ctrl-C stops.
type KeyWatcher struct {
	fd       int
	oldState *term.State
	stopped  sync.Once
}

// WatchKeys starts reading single keys from f.
func WatchKeys(f *os.File, control Controller, progress *Progress) (*KeyWatcher, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	k := &KeyWatcher{fd: fd, oldState: oldState}

	// The reader stays blocked on f until the process exits.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := f.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			if handleKey(buf[0], control, progress) {
				return
			}
		}
	}()
	return k, nil
}

// handleKey applies one key press and reports whether playback stopped.
func handleKey(b byte, control Controller, progress *Progress) bool {
	switch b {
	case ' ', 'p', 'P':
		control.TogglePause()
		if progress != nil {
			progress.SetPaused(control.IsPaused())
		}
	case 'q', 'Q', 0x1B, 0x03:
		control.Stop()
		return true
	}
	return false
}

// Stop restores the terminal state.
func (k *KeyWatcher) Stop() {
	k.stopped.Do(func() {
		_ = term.Restore(k.fd, k.oldState)
	})
}
