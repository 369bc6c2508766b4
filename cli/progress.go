package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// progressInterval throttles status line redraws.
const progressInterval = 250 * time.Millisecond

// Progress draws a single status line on a terminal. It does nothing
// when the output is not a terminal.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	width   int
	title   string
	total   time.Duration
	last    time.Time
	paused  bool
}

// NewProgress returns a status line writer for f.
func NewProgress(f *os.File, title string, total time.Duration) *Progress {
	fd := int(f.Fd())
	p := &Progress{
		w:       f,
		enabled: term.IsTerminal(fd),
		title:   title,
		total:   total,
		width:   80,
	}
	if p.enabled {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			p.width = w
		}
	}
	return p
}

// SetPaused marks the status line as paused.
func (p *Progress) SetPaused(paused bool) {
	p.mu.Lock()
	p.paused = paused
	p.last = time.Time{}
	p.mu.Unlock()
}

// Update redraws the line for the given playing position.
func (p *Progress) Update(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || time.Since(p.last) < progressInterval {
		return
	}
	p.last = time.Now()
	fmt.Fprintf(p.w, "\r%s", p.line(pos))
}

// Done ends the status line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		fmt.Fprint(p.w, "\r\n")
	}
}

func (p *Progress) line(pos time.Duration) string {
	status := formatClock(pos)
	if p.total > 0 {
		status += " / " + formatClock(p.total)
	}
	if p.paused {
		status += " [paused]"
	}

	title := p.title
	room := p.width - len(status) - 3
	if room < 0 {
		room = 0
	}
	if len(title) > room {
		title = title[:room]
	}
	line := title + "  " + status
	if pad := p.width - 1 - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// formatClock formats d as m:ss.
func formatClock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
