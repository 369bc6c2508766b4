package apu

// sweep adjusts a pulse channel's timer every few half-frames. Pulse 1
// negates with ones' complement, pulse 2 with two's complement.
type sweep struct {
	enabled bool
	negate  bool
	period  uint8
	shift   uint8
	divider uint8
	reload  bool
	ones    bool
}

// target returns the timer value the sweep is heading for.
func (s *sweep) target(timer uint16) int {
	change := int(timer >> s.shift)
	if !s.negate {
		return int(timer) + change
	}
	if s.ones {
		return int(timer) - change - 1
	}
	return int(timer) - change
}

// muting reports whether the channel is silenced by the sweep unit.
// This holds even while the sweep is disabled.
func (s *sweep) muting(timer uint16) bool {
	return timer < 8 || s.target(timer) > 0x7FF
}

// clock runs one half-frame step and returns the new timer.
func (s *sweep) clock(timer uint16) uint16 {
	if s.divider == 0 && s.enabled && s.shift > 0 && !s.muting(timer) {
		if t := s.target(timer); t >= 0 {
			timer = uint16(t)
		}
	}
	if s.divider == 0 || s.reload {
		s.divider = s.period
		s.reload = false
	} else {
		s.divider--
	}
	return timer
}
