package fm

type timer struct {
	period  uint16
	counter uint16
}

// stepTimers advances Timer A every native sample and Timer B every 16.
// Timer A overflow in CSM mode keys channel 3 on for one sample.
func (s *Synth) stepTimers() {
	if s.loadA {
		if s.csmKeyedOn {
			s.csmRelease()
			s.csmKeyedOn = false
		}
		s.timerA.counter++
		if s.timerA.counter >= 1024-s.timerA.period {
			s.timerA.counter = 0
			if s.enableA {
				s.overflowA = true
			}
			if s.ch3Mode == ch3CSM {
				s.csmKeyOn()
				s.csmKeyedOn = true
			}
		}
	}

	s.timerBDiv++
	if s.timerBDiv < 16 {
		return
	}
	s.timerBDiv = 0
	if s.loadB {
		s.timerB.counter++
		if s.timerB.counter >= 256-s.timerB.period {
			s.timerB.counter = 0
			if s.enableB {
				s.overflowB = true
			}
		}
	}
}

// csmKeyOn starts all channel 3 operators without touching the $28
// key state.
func (s *Synth) csmKeyOn() {
	ch := &s.ch[2]
	for i := range ch.op {
		s.attack(&ch.op[i])
	}
}

// csmRelease releases channel 3 operators not held by $28.
func (s *Synth) csmRelease() {
	ch := &s.ch[2]
	for i := range ch.op {
		if !ch.op[i].keyOn {
			release(&ch.op[i])
		}
	}
}

// Status returns the timer overflow flags as bits 0 (A) and 1 (B).
func (s *Synth) Status() uint8 {
	var st uint8
	if s.overflowA {
		st |= 0x01
	}
	if s.overflowB {
		st |= 0x02
	}
	return st
}
