package apu

// envelope is the decay unit shared by the pulse and noise channels.
type envelope struct {
	start   bool
	loop    bool
	period  uint8
	divider uint8
	decay   uint8
}

// clock runs one quarter-frame step.
func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.period
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.period
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

// output returns the envelope or constant volume.
func (e *envelope) output(constant bool, volume uint8) uint8 {
	if constant {
		return volume
	}
	return e.decay
}

// lengthCounter silences a channel after a programmed number of
// half-frames unless halted.
type lengthCounter struct {
	value uint8
	halt  bool
}

func (l *lengthCounter) load(index uint8) {
	l.value = lengthTable[index&0x1F]
}

func (l *lengthCounter) clock() {
	if l.value > 0 && !l.halt {
		l.value--
	}
}

// linearCounter is the triangle's quarter-frame gate.
type linearCounter struct {
	value   uint8
	reload  bool
	control bool
	period  uint8
}

func (l *linearCounter) clock() {
	if l.reload {
		l.value = l.period
	} else if l.value > 0 {
		l.value--
	}
	if !l.control {
		l.reload = false
	}
}
