package chip

// Bank holds one optional chip per slot. Empty slots ignore writes and
// contribute silence.
type Bank struct {
	slots [NumSlots]Chip
}

// Set binds c to slot id. A nil c empties the slot.
func (b *Bank) Set(id ID, c Chip) {
	if id < 0 || id >= NumSlots {
		return
	}
	b.slots[id] = c
}

// Get returns the chip in slot id, or nil.
func (b *Bank) Get(id ID) Chip {
	if id < 0 || id >= NumSlots {
		return nil
	}
	return b.slots[id]
}

// Occupied lists the slots that hold a chip, in slot order.
func (b *Bank) Occupied() []ID {
	var ids []ID
	for i, c := range b.slots {
		if c != nil {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// Write forwards a register write to slot id.
func (b *Bank) Write(id ID, port, reg, data uint8) {
	if c := b.Get(id); c != nil {
		c.Write(port, reg, data)
	}
}

// Render mixes every occupied slot into out.
func (b *Bank) Render(out []int16) {
	for _, c := range b.slots {
		if c != nil {
			c.Render(out)
		}
	}
}

// Mute silences every occupied slot.
func (b *Bank) Mute() {
	for _, c := range b.slots {
		if c != nil {
			c.Silence()
		}
	}
}
