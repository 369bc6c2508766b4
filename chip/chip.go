// Package chip defines the contract shared by all sound chip models and
// the fixed bank of slots the stream decoder routes writes through.
package chip

import "fmt"

// Chip is a register-driven sound generator.
type Chip interface {
	// Write stores data into register reg on the given port.
	Write(port, reg, data uint8)
	// Render adds len(out) samples into out, saturating at the int16 limits.
	Render(out []int16)
	// Silence mutes the chip's voices.
	Silence()
}

// ID names a bank slot.
type ID int

const (
	PSG ID = iota
	NESAPU
	OPL
	FM
	DMG
	POKEY

	NumSlots
)

var idNames = [NumSlots]string{"psg", "nesapu", "opl", "fm", "dmg", "pokey"}

func (id ID) String() string {
	if id < 0 || id >= NumSlots {
		return fmt.Sprintf("chip(%d)", int(id))
	}
	return idNames[id]
}

// ParseID returns the slot for a name as printed by ID.String.
func ParseID(name string) (ID, error) {
	for i, n := range idNames {
		if n == name {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chip %q", name)
}
