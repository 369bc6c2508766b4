package apu

import "fmt"

// Region selects the CPU clock and the noise period table together.
type Region int

const (
	NTSC Region = iota
	PAL
)

func (r Region) String() string {
	if r == PAL {
		return "pal"
	}
	return "ntsc"
}

// ParseRegion accepts "ntsc" or "pal".
func ParseRegion(s string) (Region, error) {
	switch s {
	case "ntsc", "":
		return NTSC, nil
	case "pal":
		return PAL, nil
	}
	return NTSC, fmt.Errorf("invalid region %q (use ntsc or pal)", s)
}

// CPU clocks in Hz.
const (
	ClockNTSC = 1789773
	ClockPAL  = 1662607
)

// Clock returns the CPU clock for the region.
func (r Region) Clock() int {
	if r == PAL {
		return ClockPAL
	}
	return ClockNTSC
}

// lengthTable is indexed by the 5-bit length counter load field.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// Noise timer periods in CPU cycles.
var (
	noisePeriodNTSC = [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068}
	noisePeriodPAL  = [16]uint16{4, 8, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778}
)

func (r Region) noisePeriods() *[16]uint16 {
	if r == PAL {
		return &noisePeriodPAL
	}
	return &noisePeriodNTSC
}

// dutyTable is the high fraction of each pulse duty setting.
var dutyTable = [4]float64{0.125, 0.25, 0.5, 0.75}
