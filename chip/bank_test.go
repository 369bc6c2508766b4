package chip

import "testing"

type write struct {
	port, reg, data uint8
}

type fakeChip struct {
	writes   []write
	renders  int
	silenced int
	level    int16
}

func (f *fakeChip) Write(port, reg, data uint8) {
	f.writes = append(f.writes, write{port, reg, data})
}

func (f *fakeChip) Render(out []int16) {
	f.renders++
	for i := range out {
		out[i] += f.level
	}
}

func (f *fakeChip) Silence() {
	f.silenced++
}

func TestBankWriteToEmptySlotIsNoop(t *testing.T) {
	var b Bank
	b.Write(PSG, 0, 0, 0x9F)
	b.Write(ID(42), 0, 0, 0)
	b.Render(make([]int16, 4))
	b.Mute()
}

func TestBankRoutesWrites(t *testing.T) {
	var b Bank
	psg := &fakeChip{}
	fm := &fakeChip{}
	b.Set(PSG, psg)
	b.Set(FM, fm)

	b.Write(FM, 1, 0x28, 0xF0)
	b.Write(PSG, 0, 0, 0x90)

	if len(fm.writes) != 1 || fm.writes[0] != (write{1, 0x28, 0xF0}) {
		t.Errorf("fm writes: got %v", fm.writes)
	}
	if len(psg.writes) != 1 || psg.writes[0].data != 0x90 {
		t.Errorf("psg writes: got %v", psg.writes)
	}
}

func TestBankRenderIsAdditive(t *testing.T) {
	var b Bank
	b.Set(PSG, &fakeChip{level: 100})
	b.Set(NESAPU, &fakeChip{level: 23})

	out := make([]int16, 8)
	b.Render(out)
	for i, v := range out {
		if v != 123 {
			t.Errorf("sample[%d]: got %d, want 123", i, v)
		}
	}
}

func TestBankMuteBroadcasts(t *testing.T) {
	var b Bank
	a, c := &fakeChip{}, &fakeChip{}
	b.Set(OPL, a)
	b.Set(POKEY, c)
	b.Mute()
	if a.silenced != 1 || c.silenced != 1 {
		t.Errorf("silence calls: got %d and %d, want 1 each", a.silenced, c.silenced)
	}
}

func TestBankOccupied(t *testing.T) {
	var b Bank
	b.Set(DMG, &fakeChip{})
	b.Set(PSG, &fakeChip{})
	got := b.Occupied()
	if len(got) != 2 || got[0] != PSG || got[1] != DMG {
		t.Errorf("occupied: got %v, want [psg dmg]", got)
	}
	b.Set(PSG, nil)
	if got := b.Occupied(); len(got) != 1 {
		t.Errorf("occupied after clear: got %v", got)
	}
}

func TestParseID(t *testing.T) {
	for id := PSG; id < NumSlots; id++ {
		got, err := ParseID(id.String())
		if err != nil || got != id {
			t.Errorf("ParseID(%q): got %v, %v", id.String(), got, err)
		}
	}
	if _, err := ParseID("sid"); err == nil {
		t.Error("ParseID(sid): expected error")
	}
}
