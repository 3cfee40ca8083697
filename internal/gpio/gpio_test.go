package gpio

import "testing"

type fakeRegisters struct {
	fsel       [6]uint32
	pullMode   uint32
	pullClocks []struct {
		reg  int
		mask uint32
	}
	delays []int32
}

func (f *fakeRegisters) SetFunctionSelect(reg int, value uint32) { f.fsel[reg] = value }
func (f *fakeRegisters) FunctionSelect(reg int) uint32           { return f.fsel[reg] }
func (f *fakeRegisters) SetPullMode(mode uint32)                 { f.pullMode = mode }
func (f *fakeRegisters) SetPullClock(reg int, mask uint32) {
	f.pullClocks = append(f.pullClocks, struct {
		reg  int
		mask uint32
	}{reg, mask})
}
func (f *fakeRegisters) Delay(cycles int32) { f.delays = append(f.delays, cycles) }

func TestSetFunctionOnlyTouchesOwnBits(t *testing.T) {
	regs := &fakeRegisters{}
	regs.fsel[1] = 0b111 << 27 // pin 19 (in register 1) pre-set to something
	c := Controller{Registers: regs}

	c.SetFunction(14, Alt0) // pin 14: register 1, offset 12
	if got := (regs.fsel[1] >> 12) & 0b111; Function(got) != Alt0 {
		t.Fatalf("pin 14 field = %#o, want Alt0", got)
	}
	if (regs.fsel[1]>>27)&0b111 != 0b111 {
		t.Fatal("SetFunction must not disturb unrelated bit fields")
	}
}

func TestDisablePullSequencesModeThenClockThenClear(t *testing.T) {
	regs := &fakeRegisters{}
	c := Controller{Registers: regs}

	c.DisablePull(14, 15) // UART TX/RX pins, both in register 0

	if regs.pullMode != 0 {
		t.Fatalf("pull mode = %d, want 0 (disabled)", regs.pullMode)
	}
	if len(regs.delays) != 2 {
		t.Fatalf("delays = %v, want two delay calls", regs.delays)
	}
	if len(regs.pullClocks) != 2 {
		t.Fatalf("pull clock writes = %v, want strobe then clear", regs.pullClocks)
	}
	wantMask := uint32(1<<14 | 1<<15)
	if regs.pullClocks[0].reg != 0 || regs.pullClocks[0].mask != wantMask {
		t.Fatalf("strobe write = %+v, want reg 0 mask %#x", regs.pullClocks[0], wantMask)
	}
	if regs.pullClocks[1].mask != 0 {
		t.Fatalf("clear write mask = %#x, want 0", regs.pullClocks[1].mask)
	}
}
