// Package systimer drives the ARM generic timer's virtual counter (CNTV_*
// system registers), providing the microsecond clock and one-shot
// re-arming the scheduler and sleep syscall depend on.
package systimer

// Registers is the narrow system-register surface this driver needs.
// CounterValue reads the free-running 64-bit virtual counter (CNTVCT_EL0);
// Frequency reads its tick rate in Hz (CNTFRQ_EL0); SetCompare programs
// the next compare value the counter must reach to fire (CNTV_CVAL_EL0);
// SetControl enables/masks the timer (CNTV_CTL_EL0).
type Registers interface {
	CounterValue() uint64
	Frequency() uint32
	SetCompare(value uint64)
	SetControl(enable bool)
}

// Timer provides a monotonic microsecond clock and one-shot re-arming,
// built on the ARM generic virtual timer.
type Timer struct {
	Registers Registers
}

// Init enables the virtual timer with interrupts unmasked.
func (t *Timer) Init() {
	t.Registers.SetControl(true)
}

// NowMicros returns the current virtual counter value converted to
// microseconds, satisfying internal/syscall.Clock.
func (t *Timer) NowMicros() uint64 {
	freq := uint64(t.Registers.Frequency())
	if freq == 0 {
		return 0
	}
	return t.Registers.CounterValue() * 1_000_000 / freq
}

// TickIn arms the timer to fire microseconds from now, satisfying
// internal/irq.Timer.
func (t *Timer) TickIn(microseconds uint32) {
	freq := uint64(t.Registers.Frequency())
	ticks := freq * uint64(microseconds) / 1_000_000
	t.Registers.SetCompare(t.Registers.CounterValue() + ticks)
}
