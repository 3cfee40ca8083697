// Package syscall dispatches svc traps to their handlers. The ABI is: the
// svc immediate is the syscall number; arguments and the return value
// travel in the trap frame's general register 31 (original_source:
// traps/syscall.rs).
package syscall

import (
	"fmt"

	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

// Sleep is the only syscall number this kernel implements.
const Sleep uint16 = 1

// Clock is the subset of internal/systimer.Timer that syscall depends on.
type Clock interface {
	// NowMicros returns a monotonically increasing microsecond counter.
	NowMicros() uint64
}

// Scheduler is the subset of internal/kernel.Scheduler that syscall
// depends on.
type Scheduler interface {
	Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool)
}

// Dispatcher routes svc traps to their handlers.
type Dispatcher struct {
	Scheduler Scheduler
	Clock     Clock
}

// ErrUnknownSyscall is panicked for any syscall number this kernel does
// not implement, spec.md records unimplemented syscalls as a policy
// panic, not a recoverable error, since it indicates a user program built
// against an ABI this kernel doesn't support.
type ErrUnknownSyscall struct{ Number uint16 }

func (e ErrUnknownSyscall) Error() string {
	return fmt.Sprintf("syscall: unknown syscall number %d", e.Number)
}

// Handle dispatches one svc trap by syscall number.
func (d *Dispatcher) Handle(num uint16, tf *trapframe.Frame) {
	switch num {
	case Sleep:
		d.sleep(uint32(tf.ReturnValue()), tf)
	default:
		panic(ErrUnknownSyscall{Number: num})
	}
}

// sleep blocks the calling process until at least ms milliseconds have
// elapsed, then reports the approximate true elapsed time (in
// milliseconds) through the return-value register.
func (d *Dispatcher) sleep(ms uint32, tf *trapframe.Frame) {
	start := d.Clock.NowMicros()
	target := uint64(ms) * 1000

	poll := func(p *process.Process) bool {
		elapsed := d.Clock.NowMicros() - start
		if elapsed >= target {
			p.TrapFrame.SetReturnValue(elapsed / 1000)
			return true
		}
		return false
	}

	if _, ok := d.Scheduler.Switch(process.WaitingState(poll), tf); !ok {
		panic("syscall: sleep with no process running")
	}
}
