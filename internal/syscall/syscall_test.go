package syscall

import (
	"testing"

	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

type fakeClock struct{ now uint64 }

func (c *fakeClock) NowMicros() uint64 { return c.now }

type captureScheduler struct {
	state process.State
	ok    bool
}

func (c *captureScheduler) Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool) {
	c.state = newState
	if !c.ok {
		return 0, false
	}
	return 1, true
}

func TestSleepBlocksUntilElapsedThenReturnsElapsedMillis(t *testing.T) {
	clock := &fakeClock{now: 1000}
	sched := &captureScheduler{ok: true}
	d := Dispatcher{Scheduler: sched, Clock: clock}

	var tf trapframe.Frame
	tf.SetReturnValue(50) // sleep(50ms)
	d.Handle(Sleep, &tf)

	if sched.state.Kind != process.Waiting {
		t.Fatalf("state = %v, want Waiting", sched.state.Kind)
	}

	p := process.New()
	if sched.state.Poll(p) {
		t.Fatal("poll should not fire before the target time has elapsed")
	}

	clock.now += 50 * 1000
	if !sched.state.Poll(p) {
		t.Fatal("poll should fire once the target time has elapsed")
	}
	if got := p.TrapFrame.ReturnValue(); got != 50 {
		t.Fatalf("elapsed ms written = %d, want 50", got)
	}
}

func TestUnknownSyscallPanics(t *testing.T) {
	sched := &captureScheduler{ok: true}
	clock := &fakeClock{}
	d := Dispatcher{Scheduler: sched, Clock: clock}

	defer func() {
		if recover() == nil {
			t.Fatal("an unknown syscall number must panic")
		}
	}()
	var tf trapframe.Frame
	d.Handle(99, &tf)
}

func TestSleepWithNoCurrentProcessPanics(t *testing.T) {
	sched := &captureScheduler{ok: false}
	clock := &fakeClock{}
	d := Dispatcher{Scheduler: sched, Clock: clock}

	defer func() {
		if recover() == nil {
			t.Fatal("sleep with no current process must panic")
		}
	}()
	var tf trapframe.Frame
	d.Handle(Sleep, &tf)
}
