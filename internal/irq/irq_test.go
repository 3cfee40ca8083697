package irq

import (
	"testing"

	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

type fakeScheduler struct {
	switched bool
	newState process.State
	returnOK bool
}

func (f *fakeScheduler) Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool) {
	f.switched = true
	f.newState = newState
	if !f.returnOK {
		return 0, false
	}
	return 1, true
}

type fakeTimer struct {
	rearmed bool
	with    uint32
}

func (f *fakeTimer) TickIn(us uint32) {
	f.rearmed = true
	f.with = us
}

func TestTimer1SwitchesAndRearms(t *testing.T) {
	sched := &fakeScheduler{returnOK: true}
	timer := &fakeTimer{}
	d := Dispatcher{Scheduler: sched, Timer: timer}

	var tf trapframe.Frame
	d.Handle(Timer1, &tf)

	if !sched.switched {
		t.Fatal("Timer1 must trigger a scheduler switch")
	}
	if sched.newState.Kind != process.Ready {
		t.Fatalf("preempted process state = %v, want Ready", sched.newState.Kind)
	}
	if !timer.rearmed || timer.with != Tick {
		t.Fatalf("timer rearmed=%v with=%d, want true,%d", timer.rearmed, timer.with, Tick)
	}
}

func TestOtherSourcesIgnored(t *testing.T) {
	sched := &fakeScheduler{returnOK: true}
	timer := &fakeTimer{}
	d := Dispatcher{Scheduler: sched, Timer: timer}

	var tf trapframe.Frame
	for _, src := range []Source{Timer3, Usb, Gpio0, Gpio1, Gpio2, Gpio3, Uart} {
		d.Handle(src, &tf)
	}

	if sched.switched || timer.rearmed {
		t.Fatal("non-timer interrupts must not touch the scheduler or timer")
	}
}

func TestTimer1WithNoCurrentProcessPanics(t *testing.T) {
	sched := &fakeScheduler{returnOK: false}
	timer := &fakeTimer{}
	d := Dispatcher{Scheduler: sched, Timer: timer}

	defer func() {
		if recover() == nil {
			t.Fatal("Handle(Timer1) with no current process must panic")
		}
	}()
	var tf trapframe.Frame
	d.Handle(Timer1, &tf)
}
