// Package irq dispatches pending hardware interrupts to their handlers.
// Only the timer interrupt drives scheduling; every other source is
// ignored without fault (Handle returns without touching the controller),
// since this kernel has no drivers for them yet (spec.md §4.4).
package irq

import (
	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

// Source identifies a BCM2837 interrupt line. Values match the controller's
// bit positions directly (original_source: pi/src/interrupt.rs Interrupt).
type Source int

const (
	Timer1 Source = 1
	Timer3 Source = 3
	Usb    Source = 9
	Gpio0  Source = 49
	Gpio1  Source = 50
	Gpio2  Source = 51
	Gpio3  Source = 52
	Uart   Source = 57
)

// Tick is the scheduling quantum, in microseconds (original_source:
// process::scheduler::TICK).
const Tick = 2 * 1000 * 1000

// Scheduler is the subset of internal/kernel.Scheduler that irq depends on.
type Scheduler interface {
	Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool)
}

// Timer is the subset of internal/systimer.Timer that irq depends on.
type Timer interface {
	TickIn(microseconds uint32)
}

// Dispatcher routes a pending interrupt to its handler.
type Dispatcher struct {
	Scheduler Scheduler
	Timer     Timer
}

// Handle processes one pending interrupt. For Timer1, it preempts the
// current process (marking it Ready, since it was interrupted rather than
// having blocked voluntarily) and re-arms the timer for the next tick. All
// other sources are ignored: this kernel has no handlers for USB, GPIO, or
// UART interrupts.
func (d *Dispatcher) Handle(src Source, tf *trapframe.Frame) {
	if src != Timer1 {
		return
	}
	if _, ok := d.Scheduler.Switch(process.ReadyState(), tf); !ok {
		panic("irq: timer fired with no process running")
	}
	d.Timer.TickIn(Tick)
}
