// Package sched implements the round-robin preemptive process scheduler:
// a FIFO ready queue, a context switch that swaps trap frames with the
// live CPU state, and the wait/poll protocol for processes blocked on an
// event (spec.md §4.2).
package sched

import (
	"math"

	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

// Scheduler holds the ready queue and ID allocator. It is not safe for
// concurrent use on its own, internal/kernel wraps the process-wide
// instance in a lock that also masks interrupts, matching spec.md §5's
// "wrapped in a lock that disables interrupts" requirement.
type Scheduler struct {
	queue       []*process.Process
	current     *process.ID
	lastID      uint64
	idExhausted bool

	// WaitForInterrupt is called when a scheduling pass finds no ready
	// process. The zero value is a no-op, suitable for tests whose
	// predicates always eventually fire; the real kernel wires this to
	// the `wfi` instruction via internal/kernel.
	WaitForInterrupt func()
}

// New returns a Scheduler with an empty queue. lastID starts at 0, so the
// first process Added gets ID 1 (original_source: Scheduler::new sets
// last_id to Some(0); spec.md §9 records this numbering as preserved
// rather than "fixed").
func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) waitForInterrupt() {
	if s.WaitForInterrupt != nil {
		s.WaitForInterrupt()
	}
}

// Add assigns the next ID, writes it into the process's trap frame thread
// ID, and appends it to the ready queue. If the queue was empty, the new
// process becomes current. Returns false only once the 64-bit ID space is
// exhausted (spec.md §3, §7 SchedulerIdSpaceExhausted).
func (s *Scheduler) Add(p *process.Process) (process.ID, bool) {
	if s.idExhausted {
		return 0, false
	}

	newID := s.lastID + 1
	p.TrapFrame.ThreadID = uint64(newID)
	s.queue = append(s.queue, p)

	if newID == math.MaxUint64 {
		s.idExhausted = true
	}
	s.lastID = newID

	id := process.ID(newID)
	if len(s.queue) == 1 {
		s.current = &id
	}
	return id, true
}

// Switch performs a context switch (spec.md §4.2): the current process's
// state becomes newState, its trap frame is exchanged with tf, and it
// moves to the back of the queue. The queue is then scanned in order for
// the first ready process (spec.md §4.3), which is promoted to Running,
// has its trap frame exchanged into tf, and is moved to the front. Returns
// false only if there was no current process.
func (s *Scheduler) Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool) {
	if s.current == nil {
		return 0, false
	}

	// The EL1 link register for this exception handler must survive the
	// swap: it belongs to the handler, not to whichever process ends up
	// running next.
	linkReg := tf.LinkRegister()

	p := s.queue[0]
	s.queue = s.queue[1:]
	p.State = newState
	*tf, p.TrapFrame = p.TrapFrame, *tf
	s.queue = append(s.queue, p)
	s.current = nil

	for {
		for i, candidate := range s.queue {
			if !candidate.IsReady() {
				continue
			}
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)

			candidate.State = process.RunningState()
			candidate.TrapFrame.SetLinkRegister(linkReg)
			*tf, candidate.TrapFrame = candidate.TrapFrame, *tf

			s.queue = append([]*process.Process{candidate}, s.queue...)
			// After the swap, tf holds the candidate's frame; candidate.TrapFrame
			// now holds the outgoing frame.
			id := process.ID(tf.ThreadID)
			s.current = &id
			return id, true
		}
		s.waitForInterrupt()
	}
}

// Current returns the currently running process's ID, if any.
func (s *Scheduler) Current() (process.ID, bool) {
	if s.current == nil {
		return 0, false
	}
	return *s.current, true
}

// Len returns the number of processes known to the scheduler (Ready,
// Running or Waiting), for diagnostics and tests.
func (s *Scheduler) Len() int { return len(s.queue) }
