// Package process defines the kernel's process record: an owned stack, an
// owned trap frame, and a scheduling state. There is no process-exit path
// (spec.md §9 open question), processes live until the kernel restarts.
package process

import (
	"unsafe"

	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

// ID identifies a process. Zero is never assigned (the scheduler's last_id
// starts at 0 and hands out last_id+1, per original_source).
type ID uint64

// StackSize is the fixed size of a process's owned stack, grounded on
// teacher's KERNEL_STACK_SIZE/INITIAL_STACK_SIZE constants scaled down to a
// per-process size suitable for many concurrent user processes.
const StackSize = 16 * 1024

// PollFunc is the predicate a Waiting process is re-evaluated with on each
// scheduling pass. It inspects and may mutate the process (e.g. to write
// its syscall return register) and reports whether the wait is over.
type PollFunc func(p *Process) bool

func pollNop(*Process) bool { return false }

// StateKind tags the three cases a process's scheduling state can be in.
type StateKind int

const (
	Ready StateKind = iota
	Running
	Waiting
)

// State is the tagged scheduling-state variant. Poll is only meaningful
// when Kind == Waiting.
type State struct {
	Kind StateKind
	Poll PollFunc
}

// ReadyState, RunningState build the two state-less variants.
func ReadyState() State   { return State{Kind: Ready} }
func RunningState() State { return State{Kind: Running} }

// WaitingState builds a Waiting variant holding poll.
func WaitingState(poll PollFunc) State {
	return State{Kind: Waiting, Poll: poll}
}

// Process is the complete record of one schedulable process: its owned
// stack, its owned trap frame, and its scheduling state.
type Process struct {
	TrapFrame trapframe.Frame
	Stack     []byte
	State     State
}

// New allocates a process with a zeroed trap frame, a zeroed stack of
// StackSize bytes, and state Ready.
func New() *Process {
	return &Process{
		Stack: make([]byte, StackSize),
		State: ReadyState(),
	}
}

// stackTop returns the initial stack pointer: the stack grows down from the
// high end of the owned region.
func (p *Process) stackTop() uint64 {
	if len(p.Stack) == 0 {
		return 0
	}
	base := uintptr(unsafe.Pointer(&p.Stack[0]))
	return uint64(base) + uint64(len(p.Stack))
}

// Create builds a new process whose trap frame is primed to begin execution
// at entry: SP set to the top of its owned stack, PC set to entry.
func Create(entry uint64) *Process {
	p := New()
	p.TrapFrame.StackPointer = p.stackTop()
	p.TrapFrame.ProgramCounter = entry
	return p
}

// IsReady reports whether p is ready to be scheduled (spec.md §4.3).
//
// Ready always returns true. Running always returns false. Waiting
// temporarily detaches the poll predicate (swapping in a no-op) so the
// predicate can inspect and mutate p without aliasing itself, invokes it,
// and reattaches the original predicate only if the state is still
// Waiting; if the predicate itself transitioned p to Ready, the detached
// no-op is intentionally dropped rather than reattached (spec.md §9).
func (p *Process) IsReady() bool {
	switch p.State.Kind {
	case Ready:
		return true
	case Running:
		return false
	}

	poll := p.State.Poll
	p.State.Poll = pollNop

	ret := poll(p)

	if p.State.Kind == Waiting {
		p.State.Poll = poll
	}
	return ret
}
