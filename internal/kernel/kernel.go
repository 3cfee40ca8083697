// Package kernel owns the process-wide singletons, the heap allocator and
// the scheduler, behind a critical section that also masks interrupts
// while held. The hardware-specific boot sequence lives in cmd/kernel.
package kernel

import (
	"sync"

	"github.com/PeterCxy/cs140e-os/internal/binalloc"
	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/sched"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

// critSection wraps a sync.Mutex with hooks to mask and unmask interrupts
// while the lock is held, mirroring original_source's Mutex<T>, which is
// itself built on disabling/enabling IRQs around a critical section rather
// than a pure spinlock (this machine never runs more than one hart).
//
// DisableIRQs/EnableIRQs default to no-ops so this package is usable from
// hosted tests; cmd/kernel wires them to the real DAIF mask
// instructions on boot.
type critSection struct {
	mu sync.Mutex

	DisableIRQs func()
	EnableIRQs  func()
}

func (c *critSection) lock() {
	if c.DisableIRQs != nil {
		c.DisableIRQs()
	}
	c.mu.Lock()
}

func (c *critSection) unlock() {
	c.mu.Unlock()
	if c.EnableIRQs != nil {
		c.EnableIRQs()
	}
}

// Heap is the global allocator, guarded by its own critical section. It
// must be initialized once via InitHeap before any Alloc/Dealloc call.
type Heap struct {
	crit critSection
	a    *binalloc.Allocator
}

// SetIRQHooks wires the functions used to mask/unmask interrupts around the
// heap's critical section. Called once during boot; left unset (no-op) in
// hosted tests.
func (h *Heap) SetIRQHooks(disable, enable func()) {
	h.crit.DisableIRQs = disable
	h.crit.EnableIRQs = enable
}

// ErrHeapUninitialized is returned by Alloc/Dealloc before InitHeap runs.
type ErrHeapUninitialized struct{}

func (ErrHeapUninitialized) Error() string { return "heap allocator uninitialized" }

// InitHeap installs the backing allocator for the region [start, end).
func (h *Heap) InitHeap(start, end uintptr) {
	h.crit.lock()
	defer h.crit.unlock()
	h.a = binalloc.New(start, end)
}

// Alloc allocates size bytes aligned to align, guarded by the heap's
// critical section.
func (h *Heap) Alloc(size, align uintptr) (uintptr, error) {
	h.crit.lock()
	defer h.crit.unlock()
	if h.a == nil {
		return 0, ErrHeapUninitialized{}
	}
	return h.a.Alloc(size, align)
}

// Dealloc returns a previously allocated block to the heap.
func (h *Heap) Dealloc(ptr, size, align uintptr) {
	h.crit.lock()
	defer h.crit.unlock()
	if h.a == nil {
		return
	}
	h.a.Dealloc(ptr, size, align)
}

// Scheduler is the process-wide scheduler wrapper, mirroring
// original_source's GlobalScheduler: an uninitialized wrapper around a
// lazily-created Scheduler, panicking if used before Start.
type Scheduler struct {
	crit critSection
	s    *sched.Scheduler
}

// SetIRQHooks wires the functions used to mask/unmask interrupts around the
// scheduler's critical section. Called once during boot; left unset (no-op)
// in hosted tests.
func (g *Scheduler) SetIRQHooks(disable, enable func()) {
	g.crit.DisableIRQs = disable
	g.crit.EnableIRQs = enable
}

// ErrSchedulerUninitialized is the panic value used when the scheduler is
// used before Start (spec.md's SchedulerUninitialized, which the spec
// mandates as a panic rather than an error return).
type ErrSchedulerUninitialized struct{}

func (ErrSchedulerUninitialized) Error() string { return "scheduler uninitialized" }

// Add adds a process to the scheduler's queue. Panics if called before
// Start, per spec.md's invariant that this is a programmer error, not a
// recoverable condition.
func (g *Scheduler) Add(p *process.Process) (process.ID, bool) {
	g.crit.lock()
	defer g.crit.unlock()
	if g.s == nil {
		panic(ErrSchedulerUninitialized{})
	}
	return g.s.Add(p)
}

// Switch performs a context switch through the global scheduler. Panics if
// called before Start.
func (g *Scheduler) Switch(newState process.State, tf *trapframe.Frame) (process.ID, bool) {
	g.crit.lock()
	defer g.crit.unlock()
	if g.s == nil {
		panic(ErrSchedulerUninitialized{})
	}
	return g.s.Switch(newState, tf)
}

// Start creates the backing Scheduler and returns it so the caller (the
// hardware-specific boot path in cmd/kernel) can enable the timer
// interrupt, create the first process, and restore its trap frame into
// the CPU, steps that require real assembly and are therefore not part
// of this portable package.
func (g *Scheduler) Start(waitForInterrupt func()) *sched.Scheduler {
	g.crit.lock()
	defer g.crit.unlock()
	s := sched.New()
	s.WaitForInterrupt = waitForInterrupt
	g.s = s
	return s
}
