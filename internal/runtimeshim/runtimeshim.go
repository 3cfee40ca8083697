//go:build rpi3

// Package runtimeshim bootstraps just enough of the Go runtime's internal
// state to run on bare metal with no operating system underneath it,
// wiring g0/m0 so the compiler-generated write barrier doesn't fault, and
// a minimal stack-growth path built on the kernel's own heap instead of an
// OS-backed mmap. None of this is portable or testable logic, it pokes
// fixed addresses derived from this kernel's linker script and must run
// on the real target, so it lives behind the rpi3 build tag (adapted from
// teacher's runtime_stub.go / stack_growth.go).
package runtimeshim

import "unsafe"

// Offsets into the Go runtime's g and m structs that gcWriteBarrier reads
// directly; these are ABI-internal and verified against the target Go
// toolchain's compiled output, not part of any public API.
const (
	offsetGM       = 48   // g.m
	offsetMWbBuf   = 200  // m.p.wbBuf, as gcWriteBarrier sees it
	offsetWbBufPtr = 5272 // wbBuf.next
	offsetWbBufEnd = 5280 // wbBuf.end
)

// Addresses fixed by this kernel's linker script (not part of this
// repository): g0 and m0 are placed at known offsets so the shim can find
// them without any runtime symbol table.
const (
	g0Addr           uintptr = 0x331a00
	m0Addr           uintptr = 0x332100
	wbBufStructAddr  uintptr = 0x600000
	wbBufRegionStart uintptr = 0x601000
	wbBufRegionSize  uintptr = 64 * 1024
)

//go:linkname writeMemory64 writeMemory64
//go:nosplit
func writeMemory64(addr uintptr, value uint64)

// InitWriteBarrier wires g0.m, m0's write-barrier buffer pointer, and the
// buffer region itself, so that code run before a full scheduler exists
// can still assign to heap-resident pointers without the write barrier
// dereferencing nil. Must run before any such assignment; the x28 = &g0
// register setup it depends on happens in assembly before this is called.
//
//go:nosplit
func InitWriteBarrier() {
	writeMemory64(g0Addr+offsetGM, uint64(m0Addr))
	writeMemory64(wbBufStructAddr+offsetWbBufPtr, uint64(wbBufRegionStart))
	writeMemory64(wbBufStructAddr+offsetWbBufEnd, uint64(wbBufRegionStart+wbBufRegionSize))
	writeMemory64(m0Addr+offsetMWbBuf, uint64(wbBufStructAddr))
}

// Stack growth constants, mirrored from the Go runtime's own stackMin and
// stackGuard so compiler-generated stack checks behave the
// way they would under the normal runtime.
const (
	stackMin   = 2048
	stackGuard = 928
)

// Stack tracks one goroutine-equivalent execution stack. This kernel runs
// a single Go-level execution context (the boot/interrupt-handling code);
// user processes under internal/process/internal/sched have their own,
// unrelated stacks and never go through this path.
type Stack struct {
	Low, High uintptr
	Size      uintptr
	guard     uintptr
	prev      *Stack
}

var kernelStack Stack

// InitKernelStack records the bounds of the kernel's initial,
// linker-reserved stack region. size == 0 marks it as the pre-allocated
// region rather than one obtained via Grow.
func InitKernelStack(low, high uintptr) {
	kernelStack = Stack{Low: low, High: high, guard: low + stackGuard}
}

// CurrentStack returns the kernel's single execution stack.
func CurrentStack() *Stack { return &kernelStack }

// Allocator is the narrow heap surface stack growth needs, satisfied by
// internal/kernel.Heap.
type Allocator interface {
	Alloc(size, align uintptr) (uintptr, error)
}

//go:linkname getStackPointer get_stack_pointer
//go:nosplit
func getStackPointer() uintptr

//go:linkname setStackPointer set_stack_pointer
//go:nosplit
func setStackPointer(sp uintptr)

// Grow doubles s's stack size (or starts it at initialSize if this is its
// first growth), copies the live portion onto the new region obtained
// from alloc, and repoints the stack pointer register at it. Returns
// false if the allocator is out of memory.
//
//go:nosplit
func Grow(s *Stack, alloc Allocator, initialSize uintptr) bool {
	newSize := s.Size * 2
	if newSize == 0 {
		newSize = initialSize
	}
	if newSize < stackMin {
		newSize = stackMin
	}

	newBase, err := alloc.Alloc(newSize, 16)
	if err != nil {
		return false
	}
	newTop := newBase + newSize

	currentSP := getStackPointer()
	if currentSP > s.High {
		return false
	}
	used := s.High - currentSP
	newSP := newTop - used

	copyDown(unsafe.Pointer(newSP), unsafe.Pointer(currentSP), used)

	s.prev = &Stack{Low: s.Low, High: s.High, Size: s.Size, guard: s.guard}
	s.Low = newBase
	s.High = newTop
	s.Size = newSize
	s.guard = newBase + stackGuard

	setStackPointer(newSP)
	return true
}

//go:nosplit
func copyDown(dst, src unsafe.Pointer, n uintptr) {
	d := (*[1 << 30]byte)(dst)[:n:n]
	s := (*[1 << 30]byte)(src)[:n:n]
	for i := uintptr(0); i < n; i++ {
		d[i] = s[i]
	}
}
