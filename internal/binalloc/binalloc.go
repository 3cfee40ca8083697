// Package binalloc implements the size-class ("bin") heap allocator: a
// power-of-two free-list allocator with adjacent-buddy coalescing and a
// wilderness bump region, serving as the kernel-wide allocator before any
// higher-level abstraction exists.
//
// Bin i holds blocks of exactly 2^(i+3) bytes (bin 0 = 8 bytes). A block's
// first machine word is the intrusive freelist.List link while it is free.
package binalloc

import (
	"fmt"

	"github.com/PeterCxy/cs140e-os/internal/freelist"
	"github.com/PeterCxy/cs140e-os/internal/memutil"
)

// maxBins bounds the fixed bin array the same way the Rust original's
// [LinkedList; 63 - 2] did: one bin per doubling of a 64-bit address space,
// minus the three smallest (1, 2, 4 byte) classes we never hand out.
const maxBins = 63 - 2

// ErrorKind distinguishes allocator failure modes (spec.md §7).
type ErrorKind int

const (
	// Exhausted means no free block and the wilderness can't grow.
	Exhausted ErrorKind = iota
	// Unsupported means a precondition (power-of-two alignment, a size
	// within the supported bin range) was violated.
	Unsupported
)

// Error is returned by Alloc. It carries enough of the failed request to
// let a caller log or retry with different parameters.
type Error struct {
	Kind   ErrorKind
	Size   uintptr
	Align  uintptr
	Reason string
}

func (e *Error) Error() string {
	switch e.Kind {
	case Exhausted:
		return fmt.Sprintf("binalloc: exhausted (size=%d align=%d)", e.Size, e.Align)
	default:
		return fmt.Sprintf("binalloc: unsupported: %s (size=%d align=%d)", e.Reason, e.Size, e.Align)
	}
}

// Allocator is a single-owner bin allocator over the arena [freeStart,
// freeEnd). Concurrent access requires an external lock (internal/kernel
// wraps the global instance in one that also masks interrupts).
type Allocator struct {
	bins      [maxBins]freelist.List
	binNum    int
	freeStart uintptr
	freeEnd   uintptr
}

// New creates an allocator over the arena [start, end).
func New(start, end uintptr) *Allocator {
	return &Allocator{
		binNum:    int(memutil.Log2Ceil(end-start)) - 3,
		freeStart: start,
		freeEnd:   end,
	}
}

func calcBinSize(bin int) uintptr {
	return 1 << (uint(bin) + 3)
}

func binIndexForSize(size uintptr) int {
	lg := memutil.Log2Ceil(size)
	if lg < 3 {
		lg = 3
	}
	return int(lg) - 3
}

// Alloc returns an address aligned to align, pointing to at least size bytes
// of uninitialised memory. align must be a power of two and size must be >
// 0; violations are the caller's bug in the original and are reported here
// as Unsupported rather than risking undefined behavior.
func (a *Allocator) Alloc(size, align uintptr) (uintptr, error) {
	if !memutil.IsPowerOfTwo(align) {
		return 0, &Error{Kind: Unsupported, Size: size, Align: align, Reason: "alignment must be a power of two"}
	}
	if size == 0 {
		return 0, &Error{Kind: Unsupported, Size: size, Align: align, Reason: "size must be greater than zero"}
	}

	binIndex := binIndexForSize(size)
	if binIndex > a.binNum {
		return 0, &Error{Kind: Exhausted, Size: size, Align: align}
	}
	if binIndex == a.binNum {
		return 0, &Error{Kind: Unsupported, Size: size, Align: align, Reason: "request too large for any bin"}
	}

	binSize := calcBinSize(binIndex)

	// Scan bins binIndex..binNum for the first block satisfying alignment,
	// smallest bin first, then list order.
	for idx := binIndex; idx < a.binNum; idx++ {
		addr, ok := a.bins[idx].Find(func(addr uintptr) bool { return addr%align == 0 })
		if !ok {
			continue
		}
		a.bins[idx].Remove(addr)
		if idx != binIndex {
			a.splitFreeMemory(addr+binSize, idx, binIndex)
		}
		return addr, nil
	}

	return a.wildernessAlloc(binSize, align, size)
}

// splitFreeMemory pushes the leftover of a block taken from origBin, after
// carving out a binIndex-sized allocation from its front, onto bins
// startBin..origBin-1 as a cascade of progressively larger fragments.
func (a *Allocator) splitFreeMemory(start uintptr, origBin, startBin int) {
	curStart := start
	for bin := startBin; bin < origBin; bin++ {
		a.bins[bin].Push(curStart)
		curStart += calcBinSize(bin)
	}
}

func (a *Allocator) wildernessAlloc(binSize, align, origSize uintptr) (uintptr, error) {
	aligned := memutil.AlignUp(a.freeStart, align)
	if aligned >= a.freeEnd || a.freeEnd-aligned < binSize {
		return 0, &Error{Kind: Exhausted, Size: origSize, Align: align}
	}
	a.freeStart = aligned + binSize
	return aligned, nil
}

// Dealloc returns a block previously returned by Alloc with the same
// (size, align) back to its bin, coalescing with an adjacent free buddy
// when one exists.
func (a *Allocator) Dealloc(ptr, size, _ uintptr) {
	binIndex := binIndexForSize(size)
	if binIndex >= a.binNum {
		panic("binalloc: dealloc of a block larger than any bin ever handed out")
	}
	a.coalesceInsert(binIndex, ptr)
}

func (a *Allocator) coalesceInsert(binIndex int, chunk uintptr) {
	if binIndex < a.binNum-1 {
		blockSize := calcBinSize(binIndex)
		neighbour, ok := a.bins[binIndex].Find(func(addr uintptr) bool {
			return (addr > chunk && addr-chunk == blockSize) || (addr < chunk && chunk-addr == blockSize)
		})
		if ok {
			mergeAddr := chunk
			if neighbour < chunk {
				mergeAddr = neighbour
			}
			a.bins[binIndex].Remove(neighbour)
			a.coalesceInsert(binIndex+1, mergeAddr)
			return
		}
	}
	a.bins[binIndex].Push(chunk)
}

// BinCount returns the number of active bins, for diagnostics/tests.
func (a *Allocator) BinCount() int { return a.binNum }

// FreeStart returns the current wilderness bump pointer, for tests.
func (a *Allocator) FreeStart() uintptr { return a.freeStart }
