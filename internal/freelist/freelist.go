// Package freelist implements the intrusive singly-linked free list the bin
// allocator threads through its own arena: each free block's first machine
// word is overwritten with the address of the next free block (or the null
// sentinel), so the list costs no memory beyond the blocks it tracks.
package freelist

import "unsafe"

// List is a singly-linked list of free block addresses. The zero value is an
// empty list. Not safe for concurrent use; callers serialize access (the bin
// allocator relies on the lock internal/kernel wraps around it).
type List struct {
	head uintptr
}

// Empty reports whether the list has no free blocks.
func (l *List) Empty() bool {
	return l.head == 0
}

// Push adds addr to the front of the list, writing the previous head into
// addr's first machine word.
func (l *List) Push(addr uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = l.head
	l.head = addr
}

// Pop removes and returns the address at the front of the list.
func (l *List) Pop() (addr uintptr, ok bool) {
	if l.head == 0 {
		return 0, false
	}
	addr = l.head
	l.head = *(*uintptr)(unsafe.Pointer(addr))
	return addr, true
}

// Peek returns the front address without removing it, or 0 if empty.
func (l *List) Peek() uintptr {
	return l.head
}

// Remove deletes addr from the list, wherever it sits. Reports whether addr
// was found. O(n) in list length, same as the original's node-scan.
func (l *List) Remove(addr uintptr) bool {
	if l.head == 0 {
		return false
	}
	if l.head == addr {
		l.head = *(*uintptr)(unsafe.Pointer(addr))
		return true
	}
	prev := l.head
	cur := *(*uintptr)(unsafe.Pointer(prev))
	for cur != 0 {
		if cur == addr {
			next := *(*uintptr)(unsafe.Pointer(cur))
			*(*uintptr)(unsafe.Pointer(prev)) = next
			return true
		}
		prev = cur
		cur = *(*uintptr)(unsafe.Pointer(cur))
	}
	return false
}

// Each calls fn for every address currently on the list, front to back.
// fn must not mutate the list; use Remove/Pop for that.
func (l *List) Each(fn func(addr uintptr)) {
	cur := l.head
	for cur != 0 {
		next := *(*uintptr)(unsafe.Pointer(cur))
		fn(cur)
		cur = next
	}
}

// Find returns the first address for which pred returns true, in list order.
func (l *List) Find(pred func(addr uintptr) bool) (uintptr, bool) {
	cur := l.head
	for cur != 0 {
		if pred(cur) {
			return cur, true
		}
		cur = *(*uintptr)(unsafe.Pointer(cur))
	}
	return 0, false
}
