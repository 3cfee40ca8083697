package kernel

import (
	"testing"
	"unsafe"

	"github.com/PeterCxy/cs140e-os/internal/process"
	"github.com/PeterCxy/cs140e-os/internal/trapframe"
)

func uintptrOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestHeapUsableAfterInit(t *testing.T) {
	var h Heap
	buf := make([]byte, 4096)
	start := uintptrOf(buf)
	h.InitHeap(start, start+uintptr(len(buf)))

	ptr, err := h.Alloc(16, 8)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if ptr == 0 {
		t.Fatal("Alloc returned null")
	}
	h.Dealloc(ptr, 16, 8)
}

func TestHeapUninitializedReturnsError(t *testing.T) {
	var h Heap
	if _, err := h.Alloc(16, 8); err == nil {
		t.Fatal("Alloc before InitHeap must return an error")
	}
}

func TestSchedulerUninitializedPanics(t *testing.T) {
	var g Scheduler
	defer func() {
		if recover() == nil {
			t.Fatal("Add before Start must panic")
		}
	}()
	g.Add(process.New())
}

func TestSchedulerUsableAfterStart(t *testing.T) {
	var g Scheduler
	g.Start(nil)

	p := process.New()
	id, ok := g.Add(p)
	if !ok || id != 1 {
		t.Fatalf("Add = %v,%v want 1,true", id, ok)
	}

	var tf trapframe.Frame
	if _, ok := g.Switch(process.ReadyState(), &tf); !ok {
		t.Fatal("Switch with a current process should succeed")
	}
}

func TestCritSectionCallsIRQHooksAroundWork(t *testing.T) {
	var h Heap
	var order []string
	h.crit.DisableIRQs = func() { order = append(order, "disable") }
	h.crit.EnableIRQs = func() { order = append(order, "enable") }

	buf := make([]byte, 64)
	h.InitHeap(uintptrOf(buf), uintptrOf(buf)+uintptr(len(buf)))

	if len(order) != 2 || order[0] != "disable" || order[1] != "enable" {
		t.Fatalf("IRQ hook order = %v, want [disable enable]", order)
	}
}
