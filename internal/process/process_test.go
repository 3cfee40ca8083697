package process

import "testing"

func TestNewProcessIsReadyWithOwnedStack(t *testing.T) {
	p := New()
	if p.State.Kind != Ready {
		t.Fatalf("new process state = %v, want Ready", p.State.Kind)
	}
	if len(p.Stack) != StackSize {
		t.Fatalf("stack size = %d, want %d", len(p.Stack), StackSize)
	}
	if !p.IsReady() {
		t.Fatal("Ready process must report IsReady() == true")
	}
}

func TestCreateSetsEntryAndStackPointer(t *testing.T) {
	const entry = uint64(0x80000)
	p := Create(entry)
	if p.TrapFrame.ProgramCounter != entry {
		t.Fatalf("ProgramCounter = %#x, want %#x", p.TrapFrame.ProgramCounter, entry)
	}
	if p.TrapFrame.StackPointer == 0 {
		t.Fatal("StackPointer must be set to the top of the owned stack")
	}
}

func TestRunningIsNeverReady(t *testing.T) {
	p := New()
	p.State = RunningState()
	if p.IsReady() {
		t.Fatal("a Running process must never report IsReady() == true")
	}
}

func TestWaitingPollsOnceAndReportsReadyOnTrue(t *testing.T) {
	p := New()
	calls := 0
	p.State = WaitingState(func(pr *Process) bool {
		calls++
		return true
	})
	if !p.IsReady() {
		t.Fatal("IsReady() should return true when poll fires")
	}
	if calls != 1 {
		t.Fatalf("poll called %d times, want 1", calls)
	}
	// Per spec.md §4.3, promoting to Running on dispatch is the caller's
	// responsibility, not IsReady's; the state is still Waiting here with
	// its predicate reattached since it never mutated State itself.
	if p.State.Kind != Waiting {
		t.Fatalf("state after a true poll (that didn't touch State itself) = %v, want Waiting", p.State.Kind)
	}
}

// Property 7: a Waiting process never transitions to Running on a pass
// where its poll returned false.
func TestWaitingStaysWaitingOnFalsePoll(t *testing.T) {
	p := New()
	p.State = WaitingState(func(pr *Process) bool { return false })
	if p.IsReady() {
		t.Fatal("IsReady() must be false when poll returns false")
	}
	if p.State.Kind != Waiting {
		t.Fatalf("state = %v, want still Waiting", p.State.Kind)
	}
}

// Documented open question (spec.md §9): if the predicate itself rewrites
// State to Ready, the detached no-op predicate is intentionally dropped
// rather than reattached.
func TestPollRewritingOwnStateDropsDetachedPredicate(t *testing.T) {
	p := New()
	p.State = WaitingState(func(pr *Process) bool {
		pr.State = ReadyState()
		return true
	})
	if !p.IsReady() {
		t.Fatal("IsReady() should return true")
	}
	if p.State.Kind != Ready {
		t.Fatalf("state = %v, want Ready (predicate rewrote its own state)", p.State.Kind)
	}
	if p.State.Poll != nil {
		t.Fatal("Poll must be nil/unset once state is Ready, not the detached no-op")
	}
}

// IsReady must not alias the predicate to itself: a poll that calls
// IsReady again (reentrant inspection) must see a no-op, not infinite
// recursion into itself.
func TestPollDoesNotAliasItself(t *testing.T) {
	p := New()
	var reentrantResult bool
	first := true
	p.State = WaitingState(func(pr *Process) bool {
		if first {
			first = false
			reentrantResult = pr.IsReady()
		}
		return false
	})
	p.IsReady()
	if reentrantResult {
		t.Fatal("reentrant IsReady() during poll should see the detached no-op (false), not itself")
	}
}
