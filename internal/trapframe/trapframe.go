// Package trapframe defines the fixed, assembly-compatible layout of a
// preempted CPU context. The field order and sizes are load-bearing: the
// exception vector's save/restore assembly indexes this structure by byte
// offset, so it must never be reordered.
package trapframe

// LinkRegisterIndex is the general-register slot (x30, "general register
// index 1" using this frame's 1-based enumeration in spec.md) holding the
// EL1 return address across a context switch.
const LinkRegisterIndex = 1

// ReturnValueIndex is the general-register slot (x0 / "general register
// index 31" in spec.md's register count) used for syscall arguments and
// return values.
const ReturnValueIndex = 31

// Size is the exact byte size of Frame as laid out by the assembly
// save/restore code: 8 (SP) + 8 (TPIDR) + 8 (SPSR) + 8 (ELR) + 32*16 (FP
// regs) + 32*8 (GP regs) = 800 bytes.
const Size = 8 + 8 + 8 + 8 + 32*16 + 32*8

// Frame is a snapshot of a preempted process's CPU context.
//
// FPRegs holds 32 NEON/FP registers at 128 bits each, represented as two
// uint64 halves (Go has no native 128-bit integer type); GPRegs holds the
// 32 general-purpose 64-bit slots in descending register order
// (GPRegs[LinkRegisterIndex] is x30, GPRegs[ReturnValueIndex] is x0), with
// GPRegs[0] the reserved slot of the assembly layout.
type Frame struct {
	StackPointer  uint64
	ThreadID      uint64
	ProgramState  uint64
	ProgramCounter uint64
	FPRegs        [32][2]uint64
	GPRegs        [32]uint64
}

// LinkRegister returns the saved EL1 link register (x30).
func (f *Frame) LinkRegister() uint64 { return f.GPRegs[LinkRegisterIndex] }

// SetLinkRegister writes the EL1 link register (x30).
func (f *Frame) SetLinkRegister(v uint64) { f.GPRegs[LinkRegisterIndex] = v }

// ReturnValue returns the syscall argument/return-value slot (x0).
func (f *Frame) ReturnValue() uint64 { return f.GPRegs[ReturnValueIndex] }

// SetReturnValue writes the syscall argument/return-value slot (x0).
func (f *Frame) SetReturnValue(v uint64) { f.GPRegs[ReturnValueIndex] = v }
