// Package intctl drives the BCM2837 legacy interrupt controller: the
// enable/disable/pending register trio at offset 0xB200 from the
// peripheral base (original_source: pi/src/interrupt.rs).
package intctl

import "github.com/PeterCxy/cs140e-os/internal/irq"

// Registers is the narrow MMIO surface this driver needs. Implementations
// index registerNum/bitOffset exactly as computed by position(), so a real
// implementation need only provide raw 32-bit register read/write.
type Registers interface {
	ReadPending(registerNum int) uint32
	WriteEnable(registerNum int, mask uint32)
	WriteDisable(registerNum int, mask uint32)
}

// Controller enables, disables, and polls BCM2837 interrupt sources.
type Controller struct {
	Registers Registers
}

// position splits an interrupt source ID into its register index (0 or 1,
// since there are 64 source bits split across two 32-bit registers) and
// bit offset within that register.
func position(src irq.Source) (registerNum int, bitOffset uint) {
	id := uint(src)
	return int(id / 32), id % 32
}

// Enable unmasks src.
func (c *Controller) Enable(src irq.Source) {
	reg, bit := position(src)
	c.Registers.WriteEnable(reg, 1<<bit)
}

// Disable masks src.
func (c *Controller) Disable(src irq.Source) {
	reg, bit := position(src)
	c.Registers.WriteDisable(reg, 1<<bit)
}

// IsPending reports whether src currently has an interrupt pending.
func (c *Controller) IsPending(src irq.Source) bool {
	reg, bit := position(src)
	return c.Registers.ReadPending(reg)&(1<<bit) != 0
}
