// Package gpio drives the BCM2837 GPIO function-select and pull-resistor
// registers (original_source: pi/src/gpio.rs; teacher's uartInit GPPUD
// sequencing).
package gpio

// Function is an alternate function a pin can be configured for.
type Function uint8

const (
	Input  Function = 0b000
	Output Function = 0b001
	Alt0   Function = 0b100
	Alt1   Function = 0b101
	Alt2   Function = 0b110
	Alt3   Function = 0b111
	Alt4   Function = 0b011
	Alt5   Function = 0b010
)

// Registers is the narrow MMIO surface this driver needs.
type Registers interface {
	SetFunctionSelect(regIndex int, value uint32)
	FunctionSelect(regIndex int) uint32
	SetPullMode(mode uint32)
	SetPullClock(regIndex int, mask uint32)
	Delay(cycles int32)
}

// Controller configures GPIO pin function and pull state.
type Controller struct {
	Registers Registers
}

// fselWhere returns the GPFSEL register index and the 3-bit field offset
// within it that controls pin.
func fselWhere(pin uint8) (regIndex int, bitOffset uint) {
	return int(pin / 10), uint(pin%10) * 3
}

// SetFunction configures pin for fn, read-modify-writing only the 3 bits
// that belong to it.
func (c *Controller) SetFunction(pin uint8, fn Function) {
	reg, offset := fselWhere(pin)
	cur := c.Registers.FunctionSelect(reg)
	cur &^= 0b111 << offset
	cur |= uint32(fn) << offset
	c.Registers.SetFunctionSelect(reg, cur)
}

// gpioWhere returns the register index and bit offset for the pull-clock
// registers (also shared by GPSET/GPCLR/GPLEV, 32 pins per register).
func gpioWhere(pin uint8) (regIndex int, bitOffset uint) {
	return int(pin / 32), uint(pin % 32)
}

// DisablePull disables the pull-up/down resistor on each of pins, using
// the BCM2837 GPPUD/GPPUDCLK0 clocking sequence: write the desired mode to
// PUD, wait, strobe the clock registers for the target pins, wait, then
// clear the clock registers that were strobed.
func (c *Controller) DisablePull(pins ...uint8) {
	c.Registers.SetPullMode(0)
	c.Registers.Delay(150)

	var masks [2]uint32
	for _, pin := range pins {
		reg, bit := gpioWhere(pin)
		masks[reg] |= 1 << bit
	}
	for reg, mask := range masks {
		if mask != 0 {
			c.Registers.SetPullClock(reg, mask)
		}
	}
	c.Registers.Delay(150)

	for reg, mask := range masks {
		if mask != 0 {
			c.Registers.SetPullClock(reg, 0)
		}
	}
}
