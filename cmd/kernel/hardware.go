//go:build rpi3

// Hardware register bindings for the Raspberry Pi 3 (BCM2837) target.
// Adapted from teacher's kernel.go/uart_rpi.go/gic_qemu.go MMIO constant
// tables and mmio_write/mmio_read linkname primitives, retargeted at the
// BCM2837 legacy interrupt controller (this kernel has no GICv2 driver;
// the Pi 3 uses the BCM's own interrupt controller, not an ARM GIC).
package main

import (
	_ "unsafe" // for go:linkname

	"github.com/PeterCxy/cs140e-os/internal/gpio"
	"github.com/PeterCxy/cs140e-os/internal/intctl"
	"github.com/PeterCxy/cs140e-os/internal/systimer"
	"github.com/PeterCxy/cs140e-os/internal/uart"
)

//go:linkname mmio_write mmio_write
//go:nosplit
func mmio_write(reg uintptr, data uint32)

//go:linkname mmio_read mmio_read
//go:nosplit
func mmio_read(reg uintptr) uint32

//go:linkname delay delay
//go:nosplit
func delay(count int32)

const peripheralBase uintptr = 0x3F000000 // Raspberry Pi 3 (BCM2837)

const (
	gpioBase = peripheralBase + 0x200000
	gppud    = gpioBase + 0x94
	gppudclk = gpioBase + 0x98
	gpfsel0  = gpioBase + 0x00

	uart0Base = peripheralBase + 0x201000
	uart0DR   = uart0Base + 0x00
	uart0FR   = uart0Base + 0x18
	uart0IBRD = uart0Base + 0x24
	uart0FBRD = uart0Base + 0x28
	uart0LCRH = uart0Base + 0x2C
	uart0CR   = uart0Base + 0x30
	uart0IMSC = uart0Base + 0x38
	uart0ICR  = uart0Base + 0x44

	intBase        = peripheralBase + 0xB200
	intPending0    = intBase + 0x00
	intPending1    = intBase + 0x04
	intEnableIRQ0  = intBase + 0x10
	intEnableIRQ1  = intBase + 0x14
	intDisableIRQ0 = intBase + 0x1C
	intDisableIRQ1 = intBase + 0x20
)

type gpioRegisters struct{}

func (gpioRegisters) SetFunctionSelect(regIndex int, value uint32) {
	mmio_write(gpfsel0+uintptr(regIndex)*4, value)
}
func (gpioRegisters) FunctionSelect(regIndex int) uint32 {
	return mmio_read(gpfsel0 + uintptr(regIndex)*4)
}
func (gpioRegisters) SetPullMode(mode uint32)         { mmio_write(gppud, mode) }
func (gpioRegisters) SetPullClock(regIndex int, mask uint32) {
	mmio_write(gppudclk+uintptr(regIndex)*4, mask)
}
func (gpioRegisters) Delay(cycles int32) { delay(cycles) }

type uartRegisters struct{}

func (uartRegisters) SetControl(v uint32)                { mmio_write(uart0CR, v) }
func (uartRegisters) SetClear(v uint32)                  { mmio_write(uart0ICR, v) }
func (uartRegisters) SetBaudRateIntegerPart(v uint32)    { mmio_write(uart0IBRD, v) }
func (uartRegisters) SetBaudRateFractionalPart(v uint32) { mmio_write(uart0FBRD, v) }
func (uartRegisters) SetLineControl(v uint32)            { mmio_write(uart0LCRH, v) }
func (uartRegisters) SetInterruptMask(v uint32)          { mmio_write(uart0IMSC, v) }
func (uartRegisters) FlagRegister() uint32               { return mmio_read(uart0FR) }
func (uartRegisters) WriteData(b byte)                   { mmio_write(uart0DR, uint32(b)) }
func (uartRegisters) ReadData() byte                     { return byte(mmio_read(uart0DR)) }

type intctlRegisters struct{}

func (intctlRegisters) ReadPending(registerNum int) uint32 {
	if registerNum == 0 {
		return mmio_read(intPending0)
	}
	return mmio_read(intPending1)
}
func (intctlRegisters) WriteEnable(registerNum int, mask uint32) {
	if registerNum == 0 {
		mmio_write(intEnableIRQ0, mask)
	} else {
		mmio_write(intEnableIRQ1, mask)
	}
}
func (intctlRegisters) WriteDisable(registerNum int, mask uint32) {
	if registerNum == 0 {
		mmio_write(intDisableIRQ0, mask)
	} else {
		mmio_write(intDisableIRQ1, mask)
	}
}

//go:linkname read_cntv_ctl_el0 read_cntv_ctl_el0
//go:nosplit
func read_cntv_ctl_el0() uint32

//go:linkname write_cntv_ctl_el0 write_cntv_ctl_el0
//go:nosplit
func write_cntv_ctl_el0(value uint32)

//go:linkname write_cntv_cval_el0 write_cntv_cval_el0
//go:nosplit
func write_cntv_cval_el0(value uint64)

//go:linkname read_cntvct_el0 read_cntvct_el0
//go:nosplit
func read_cntvct_el0() uint64

//go:linkname read_cntfrq_el0 read_cntfrq_el0
//go:nosplit
func read_cntfrq_el0() uint32

type timerRegisters struct{}

func (timerRegisters) CounterValue() uint64    { return read_cntvct_el0() }
func (timerRegisters) Frequency() uint32       { return read_cntfrq_el0() }
func (timerRegisters) SetCompare(value uint64) { write_cntv_cval_el0(value) }
func (timerRegisters) SetControl(enable bool) {
	if enable {
		write_cntv_ctl_el0(1) // ENABLE, IMASK clear
	} else {
		write_cntv_ctl_el0(0)
	}
}

func newGPIO() *gpio.Controller       { return &gpio.Controller{Registers: gpioRegisters{}} }
func newUART(g *gpio.Controller) *uart.Device {
	return &uart.Device{Registers: uartRegisters{}, GPIO: g}
}
func newIntCtl() *intctl.Controller { return &intctl.Controller{Registers: intctlRegisters{}} }
func newTimer() *systimer.Timer     { return &systimer.Timer{Registers: timerRegisters{}} }
