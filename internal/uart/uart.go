// Package uart drives the BCM2837 PL011 UART: GPIO pull configuration,
// baud-rate/line-control setup, and blocking byte read/write (teacher:
// uartInit/uartPutc/uartGetc; original_source: pi/src/uart.rs MiniUart).
package uart

import "github.com/PeterCxy/cs140e-os/internal/gpio"

// TxPin, RxPin are the BCM2837 GPIO pin numbers wired to UART0 TXD0/RXD0.
const (
	TxPin uint8 = 14
	RxPin uint8 = 15
)

// Registers is the narrow MMIO surface this driver needs.
type Registers interface {
	SetControl(value uint32)
	SetClear(value uint32)
	SetBaudRateIntegerPart(value uint32)
	SetBaudRateFractionalPart(value uint32)
	SetLineControl(value uint32)
	SetInterruptMask(value uint32)
	FlagRegister() uint32
	WriteData(b byte)
	ReadData() byte
}

// flag register bits.
const (
	flagTxFull  = 1 << 5
	flagRxEmpty = 1 << 4
)

// Device is a blocking byte-oriented UART device.
type Device struct {
	Registers Registers
	GPIO      *gpio.Controller
}

// Init disables the pull resistors on the TX/RX pins, clears pending
// interrupts, sets the baud rate divisor, enables 8N1 framing with FIFOs,
// and enables the transmitter and receiver.
func (d *Device) Init() {
	d.Registers.SetControl(0)

	d.GPIO.DisablePull(TxPin, RxPin)

	d.Registers.SetClear(0x7FF)
	d.Registers.SetBaudRateIntegerPart(1)
	d.Registers.SetBaudRateFractionalPart(40)
	d.Registers.SetLineControl((1 << 4) | (1 << 5) | (1 << 6)) // FIFOs, 8 bits
	d.Registers.SetInterruptMask((1 << 1) | (1 << 4) | (1 << 5) | (1 << 6) |
		(1 << 7) | (1 << 8) | (1 << 9) | (1 << 10))
	d.Registers.SetControl((1 << 0) | (1 << 8) | (1 << 9)) // UARTEN, TXE, RXE
}

// WriteByte blocks until there is space in the transmit FIFO, then writes
// b.
func (d *Device) WriteByte(b byte) {
	for d.Registers.FlagRegister()&flagTxFull != 0 {
	}
	d.Registers.WriteData(b)
}

// ReadByte blocks until a byte is available in the receive FIFO, then
// returns it.
func (d *Device) ReadByte() byte {
	for d.Registers.FlagRegister()&flagRxEmpty != 0 {
	}
	return d.Registers.ReadData()
}
