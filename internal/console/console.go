// Package console provides the kernel's single text I/O capability: a
// byte-oriented read/write boundary plus formatted output, guarded by a
// mutex so concurrent callers (e.g. a fault handler interrupting a
// regular kprintln) don't interleave bytes (original_source:
// kernel/src/console.rs Console/CONSOLE).
package console

import (
	"fmt"
	"sync"
)

// Device is the byte-oriented capability console is built on, satisfied
// by internal/uart.Device, and by anything else with the same shape for
// tests.
type Device interface {
	WriteByte(b byte)
	ReadByte() byte
}

// Console serializes access to a Device and exposes it as an io.Writer
// (via Write) and with fmt-style helpers, mirroring original_source's
// Console implementing both io::Write and fmt::Write over one MiniUart.
type Console struct {
	mu     sync.Mutex
	Device Device
}

// ReadByte reads one byte, blocking until available.
func (c *Console) ReadByte() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Device.ReadByte()
}

// WriteByte writes one byte.
func (c *Console) WriteByte(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Device.WriteByte(b)
}

// Write implements io.Writer, writing each byte of p in turn and
// translating '\n' to "\r\n" the way a serial terminal expects.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			c.Device.WriteByte('\r')
		}
		c.Device.WriteByte(b)
	}
	return len(p), nil
}

// Printf formats and writes to the console, the kernel-space analogue of
// original_source's kprint! macro.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c, format, args...)
}

// Println formats and writes to the console followed by a newline, the
// analogue of kprintln!.
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c, args...)
}
