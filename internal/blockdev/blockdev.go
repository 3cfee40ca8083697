// Package blockdev defines the 512-byte sector block device interface the
// kernel's (eventual) filesystem layer reads from, and the SD-card backed
// implementation's error mapping (original_source: kernel/src/fs/sd.rs).
package blockdev

import (
	"errors"
	"fmt"
)

// SectorSize is the fixed sector size this device operates in.
const SectorSize = 512

// Sentinel errors, checkable with errors.Is, mirroring the io.ErrorKind
// values original_source maps SD controller failures onto.
var (
	ErrInvalidInput = errors.New("blockdev: invalid input")
	ErrTimedOut     = errors.New("blockdev: read timed out")
	ErrOther        = errors.New("blockdev: controller error")
	ErrReadOnly     = errors.New("blockdev: device is read-only")
)

// Controller is the low-level SD controller surface this package wraps,
// satisfied by a real MMIO/EMMC driver (not included: this kernel has no
// SD card initialization sequence of its own yet) or a fake for tests.
type Controller interface {
	// Init initializes the controller. err is 0 on success, -1 on
	// timeout, or -2 on a command-sequencing failure.
	Init() (err int32)
	// ReadSector reads sector n into buf, which is always >= SectorSize.
	// read is the number of bytes actually read (0 on failure); sdErr is
	// the controller's last recorded error code, meaningful only when
	// read == 0.
	ReadSector(n int32, buf []byte) (read int32, sdErr int64)
}

// SD is a handle to an SD card controller, implementing read-only sector
// access.
type SD struct {
	Controller Controller
}

// Open initializes the controller and returns a ready handle.
func Open(c Controller) (*SD, error) {
	switch c.Init() {
	case -1:
		return nil, ErrTimedOut
	case -2:
		return nil, ErrOther
	default:
		return &SD{Controller: c}, nil
	}
}

// ReadSector reads sector n into buf, which must be at least SectorSize
// bytes. n must not exceed the maximum value of a signed 32-bit integer,
// both constraints come directly from the underlying C sd_readsector ABI.
func (d *SD) ReadSector(n uint64, buf []byte) (int, error) {
	if len(buf) < SectorSize || n > 2147483647 {
		return 0, fmt.Errorf("%w: n=%d buf=%d bytes", ErrInvalidInput, n, len(buf))
	}

	read, sdErr := d.Controller.ReadSector(int32(n), buf)
	switch {
	case read > 0:
		return int(read), nil
	case read == 0 && sdErr == -1:
		return 0, ErrTimedOut
	default:
		return 0, ErrOther
	}
}

// WriteSector always fails: this kernel's SD/filesystem stack is read-only
// (original_source's write_sector is simply unimplemented; a read-only
// device returning a typed error to its caller is more useful to a kernel
// client than a panic, since "read-only medium" is an expected, not an
// invariant-violating, condition).
func (d *SD) WriteSector(n uint64, buf []byte) (int, error) {
	return 0, ErrReadOnly
}
