package blockdev

import (
	"errors"
	"testing"
)

type fakeController struct {
	initErr    int32
	read       int32
	sdErr      int64
	lastSector int32
}

func (f *fakeController) Init() int32 { return f.initErr }
func (f *fakeController) ReadSector(n int32, buf []byte) (int32, int64) {
	f.lastSector = n
	return f.read, f.sdErr
}

func TestOpenPropagatesInitFailure(t *testing.T) {
	if _, err := Open(&fakeController{initErr: -1}); !errors.Is(err, ErrTimedOut) {
		t.Fatalf("Open with initErr -1 = %v, want ErrTimedOut", err)
	}
	if _, err := Open(&fakeController{initErr: -2}); !errors.Is(err, ErrOther) {
		t.Fatalf("Open with initErr -2 = %v, want ErrOther", err)
	}
	if _, err := Open(&fakeController{initErr: 0}); err != nil {
		t.Fatalf("Open with initErr 0 = %v, want nil", err)
	}
}

func TestReadSectorRejectsShortBuffer(t *testing.T) {
	sd, _ := Open(&fakeController{})
	buf := make([]byte, 511)
	if _, err := sd.ReadSector(0, buf); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short buffer = %v, want ErrInvalidInput", err)
	}
}

func TestReadSectorRejectsSectorTooLarge(t *testing.T) {
	sd, _ := Open(&fakeController{})
	buf := make([]byte, SectorSize)
	if _, err := sd.ReadSector(1<<32, buf); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("oversized sector = %v, want ErrInvalidInput", err)
	}
}

func TestReadSectorSuccess(t *testing.T) {
	ctrl := &fakeController{read: SectorSize}
	sd, _ := Open(ctrl)
	buf := make([]byte, SectorSize)
	n, err := sd.ReadSector(7, buf)
	if err != nil || n != SectorSize {
		t.Fatalf("ReadSector = %d,%v want %d,nil", n, err, SectorSize)
	}
	if ctrl.lastSector != 7 {
		t.Fatalf("controller saw sector %d, want 7", ctrl.lastSector)
	}
}

func TestReadSectorMapsTimeoutAndOtherErrors(t *testing.T) {
	sd, _ := Open(&fakeController{read: 0, sdErr: -1})
	buf := make([]byte, SectorSize)
	if _, err := sd.ReadSector(0, buf); !errors.Is(err, ErrTimedOut) {
		t.Fatalf("sdErr -1 = %v, want ErrTimedOut", err)
	}

	sd2, _ := Open(&fakeController{read: 0, sdErr: -99})
	if _, err := sd2.ReadSector(0, buf); !errors.Is(err, ErrOther) {
		t.Fatalf("sdErr -99 = %v, want ErrOther", err)
	}
}

func TestWriteSectorAlwaysFails(t *testing.T) {
	sd, _ := Open(&fakeController{})
	if _, err := sd.WriteSector(0, make([]byte, SectorSize)); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("WriteSector = %v, want ErrReadOnly", err)
	}
}
