package atags

import (
	"encoding/binary"
	"testing"
)

func appendTag(buf []byte, sizeWords, tagID uint32, payload []byte) []byte {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:], sizeWords)
	binary.LittleEndian.PutUint32(header[4:], tagID)
	buf = append(buf, header[:]...)
	buf = append(buf, payload...)
	return buf
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func TestWalkDecodesCoreMemCmdAndNone(t *testing.T) {
	var buf []byte

	corePayload := append(append(u32le(1), u32le(12)...), u32le(0xFF)...)
	buf = appendTag(buf, 5, tagCore, corePayload) // 2 header + 3 payload words

	memPayload := append(u32le(0x1000000), u32le(0)...)
	buf = appendTag(buf, 4, tagMem, memPayload) // 2 header + 2 payload words

	cmdPayload := []byte("console=ttyAMA0\x00") // 16 bytes = 4 words, already aligned
	cmdWords := uint32(2 + len(cmdPayload)/4)
	buf = appendTag(buf, cmdWords, tagCmdline, cmdPayload)

	buf = appendTag(buf, 2, tagNone, nil)

	entries := Walk(buf)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4: %+v", len(entries), entries)
	}
	if entries[0].Kind != KindCore || entries[0].Core.Flags != 1 || entries[0].Core.PageSizeBits != 12 {
		t.Fatalf("core entry = %+v", entries[0])
	}
	if entries[1].Kind != KindMem || entries[1].Mem.Size != 0x1000000 {
		t.Fatalf("mem entry = %+v", entries[1])
	}
	if entries[2].Kind != KindCmd || entries[2].Cmd != "console=ttyAMA0" {
		t.Fatalf("cmd entry = %+v", entries[2])
	}
	if entries[3].Kind != KindNone {
		t.Fatalf("last entry = %+v, want KindNone", entries[3])
	}
}

func TestWalkStopsAtUnrecognisedTag(t *testing.T) {
	var buf []byte
	buf = appendTag(buf, 2, 0xDEADBEEF, nil)
	buf = appendTag(buf, 2, tagNone, nil)

	entries := Walk(buf)
	if len(entries) != 0 {
		t.Fatalf("got %d entries, want 0 (walk must stop before the unknown tag)", len(entries))
	}
}

func TestWalkOnEmptyInputReturnsNoEntries(t *testing.T) {
	if entries := Walk(nil); len(entries) != 0 {
		t.Fatalf("got %d entries, want 0", len(entries))
	}
}
