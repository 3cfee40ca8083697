// Package syndrome decodes the AArch64 Exception Syndrome Register (ESR)
// into a tagged classification, per ARM ARM D1.10.4. Decode never panics:
// an unrecognised exception class maps to Other(esr).
package syndrome

// Fault classifies the kind of instruction/data abort, decoded from ISS
// bits 2:5.
type Fault int

const (
	FaultAddressSize Fault = iota
	FaultTranslation
	FaultAccessFlag
	FaultPermission
	FaultAlignment
	FaultTlbConflict
	FaultOther
)

func (f Fault) String() string {
	switch f {
	case FaultAddressSize:
		return "AddressSize"
	case FaultTranslation:
		return "Translation"
	case FaultAccessFlag:
		return "AccessFlag"
	case FaultPermission:
		return "Permission"
	case FaultAlignment:
		return "Alignment"
	case FaultTlbConflict:
		return "TlbConflict"
	default:
		return "Other"
	}
}

// faultFromISS decodes a Fault from ISS bits 2:5, as used by both
// InstructionAbort and DataAbort.
func faultFromISS(iss uint32) Fault {
	f := (iss & 0x3C) >> 2
	switch f {
	case 0b0000:
		return FaultAddressSize
	case 0b0001:
		return FaultTranslation
	case 0b0010:
		return FaultAccessFlag
	case 0b0011:
		return FaultPermission
	case 0b1100:
		return FaultTlbConflict
	case 0b1000:
		return FaultAlignment
	default:
		return FaultOther
	}
}

// levelFromISS decodes the fault level from ISS bits 0:1.
func levelFromISS(iss uint32) uint8 {
	return uint8(iss & 0x3)
}

// Class tags the kind of exception a Syndrome represents.
type Class int

const (
	Unknown Class = iota
	WfiWfe
	McrMrc
	McrrMrrc
	LdcStc
	SimdFp
	Vmrs
	Mrrc
	IllegalExecutionState
	Svc
	Hvc
	Smc
	MsrMrsSystem
	InstructionAbort
	PCAlignmentFault
	DataAbort
	SpAlignmentFault
	TrappedFpu
	SError
	Breakpoint
	Step
	Watchpoint
	Brk
	Other
)

// Syndrome is the normalised, tagged decoding of an ESR value. Only the
// fields relevant to Class are meaningful; the rest are zero.
type Syndrome struct {
	Class Class
	// Imm holds the low-16-bit immediate for Svc, Hvc, Smc, Brk.
	Imm uint16
	// Kind/Level decode InstructionAbort and DataAbort ISS bits.
	Kind  Fault
	Level uint8
	// Raw holds the original ESR value, always set, and is the only
	// meaningful field for Class == Other.
	Raw uint32
}

// Decode normalises a raw ESR value into a Syndrome. It never panics:
// unrecognised exception classes map to Class == Other.
func Decode(esr uint32) Syndrome {
	ec := esr >> 26
	iss := esr & 0x00FFFFFF

	switch ec {
	case 0b000000:
		return Syndrome{Class: Unknown, Raw: esr}
	case 0b000001:
		return Syndrome{Class: WfiWfe, Raw: esr}
	case 0b000011, 0b000101:
		return Syndrome{Class: McrMrc, Raw: esr}
	case 0b000100:
		return Syndrome{Class: McrrMrrc, Raw: esr}
	case 0b000110:
		return Syndrome{Class: LdcStc, Raw: esr}
	case 0b000111:
		return Syndrome{Class: SimdFp, Raw: esr}
	case 0b001000:
		return Syndrome{Class: Vmrs, Raw: esr}
	case 0b001100:
		return Syndrome{Class: Mrrc, Raw: esr}
	case 0b001110:
		return Syndrome{Class: IllegalExecutionState, Raw: esr}
	case 0b010001, 0b010101:
		return Syndrome{Class: Svc, Imm: uint16(iss & 0xFFFF), Raw: esr}
	case 0b010010, 0b010110:
		return Syndrome{Class: Hvc, Imm: uint16(iss & 0xFFFF), Raw: esr}
	case 0b010011, 0b010111:
		return Syndrome{Class: Smc, Imm: uint16(iss & 0xFFFF), Raw: esr}
	case 0b011000:
		return Syndrome{Class: MsrMrsSystem, Raw: esr}
	case 0b100000, 0b100001:
		return Syndrome{Class: InstructionAbort, Kind: faultFromISS(iss), Level: levelFromISS(iss), Raw: esr}
	case 0b100010:
		return Syndrome{Class: PCAlignmentFault, Raw: esr}
	case 0b100100, 0b100101:
		return Syndrome{Class: DataAbort, Kind: faultFromISS(iss), Level: levelFromISS(iss), Raw: esr}
	case 0b100110:
		return Syndrome{Class: SpAlignmentFault, Raw: esr}
	case 0b101000, 0b101100:
		return Syndrome{Class: TrappedFpu, Raw: esr}
	case 0b101111:
		return Syndrome{Class: SError, Raw: esr}
	case 0b110000, 0b110001:
		return Syndrome{Class: Breakpoint, Raw: esr}
	case 0b110010, 0b110011:
		return Syndrome{Class: Step, Raw: esr}
	case 0b110100, 0b110101:
		return Syndrome{Class: Watchpoint, Raw: esr}
	case 0b111000, 0b111010, 0b111100:
		return Syndrome{Class: Brk, Imm: uint16(iss & 0xFFFF), Raw: esr}
	default:
		return Syndrome{Class: Other, Raw: esr}
	}
}
