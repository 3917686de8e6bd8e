package arch

import (
	"strings"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

var x86Prefixes = map[string]bool{
	"rep": true, "repe": true, "repz": true, "repne": true, "repnz": true,
	"lock": true, "bnd": true, "notrack": true, "data16": true, "addr32": true,
}

// Split separates a disassembly line into lowercase mnemonic and operands.
// x86 instruction prefixes are skipped so the mnemonic names the operation.
func Split(a Arch, text string) (mnemonic, operands string) {
	rest := strings.TrimSpace(text)
	for rest != "" {
		head, tail, _ := strings.Cut(rest, " ")
		head = strings.ToLower(head)
		tail = strings.TrimSpace(tail)
		if a.Family() == FamilyX86 && x86Prefixes[head] && tail != "" {
			rest = tail
			continue
		}
		return head, tail
	}
	return "", ""
}

// Decode recovers mnemonic and operands from raw instruction bytes.
// ok is false when the bytes do not decode or the architecture has no decoder (MIPS).
func Decode(a Arch, raw []byte, pc uint64) (mnemonic, operands string, ok bool) {
	if len(raw) == 0 {
		return "", "", false
	}
	var text string
	switch a {
	case X86, X86_64:
		inst, err := x86asm.Decode(raw, a.Bits())
		if err != nil {
			return "", "", false
		}
		text = x86asm.IntelSyntax(inst, pc, nil)
	case ARM32:
		if len(raw) < 4 {
			return "", "", false
		}
		inst, err := armasm.Decode(raw[:4], armasm.ModeARM)
		if err != nil {
			return "", "", false
		}
		text = armasm.GNUSyntax(inst)
	case ARM64:
		if len(raw) < 4 {
			return "", "", false
		}
		inst, err := arm64asm.Decode(raw[:4])
		if err != nil {
			return "", "", false
		}
		text = arm64asm.GNUSyntax(inst)
	default:
		return "", "", false
	}
	mnemonic, operands = Split(a, text)
	return mnemonic, operands, mnemonic != ""
}
