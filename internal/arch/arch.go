// Package arch classifies instruction mnemonics per architecture family.
package arch

import (
	"fmt"
	"strings"

	"bin2ml/internal/diag"
)

// Arch identifies an instruction set and word size.
type Arch int

const (
	Unknown Arch = iota
	X86
	X86_64
	ARM32
	ARM64
	MIPS32
	MIPS64
)

// Family groups architectures that share one classification table.
type Family int

const (
	FamilyNone Family = iota
	FamilyX86
	FamilyARM
	FamilyMIPS
)

func (a Arch) Family() Family {
	switch a {
	case X86, X86_64:
		return FamilyX86
	case ARM32, ARM64:
		return FamilyARM
	case MIPS32, MIPS64:
		return FamilyMIPS
	}
	return FamilyNone
}

// Bits returns the word size, or 0 for Unknown.
func (a Arch) Bits() int {
	switch a {
	case X86, ARM32, MIPS32:
		return 32
	case X86_64, ARM64, MIPS64:
		return 64
	}
	return 0
}

func (a Arch) String() string {
	switch a {
	case X86:
		return "x86"
	case X86_64:
		return "x86-64"
	case ARM32:
		return "arm32"
	case ARM64:
		return "arm64"
	case MIPS32:
		return "mips32"
	case MIPS64:
		return "mips64"
	}
	return "unknown"
}

// Parse resolves a unit's architecture tag. bits disambiguates family-only
// tags such as "arm" or "mips"; 0 means unspecified (32-bit).
func Parse(tag string, bits int) (Arch, error) {
	wide := bits == 64
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "x86", "i386", "i686", "ia32":
		if wide {
			return X86_64, nil
		}
		return X86, nil
	case "x86_64", "x86-64", "amd64", "x64":
		return X86_64, nil
	case "arm", "arm32", "armv7", "thumb":
		if wide {
			return ARM64, nil
		}
		return ARM32, nil
	case "arm64", "aarch64", "armv8":
		return ARM64, nil
	case "mips", "mipsel", "mips32":
		if wide {
			return MIPS64, nil
		}
		return MIPS32, nil
	case "mips64", "mips64el":
		return MIPS64, nil
	}
	return Unknown, fmt.Errorf("arch: %w: %q", diag.ErrUnsupportedArchitecture, tag)
}
