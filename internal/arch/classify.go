package arch

import (
	"fmt"
	"strings"

	"bin2ml/internal/diag"
)

// Table classifies mnemonics for one architecture family. Safe for concurrent use.
type Table struct {
	family Family
	ops    map[string]Category
	float  map[string]bool
}

var tables = map[Family]*Table{
	FamilyX86:  {family: FamilyX86, ops: buildTable(x86Ops), float: buildSet(x86Float)},
	FamilyARM:  {family: FamilyARM, ops: buildTable(armOps), float: buildSet(armFloat)},
	FamilyMIPS: {family: FamilyMIPS, ops: buildTable(mipsOps), float: buildSet(mipsFloat)},
}

// Lookup returns the classification table for a.
func Lookup(a Arch) (*Table, error) {
	t, ok := tables[a.Family()]
	if !ok {
		return nil, fmt.Errorf("arch: %w: %s", diag.ErrUnsupportedArchitecture, a)
	}
	return t, nil
}

func (t *Table) Family() Family { return t.family }

// Classify maps a mnemonic to its category. Unknown mnemonics are Generic.
// A call carrying the import hint is a LibraryCall.
func (t *Table) Classify(mnemonic string, imported bool) Category {
	c := t.lookup(strings.ToLower(strings.TrimSpace(mnemonic)))
	if c == Call && imported {
		return LibraryCall
	}
	return c
}

// IsFloat reports whether the mnemonic operates on floating-point data.
// ARM type qualifiers (vadd.f32) and MIPS format suffixes (add.s, c.lt.d)
// mark an instruction as floating point on their own.
func (t *Table) IsFloat(mnemonic string) bool {
	m := strings.ToLower(strings.TrimSpace(mnemonic))
	if t.float[m] {
		return true
	}
	switch t.family {
	case FamilyX86:
		if n := len(m); n > 2 && strings.ContainsRune("lst", rune(m[n-1])) {
			return t.float[m[:n-1]] && m[0] == 'f'
		}
	case FamilyARM:
		base, qual, ok := strings.Cut(m, ".")
		if !ok {
			return false
		}
		if strings.HasPrefix(qual, "f") {
			return true
		}
		return t.float[base]
	case FamilyMIPS:
		return strings.HasSuffix(m, ".s") || strings.HasSuffix(m, ".d") || strings.HasSuffix(m, ".ps")
	}
	return false
}

func (t *Table) lookup(m string) Category {
	if c, ok := t.ops[m]; ok {
		return c
	}
	switch t.family {
	case FamilyX86:
		return t.lookupX86(m)
	case FamilyARM:
		return t.lookupARM(m)
	case FamilyMIPS:
		if strings.HasPrefix(m, "c.") {
			return Compare
		}
	}
	return Generic
}

// lookupX86 strips an AT&T operand-size suffix (movl, addq).
func (t *Table) lookupX86(m string) Category {
	if n := len(m); n > 2 && strings.ContainsRune("bwlq", rune(m[n-1])) {
		if c, ok := t.ops[m[:n-1]]; ok {
			return c
		}
	}
	return Generic
}

var armConds = []string{
	"eq", "ne", "cs", "hs", "cc", "lo", "mi", "pl",
	"vs", "vc", "hi", "ls", "ge", "lt", "gt", "le", "al",
}

// lookupARM undoes width qualifiers, b.<cc> forms, condition-code suffixes
// and the flag-setting "s" suffix. A conditional plain branch is a ConditionalJump.
func (t *Table) lookupARM(m string) Category {
	if base, ok := strings.CutSuffix(m, ".w"); ok {
		return t.lookup(base)
	}
	if base, ok := strings.CutSuffix(m, ".n"); ok {
		return t.lookup(base)
	}
	if strings.HasPrefix(m, "b.") || strings.HasPrefix(m, "bc.") {
		return ConditionalJump
	}
	for _, cc := range armConds {
		base, ok := strings.CutSuffix(m, cc)
		if !ok || base == "" {
			continue
		}
		if c, ok := t.armBase(base); ok {
			if c == UnconditionalJump {
				return ConditionalJump
			}
			return c
		}
	}
	if c, ok := t.armBase(m); ok {
		return c
	}
	return Generic
}

func (t *Table) armBase(m string) (Category, bool) {
	if c, ok := t.ops[m]; ok {
		return c, true
	}
	if base, ok := strings.CutSuffix(m, "s"); ok && base != "" {
		c, ok := t.ops[base]
		return c, ok
	}
	return Generic, false
}
