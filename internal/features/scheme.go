// Package features computes fixed-length per-block feature vectors.
package features

import (
	"fmt"
	"strings"

	"bin2ml/internal/arch"
)

// Scheme selects the feature set. The set of schemes is closed.
type Scheme int

const (
	Gemini Scheme = iota + 1
	DiscovRE
	DGIS
	TikNib
)

// ParseScheme resolves a scheme name as used on the command line.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "gemini":
		return Gemini, nil
	case "discovre":
		return DiscovRE, nil
	case "dgis":
		return DGIS, nil
	case "tiknib":
		return TikNib, nil
	}
	return 0, fmt.Errorf("features: unknown scheme %q", s)
}

func (s Scheme) String() string {
	switch s {
	case Gemini:
		return "gemini"
	case DiscovRE:
		return "discovre"
	case DGIS:
		return "dgis"
	case TikNib:
		return "tiknib"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

type fieldKind int

const (
	countCategories fieldKind = iota
	countInstructions
	countNumericConsts
	countStringConsts
	countFloat
	offspring
)

// field is one slot of a feature vector.
type field struct {
	name string
	kind fieldKind
	cats []arch.Category // countCategories only
}

func cats(c ...arch.Category) []arch.Category { return c }

var schemeFields = map[Scheme][]field{
	Gemini: {
		{name: "numCalls", kind: countCategories, cats: cats(arch.Call, arch.LibraryCall)},
		{name: "numTransfer", kind: countCategories, cats: cats(arch.Transfer)},
		{name: "numArith", kind: countCategories, cats: cats(arch.Arithmetic)},
		{name: "numIns", kind: countInstructions},
		{name: "numericConsts", kind: countNumericConsts},
		{name: "stringConsts", kind: countStringConsts},
		{name: "numOffspring", kind: offspring},
	},
	DiscovRE: {
		{name: "numCalls", kind: countCategories, cats: cats(arch.Call, arch.LibraryCall)},
		{name: "numTransfer", kind: countCategories, cats: cats(arch.Transfer)},
		{name: "numArith", kind: countCategories, cats: cats(arch.Arithmetic)},
		{name: "numIns", kind: countInstructions},
		{name: "numericConsts", kind: countNumericConsts},
		{name: "stringConsts", kind: countStringConsts},
	},
	DGIS: {
		{name: "numStackOps", kind: countCategories, cats: cats(arch.Stack)},
		{name: "numArithOps", kind: countCategories, cats: cats(arch.Arithmetic)},
		{name: "numLogicOps", kind: countCategories, cats: cats(arch.Logic)},
		{name: "numCmpOps", kind: countCategories, cats: cats(arch.Compare)},
		{name: "numLibCalls", kind: countCategories, cats: cats(arch.LibraryCall)},
		{name: "numUnconJumps", kind: countCategories, cats: cats(arch.UnconditionalJump)},
		{name: "numConJumps", kind: countCategories, cats: cats(arch.ConditionalJump)},
		{name: "numGenericIns", kind: countCategories, cats: cats(arch.Generic, arch.Transfer, arch.Call)},
	},
	// Fields may overlap: a call is counted by both ctransfer and ctransfercond.
	TikNib: {
		{name: "arithshift", kind: countCategories, cats: cats(arch.Arithmetic)},
		{name: "compare", kind: countCategories, cats: cats(arch.Compare)},
		{name: "ctransfer", kind: countCategories, cats: cats(arch.Call, arch.LibraryCall, arch.UnconditionalJump)},
		{name: "ctransfercond", kind: countCategories, cats: cats(arch.Call, arch.LibraryCall, arch.UnconditionalJump, arch.ConditionalJump)},
		{name: "dtransfer", kind: countCategories, cats: cats(arch.Transfer, arch.Stack)},
		{name: "float", kind: countFloat},
		{name: "total", kind: countInstructions},
	},
}

// Fields returns the ordered field names of the scheme.
func (s Scheme) Fields() []string {
	fs := schemeFields[s]
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}
	return names
}

// Len returns the vector length of the scheme.
func (s Scheme) Len() int { return len(schemeFields[s]) }

// Valid reports whether s is one of the defined schemes.
func (s Scheme) Valid() bool {
	_, ok := schemeFields[s]
	return ok
}
