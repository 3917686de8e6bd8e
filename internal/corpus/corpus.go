// Package corpus flattens functions into instruction text for language models.
package corpus

import (
	"fmt"
	"strings"

	"bin2ml/internal/record"
)

// Representation selects which instruction text is emitted.
type Representation int

const (
	Disasm Representation = iota + 1 // native disassembly
	IR                               // intermediate representation (p-code)
	ESIL                             // emulation IL
)

func ParseRepresentation(s string) (Representation, error) {
	switch strings.ToLower(s) {
	case "disasm", "dis":
		return Disasm, nil
	case "ir", "pcode":
		return IR, nil
	case "esil":
		return ESIL, nil
	}
	return 0, fmt.Errorf("corpus: unknown representation %q", s)
}

func (r Representation) String() string {
	switch r {
	case Disasm:
		return "disasm"
	case IR:
		return "ir"
	case ESIL:
		return "esil"
	}
	return fmt.Sprintf("Representation(%d)", int(r))
}

// Granularity selects one line per instruction or one line per function.
type Granularity int

const (
	Single     Granularity = iota + 1 // one line per instruction
	FuncString                        // one line per function
)

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "single", "singles", "instruction":
		return Single, nil
	case "funcstring", "function":
		return FuncString, nil
	}
	return 0, fmt.Errorf("corpus: unknown granularity %q", s)
}

func (g Granularity) String() string {
	switch g {
	case Single:
		return "singles"
	case FuncString:
		return "funcstrings"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// Options controls corpus assembly.
type Options struct {
	Representation Representation
	Granularity    Granularity
	Normalise      bool // mask addresses, immediates and symbols
	RegNorm        bool // additionally mask general-purpose registers
}

// text returns the instruction in the selected representation, or "" when
// the instruction lacks it.
func (o Options) text(in *record.Instruction) string {
	if in.Invalid {
		return ""
	}
	switch o.Representation {
	case Disasm:
		if o.Normalise && in.Disasm != "" {
			return normaliseText(in.Disasm, o.RegNorm)
		}
		return in.Disasm
	case IR:
		if o.Normalise && in.IR != "" {
			return normaliseText(in.IR, o.RegNorm)
		}
		return in.IR
	case ESIL:
		if o.Normalise && in.ESIL != "" {
			return normaliseESIL(in.ESIL, callMnemonics[in.Mnemonic], o.RegNorm)
		}
		return in.ESIL
	}
	return ""
}

var callMnemonics = set("call", "callq", "bl", "blx", "blr", "jal", "jalr", "bal")

// flatten turns an instruction into space-separated tokens for concatenation.
func flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")
}

// Assemble flattens f. Blocks are visited in ascending id and instructions in
// their original order; instructions without the selected representation are
// skipped. FuncString yields at most one line.
func Assemble(f *record.Function, opts Options) []string {
	var lines []string
	var parts []string
	for i := range f.Blocks {
		for j := range f.Blocks[i].Instructions {
			t := opts.text(&f.Blocks[i].Instructions[j])
			if t == "" {
				continue
			}
			if opts.Granularity == FuncString {
				parts = append(parts, flatten(t))
			} else {
				lines = append(lines, t)
			}
		}
	}
	if opts.Granularity == FuncString && len(parts) > 0 {
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

// WalkLines renders each walk as one line holding the instructions of the
// visited blocks in walk order. Ids outside the function (padding) are ignored.
func WalkLines(f *record.Function, walks [][]int, opts Options) []string {
	var lines []string
	for _, w := range walks {
		var parts []string
		for _, id := range w {
			if id < 0 || id >= len(f.Blocks) {
				continue
			}
			for j := range f.Blocks[id].Instructions {
				if t := opts.text(&f.Blocks[id].Instructions[j]); t != "" {
					parts = append(parts, flatten(t))
				}
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return lines
}
