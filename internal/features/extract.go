package features

import (
	"regexp"
	"strings"

	"bin2ml/internal/arch"
	"bin2ml/internal/record"
)

// Vector is a fixed-length feature vector. Values follow Scheme.Fields order.
type Vector struct {
	Scheme Scheme
	Values []float64
}

// Zero returns an all-zero vector for s.
func Zero(s Scheme) Vector {
	return Vector{Scheme: s, Values: make([]float64, s.Len())}
}

// WithOffspring returns a copy of v with the offspring slot set to n.
// Schemes without an offspring field are returned unchanged.
func (v Vector) WithOffspring(n int) Vector {
	out := Vector{Scheme: v.Scheme, Values: append([]float64(nil), v.Values...)}
	for i, f := range schemeFields[v.Scheme] {
		if f.kind == offspring {
			out.Values[i] = float64(n)
		}
	}
	return out
}

// Get returns the value of the named field.
func (v Vector) Get(name string) (float64, bool) {
	for i, f := range schemeFields[v.Scheme] {
		if f.name == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Extractor computes vectors for one scheme and one architecture. Safe for concurrent use.
type Extractor struct {
	scheme Scheme
	table  *arch.Table
}

// New returns an extractor for scheme s classifying with t.
func New(s Scheme, t *arch.Table) *Extractor {
	return &Extractor{scheme: s, table: t}
}

func (e *Extractor) Scheme() Scheme { return e.scheme }

func (e *Extractor) Table() *arch.Table { return e.table }

// Extract computes the block's vector. The offspring slot is left at zero;
// the graph builder fills it once edges are known.
func (e *Extractor) Extract(b *record.BasicBlock) Vector {
	v := Zero(e.scheme)
	fields := schemeFields[e.scheme]
	for i := range b.Instructions {
		in := &b.Instructions[i]
		if in.Invalid {
			continue
		}
		cat := e.table.Classify(in.Mnemonic, in.Import)
		numeric, strs := ScanConstants(e.table.Family(), in.Operands)
		for j, f := range fields {
			switch f.kind {
			case countCategories:
				for _, c := range f.cats {
					if c == cat {
						v.Values[j]++
						break
					}
				}
			case countInstructions:
				v.Values[j]++
			case countNumericConsts:
				v.Values[j] += float64(numeric)
			case countStringConsts:
				v.Values[j] += float64(strs)
			case countFloat:
				if e.table.IsFloat(in.Mnemonic) {
					v.Values[j]++
				}
			}
		}
	}
	return v
}

var numericToken = regexp.MustCompile(`^[#$]?-?(0[xX][0-9a-fA-F]+|[0-9]+)$`)

var stringRefPrefixes = []string{"str.", "cstr.", "obj.str", "reloc.str"}

// ScanConstants counts literal numeric tokens and string-reference tokens in
// operand text. On MIPS a $-prefixed token names a register.
func ScanConstants(fam arch.Family, operands string) (numeric, strs int) {
	for _, tok := range strings.FieldsFunc(operands, isConstSep) {
		switch {
		case strings.HasPrefix(tok, `"`) || strings.HasPrefix(tok, "'"):
			strs++
		case hasAnyPrefix(tok, stringRefPrefixes):
			strs++
		case fam == arch.FamilyMIPS && strings.HasPrefix(tok, "$"):
		case numericToken.MatchString(tok):
			numeric++
		}
	}
	return numeric, strs
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isConstSep(r rune) bool {
	switch r {
	case ' ', '\t', ',', '[', ']', '(', ')', '{', '}', '+', '*', '!', ':', '=':
		return true
	}
	return false
}
