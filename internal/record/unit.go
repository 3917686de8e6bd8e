package record

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"bin2ml/internal/arch"
	"bin2ml/internal/diag"
)

// Unit is one extraction unit after architecture resolution and name
// qualification. Functions are validated lazily, one at a time, so a
// malformed function never prevents its siblings from being processed.
// A Unit is read-only after NewUnit returns.
type Unit struct {
	Path     string
	Arch     arch.Arch
	Repaired bool

	table   *arch.Table
	raw     []RawFunction
	names   []string
	index   map[string]int
	callees [][]string
	callers map[string][]string
}

// NewUnit resolves the architecture and builds the name and call indexes.
// A unit without functions fails with diag.ErrEmptyInput.
func NewUnit(path string, raw *RawUnit) (*Unit, error) {
	a, err := arch.Parse(raw.Arch, raw.Bits)
	if err != nil {
		return nil, fmt.Errorf("record: %s: %w", path, err)
	}
	table, err := arch.Lookup(a)
	if err != nil {
		return nil, fmt.Errorf("record: %s: %w", path, err)
	}
	if len(raw.Functions) == 0 {
		return nil, fmt.Errorf("record: %s: %w", path, diag.ErrEmptyInput)
	}

	u := &Unit{
		Path:     path,
		Arch:     a,
		Repaired: raw.Repaired,
		table:    table,
		raw:      raw.Functions,
		index:    make(map[string]int, len(raw.Functions)),
		callers:  make(map[string][]string),
	}
	u.names = qualifyNames(raw.Functions)
	u.callees = make([][]string, len(raw.Functions))
	for i, name := range u.names {
		u.index[name] = i
		for _, c := range raw.Functions[i].Calls {
			if c.CalleeName == "" {
				continue
			}
			u.callees[i] = append(u.callees[i], c.CalleeName)
		}
	}
	for i, name := range u.names {
		seen := make(map[string]bool)
		for _, callee := range u.callees[i] {
			if seen[callee] {
				continue
			}
			seen[callee] = true
			u.callers[callee] = append(u.callers[callee], name)
		}
	}
	return u, nil
}

// qualifyNames makes names unique. Within a group of equal names the lowest
// offset keeps the plain name; the rest become name_<hexoffset>.
func qualifyNames(fns []RawFunction) []string {
	names := make([]string, len(fns))
	groups := make(map[string][]int)
	for i, f := range fns {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("fcn.%08x", f.Offset)
		}
		names[i] = name
		groups[name] = append(groups[name], i)
	}

	taken := make(map[string]bool, len(fns))
	for name := range groups {
		taken[name] = true
	}
	for name, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		keep := idxs[0]
		for _, i := range idxs[1:] {
			if fns[i].Offset < fns[keep].Offset {
				keep = i
			}
		}
		for _, i := range idxs {
			if i == keep {
				continue
			}
			q := fmt.Sprintf("%s_%x", name, fns[i].Offset)
			for n := 1; taken[q]; n++ {
				q = fmt.Sprintf("%s_%x_%d", name, fns[i].Offset, n)
			}
			taken[q] = true
			names[i] = q
		}
	}
	return names
}

// Len returns the number of functions.
func (u *Unit) Len() int { return len(u.raw) }

// Name returns the qualified name of function i.
func (u *Unit) Name(i int) string { return u.names[i] }

// Lookup returns the index of the function with the given qualified name.
func (u *Unit) Lookup(name string) (int, bool) {
	i, ok := u.index[name]
	return i, ok
}

// Table returns the instruction classifier for the unit's architecture.
func (u *Unit) Table() *arch.Table { return u.table }

// Callees returns the callee names of the named function in call order.
func (u *Unit) Callees(name string) []string {
	if i, ok := u.index[name]; ok {
		return u.callees[i]
	}
	return nil
}

// Callers returns the functions that call name, in unit order.
func (u *Unit) Callers(name string) []string { return u.callers[name] }

// Summary is lightweight per-function metadata for call-graph nodes.
type Summary struct {
	Instructions int `json:"ninstrs"`
	Blocks       int `json:"nblocks"`
	Edges        int `json:"edges"`
	InDegree     int `json:"indegree"`
	OutDegree    int `json:"outdegree"`
}

// Summary computes metadata from the raw record without validating it.
// ok is false for names outside the unit (imports, unresolved targets).
func (u *Unit) Summary(name string) (s Summary, ok bool) {
	i, ok := u.index[name]
	if !ok {
		return Summary{}, false
	}
	rf := &u.raw[i]
	s.Blocks = len(rf.Blocks)
	for _, b := range rf.Blocks {
		s.Instructions += len(b.Instructions)
		s.Edges += len(b.Successors)
	}
	s.InDegree = len(u.callers[name])
	seen := make(map[string]bool)
	for _, c := range u.callees[i] {
		seen[c] = true
	}
	s.OutDegree = len(seen)
	return s, true
}

// Function validates and builds function i.
func (u *Unit) Function(i int) (*Function, error) {
	rf := &u.raw[i]
	name := u.names[i]
	f := &Function{
		Name:    name,
		Offset:  rf.Offset,
		Callees: u.callees[i],
		Callers: u.callers[name],
	}
	if len(rf.Blocks) == 0 {
		return f, nil
	}

	order := make([]int, len(rf.Blocks))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rf.Blocks[order[a]].Offset < rf.Blocks[order[b]].Offset
	})

	ids := make(map[uint64]int, len(order))
	for id, j := range order {
		off := rf.Blocks[j].Offset
		if _, dup := ids[off]; dup {
			return nil, malformed(name, rf.Offset, "duplicate block offset 0x%x", off)
		}
		ids[off] = id
	}
	if id, ok := ids[rf.Offset]; ok {
		f.Entry = id
	}

	f.Blocks = make([]BasicBlock, len(order))
	for id, j := range order {
		rb := &rf.Blocks[j]
		b := BasicBlock{ID: id, Offset: rb.Offset}
		b.Instructions = make([]Instruction, 0, len(rb.Instructions))
		for k := range rb.Instructions {
			b.Instructions = append(b.Instructions, u.instruction(&rb.Instructions[k]))
		}

		var have [3]bool
		for _, rs := range rb.Successors {
			kind, ok := parseEdgeKind(rs.Kind)
			if !ok {
				return nil, malformed(name, rf.Offset, "block 0x%x: unknown successor kind %q", rb.Offset, rs.Kind)
			}
			if have[kind] {
				return nil, malformed(name, rf.Offset, "block 0x%x: two %s successors", rb.Offset, kind)
			}
			have[kind] = true
			target, ok := ids[rs.TargetOffset]
			if !ok {
				return nil, malformed(name, rf.Offset, "block 0x%x: successor 0x%x does not start a block", rb.Offset, rs.TargetOffset)
			}
			b.Succs = append(b.Succs, Successor{Block: target, Kind: kind})
		}
		sort.Slice(b.Succs, func(a, c int) bool { return b.Succs[a].Kind < b.Succs[c].Kind })
		f.Blocks[id] = b
	}
	return f, nil
}

func parseEdgeKind(s string) (EdgeKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fallthrough", "fail", "false", "f":
		return Fallthrough, true
	case "jump", "taken", "true", "t":
		return Jump, true
	}
	return 0, false
}

// instruction normalises a raw instruction. The mnemonic comes from the
// explicit field, then the disassembly text, then the raw bytes.
func (u *Unit) instruction(ri *RawInstruction) Instruction {
	in := Instruction{
		Offset:   ri.Offset,
		Mnemonic: strings.ToLower(strings.TrimSpace(ri.Mnemonic)),
		Operands: strings.TrimSpace(ri.Operands),
		Disasm:   strings.TrimSpace(ri.Disasm),
		IR:       strings.TrimSpace(ri.IR),
		ESIL:     strings.TrimSpace(ri.ESIL),
		Import:   ri.Import,
		Invalid:  strings.EqualFold(ri.Type, "invalid"),
	}
	if in.IR == "" {
		in.IR = strings.TrimSpace(ri.PCode)
	}

	if in.Disasm != "" && (in.Mnemonic == "" || in.Operands == "") {
		m, ops := arch.Split(u.Arch, in.Disasm)
		if in.Mnemonic == "" {
			in.Mnemonic = m
		}
		if in.Operands == "" && m == in.Mnemonic {
			in.Operands = ops
		}
	}
	if in.Mnemonic == "" && ri.Bytes != "" {
		if raw, err := hex.DecodeString(ri.Bytes); err == nil {
			if m, ops, ok := arch.Decode(u.Arch, raw, ri.Offset); ok {
				in.Mnemonic, in.Operands = m, ops
			}
		}
	}
	if in.Disasm == "" && in.Mnemonic != "" {
		in.Disasm = strings.TrimSpace(in.Mnemonic + " " + in.Operands)
	}
	if !in.Import {
		in.Import = importRef(in.Operands)
	}
	return in
}

// importRef reports whether operands name an imported symbol
// (radare2 sym.imp./imp. flags, objdump @plt stubs).
func importRef(operands string) bool {
	for _, tok := range strings.FieldsFunc(operands, isOperandSep) {
		if strings.HasPrefix(tok, "sym.imp.") || strings.HasPrefix(tok, "imp.") || strings.HasSuffix(tok, "@plt") {
			return true
		}
	}
	return false
}

func isOperandSep(r rune) bool {
	switch r {
	case ' ', '\t', ',', '[', ']', '(', ')', '{', '}', '<', '>', '+', '*', '!':
		return true
	}
	return false
}
