package record

import (
	"testing"

	"bin2ml/internal/arch"
	"bin2ml/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleUnit = `{
  "arch": "x86", "bits": 64,
  "functions": [
    {
      "name": "main", "offset": 4096,
      "blocks": [
        {"offset": 4112, "instructions": [{"offset": 4112, "disasm": "ret"}]},
        {"offset": 4096,
         "instructions": [
           {"offset": 4096, "mnemonic": "cmp", "operands": "eax, 1"},
           {"offset": 4099, "disasm": "jne 0x1010"}
         ],
         "successors": [
           {"target_offset": 4112, "kind": "jump"},
           {"target_offset": 4104, "kind": "fallthrough"}
         ]},
        {"offset": 4104,
         "instructions": [{"offset": 4104, "disasm": "call sym.imp.puts"}],
         "successors": [{"target_offset": 4112, "kind": "fallthrough"}]}
      ],
      "calls": [{"callee_name": "sym.imp.puts"}, {"callee_name": "helper"}, {"callee_name": "helper"}]
    },
    {"name": "helper", "offset": 8192, "blocks": [], "calls": [{"callee_name": "sym.imp.puts"}]}
  ]
}`

func loadSample(t *testing.T, doc string) *Unit {
	t.Helper()
	raw, err := ParseUnit("sample.json", []byte(doc))
	require.NoError(t, err)
	u, err := NewUnit("sample.json", raw)
	require.NoError(t, err)
	return u
}

func TestFunctionBlocksOrderedByOffset(t *testing.T) {
	u := loadSample(t, sampleUnit)
	assert.Equal(t, arch.X86_64, u.Arch)
	require.Equal(t, 2, u.Len())

	f, err := u.Function(0)
	require.NoError(t, err)
	require.Len(t, f.Blocks, 3)

	wantOffsets := []uint64{4096, 4104, 4112}
	for i, b := range f.Blocks {
		assert.Equal(t, i, b.ID)
		assert.Equal(t, wantOffsets[i], b.Offset)
	}
	assert.Equal(t, 0, f.Entry)

	// fallthrough listed before jump regardless of input order
	assert.Equal(t, []Successor{{Block: 1, Kind: Fallthrough}, {Block: 2, Kind: Jump}}, f.Blocks[0].Succs)
	assert.True(t, f.Blocks[2].Terminal())
	assert.Equal(t, 4, f.NumInstructions())
	assert.Equal(t, 3, f.NumEdges())
}

func TestInstructionNormalisation(t *testing.T) {
	u := loadSample(t, sampleUnit)
	f, err := u.Function(0)
	require.NoError(t, err)

	cmp := f.Blocks[0].Instructions[0]
	assert.Equal(t, "cmp", cmp.Mnemonic)
	assert.Equal(t, "cmp eax, 1", cmp.Disasm)

	jne := f.Blocks[0].Instructions[1]
	assert.Equal(t, "jne", jne.Mnemonic)
	assert.Equal(t, "0x1010", jne.Operands)

	call := f.Blocks[1].Instructions[0]
	assert.Equal(t, "call", call.Mnemonic)
	assert.True(t, call.Import)
}

func TestInstructionFromBytes(t *testing.T) {
	u := loadSample(t, `{"arch":"x86_64","functions":[{"name":"f","offset":0,"blocks":[
		{"offset":0,"instructions":[{"offset":0,"bytes":"4889e5"},{"offset":3,"bytes":"zz"},{"offset":4,"type":"invalid","bytes":"ff"}]}]}]}`)
	f, err := u.Function(0)
	require.NoError(t, err)
	ins := f.Blocks[0].Instructions
	assert.Equal(t, "mov", ins[0].Mnemonic)
	assert.NotEmpty(t, ins[0].Disasm)
	assert.Equal(t, "", ins[1].Mnemonic, "undecodable hex leaves the mnemonic empty")
	assert.True(t, ins[2].Invalid)
}

func TestCallIndexes(t *testing.T) {
	u := loadSample(t, sampleUnit)
	assert.Equal(t, []string{"sym.imp.puts", "helper", "helper"}, u.Callees("main"))
	assert.Equal(t, []string{"main"}, u.Callers("helper"))
	assert.Equal(t, []string{"main", "helper"}, u.Callers("sym.imp.puts"))

	s, ok := u.Summary("main")
	require.True(t, ok)
	assert.Equal(t, Summary{Instructions: 4, Blocks: 3, Edges: 3, InDegree: 0, OutDegree: 2}, s)

	_, ok = u.Summary("sym.imp.puts")
	assert.False(t, ok)
}

func TestZeroBlockFunctionIsValid(t *testing.T) {
	u := loadSample(t, sampleUnit)
	f, err := u.Function(1)
	require.NoError(t, err)
	assert.Equal(t, "helper", f.Name)
	assert.Empty(t, f.Blocks)
	assert.Equal(t, []string{"main"}, f.Callers)
}

func TestMalformedFunctions(t *testing.T) {
	tests := []struct {
		name   string
		blocks string
	}{
		{"unresolved successor", `[{"offset":0,"instructions":[],"successors":[{"target_offset":99,"kind":"jump"}]}]`},
		{"duplicate kind", `[{"offset":0,"instructions":[],"successors":[{"target_offset":0,"kind":"jump"},{"target_offset":4,"kind":"jump"}]},{"offset":4,"instructions":[]}]`},
		{"unknown kind", `[{"offset":0,"instructions":[],"successors":[{"target_offset":0,"kind":"indirect"}]}]`},
		{"duplicate offset", `[{"offset":0,"instructions":[]},{"offset":0,"instructions":[]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"arch":"arm64","functions":[{"name":"bad","offset":0,"blocks":` + tt.blocks + `},{"name":"good","offset":16,"blocks":[]}]}`
			u := loadSample(t, doc)

			_, err := u.Function(0)
			require.Error(t, err)
			assert.ErrorIs(t, err, diag.ErrMalformedRecord)
			var me *MalformedError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "bad", me.Function)

			_, err = u.Function(1)
			assert.NoError(t, err, "sibling must still build")
		})
	}
}

func TestNameQualification(t *testing.T) {
	u := loadSample(t, `{"arch":"mips","functions":[
		{"name":"dup","offset":48,"blocks":[]},
		{"name":"dup","offset":16,"blocks":[]},
		{"name":"","offset":32,"blocks":[]},
		{"name":"dup","offset":64,"blocks":[]}]}`)
	assert.Equal(t, "dup_30", u.Name(0))
	assert.Equal(t, "dup", u.Name(1))
	assert.Equal(t, "fcn.00000020", u.Name(2))
	assert.Equal(t, "dup_40", u.Name(3))

	i, ok := u.Lookup("dup")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestNewUnitErrors(t *testing.T) {
	raw, err := ParseUnit("a.json", []byte(`{"arch":"sparc","functions":[{"name":"f"}]}`))
	require.NoError(t, err)
	_, err = NewUnit("a.json", raw)
	assert.ErrorIs(t, err, diag.ErrUnsupportedArchitecture)

	raw, err = ParseUnit("b.json", []byte(`{"arch":"arm","functions":[]}`))
	require.NoError(t, err)
	_, err = NewUnit("b.json", raw)
	assert.ErrorIs(t, err, diag.ErrEmptyInput)
}

func TestParseUnitRepairsTruncatedJSON(t *testing.T) {
	raw, err := ParseUnit("t.json", []byte(`{"arch":"x86","functions":[{"name":"f","offset":4096,"blocks":[]}`))
	require.NoError(t, err)
	assert.True(t, raw.Repaired)
	require.Len(t, raw.Functions, 1)
	assert.Equal(t, "f", raw.Functions[0].Name)

	_, err = ParseUnit("bad.json", []byte(`{"arch": 12}`))
	assert.Error(t, err, "type errors are not repaired")
}
