package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"bin2ml/internal/diag"
	"bin2ml/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFn(name string, blocks int) record.RawFunction {
	f := record.RawFunction{Name: name, Offset: 0x1000}
	for i := range blocks {
		b := record.RawBlock{Offset: uint64(0x1000 + 0x10*i)}
		b.Instructions = []record.RawInstruction{{Offset: b.Offset, Disasm: "nop"}}
		if i+1 < blocks {
			b.Successors = []record.RawSuccessor{{TargetOffset: b.Offset + 0x10, Kind: "fallthrough"}}
		}
		f.Blocks = append(f.Blocks, b)
	}
	return f
}

func brokenFn(name string) record.RawFunction {
	f := rawFn(name, 1)
	f.Blocks[0].Successors = []record.RawSuccessor{{TargetOffset: 0xdead, Kind: "jump"}}
	return f
}

func mkUnit(t *testing.T, path string, fns ...record.RawFunction) *record.Unit {
	t.Helper()
	u, err := record.NewUnit(path, &record.RawUnit{Arch: "arm64", Functions: fns})
	require.NoError(t, err)
	return u
}

func manyUnits(t *testing.T) []*record.Unit {
	var units []*record.Unit
	for _, path := range []string{"c.json", "a.json", "b.json"} {
		var fns []record.RawFunction
		for i := 20; i > 0; i-- {
			fns = append(fns, rawFn(fmt.Sprintf("fn_%02d", i), 1+i%4))
		}
		units = append(units, mkUnit(t, path, fns...))
	}
	return units
}

func TestRunDeterministicOrder(t *testing.T) {
	task := func(u *record.Unit, f *record.Function) (string, error) {
		time.Sleep(time.Duration(rand.IntN(300)) * time.Microsecond)
		return fmt.Sprintf("%s:%s:%d", u.Path, f.Name, len(f.Blocks)), nil
	}

	var outputs [][]byte
	for range 2 {
		rep, err := Run(context.Background(), manyUnits(t), Config{Workers: 8}, task)
		require.NoError(t, err)
		data, err := json.Marshal(rep.Results)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, string(outputs[0]), string(outputs[1]))

	rep, err := Run(context.Background(), manyUnits(t), Config{Workers: 3}, task)
	require.NoError(t, err)
	require.Len(t, rep.Results, 60)
	assert.Equal(t, "a.json", rep.Results[0].Unit)
	assert.Equal(t, "fn_01", rep.Results[0].Function)
	assert.Equal(t, "c.json", rep.Results[59].Unit)
	assert.Equal(t, "fn_20", rep.Results[59].Function)
}

func TestRunIsolatesMalformedFunction(t *testing.T) {
	u := mkUnit(t, "a.json", rawFn("good", 2), brokenFn("bad"), rawFn("also_good", 1))
	rep, err := Run(context.Background(), []*record.Unit{u}, Config{Workers: 2},
		func(_ *record.Unit, f *record.Function) (int, error) { return len(f.Blocks), nil })
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Diags, 1)
	assert.Equal(t, "bad", rep.Diags[0].Function)
	assert.Equal(t, diag.KindMalformedRecord, rep.Diags[0].Kind)
	assert.Equal(t, []string{"also_good", "good"}, []string{rep.Results[0].Function, rep.Results[1].Function})
	assert.False(t, rep.Failed())
}

func TestRunFilterAndPanic(t *testing.T) {
	u := mkUnit(t, "a.json", rawFn("small", 1), rawFn("big", 5), rawFn("boom", 6), rawFn("skip", 7))
	rep, err := Run(context.Background(), []*record.Unit{u}, Config{MinBlocks: 3},
		func(_ *record.Unit, f *record.Function) (string, error) {
			switch f.Name {
			case "boom":
				panic("bad block")
			case "skip":
				return "", ErrFiltered
			}
			return f.Name, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Filtered)
	assert.Equal(t, 1, rep.Succeeded)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, diag.KindTaskFailed, rep.Diags[0].Kind)
	assert.Contains(t, rep.Diags[0].Msg, "bad block")
}

func TestRunAllFailed(t *testing.T) {
	u := mkUnit(t, "a.json", brokenFn("x"), brokenFn("y"))
	rep, err := Run(context.Background(), []*record.Unit{u}, Config{},
		func(_ *record.Unit, f *record.Function) (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.True(t, rep.Failed())
	assert.Empty(t, rep.Results)
}

func TestRunCancellationDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	rep, err := Run(ctx, manyUnits(t), Config{Workers: 2},
		func(_ *record.Unit, f *record.Function) (string, error) {
			if calls.Add(1) == 5 {
				cancel()
			}
			return f.Name, nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rep)
	assert.Less(t, int(calls.Load()), 60, "no new work after cancellation")
}

func TestRunUnits(t *testing.T) {
	units := manyUnits(t)
	rep, err := RunUnits(context.Background(), units, Config{Workers: 2}, func(u *record.Unit) (int, error) {
		if u.Path == "b.json" {
			return 0, fmt.Errorf("unit task: %w", diag.ErrMalformedRecord)
		}
		return u.Len(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, "a.json", rep.Results[0].Unit)
	assert.Equal(t, "c.json", rep.Results[1].Unit)
	require.Len(t, rep.Diags, 1)
	assert.Equal(t, "b.json", rep.Diags[0].Unit)
}

func writeUnit(t *testing.T, dir, name, doc string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(doc), 0644))
	return p
}

func TestProcessUnitLevelErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, "good.json", `{"arch":"x86","functions":[{"name":"f","offset":0,"blocks":[]}]}`)
	sparc := writeUnit(t, dir, "sparc.json", `{"arch":"sparc","functions":[{"name":"f","offset":0,"blocks":[]}]}`)
	empty := writeUnit(t, dir, "empty.json", `{"arch":"mips","functions":[]}`)
	missing := filepath.Join(dir, "missing.json")

	rep, err := Process(context.Background(), []string{sparc, good, empty, missing}, Config{Workers: 2}, FileLoader,
		func(_ *record.Unit, f *record.Function) (string, error) { return f.Name, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Units)
	assert.Equal(t, 1, rep.Succeeded)
	assert.Equal(t, 2, rep.FatalUnits)
	assert.Equal(t, 1, rep.EmptyUnits)
	assert.False(t, rep.Failed())

	kinds := map[string]diag.Kind{}
	for _, d := range rep.Diags {
		kinds[filepath.Base(d.Unit)] = d.Kind
	}
	assert.Equal(t, diag.KindUnsupportedArch, kinds["sparc.json"])
	assert.Equal(t, diag.KindEmptyInput, kinds["empty.json"])
	assert.Equal(t, diag.KindLoadFailed, kinds["missing.json"])
}

func TestProcessEveryUnitFatal(t *testing.T) {
	dir := t.TempDir()
	sparc := writeUnit(t, dir, "sparc.json", `{"arch":"sparc","functions":[{"name":"f"}]}`)
	rep, err := Process(context.Background(), []string{sparc}, Config{}, FileLoader,
		func(_ *record.Unit, f *record.Function) (string, error) { return f.Name, nil })
	require.NoError(t, err)
	assert.True(t, rep.Failed())
}
