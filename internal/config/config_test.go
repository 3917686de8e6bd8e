package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Run {
	return Run{
		Inputs:     []string{"a.json"},
		Output:     "out",
		Workers:    2,
		LogLevel:   "info",
		Scheme:     "gemini",
		WalkLength: 10,
		WalkCount:  5,
	}
}

func TestValidate(t *testing.T) {
	r := valid()
	require.NoError(t, r.Validate())

	r.Hop = 1
	r.Representation = "esil"
	r.Granularity = "funcstring"
	require.NoError(t, r.Validate())

	tests := []struct {
		name  string
		mut   func(*Run)
		field string
	}{
		{"no inputs", func(r *Run) { r.Inputs = nil }, "Inputs"},
		{"no output", func(r *Run) { r.Output = "" }, "Output"},
		{"zero workers", func(r *Run) { r.Workers = 0 }, "Workers"},
		{"negative min blocks", func(r *Run) { r.MinBlocks = -1 }, "MinBlocks"},
		{"unknown graph kind", func(r *Run) { r.GraphKind = "dfg" }, "GraphKind"},
		{"unknown scheme", func(r *Run) { r.Scheme = "safe" }, "Scheme"},
		{"unknown representation", func(r *Run) { r.Representation = "pseudo" }, "Representation"},
		{"hop two", func(r *Run) { r.Hop = 2 }, "Hop"},
		{"negative walk length", func(r *Run) { r.WalkLength = -3 }, "WalkLength"},
		{"bad level", func(r *Run) { r.LogLevel = "trace" }, "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mut(&r)
			err := r.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvSeed, "0x10")
	t.Setenv(EnvMinBlocks, "nope")
	t.Setenv(EnvLogLevel, "DEBUG")

	r := FromEnv()
	assert.Equal(t, 3, r.Workers)
	assert.Equal(t, uint64(16), r.Seed)
	assert.Equal(t, 0, r.MinBlocks)
	assert.Equal(t, "debug", r.LogLevel)

	pc := r.Pipeline()
	assert.Equal(t, 3, pc.Workers)
}

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{EnvWorkers, EnvLogLevel} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	r := FromEnv()
	assert.Equal(t, runtime.NumCPU(), r.Workers)
	assert.Equal(t, "info", r.LogLevel)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIN2ML_TEST_FLAG=true\nBIN2ML_TEST_NAME=x\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("BIN2ML_TEST_FLAG")
		os.Unsetenv("BIN2ML_TEST_NAME")
	})
	t.Setenv("BIN2ML_TEST_NAME", "preset")

	LoadEnv(path)
	assert.True(t, GetEnvBool("BIN2ML_TEST_FLAG", false))
	assert.Equal(t, "preset", GetEnvString("BIN2ML_TEST_NAME", ""))
	assert.False(t, GetEnvBool("BIN2ML_TEST_MISSING", false))

	LoadEnv(filepath.Join(dir, "missing.env"))
}
