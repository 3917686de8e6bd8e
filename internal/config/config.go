// Package config assembles run settings from the environment and command-line
// flags and validates them before any work starts.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator"

	"bin2ml/internal/pipeline"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers   = "BIN2ML_WORKERS"
	EnvSeed      = "BIN2ML_SEED"
	EnvMinBlocks = "BIN2ML_MIN_BLOCKS"
	EnvLogLevel  = "LOG_LEVEL"
)

// Run holds the settings shared by every subcommand. Subcommands fill the
// fields they use; the rest keep their zero value, which always validates.
type Run struct {
	Inputs    []string `validate:"required,min=1"`
	Root      string   // directory unit stems are relative to
	Output    string   `validate:"required"`
	Workers   int      `validate:"min=1"`
	MinBlocks int      `validate:"min=0"`
	Seed      uint64
	LogLevel  string `validate:"omitempty,oneof=debug info warn error"`

	GraphKind      string `validate:"omitempty,oneof=cfg cg onehopcg globalcg"`
	Scheme         string `validate:"omitempty,oneof=gemini discovre dgis tiknib"`
	Representation string `validate:"omitempty,oneof=disasm ir esil"`
	Granularity    string `validate:"omitempty,oneof=single funcstring"`
	Hop            int    `validate:"min=0,max=1"`
	WalkLength     int    `validate:"omitempty,min=1"`
	WalkCount      int    `validate:"min=0"`
}

// FromEnv returns a Run seeded with environment defaults.
func FromEnv() Run {
	return Run{
		Workers:   GetEnvInt(EnvWorkers, runtime.NumCPU()),
		MinBlocks: GetEnvInt(EnvMinBlocks, 0),
		Seed:      GetEnvUint64(EnvSeed, 0),
		LogLevel:  strings.ToLower(GetEnvString(EnvLogLevel, "info")),
	}
}

var validate = validator.New()

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate checks r and reports every failing field in one error.
func (r *Run) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Pipeline returns the worker-pool settings.
func (r *Run) Pipeline() pipeline.Config {
	return pipeline.Config{Workers: r.Workers, MinBlocks: r.MinBlocks}
}
