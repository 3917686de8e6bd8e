// Package record models per-function extraction records and validates them.
//
// Raw* types mirror the JSON produced by the upstream disassembler adapter.
// They are converted into the read-only Unit and Function types before any
// feature, graph or corpus work happens.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kaptinlin/jsonrepair"
)

// RawUnit is one extraction unit (one analysed binary).
type RawUnit struct {
	Arch      string        `json:"arch"`
	Bits      int           `json:"bits,omitempty"`
	Functions []RawFunction `json:"functions"`

	// Repaired is set when the document only decoded after JSON repair.
	Repaired bool `json:"-"`
}

type RawFunction struct {
	Name   string     `json:"name"`
	Offset uint64     `json:"offset"`
	Blocks []RawBlock `json:"blocks"`
	Calls  []RawCall  `json:"calls,omitempty"`
}

type RawBlock struct {
	Offset       uint64           `json:"offset"`
	Instructions []RawInstruction `json:"instructions"`
	Successors   []RawSuccessor   `json:"successors,omitempty"`
}

// RawInstruction carries up to three textual representations plus optional
// raw bytes (hex) for mnemonic recovery.
type RawInstruction struct {
	Offset   uint64 `json:"offset"`
	Mnemonic string `json:"mnemonic,omitempty"`
	Operands string `json:"operands,omitempty"`
	Disasm   string `json:"disasm,omitempty"`
	IR       string `json:"ir,omitempty"`
	PCode    string `json:"pcode,omitempty"` // alias of IR
	ESIL     string `json:"esil,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	Type     string `json:"type,omitempty"`
	Import   bool   `json:"import,omitempty"`
}

type RawSuccessor struct {
	TargetOffset uint64 `json:"target_offset"`
	Kind         string `json:"kind"`
}

type RawCall struct {
	CalleeName string `json:"callee_name"`
}

// ParseUnit decodes a unit document. Syntactically broken documents (for
// example output truncated by a killed analysis) are repaired and decoded once more.
func ParseUnit(path string, data []byte) (*RawUnit, error) {
	var u RawUnit
	err := json.Unmarshal(data, &u)
	if err == nil {
		return &u, nil
	}
	var syn *json.SyntaxError
	if !errors.As(err, &syn) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("record: decode %s: %w", path, err)
	}

	repaired, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return nil, fmt.Errorf("record: decode %s: %w", path, err)
	}
	u = RawUnit{}
	if err := json.Unmarshal([]byte(repaired), &u); err != nil {
		return nil, fmt.Errorf("record: decode repaired %s: %w", path, err)
	}
	u.Repaired = true
	return &u, nil
}
