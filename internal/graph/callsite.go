package graph

import (
	"bin2ml/internal/arch"
	"bin2ml/internal/record"
)

// CallSite is a call instruction found inside a block.
type CallSite struct {
	FromPC  uint64 `json:"from_pc"`
	Index   int    `json:"index"` // instruction index within the function, blocks in id order
	Target  string `json:"target"`
	Library bool   `json:"library,omitempty"`
}

// CallSites returns the call instructions of f grouped by block id.
func CallSites(f *record.Function, t *arch.Table) [][]CallSite {
	out := make([][]CallSite, len(f.Blocks))
	idx := 0
	for i := range f.Blocks {
		for _, in := range f.Blocks[i].Instructions {
			if c := t.Classify(in.Mnemonic, in.Import); c.IsCall() && !in.Invalid {
				target := in.Operands
				if target == "" {
					target = in.Mnemonic
				}
				out[i] = append(out[i], CallSite{
					FromPC:  in.Offset,
					Index:   idx,
					Target:  target,
					Library: c == arch.LibraryCall,
				})
			}
			idx++
		}
	}
	return out
}
