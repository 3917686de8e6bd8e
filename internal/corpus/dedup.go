package corpus

import "hash/fnv"

// Entry is one function string and where it came from.
type Entry struct {
	Unit     string
	Function string
	Text     string
}

// Dedup keeps the first occurrence of every function string, in input order.
// By default a function string is a duplicate only when both the function
// name and the text match; with valueOnly the text alone decides, which also
// folds identical bodies under different names.
func Dedup(entries []Entry, valueOnly bool) []Entry {
	seen := make(map[[16]byte]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		h := fnv.New128a()
		if !valueOnly {
			h.Write([]byte(e.Function))
			h.Write([]byte{0})
		}
		h.Write([]byte(e.Text))
		var key [16]byte
		h.Sum(key[:0])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
