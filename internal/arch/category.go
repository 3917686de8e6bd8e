package arch

// Category is the semantic class of one instruction.
type Category int

const (
	Generic Category = iota // catch-all for mnemonics absent from the table
	Call
	Transfer // data movement: loads, stores, register moves
	Arithmetic
	Stack
	Logic
	Compare
	UnconditionalJump
	ConditionalJump
	LibraryCall
)

var categoryNames = [...]string{
	Generic:           "generic",
	Call:              "call",
	Transfer:          "transfer",
	Arithmetic:        "arithmetic",
	Stack:             "stack",
	Logic:             "logic",
	Compare:           "compare",
	UnconditionalJump: "uncond_jump",
	ConditionalJump:   "cond_jump",
	LibraryCall:       "library_call",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "generic"
}

// IsCall reports whether c is Call or LibraryCall.
func (c Category) IsCall() bool {
	return c == Call || c == LibraryCall
}
