package corpus

import (
	"regexp"
	"strings"
)

var (
	hexLiteral = regexp.MustCompile(`0[xX][0-9a-fA-F]+`)
	hexToken   = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	symbolRef  = regexp.MustCompile(`\b(str|cstr|fcn|sym|method|loc|reloc|sub|obj|section)\.[^\s\[\](),]+`)
	wordToken  = regexp.MustCompile(`\$?[A-Za-z][A-Za-z0-9]*`)
)

var symbolMask = map[string]string{
	"str":     "STR",
	"cstr":    "STR",
	"fcn":     "FUNC",
	"sym":     "FUNC",
	"method":  "FUNC",
	"loc":     "FUNC",
	"reloc":   "FUNC",
	"sub":     "FUNC",
	"obj":     "DATA",
	"section": "DATA",
}

// maskHex replaces hex literals: sign-extended negatives become IMM, short
// displacements (before "]" or "(") become IMM, anything with three or more
// digits becomes MEM. Short plain immediates are kept.
func maskHex(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range hexLiteral.FindAllStringIndex(s, -1) {
		lit := s[loc[0]:loc[1]]
		digits := len(lit) - 2
		next := byte(0)
		if loc[1] < len(s) {
			next = s[loc[1]]
		}
		repl := lit
		switch {
		case digits > 4 && strings.EqualFold(lit[2:6], "ffff"):
			repl = "IMM"
		case (next == ']' || next == '(') && digits <= 4:
			repl = "IMM"
		case digits >= 3:
			repl = "MEM"
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func maskSymbols(s string) string {
	return symbolRef.ReplaceAllStringFunc(s, func(m string) string {
		prefix, _, _ := strings.Cut(m, ".")
		return symbolMask[prefix]
	})
}

// normaliseText masks addresses and symbols in disassembly or IR text.
// Commas become spaces and runs of whitespace collapse.
func normaliseText(s string, regNorm bool) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")
	if strings.HasPrefix(s, "nop") {
		return "nop"
	}
	mnemonic, operands, _ := strings.Cut(s, " ")
	operands = maskSymbols(maskHex(operands))
	if regNorm {
		operands = maskRegisters(operands)
	}
	return strings.TrimSpace(mnemonic + " " + operands)
}

// normaliseESIL masks ESIL tokens. Numeric tokens of four or more decimal
// digits are call targets in call instructions and data references otherwise.
func normaliseESIL(s string, call, regNorm bool) string {
	toks := strings.Split(s, ",")
	for i, tok := range toks {
		switch {
		case hexToken.MatchString(tok):
			digits := len(tok) - 2
			switch {
			case digits > 4 && strings.EqualFold(tok[2:6], "ffff"):
				toks[i] = "IMM"
			case digits <= 3:
				toks[i] = "IMM"
			default:
				toks[i] = "MEM"
			}
		case len(tok) >= 4 && isDecimal(tok):
			if call {
				toks[i] = "FUNC"
			} else {
				toks[i] = "DATA"
			}
		case regNorm:
			if r, ok := registerMask(tok); ok {
				toks[i] = r
			}
		}
	}
	return strings.Join(toks, ",")
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func maskRegisters(s string) string {
	return wordToken.ReplaceAllStringFunc(s, func(w string) string {
		if r, ok := registerMask(w); ok {
			return r
		}
		return w
	})
}

func registerMask(tok string) (string, bool) {
	t := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(tok, "$"), "%"))
	switch {
	case framePointers[t]:
		return "fp", true
	case regs64[t]:
		return "reg64", true
	case regs32[t]:
		return "reg32", true
	}
	return "", false
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var framePointers = set("rbp", "ebp", "x29", "fp", "s8")

var regs64 = set(
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10", "x11", "x12", "x13", "x14",
	"x15", "x16", "x17", "x18", "x19", "x20", "x21", "x22", "x23", "x24", "x25", "x26", "x27", "x28",
)

var regs32 = set(
	"eax", "ebx", "ecx", "edx", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d",
	"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9", "w10", "w11", "w12", "w13", "w14",
	"w15", "w16", "w17", "w18", "w19", "w20", "w21", "w22", "w23", "w24", "w25", "w26", "w27", "w28",
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
)
