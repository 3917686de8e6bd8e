package arch

// Mnemonic tables, lowercase. A mnemonic appears under exactly one category;
// the constructor panics on duplicates so an edit cannot silently reclassify.

var x86Ops = map[Category][]string{
	Call: {"call", "callq", "calll", "lcall"},
	Transfer: {
		"mov", "movabs", "movzx", "movsx", "movsxd", "movq", "movd",
		"movaps", "movups", "movapd", "movupd", "movdqa", "movdqu", "movss", "movsd",
		"movsb", "movsw", "movsq", "movhps", "movlps", "movhpd", "movlpd",
		"lea", "xchg", "bswap", "xlat", "xlatb", "lahf", "sahf", "in", "out",
		"cbw", "cwde", "cdqe", "cwd", "cdq", "cqo",
		"cmove", "cmovz", "cmovne", "cmovnz", "cmova", "cmovae", "cmovb", "cmovbe",
		"cmovg", "cmovge", "cmovl", "cmovle", "cmovs", "cmovns", "cmovo", "cmovno",
		"cmovp", "cmovnp", "lods", "lodsb", "lodsd", "stos", "stosb", "stosd", "stosq",
	},
	Arithmetic: {
		"add", "adc", "sub", "sbb", "mul", "imul", "div", "idiv", "inc", "dec", "neg",
		"shl", "sal", "shr", "sar", "xadd", "adcx", "adox",
		"addss", "addsd", "subss", "subsd", "mulss", "mulsd", "divss", "divsd",
		"addps", "addpd", "subps", "subpd", "mulps", "mulpd", "divps", "divpd",
		"paddb", "paddw", "paddd", "paddq", "psubb", "psubw", "psubd", "psubq",
		"sqrtss", "sqrtsd", "fadd", "fsub", "fmul", "fdiv",
	},
	Stack: {
		"push", "pop", "pushf", "popf", "pushfd", "popfd", "pushfq", "popfq",
		"pusha", "popa", "pushad", "popad", "enter", "leave",
	},
	Logic: {
		"and", "or", "xor", "not", "rol", "ror", "rcl", "rcr", "andn", "shld", "shrd",
		"pand", "pandn", "por", "pxor", "andps", "andpd", "andnps", "orps", "orpd", "xorps", "xorpd",
		"bts", "btr", "btc",
	},
	Compare: {
		"cmp", "test", "bt", "cmpxchg", "cmpxchg8b", "cmpxchg16b",
		"cmpsb", "cmpsw", "cmpsq", "scasb", "scasw", "scasd", "scasq",
		"ucomiss", "ucomisd", "comiss", "comisd", "pcmpeqb", "pcmpeqd", "ptest",
		"sete", "setne", "setz", "setnz", "seta", "setae", "setb", "setbe",
		"setg", "setge", "setl", "setle", "sets", "setns",
	},
	UnconditionalJump: {"jmp", "jmpq", "ljmp"},
	ConditionalJump: {
		"ja", "jae", "jb", "jbe", "jc", "jcxz", "jecxz", "jrcxz", "je", "jg", "jge",
		"jl", "jle", "jna", "jnae", "jnb", "jnbe", "jnc", "jne", "jng", "jnge", "jnl",
		"jnle", "jno", "jnp", "jns", "jnz", "jo", "jp", "jpe", "jpo", "js", "jz",
		"loop", "loope", "loopne", "loopz", "loopnz",
	},
}

var armOps = map[Category][]string{
	Call: {"bl", "blx", "blr", "blraa", "blrab", "blraaz", "blrabz"},
	Transfer: {
		"mov", "mvn", "movw", "movt", "movk", "movz", "movn", "fmov", "adr", "adrp",
		"ldr", "ldrb", "ldrh", "ldrsb", "ldrsh", "ldrsw", "ldrd", "ldrex", "ldur", "ldurb",
		"ldurh", "ldursw", "ldp", "ldpsw", "ldxr", "ldaxr", "ldar", "ldnp", "ldm", "ldmia",
		"str", "strb", "strh", "strd", "strex", "stur", "sturb", "sturh", "stp", "stxr",
		"stlxr", "stlr", "stnp", "stm", "stmia",
		"vmov", "vldr", "vstr", "vldm", "vstm", "ld1", "st1",
	},
	Arithmetic: {
		"add", "adc", "sub", "sbc", "rsb", "rsc", "mul", "mla", "mls", "madd", "msub",
		"umull", "smull", "umlal", "smlal", "smulh", "umulh", "smaddl", "umaddl",
		"sdiv", "udiv", "neg", "ngc", "lsl", "lsr", "asr", "cneg", "cinc", "csinc", "csneg",
		"fadd", "fsub", "fmul", "fdiv", "fneg", "fabs", "fsqrt", "fmadd", "fmsub",
		"vadd", "vsub", "vmul", "vdiv", "vneg", "vabs",
	},
	Stack: {"push", "pop", "vpush", "vpop", "stmfd", "ldmfd", "stmdb", "ldmdb"},
	Logic: {"and", "orr", "eor", "bic", "orn", "eon", "ror", "rrx", "bfi", "ubfx", "sbfx", "bfxil"},
	Compare: {
		"cmp", "cmn", "tst", "teq", "ccmp", "ccmn", "fcmp", "fcmpe", "vcmp", "vcmpe",
		"cset", "csetm", "csel",
	},
	UnconditionalJump: {"b", "bx", "br", "braa", "brab", "braaz", "brabz"},
	ConditionalJump:   {"cbz", "cbnz", "tbz", "tbnz"},
}

// MIPS has no dedicated stack instructions; sp-relative loads and stores are transfers.
var mipsOps = map[Category][]string{
	Call: {"jal", "jalr", "jalx", "bal", "bgezal", "bltzal", "jalr.hb"},
	Transfer: {
		"lw", "lb", "lbu", "lh", "lhu", "lwl", "lwr", "lwu", "ld", "ldl", "ldr", "ll", "lld",
		"sw", "sb", "sh", "swl", "swr", "sd", "sdl", "sdr", "sc", "scd",
		"move", "li", "lui", "la", "dla", "movn", "movz",
		"mfhi", "mflo", "mthi", "mtlo", "mfc0", "mtc0", "mfc1", "mtc1", "dmfc1", "dmtc1",
		"lwc1", "swc1", "ldc1", "sdc1", "mov.s", "mov.d",
	},
	Arithmetic: {
		"add", "addu", "addi", "addiu", "sub", "subu", "mul", "mult", "multu", "div", "divu",
		"madd", "maddu", "msub", "msubu", "dadd", "daddu", "daddi", "daddiu", "dsub", "dsubu",
		"dmult", "dmultu", "ddiv", "ddivu", "neg", "negu",
		"sll", "srl", "sra", "sllv", "srlv", "srav", "dsll", "dsrl", "dsra", "dsll32", "dsrl32", "dsra32",
		"add.s", "add.d", "sub.s", "sub.d", "mul.s", "mul.d", "div.s", "div.d",
	},
	Logic: {"and", "andi", "or", "ori", "xor", "xori", "nor", "not", "rotr", "rotrv"},
	Compare: {
		"slt", "sltu", "slti", "sltiu",
		"c.eq.s", "c.eq.d", "c.lt.s", "c.lt.d", "c.le.s", "c.le.d", "c.un.s", "c.un.d",
	},
	UnconditionalJump: {"j", "jr", "b", "jr.hb"},
	ConditionalJump: {
		"beq", "bne", "bgez", "bgtz", "blez", "bltz", "beqz", "bnez",
		"beql", "bnel", "bgezl", "bgtzl", "blezl", "bltzl", "bc1t", "bc1f", "bc1tl", "bc1fl",
	},
}

func buildTable(src map[Category][]string) map[string]Category {
	out := make(map[string]Category)
	for cat, names := range src {
		for _, n := range names {
			if n == "" {
				continue
			}
			if prev, dup := out[n]; dup {
				panic("arch: mnemonic " + n + " listed as both " + prev.String() + " and " + cat.String())
			}
			out[n] = cat
		}
	}
	return out
}

// Floating-point mnemonics, independent of category: fadd is also Arithmetic
// and fcmp also Compare.

var x86Float = []string{
	"fld", "fld1", "fldz", "fild", "fst", "fstp", "fist", "fistp", "fisttp", "fxch",
	"fadd", "faddp", "fiadd", "fsub", "fsubp", "fsubr", "fsubrp", "fmul", "fmulp", "fimul",
	"fdiv", "fdivp", "fdivr", "fdivrp", "fchs", "fabs", "fsqrt", "frndint", "fprem",
	"fcom", "fcomp", "fcompp", "fcomi", "fcomip", "fucom", "fucomp", "fucomi", "fucomip", "ftst",
	"fnstsw", "fstsw", "fldcw", "fnstcw",
	"addss", "addsd", "subss", "subsd", "mulss", "mulsd", "divss", "divsd", "sqrtss", "sqrtsd",
	"addps", "addpd", "subps", "subpd", "mulps", "mulpd", "divps", "divpd",
	"minss", "minsd", "maxss", "maxsd", "ucomiss", "ucomisd", "comiss", "comisd",
	"movss", "movaps", "movups", "movapd", "movupd",
	"cvtsi2ss", "cvtsi2sd", "cvtss2sd", "cvtsd2ss", "cvttss2si", "cvttsd2si", "cvtss2si", "cvtsd2si",
}

var armFloat = []string{
	"fadd", "fsub", "fmul", "fdiv", "fneg", "fabs", "fsqrt", "fmadd", "fmsub", "fnmul",
	"fmin", "fmax", "fmov", "fcmp", "fcmpe", "fccmp", "fcsel",
	"fcvt", "fcvtzs", "fcvtzu", "fcvtas", "fcvtms", "scvtf", "ucvtf", "frintm", "frintp", "frintz",
	"vadd", "vsub", "vmul", "vdiv", "vneg", "vabs", "vsqrt", "vmla", "vmls",
	"vmov", "vldr", "vstr", "vldm", "vstm", "vpush", "vpop", "vcmp", "vcmpe", "vmrs", "vcvt",
}

var mipsFloat = []string{
	"lwc1", "swc1", "ldc1", "sdc1", "mfc1", "mtc1", "dmfc1", "dmtc1", "cfc1", "ctc1",
	"bc1t", "bc1f", "bc1tl", "bc1fl",
}

func buildSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
