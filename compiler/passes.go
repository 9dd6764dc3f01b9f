package compiler

import (
	"math"
)

// Pass rewrites a program in place. Passes keep the program in SSA form and
// never change the value of any output.
type Pass func(p *Program)

// FusionPasses is the aggressive pipeline used for fused execution
func FusionPasses() []Pass {
	return []Pass{
		FoldConstants,
		EliminateCommonSubexpressions,
		FuseMulAdd,
		EliminateDeadCode,
	}
}

// Optimize applies passes to a copy of prog and renumbers its registers
func Optimize(prog *Program, passes ...Pass) *Program {
	p := prog.clone()
	for _, pass := range passes {
		pass(p)
	}
	compact(p)
	return p
}

// FoldConstants evaluates instructions whose operands are all constants and
// forwards x*1 to x.
func FoldConstants(p *Program) {
	known := make(map[int]float64)
	alias := make(map[int]int)
	kept := p.Instrs[:0]
	for _, in := range p.Instrs {
		resolveOperands(&in, alias)
		if in.Op == OpConst {
			known[in.Dst] = in.K
			kept = append(kept, in)
			continue
		}

		var vals [3]float64
		allKnown := true
		for i, op := range in.operands() {
			v, ok := known[*op]
			if !ok {
				allKnown = false
				break
			}
			vals[i] = v
		}
		if allKnown {
			v := apply(in.Op, vals[0], vals[1], vals[2])
			known[in.Dst] = v
			kept = append(kept, Instr{Op: OpConst, Dst: in.Dst, K: v})
			continue
		}

		if in.Op == OpMul {
			if k, ok := known[in.B]; ok && k == 1 {
				alias[in.Dst] = in.A
				continue
			}
			if k, ok := known[in.A]; ok && k == 1 {
				alias[in.Dst] = in.B
				continue
			}
		}
		kept = append(kept, in)
	}
	p.Instrs = kept
	resolveOutputs(p, alias)
}

type valueKey struct {
	op      Op
	a, b, c int
	k       uint64
}

// EliminateCommonSubexpressions keeps the first of any instructions that
// compute the same operation on the same operands. Operands of commutative
// operations are put in canonical order first.
func EliminateCommonSubexpressions(p *Program) {
	seen := make(map[valueKey]int)
	alias := make(map[int]int)
	kept := p.Instrs[:0]
	for _, in := range p.Instrs {
		resolveOperands(&in, alias)
		if in.Op.Commutative() && in.A > in.B {
			in.A, in.B = in.B, in.A
		}

		key := valueKey{op: in.Op, a: -1, b: -1, c: -1}
		switch in.Op.Arity() {
		case 3:
			key.c = in.C
			fallthrough
		case 2:
			key.b = in.B
			fallthrough
		case 1:
			key.a = in.A
		}
		if in.Op == OpConst {
			key.k = math.Float64bits(in.K)
		}

		if prev, ok := seen[key]; ok {
			alias[in.Dst] = prev
			continue
		}
		seen[key] = in.Dst
		kept = append(kept, in)
	}
	p.Instrs = kept
	resolveOutputs(p, alias)
}

// FuseMulAdd merges an add with a single-use multiply feeding it into one
// muladd instruction. The multiply is left for EliminateDeadCode.
func FuseMulAdd(p *Program) {
	uses := useCounts(p)
	def := make(map[int]int, len(p.Instrs))
	for i, in := range p.Instrs {
		def[in.Dst] = i
	}

	for i := range p.Instrs {
		in := &p.Instrs[i]
		if in.Op != OpAdd {
			continue
		}
		for _, pair := range [2][2]int{{in.A, in.B}, {in.B, in.A}} {
			prod, addend := pair[0], pair[1]
			j, ok := def[prod]
			if !ok || p.Instrs[j].Op != OpMul || uses[prod] != 1 {
				continue
			}
			m := p.Instrs[j]
			*in = Instr{Op: OpMulAdd, Dst: in.Dst, A: m.A, B: m.B, C: addend}
			uses[prod] = 0
			break
		}
	}
}

// EliminateDeadCode removes instructions that no output depends on
func EliminateDeadCode(p *Program) {
	live := make([]bool, p.NumRegs)
	for _, r := range p.Outputs {
		live[r] = true
	}
	for i := len(p.Instrs) - 1; i >= 0; i-- {
		in := &p.Instrs[i]
		if !live[in.Dst] {
			continue
		}
		for _, op := range in.operands() {
			live[*op] = true
		}
	}

	kept := p.Instrs[:0]
	for _, in := range p.Instrs {
		if live[in.Dst] {
			kept = append(kept, in)
		}
	}
	p.Instrs = kept
}

// compact renumbers registers densely after the inputs
func compact(p *Program) {
	remap := make([]int, p.NumRegs)
	for i := range remap {
		remap[i] = i
	}
	next := NumInputs
	for i := range p.Instrs {
		in := &p.Instrs[i]
		for _, op := range in.operands() {
			*op = remap[*op]
		}
		remap[in.Dst] = next
		in.Dst = next
		next++
	}
	for k, r := range p.Outputs {
		p.Outputs[k] = remap[r]
	}
	p.NumRegs = next
}

func useCounts(p *Program) []int {
	uses := make([]int, p.NumRegs)
	for i := range p.Instrs {
		for _, op := range p.Instrs[i].operands() {
			uses[*op]++
		}
	}
	for _, r := range p.Outputs {
		uses[r]++
	}
	return uses
}

func resolve(alias map[int]int, r int) int {
	for {
		a, ok := alias[r]
		if !ok {
			return r
		}
		r = a
	}
}

func resolveOperands(in *Instr, alias map[int]int) {
	if len(alias) == 0 {
		return
	}
	for _, op := range in.operands() {
		*op = resolve(alias, *op)
	}
}

func resolveOutputs(p *Program, alias map[int]int) {
	for k, r := range p.Outputs {
		p.Outputs[k] = resolve(alias, r)
	}
}

func apply(op Op, a, b, c float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return float64(a * b)
	case OpNeg:
		return -a
	case OpMulAdd:
		return float64(a*b) + c
	}
	panic("compiler: cannot evaluate " + op.String())
}
