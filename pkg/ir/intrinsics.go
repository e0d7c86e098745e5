package ir

import (
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// lowerIntrinsic hand-expands one of the eight built-ins pkg/parser
// registers into GF@$cond_res (scratch), either on the global table directly
// or via the shared GF@$r1/$r2/$r3 registers (spec.md §4.F.6). Every
// intrinsic leaves its return values on the data stack in the same
// convention as a user call, so call sites never need to special-case them.
func (e *Emitter) lowerIntrinsic(name string, args []*ast.Node) {
	switch name {
	case "print":
		e.lowerPrint(args)
	case "int2float":
		e.pushExpr(args[0])
		e.line("INT2FLOATS")
	case "float2int":
		e.pushExpr(args[0])
		e.line("FLOAT2INTS")
	case "len":
		src := e.materialize(args[0], "GF@$r1")
		e.line("STRLEN GF@$r1 %s", src)
		e.line("PUSHS GF@$r1")
	case "chr":
		e.lowerChr(args[0])
	case "substr":
		e.lowerSubstr(args[0], args[1], args[2])
	case "ord":
		e.lowerOrd(args[0], args[1])
	case "inputs":
		e.lowerInput(symtab.String)
	case "inputi":
		e.lowerInput(symtab.Int)
	case "inputf":
		e.lowerInput(symtab.Float)
	}

	// The two-value expansions push (value, error code), leaving the code on
	// top; swap the pair so the first result is on top, as after a user call.
	switch name {
	case "chr", "substr", "ord", "inputs", "inputi", "inputf":
		e.line("POPS GF@$r2")
		e.line("POPS GF@$r1")
		e.line("PUSHS GF@$r2")
		e.line("PUSHS GF@$r1")
	}
}

// lowerPrint writes each argument directly; a Bool-typed one is routed
// through the jumping lowering to pick the right literal, since there's no
// general "write this computed bool" instruction.
func (e *Emitter) lowerPrint(args []*ast.Node) {
	for _, a := range args {
		if isDirectOperand(a) {
			e.line("WRITE %s", e.operandString(a))
			continue
		}
		if a.Type == symtab.Bool {
			e.writeBool(a)
			continue
		}
		e.pushExpr(a)
		e.line("POPS GF@$print")
		e.line("WRITE GF@$print")
	}
}

func (e *Emitter) writeBool(a *ast.Node) {
	fn := e.stmt.Function
	trueLbl := e.newLabel(fn, "pt")
	falseLbl := e.newLabel(fn, "pf")
	endLbl := e.newLabel(fn, "pe")

	e.lowerJump(a, trueLbl, falseLbl)
	e.line("LABEL %s", trueLbl)
	e.line("WRITE bool@true")
	e.line("JUMP %s", endLbl)
	e.line("LABEL %s", falseLbl)
	e.line("WRITE bool@false")
	e.line("LABEL %s", endLbl)
}

// lowerChr expands chr(i): out of [0,255] yields ("", 1), otherwise
// (INT2CHAR result, 0). Uses only GF@$r1/$cond_res, no $r3 (unlike
// substr/ord, it never needs three live scratch values at once).
func (e *Emitter) lowerChr(arg *ast.Node) {
	fn := e.stmt.Function
	failLbl := e.newLabel(fn, "chr_fail")
	endLbl := e.newLabel(fn, "chr_end")

	e.pushExpr(arg)
	e.line("POPS GF@$r1")

	e.line("PUSHS GF@$r1")
	e.line("PUSHS int@0")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", failLbl)

	e.line("PUSHS GF@$r1")
	e.line("PUSHS int@255")
	e.line("GTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", failLbl)

	e.line("INT2CHAR GF@$r1 GF@$r1")
	e.line("PUSHS GF@$r1")
	e.line("PUSHS int@0")
	e.line("JUMP %s", endLbl)

	e.line("LABEL %s", failLbl)
	e.line("PUSHS string@")
	e.line("PUSHS int@1")

	e.line("LABEL %s", endLbl)
}

// lowerOrd expands ord(s, i): out-of-range i yields (0, 1), otherwise
// (STRI2INT result, 0).
func (e *Emitter) lowerOrd(sArg, iArg *ast.Node) {
	fn := e.stmt.Function
	failLbl := e.newLabel(fn, "ord_fail")
	endLbl := e.newLabel(fn, "ord_end")

	// Both arguments evaluate before either register is written: evaluating
	// i could itself use $r1 (a nested len or call).
	e.pushExpr(sArg)
	e.pushExpr(iArg)
	e.line("POPS GF@$r2")
	e.line("POPS GF@$r1")

	e.line("PUSHS GF@$r2")
	e.line("PUSHS int@0")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", failLbl)

	e.line("STRLEN GF@$cond_lhs GF@$r1")
	e.line("PUSHS GF@$r2")
	e.line("PUSHS GF@$cond_lhs")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFNEQ %s GF@$cond_res bool@true", failLbl)

	e.line("STRI2INT GF@$r3 GF@$r1 GF@$r2")
	e.line("PUSHS GF@$r3")
	e.line("PUSHS int@0")
	e.line("JUMP %s", endLbl)

	e.line("LABEL %s", failLbl)
	e.line("PUSHS int@0")
	e.line("PUSHS int@1")

	e.line("LABEL %s", endLbl)
}

// lowerSubstr expands substr(s, i, n): validates 0 <= i < len(s) and n >= 0,
// clamps i+n to len(s), and copies the characters in [i, end) one at a time
// with GETCHAR/CONCAT into an accumulator. Failure yields ("", 1), success
// (result, 0).
func (e *Emitter) lowerSubstr(sArg, iArg, nArg *ast.Node) {
	fn := e.stmt.Function
	failLbl := e.newLabel(fn, "substr_fail")
	clampLbl := e.newLabel(fn, "substr_clamp")
	afterClampLbl := e.newLabel(fn, "substr_afterclamp")
	loopLbl := e.newLabel(fn, "substr_loop")
	doneLbl := e.newLabel(fn, "substr_done")
	endLbl := e.newLabel(fn, "substr_end")

	e.pushExpr(sArg)
	e.pushExpr(iArg)
	e.pushExpr(nArg)
	e.line("POPS GF@$r3") // n, later repurposed as the accumulator
	e.line("POPS GF@$r2") // loop index, starts at i
	e.line("POPS GF@$r1") // s

	e.line("PUSHS GF@$r2")
	e.line("PUSHS int@0")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", failLbl)

	e.line("PUSHS GF@$r3")
	e.line("PUSHS int@0")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", failLbl)

	e.line("STRLEN GF@$cond_lhs GF@$r1") // len(s)
	e.line("PUSHS GF@$r2")
	e.line("PUSHS GF@$cond_lhs")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFNEQ %s GF@$cond_res bool@true", failLbl)

	e.line("ADD GF@$cond_rhs GF@$r2 GF@$r3") // end = i + n
	e.line("PUSHS GF@$cond_rhs")
	e.line("PUSHS GF@$cond_lhs")
	e.line("GTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", clampLbl)
	e.line("JUMP %s", afterClampLbl)
	e.line("LABEL %s", clampLbl)
	e.line("MOVE GF@$cond_rhs GF@$cond_lhs") // end = len(s)
	e.line("LABEL %s", afterClampLbl)

	e.line("MOVE GF@$r3 string@") // accumulator
	e.line("LABEL %s", loopLbl)
	e.line("PUSHS GF@$r2")
	e.line("PUSHS GF@$cond_rhs")
	e.line("LTS")
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFNEQ %s GF@$cond_res bool@true", doneLbl)
	e.line("GETCHAR GF@$cond_lhs GF@$r1 GF@$r2") // len(s) no longer needed past here
	e.line("CONCAT GF@$r3 GF@$r3 GF@$cond_lhs")
	e.line("ADD GF@$r2 GF@$r2 int@1")
	e.line("JUMP %s", loopLbl)

	e.line("LABEL %s", doneLbl)
	e.line("PUSHS GF@$r3")
	e.line("PUSHS int@0")
	e.line("JUMP %s", endLbl)

	e.line("LABEL %s", failLbl)
	e.line("PUSHS string@")
	e.line("PUSHS int@1")

	e.line("LABEL %s", endLbl)
}

// ifjTypeTag renders t the way IFJcode20's READ/TYPE instructions name it,
// which for float is "float" rather than symtab.DataType's Go-flavoured
// "float64".
func ifjTypeTag(t symtab.DataType) string {
	switch t {
	case symtab.Int:
		return "int"
	case symtab.Float:
		return "float"
	case symtab.String:
		return "string"
	case symtab.Bool:
		return "bool"
	default:
		return "nil"
	}
}

// lowerInput expands one of inputs/inputi/inputf: READ into a register,
// compare its runtime type tag against the expected one, and push
// (value, 0) or (the zero value for t, 1) accordingly.
func (e *Emitter) lowerInput(t symtab.DataType) {
	fn := e.stmt.Function
	okLbl := e.newLabel(fn, "input_ok")
	endLbl := e.newLabel(fn, "input_end")

	typeTag := ifjTypeTag(t)
	e.line("READ GF@$r1 %s", typeTag)
	e.line("TYPE GF@$cond_res GF@$r1")
	e.line("JUMPIFEQ %s GF@$cond_res string@%s", okLbl, typeTag)
	e.line("PUSHS %s", zeroOperand(t))
	e.line("PUSHS int@1")
	e.line("JUMP %s", endLbl)
	e.line("LABEL %s", okLbl)
	e.line("PUSHS GF@$r1")
	e.line("PUSHS int@0")
	e.line("LABEL %s", endLbl)
}
