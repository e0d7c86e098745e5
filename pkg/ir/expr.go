package ir

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// operandString renders n (a direct operand: Id or a Const* leaf) as an
// IFJcode20 operand, resolving an Id through the renaming scheme.
func (e *Emitter) operandString(n *ast.Node) string {
	if n.Kind == ast.Id {
		return e.varName(e.stmt, n.Sym)
	}
	return literalOperand(n)
}

// materialize returns an operand string for n, evaluating it into scratch
// first if it isn't already a direct operand. Used by the handful of
// instructions (CONCAT, JUMPIFEQ against a computed value) that need an
// operand rather than a stack push.
func (e *Emitter) materialize(n *ast.Node, scratch string) string {
	if isDirectOperand(n) {
		return e.operandString(n)
	}
	e.pushExpr(n)
	e.line("POPS %s", scratch)
	return scratch
}

// pushExpr evaluates n and leaves exactly one value on top of the data
// stack (spec.md §4.F.3). Logic/comparison nodes are materialized through
// the jumping lowering (§4.F.4) rather than computed directly.
func (e *Emitter) pushExpr(n *ast.Node) {
	switch {
	case isDirectOperand(n):
		e.line("PUSHS %s", e.operandString(n))
	case n.Kind == ast.FuncCall:
		e.lowerCall(n)
	case n.Kind.IsArithmetic():
		e.pushArithmetic(n)
	case n.Kind == ast.ArNeg:
		e.pushNeg(n)
	case n.Kind.IsLogic():
		e.pushBool(n)
	default:
		e.internal(fmt.Sprintf("cannot lower expression of kind %s onto the stack", n.Kind))
	}
}

// pushArithmetic lowers a binary Add/Sub/Mul/Div node, post-order: both
// operands pushed, then the typed stack opcode. String Add is concatenation
// and has no stack opcode, so it's handled separately via CONCAT.
func (e *Emitter) pushArithmetic(n *ast.Node) {
	if n.Kind == ast.Add && n.Type == symtab.String {
		e.pushConcat(n)
		return
	}
	e.pushExpr(n.Left)
	e.pushExpr(n.Right)
	e.line(arithOp(n.Kind, n.Type))
}

func arithOp(kind ast.Kind, t symtab.DataType) string {
	switch kind {
	case ast.Add:
		return "ADDS"
	case ast.Sub:
		return "SUBS"
	case ast.Mul:
		return "MULS"
	case ast.Div:
		if t == symtab.Int {
			return "IDIVS"
		}
		return "DIVS"
	default:
		return ""
	}
}

// pushConcat lowers string "+" via CONCAT, which (unlike the arithmetic
// opcodes) takes its operands directly rather than off the stack. When both
// sides are computed, the left result waits on the data stack while the
// right side runs, since a nested concat would clobber the shared GF
// registers.
func (e *Emitter) pushConcat(n *ast.Node) {
	if isDirectOperand(n.Right) {
		lhs := e.materialize(n.Left, "GF@$r1")
		e.line("CONCAT GF@$r1 %s %s", lhs, e.operandString(n.Right))
		e.line("PUSHS GF@$r1")
		return
	}
	e.pushExpr(n.Left)
	e.pushExpr(n.Right)
	e.line("POPS GF@$r2")
	e.line("POPS GF@$r1")
	e.line("CONCAT GF@$r1 GF@$r1 GF@$r2")
	e.line("PUSHS GF@$r1")
}

// pushNeg lowers unary minus. A literal operand folds directly into a
// negated literal; anything else becomes 0 - x (spec.md §4.F.3).
func (e *Emitter) pushNeg(n *ast.Node) {
	operand := n.Left
	switch operand.Kind {
	case ast.ConstInt:
		e.line("PUSHS int@%d", -operand.IntVal)
		return
	case ast.ConstFloat:
		e.line("PUSHS %s", floatOperand(-operand.FloatVal))
		return
	}
	e.line("PUSHS %s", zeroOperand(n.Type))
	e.pushExpr(operand)
	e.line("SUBS")
}

// pushBool materializes a logic node's value onto the stack by running the
// jumping lowering against a true/false pair of labels local to this one
// materialization (spec.md §4.F.4, "assignment form ... via the same label
// trick").
func (e *Emitter) pushBool(n *ast.Node) {
	fn := e.stmt.Function
	trueLbl := e.newLabel(fn, "vt")
	falseLbl := e.newLabel(fn, "vf")
	endLbl := e.newLabel(fn, "ve")

	e.lowerJump(n, trueLbl, falseLbl)
	e.line("LABEL %s", trueLbl)
	e.line("PUSHS bool@true")
	e.line("JUMP %s", endLbl)
	e.line("LABEL %s", falseLbl)
	e.line("PUSHS bool@false")
	e.line("LABEL %s", endLbl)
}
