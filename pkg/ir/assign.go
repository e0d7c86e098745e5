package ir

import (
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// flattenTargets returns the ordered list of assignment targets of an
// Assign/Define's Left side: either a single Id, or every item of a List.
func flattenTargets(n *ast.Node) []*ast.Node {
	if n.Kind == ast.List {
		return n.Items
	}
	return []*ast.Node{n}
}

// lowerAssign lowers an Assign or Define node: evaluate the right-hand side
// and store it into the left-hand target(s). A multi-target left-hand side
// pairs either with a single multi-return call on the right or with a
// parallel list holding one value per target.
func (e *Emitter) lowerAssign(n *ast.Node) {
	targets := flattenTargets(n.Left)

	if len(targets) > 1 {
		if n.Right.Kind == ast.List {
			// Parallel form: every right-hand value evaluates before any
			// store, so `a, b = b, a` swaps rather than clobbers. The last
			// value pushed sits on top, matching the reverse-order pops.
			for _, item := range n.Right.Items {
				e.pushExpr(item)
			}
			for i := len(targets) - 1; i >= 0; i-- {
				e.storeTarget(targets[i])
			}
			return
		}
		e.lowerCall(n.Right)
		for _, t := range targets {
			e.storeTarget(t)
		}
		return
	}

	target := targets[0]
	if isDiscardedTarget(target) {
		e.evalDiscard(n.Right)
		return
	}
	e.storeExprInto(e.varName(e.stmt, target.Sym), n.Right)
}

// isDiscardedTarget reports whether an assignment target gets no store at
// all: the '_' blackhole, or a variable the source never reads back (its
// DEFVAR was elided, so a store would reference an undeclared name).
func isDiscardedTarget(t *ast.Node) bool {
	return t.Sym != nil && (t.Sym.Type == symtab.BlackHole || t.Sym.RefCount == 0)
}

// storeTarget pops one return value off the stack into t, or discards it if
// t gets no store.
func (e *Emitter) storeTarget(t *ast.Node) {
	if isDiscardedTarget(t) {
		e.line("POPS GF@$r1")
		return
	}
	e.line("POPS %s", e.varName(e.stmt, t.Sym))
}

// storeExprInto evaluates rhs and leaves the result in dest. Bool-typed
// expressions go through the jumping-logic MOVE trick rather than being
// pushed and popped, since no value is ever materialized mid-computation
// for a pure comparison.
func (e *Emitter) storeExprInto(dest string, rhs *ast.Node) {
	if isDirectOperand(rhs) {
		e.line("MOVE %s %s", dest, e.operandString(rhs))
		return
	}
	if rhs.Type == symtab.Bool {
		e.lowerBoolAssign(dest, rhs)
		return
	}
	if rhs.Kind == ast.FuncCall {
		e.lowerCall(rhs)
		e.line("POPS %s", dest)
		return
	}
	e.pushExpr(rhs)
	e.line("POPS %s", dest)
}

// evalDiscard evaluates rhs purely for side effects (assignment to '_').
// A direct operand has none worth preserving and is skipped entirely.
func (e *Emitter) evalDiscard(rhs *ast.Node) {
	if isDirectOperand(rhs) {
		return
	}
	if rhs.Kind == ast.FuncCall {
		e.lowerCall(rhs)
		for range rhs.Left.Sym.Returns {
			e.line("POPS GF@$r1")
		}
		return
	}
	e.pushExpr(rhs)
	e.line("POPS GF@$r1")
}

// lowerBoolAssign stores expr's truth value into dest via the jumping
// lowering: MOVE the appropriate literal in whichever branch is taken.
func (e *Emitter) lowerBoolAssign(dest string, expr *ast.Node) {
	fn := e.stmt.Function
	trueLbl := e.newLabel(fn, "bt")
	falseLbl := e.newLabel(fn, "bf")
	endLbl := e.newLabel(fn, "be")

	e.lowerJump(expr, trueLbl, falseLbl)
	e.line("LABEL %s", trueLbl)
	e.line("MOVE %s bool@true", dest)
	e.line("JUMP %s", endLbl)
	e.line("LABEL %s", falseLbl)
	e.line("MOVE %s bool@false", dest)
	e.line("LABEL %s", endLbl)
}
