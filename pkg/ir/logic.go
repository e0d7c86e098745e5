package ir

import "github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"

// lowerJump is the jumping-logic lowering (spec.md §4.F.4): it never
// materializes a boolean value, only ever jumps to trueLabel or falseLabel.
// And/Or short-circuit by wiring an intermediate label straight into the
// recursive call rather than evaluating both operands unconditionally, so a
// call behind a short-circuited operand is never emitted.
func (e *Emitter) lowerJump(n *ast.Node, trueLabel, falseLabel string) {
	fn := e.stmt.Function
	switch n.Kind {
	case ast.ConstBool:
		if n.BoolVal {
			e.line("JUMP %s", trueLabel)
		} else {
			e.line("JUMP %s", falseLabel)
		}
	case ast.And:
		if n.Left.Kind == ast.ConstBool {
			// A literal left arm decides at compile time: false jumps
			// straight out and the right arm is never emitted at all.
			if !n.Left.BoolVal {
				e.line("JUMP %s", falseLabel)
				return
			}
			e.lowerJump(n.Right, trueLabel, falseLabel)
			return
		}
		next := e.newLabel(fn, "and")
		e.lowerJump(n.Left, next, falseLabel)
		e.line("LABEL %s", next)
		e.lowerJump(n.Right, trueLabel, falseLabel)
	case ast.Or:
		if n.Left.Kind == ast.ConstBool {
			if n.Left.BoolVal {
				e.line("JUMP %s", trueLabel)
				return
			}
			e.lowerJump(n.Right, trueLabel, falseLabel)
			return
		}
		next := e.newLabel(fn, "or")
		e.lowerJump(n.Left, trueLabel, next)
		e.line("LABEL %s", next)
		e.lowerJump(n.Right, trueLabel, falseLabel)
	case ast.Not:
		e.lowerJump(n.Left, falseLabel, trueLabel)
	case ast.Eq, ast.NEq, ast.Lt, ast.Gt, ast.LtE, ast.GtE:
		e.lowerCompareJump(n, trueLabel, falseLabel)
	default:
		// A bare Id, bool literal or Bool-returning FuncCall: its value is
		// the truth value itself, compared against bool@true.
		e.lowerTruthJump(n, trueLabel, falseLabel)
	}
}

// lowerCompareJump lowers a relational node. Eq/NEq have direct-operand
// conditional jumps; Lt/Gt/LtE/GtE don't, so they're computed via the
// stack-based xTS opcode into GF@$cond_res and then compared against
// bool@true. LtE/GtE have no dedicated opcode and are rewritten as the
// negation of Gt/Lt (swap the labels rather than negate the result).
func (e *Emitter) lowerCompareJump(n *ast.Node, trueLabel, falseLabel string) {
	var l, r string
	switch {
	case isDirectOperand(n.Left):
		l = e.operandString(n.Left)
		r = e.materialize(n.Right, "GF@$cond_rhs")
	case isDirectOperand(n.Right):
		l = e.materialize(n.Left, "GF@$cond_lhs")
		r = e.operandString(n.Right)
	default:
		// Both computed: stage the left result on the data stack so the
		// right side (possibly another comparison using the same registers)
		// can't clobber it.
		e.pushExpr(n.Left)
		e.pushExpr(n.Right)
		e.line("POPS GF@$cond_rhs")
		e.line("POPS GF@$cond_lhs")
		l, r = "GF@$cond_lhs", "GF@$cond_rhs"
	}

	switch n.Kind {
	case ast.Eq:
		e.line("JUMPIFEQ %s %s %s", trueLabel, l, r)
		e.line("JUMP %s", falseLabel)
	case ast.NEq:
		e.line("JUMPIFNEQ %s %s %s", trueLabel, l, r)
		e.line("JUMP %s", falseLabel)
	case ast.Lt:
		e.emitRelational("LTS", l, r, trueLabel, falseLabel)
	case ast.Gt:
		e.emitRelational("GTS", l, r, trueLabel, falseLabel)
	case ast.LtE:
		e.emitRelational("GTS", l, r, falseLabel, trueLabel)
	case ast.GtE:
		e.emitRelational("LTS", l, r, falseLabel, trueLabel)
	}
}

func (e *Emitter) emitRelational(op, l, r, trueLabel, falseLabel string) {
	e.line("PUSHS %s", l)
	e.line("PUSHS %s", r)
	e.line(op)
	e.line("POPS GF@$cond_res")
	e.line("JUMPIFEQ %s GF@$cond_res bool@true", trueLabel)
	e.line("JUMP %s", falseLabel)
}

// lowerTruthJump handles a logic-typed leaf that isn't itself a comparison:
// an Id, a bool literal, or a call returning Bool.
func (e *Emitter) lowerTruthJump(n *ast.Node, trueLabel, falseLabel string) {
	operand := e.materialize(n, "GF@$r1")
	e.line("JUMPIFEQ %s %s bool@true", trueLabel, operand)
	e.line("JUMP %s", falseLabel)
}
