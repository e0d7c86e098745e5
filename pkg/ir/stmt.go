package ir

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// emitFunction lowers one function's whole body: a LABEL, its DEFVARs
// (spec.md §4.F.7), its statements in order (§4.F.2), and finally whatever
// return the control flow falls through to if the source's last statement
// wasn't already a Return.
func (e *Emitter) emitFunction(fn *cfg.Function, mainAsFunc bool) {
	e.mainAsFunc = mainAsFunc

	e.line("")
	e.line("LABEL %s", fn.Name)
	if fn.IsMain && !mainAsFunc {
		// Entered by JUMP, not CALL: nobody staged a local frame, and the
		// body's DEFVARs address LF.
		e.line("CREATEFRAME")
		e.line("PUSHFRAME")
	}

	if fn.IsMain && fn.Root == nil {
		e.sink.Report(diag.Success, "function main is empty")
	}
	if !fn.IsMain && fn.Sym.RefCount == 0 {
		// Warn-but-emit, never suppress: a function nothing references still
		// gets its body in the output.
		e.sink.Report(diag.Success, "function %s is never used", fn.Name)
	}

	e.emitDefVars(fn)
	e.lowerStmtList(fn.Root)
	e.emitFallthroughReturn(fn)
}

// lowerStmtList walks a sibling chain, dispatching each statement by kind.
// Scope-carrying placeholder statements (the dummy head of an if/for body,
// see pkg/cfg.Builder.MakeIfThenStatement and friends) have a nil BodyAST
// and carry no code of their own.
func (e *Emitter) lowerStmtList(stmt *cfg.Statement) {
	for s := stmt; s != nil; s = s.Next {
		switch s.Kind {
		case cfg.Basic:
			if s.BodyAST != nil {
				e.lowerBasic(s)
			}
		case cfg.If:
			e.lowerIf(s)
		case cfg.For:
			e.lowerFor(s)
		case cfg.Return:
			e.lowerReturn(s)
		}
	}
}

func (e *Emitter) lowerBasic(stmt *cfg.Statement) {
	e.stmt = stmt
	n := stmt.BodyAST
	switch n.Kind {
	case ast.Assign, ast.Define:
		e.lowerAssign(n)
	case ast.FuncCall:
		e.lowerCall(n)
		for range n.Left.Sym.Returns {
			e.line("POPS GF@$r1")
		}
	default:
		e.internal(fmt.Sprintf("unexpected basic-statement AST kind %s", n.Kind))
	}
}

func (e *Emitter) lowerIf(stmt *cfg.Statement) {
	e.stmt = stmt
	fn := stmt.Function
	if stmt.Cond.Type != symtab.Bool {
		e.semanticErr(diag.TypeIncompatibility, "if condition must be bool, got %s", stmt.Cond.Type)
		return
	}
	thenLbl := e.newLabel(fn, "then")
	elseLbl := e.newLabel(fn, "else")

	e.lowerJump(stmt.Cond, thenLbl, elseLbl)

	e.line("LABEL %s", thenLbl)
	e.lowerStmtList(stmt.Then)

	if stmt.Else != nil {
		endLbl := e.newLabel(fn, "endif")
		e.line("JUMP %s", endLbl)
		e.line("LABEL %s", elseLbl)
		e.lowerStmtList(stmt.Else)
		e.line("LABEL %s", endLbl)
		return
	}
	e.line("LABEL %s", elseLbl)
}

func (e *Emitter) lowerFor(stmt *cfg.Statement) {
	e.stmt = stmt
	fn := stmt.Function

	if stmt.Init != nil {
		e.lowerAssign(stmt.Init)
	}

	beginLbl := e.newLabel(fn, "forbegin")
	bodyLbl := e.newLabel(fn, "forbody")
	endLbl := e.newLabel(fn, "forend")

	e.line("LABEL %s", beginLbl)
	if stmt.ForCond != nil {
		if stmt.ForCond.Type != symtab.Bool {
			e.semanticErr(diag.TypeIncompatibility, "for condition must be bool, got %s", stmt.ForCond.Type)
			return
		}
		e.lowerJump(stmt.ForCond, bodyLbl, endLbl)
	}
	e.line("LABEL %s", bodyLbl)
	e.lowerStmtList(stmt.Body)

	e.stmt = stmt
	if stmt.Post != nil {
		e.lowerAssign(stmt.Post)
	}
	e.line("JUMP %s", beginLbl)
	e.line("LABEL %s", endLbl)
}

func (e *Emitter) lowerReturn(stmt *cfg.Statement) {
	e.stmt = stmt
	fn := stmt.Function

	if !e.checkReturnTypes(fn, stmt.Return) {
		return
	}
	e.emitReturnValues(fn, stmt.Return)
	if fn.IsMain && !e.mainAsFunc {
		e.line("EXIT int@0")
		return
	}
	e.line("POPFRAME")
	e.line("RETURN")
}

// checkReturnTypes verifies an explicit return list's value types against
// the declared return types; arity was already enforced at parse time, so
// items and Returns line up index for index.
func (e *Emitter) checkReturnTypes(fn *cfg.Function, list *ast.Node) bool {
	for i, item := range list.Items {
		want := fn.Sym.Returns[i].Type
		if item.Type != want {
			e.semanticErr(diag.WrongParamOrReturn,
				"function %s: return value %d has type %s, want %s", fn.Name, i+1, item.Type, want)
			return false
		}
	}
	return true
}

// emitReturnValues implements spec.md §4.F.5: a bare return on a
// named-return function pushes each named slot's current value in
// declared order; otherwise the return list is evaluated and pushed in
// reverse source order, so the caller's natural-order POPS sequence lands
// each value on its matching target.
func (e *Emitter) emitReturnValues(fn *cfg.Function, list *ast.Node) {
	if fn.Sym.ReturnsNamed && len(list.Items) == 0 {
		for _, ret := range fn.Sym.Returns {
			e.line("PUSHS LF@%s", scopePrefixName(&e.prefixCounter, fn.Scope, ret.Name))
		}
		return
	}
	items := list.Items
	for i := len(items) - 1; i >= 0; i-- {
		e.pushExpr(items[i])
	}
}

// emitFallthroughReturn covers a function whose last top-level statement
// isn't a Return: main falls out to EXIT int@0, a named-return function
// re-pushes its named slots, anything else returns without pushing since
// the source is responsible for reaching every return-carrying path
// explicitly (no flow analysis is attempted beyond this straight-line
// check).
func (e *Emitter) emitFallthroughReturn(fn *cfg.Function) {
	last := fn.Root
	for last != nil && last.Next != nil {
		last = last.Next
	}
	if last != nil && last.Kind == cfg.Return {
		fn.Terminated = true
		return
	}

	if fn.IsMain && !e.mainAsFunc {
		e.line("EXIT int@0")
		return
	}

	e.emitReturnValues(fn, ast.NewList(0))
	e.line("POPFRAME")
	e.line("RETURN")
}
