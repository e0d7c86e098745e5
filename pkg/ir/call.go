package ir

import (
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// intrinsicNames are the built-ins registered by pkg/parser.registerBuiltins:
// they never have a cfg.Function of their own, so lowerCall routes them to
// lowerIntrinsic instead of the CREATEFRAME/PUSHFRAME/CALL convention.
var intrinsicNames = map[string]bool{
	"inputs": true, "inputi": true, "inputf": true,
	"print":     true,
	"int2float": true, "float2int": true,
	"len": true, "substr": true, "ord": true, "chr": true,
}

// lowerCall emits n (a FuncCall node) so that its return values end up on
// the data stack in the same convention regardless of callee: zero, one or
// several values, in declared order, ready for the caller to PUSHS-less
// consume (single value already on top) or POPS in order (several values).
func (e *Emitter) lowerCall(n *ast.Node) {
	callee := n.Left.Sym
	var args []*ast.Node
	if n.Right != nil {
		args = n.Right.Items
	}
	if intrinsicNames[callee.Name] {
		e.lowerIntrinsic(callee.Name, args)
		return
	}
	e.lowerUserCall(callee, args)
}

// lowerUserCall implements the calling convention spec.md §4.F.5 describes:
// the caller builds a temporary frame (argument slots named the way the
// callee's own Scope will reference them), turns it into the callee's local
// frame with PUSHFRAME, then CALLs — so the callee's body can start lowering
// statements immediately, with no PUSHFRAME of its own.
func (e *Emitter) lowerUserCall(callee *symtab.Symbol, args []*ast.Node) {
	calleeFn := e.functions[callee.Name]
	if calleeFn == nil {
		e.internal("call to a function with no matching CFG entry: " + callee.Name)
		return
	}

	// Every computed argument evaluates before CREATEFRAME: a nested call
	// inside an argument builds and discards its own temporary frame, which
	// would wipe out any slots this call had already staged in TF. The values
	// wait on the data stack and pop into their slots in reverse order once
	// the frame exists; direct operands are MOVEd into theirs in that pass.
	allDirect := true
	for _, argNode := range args {
		if !isDirectOperand(argNode) {
			allDirect = false
			e.pushExpr(argNode)
		}
	}
	if allDirect {
		e.line("CREATEFRAME")
		for i, argNode := range args {
			slot := "TF@" + scopePrefixName(&e.prefixCounter, calleeFn.Scope, callee.Params[i].Name)
			e.line("DEFVAR %s", slot)
			e.line("MOVE %s %s", slot, e.operandString(argNode))
		}
		e.line("PUSHFRAME")
		e.line("CALL %s", callee.Name)
		return
	}

	e.line("CREATEFRAME")
	for _, param := range callee.Params {
		e.line("DEFVAR TF@%s", scopePrefixName(&e.prefixCounter, calleeFn.Scope, param.Name))
	}
	for i := len(args) - 1; i >= 0; i-- {
		slot := "TF@" + scopePrefixName(&e.prefixCounter, calleeFn.Scope, callee.Params[i].Name)
		if isDirectOperand(args[i]) {
			e.line("MOVE %s %s", slot, e.operandString(args[i]))
			continue
		}
		e.line("POPS %s", slot)
	}
	e.line("PUSHFRAME")
	e.line("CALL %s", callee.Name)
}
