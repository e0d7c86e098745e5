package ir

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// emitDefVars walks every scope reachable from fn (its own Scope, plus one
// per branch/loop body encountered while walking the statement tree) and
// emits a DEFVAR for each variable that's actually referenced (spec.md
// §4.F.7): RefCount == 0 means the source never read it back, so it gets
// no slot at all. Named return values are additionally zero-initialized,
// since a bare `return` must see a defined value even if the source never
// assigned one explicitly.
func (e *Emitter) emitDefVars(fn *cfg.Function) {
	var scopes []*symtab.Table
	if fn.Scope != nil {
		scopes = append(scopes, fn.Scope)
	}
	collectScopes(fn.Root, &scopes)

	for _, scope := range scopes {
		for _, sym := range sortedSymbols(scope) {
			if sym.Kind != symtab.VarSymbol || sym.IsArgument || sym.RefCount == 0 {
				continue
			}
			name := fmt.Sprintf("LF@%s", scopePrefixName(&e.prefixCounter, scope, sym.Name))
			e.line("DEFVAR %s", name)
			if sym.IsReturnValue {
				e.line("MOVE %s %s", name, zeroOperand(sym.Type))
			}
		}
	}
}

// collectScopes appends every scope table reachable from stmt, recursing
// into if/for bodies; it does not recurse into Return (a leaf) or Basic (no
// children).
func collectScopes(stmt *cfg.Statement, out *[]*symtab.Table) {
	for s := stmt; s != nil; s = s.Next {
		if s.Scope != nil {
			*out = append(*out, s.Scope)
		}
		switch s.Kind {
		case cfg.If:
			collectScopes(s.Then, out)
			collectScopes(s.Else, out)
		case cfg.For:
			collectScopes(s.Body, out)
		}
	}
}
