package ir

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// findScope recovers the scope table that declared sym, starting the search
// at stmt and walking Parent links outward (spec.md §4.F.1). Branch/loop
// placeholder statements carry the innermost scopes; function parameters and
// named return values live in the function's own Scope, which sits outside
// the Parent chain (the function's root statement has a nil Parent), so that
// is tried last as an explicit fallback.
func findScope(stmt *cfg.Statement, sym *symtab.Symbol) (*symtab.Table, bool) {
	for s := stmt; s != nil; s = s.Parent {
		if s.Scope == nil {
			continue
		}
		if found, ok := s.Scope.Find(sym.Name); ok && found == sym {
			return s.Scope, true
		}
	}
	if stmt != nil && stmt.Function != nil && stmt.Function.Scope != nil {
		if found, ok := stmt.Function.Scope.Find(sym.Name); ok && found == sym {
			return stmt.Function.Scope, true
		}
	}
	return nil, false
}

// varName renders sym, referenced from stmt, as its emitted LF@ operand.
func (e *Emitter) varName(stmt *cfg.Statement, sym *symtab.Symbol) string {
	scope, ok := findScope(stmt, sym)
	if !ok {
		// An invariant breach: every Id node's symbol must resolve to some
		// scope reachable from its statement. Emission cannot continue.
		e.internal(fmt.Sprintf("no enclosing scope declares variable %q", sym.Name))
		return "LF@$0_" + sym.Name
	}
	return fmt.Sprintf("LF@$%d_%s", scope.Prefix(&e.prefixCounter), sym.Name)
}

// scopePrefixName renders the argument/return-value slot name a callee
// expects in its TF-turned-LF frame, without needing an enclosing statement
// (used at call sites, before the callee's body has necessarily been
// visited).
func scopePrefixName(counter *int, scope *symtab.Table, name string) string {
	return fmt.Sprintf("$%d_%s", scope.Prefix(counter), name)
}
