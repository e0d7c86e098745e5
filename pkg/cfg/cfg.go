// Package cfg implements the per-function control-flow graph: a tree of
// statements (basic/if/for/return) linking the typed ASTs (pkg/ast) and the
// symbol tables (pkg/symtab) built by the parser.
package cfg

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// StmtKind discriminates the four statement variants of spec.md §3.4.
type StmtKind int

const (
	Basic StmtKind = iota
	If
	For
	Return
)

// Statement is one node of a function's body tree. Which fields are
// meaningful depends on Kind; branch/loop-body statements are children
// (Then/Else/Body), not successors — Next always points to what comes
// after the enclosing construct.
type Statement struct {
	Kind     StmtKind
	Function *Function
	Parent   *Statement // for the scope walk
	Next     *Statement // next sibling at this nesting level

	Scope *symtab.Table

	BodyAST *ast.Node // Basic: an Assign, Define or value-ignoring FuncCall

	Cond *ast.Node // If: condition AST (typed Bool)
	Then *Statement
	Else *Statement // optional

	Init    *ast.Node // For: optional init (must be Define)
	ForCond *ast.Node // For: optional condition (must be Bool)
	Post    *ast.Node // For: optional post (must be Assign)
	Body    *Statement

	Return *ast.Node // Return: a List whose length matches the function's arity
}

// Function is a declared function: name, signature, a pointer to its body's
// root statement and its body scope's symbol table.
type Function struct {
	Name       string
	Sym        *symtab.Symbol
	Root       *Statement
	Scope      *symtab.Table
	IsMain     bool
	Terminated bool // set once a return has unconditionally been emitted along fall-through
}

// Program is the whole parsed unit: every function plus the global table
// that holds function symbols and built-ins (the outermost scope).
type Program struct {
	Functions []*Function
	Global    *symtab.Table
}

// ASTRoots enumerates every AST root reachable from the program — one per
// Basic body, If condition, For init/cond/post and Return list — so the
// constant folder (pkg/ast) can run to a fixed point without needing to
// know about statements at all.
func (p *Program) ASTRoots() []*ast.Node {
	var roots []*ast.Node
	var walk func(s *Statement)
	walk = func(s *Statement) {
		for s != nil {
			switch s.Kind {
			case Basic:
				roots = append(roots, s.BodyAST)
			case If:
				roots = append(roots, s.Cond)
				walk(s.Then)
				walk(s.Else)
			case For:
				roots = append(roots, s.Init, s.ForCond, s.Post)
				walk(s.Body)
			case Return:
				roots = append(roots, s.Return)
			}
			s = s.Next
		}
	}
	for _, fn := range p.Functions {
		walk(fn.Root)
	}
	return roots
}

// Builder drives CFG construction from the statement parser via the
// "active function / active statement" cursor pair described in spec.md
// §4.C. These cursors are confined to parsing; emission walks the resulting
// tree read-only and never touches a Builder.
type Builder struct {
	Prog *Program

	activeFunc *Function
	activeStmt *Statement
}

// NewBuilder returns a Builder over a fresh Program rooted at global.
func NewBuilder(global *symtab.Table) *Builder {
	return &Builder{Prog: &Program{Global: global}}
}

// MakeFunction creates a function and opens it as the active function.
// Redefining main is an internal invariant breach caught by the caller via
// a prior symtab Find, so this only guards the CFG-level invariant.
func (b *Builder) MakeFunction(name string, sym *symtab.Symbol) (*Function, error) {
	for _, fn := range b.Prog.Functions {
		if fn.Name == name {
			return nil, fmt.Errorf("cfg: function %q already has a CFG entry", name)
		}
	}
	fn := &Function{Name: name, Sym: sym, IsMain: name == "main"}
	b.Prog.Functions = append(b.Prog.Functions, fn)
	b.activeFunc = fn
	b.activeStmt = nil
	return fn, nil
}

// ActiveFunction returns the function currently being built.
func (b *Builder) ActiveFunction() *Function { return b.activeFunc }

// MakeNextStatement creates a sibling after the active statement (or the
// function's root, if none yet) and activates it. Parent is set to the
// statement that was active before this call, not flattened to its
// grandparent: the emitter's scope walk (pkg/ir) follows this chain one
// link at a time until it reaches a statement carrying a non-nil Scope,
// which is normally the branch/loop's first statement (see
// MakeIfThenStatement and friends) rather than the If/For node itself.
func (b *Builder) MakeNextStatement(kind StmtKind) *Statement {
	stmt := &Statement{Kind: kind, Function: b.activeFunc, Parent: b.activeStmt}

	if b.activeStmt == nil {
		if b.activeFunc.Root == nil {
			b.activeFunc.Root = stmt
		} else {
			// Root already set from an earlier branch/loop close: append at tail.
			last := b.activeFunc.Root
			for last.Next != nil {
				last = last.Next
			}
			last.Next = stmt
		}
	} else {
		b.activeStmt.Next = stmt
	}

	b.activeStmt = stmt
	return stmt
}

// MakeIfThenStatement creates the 'then' child of parent (an If statement)
// and activates it. parent is explicit rather than read off the builder's
// cursor so that a nested if/for fully closed inside the branch can't leave
// the wrong statement active — spec.md's "active pointer" is the parser's
// own local references to its enclosing constructs, not global state.
func (b *Builder) MakeIfThenStatement(parent *Statement, kind StmtKind) *Statement {
	child := &Statement{Kind: kind, Function: b.activeFunc, Parent: parent}
	parent.Then = child
	b.activeStmt = child
	return child
}

// MakeIfElseStatement creates the 'else' child of parent (an If statement).
func (b *Builder) MakeIfElseStatement(parent *Statement, kind StmtKind) *Statement {
	child := &Statement{Kind: kind, Function: b.activeFunc, Parent: parent}
	parent.Else = child
	b.activeStmt = child
	return child
}

// MakeForBodyStatement creates the body child of parent (a For statement).
func (b *Builder) MakeForBodyStatement(parent *Statement, kind StmtKind) *Statement {
	child := &Statement{Kind: kind, Function: b.activeFunc, Parent: parent}
	parent.Body = child
	b.activeStmt = child
	return child
}

// Activate restores s as the active statement. The statement parser calls
// this with the If/For it holds once the whole construct (else chain
// included) is closed, so the next sibling attaches after the construct
// itself rather than after whatever statement the branch ended on. This
// subsumes the original's pop-to-previous-branched-statement parent walk:
// Parent links thread through siblings, so a walk for "the nearest
// enclosing If/For" cannot tell the enclosing construct apart from a
// nested one that happens to close the branch — an explicit reference can.
func (b *Builder) Activate(s *Statement) { b.activeStmt = s }

// AssignStatementSymtable attaches a scope table to the active statement.
func (b *Builder) AssignStatementSymtable(t *symtab.Table) {
	b.activeStmt.Scope = t
}

// ActiveStatement exposes the active statement (e.g. to attach Cond/Init/...).
func (b *Builder) ActiveStatement() *Statement { return b.activeStmt }
