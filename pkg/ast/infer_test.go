package ast_test

import (
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

func varSym(tab *symtab.Table, name string, typ symtab.DataType) *symtab.Symbol {
	sym, err := tab.Add(name, symtab.VarSymbol)
	if err != nil {
		panic(err)
	}
	sym.Type = typ
	sym.Defined = true
	return sym
}

func TestInferArithmeticMatchingTypes(t *testing.T) {
	tab := symtab.New(4)
	x := varSym(tab, "x", symtab.Int)
	n := ast.NewBinary(ast.Add, ast.NewID(x), ast.NewConstInt(1))

	if !ast.Infer(n) {
		t.Fatalf("expected inference to succeed")
	}
	if n.Type != symtab.Int {
		t.Errorf("got type %v, want Int", n.Type)
	}
}

func TestInferArithmeticMismatchFails(t *testing.T) {
	tab := symtab.New(4)
	x := varSym(tab, "x", symtab.Int)
	y := varSym(tab, "y", symtab.String)
	n := ast.NewBinary(ast.Add, ast.NewID(x), ast.NewID(y))

	if ast.Infer(n) {
		t.Fatalf("expected inference to fail on Int + String")
	}
	if n.Type != symtab.UnknownUninferrable {
		t.Errorf("got type %v, want UnknownUninferrable", n.Type)
	}
}

// TestInferIsIdempotentOnceUninferrable pins the §8 "type monotonicity"
// property: once a node lands on UnknownUninferrable, re-running Infer
// must not revisit it and must keep reporting failure.
func TestInferIsIdempotentOnceUninferrable(t *testing.T) {
	tab := symtab.New(4)
	x := varSym(tab, "x", symtab.Int)
	y := varSym(tab, "y", symtab.String)
	n := ast.NewBinary(ast.Add, ast.NewID(x), ast.NewID(y))

	ast.Infer(n)
	if ast.Infer(n) {
		t.Fatalf("expected a second Infer call to keep failing")
	}
	if n.Type != symtab.UnknownUninferrable {
		t.Errorf("type changed across calls: got %v", n.Type)
	}
}

func TestInferLogicRequiresBool(t *testing.T) {
	tab := symtab.New(4)
	x := varSym(tab, "x", symtab.Bool)
	y := varSym(tab, "y", symtab.Bool)
	n := ast.NewBinary(ast.And, ast.NewID(x), ast.NewID(y))

	if !ast.Infer(n) {
		t.Fatalf("expected inference to succeed on Bool && Bool")
	}
	if n.Type != symtab.Bool {
		t.Errorf("got type %v, want Bool", n.Type)
	}
}

func TestInferComparisonYieldsBool(t *testing.T) {
	tab := symtab.New(4)
	x := varSym(tab, "x", symtab.Int)
	n := ast.NewBinary(ast.Lt, ast.NewID(x), ast.NewConstInt(3))

	if !ast.Infer(n) {
		t.Fatalf("expected inference to succeed")
	}
	if n.Type != symtab.Bool {
		t.Errorf("got type %v, want Bool", n.Type)
	}
}

func TestInferListArity(t *testing.T) {
	empty := ast.NewList(0)
	if !ast.Infer(empty) || empty.Type != symtab.Nil {
		t.Errorf("empty list: got type %v, want Nil", empty.Type)
	}

	one := ast.NewList(1)
	one.Push(ast.NewConstInt(1))
	if !ast.Infer(one) || one.Type != symtab.Int {
		t.Errorf("singleton list: got type %v, want Int", one.Type)
	}

	many := ast.NewList(2)
	many.Push(ast.NewConstInt(1))
	many.Push(ast.NewConstInt(2))
	if !ast.Infer(many) || many.Type != symtab.Multiple {
		t.Errorf("two-element list: got type %v, want Multiple", many.Type)
	}
}

func TestInferDefinePropagatesTypeOntoFreshVariable(t *testing.T) {
	tab := symtab.New(4)
	a, err := tab.Add("a", symtab.VarSymbol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := ast.NewDefine(ast.NewID(a), ast.NewConstInt(42))

	if !ast.Infer(n) {
		t.Fatalf("expected inference to succeed")
	}
	if n.Type != symtab.Nil {
		t.Errorf("got node type %v, want Nil", n.Type)
	}
	if a.Type != symtab.Int {
		t.Errorf("got symbol type %v, want Int propagated from the literal", a.Type)
	}
}
