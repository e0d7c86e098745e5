package ast_test

import (
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
)

// TestFoldProgramCollapsesConstIntChain pins the §8 "constant folder
// fixed point" property: after folding, no Add(ConstInt, ConstInt) node
// survives anywhere, even when it only appears after an earlier fold
// (1 + 2 + 3 needs two passes to collapse fully).
func TestFoldProgramCollapsesConstIntChain(t *testing.T) {
	// (1 + 2) + 3
	inner := ast.NewBinary(ast.Add, ast.NewConstInt(1), ast.NewConstInt(2))
	root := ast.NewBinary(ast.Add, inner, ast.NewConstInt(3))

	if err := ast.FoldProgram([]*ast.Node{root}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.Kind != ast.ConstInt {
		t.Fatalf("got kind %v, want a folded ConstInt leaf", root.Kind)
	}
	if root.IntVal != 6 {
		t.Errorf("got value %d, want 6", root.IntVal)
	}
	if root.Left != nil || root.Right != nil {
		t.Errorf("expected the folded node to have no remaining children")
	}
}

func TestFoldProgramLeavesNonLiteralAddAlone(t *testing.T) {
	left := ast.NewConstInt(1)
	right := ast.NewUnary(ast.ArNeg, ast.NewConstInt(1)) // not a ConstInt itself
	root := ast.NewBinary(ast.Add, left, right)

	if err := ast.FoldProgram([]*ast.Node{root}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.Kind != ast.Add {
		t.Fatalf("got kind %v, want Add left unfolded (right child isn't a literal)", root.Kind)
	}
}

func TestFoldProgramRecursesIntoListItems(t *testing.T) {
	list := ast.NewList(1)
	list.Push(ast.NewBinary(ast.Add, ast.NewConstInt(2), ast.NewConstInt(3)))

	if err := ast.FoldProgram([]*ast.Node{list}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if list.Items[0].Kind != ast.ConstInt || list.Items[0].IntVal != 5 {
		t.Errorf("got %+v, want folded ConstInt(5)", list.Items[0])
	}
}

// TestFoldProgramReportsLiteralZeroDivisor pins the §7 code-9 source: a
// division whose right operand is a literal zero is detected during folding.
func TestFoldProgramReportsLiteralZeroDivisor(t *testing.T) {
	root := ast.NewBinary(ast.Div, ast.NewConstInt(1), ast.NewConstInt(0))

	if err := ast.FoldProgram([]*ast.Node{root}); err != ast.ErrDivisionByZero {
		t.Fatalf("got err %v, want ErrDivisionByZero", err)
	}
}

func TestFoldProgramAllowsNonZeroDivisor(t *testing.T) {
	root := ast.NewBinary(ast.Div, ast.NewConstInt(1), ast.NewConstInt(2))

	if err := ast.FoldProgram([]*ast.Node{root}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
