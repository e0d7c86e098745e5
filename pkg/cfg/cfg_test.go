package cfg_test

import (
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

func TestASTRootsFlattensIfForAndReturn(t *testing.T) {
	global := symtab.New(4)
	mainSym, _ := global.Add("main", symtab.FuncSymbol)

	b := cfg.NewBuilder(global)
	fn, err := b.MakeFunction("main", mainSym)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ifCond := ast.NewConstBool(true)
	ifStmt := b.MakeNextStatement(cfg.If)
	ifStmt.Cond = ifCond
	b.MakeIfThenStatement(ifStmt, cfg.Basic)
	thenBody := ast.NewConstInt(1)
	b.ActiveStatement().BodyAST = thenBody
	b.Activate(ifStmt)

	forCond := ast.NewConstBool(false)
	forStmt := b.MakeNextStatement(cfg.For)
	forStmt.ForCond = forCond
	forStmt.Init = ast.NewDefine(nil, nil)

	returnList := ast.NewList(0)
	retStmt := b.MakeNextStatement(cfg.Return)
	retStmt.Return = returnList

	prog := b.Prog
	if fn.Root == nil {
		t.Fatalf("expected a root statement to be set")
	}

	roots := prog.ASTRoots()
	found := map[*ast.Node]bool{}
	for _, r := range roots {
		found[r] = true
	}
	for _, want := range []*ast.Node{ifCond, thenBody, forCond, forStmt.Init, returnList} {
		if !found[want] {
			t.Errorf("expected ASTRoots to include %+v", want)
		}
	}
}
