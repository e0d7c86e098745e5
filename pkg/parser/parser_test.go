package parser_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/parser"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

func parse(t *testing.T, src string) (*cfg.Program, error) {
	t.Helper()
	var errBuf bytes.Buffer
	sink := diag.NewSink(&errBuf, "parser")
	return parser.New(strings.NewReader(src), sink).Parse()
}

// errCode extracts the spec.md §7 exit code an error maps to; every error
// type the parser surfaces (its own, pparser's, the scanner's) knows its own.
func errCode(t *testing.T, err error) diag.Code {
	t.Helper()
	coded, ok := err.(interface{ Code() diag.Code })
	if !ok {
		t.Fatalf("error %v (%T) carries no diagnostic code", err, err)
	}
	return coded.Code()
}

func findFunction(t *testing.T, prog *cfg.Program, name string) *cfg.Function {
	t.Helper()
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %s missing from the parsed program", name)
	return nil
}

func TestParseBuildsSignatures(t *testing.T) {
	src := "package main\n" +
		"func add(a int, b int) int {\n\treturn a + b\n}\n" +
		"func main() {\n\t_ = add(1, 2)\n}\n"
	prog, err := parse(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	add := findFunction(t, prog, "add")
	if add.Sym.ParamsCount() != 2 || add.Sym.RetTypesCount() != 1 {
		t.Errorf("got %d params / %d returns, want 2/1", add.Sym.ParamsCount(), add.Sym.RetTypesCount())
	}
	if add.Sym.Params[0].Name != "a" || add.Sym.Params[0].Type != symtab.Int {
		t.Errorf("first parameter = %+v, want a int", add.Sym.Params[0])
	}
	if add.Sym.Returns[0].Type != symtab.Int || add.Sym.ReturnsNamed {
		t.Errorf("return clause = %+v named=%v, want one anonymous int", add.Sym.Returns, add.Sym.ReturnsNamed)
	}
	if add.Scope == nil {
		t.Errorf("expected the function body scope to be attached")
	}
}

// TestStatementAfterElseIfChainIsSiblingOfOuterIf pins the successor shape
// of spec.md §3.4: whatever follows a whole if/else-if construct hangs off
// the outermost If's Next pointer, never off a branch child's.
func TestStatementAfterElseIfChainIsSiblingOfOuterIf(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\ta := 1\n" +
		"\tif a < 0 {\n\t\tprint(\"n\")\n\t} else if a > 0 {\n\t\tprint(\"p\")\n\t}\n" +
		"\tprint(\"done\")\n" +
		"}\n"
	prog, err := parse(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	main := findFunction(t, prog, "main")
	ifStmt := main.Root.Next
	if ifStmt == nil || ifStmt.Kind != cfg.If {
		t.Fatalf("expected the second statement to be the If, got %+v", ifStmt)
	}
	elseIf := ifStmt.Else
	if elseIf == nil || elseIf.Kind != cfg.If {
		t.Fatalf("expected the else branch to be the chained If, got %+v", elseIf)
	}
	if elseIf.Next != nil {
		t.Errorf("the chained else-if must not own a successor, got %+v", elseIf.Next)
	}
	after := ifStmt.Next
	if after == nil || after.Kind != cfg.Basic || after.BodyAST == nil || after.BodyAST.Kind != ast.FuncCall {
		t.Fatalf("expected the trailing print to be the If's successor, got %+v", after)
	}
}

func TestForHeaderDefineLandsInInit(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\tfor i := 0; i < 3; i = i + 1 {\n\t\tprint(i)\n\t}\n" +
		"}\n"
	prog, err := parse(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	forStmt := findFunction(t, prog, "main").Root
	if forStmt.Kind != cfg.For {
		t.Fatalf("got statement kind %v, want For", forStmt.Kind)
	}
	if forStmt.Init == nil || forStmt.Init.Kind != ast.Define {
		t.Errorf("for init = %+v, want a Define", forStmt.Init)
	}
	if forStmt.ForCond == nil || forStmt.Post == nil || forStmt.Post.Kind != ast.Assign {
		t.Errorf("for cond/post incomplete: cond=%+v post=%+v", forStmt.ForCond, forStmt.Post)
	}
	if forStmt.Scope == nil {
		t.Errorf("expected the for header to carry its own scope")
	}
}

func TestForwardReferenceIsPatchedByLaterDefinition(t *testing.T) {
	src := "package main\n" +
		"func main() {\n\tlater()\n}\n" +
		"func later() {\n\tprint(\"ok\")\n}\n"
	prog, err := parse(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := findFunction(t, prog, "later")
	if !later.Sym.Defined {
		t.Errorf("expected the forward-referenced stub to be patched defined")
	}
}

func TestMissingMainIsUndefinedError(t *testing.T) {
	src := "package main\nfunc helper() {\n\tprint(\"x\")\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for a program without main")
	}
	if code := errCode(t, err); code != diag.UndefinedOrRedefined {
		t.Errorf("got code %v, want %v", code, diag.UndefinedOrRedefined)
	}
}

func TestMainWithParametersIsRejected(t *testing.T) {
	src := "package main\nfunc main(x int) {\n\tprint(x)\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for main taking parameters")
	}
	if code := errCode(t, err); code != diag.WrongParamOrReturn {
		t.Errorf("got code %v, want %v", code, diag.WrongParamOrReturn)
	}
}

func TestRedefinedFunctionIsError(t *testing.T) {
	src := "package main\n" +
		"func f() {\n\tprint(\"a\")\n}\n" +
		"func f() {\n\tprint(\"b\")\n}\n" +
		"func main() {\n\tf()\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for redefining f")
	}
	if code := errCode(t, err); code != diag.UndefinedOrRedefined {
		t.Errorf("got code %v, want %v", code, diag.UndefinedOrRedefined)
	}
}

func TestRedeclaredVariableInSameScopeIsError(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\ta := 2\n\tprint(a)\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for re-declaring a in the same scope")
	}
	if code := errCode(t, err); code != diag.UndefinedOrRedefined {
		t.Errorf("got code %v, want %v", code, diag.UndefinedOrRedefined)
	}
}

func TestUndefinedIdentifierIsError(t *testing.T) {
	src := "package main\nfunc main() {\n\tprint(ghost)\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for reading an undefined identifier")
	}
	if code := errCode(t, err); code != diag.UndefinedOrRedefined {
		t.Errorf("got code %v, want %v", code, diag.UndefinedOrRedefined)
	}
}

func TestReturnArityMismatchIsError(t *testing.T) {
	src := "package main\n" +
		"func two() (int, int) {\n\treturn 1\n}\n" +
		"func main() {\n\ta, b := two()\n\tprint(a, b)\n}\n"
	_, err := parse(t, src)
	if err == nil {
		t.Fatalf("expected an error for a short return list")
	}
	if code := errCode(t, err); code != diag.WrongParamOrReturn {
		t.Errorf("got code %v, want %v", code, diag.WrongParamOrReturn)
	}
}

// TestBareReturnNeedsNamedReturns pins §4.F.5's asymmetry: a bare return is
// only legal when the function declares named return values (or none).
func TestBareReturnNeedsNamedReturns(t *testing.T) {
	bad := "package main\n" +
		"func one() int {\n\treturn\n}\n" +
		"func main() {\n\tprint(one())\n}\n"
	if _, err := parse(t, bad); err == nil {
		t.Errorf("expected an error for a bare return with anonymous returns")
	}

	good := "package main\n" +
		"func one() (r int) {\n\tr = 5\n\treturn\n}\n" +
		"func main() {\n\tprint(one())\n}\n"
	if _, err := parse(t, good); err != nil {
		t.Errorf("unexpected error for a bare return with named returns: %v", err)
	}
}

func TestNamedReturnWithExplicitListIsTolerated(t *testing.T) {
	src := "package main\n" +
		"func one() (r int) {\n\treturn 5\n}\n" +
		"func main() {\n\tprint(one())\n}\n"
	if _, err := parse(t, src); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBlackholeTargetNeverDeclares(t *testing.T) {
	src := "package main\n" +
		"func main() {\n\t_ = 1\n\t_ = 2\n\tprint(\"ok\")\n}\n"
	if _, err := parse(t, src); err != nil {
		t.Errorf("unexpected error: %v (the discard target can be assigned repeatedly)", err)
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\tx := 1\n" +
		"\tif x > 0 {\n\t\tx := \"inner\"\n\t\tprint(x)\n\t}\n" +
		"\tprint(x)\n" +
		"}\n"
	if _, err := parse(t, src); err != nil {
		t.Errorf("unexpected error: %v (inner scopes may shadow)", err)
	}
}
