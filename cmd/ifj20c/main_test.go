package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
)

func compile(t *testing.T, src string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(strings.NewReader(src), &out, &errOut)
	return out.String(), errOut.String(), code
}

// TestHelloWorld pins spec.md §8 scenario 1: a single print call produces
// exactly one WRITE of the literal and the main-entry EXIT.
func TestHelloWorld(t *testing.T) {
	src := "package main\nfunc main() {\n\tprint(\"hi\")\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if got := strings.Count(out, "WRITE string@hi\n"); got != 1 {
		t.Errorf("got %d WRITE string@hi lines, want exactly 1:\n%s", got, out)
	}
	if got := strings.Count(out, "EXIT int@0\n"); got != 1 {
		t.Errorf("got %d EXIT int@0 lines, want exactly 1:\n%s", got, out)
	}
}

// TestArithmeticFold pins scenario 2: after constant folding, a := 1+2+3
// lowers to a single MOVE of int@6, with no ADDS anywhere in the output.
func TestArithmeticFold(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1 + 2 + 3\n\tprint(a)\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if strings.Contains(out, "ADDS") {
		t.Errorf("expected no ADDS after folding, got:\n%s", out)
	}
	if !strings.Contains(out, "int@6") {
		t.Errorf("expected the folded value int@6 in output:\n%s", out)
	}
}

// TestShortCircuitSkipsCall pins scenario 3: `false && crash()` must never
// emit a CALL to crash, since the jumping lowering of `false` on the left
// of && falls straight through to the false label.
func TestShortCircuitSkipsCall(t *testing.T) {
	src := "package main\n" +
		"func crash() bool {\n\tprint(\"boom\")\n\treturn true\n}\n" +
		"func main() {\n\tif false && crash() {\n\t\tprint(\"x\")\n\t}\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if strings.Contains(out, "CALL crash") {
		t.Errorf("expected no CALL crash under a false && short-circuit, got:\n%s", out)
	}
}

// TestMultiReturn pins scenario 4: a two-return call pops its results in
// reverse order into the two assignment targets.
func TestMultiReturn(t *testing.T) {
	src := "package main\n" +
		"func two() (int, int) {\n\treturn 1, 2\n}\n" +
		"func main() {\n\ta, b := two()\n\tprint(a, b)\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "CALL two") {
		t.Errorf("expected a CALL two, got:\n%s", out)
	}
	if got := strings.Count(out, "POPS"); got < 2 {
		t.Errorf("expected at least 2 POPS for the two return values, got %d:\n%s", got, out)
	}
}

// TestTypeMismatchExitsFive pins scenario 5: int + string is a type
// incompatibility (exit code 5) and no IR is produced.
func TestTypeMismatchExitsFive(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\tb := \"x\"\n\tc := a + b\n}\n"
	out, _, code := compile(t, src)
	if code != int(diag.TypeIncompatibility) {
		t.Fatalf("got exit %d, want %d", code, diag.TypeIncompatibility)
	}
	if out != "" {
		t.Errorf("expected no IR output on failure, got:\n%s", out)
	}
}

// TestUndefinedFunctionExitsThree pins §7 code 3: calling a function that
// is never defined anywhere in the program is an undefined-symbol error.
func TestUndefinedFunctionExitsThree(t *testing.T) {
	src := "package main\nfunc main() {\n\tghost()\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.UndefinedOrRedefined) {
		t.Fatalf("got exit %d, want %d", code, diag.UndefinedOrRedefined)
	}
}

// TestUnusedVariableElidesDefvar pins the §8 "unused-variable elision"
// invariant: a variable that's never read gets no DEFVAR and no store.
func TestUnusedVariableElidesDefvar(t *testing.T) {
	src := "package main\nfunc main() {\n\tunused := 1\n\tprint(\"hi\")\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if strings.Contains(out, "unused") {
		t.Errorf("expected no trace of the never-read variable, got:\n%s", out)
	}
}

// TestShadowingGetsDistinctPrefixes pins scenario 6: a for-header variable
// and a same-named variable declared inside the loop body resolve to
// distinct LF@$<prefix>_x emitted names.
func TestShadowingGetsDistinctPrefixes(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\tfor x := 0; x < 1; x = x + 1 {\n" +
		"\t\tx := \"inner\"\n" +
		"\t\tprint(x)\n" +
		"\t}\n" +
		"}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	names := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		idx := strings.Index(line, "_x")
		if idx == -1 {
			continue
		}
		start := strings.LastIndex(line[:idx], "$")
		if start == -1 {
			continue
		}
		names[line[start:idx+2]] = true
	}
	if len(names) < 2 {
		t.Errorf("expected at least 2 distinct renamed x bindings, got %v in:\n%s", names, out)
	}
}

// TestMissingStatementSeparatorIsSyntaxError pins the §8 EOL discipline
// property: two statements on the same line with no newline between them
// is rejected.
func TestMissingStatementSeparatorIsSyntaxError(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1 b := 2\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.SyntaxOrEOL) {
		t.Fatalf("got exit %d, want %d", code, diag.SyntaxOrEOL)
	}
}

func TestHeaderAndPrologue(t *testing.T) {
	src := "package main\nfunc main() {\n\tprint(\"hi\")\n}\n"
	out, _, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("unexpected failure, exit %d", code)
	}
	if !strings.HasPrefix(out, ".IFJcode20\n") {
		t.Fatalf("expected the .IFJcode20 header line first, got:\n%s", out)
	}
}

// TestDivisionByLiteralZeroExitsNine pins §7 code 9: a constant zero divisor
// is caught at compile time by the folding pass.
func TestDivisionByLiteralZeroExitsNine(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\tb := a / 0\n\tprint(b)\n}\n"
	out, _, code := compile(t, src)
	if code != int(diag.DivisionByZero) {
		t.Fatalf("got exit %d, want %d", code, diag.DivisionByZero)
	}
	if out != "" {
		t.Errorf("expected no IR output on failure, got:\n%s", out)
	}
}

// TestWrongArgumentCountExitsSix pins §7 code 6 on the caller side: passing
// the wrong number of arguments to a declared function.
func TestWrongArgumentCountExitsSix(t *testing.T) {
	src := "package main\n" +
		"func id(x int) int {\n\treturn x\n}\n" +
		"func main() {\n\tprint(id(1, 2))\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.WrongParamOrReturn) {
		t.Fatalf("got exit %d, want %d", code, diag.WrongParamOrReturn)
	}
}

func TestWrongArgumentTypeExitsSix(t *testing.T) {
	src := "package main\n" +
		"func id(x int) int {\n\treturn x\n}\n" +
		"func main() {\n\tprint(id(\"oops\"))\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.WrongParamOrReturn) {
		t.Fatalf("got exit %d, want %d", code, diag.WrongParamOrReturn)
	}
}

// TestReturnArityMismatchExitsSix pins §7 code 6 on the callee side.
func TestReturnArityMismatchExitsSix(t *testing.T) {
	src := "package main\n" +
		"func two() (int, int) {\n\treturn 1\n}\n" +
		"func main() {\n\ta, b := two()\n\tprint(a, b)\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.WrongParamOrReturn) {
		t.Fatalf("got exit %d, want %d", code, diag.WrongParamOrReturn)
	}
}

// TestEOLAfterOperatorContinues pins the §8 EOL discipline's other half: a
// newline directly after a binary operator is a continuation, not a
// terminator.
func TestEOLAfterOperatorContinues(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1 +\n\t\t2\n\tprint(a)\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "int@3") {
		t.Errorf("expected the folded continuation value int@3:\n%s", out)
	}
}

func TestExcessEOLBetweenOperandsIsSyntaxError(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\t+ 2\n\tprint(a)\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.SyntaxOrEOL) {
		t.Fatalf("got exit %d, want %d", code, diag.SyntaxOrEOL)
	}
}

func TestCompoundAssignmentLowers(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\ta += 2\n\tprint(a)\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "ADDS") {
		t.Errorf("expected a += 2 to lower through ADDS:\n%s", out)
	}
}

// TestWrongTargetCountExitsFour pins §7 code 4: a multi-target := whose
// right side supplies a single value can't settle the new variables' types.
func TestWrongTargetCountExitsFour(t *testing.T) {
	src := "package main\nfunc main() {\n\ta, b := 1\n\tprint(a, b)\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.WrongTypeOfNewVariable) {
		t.Fatalf("got exit %d, want %d", code, diag.WrongTypeOfNewVariable)
	}
}

func TestStatementAfterElseIfChainRuns(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\ta := 1\n" +
		"\tif a < 0 {\n\t\tprint(\"n\")\n\t} else if a > 0 {\n\t\tprint(\"p\")\n\t}\n" +
		"\tprint(\"done\")\n" +
		"}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	doneWrite := strings.Index(out, "WRITE string@done")
	endifLabel := strings.LastIndex(out, "LABEL $main_endif")
	if doneWrite == -1 || endifLabel == -1 {
		t.Fatalf("expected both the chain's endif label and the trailing WRITE:\n%s", out)
	}
	if doneWrite < endifLabel {
		t.Errorf("the statement after the chain must emit after the whole if/else construct:\n%s", out)
	}
}

func TestNonBoolConditionExitsFive(t *testing.T) {
	src := "package main\nfunc main() {\n\ta := 1\n\tif a {\n\t\tprint(a)\n\t}\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.TypeIncompatibility) {
		t.Fatalf("got exit %d, want %d", code, diag.TypeIncompatibility)
	}
}

// TestInfiniteForHeaderParses pins the grammar's fully-elided for header:
// both condition and post-statement may be absent.
func TestInfiniteForHeaderParses(t *testing.T) {
	src := "package main\nfunc main() {\n\tfor ; ; {\n\t\treturn\n\t}\n}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "JUMP $main_forbegin_") {
		t.Errorf("expected the unconditional back jump:\n%s", out)
	}
}

// TestParallelAssignmentSwaps pins the `a, b = b, a` parallel form: every
// right-hand value evaluates before any store, so the swap really swaps.
func TestParallelAssignmentSwaps(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\ta, b := 1, 2\n" +
		"\ta, b = b, a\n" +
		"\tprint(a, b)\n" +
		"}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.Success) {
		t.Fatalf("got exit %d, stderr: %s", code, errOut)
	}
	// Both pushes must precede both pops for the swap statement.
	lines := strings.Split(out, "\n")
	var pushes, pops []int
	for i, line := range lines {
		if strings.HasPrefix(line, "PUSHS LF@$") {
			pushes = append(pushes, i)
		}
		if strings.HasPrefix(line, "POPS LF@$") {
			pops = append(pops, i)
		}
	}
	if len(pushes) < 2 {
		t.Fatalf("expected both swap operands pushed from their variables:\n%s", out)
	}
	var popsAfter []int
	for _, p := range pops {
		if p > pushes[0] {
			popsAfter = append(popsAfter, p)
		}
	}
	if len(popsAfter) < 2 || pushes[1] >= popsAfter[0] {
		t.Errorf("expected both values pushed before the first store of the swap:\n%s", out)
	}
}

func TestParallelDefineMismatchedCountExitsFour(t *testing.T) {
	src := "package main\nfunc main() {\n\ta, b := 1, 2, 3\n\tprint(a, b)\n}\n"
	_, _, code := compile(t, src)
	if code != int(diag.WrongTypeOfNewVariable) {
		t.Fatalf("got exit %d, want %d", code, diag.WrongTypeOfNewVariable)
	}
}

// TestParserRecoversAndReportsMultipleSyntaxErrors pins §7's recovery
// contract: each bad line gets its own diagnostic, parsing resumes at the
// next statement, and the first error's code is the exit status.
func TestParserRecoversAndReportsMultipleSyntaxErrors(t *testing.T) {
	src := "package main\n" +
		"func main() {\n" +
		"\ta := 1 b := 2\n" +
		"\tc := ) 3\n" +
		"\tprint(\"ok\")\n" +
		"}\n"
	out, errOut, code := compile(t, src)
	if code != int(diag.SyntaxOrEOL) {
		t.Fatalf("got exit %d, want %d; stderr: %s", code, diag.SyntaxOrEOL, errOut)
	}
	if out != "" {
		t.Errorf("expected no IR output after syntax errors, got:\n%s", out)
	}
	errors := 0
	for _, line := range strings.Split(errOut, "\n") {
		if strings.Contains(line, "error") {
			errors++
		}
	}
	if errors < 2 {
		t.Errorf("got %d reported errors, want both bad lines reported:\n%s", errors, errOut)
	}
}
