package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
)

func TestFirstFailingCodeWins(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "test")

	sink.Report(diag.SyntaxOrEOL, "first failure")
	sink.Report(diag.TypeIncompatibility, "second failure")

	if sink.Result() != diag.SyntaxOrEOL {
		t.Errorf("got result %v, want the first failing code to stick", sink.Result())
	}
	if sink.Reports() != 2 {
		t.Errorf("got %d reports, want 2 (later reports still print)", sink.Reports())
	}
}

func TestSuccessReportsAreWarnings(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "test")

	sink.Report(diag.Success, "function main is empty")

	if sink.Failed() {
		t.Errorf("a Success-coded report must not fail the compilation")
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("got %q, want a warning-severity line", buf.String())
	}
}

func TestErrorReportsArePrefixedWithModule(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "parser")

	sink.Report(diag.UndefinedOrRedefined, "undefined identifier %q", "x")

	line := buf.String()
	if !strings.HasPrefix(line, "parser: error: ") {
		t.Errorf("got %q, want a module- and severity-prefixed line", line)
	}
	if !strings.Contains(line, `"x"`) {
		t.Errorf("got %q, want the formatted argument in the message", line)
	}
}

func TestSubSharesWriterAndCarriesResult(t *testing.T) {
	var buf bytes.Buffer
	parent := diag.NewSink(&buf, "ifj20c")
	parent.Report(diag.Lexical, "bad token")

	child := parent.Sub("ir")
	if child.Result() != diag.Lexical {
		t.Errorf("got child result %v, want the parent's sticky code carried over", child.Result())
	}

	child.Report(diag.Internal, "invariant breach")
	if child.Result() != diag.Lexical {
		t.Errorf("got %v, want the earlier code to keep winning in the child", child.Result())
	}
	if !strings.Contains(buf.String(), "ir: error: invariant breach") {
		t.Errorf("child report missing from the shared writer: %q", buf.String())
	}
}

func TestCodesMatchTheTaxonomy(t *testing.T) {
	want := map[diag.Code]int{
		diag.Success:                0,
		diag.Lexical:                1,
		diag.SyntaxOrEOL:            2,
		diag.UndefinedOrRedefined:   3,
		diag.WrongTypeOfNewVariable: 4,
		diag.TypeIncompatibility:    5,
		diag.WrongParamOrReturn:     6,
		diag.SemanticGeneral:        7,
		diag.DivisionByZero:         9,
		diag.Internal:               99,
	}
	for code, num := range want {
		if int(code) != num {
			t.Errorf("code %s = %d, want %d", code, int(code), num)
		}
	}
}
