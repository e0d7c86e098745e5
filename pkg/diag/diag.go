// Package diag is the compiler's diagnostic sink: the exit-code taxonomy of
// spec.md §7 plus the "first non-success result wins" reporting contract of
// the original implementation's stderr_message.c, reborn here as an
// explicit struct threaded through the pipeline rather than a process-wide
// static, per spec.md §9's design note.
package diag

import (
	"fmt"
	"io"
)

// Code is the process exit status the compiler reports, one per spec.md §7.
type Code int

const (
	Success                Code = 0
	Lexical                Code = 1
	SyntaxOrEOL            Code = 2
	UndefinedOrRedefined   Code = 3
	WrongTypeOfNewVariable Code = 4
	TypeIncompatibility    Code = 5
	WrongParamOrReturn     Code = 6
	SemanticGeneral        Code = 7
	DivisionByZero         Code = 9
	Internal               Code = 99
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case Lexical:
		return "lexical error"
	case SyntaxOrEOL:
		return "syntax or EOL error"
	case UndefinedOrRedefined:
		return "undefined or redefined function/variable"
	case WrongTypeOfNewVariable:
		return "wrong type of a new variable in inference"
	case TypeIncompatibility:
		return "type incompatibility in expression"
	case WrongParamOrReturn:
		return "wrong parameter/return value count or type"
	case SemanticGeneral:
		return "other semantic error"
	case DivisionByZero:
		return "division by zero in a constant expression"
	case Internal:
		return "internal compiler error"
	default:
		return "unknown result"
	}
}

// Sink accumulates diagnostics for a single compilation run. It is not
// safe for concurrent use, matching the single-pass, single-goroutine
// pipeline the spec describes; callers needing concurrency own their own
// synchronization around a shared Sink.
type Sink struct {
	w       io.Writer
	module  string
	result  Code
	reports int
}

// NewSink returns a Sink that writes formatted diagnostic lines to w
// (stderr, in cmd/ifj20c) tagged with module (e.g. "scanner", "parser").
func NewSink(w io.Writer, module string) *Sink {
	return &Sink{w: w, module: module, result: Success}
}

// Report records a diagnostic at code, writing one formatted line to the
// sink's writer. Only the first non-Success code sticks: once a failing
// result has been recorded, later Report calls still print but never
// downgrade or overwrite Result(), mirroring the original's one-shot
// "first error wins" exit status.
func (s *Sink) Report(code Code, format string, args ...interface{}) {
	s.reports++
	severity := "error"
	if code == Success {
		severity = "warning"
	}
	fmt.Fprintf(s.w, "%s: %s: %s\n", s.module, severity, fmt.Sprintf(format, args...))

	if s.result == Success && code != Success {
		s.result = code
	}
}

// Result returns the sticky result code: Success if no failing diagnostic
// has been reported yet, otherwise the first failing code seen.
func (s *Sink) Result() Code { return s.result }

// Failed reports whether any failing diagnostic has been recorded.
func (s *Sink) Failed() bool { return s.result != Success }

// Reports returns how many diagnostics (of any severity) were recorded.
func (s *Sink) Reports() int { return s.reports }

// Sub returns a Sink sharing the same writer and starting from a copy of the
// parent's sticky result, but tagged with a different module name, for passes (parser, ir) that want
// their own message prefix without losing the "first error wins" contract.
// The child and parent do not share reports/result after this call — callers
// that need a single source of truth should call Result on whichever Sink
// they continue reporting through.
func (s *Sink) Sub(module string) *Sink {
	return &Sink{w: s.w, module: module, result: s.result}
}
