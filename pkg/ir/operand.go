package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// intOperand, floatOperand, boolOperand and stringOperand format a literal
// value the way spec.md §6 fixes: int@N, float@<C99 hex-float>,
// bool@true|false, string@... with bytes <= 32, '#' and '\' backslash-escaped
// as \NNN (three decimal digits), matching code_generator.c's escaping table.
func intOperand(v int64) string { return fmt.Sprintf("int@%d", v) }

func floatOperand(v float64) string {
	return "float@" + strconv.FormatFloat(v, 'x', -1, 64)
}

func boolOperand(v bool) string {
	if v {
		return "bool@true"
	}
	return "bool@false"
}

func stringOperand(v string) string {
	var b strings.Builder
	b.WriteString("string@")
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c <= 32 || c == '#' || c == '\\' {
			fmt.Fprintf(&b, "\\%03d", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// zeroOperand returns a type-appropriate default value: used both for
// unary-minus-on-computed-operand's synthetic zero and for zero-initialising
// named return-value variables (spec.md §4.F.7).
func zeroOperand(t symtab.DataType) string {
	switch t {
	case symtab.Int:
		return intOperand(0)
	case symtab.Float:
		return floatOperand(0)
	case symtab.String:
		return stringOperand("")
	case symtab.Bool:
		return boolOperand(false)
	default:
		return intOperand(0)
	}
}

// isDirectOperand reports whether n is a leaf the emitter can reference
// directly (as a literal or a frame-qualified variable name) without first
// evaluating it onto the stack — spec.md §4.F.4's "direct operand".
func isDirectOperand(n *ast.Node) bool {
	switch n.Kind {
	case ast.Id, ast.ConstInt, ast.ConstFloat, ast.ConstString, ast.ConstBool:
		return true
	default:
		return false
	}
}

// literalOperand formats n (which must be one of the Const* leaf kinds) as
// an IFJcode20 literal operand.
func literalOperand(n *ast.Node) string {
	switch n.Kind {
	case ast.ConstInt:
		return intOperand(n.IntVal)
	case ast.ConstFloat:
		return floatOperand(n.FloatVal)
	case ast.ConstString:
		return stringOperand(n.StringVal)
	case ast.ConstBool:
		return boolOperand(n.BoolVal)
	default:
		return "" // unreachable for a well-formed direct operand
	}
}
