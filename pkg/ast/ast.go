// Package ast defines the typed expression tree produced by the parsers and
// consumed by type inference, constant folding and the IR emitter.
package ast

import "github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"

// Kind is the action tag on an AST node (spec.md §3.3).
type Kind int

const (
	// Leaves.
	Id Kind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstBool

	// Arithmetic.
	Add
	Sub
	Mul
	Div
	ArNeg

	// Logic.
	Not
	And
	Or
	Eq
	NEq
	Lt
	Gt
	LtE
	GtE

	// Statement-level.
	Assign
	Define

	// Composite.
	FuncCall
	List
)

// IsLogic reports whether k is one of the logic/comparison kinds. The
// source's half-open range check [AST_LOGIC..AST_CONTROL) becomes an
// explicit predicate over the variant set, per spec.md §9.
func (k Kind) IsLogic() bool {
	switch k {
	case Not, And, Or, Eq, NEq, Lt, Gt, LtE, GtE:
		return true
	default:
		return false
	}
}

// IsArithmetic reports whether k is a binary arithmetic operator (Add, Sub,
// Mul, Div); ArNeg is unary and handled separately.
func (k Kind) IsArithmetic() bool {
	switch k {
	case Add, Sub, Mul, Div:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	names := [...]string{
		"Id", "ConstInt", "ConstFloat", "ConstString", "ConstBool",
		"Add", "Sub", "Mul", "Div", "ArNeg",
		"Not", "And", "Or", "Eq", "NEq", "Lt", "Gt", "LtE", "GtE",
		"Assign", "Define", "FuncCall", "List",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Kind(?)"
	}
	return names[k]
}

// Node is a single AST node. Its payload layout depends on Kind: a leaf
// carries one of Sym/IntVal/FloatVal/StringVal/BoolVal, a binary/unary op
// carries Left (and Right), and a List carries Items.
//
// A Node owns its Left/Right children and its Items; an Id's Sym is a
// non-owning reference into a symtab.Table, and a ConstString's StringVal
// was handed over by the scanner at parse time (the scanner's buffer
// ownership transfers to the AST, per spec.md §3.3 "Ownership").
type Node struct {
	Kind Kind
	Type symtab.DataType

	Left  *Node
	Right *Node

	Sym       *symtab.Symbol // Id
	IntVal    int64          // ConstInt
	FloatVal  float64        // ConstFloat
	StringVal string         // ConstString
	BoolVal   bool           // ConstBool

	Items []*Node // List
}

// NewID builds a leaf referencing sym, incrementing its reference counter.
func NewID(sym *symtab.Symbol) *Node {
	sym.RefCount++
	return &Node{Kind: Id, Type: symtab.Unknown, Sym: sym}
}

func NewConstInt(v int64) *Node { return &Node{Kind: ConstInt, Type: symtab.Int, IntVal: v} }
func NewConstFloat(v float64) *Node {
	return &Node{Kind: ConstFloat, Type: symtab.Float, FloatVal: v}
}
func NewConstString(v string) *Node {
	return &Node{Kind: ConstString, Type: symtab.String, StringVal: v}
}
func NewConstBool(v bool) *Node { return &Node{Kind: ConstBool, Type: symtab.Bool, BoolVal: v} }

// NewBinary builds a binary arithmetic/logic node with both children
// already parsed; its type starts Unknown and is resolved by Infer.
func NewBinary(kind Kind, left, right *Node) *Node {
	return &Node{Kind: kind, Type: symtab.Unknown, Left: left, Right: right}
}

// NewUnary builds a unary node (ArNeg, Not); the operand is stored as Left.
func NewUnary(kind Kind, operand *Node) *Node {
	return &Node{Kind: kind, Type: symtab.Unknown, Left: operand}
}

// NewAssign and NewDefine build statement-level nodes. Type starts Unknown,
// like any other node: Infer settles it to Nil once the right side's type
// has been propagated onto the left side's symbol(s), and it can stay
// Unknown across a forward function reference in the meantime.
func NewAssign(lhs, rhs *Node) *Node {
	return &Node{Kind: Assign, Type: symtab.Unknown, Left: lhs, Right: rhs}
}
func NewDefine(lhs, rhs *Node) *Node {
	return &Node{Kind: Define, Type: symtab.Unknown, Left: lhs, Right: rhs}
}

// NewFuncCall builds a call node; args may be nil (no-argument call) or a
// List node whose length equals the callee's arity (checked by Infer's call
// rule, not here — construction never does semantic validation).
func NewFuncCall(callee *Node, args *Node) *Node {
	return &Node{Kind: FuncCall, Type: symtab.Unknown, Left: callee, Right: args}
}

// NewList allocates a list with capacity pre-sized; Push appends in order.
func NewList(capacity int) *Node {
	return &Node{Kind: List, Type: symtab.Unknown, Items: make([]*Node, 0, capacity)}
}

// Push appends child to a List node, guaranteeing in-order population.
func (n *Node) Push(child *Node) {
	n.Items = append(n.Items, child)
}
