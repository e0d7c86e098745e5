package ast

import "github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"

// Infer computes n's Type in place and reports whether inference succeeded.
//
// Infer is idempotent and monotone (spec.md §4.B.2): once a node is
// UnknownUninferrable it stays so and Infer returns false without work;
// once a node carries a concrete (non-Unknown) type it returns true without
// re-checking. The only legal transition out of a concrete type is to
// UnknownUninferrable, recorded here on a mismatch; it is the caller's job
// (cmd/ifj20c's inferProgram) to turn that failure into the
// correctly-numbered diagnostic for its context (§7 codes 4, 5, 6 or 7).
func Infer(n *Node) bool {
	if n == nil {
		return true
	}
	if n.Type == symtab.UnknownUninferrable {
		return false
	}
	if n.Type != symtab.Unknown {
		return true
	}

	switch {
	case n.Kind == Id:
		return inferID(n)
	case n.Kind.IsArithmetic():
		return inferArithmetic(n)
	case n.Kind == ArNeg:
		return inferNeg(n)
	case n.Kind.IsLogic():
		return inferLogic(n)
	case n.Kind == Assign || n.Kind == Define:
		return inferAssignDefine(n)
	case n.Kind == FuncCall:
		return inferFuncCall(n)
	case n.Kind == List:
		return inferList(n)
	default:
		n.Type = symtab.UnknownUninferrable
		return false
	}
}

func inferID(n *Node) bool {
	sym := n.Sym
	switch {
	case sym.Kind == symtab.VarSymbol:
		n.Type = sym.Type
		return n.Type != symtab.UnknownUninferrable
	case !sym.Defined:
		// Forward reference to a function not yet seen: stay Unknown, not
		// a failure, so a later pass can resolve it once signatures are known.
		n.Type = symtab.Unknown
		return true
	case len(sym.Returns) == 0:
		n.Type = symtab.Nil
		return true
	case len(sym.Returns) == 1:
		n.Type = sym.Returns[0].Type
		return true
	default:
		n.Type = symtab.Multiple
		return true
	}
}

func inferArithmetic(n *Node) bool {
	leftOK := Infer(n.Left)
	rightOK := Infer(n.Right)
	if !leftOK || !rightOK {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	lt, rt := n.Left.Type, n.Right.Type

	// A not-yet-defined forward function reference leaves Unknown without
	// being an error; let the concrete side's type win, or stay Unknown if
	// both sides are still undetermined.
	if lt == symtab.Unknown || rt == symtab.Unknown {
		if lt == symtab.Unknown && rt == symtab.Unknown {
			n.Type = symtab.Unknown
			return true
		}
		if lt == symtab.Unknown {
			n.Type = rt
		} else {
			n.Type = lt
		}
		return true
	}

	if lt != rt || !(lt == symtab.Int || lt == symtab.Float || (lt == symtab.String && n.Kind == Add)) {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	n.Type = lt
	return true
}

func inferNeg(n *Node) bool {
	if !Infer(n.Left) {
		n.Type = symtab.UnknownUninferrable
		return false
	}
	t := n.Left.Type
	if t == symtab.Unknown {
		n.Type = symtab.Unknown
		return true
	}
	if t != symtab.Int && t != symtab.Float {
		n.Type = symtab.UnknownUninferrable
		return false
	}
	n.Type = t
	return true
}

func inferLogic(n *Node) bool {
	if n.Kind == Not {
		if !Infer(n.Left) {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		if n.Left.Type != symtab.Bool && n.Left.Type != symtab.Unknown {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		n.Type = symtab.Bool
		return true
	}

	leftOK := Infer(n.Left)
	rightOK := Infer(n.Right)
	if !leftOK || !rightOK {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	lt, rt := n.Left.Type, n.Right.Type

	if n.Kind == And || n.Kind == Or {
		if (lt != symtab.Bool && lt != symtab.Unknown) || (rt != symtab.Bool && rt != symtab.Unknown) {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		n.Type = symtab.Bool
		return true
	}

	// Comparators: Eq, NEq, Lt, Gt, LtE, GtE require identical operand types.
	if lt != symtab.Unknown && rt != symtab.Unknown && lt != rt {
		n.Type = symtab.UnknownUninferrable
		return false
	}
	n.Type = symtab.Bool
	return true
}

// inferAssignDefine settles the right side first, then either records each
// `:=` target's type on its (freshly registered) symbol, or checks an `=`
// target's existing type against the value now flowing into it. A
// forward-referenced function on the right leaves n.Type at Unknown rather
// than Nil, so a later Infer(n) call (once every signature is known) walks
// back in here instead of short-circuiting on the "already resolved" guard
// at the top of Infer.
func inferAssignDefine(n *Node) bool {
	if !Infer(n.Right) {
		n.Type = symtab.UnknownUninferrable
		return false
	}
	if n.Right.Type == symtab.Unknown {
		return true
	}

	targets := assignTargets(n.Left)
	types := assignValueTypes(n.Right, len(targets))
	if types == nil {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	for i, target := range targets {
		if target.Kind != Id || target.Sym.Type == symtab.BlackHole {
			continue
		}
		rt := types[i]
		if rt == symtab.Unknown {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		switch {
		case n.Kind == Define && target.Sym.Type == symtab.Unknown:
			target.Sym.Type = rt
		case target.Sym.Type != rt:
			n.Type = symtab.UnknownUninferrable
			return false
		}
	}

	n.Type = symtab.Nil
	return true
}

func assignTargets(n *Node) []*Node {
	if n.Kind == List {
		return n.Items
	}
	return []*Node{n}
}

// assignValueTypes returns the per-target type(s) the right side supplies,
// or nil if its arity doesn't match want (spec.md §7 code 6: assigning a
// multi-value call's results to the wrong number of targets).
func assignValueTypes(rhs *Node, want int) []symtab.DataType {
	if rhs.Type == symtab.Multiple {
		switch rhs.Kind {
		case FuncCall:
			sym := rhs.Left.Sym
			if len(sym.Returns) != want {
				return nil
			}
			types := make([]symtab.DataType, want)
			for i, ret := range sym.Returns {
				types[i] = ret.Type
			}
			return types
		case List:
			// Parallel form: one value per target, positionally.
			if len(rhs.Items) != want {
				return nil
			}
			types := make([]symtab.DataType, want)
			for i, item := range rhs.Items {
				types[i] = item.Type
			}
			return types
		default:
			return nil
		}
	}
	if want != 1 || rhs.Type == symtab.Nil {
		return nil
	}
	return []symtab.DataType{rhs.Type}
}

// inferFuncCall settles the call's type from the callee Id, then checks the
// argument list against the callee's signature (spec.md §3.3 invariant 3 and
// §7 code 6): arity must match exactly and each argument's type must equal
// the declared parameter type, except for the variadic print intrinsic,
// whose arguments are only required to be individually inferable.
func inferFuncCall(n *Node) bool {
	if !Infer(n.Left) {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	var args []*Node
	if n.Right != nil {
		args = n.Right.Items
	}
	argsOK := true
	for _, a := range args {
		if !Infer(a) {
			argsOK = false
		}
	}
	if !argsOK {
		n.Type = symtab.UnknownUninferrable
		return false
	}

	sym := n.Left.Sym
	if sym.Kind == symtab.FuncSymbol && !sym.Variadic {
		if len(args) != len(sym.Params) {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		for i, a := range args {
			want := sym.Params[i].Type
			if a.Type != symtab.Unknown && want != symtab.Unknown && a.Type != want {
				n.Type = symtab.UnknownUninferrable
				return false
			}
		}
	}

	n.Type = n.Left.Type
	return n.Type != symtab.UnknownUninferrable
}

func inferList(n *Node) bool {
	switch len(n.Items) {
	case 0:
		n.Type = symtab.Nil
		return true
	case 1:
		if !Infer(n.Items[0]) {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		n.Type = n.Items[0].Type
		return true
	default:
		ok := true
		for _, item := range n.Items {
			if !Infer(item) {
				ok = false
			}
		}
		if !ok {
			n.Type = symtab.UnknownUninferrable
			return false
		}
		n.Type = symtab.Multiple
		return true
	}
}
