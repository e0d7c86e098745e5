package ast

import "errors"

// ErrDivisionByZero is reported when a division's right operand is a literal
// zero, the one failure the folding pass can prove at compile time (spec.md
// §7 code 9).
var ErrDivisionByZero = errors.New("division by zero in a constant expression")

// FoldProgram runs the constant folder to a fixed point across every root in
// roots (one per Basic body, If condition, For init/cond/post and Return
// list in the program), per spec.md §4.B.3. It returns ErrDivisionByZero if
// any division by a literal zero is found along the way.
func FoldProgram(roots []*Node) error {
	changed := true
	for changed {
		changed = false
		for _, root := range roots {
			c, err := foldNode(root)
			if err != nil {
				return err
			}
			if c {
				changed = true
			}
		}
	}
	return nil
}

// foldNode rewrites n's subtree bottom-up in place and reports whether any
// rewrite happened. Presently implemented: Add of two ConstInt children
// becomes a single ConstInt holding their (wrapping) sum. The shape here
// accommodates further local pattern rules — more literal arithmetic, Not
// on a literal bool, algebraic identities like x+0 — each expressed as a
// case below that rewrites *n and returns true.
func foldNode(n *Node) (bool, error) {
	if n == nil {
		return false, nil
	}

	changed, err := foldNode(n.Left)
	if err != nil {
		return false, err
	}
	if c, err := foldNode(n.Right); err != nil {
		return false, err
	} else if c {
		changed = true
	}
	for _, item := range n.Items {
		if c, err := foldNode(item); err != nil {
			return false, err
		} else if c {
			changed = true
		}
	}

	if n.Kind == Div && n.Right != nil &&
		((n.Right.Kind == ConstInt && n.Right.IntVal == 0) ||
			(n.Right.Kind == ConstFloat && n.Right.FloatVal == 0)) {
		return false, ErrDivisionByZero
	}

	if n.Kind == Add && n.Left != nil && n.Right != nil &&
		n.Left.Kind == ConstInt && n.Right.Kind == ConstInt {
		sum := n.Left.IntVal + n.Right.IntVal // two's-complement wrap, no overflow trap
		*n = Node{Kind: ConstInt, Type: n.Left.Type, IntVal: sum}
		return true, nil
	}

	return changed, nil
}
