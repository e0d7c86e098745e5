// Package pparser is the classical operator-precedence expression parser
// (spec.md §4.D): a 27-terminal, table-driven shift/reduce automaton,
// transcribed from the original implementation's precedence_parser.c, that
// turns a flat token stream into an *ast.Node. It is driven by pkg/parser,
// which supplies tokens one at a time and an identifier Resolver bound to
// the current scope chain; the function-call-vs-parenthesized-expression
// disambiguation that needs one token of lookahead is done here
// (classifyIdent).
package pparser

import (
	"fmt"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/scanner"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// term is one of the 27 encoded terminal classes the action table is
// indexed by. Unary +/- get their own class, disambiguated by the feeder
// from what preceded them (an operand/')' means binary, anything else
// means unary) exactly as original's get_table_index does by inspecting
// prev_token.
type term int

const (
	tNot term = iota
	tUPlus
	tUMinus
	tMul
	tDiv
	tPlus
	tMinus
	tGt
	tLt
	tGtE
	tLtE
	tEq
	tNEq
	tAnd
	tOr
	tAssign
	tDefine
	tPlusAssign
	tMinusAssign
	tMulAssign
	tDivAssign
	tLParen
	tRParen
	tOperand // identifier, int/float/string/bool literal ("i")
	tFunc    // identifier immediately followed by '(' ("f")
	tComma
	tDollar // end-of-input sentinel ("$")

	numTerms = int(tDollar) + 1
)

// action is the table's cell contents: shift, reduce, equal (bracket
// match), or blank (syntax error).
type action byte

const (
	actBlank  action = ' '
	actShift  action = '<'
	actReduce action = '>'
	actEqual  action = '='
	actOmega  action = 'o' // $ / $ : both ends reached, parse is complete
)

// table is the 27x27 precedence relation, transcribed row for row from
// precedence_parser.c's `precedence_table`. Row = top-of-stack terminal,
// column = lookahead terminal.
var table = [numTerms][numTerms]action{
	tNot:         {actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tUPlus:       {actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tUMinus:      {actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tMul:         {actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tDiv:         {actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tPlus:        {actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tMinus:       {actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tGt:          {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tLt:          {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tGtE:         {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tLtE:         {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tEq:          {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tNEq:         {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tAnd:         {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tOr:          {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actReduce, actShift, actShift, actReduce, actReduce},
	tAssign:      {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actEqual, actReduce},
	tDefine:      {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actEqual, actReduce},
	tPlusAssign:  {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actBlank, actReduce},
	tMinusAssign: {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actBlank, actReduce},
	tMulAssign:   {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actBlank, actReduce},
	tDivAssign:   {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actBlank, actShift, actShift, actBlank, actReduce},
	tLParen:      {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actShift, actEqual, actShift, actShift, actEqual, actBlank},
	tRParen:      {actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actReduce, actBlank, actBlank, actReduce, actReduce},
	tOperand:     {actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actReduce, actBlank, actReduce, actBlank, actBlank, actReduce, actReduce},
	tFunc:        {actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actBlank, actEqual, actBlank, actBlank, actBlank, actBlank, actBlank},
	tComma:       {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actEqual, actEqual, actEqual, actEqual, actEqual, actEqual, actShift, actEqual, actShift, actShift, actEqual, actReduce},
	tDollar:      {actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actShift, actBlank, actShift, actShift, actShift, actOmega},
}

// binaryKind maps a binary-operator terminal to its ast.Kind.
var binaryKind = map[term]ast.Kind{
	tMul: ast.Mul, tDiv: ast.Div, tPlus: ast.Add, tMinus: ast.Sub,
	tGt: ast.Gt, tLt: ast.Lt, tGtE: ast.GtE, tLtE: ast.LtE,
	tEq: ast.Eq, tNEq: ast.NEq, tAnd: ast.And, tOr: ast.Or,
}

// Resolver looks an identifier up against the active scope chain; it is
// supplied by pkg/parser, which owns scoping, not pparser. ResolveFunc is
// separate because a called-but-not-yet-declared function is a legal
// forward reference (spec.md §4.B.2): the global table gets an
// Unknown-typed stub on first call, later patched once the real
// declaration is parsed, whereas an undefined variable is always an error.
type Resolver interface {
	Lookup(name string) (*symtab.Symbol, bool)
	ResolveFunc(name string) *symtab.Symbol
}

// item is one stack slot: either a shifted terminal (with its token, for
// rules that need the literal value) or a reduced nonterminal expression.
type item struct {
	t    term
	tok  scanner.Token
	expr *ast.Node // set once this slot has been reduced to an expression
}

// Mode selects which statement-level forms are legal for this parse,
// matching the original's four call sites into the same table-driven
// engine (assign targets need `=`/compound-assign, `:=` needs fresh
// defines, a bare expression statement or condition needs neither).
type Mode int

const (
	PureExpression Mode = iota // if/for condition, return value, call argument
	ValidStatement             // an assignment, a := definition or a bare call
	AssignRequired             // must parse to an =, +=, -=, *=, /= assignment
	DefineRequired             // must parse to a := definition
)

// Error is a parse failure at the given token; callers map it to spec.md
// §7's exit code 2 (syntax/EOL).
type Error struct {
	Tok scanner.Token
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Tok.Line, e.Tok.Column, e.Msg)
}

// Code reports the diagnostic a precedence-parser failure always maps to
// (spec.md §7 code 2): every rejection here is a shape the grammar doesn't
// allow at this point, never a name-resolution or type question.
func (e *Error) Code() diag.Code { return diag.SyntaxOrEOL }

// Parser drives the shift/reduce engine. It is created fresh per
// expression/statement by pkg/parser, which feeds tokens one at a time via
// Next and owns the scanner itself (so it can resume ordinary statement
// parsing once pparser reports where it stopped).
type Parser struct {
	next     func() (scanner.Token, error)
	resolve  Resolver
	stack    []item
	prevKind scanner.Kind // for unary +/- disambiguation, mirrors prev_token.type
	hasPrev  bool

	// markers tracks the stack index of each live "reduction start" marker
	// (spec.md §4.D's `<`), innermost last. An actShift ('<' cell) opens a
	// new marker directly above the current topmost terminal — i.e. right
	// below whatever already-reduced expression slots sit on top of that
	// terminal, not at the position the newly shifted item itself lands on
	// — so the eventual handle includes those slots. An actEqual ('=' cell,
	// bracket/comma matching) shifts without opening one, and an actReduce
	// pops the handle from the topmost marker to the stack top, then
	// retires that marker. This is what lets the handle scan include
	// already-reduced sub-expressions (whose own term tag is meaningless)
	// without having to re-derive precedence from stale item kinds.
	markers []int

	// lookahead is the token that ended parsing (the first one pparser
	// could not shift/reduce into the expression); the caller resumes
	// statement parsing from it.
	lookahead scanner.Token

	// pending holds a token already read from next() while peeking past an
	// identifier to classify it, when that peek turned out not to be the
	// '(' of a call: fetchToken hands it back before reading a fresh one,
	// so no token is ever dropped.
	pending *scanner.Token
}

// New builds a Parser. next must return successive tokens from the same
// stream pkg/parser is driving; resolve binds identifiers to the current
// scope chain.
func New(next func() (scanner.Token, error), resolve Resolver) *Parser {
	return &Parser{next: next, resolve: resolve}
}

// Lookahead returns the token that stopped the parse (not consumed into
// the expression), for the caller to continue from.
func (p *Parser) Lookahead() scanner.Token { return p.lookahead }

// fetchToken returns the next raw token, preferring a pushed-back one (left
// over from peeking past an identifier, see classify) over reading a fresh
// one from the stream.
func (p *Parser) fetchToken() (scanner.Token, error) {
	if p.pending != nil {
		tok := *p.pending
		p.pending = nil
		return tok, nil
	}
	return p.next()
}

// Parse runs the engine starting from first (already read by the caller) in
// the given Mode, returning the resulting AST. The whole statement —
// including any left-hand side, for ValidStatement/AssignRequired/
// DefineRequired — is parsed in this single pass, since = / := / , sit in
// the same 27-terminal table as the arithmetic and logic operators.
//
// cls is classified exactly once per distinct cur (here, and again each
// time cur advances after a shift below) rather than on every loop
// iteration, since classifying an identifier consumes and buffers one
// token of lookahead (see classify/classifyIdent) — reclassifying the same
// cur across a run of reduces would peek past it repeatedly and corrupt the
// token stream.
func (p *Parser) Parse(first scanner.Token, mode Mode) (*ast.Node, error) {
	p.stack = []item{{t: tDollar, tok: scanner.Token{Kind: scanner.EOF}}}
	cur := first
	cls, err := p.classify(cur)
	if err != nil {
		return nil, err
	}

	for {
		topIdx := p.topTerminalIndex()
		top := p.stack[topIdx].t

		act := table[top][cls]
		switch act {
		case actOmega:
			p.lookahead = cur
			result, err := p.finish(mode)
			if err != nil {
				return nil, err
			}
			return result, nil

		case actBlank:
			return nil, &Error{Tok: cur, Msg: fmt.Sprintf("unexpected %s in expression", describe(cur))}

		case actShift:
			p.markers = append(p.markers, topIdx+1)
			p.stack = append(p.stack, item{t: cls, tok: cur})
			p.prevKind, p.hasPrev = cur.Kind, true
			nxt, err := p.advanceToken(cls)
			if err != nil {
				return nil, err
			}
			cur = nxt
			cls, err = p.classify(cur)
			if err != nil {
				return nil, err
			}

		case actEqual:
			p.stack = append(p.stack, item{t: cls, tok: cur})
			p.prevKind, p.hasPrev = cur.Kind, true
			nxt, err := p.advanceToken(cls)
			if err != nil {
				return nil, err
			}
			cur = nxt
			cls, err = p.classify(cur)
			if err != nil {
				return nil, err
			}

		case actReduce:
			if err := p.reduceOnce(); err != nil {
				return nil, err
			}
			// cur/cls unchanged; re-examine with the new stack top.
		}
	}
}

// advanceToken reads the token following a just-shifted terminal. An EOL
// directly after a shifted operator, '(' or ',' is a continuation — the
// expression cannot legally end there — so it is swallowed (spec.md §4.D's
// end-of-line discipline); after an operand or ')' the expression may end,
// and the EOL is left in place to classify as the $ terminator.
func (p *Parser) advanceToken(shifted term) (scanner.Token, error) {
	tok, err := p.fetchToken()
	if err != nil {
		return scanner.Token{}, err
	}
	for continuesAfter(shifted) && tok.Kind == scanner.EOL {
		tok, err = p.fetchToken()
		if err != nil {
			return scanner.Token{}, err
		}
	}
	return tok, nil
}

func continuesAfter(t term) bool {
	switch t {
	case tOperand, tRParen:
		return false
	default:
		return true
	}
}

// topTerminalIndex finds the stack index of the nearest not-yet-reduced
// terminal at or below the stack top, skipping over any already-reduced
// expression slots — mirroring the original's rptr scan back to the
// nearest real terminal for the precedence comparison. Index 0 (the
// bottom $ sentinel) is never reduced, so the scan always terminates.
func (p *Parser) topTerminalIndex() int {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].expr == nil {
			return i
		}
	}
	return 0
}

func (p *Parser) classify(tok scanner.Token) (term, error) {
	switch tok.Kind {
	case scanner.Plus:
		if p.prevIsOperandEnd() {
			return tPlus, nil
		}
		return tUPlus, nil
	case scanner.Minus:
		if p.prevIsOperandEnd() {
			return tMinus, nil
		}
		return tUMinus, nil
	case scanner.Star:
		return tMul, nil
	case scanner.Slash:
		return tDiv, nil
	case scanner.Gt:
		return tGt, nil
	case scanner.Lt:
		return tLt, nil
	case scanner.GtE:
		return tGtE, nil
	case scanner.LtE:
		return tLtE, nil
	case scanner.Eq:
		return tEq, nil
	case scanner.NEq:
		return tNEq, nil
	case scanner.And:
		return tAnd, nil
	case scanner.Or:
		return tOr, nil
	case scanner.Not:
		return tNot, nil
	case scanner.Assign:
		return tAssign, nil
	case scanner.Define:
		return tDefine, nil
	case scanner.PlusAssign:
		return tPlusAssign, nil
	case scanner.MinusAssign:
		return tMinusAssign, nil
	case scanner.StarAssign:
		return tMulAssign, nil
	case scanner.SlashAssign:
		return tDivAssign, nil
	case scanner.LParen:
		return tLParen, nil
	case scanner.RParen:
		return tRParen, nil
	case scanner.Comma:
		return tComma, nil
	case scanner.IntLit, scanner.FloatLit, scanner.StringLit:
		return tOperand, nil
	case scanner.Keyword:
		if tok.Text == "true" || tok.Text == "false" {
			return tOperand, nil
		}
		return 0, &Error{Tok: tok, Msg: fmt.Sprintf("unexpected keyword %q in expression", tok.Text)}
	case scanner.Ident:
		return p.classifyIdent(tok)
	case scanner.EOF, scanner.EOL, scanner.Semicolon, scanner.RBrace, scanner.LBrace:
		return tDollar, nil
	default:
		return 0, &Error{Tok: tok, Msg: fmt.Sprintf("unexpected %s in expression", describe(tok))}
	}
}

// classifyIdent tells a function name ("f") from a plain operand ("i") by
// peeking one token past tok, per spec.md §4.D: "Identifier-or-function is
// resolved by one-token peek: '(' following means f." Whatever the peeked
// token turns out to be, it's stashed in p.pending so the caller sees it
// next instead of a freshly read one — the peek must never drop a token.
func (p *Parser) classifyIdent(tok scanner.Token) (term, error) {
	ahead, err := p.fetchToken()
	if err != nil {
		return 0, err
	}
	p.pending = &ahead
	if ahead.Kind == scanner.LParen {
		return tFunc, nil
	}
	return tOperand, nil
}

// prevIsOperandEnd reports whether the previously-shifted token could end
// an operand (identifier, literal or closing paren), which is exactly when
// a following +/- is binary rather than unary.
func (p *Parser) prevIsOperandEnd() bool {
	if !p.hasPrev {
		return false
	}
	switch p.prevKind {
	case scanner.Ident, scanner.IntLit, scanner.FloatLit, scanner.StringLit, scanner.RParen, scanner.Keyword:
		return true
	default:
		return false
	}
}

func describe(tok scanner.Token) string {
	if tok.Text != "" {
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	}
	return tok.Kind.String()
}

// reduceOnce pops the handle back to the topmost live marker (spec.md
// §4.D's `<`, opened by the most recent actShift) and replaces it with a
// single reduced item, applying the rule that matches the handle's shape.
// The marker that bounded this handle is retired: reducing collapses
// exactly the region it opened, exposing whatever marker (if any) sits
// below it for a later reduce at that outer level.
func (p *Parser) reduceOnce() error {
	handleStart := 1 // just above the bottom $ sentinel, the outermost default
	if n := len(p.markers); n > 0 {
		handleStart = p.markers[n-1]
		p.markers = p.markers[:n-1]
	}
	if handleStart >= len(p.stack) {
		return &Error{Msg: "malformed expression"}
	}

	handle := p.stack[handleStart:]
	node, err := p.applyRule(handle)
	if err != nil {
		return err
	}
	p.stack = append(p.stack[:handleStart], item{expr: node})
	return nil
}

// applyRule builds the ast.Node for one reduction, dispatching on the
// shape of the popped handle (mirrors precedence_parser.c's `rules` table:
// unary op, binary op, bracketed expression, literal/identifier leaf,
// function call and comma-joined multi-value lists).
func (p *Parser) applyRule(handle []item) (*ast.Node, error) {
	switch {
	case len(handle) == 1 && handle[0].expr != nil:
		return handle[0].expr, nil

	case len(handle) == 1:
		return p.reduceLeaf(handle[0])

	case len(handle) == 2 && (handle[0].t == tNot || handle[0].t == tUPlus || handle[0].t == tUMinus) && handle[1].expr != nil:
		return p.reduceUnary(handle[0].t, handle[1].expr)

	case len(handle) == 3 && handle[0].t == tLParen && handle[1].expr != nil && handle[2].t == tRParen:
		return handle[1].expr, nil

	case len(handle) >= 3 && handle[0].t == tFunc && handle[1].t == tLParen && handle[len(handle)-1].t == tRParen:
		return p.reduceCall(handle)

	case len(handle) >= 5 && handle[0].expr != nil && handle[1].t == tComma && hasAssignOp(handle):
		return p.reduceMultiAssign(handle)

	// Comma lists (multi-value return, the bare RHS of a parallel
	// assignment) must win over the generic binary rule: an `E , E` handle
	// is a list element pair, not an infix application of ','.
	case len(handle) >= 3 && handle[0].expr != nil && handle[1].expr == nil && handle[1].t == tComma:
		return p.reduceCommaList(handle)

	case len(handle) == 3 && handle[0].expr != nil && handle[1].expr == nil && handle[2].expr != nil:
		return p.reduceBinary(handle[0].expr, handle[1], handle[2].expr)

	default:
		// No grammar rule covers this handle: adjacent operands, a dangling
		// operator, and similar shapes all land here.
		return nil, &Error{Tok: handleToken(handle), Msg: "malformed expression"}
	}
}

func (p *Parser) reduceLeaf(it item) (*ast.Node, error) {
	switch it.t {
	case tOperand:
		switch it.tok.Kind {
		case scanner.IntLit:
			return ast.NewConstInt(it.tok.Int), nil
		case scanner.FloatLit:
			return ast.NewConstFloat(it.tok.Float), nil
		case scanner.StringLit:
			return ast.NewConstString(it.tok.Str), nil
		case scanner.Keyword:
			return ast.NewConstBool(it.tok.Text == "true"), nil
		case scanner.Ident:
			sym, ok := p.resolve.Lookup(it.tok.Text)
			if !ok {
				return nil, &Error{Tok: it.tok, Msg: fmt.Sprintf("undefined identifier %q", it.tok.Text)}
			}
			return ast.NewID(sym), nil
		}
	}
	return nil, fmt.Errorf("pparser: internal error, unreducible leaf %v", it.t)
}

func (p *Parser) reduceUnary(op term, operand *ast.Node) (*ast.Node, error) {
	switch op {
	case tNot:
		return ast.NewUnary(ast.Not, operand), nil
	case tUPlus:
		return operand, nil // unary plus is a no-op
	case tUMinus:
		return ast.NewUnary(ast.ArNeg, operand), nil
	default:
		return nil, fmt.Errorf("pparser: internal error, bad unary term %v", op)
	}
}

func (p *Parser) reduceBinary(left *ast.Node, op item, right *ast.Node) (*ast.Node, error) {
	switch op.t {
	case tAssign:
		return ast.NewAssign(left, right), nil
	case tDefine:
		return ast.NewDefine(left, right), nil
	case tPlusAssign, tMinusAssign, tMulAssign, tDivAssign:
		kind := map[term]ast.Kind{tPlusAssign: ast.Add, tMinusAssign: ast.Sub, tMulAssign: ast.Mul, tDivAssign: ast.Div}[op.t]
		return ast.NewAssign(left, ast.NewBinary(kind, left, right)), nil
	default:
		if kind, ok := binaryKind[op.t]; ok {
			return ast.NewBinary(kind, left, right), nil
		}
		return nil, fmt.Errorf("pparser: internal error, bad binary term %v", op.t)
	}
}

// reduceCall builds a call node from a handle shaped `f ( ... )`, where the
// middle region is empty (no arguments), a single expression, or a
// comma-joined list of them.
func (p *Parser) reduceCall(handle []item) (*ast.Node, error) {
	inner := handle[2 : len(handle)-1]
	if len(inner) == 0 {
		return ast.NewFuncCall(p.calleeNode(handle[0].tok), nil), nil
	}
	args, err := p.reduceCommaList(inner)
	if err != nil {
		return nil, err
	}
	return ast.NewFuncCall(p.calleeNode(handle[0].tok), args), nil
}

// isAssignOp reports whether t is one of the operators that can terminate a
// comma-joined list of assignment targets.
func isAssignOp(t term) bool {
	switch t {
	case tAssign, tDefine, tPlusAssign, tMinusAssign, tMulAssign, tDivAssign:
		return true
	}
	return false
}

// hasAssignOp reports whether handle contains an unreduced assignment
// operator, distinguishing a multi-target assignment's handle (`a, b := f()`)
// from a plain comma-joined value list (call arguments, multi-return RHS).
func hasAssignOp(handle []item) bool {
	for _, it := range handle {
		if it.expr == nil && isAssignOp(it.t) {
			return true
		}
	}
	return false
}

// reduceMultiAssign splits a handle shaped `target , target ... op value`
// (spec.md §4.E's multi-variable `:=`/`=`) at its assignment operator, folds
// the left side into a single List node via reduceCommaList, and builds the
// Assign/Define node from that list and the right-hand side: a single value
// (a multi-return call is still one expression on the right; ir.Emit later
// pops its results into the targets in order) or, in the parallel form
// `a, b = e1, e2`, a second List node.
func (p *Parser) reduceMultiAssign(handle []item) (*ast.Node, error) {
	opIdx := -1
	for i, it := range handle {
		if it.expr == nil && isAssignOp(it.t) {
			opIdx = i
			break
		}
	}
	if opIdx <= 0 || opIdx == len(handle)-1 {
		return nil, &Error{Tok: handleToken(handle), Msg: "malformed multi-target assignment"}
	}
	right := handle[opIdx+1:]
	var rhs *ast.Node
	if len(right) == 1 && right[0].expr != nil {
		// Single value: a multi-return call is still one expression here.
		rhs = right[0].expr
	} else {
		// Parallel form: `a, b = e1, e2` carries its own comma list.
		list, err := p.reduceCommaList(right)
		if err != nil {
			return nil, err
		}
		rhs = list
	}
	left, err := p.reduceCommaList(handle[:opIdx])
	if err != nil {
		return nil, err
	}
	return p.reduceBinary(left, handle[opIdx], rhs)
}

// reduceCommaList folds a `E , E , E ...` handle into a single List node,
// used both for multi-value function-call argument lists and the
// comma-joined LHS/RHS of a multi-return assignment (`a, b := f()`).
func (p *Parser) reduceCommaList(handle []item) (*ast.Node, error) {
	list := ast.NewList(len(handle)/2 + 1)
	for i, it := range handle {
		if i%2 == 0 {
			if it.expr == nil {
				return nil, &Error{Tok: it.tok, Msg: "malformed comma-separated list"}
			}
			list.Push(it.expr)
		} else if it.t != tComma {
			return nil, &Error{Tok: it.tok, Msg: "expected ',' between list elements"}
		}
	}
	return list, nil
}

// handleToken picks a source position for a malformed-handle diagnostic:
// the first unreduced terminal's token, if the handle still has one.
func handleToken(handle []item) scanner.Token {
	for _, it := range handle {
		if it.expr == nil {
			return it.tok
		}
	}
	return scanner.Token{}
}

// calleeNode builds the Id node referencing the called function, creating
// a forward-reference stub in the global table on first sight if needed.
func (p *Parser) calleeNode(tok scanner.Token) *ast.Node {
	return ast.NewID(p.resolve.ResolveFunc(tok.Text))
}

// finish validates that the fully-reduced stack holds exactly one
// expression appropriate to mode.
func (p *Parser) finish(mode Mode) (*ast.Node, error) {
	var result *ast.Node
	for _, it := range p.stack {
		if it.t == tDollar {
			continue
		}
		if it.expr == nil {
			return nil, &Error{Tok: it.tok, Msg: "incomplete expression"}
		}
		if result != nil {
			return nil, &Error{Tok: p.lookahead, Msg: "malformed expression"}
		}
		result = it.expr
	}
	if result == nil {
		return nil, &Error{Tok: p.lookahead, Msg: "expected an expression"}
	}

	switch mode {
	case AssignRequired:
		if result.Kind != ast.Assign {
			return nil, &Error{Tok: p.lookahead, Msg: "expected an assignment"}
		}
	case DefineRequired:
		if result.Kind != ast.Define {
			return nil, &Error{Tok: p.lookahead, Msg: "expected a short variable definition (:=)"}
		}
	case ValidStatement:
		if result.Kind != ast.Assign && result.Kind != ast.Define && result.Kind != ast.FuncCall {
			return nil, &Error{Tok: p.lookahead, Msg: "expression used as a statement has no effect"}
		}
	case PureExpression:
		if result.Kind == ast.Assign || result.Kind == ast.Define {
			return nil, &Error{Tok: p.lookahead, Msg: "assignment not allowed here"}
		}
	}
	return result, nil
}
