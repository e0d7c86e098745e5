// Package parser is the recursive-descent statement/program parser
// (spec.md §4.E): it drives pkg/scanner for tokens, pkg/pparser for
// expressions, and builds the pkg/cfg tree and pkg/symtab scope chain as it
// goes, grounded on the original implementation's parser.c grammar and the
// teacher's top-level Parser.Parse()/FromSource shape.
package parser

import (
	"fmt"
	"io"

	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/pparser"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/scanner"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// Error is a parser-level failure. Most constructions here are genuine
// syntax errors (spec.md §7 code 2); semErrf builds the handful that are
// semantic (undefined identifier, redefinition) and carry their own code.
type Error struct {
	Line, Column int
	Msg          string
	code         diag.Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
}

// Code reports the diagnostic this error maps to: whatever semErrf set, or
// the syntax/EOL default for every plain &Error{...} literal in this package.
func (e *Error) Code() diag.Code {
	if e.code == diag.Success {
		return diag.SyntaxOrEOL
	}
	return e.code
}

// Parser holds the whole state of one compilation: the token stream, the
// active scope chain (innermost last) and the CFG under construction.
type Parser struct {
	sc   *scanner.Scanner
	sink *diag.Sink
	cur  scanner.Token

	global  *symtab.Table
	scopes  []*symtab.Table // [0] is always global
	builder *cfg.Builder

	// blackhole is the shared '_' discard target: not registered in any
	// scope table (it can be "declared" arbitrarily many times with no
	// redefinition error), resolved directly by name in Lookup.
	blackhole *symtab.Symbol
}

// New wraps r (stdin, per spec.md §6) and reports diagnostics through
// sink, which is shared with the emitter pass that runs after Parse.
func New(r io.Reader, sink *diag.Sink) *Parser {
	global := symtab.New(64)
	p := &Parser{
		sc:        scanner.New(r),
		sink:      sink,
		global:    global,
		scopes:    []*symtab.Table{global},
		builder:   cfg.NewBuilder(global),
		blackhole: &symtab.Symbol{Name: "_", Kind: symtab.VarSymbol, Type: symtab.BlackHole, Defined: true},
	}
	p.registerBuiltins()
	return p
}

// Parse runs the whole grammar: `package main`, then a sequence of function
// declarations, returning the built Program once execution-level
// invariants (main exists, every declared function is defined) hold.
func (p *Parser) Parse() (*cfg.Program, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipEOLs(); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("package"); err != nil {
		return nil, err
	}
	if err := p.skipEOLs(); err != nil {
		return nil, err
	}
	if err := p.expectIdent("main"); err != nil {
		return nil, err
	}
	if err := p.expectEOL(); err != nil {
		return nil, err
	}

	for p.cur.Kind != scanner.EOF {
		if err := p.skipEOLs(); err != nil {
			return nil, err
		}
		if p.cur.Kind == scanner.EOF {
			break
		}
		if err := p.parseFunction(); err != nil {
			return nil, err
		}
		if err := p.skipEOLs(); err != nil {
			return nil, err
		}
	}

	mainSym, ok := p.global.Find("main")
	if !ok || !mainSym.Defined {
		return nil, p.semErrf(p.cur, diag.UndefinedOrRedefined, "missing function main")
	}
	if len(mainSym.Params) != 0 || len(mainSym.Returns) != 0 {
		return nil, p.semErrf(p.cur, diag.WrongParamOrReturn, "incorrect prototype of function main")
	}
	for _, sym := range p.global.Iterate() {
		if sym.Kind == symtab.FuncSymbol && !sym.Defined {
			return nil, p.semErrf(p.cur, diag.UndefinedOrRedefined, "undefined function %s", sym.Name)
		}
	}

	return p.builder.Prog, nil
}

// ---- builtins -------------------------------------------------------------

func (p *Parser) registerBuiltins() {
	add := func(name string, params []symtab.Param, returns []symtab.Param) {
		sym, _ := p.global.Add(name, symtab.FuncSymbol)
		sym.Defined = true
		sym.Params = params
		sym.Returns = returns
	}
	str, i, f := symtab.String, symtab.Int, symtab.Float

	add("inputs", nil, []symtab.Param{{Type: str}, {Type: i}})
	add("inputi", nil, []symtab.Param{{Type: i}, {Type: i}})
	add("inputf", nil, []symtab.Param{{Type: f}, {Type: i}})
	printSym, _ := p.global.Add("print", symtab.FuncSymbol)
	printSym.Defined, printSym.Variadic = true, true
	add("int2float", []symtab.Param{{Name: "i", Type: i}}, []symtab.Param{{Type: f}})
	add("float2int", []symtab.Param{{Name: "i", Type: f}}, []symtab.Param{{Type: i}})
	add("len", []symtab.Param{{Name: "s", Type: str}}, []symtab.Param{{Type: i}})
	add("substr", []symtab.Param{{Name: "s", Type: str}, {Name: "i", Type: i}, {Name: "n", Type: i}},
		[]symtab.Param{{Type: str}, {Type: i}})
	add("ord", []symtab.Param{{Name: "s", Type: str}, {Name: "i", Type: i}}, []symtab.Param{{Type: i}, {Type: i}})
	add("chr", []symtab.Param{{Name: "i", Type: i}}, []symtab.Param{{Type: str}, {Type: i}})
}

// ---- token plumbing ---------------------------------------------------------

func (p *Parser) advance() error {
	tok, err := p.sc.Next()
	if err != nil {
		if lexErr, ok := err.(*scanner.Error); ok {
			return lexErr
		}
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) skipEOLs() error {
	for p.cur.Kind == scanner.EOL {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expectEOL() error {
	if p.cur.Kind != scanner.EOL && p.cur.Kind != scanner.EOF {
		return &Error{Line: p.cur.Line, Column: p.cur.Column, Msg: "expected end of line"}
	}
	for p.cur.Kind == scanner.EOL {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expectKeyword(word string) error {
	if p.cur.Kind != scanner.Keyword || p.cur.Text != word {
		return &Error{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf("expected keyword %q", word)}
	}
	return p.advance()
}

func (p *Parser) expectIdent(name string) error {
	if p.cur.Kind != scanner.Ident || p.cur.Text != name {
		return &Error{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf("expected identifier %q", name)}
	}
	return p.advance()
}

func (p *Parser) expect(kind scanner.Kind) (scanner.Token, error) {
	if p.cur.Kind != kind {
		return scanner.Token{}, &Error{Line: p.cur.Line, Column: p.cur.Column,
			Msg: fmt.Sprintf("expected %s, got %s", kind, p.cur.Kind)}
	}
	tok := p.cur
	return tok, p.advance()
}

// errf builds an *Error anchored at the current token, the common case for
// every hand-written grammar check below.
func (p *Parser) errf(format string, args ...interface{}) error {
	return &Error{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, args...)}
}

// semErrf builds an *Error carrying a specific semantic diagnostic code,
// anchored at tok rather than the parser's current token since by the time
// an expression has been fully reduced p.cur has already moved past it.
func (p *Parser) semErrf(tok scanner.Token, code diag.Code, format string, args ...interface{}) error {
	return &Error{Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf(format, args...), code: code}
}

// ---- scope chain ------------------------------------------------------------

func (p *Parser) pushScope() *symtab.Table {
	t := symtab.New(8)
	p.scopes = append(p.scopes, t)
	return t
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// Lookup implements pparser.Resolver: walk from the innermost scope out.
// '_' is the discard target and resolves to a shared symbol outside any
// scope table rather than a lookup failure.
//
// A genuine miss never fails outright: pparser's expression engine reduces
// an identifier to a leaf the moment it's read, before it knows whether a
// `:=` will follow and turn this name into a brand new variable rather than
// a read of an existing one. So a miss here returns a throwaway Unresolved
// placeholder instead of (nil, false); finalizeExpr, run once the whole
// statement has been parsed and its shape is known, either replaces it with
// a freshly registered symbol (the name was a `:=` target) or reports the
// undefined-identifier error (it was read as a value and never defined).
func (p *Parser) Lookup(name string) (*symtab.Symbol, bool) {
	if name == "_" {
		return p.blackhole, true
	}
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if sym, ok := p.scopes[i].Find(name); ok {
			return sym, true
		}
	}
	return &symtab.Symbol{Name: name, Kind: symtab.VarSymbol, Unresolved: true}, true
}

// ResolveFunc implements pparser.Resolver: functions always live in the
// global table; a miss creates an Unknown, undefined stub so forward
// references type-check provisionally until the real declaration patches it.
func (p *Parser) ResolveFunc(name string) *symtab.Symbol {
	if sym, ok := p.global.Find(name); ok {
		return sym
	}
	sym, _ := p.global.Add(name, symtab.FuncSymbol)
	return sym
}

func (p *Parser) exprParser() *pparser.Parser {
	return pparser.New(func() (scanner.Token, error) {
		if err := p.advance(); err != nil {
			return scanner.Token{}, err
		}
		return p.cur, nil
	}, p)
}

// parseExpr parses one expression in mode starting at the current token,
// and leaves p.cur positioned at the token that stopped it (pparser's
// Lookahead), ready for the caller to continue driving the grammar.
func (p *Parser) parseExpr(mode pparser.Mode) (*ast.Node, error) {
	ep := p.exprParser()
	first := p.cur
	node, err := ep.Parse(first, mode)
	if err != nil {
		return nil, err
	}
	p.cur = ep.Lookahead()
	if err := p.finalizeExpr(node); err != nil {
		return nil, err
	}
	return node, nil
}

// finalizeExpr runs once per parsed expression/statement, after the whole
// shape is known: a Define registers each of its left-hand targets as a
// fresh symbol in the innermost scope (shadowing an outer variable of the
// same name, if any), then every remaining Unresolved placeholder anywhere
// in the tree — a name read as a value that was never defined — is reported
// as an undefined identifier.
func (p *Parser) finalizeExpr(n *ast.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind == ast.Define {
		if err := p.registerDefine(n); err != nil {
			return err
		}
	}
	return p.checkUnresolved(n)
}

// registerDefine gives each `:=` target its own symbol in the current
// (innermost) scope, replacing whatever Lookup returned while the
// expression was being parsed — an Unresolved placeholder for a brand new
// name, or a real outer-scope symbol that this declaration now shadows.
// Redefining a name already declared in this exact scope is rejected, same
// as the original implementation's one-declaration-per-scope rule.
func (p *Parser) registerDefine(n *ast.Node) error {
	inner := p.scopes[len(p.scopes)-1]
	for _, target := range defineTargets(n.Left) {
		if target.Kind != ast.Id || target.Sym == p.blackhole {
			continue
		}
		if _, exists := inner.Find(target.Sym.Name); exists {
			return p.semErrf(p.cur, diag.UndefinedOrRedefined,
				"variable %q already declared in this scope", target.Sym.Name)
		}
		sym, err := inner.Add(target.Sym.Name, symtab.VarSymbol)
		if err != nil {
			return p.semErrf(p.cur, diag.Internal, "%s", err)
		}
		sym.Defined = true
		target.Sym = sym
	}
	return nil
}

func defineTargets(n *ast.Node) []*ast.Node {
	if n.Kind == ast.List {
		return n.Items
	}
	return []*ast.Node{n}
}

// checkUnresolved walks n looking for any identifier leaf still carrying an
// Unresolved placeholder symbol: a name read somewhere other than a `:=`
// target that was never declared in any active scope.
func (p *Parser) checkUnresolved(n *ast.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind == ast.Id && n.Sym.Unresolved {
		return p.semErrf(p.cur, diag.UndefinedOrRedefined, "undefined identifier %q", n.Sym.Name)
	}
	if err := p.checkUnresolved(n.Left); err != nil {
		return err
	}
	if err := p.checkUnresolved(n.Right); err != nil {
		return err
	}
	for _, item := range n.Items {
		if err := p.checkUnresolved(item); err != nil {
			return err
		}
	}
	return nil
}
