package parser

import (
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/ast"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/cfg"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/diag"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/pparser"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/scanner"
	"github.com/Adda0/ifj20-go-compiler-sub000/pkg/symtab"
)

// parseFunction parses one top-level `func name(params) retType { body }`
// declaration, patching a forward-reference stub in place if one exists.
func (p *Parser) parseFunction() error {
	if err := p.expectKeyword("func"); err != nil {
		return err
	}
	if p.cur.Kind == scanner.EOL {
		return p.errf("unexpected EOL after 'func'")
	}
	nameTok, err := p.expect(scanner.Ident)
	if err != nil {
		return err
	}
	name := nameTok.Text

	sym, existed := p.global.Find(name)
	if existed {
		if sym.Defined {
			return p.semErrf(nameTok, diag.UndefinedOrRedefined, "redefinition of function %s", name)
		}
	} else {
		sym, _ = p.global.Add(name, symtab.FuncSymbol)
	}
	sym.Defined = true
	if name == "main" {
		// main always carries an implicit use (the runtime entry call), on
		// top of any ordinary references a forward-use may have already
		// counted; the emitter treats RefCount > 1 as "referenced elsewhere".
		sym.RefCount++
	}

	fn, err := p.builder.MakeFunction(name, sym)
	if err != nil {
		return err
	}

	if p.cur.Kind == scanner.EOL {
		return p.errf("unexpected EOL after function name")
	}
	if _, err := p.expect(scanner.LParen); err != nil {
		return err
	}

	bodyScope := p.pushScope()
	fn.Scope = bodyScope

	if err := p.skipEOLs(); err != nil {
		return err
	}
	if err := p.parseParams(sym, bodyScope); err != nil {
		return err
	}
	if p.cur.Kind != scanner.RParen {
		return p.errf("expected ')' after parameters, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Kind == scanner.EOL {
		return p.errf("unexpected EOL after parameter list")
	}

	if err := p.parseRetType(sym, bodyScope); err != nil {
		return err
	}

	if p.cur.Kind != scanner.LBrace {
		return p.errf("expected '{' before function body, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expectEOL(); err != nil {
		return err
	}

	if err := p.parseBody(); err != nil {
		return err
	}

	if p.cur.Kind != scanner.RBrace {
		return p.errf("expected '}' after function body, got %s", p.cur.Kind)
	}
	p.popScope()
	if err := p.advance(); err != nil {
		return err
	}
	return p.expectEOL()
}

// parseParams parses a comma-separated "name type" list ending at ')'. It
// adds each parameter both to sym (the function's signature) and to scope
// (so the body can reference the arguments).
func (p *Parser) parseParams(sym *symtab.Symbol, scope *symtab.Table) error {
	for p.cur.Kind != scanner.RParen {
		if p.cur.Kind != scanner.Ident {
			return p.errf("expected a parameter name, got %s", p.cur.Kind)
		}
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL inside parameter list")
		}
		typ, err := p.parseType()
		if err != nil {
			return err
		}
		if err := p.global.AddParam(sym, name, typ); err != nil {
			return p.errf("%s", err)
		}
		varSym, err := scope.Add(name, symtab.VarSymbol)
		if err != nil {
			return p.semErrf(p.cur, diag.UndefinedOrRedefined, "redefinition of parameter %s", name)
		}
		varSym.Type, varSym.Defined, varSym.IsArgument = typ, true, true

		if p.cur.Kind != scanner.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.skipEOLs(); err != nil {
			return err
		}
	}
	return nil
}

// parseType reads one of the four primitive type keywords.
func (p *Parser) parseType() (symtab.DataType, error) {
	if p.cur.Kind != scanner.Keyword {
		return 0, p.errf("expected a type keyword, got %s", p.cur.Kind)
	}
	var t symtab.DataType
	switch p.cur.Text {
	case "int":
		t = symtab.Int
	case "float64":
		t = symtab.Float
	case "string":
		t = symtab.String
	case "bool":
		t = symtab.Bool
	default:
		return 0, p.errf("expected int, float64, string or bool, got %q", p.cur.Text)
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return t, nil
}

func (p *Parser) isTypeKeyword(tok scanner.Token) bool {
	if tok.Kind != scanner.Keyword {
		return false
	}
	switch tok.Text {
	case "int", "float64", "string", "bool":
		return true
	}
	return false
}

// parseRetType parses the three legal forms of a return clause: absent
// (next token is '{'), a single anonymous type, or a parenthesised list that
// is either all-anonymous types or all-named "name type" pairs (never
// mixed, enforced by symtab.Table.AddReturn).
func (p *Parser) parseRetType(sym *symtab.Symbol, scope *symtab.Table) error {
	switch {
	case p.cur.Kind == scanner.LBrace:
		return nil

	case p.isTypeKeyword(p.cur):
		for {
			typ, err := p.parseType()
			if err != nil {
				return err
			}
			if err := p.global.AddReturn(sym, "", typ); err != nil {
				return p.errf("%s", err)
			}
			if p.cur.Kind != scanner.Comma {
				break
			}
			if err := p.advance(); err != nil {
				return err
			}
		}
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL after return type")
		}
		return nil

	case p.cur.Kind == scanner.LParen:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.skipEOLs(); err != nil {
			return err
		}

		if p.cur.Kind == scanner.RParen {
			if err := p.advance(); err != nil {
				return err
			}
			if p.cur.Kind == scanner.EOL {
				return p.errf("unexpected EOL after return type")
			}
			return nil
		}

		named := p.cur.Kind == scanner.Ident
		for {
			var name string
			if named {
				if p.cur.Kind != scanner.Ident {
					return p.errf("expected a named return, got %s", p.cur.Kind)
				}
				name = p.cur.Text
				if err := p.advance(); err != nil {
					return err
				}
			}
			typ, err := p.parseType()
			if err != nil {
				return err
			}
			if err := p.global.AddReturn(sym, name, typ); err != nil {
				return p.errf("%s", err)
			}
			if named {
				varSym, err := scope.Add(name, symtab.VarSymbol)
				if err != nil {
					return p.semErrf(p.cur, diag.UndefinedOrRedefined, "redefinition of return variable %s", name)
				}
				varSym.Type, varSym.Defined, varSym.IsReturnValue = typ, true, true
				varSym.RefCount = 1
			}
			if p.cur.Kind != scanner.Comma {
				break
			}
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.skipEOLs(); err != nil {
				return err
			}
		}

		if p.cur.Kind != scanner.RParen {
			return p.errf("expected ')' after return types, got %s", p.cur.Kind)
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL after return type")
		}
		return nil

	default:
		return p.errf("expected '{', '(' or a type at the start of the return clause, got %s", p.cur.Kind)
	}
}

// parseBody parses statements until the enclosing '}'. It never creates the
// branch placeholder itself — that is the caller's job (parseIf/parseFor),
// matching the original's practice of always opening an if/for branch with
// a CF_BASIC placeholder statement that carries the branch's scope, with
// every real statement then attached as its (or a sibling's) successor.
//
// A syntax error inside a statement doesn't abort the whole parse: the
// diagnostic goes to the sink (whose first failing code is the one that
// becomes the exit status), the rest of the offending line is skipped, and
// parsing resumes at the next statement — so several independent syntax
// errors in one body all get reported (spec.md §7). Lexical and semantic
// errors stay fatal.
func (p *Parser) parseBody() error {
	for p.cur.Kind != scanner.RBrace {
		if p.cur.Kind == scanner.EOF {
			return p.errf("unexpected EOF inside a function body")
		}
		err := p.parseStatement()
		if err == nil {
			continue
		}
		coded, ok := err.(interface{ Code() diag.Code })
		if !ok || coded.Code() != diag.SyntaxOrEOL {
			return err
		}
		p.sink.Report(diag.SyntaxOrEOL, "%s", err)
		if rerr := p.recoverToEOL(); rerr != nil {
			return rerr
		}
	}
	return nil
}

// recoverToEOL discards tokens up to and including the next newline (or
// until the body's closing brace / EOF), the resumption point of the
// statement grammar after a reported syntax error.
func (p *Parser) recoverToEOL() error {
	for p.cur.Kind != scanner.EOL && p.cur.Kind != scanner.EOF && p.cur.Kind != scanner.RBrace {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return p.skipEOLs()
}

func (p *Parser) parseStatement() error {
	switch {
	case p.cur.Kind == scanner.Keyword && p.cur.Text == "return":
		return p.parseReturn()
	case p.cur.Kind == scanner.Keyword && p.cur.Text == "if":
		return p.parseIf()
	case p.cur.Kind == scanner.Keyword && p.cur.Text == "for":
		return p.parseFor()
	case p.cur.Kind == scanner.Ident:
		return p.parseBasic()
	default:
		return p.errf("expected an identifier, 'if', 'for' or 'return' at statement start, got %s", p.cur.Kind)
	}
}

// parseBasic parses an assignment, short variable declaration or bare
// function call used as a statement.
func (p *Parser) parseBasic() error {
	stmt := p.builder.MakeNextStatement(cfg.Basic)
	expr, err := p.parseExpr(pparser.ValidStatement)
	if err != nil {
		return err
	}
	if expr.Kind != ast.Assign && expr.Kind != ast.Define && expr.Kind != ast.FuncCall {
		return p.errf("expected an assignment, definition or function call statement")
	}
	stmt.BodyAST = expr
	return p.expectEOL()
}

// parseReturn parses `return`, a bare return or an expression list, per
// spec.md §4.E's `return_follow`: a newline (or '}') directly after the
// keyword means an empty return list, otherwise an expression (possibly a
// List, for multi-value returns) follows.
func (p *Parser) parseReturn() error {
	stmt := p.builder.MakeNextStatement(cfg.Return)
	retTok := p.cur
	if err := p.advance(); err != nil { // consume 'return'
		return err
	}

	if p.cur.Kind == scanner.EOL || p.cur.Kind == scanner.RBrace {
		if err := p.skipEOLs(); err != nil {
			return err
		}
		stmt.Return = ast.NewList(0)
		return p.checkReturnArity(retTok, stmt.Return)
	}

	expr, err := p.parseExpr(pparser.PureExpression)
	if err != nil {
		return err
	}
	if expr.Kind == ast.List {
		stmt.Return = expr
	} else {
		list := ast.NewList(1)
		list.Push(expr)
		stmt.Return = list
	}
	if err := p.checkReturnArity(retTok, stmt.Return); err != nil {
		return err
	}
	return p.expectEOL()
}

// checkReturnArity enforces spec.md §3.4's Return shape: the list's length
// matches the enclosing function's return arity, except that a function
// with named return values also accepts a bare `return` (the named slots'
// current values are what gets returned — and an explicit list of matching
// length is still tolerated alongside them).
func (p *Parser) checkReturnArity(tok scanner.Token, list *ast.Node) error {
	fnSym := p.builder.ActiveFunction().Sym
	got, want := len(list.Items), len(fnSym.Returns)
	if got == want || (fnSym.ReturnsNamed && got == 0) {
		return nil
	}
	return p.semErrf(tok, diag.WrongParamOrReturn,
		"function %s returns %d values, return statement has %d", fnSym.Name, want, got)
}

// parseIf parses `if cond { body } else?`.
func (p *Parser) parseIf() error {
	stmt := p.builder.MakeNextStatement(cfg.If)
	if err := p.advance(); err != nil { // consume 'if'
		return err
	}
	if err := p.skipEOLs(); err != nil {
		return err
	}

	cond, err := p.parseExpr(pparser.PureExpression)
	if err != nil {
		return err
	}
	stmt.Cond = cond

	if err := p.expectBraceThenBody(); err != nil {
		return err
	}
	if err := p.openIfThen(stmt); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	p.popScope()
	if p.cur.Kind != scanner.RBrace {
		return p.errf("expected '}' after if body, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}

	if err := p.parseElse(stmt); err != nil {
		return err
	}
	// Whatever the branch walk ended on (possibly a nested if, or the last
	// else-if of the chain), the next sibling belongs after this construct.
	p.builder.Activate(stmt)
	return nil
}

// expectBraceThenBody checks for the '{' that must directly follow an if/for
// condition (no EOL in between) and consumes it plus the EOL it requires.
func (p *Parser) expectBraceThenBody() error {
	if p.cur.Kind == scanner.EOL {
		return p.errf("unexpected EOL before '{'")
	}
	if p.cur.Kind != scanner.LBrace {
		return p.errf("expected '{', got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	return p.expectEOL()
}

// openIfThen opens the then-branch's scope and placeholder statement; the
// active CFG statement becomes that placeholder so the branch's real
// statements attach as its successors (see parseBody's comment).
func (p *Parser) openIfThen(ifStmt *cfg.Statement) error {
	scope := p.pushScope()
	p.builder.MakeIfThenStatement(ifStmt, cfg.Basic)
	p.builder.AssignStatementSymtable(scope)
	return nil
}

// parseElse is called with p.cur positioned at whatever immediately follows
// the just-closed '}' of an if-then (or else-if-then) body. A literal EOL
// token there means 'else', if present, is on the next line, which is not
// allowed — Go-style cuddled else only.
func (p *Parser) parseElse(ifStmt *cfg.Statement) error {
	if p.cur.Kind == scanner.Keyword && p.cur.Text == "else" {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.skipEOLs(); err != nil {
			return err
		}
		return p.parseElseTail(ifStmt)
	}

	if p.cur.Kind == scanner.EOL {
		if err := p.skipEOLs(); err != nil {
			return err
		}
		if p.cur.Kind == scanner.Keyword && p.cur.Text == "else" {
			return p.errf("unexpected EOL before else")
		}
		return nil
	}

	if p.cur.Kind == scanner.EOF || p.cur.Kind == scanner.RBrace {
		return nil
	}
	return p.errf("expected EOL after if block before next statement")
}

func (p *Parser) parseElseTail(ifStmt *cfg.Statement) error {
	switch {
	case p.cur.Kind == scanner.LBrace:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectEOL(); err != nil {
			return err
		}
		scope := p.pushScope()
		p.builder.MakeIfElseStatement(ifStmt, cfg.Basic)
		p.builder.AssignStatementSymtable(scope)
		if err := p.parseBody(); err != nil {
			return err
		}
		p.popScope()
		if p.cur.Kind != scanner.RBrace {
			return p.errf("expected '}' after else body, got %s", p.cur.Kind)
		}
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectEOL()

	case p.cur.Kind == scanner.Keyword && p.cur.Text == "if":
		p.builder.MakeIfElseStatement(ifStmt, cfg.If)
		elseIf := p.builder.ActiveStatement()
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.skipEOLs(); err != nil {
			return err
		}

		cond, err := p.parseExpr(pparser.PureExpression)
		if err != nil {
			return err
		}
		elseIf.Cond = cond

		if err := p.expectBraceThenBody(); err != nil {
			return err
		}
		if err := p.openIfThen(elseIf); err != nil {
			return err
		}
		if err := p.parseBody(); err != nil {
			return err
		}
		p.popScope()
		if p.cur.Kind != scanner.RBrace {
			return p.errf("expected '}' after else-if body, got %s", p.cur.Kind)
		}
		if err := p.advance(); err != nil {
			return err
		}

		return p.parseElse(elseIf)

	default:
		return p.errf("expected 'if' or '{' after else, got %s", p.cur.Kind)
	}
}

// parseFor parses `for init?; cond; post? { body }`. The header (init, via
// a dedicated outer scope) stays visible to the body, whose own scope
// nests inside it; this is the dual-scope shape spec.md §4.E calls for.
func (p *Parser) parseFor() error {
	stmt := p.builder.MakeNextStatement(cfg.For)
	if err := p.advance(); err != nil { // consume 'for'
		return err
	}
	if err := p.skipEOLs(); err != nil {
		return err
	}

	headerScope := p.pushScope()
	p.builder.AssignStatementSymtable(headerScope)

	if p.cur.Kind != scanner.Semicolon {
		def, err := p.parseExpr(pparser.DefineRequired)
		if err != nil {
			return err
		}
		if def.Kind != ast.Define {
			return p.errf("expected a short variable declaration in for definition")
		}
		stmt.Init = def
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL after for definition")
		}
	}
	if p.cur.Kind != scanner.Semicolon {
		return p.errf("expected ';' after for definition, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.skipEOLs(); err != nil {
		return err
	}

	if p.cur.Kind != scanner.Semicolon {
		cond, err := p.parseExpr(pparser.PureExpression)
		if err != nil {
			return err
		}
		stmt.ForCond = cond
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL after for condition")
		}
	}
	if p.cur.Kind != scanner.Semicolon {
		return p.errf("expected ';' after for condition, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Kind == scanner.EOL {
		return p.errf("unexpected EOL after ';'")
	}

	if p.cur.Kind != scanner.LBrace {
		post, err := p.parseExpr(pparser.AssignRequired)
		if err != nil {
			return err
		}
		if post.Kind != ast.Assign {
			return p.errf("expected an assignment in for post-statement")
		}
		stmt.Post = post
		if p.cur.Kind == scanner.EOL {
			return p.errf("unexpected EOL after for post-statement")
		}
	}

	if err := p.expectBraceThenBody(); err != nil {
		return err
	}

	bodyScope := p.pushScope()
	p.builder.MakeForBodyStatement(stmt, cfg.Basic)
	p.builder.AssignStatementSymtable(bodyScope)
	if err := p.parseBody(); err != nil {
		return err
	}
	p.popScope()

	if p.cur.Kind != scanner.RBrace {
		return p.errf("expected '}' after for body, got %s", p.cur.Kind)
	}
	if err := p.advance(); err != nil {
		return err
	}
	p.builder.Activate(stmt)
	p.popScope() // the header scope pushed above

	return p.expectEOL()
}
