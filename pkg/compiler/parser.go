package compiler

import (
	"errors"
	"strconv"
	"strings"
)

// Parser reads tokens lazily from a Lexer and translates them in a single
// pass: declarations go to the Directory and expressions are evaluated on the
// expression stacks, emitting quadruples as soon as each sub-expression is
// complete. There is no syntax tree.
//
// Grammar:
//
//	program   = "programa" ID ";" [ "vars" decl { decl } ] { function } "inicio" body "fin"
//	decl      = ID { "," ID } ":" type ";"
//	type      = "entero" | "flotante"
//	function  = ( type | "nula" ) ID "(" [ param { "," param } ] ")" "{" [ "vars" decl { decl } ] body "}" ";"
//	param     = ID ":" type
//	body      = "{" { statement } "}"
//	statement = assign | if | while | print | call ";" | body
//	assign    = ID "=" expression ";"
//	print     = "escribe" "(" item { "," item } ")" ";"
//	item      = expression | STRING | "letrero"
//	if        = "si" "(" expression ")" body [ "sino" body ] ";"
//	while     = "mientras" "(" expression ")" "haz" body ";"
//	call      = ID "(" [ expression { "," expression } ] ")"
//	expression = exp [ (">" | "<" | "==" | "!=" | ">=" | "<=") exp ]
//	exp       = term { ("+" | "-") term }
//	term      = factor { ("*" | "/") factor }
//	factor    = "(" expression ")" | ("+" | "-") factor | call | ID | INT_CONST | FLOAT_CONST
type Parser struct {
	lex         *Lexer
	ahead       []Token // lookahead buffer filled from lex
	sourceLines []string

	name   string // program name
	scope  string // current function scope
	dir    *Directory
	stacks exprStacks
	out    *emitter
}

// NewParser returns a parser with a fresh compilation context for src.
func NewParser(src string) *Parser {
	return &Parser{
		lex:         NewLexer(src),
		sourceLines: strings.Split(src, "\n"),
		scope:       GlobalScope,
		dir:         NewDirectory(),
		out:         newEmitter(),
	}
}

// snippet returns the trimmed text of a 1-based source line.
func (p *Parser) snippet(line int) string {
	idx := line - 1
	if idx >= 0 && idx < len(p.sourceLines) {
		return strings.TrimSpace(p.sourceLines[idx])
	}
	return ""
}

// fail builds a positioned error at tok.
func (p *Parser) fail(tok Token, kind ErrorKind, format string, args ...any) error {
	return p.at(tok, newError(kind, format, args...))
}

// at attaches tok's line and source snippet to err if it has no position yet.
func (p *Parser) at(tok Token, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Line = tok.Line
		e.Snippet = p.snippet(tok.Line)
	}
	return err
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	for len(p.ahead) <= offset {
		p.ahead = append(p.ahead, p.lex.Next())
	}
	return p.ahead[offset]
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Type != EOF {
		p.ahead = p.ahead[1:]
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fail(tok, SyntaxError, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

// ParseProgram parses a whole program. On success the directory and
// quadruples are complete; the first semantic or syntax error stops it.
func (p *Parser) ParseProgram() error {
	if _, err := p.expect(PROGRAM); err != nil {
		return err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}
	p.name = name.Lexeme
	if _, err := p.expect(SEMICOLON); err != nil {
		return err
	}
	if err := p.parseVars(); err != nil {
		return err
	}
	for isReturnType(p.peek().Type) {
		if err := p.parseFunction(); err != nil {
			return err
		}
	}
	if _, err := p.expect(BEGIN); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	if _, err := p.expect(END); err != nil {
		return err
	}
	_, err = p.expect(EOF)
	return err
}

func isReturnType(tt TokenType) bool {
	return tt == INT || tt == FLOAT || tt == VOID
}

// parseVars handles the optional "vars" section of the current scope.
func (p *Parser) parseVars() error {
	if p.peek().Type != VARS {
		return nil
	}
	p.advance()
	if p.peek().Type != IDENTIFIER {
		tok := p.peek()
		return p.fail(tok, SyntaxError, "expected a declaration after vars, got %s (%q)", tok.Type, tok.Lexeme)
	}
	for p.peek().Type == IDENTIFIER {
		if err := p.parseDecl(); err != nil {
			return err
		}
	}
	return nil
}

// parseDecl binds a comma-separated list of names to one trailing type.
func (p *Parser) parseDecl() error {
	var names []Token
	for {
		id, err := p.expect(IDENTIFIER)
		if err != nil {
			return err
		}
		names = append(names, id)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(COLON); err != nil {
		return err
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}
	for _, id := range names {
		if err := p.dir.AddVariable(p.scope, id.Lexeme, t); err != nil {
			return p.at(id, err)
		}
	}
	_, err = p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseType() (Type, error) {
	tok := p.advance()
	switch tok.Type {
	case INT:
		return Int, nil
	case FLOAT:
		return Float, nil
	}
	return Invalid, p.fail(tok, SyntaxError, "expected a type (entero or flotante), got %s (%q)", tok.Type, tok.Lexeme)
}

// parseFunction registers the function before its parameters and body so
// both can refer to it, and returns to the global scope when done.
func (p *Parser) parseFunction() error {
	retTok := p.advance()
	ret := Void
	switch retTok.Type {
	case INT:
		ret = Int
	case FLOAT:
		ret = Float
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}
	if err := p.dir.AddFunction(name.Lexeme, ret); err != nil {
		return p.at(name, err)
	}
	p.scope = name.Lexeme
	defer func() { p.scope = GlobalScope }()

	if _, err := p.expect(LPAREN); err != nil {
		return err
	}
	if p.peek().Type != RPAREN {
		for {
			if err := p.parseParam(); err != nil {
				return err
			}
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return err
	}
	if err := p.parseVars(); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	if _, err := p.expect(RBRACE); err != nil {
		return err
	}
	_, err = p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseParam() error {
	id, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}
	if _, err := p.expect(COLON); err != nil {
		return err
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}
	if err := p.dir.AddVariable(p.scope, id.Lexeme, t); err != nil {
		return p.at(id, err)
	}
	return p.at(id, p.dir.AddParam(p.scope, t))
}

// parseBody parses "{" { statement } "}". Nested bodies share the scope.
func (p *Parser) parseBody() error {
	if _, err := p.expect(LBRACE); err != nil {
		return err
	}
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	_, err := p.expect(RBRACE)
	return err
}

// parseStatement dispatches on the current token and checks that the
// expression stacks are empty once the statement is complete.
func (p *Parser) parseStatement() error {
	tok := p.peek()
	var err error
	switch tok.Type {
	case IDENTIFIER:
		switch p.peekAt(1).Type {
		case ASSIGN:
			err = p.parseAssign()
		case LPAREN:
			err = p.parseCallStatement()
		default:
			next := p.peekAt(1)
			return p.fail(next, SyntaxError, "expected = or ( after %q, got %s (%q)", tok.Lexeme, next.Type, next.Lexeme)
		}
	case PRINT:
		err = p.parsePrint()
	case IF:
		err = p.parseIf()
	case WHILE:
		err = p.parseWhile()
	case LBRACE:
		err = p.parseBody()
	default:
		return p.fail(tok, SyntaxError, "unexpected %s (%q) at start of statement", tok.Type, tok.Lexeme)
	}
	if err != nil {
		return err
	}
	return p.at(tok, p.stacks.drained())
}

func (p *Parser) parseAssign() error {
	id := p.advance()
	target, err := p.dir.LookupVariable(p.scope, id.Lexeme)
	if err != nil {
		return p.at(id, err)
	}
	p.advance() // '='
	if err := p.parseExpression(); err != nil {
		return err
	}
	value, vt, err := p.stacks.popOperand()
	if err != nil {
		return p.at(id, err)
	}
	if _, err := Check(target, vt, OpAssign); err != nil {
		return p.at(id, err)
	}
	p.out.emit(OpAssign, value, NoOperand(), NameOperand(id.Lexeme), id.Line)
	_, err = p.expect(SEMICOLON)
	return err
}

// printItem is one argument of escribe, classified while parsing.
type printItem interface{ printItem() }

type (
	printString  struct{ text string } // string literal
	printKeyword struct{}              // the bare letrero keyword
	printExpr    struct{}              // expression; its value is on the operand stack
)

func (printString) printItem()  {}
func (printKeyword) printItem() {}
func (printExpr) printItem()    {}

func (p *Parser) parsePrint() error {
	kw := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return err
	}
	for {
		item, err := p.parsePrintItem()
		if err != nil {
			return err
		}
		var value Operand
		switch it := item.(type) {
		case printString:
			value = StringOperand(it.text)
		case printKeyword:
			value = NameOperand("letrero")
		case printExpr:
			value, _, err = p.stacks.popOperand()
			if err != nil {
				return p.at(kw, err)
			}
		}
		p.out.emit(OpPrint, NoOperand(), NoOperand(), value, kw.Line)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(RPAREN); err != nil {
		return err
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) parsePrintItem() (printItem, error) {
	switch tok := p.peek(); tok.Type {
	case STRING:
		p.advance()
		return printString{text: tok.Lexeme}, nil
	case SIGN:
		p.advance()
		return printKeyword{}, nil
	}
	if err := p.parseExpression(); err != nil {
		return nil, err
	}
	return printExpr{}, nil
}

// parseGuard parses "(" expression ")" and consumes the boolean result.
func (p *Parser) parseGuard(kw Token) error {
	if _, err := p.expect(LPAREN); err != nil {
		return err
	}
	if err := p.parseExpression(); err != nil {
		return err
	}
	_, t, err := p.stacks.popOperand()
	if err != nil {
		return p.at(kw, err)
	}
	if t != Bool {
		return p.fail(kw, NonBooleanGuard, "%s condition has type %s, want %s", kw.Lexeme, t, Bool)
	}
	_, err = p.expect(RPAREN)
	return err
}

func (p *Parser) parseIf() error {
	kw := p.advance()
	if err := p.parseGuard(kw); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	if p.peek().Type == ELSE {
		p.advance()
		if err := p.parseBody(); err != nil {
			return err
		}
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseWhile() error {
	kw := p.advance()
	if err := p.parseGuard(kw); err != nil {
		return err
	}
	if _, err := p.expect(DO); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseCallStatement() error {
	if _, err := p.parseCall(); err != nil {
		return err
	}
	_, err := p.expect(SEMICOLON)
	return err
}

// parseCall checks a call's arguments against the callee's parameters and
// returns the callee. Arguments are consumed; nothing is left on the stacks.
// Each argument sits behind its own marker so pending operators of the
// enclosing expression are never reduced into it.
func (p *Parser) parseCall() (*Function, error) {
	id := p.advance()
	fn, err := p.dir.LookupFunction(id.Lexeme)
	if err != nil {
		return nil, p.at(id, err)
	}
	p.advance() // '('
	var args []Type
	if p.peek().Type != RPAREN {
		for {
			p.stacks.pushOperator(OpMark)
			if err := p.parseExpression(); err != nil {
				return nil, err
			}
			if err := p.stacks.popMark(); err != nil {
				return nil, p.at(id, err)
			}
			_, t, err := p.stacks.popOperand()
			if err != nil {
				return nil, p.at(id, err)
			}
			args = append(args, t)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if len(args) != len(fn.Params) {
		return nil, p.fail(id, ArgumentMismatch, "%s: want %d args, got %d", fn.Name, len(fn.Params), len(args))
	}
	for i, t := range args {
		if t != fn.Params[i] {
			return nil, p.fail(id, ArgumentMismatch, "%s: argument %d has type %s, want %s", fn.Name, i+1, t, fn.Params[i])
		}
	}
	return fn, nil
}

// parseExpression handles an optional, non-associative relational operator.
func (p *Parser) parseExpression() error {
	if err := p.parseExp(); err != nil {
		return err
	}
	tok := p.peek()
	op, ok := binaryOps[tok.Type]
	if !ok || !op.isRelational() {
		return nil
	}
	p.advance()
	p.stacks.pushOperator(op)
	if err := p.parseExp(); err != nil {
		return err
	}
	return p.at(tok, p.stacks.reduceIf(p.out, tok.Line, OpGT, OpLT, OpEQ, OpNE, OpGE, OpLE))
}

// parseExp handles + and -, reducing after each right operand.
func (p *Parser) parseExp() error {
	if err := p.parseTerm(); err != nil {
		return err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		tok := p.advance()
		p.stacks.pushOperator(binaryOps[tok.Type])
		if err := p.parseTerm(); err != nil {
			return err
		}
		if err := p.stacks.reduceIf(p.out, tok.Line, OpAdd, OpSub); err != nil {
			return p.at(tok, err)
		}
	}
	return nil
}

// parseTerm handles * and /, reducing after each right operand.
func (p *Parser) parseTerm() error {
	if err := p.parseFactor(); err != nil {
		return err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		tok := p.advance()
		p.stacks.pushOperator(binaryOps[tok.Type])
		if err := p.parseFactor(); err != nil {
			return err
		}
		if err := p.stacks.reduceIf(p.out, tok.Line, OpMul, OpDiv); err != nil {
			return p.at(tok, err)
		}
	}
	return nil
}

// parseFactor pushes exactly one operand.
func (p *Parser) parseFactor() error {
	tok := p.peek()
	switch tok.Type {
	case LPAREN:
		p.advance()
		p.stacks.pushOperator(OpMark)
		if err := p.parseExpression(); err != nil {
			return err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return err
		}
		return p.at(tok, p.stacks.popMark())

	case PLUS, MINUS:
		p.advance()
		return p.parseUnary(tok)

	case IDENTIFIER:
		if p.peekAt(1).Type == LPAREN {
			fn, err := p.parseCall()
			if err != nil {
				return err
			}
			if fn.ReturnType == Void {
				return p.fail(tok, VoidInExpression, "%s returns %s and cannot be used as a value", fn.Name, Void)
			}
			p.stacks.pushOperand(FuncOperand(fn.Name), fn.ReturnType)
			return nil
		}
		p.advance()
		t, err := p.dir.LookupVariable(p.scope, tok.Lexeme)
		if err != nil {
			return p.at(tok, err)
		}
		p.stacks.pushOperand(NameOperand(tok.Lexeme), t)
		return nil

	case INT_CONST:
		p.advance()
		if _, err := strconv.ParseInt(tok.Lexeme, 10, 64); err != nil {
			return p.fail(tok, SyntaxError, "integer literal %s out of range", tok.Lexeme)
		}
		p.stacks.pushOperand(IntOperand(tok.Lexeme), Int)
		return nil

	case FLOAT_CONST:
		p.advance()
		if _, err := strconv.ParseFloat(tok.Lexeme, 64); err != nil {
			return p.fail(tok, SyntaxError, "float literal %s out of range", tok.Lexeme)
		}
		p.stacks.pushOperand(FloatOperand(tok.Lexeme), Float)
		return nil
	}
	return p.fail(tok, SyntaxError, "expected an expression, got %s (%q)", tok.Type, tok.Lexeme)
}

// parseUnary applies a sign to the following factor. Minus emits NEG into a
// temporary; plus only checks that the operand is numeric.
func (p *Parser) parseUnary(sign Token) error {
	if err := p.parseFactor(); err != nil {
		return err
	}
	value, t, err := p.stacks.popOperand()
	if err != nil {
		return p.at(sign, err)
	}
	if t != Int && t != Float {
		return p.fail(sign, TypeMismatch, "cannot apply unary %s to %s", sign.Lexeme, t)
	}
	if sign.Type == PLUS {
		p.stacks.pushOperand(value, t)
		return nil
	}
	tmp := p.out.newTemp()
	p.out.emit(OpNeg, value, NoOperand(), tmp, sign.Line)
	p.stacks.pushOperand(tmp, t)
	return nil
}
