package compiler

import (
	"errors"
	"iter"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"programa": PROGRAM,
	"inicio":   BEGIN,
	"fin":      END,
	"vars":     VARS,
	"entero":   INT,
	"flotante": FLOAT,
	"escribe":  PRINT,
	"letrero":  SIGN,
	"si":       IF,
	"sino":     ELSE,
	"mientras": WHILE,
	"haz":      DO,
	"nula":     VOID,
}

// Lexer holds all mutable state for a single scanning pass over src.
// Illegal characters do not stop the scan: each one is recorded as a
// LexicalError, skipped, and scanning resumes with the next rune.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	errs []*Error
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// Reset rewinds the lexer to the start of its input and forgets any
// lexical errors recorded so far.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.errs = nil
}

// Errors returns the lexical errors met so far, in source order.
func (l *Lexer) Errors() []*Error {
	return l.errs
}

// All returns the token sequence of the whole input, ending with exactly one
// EOF token. Every range over the sequence starts a fresh scan.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l.Reset()
		for {
			tok := l.Next()
			if !yield(tok) || tok.Type == EOF {
				return
			}
		}
	}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed; the newline is left in place.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// illegal records a LexicalError for r, which has already been consumed.
func (l *Lexer) illegal(r rune, line int) {
	l.errs = append(l.errs, &Error{
		Kind: LexicalError,
		Line: line,
		Msg:  "illegal character " + quoteRune(r),
	})
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanNumber collects an integer literal, or a float literal when the digits
// are followed by '.' and at least one more digit. "3." lexes as 3 followed by
// an illegal '.'.
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
		return Token{Type: FLOAT_CONST, Lexeme: string(l.src[start:l.pos]), Line: line}
	}
	return Token{Type: INT_CONST, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// scanString collects a string literal "..." that may not span lines.
// It reports false, consuming nothing, when the closing quote is missing.
func (l *Lexer) scanString() (Token, bool) {
	end := l.pos + 1
	for end < len(l.src) && l.src[end] != '"' && l.src[end] != '\n' {
		end++
	}
	if end >= len(l.src) || l.src[end] != '"' {
		return Token{}, false
	}
	tok := Token{Type: STRING, Lexeme: string(l.src[l.pos+1 : end]), Line: l.line}
	l.pos = end + 1
	return tok, true
}

// Next skips whitespace, comments and illegal characters and returns the next
// Token. Once the input is exhausted it keeps returning EOF.
func (l *Lexer) Next() Token {
	for {
		tok, ok := l.nextToken()
		if ok {
			return tok
		}
	}
}

// nextToken scans one token. It reports false after recording an illegal
// character, in which case the caller simply asks again.
func (l *Lexer) nextToken() (Token, bool) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, true
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if isIdentStart(ch) {
		return l.scanIdent(), true
	}
	if isDigit(ch) {
		return l.scanNumber(), true
	}
	if ch == '"' {
		if tok, ok := l.scanString(); ok {
			return tok, true
		}
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line}, true
	case '}':
		return Token{RBRACE, "}", line}, true
	case '(':
		return Token{LPAREN, "(", line}, true
	case ')':
		return Token{RPAREN, ")", line}, true
	case ';':
		return Token{SEMICOLON, ";", line}, true
	case ',':
		return Token{COMMA, ",", line}, true
	case ':':
		return Token{COLON, ":", line}, true
	case '+':
		return Token{PLUS, "+", line}, true
	case '-':
		return Token{MINUS, "-", line}, true
	case '*':
		return Token{STAR, "*", line}, true
	case '/':
		return Token{SLASH, "/", line}, true
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line}, true
		}
		return Token{GREATER, ">", line}, true
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line}, true
		}
		return Token{LESS, "<", line}, true
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", line}, true
		}
		return Token{ASSIGN, "=", line}, true
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line}, true
		}
	}

	l.illegal(ch, line)
	return Token{}, false
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Illegal characters are skipped; if any were found the returned error joins
// one LexicalError per character, and the token slice is still complete.
func Lex(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for tok := range l.All() {
		tokens = append(tokens, tok)
	}
	return tokens, joinErrors(l.Errors())
}

// Tokens returns the lazy token sequence of src. Lexical errors are dropped;
// use a Lexer directly to inspect them.
func Tokens(src string) iter.Seq[Token] {
	return NewLexer(src).All()
}

func joinErrors(errs []*Error) error {
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return errors.Join(all...)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
