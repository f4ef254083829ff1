package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER  // variable / function name
	INT_CONST   // decimal integer literal
	FLOAT_CONST // decimal literal with a fractional part, e.g. 3.14
	STRING      // string literal "..."

	// Keywords
	PROGRAM // "programa"
	BEGIN   // "inicio"
	END     // "fin"
	VARS    // "vars"
	INT     // "entero"
	FLOAT   // "flotante"
	PRINT   // "escribe"
	SIGN    // "letrero"
	IF      // "si"
	ELSE    // "sino"
	WHILE   // "mientras"
	DO      // "haz"
	VOID    // "nula"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Assignment / comparison  (order matters: two-rune forms are tried first)
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INT_CONST:   "INT_CONST",
	FLOAT_CONST: "FLOAT_CONST",
	STRING:      "STRING",
	PROGRAM:     "PROGRAM",
	BEGIN:       "BEGIN",
	END:         "END",
	VARS:        "VARS",
	INT:         "INT",
	FLOAT:       "FLOAT",
	PRINT:       "PRINT",
	SIGN:        "SIGN",
	IF:          "IF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	DO:          "DO",
	VOID:        "VOID",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	COLON:       "COLON",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	GREATER:     "GREATER",
	LESS_EQ:     "LESS_EQ",
	GREATER_EQ:  "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched (string literals without quotes)
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-11s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
