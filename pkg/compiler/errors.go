package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	LexicalError ErrorKind = iota // illegal character; scanning continues
	SyntaxError
	DuplicateDeclaration
	UndeclaredVariable
	UndeclaredFunction
	TypeMismatch
	NonBooleanGuard
	VoidInExpression
	ArgumentMismatch
	Internal // compiler bug, e.g. stacks not drained at a statement boundary
)

var (
	ErrLexical              = errors.New("lexical error")
	ErrSyntax               = errors.New("syntax error")
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUndeclaredVariable   = errors.New("undeclared variable")
	ErrUndeclaredFunction   = errors.New("undeclared function")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrNonBooleanGuard      = errors.New("non-boolean guard")
	ErrVoidInExpression     = errors.New("void function used as a value")
	ErrArgumentMismatch     = errors.New("argument mismatch")
	ErrInternal             = errors.New("internal compiler error")
)

// sentinels is indexed by ErrorKind.
var sentinels = [...]error{
	LexicalError:         ErrLexical,
	SyntaxError:          ErrSyntax,
	DuplicateDeclaration: ErrDuplicateDeclaration,
	UndeclaredVariable:   ErrUndeclaredVariable,
	UndeclaredFunction:   ErrUndeclaredFunction,
	TypeMismatch:         ErrTypeMismatch,
	NonBooleanGuard:      ErrNonBooleanGuard,
	VoidInExpression:     ErrVoidInExpression,
	ArgumentMismatch:     ErrArgumentMismatch,
	Internal:             ErrInternal,
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(sentinels) {
		return sentinels[k].Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a diagnostic produced by the front end. It unwraps to the sentinel
// of its Kind, so callers can test it with errors.Is.
type Error struct {
	Kind    ErrorKind
	Line    int    // 1-based; 0 when the error is not tied to a source position
	Msg     string // human-readable description of the violated rule
	Snippet string // trimmed text of the offending source line, if known
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	if e.Snippet == "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Msg)
	}
	return fmt.Sprintf("line %d: %s: %s\n  |> %s", e.Line, e.Kind, e.Msg, e.Snippet)
}

func (e *Error) Unwrap() error {
	if int(e.Kind) >= 0 && int(e.Kind) < len(sentinels) {
		return sentinels[e.Kind]
	}
	return nil
}

// newError builds a position-less error; the parser attaches the line later.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
