package compiler

import "fmt"

// Type is a Patito data type as seen by the semantic checks.
type Type int

const (
	Invalid Type = iota // result of an illegal combination
	Int
	Float
	Bool   // only produced by relational operators
	Void   // return type of procedures and of the global scope
	String // string literals and the letrero keyword inside escribe
)

var typeNames = [...]string{
	Invalid: "error",
	Int:     "entero",
	Float:   "flotante",
	Bool:    "booleano",
	Void:    "nula",
	String:  "letrero",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a type name as written in source or in a dump back to its Type.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return Invalid, false
}

// OpCode is the operator of a quadruple and of the operator stack.
type OpCode int

const (
	OpAdd OpCode = iota
	OpSub
	OpMul
	OpDiv
	OpGT
	OpLT
	OpEQ
	OpNE
	OpGE
	OpLE
	OpAssign
	OpNeg
	OpPrint
	OpMark // fake bottom pushed for "(" and call arguments; never emitted
)

var opNames = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpGT:     ">",
	OpLT:     "<",
	OpEQ:     "==",
	OpNE:     "!=",
	OpGE:     ">=",
	OpLE:     "<=",
	OpAssign: "=",
	OpNeg:    "NEG",
	OpPrint:  "PRINT",
	OpMark:   "(",
}

func (op OpCode) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", int(op))
}

// ParseOpCode maps a quadruple operator symbol back to its OpCode.
// The parenthesis marker is not a quadruple operator and is never matched.
func ParseOpCode(symbol string) (OpCode, bool) {
	for i, n := range opNames {
		if OpCode(i) != OpMark && n == symbol {
			return OpCode(i), true
		}
	}
	return 0, false
}

func (op OpCode) isArithmetic() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

func (op OpCode) isRelational() bool {
	return op >= OpGT && op <= OpLE
}

// binaryOps maps operator tokens to the OpCode they push.
var binaryOps = map[TokenType]OpCode{
	PLUS:       OpAdd,
	MINUS:      OpSub,
	STAR:       OpMul,
	SLASH:      OpDiv,
	GREATER:    OpGT,
	LESS:       OpLT,
	EQUALS:     OpEQ,
	NOT_EQ:     OpNE,
	GREATER_EQ: OpGE,
	LESS_EQ:    OpLE,
}
