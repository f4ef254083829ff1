package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind tags the payload of an Operand.
type OperandKind int

const (
	OperandNone   OperandKind = iota // unused slot, printed "_"
	OperandName                      // a declared variable
	OperandInt                       // integer literal
	OperandFloat                     // float literal
	OperandString                    // string literal, printed with quotes
	OperandTemp                      // compiler temporary tN
	OperandFunc                      // return slot of a called function
)

// Operand is one slot of a quadruple. Text carries the name or literal
// lexeme; Temp carries the number of a temporary.
type Operand struct {
	Kind OperandKind
	Text string
	Temp int
}

func NoOperand() Operand { return Operand{Kind: OperandNone} }
func NameOperand(name string) Operand { return Operand{Kind: OperandName, Text: name} }
func IntOperand(lexeme string) Operand { return Operand{Kind: OperandInt, Text: lexeme} }
func FloatOperand(lexeme string) Operand { return Operand{Kind: OperandFloat, Text: lexeme} }
func StringOperand(s string) Operand { return Operand{Kind: OperandString, Text: s} }
func TempOperand(n int) Operand { return Operand{Kind: OperandTemp, Temp: n} }
func FuncOperand(name string) Operand { return Operand{Kind: OperandFunc, Text: name} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandNone:
		return "_"
	case OperandString:
		return `"` + o.Text + `"`
	case OperandTemp:
		return "t" + strconv.Itoa(o.Temp)
	default:
		return o.Text
	}
}

// Quad is one three-address instruction.
type Quad struct {
	Op     OpCode
	Left   Operand
	Right  Operand
	Result Operand
}

func (q Quad) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, q.Left, q.Right, q.Result)
}

// FormatQuads renders one numbered quadruple per line.
func FormatQuads(quads []Quad) string {
	var sb strings.Builder
	for i, q := range quads {
		fmt.Fprintf(&sb, "%4d  %s\n", i, q)
	}
	return sb.String()
}

// emitter owns the append-only quadruple list of one compilation.
type emitter struct {
	quads     []Quad
	sourceMap map[int]int // quad index -> source line
	temps     int         // last temporary handed out
}

func newEmitter() *emitter {
	return &emitter{sourceMap: make(map[int]int)}
}

// newTemp returns the next temporary. Temporaries are never reused.
func (e *emitter) newTemp() Operand {
	e.temps++
	return TempOperand(e.temps)
}

func (e *emitter) emit(op OpCode, left, right, result Operand, line int) {
	e.sourceMap[len(e.quads)] = line
	e.quads = append(e.quads, Quad{Op: op, Left: left, Right: right, Result: result})
}
