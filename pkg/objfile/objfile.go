// Package objfile reads and writes the .pq object format: one directive per
// line holding a compiled program's directory and quadruples.
//
//	; patito object
//	.PROGRAM p
//	.FUNC global nula
//	.VAR global a entero
//	.FUNC suma entero
//	.PARAM suma entero
//	.VAR suma x entero
//	.QUAD * int:2 int:5 tmp:1 ; line 3
//
// Operands are "-" (none), id:NAME, int:LEXEME, flt:LEXEME, str:"QUOTED",
// tmp:N or fn:NAME. Text after ';' is a comment, except that a trailing
// "; line N" on a .QUAD records its source line.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"patito/pkg/compiler"
)

const header = "; patito object"

// ErrMalformed is returned for any line Read cannot decode.
var ErrMalformed = errors.New("malformed object file")

// Write encodes p. Functions and variables are written in declaration order,
// so the output is deterministic.
func Write(w io.Writer, p *compiler.Program) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintf(bw, ".PROGRAM %s\n", p.Name)
	for _, f := range p.Dir.Functions() {
		fmt.Fprintf(bw, ".FUNC %s %s\n", f.Name, f.ReturnType)
		for _, t := range f.Params {
			fmt.Fprintf(bw, ".PARAM %s %s\n", f.Name, t)
		}
		for _, v := range f.Vars() {
			fmt.Fprintf(bw, ".VAR %s %s %s\n", f.Name, v.Name, v.Type)
		}
	}
	for i, q := range p.Quads {
		fmt.Fprintf(bw, ".QUAD %s %s %s %s", q.Op, encodeOperand(q.Left), encodeOperand(q.Right), encodeOperand(q.Result))
		if line, ok := p.SourceMap[i]; ok {
			fmt.Fprintf(bw, " ; line %d", line)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func encodeOperand(o compiler.Operand) string {
	switch o.Kind {
	case compiler.OperandName:
		return "id:" + o.Text
	case compiler.OperandInt:
		return "int:" + o.Text
	case compiler.OperandFloat:
		return "flt:" + o.Text
	case compiler.OperandString:
		return "str:" + strconv.Quote(o.Text)
	case compiler.OperandTemp:
		return "tmp:" + strconv.Itoa(o.Temp)
	case compiler.OperandFunc:
		return "fn:" + o.Text
	}
	return "-"
}

// reader holds the state of one decoding pass.
type reader struct {
	prog *compiler.Program
}

// Read decodes an object file. The directory is rebuilt through the same
// Directory calls the parser makes, so a file declaring a name twice is
// rejected just like the source would have been.
func Read(r io.Reader) (*compiler.Program, error) {
	rd := &reader{prog: &compiler.Program{
		Dir:       compiler.NewDirectory(),
		SourceMap: make(map[int]int),
	}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	sawProgram := false
	for sc.Scan() {
		lineNo++
		fields, comment, err := splitLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		if len(fields) == 0 {
			continue
		}
		if fields[0] == ".PROGRAM" {
			if sawProgram {
				return nil, fmt.Errorf("%w: line %d: duplicate .PROGRAM", ErrMalformed, lineNo)
			}
			sawProgram = true
		}
		if err := rd.directive(fields, comment); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawProgram {
		return nil, fmt.Errorf("%w: missing .PROGRAM", ErrMalformed)
	}
	return rd.prog, nil
}

func (rd *reader) directive(fields []string, comment string) error {
	args := fields[1:]
	switch fields[0] {
	case ".PROGRAM":
		if len(args) != 1 || !isIdentifier(args[0]) {
			return errors.New(".PROGRAM expects one name")
		}
		rd.prog.Name = args[0]

	case ".FUNC":
		if len(args) != 2 {
			return errors.New(".FUNC expects a name and a return type")
		}
		ret, err := parseType(args[1])
		if err != nil {
			return err
		}
		if args[0] == compiler.GlobalScope {
			if ret != compiler.Void {
				return fmt.Errorf("global scope must return %s", compiler.Void)
			}
			return nil
		}
		if !isIdentifier(args[0]) {
			return fmt.Errorf("invalid function name %q", args[0])
		}
		return rd.prog.Dir.AddFunction(args[0], ret)

	case ".PARAM":
		if len(args) != 2 {
			return errors.New(".PARAM expects a function and a type")
		}
		t, err := parseType(args[1])
		if err != nil {
			return err
		}
		return rd.prog.Dir.AddParam(args[0], t)

	case ".VAR":
		if len(args) != 3 {
			return errors.New(".VAR expects a scope, a name and a type")
		}
		if !isIdentifier(args[1]) {
			return fmt.Errorf("invalid variable name %q", args[1])
		}
		t, err := parseType(args[2])
		if err != nil {
			return err
		}
		return rd.prog.Dir.AddVariable(args[0], args[1], t)

	case ".QUAD":
		if len(args) != 4 {
			return errors.New(".QUAD expects an operator and three operands")
		}
		op, ok := compiler.ParseOpCode(args[0])
		if !ok {
			return fmt.Errorf("unknown operator %q", args[0])
		}
		var ops [3]compiler.Operand
		for i, a := range args[1:] {
			o, err := rd.operand(a)
			if err != nil {
				return err
			}
			ops[i] = o
		}
		idx := len(rd.prog.Quads)
		rd.prog.Quads = append(rd.prog.Quads, compiler.Quad{Op: op, Left: ops[0], Right: ops[1], Result: ops[2]})
		if rest, ok := strings.CutPrefix(strings.TrimSpace(comment), "line "); ok {
			line, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return fmt.Errorf("invalid source line %q", rest)
			}
			rd.prog.SourceMap[idx] = line
		}

	default:
		return fmt.Errorf("unknown directive %q", fields[0])
	}
	return nil
}

// operand decodes one operand and keeps Program.Temps at the highest
// temporary seen.
func (rd *reader) operand(s string) (compiler.Operand, error) {
	if s == "-" {
		return compiler.NoOperand(), nil
	}
	tag, val, ok := strings.Cut(s, ":")
	if !ok || val == "" {
		return compiler.Operand{}, fmt.Errorf("invalid operand %q", s)
	}
	switch tag {
	case "id":
		if !isIdentifier(val) {
			return compiler.Operand{}, fmt.Errorf("invalid name %q", val)
		}
		return compiler.NameOperand(val), nil
	case "fn":
		if !isIdentifier(val) {
			return compiler.Operand{}, fmt.Errorf("invalid function %q", val)
		}
		return compiler.FuncOperand(val), nil
	case "int":
		if _, err := strconv.ParseInt(val, 10, 64); err != nil {
			return compiler.Operand{}, fmt.Errorf("invalid integer %q", val)
		}
		return compiler.IntOperand(val), nil
	case "flt":
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return compiler.Operand{}, fmt.Errorf("invalid float %q", val)
		}
		return compiler.FloatOperand(val), nil
	case "str":
		text, err := strconv.Unquote(val)
		if err != nil {
			return compiler.Operand{}, fmt.Errorf("invalid string %s", val)
		}
		return compiler.StringOperand(text), nil
	case "tmp":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return compiler.Operand{}, fmt.Errorf("invalid temporary %q", val)
		}
		if n > rd.prog.Temps {
			rd.prog.Temps = n
		}
		return compiler.TempOperand(n), nil
	}
	return compiler.Operand{}, fmt.Errorf("unknown operand tag %q", tag)
}

func parseType(name string) (compiler.Type, error) {
	t, ok := compiler.ParseType(name)
	if !ok || t == compiler.Invalid {
		return compiler.Invalid, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// splitLine breaks a line into whitespace-separated fields and the comment
// after the first ';' outside a quoted string. Quoted strings stay inside
// their field.
func splitLine(raw string) (fields []string, comment string, err error) {
	var cur strings.Builder
	inQuote, escaped := false, false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for i, r := range raw {
		switch {
		case inQuote:
			cur.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inQuote = false
			}
		case r == '"':
			inQuote = true
			cur.WriteRune(r)
		case r == ';':
			flush()
			return fields, raw[i+1:], nil
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, "", errors.New("unterminated string")
	}
	flush()
	return fields, "", nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
