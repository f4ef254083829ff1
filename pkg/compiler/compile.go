package compiler

import "errors"

// Program is the result of a successful compilation: the finalized directory
// and the quadruple list, which together are everything a later stage needs.
type Program struct {
	Name      string
	Dir       *Directory
	Quads     []Quad
	SourceMap map[int]int // quad index -> source line
	Temps     int         // number of temporaries used, t1..tTemps
}

// Compile translates one Patito program. Each call uses its own compilation
// context, so separate programs may be compiled concurrently.
//
// A syntax or semantic error stops compilation at once. Illegal characters
// are skipped by the scanner and only reported at the end; if any were met
// the program is rejected and every lexical error is returned, joined ahead
// of the fatal error if there was one.
func Compile(src string) (*Program, error) {
	p := NewParser(src)
	err := p.ParseProgram()

	var errs []error
	for _, e := range p.lex.Errors() {
		if e.Snippet == "" {
			e.Snippet = p.snippet(e.Line)
		}
		errs = append(errs, e)
	}
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p.Program(), nil
}

// Program returns the parser's output so far.
func (p *Parser) Program() *Program {
	return &Program{
		Name:      p.name,
		Dir:       p.dir,
		Quads:     p.out.quads,
		SourceMap: p.out.sourceMap,
		Temps:     p.out.temps,
	}
}
