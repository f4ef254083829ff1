package compiler

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// quadStrings renders quads the way the tests spell them.
func quadStrings(quads []Quad) []string {
	out := make([]string, len(quads))
	for i, q := range quads {
		out[i] = q.String()
	}
	return out
}

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

func TestCompileQuads(t *testing.T) {
	tests := []struct {
		name  string
		input string
		quads []string
	}{
		{
			name:  "Precedence",
			input: `programa p; vars a:entero; b:flotante; inicio { a = 3 + 2 * 5; escribe(a); } fin`,
			quads: []string{
				"(*, 2, 5, t1)",
				"(+, 3, t1, t2)",
				"(=, t2, _, a)",
				"(PRINT, _, _, a)",
			},
		},
		{
			name:  "Left associative",
			input: `programa p; vars a:entero; inicio { a = 10 - 4 - 3; a = 8 / 2 * 2; } fin`,
			quads: []string{
				"(-, 10, 4, t1)",
				"(-, t1, 3, t2)",
				"(=, t2, _, a)",
				"(/, 8, 2, t3)",
				"(*, t3, 2, t4)",
				"(=, t4, _, a)",
			},
		},
		{
			name:  "Parentheses",
			input: `programa p; vars a, b:entero; inicio { a = (b + 1) * 2; a = b * (2 + (3 - 1)); } fin`,
			quads: []string{
				"(+, b, 1, t1)",
				"(*, t1, 2, t2)",
				"(=, t2, _, a)",
				"(-, 3, 1, t3)",
				"(+, 2, t3, t4)",
				"(*, b, t4, t5)",
				"(=, t5, _, a)",
			},
		},
		{
			name:  "Int widened into float",
			input: `programa p; vars a:entero; f:flotante; inicio { f = a; f = a + 1.5; } fin`,
			quads: []string{
				"(=, a, _, f)",
				"(+, a, 1.5, t1)",
				"(=, t1, _, f)",
			},
		},
		{
			name:  "Print items",
			input: `programa p; vars x:flotante; inicio { escribe("x vale", x * 2, letrero); } fin`,
			quads: []string{
				`(PRINT, _, _, "x vale")`,
				"(*, x, 2, t1)",
				"(PRINT, _, _, t1)",
				"(PRINT, _, _, letrero)",
			},
		},
		{
			name:  "Print relational",
			input: `programa p; vars a:entero; inicio { escribe(a > 1); } fin`,
			quads: []string{
				"(>, a, 1, t1)",
				"(PRINT, _, _, t1)",
			},
		},
		{
			name: "Guards consume their value",
			input: `programa p; vars i:entero;
inicio {
	mientras (i < 10) haz { i = i + 1; };
	si (i == 10) { escribe(i); } sino { escribe("no"); };
} fin`,
			quads: []string{
				"(<, i, 10, t1)",
				"(+, i, 1, t2)",
				"(=, t2, _, i)",
				"(==, i, 10, t3)",
				"(PRINT, _, _, i)",
				`(PRINT, _, _, "no")`,
			},
		},
		{
			name:  "Unary signs",
			input: `programa p; vars a:entero; f:flotante; inicio { a = -a * +2; f = -(1.5 + a); } fin`,
			quads: []string{
				"(NEG, a, _, t1)",
				"(*, t1, 2, t2)",
				"(=, t2, _, a)",
				"(+, 1.5, a, t3)",
				"(NEG, t3, _, t4)",
				"(=, t4, _, f)",
			},
		},
		{
			name: "Function calls",
			input: `programa p;
vars r:entero;
entero doble(n:entero) { vars k:entero; { k = n * 2; } };
nula saluda() { { escribe("hola"); } };
inicio {
	r = 1 + doble(r + 1) * 3;
	saluda();
	doble(4);
} fin`,
			quads: []string{
				"(*, n, 2, t1)",
				"(=, t1, _, k)",
				`(PRINT, _, _, "hola")`,
				"(+, r, 1, t2)",
				"(*, doble, 3, t3)",
				"(+, 1, t3, t4)",
				"(=, t4, _, r)",
			},
		},
		{
			name:  "Nested blocks share scope",
			input: `programa p; vars a:entero; inicio { { { a = 1; } } a = 2; } fin`,
			quads: []string{
				"(=, 1, _, a)",
				"(=, 2, _, a)",
			},
		},
		{
			name:  "Comments",
			input: "programa p; // encabezado\nvars a:entero;\ninicio { a = 1; // fin de linea\n} fin",
			quads: []string{
				"(=, 1, _, a)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustCompile(t, tt.input)
			if got := quadStrings(prog.Quads); !reflect.DeepEqual(got, tt.quads) {
				t.Errorf("quads mismatch\nGot:\n  %s\nWant:\n  %s",
					strings.Join(got, "\n  "), strings.Join(tt.quads, "\n  "))
			}
		})
	}
}

func TestCompileDirectory(t *testing.T) {
	prog := mustCompile(t, `programa demo;
vars a, b:entero; c:flotante;
flotante prom(x:entero, y:flotante) { vars a:flotante; { a = x + y; } };
inicio { c = prom(a, c); } fin`)

	if prog.Name != "demo" {
		t.Errorf("Name = %q, want demo", prog.Name)
	}
	if typ, err := prog.Dir.LookupVariable(GlobalScope, "a"); err != nil || typ != Int {
		t.Errorf("global a = %v, %v", typ, err)
	}
	if typ, err := prog.Dir.LookupVariable("prom", "a"); err != nil || typ != Float {
		t.Errorf("prom a = %v, %v", typ, err)
	}
	if typ, err := prog.Dir.LookupVariable("prom", "b"); err != nil || typ != Int {
		t.Errorf("prom sees global b = %v, %v", typ, err)
	}
	fn, err := prog.Dir.LookupFunction("prom")
	if err != nil {
		t.Fatal(err)
	}
	if fn.ReturnType != Float || !reflect.DeepEqual(fn.Params, []Type{Int, Float}) {
		t.Errorf("prom = %v %v", fn.ReturnType, fn.Params)
	}
	wantVars := []Variable{{"x", Int}, {"y", Float}, {"a", Float}}
	if !reflect.DeepEqual(fn.Vars(), wantVars) {
		t.Errorf("prom vars = %v, want %v", fn.Vars(), wantVars)
	}
	if prog.Temps != 1 {
		t.Errorf("Temps = %d, want 1", prog.Temps)
	}
	last := len(prog.Quads) - 1
	if got := prog.Quads[last].String(); got != "(=, prom, _, c)" {
		t.Errorf("last quad = %s", got)
	}
	if prog.SourceMap[last] != 4 || prog.SourceMap[0] != 3 {
		t.Errorf("SourceMap = %v", prog.SourceMap)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    error
		line    int
		snippet string
	}{
		{
			name:  "Duplicate variable",
			input: "programa p;\nvars x:entero;\nx:flotante;\ninicio { } fin",
			want:  ErrDuplicateDeclaration,
			line:  3,
		},
		{
			name:  "Duplicate function",
			input: "programa p;\nnula f() { { } };\nnula f() { { } };\ninicio { } fin",
			want:  ErrDuplicateDeclaration,
			line:  3,
		},
		{
			name:  "Function named global",
			input: "programa p;\nnula global() { { } };\ninicio { } fin",
			want:  ErrDuplicateDeclaration,
			line:  2,
		},
		{
			name:  "Param clashes with local",
			input: "programa p;\nnula f(a:entero) { vars a:entero; { } };\ninicio { } fin",
			want:  ErrDuplicateDeclaration,
			line:  2,
		},
		{
			name:    "Undeclared variable",
			input:   "programa p;\ninicio {\n  y = 1;\n} fin",
			want:    ErrUndeclaredVariable,
			line:    3,
			snippet: "y = 1;",
		},
		{
			name:  "Undeclared in expression",
			input: "programa p; vars a:entero;\ninicio {\n  a = a + z;\n} fin",
			want:  ErrUndeclaredVariable,
			line:  3,
		},
		{
			name:  "Local of another function",
			input: "programa p;\nnula f() { vars k:entero; { } };\nnula g() { { k = 1; } };\ninicio { } fin",
			want:  ErrUndeclaredVariable,
			line:  3,
		},
		{
			name:  "Float into int",
			input: "programa p; vars x:entero;\ninicio { x = 2.5; } fin",
			want:  ErrTypeMismatch,
			line:  2,
		},
		{
			name:  "Relational in arithmetic",
			input: "programa p; vars x:entero;\ninicio { x = (x > 1) + 1; } fin",
			want:  ErrTypeMismatch,
			line:  2,
		},
		{
			name:  "Assign relational",
			input: "programa p; vars x:entero;\ninicio { x = x > 1; } fin",
			want:  ErrTypeMismatch,
			line:  2,
		},
		{
			name:  "Non boolean if",
			input: "programa p; vars x:entero;\ninicio {\n si (x + 1) { }; } fin",
			want:  ErrNonBooleanGuard,
			line:  3,
		},
		{
			name:  "Non boolean while",
			input: "programa p; vars x:entero;\ninicio { mientras (x) haz { }; } fin",
			want:  ErrNonBooleanGuard,
			line:  2,
		},
		{
			name:  "Undeclared function",
			input: "programa p;\ninicio {\n  nada();\n} fin",
			want:  ErrUndeclaredFunction,
			line:  3,
		},
		{
			name:  "Void call in expression",
			input: "programa p; vars x:entero;\nnula f() { { } };\ninicio {\n  x = f() + 1;\n} fin",
			want:  ErrVoidInExpression,
			line:  4,
		},
		{
			name:  "Too few arguments",
			input: "programa p;\nnula f(a:entero, b:entero) { { } };\ninicio { f(1); } fin",
			want:  ErrArgumentMismatch,
			line:  3,
		},
		{
			name:  "Too many arguments",
			input: "programa p;\nnula f() { { } };\ninicio { f(1); } fin",
			want:  ErrArgumentMismatch,
			line:  3,
		},
		{
			name:  "Argument type",
			input: "programa p;\nnula f(a:entero) { { } };\ninicio { f(1.0); } fin",
			want:  ErrArgumentMismatch,
			line:  3,
		},
		{
			name:  "Unary on relational",
			input: "programa p; vars x:entero;\ninicio { escribe(-(x > 1)); } fin",
			want:  ErrTypeMismatch,
			line:  2,
		},
		{
			name:  "Missing semicolon",
			input: "programa p; vars x:entero;\ninicio {\n  x = 1\n} fin",
			want:  ErrSyntax,
			line:  4,
		},
		{
			name:  "Chained relational",
			input: "programa p; vars x:entero;\ninicio { escribe(1 < x < 3); } fin",
			want:  ErrSyntax,
			line:  2,
		},
		{
			name:  "Empty vars section",
			input: "programa p; vars inicio { } fin",
			want:  ErrSyntax,
			line:  1,
		},
		{
			name:  "Trailing tokens",
			input: "programa p; inicio { } fin fin",
			want:  ErrSyntax,
			line:  1,
		},
		{
			name:  "Integer literal too large",
			input: "programa p; vars x:entero;\ninicio { x = 99999999999999999999; } fin",
			want:  ErrSyntax,
			line:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile error = %v, want %v", err, tt.want)
			}
			if prog != nil {
				t.Errorf("Compile returned a program alongside %v", err)
			}
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not a *Error", err)
			}
			if ce.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", ce.Line, tt.line, err)
			}
			if tt.snippet != "" && ce.Snippet != tt.snippet {
				t.Errorf("snippet = %q, want %q", ce.Snippet, tt.snippet)
			}
		})
	}
}

func TestCompileLexicalErrors(t *testing.T) {
	t.Run("Collected after a clean parse", func(t *testing.T) {
		prog, err := Compile("programa p; vars a:entero;\ninicio { a = 1 @ ; a = 2 # ; } fin")
		if prog != nil {
			t.Fatal("lexical errors must reject the program")
		}
		if !errors.Is(err, ErrLexical) {
			t.Fatalf("error = %v, want ErrLexical", err)
		}
		if n := strings.Count(err.Error(), "illegal character"); n != 2 {
			t.Errorf("got %d lexical errors, want 2:\n%v", n, err)
		}
	})

	t.Run("Joined with a fatal error", func(t *testing.T) {
		_, err := Compile("programa p; vars a:entero;\ninicio { a = 1 $ ;\n b = 2; } fin")
		if !errors.Is(err, ErrLexical) || !errors.Is(err, ErrUndeclaredVariable) {
			t.Fatalf("error = %v, want ErrLexical and ErrUndeclaredVariable", err)
		}
		msg := err.Error()
		if strings.Index(msg, "illegal character") > strings.Index(msg, "undeclared variable") {
			t.Errorf("lexical errors should come first:\n%s", msg)
		}
	})
}

func TestErrorFormat(t *testing.T) {
	_, err := Compile("programa p;\ninicio {\n    y = 1;\n} fin")
	want := "line 3: undeclared variable: variable \"y\" is not declared\n  |> y = 1;"
	if err == nil || err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestCompileIsolated(t *testing.T) {
	src := `programa p; vars a:entero; inicio { a = 1 + 2; } fin`
	first := mustCompile(t, src)
	second := mustCompile(t, src)
	if first.Temps != 1 || second.Temps != 1 {
		t.Errorf("temporaries leaked between compilations: %d, %d", first.Temps, second.Temps)
	}
	if first.Dir == second.Dir {
		t.Error("compilations share a directory")
	}
}
