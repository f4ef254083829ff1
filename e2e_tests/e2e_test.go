package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"patito/pkg/compiler"
	"patito/pkg/objfile"
)

// TestGoldenPrograms compiles every testdata/*.pat. A program with a .quads
// file must compile to exactly that listing followed by its directory; one
// with a .err file must fail with exactly that message.
func TestGoldenPrograms(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.pat")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no test programs found")
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".pat")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read source: %v", err)
			}
			base := strings.TrimSuffix(path, ".pat")
			prog, compileErr := compiler.Compile(string(src))

			if want, err := os.ReadFile(base + ".err"); err == nil {
				if compileErr == nil {
					t.Fatalf("Compile succeeded, want error:\n%s", want)
				}
				if got := compileErr.Error() + "\n"; got != string(want) {
					t.Errorf("error mismatch\nGot:\n%s\nWant:\n%s", got, want)
				}
				return
			}

			want, err := os.ReadFile(base + ".quads")
			if err != nil {
				t.Fatalf("no .quads or .err golden file for %s", path)
			}
			if compileErr != nil {
				t.Fatalf("Compile failed: %v", compileErr)
			}
			got := compiler.FormatQuads(prog.Quads) + "\n" + prog.Dir.String()
			if got != string(want) {
				t.Errorf("listing mismatch\nGot:\n%s\nWant:\n%s", got, want)
			}
		})
	}
}

// TestObjectRoundTrip checks that every golden program survives the object
// format unchanged.
func TestObjectRoundTrip(t *testing.T) {
	paths, _ := filepath.Glob("testdata/*.quads")
	for _, golden := range paths {
		path := strings.TrimSuffix(golden, ".quads") + ".pat"
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read source: %v", err)
		}
		prog, err := compiler.Compile(string(src))
		if err != nil {
			t.Fatalf("%s: Compile failed: %v", path, err)
		}

		var buf bytes.Buffer
		if err := objfile.Write(&buf, prog); err != nil {
			t.Fatalf("%s: Write failed: %v", path, err)
		}
		back, err := objfile.Read(&buf)
		if err != nil {
			t.Fatalf("%s: Read failed: %v", path, err)
		}
		if !reflect.DeepEqual(back.Quads, prog.Quads) || back.Dir.String() != prog.Dir.String() {
			t.Errorf("%s: object round trip changed the program", path)
		}
	}
}

// TestErrorKinds checks that failures can be classified with errors.Is.
func TestErrorKinds(t *testing.T) {
	tests := map[string]error{
		"tipos":      compiler.ErrTypeMismatch,
		"llamada":    compiler.ErrVoidInExpression,
		"lexico":     compiler.ErrLexical,
		"argumentos": compiler.ErrArgumentMismatch,
	}
	for name, want := range tests {
		src, err := os.ReadFile(filepath.Join("testdata", name+".pat"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := compiler.Compile(string(src)); !errors.Is(err, want) {
			t.Errorf("%s: error = %v, want %v", name, err, want)
		}
	}
}
