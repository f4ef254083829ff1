// Command patitoc runs the front end on a single program and prints its
// stages: source, tokens, quadruples and the symbol directory. With no stage
// flags every stage is printed; with no file a built-in sample is used.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"patito/pkg/compiler"
)

const sampleSource = `programa muestra;
vars a, b: entero;
     c: flotante;

flotante mitad(x: entero) {
	vars r: flotante;
	{
		r = x / 2.0;
	}
};

inicio {
	a = 3 + 2 * 5;
	b = (a - 1) * -2;
	c = mitad(a) + b;
	si (c > 0) {
		escribe("positivo", c);
	} sino {
		escribe(letrero);
	};
}
fin
`

func main() {
	showTokens := flag.Bool("tokens", false, "print the token stream")
	showQuads := flag.Bool("quads", false, "print the quadruples")
	showDir := flag.Bool("dir", false, "print the symbol directory")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: patitoc [-tokens] [-quads] [-dir] [file.pat]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if !*showTokens && !*showQuads && !*showDir {
		*showTokens, *showQuads, *showDir = true, true, true
	}
	log.SetFlags(0)
	log.SetPrefix("patitoc: ")

	src := sampleSource
	switch flag.NArg() {
	case 0:
	case 1:
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatalf("read error: %v", err)
		}
		src = string(data)
	default:
		flag.Usage()
		os.Exit(2)
	}

	fmt.Printf("Source:\n%s\n", src)

	if *showTokens {
		lex := compiler.NewLexer(src)
		var n int
		fmt.Println("Tokens")
		for tok := range lex.All() {
			fmt.Println(" ", tok)
			n++
		}
		fmt.Printf("  (%d tokens)\n\n", n)
		for _, e := range lex.Errors() {
			fmt.Fprintln(os.Stderr, "lex error:", e)
		}
	}

	prog, err := compiler.Compile(src)
	if err != nil {
		var ce *compiler.Error
		if errors.As(err, &ce) && ce.Kind == compiler.Internal {
			log.Fatalf("%v", err)
		}
		fmt.Fprintf(os.Stderr, "compile error:\n%v\n", err)
		os.Exit(1)
	}

	if *showQuads {
		fmt.Printf("Quadruples (%d, %d temporaries)\n", len(prog.Quads), prog.Temps)
		fmt.Print(compiler.FormatQuads(prog.Quads))
		fmt.Println()
	}
	if *showDir {
		fmt.Printf("Directory of %s\n", prog.Name)
		fmt.Print(prog.Dir)
	}
}
