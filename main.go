//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"patito/pkg/compiler"
	"patito/pkg/objfile"
)

// result is the outcome of compiling one source file.
type result struct {
	src  string
	out  string
	prog *compiler.Program
	err  error // compilation error; I/O errors abort the whole batch instead
}

func main() {
	outDir := flag.String("out", "", "output directory for .pq files (default: next to each source)")
	jobs := flag.Int("j", runtime.NumCPU(), "maximum number of files compiled in parallel")
	quiet := flag.Bool("quiet", false, "do not print a summary line per compiled file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-out DIR] [-j N] [-quiet] file.pat...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: provide one or more .pat files")
		flag.Usage()
		os.Exit(2)
	}
	if *jobs < 1 {
		fmt.Fprintf(os.Stderr, "-j must be at least 1, got %d\n", *jobs)
		os.Exit(2)
	}

	results, err := compileAll(context.Background(), flag.Args(), *outDir, *jobs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s:\n%v\n", r.src, r.err)
			continue
		}
		if !*quiet {
			fmt.Printf("compiled %s: %d quads, %d temps -> %s\n", r.src, len(r.prog.Quads), r.prog.Temps, r.out)
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed to compile\n", failed, len(results))
		os.Exit(1)
	}
}

// compileAll compiles every source with at most jobs compilations in flight.
// Results come back in the order of srcs. A compilation error is recorded in
// its result; a read or write failure stops the batch and is returned.
func compileAll(ctx context.Context, srcs []string, outDir string, jobs int) ([]result, error) {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %q: %w", outDir, err)
		}
	}

	results := make([]result, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := compileFile(src, outDir)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func compileFile(src, outDir string) (result, error) {
	r := result{src: src, out: defaultOutputPath(src, outDir)}
	source, err := os.ReadFile(src)
	if err != nil {
		return r, fmt.Errorf("failed to read input file %q: %w", src, err)
	}
	r.prog, r.err = compiler.Compile(string(source))
	if r.err != nil {
		return r, nil
	}
	if err := writeObject(r.out, r.prog); err != nil {
		return r, fmt.Errorf("failed to write object file %q: %w", r.out, err)
	}
	return r, nil
}

// defaultOutputPath replaces the source extension with .pq, placing the file
// in outDir when one is given.
func defaultOutputPath(inPath, outDir string) string {
	out := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".pq"
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}
	return out
}

func writeObject(path string, p *compiler.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := objfile.Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
