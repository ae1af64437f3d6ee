// Command mapcheck parses and structurally validates modelmapper mapping files.
//
// Usage:
//
//	mapcheck [-w] -f mappings.yaml [-f more.yaml ...]
//
// Every diagnostic is printed on its own line. With -w, files without errors are rewritten
// in normalized form: 121 shorthands expanded into fields. The exit code is 1 when a file
// cannot be read or written or carries errors, 2 on usage errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/kamilors/modelmapper/internal/mapping"
)

type files []string

func (f *files) String() string {
	return strings.Join(*f, ",")
}

func (f *files) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mapcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var paths files
	fs.Var(&paths, "f", "mapping file to check (repeatable)")
	rewrite := fs.Bool("w", false, "rewrite valid files in normalized form")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths = append(paths, fs.Args()...)
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "mapcheck: no mapping file given")
		fs.Usage()

		return 2
	}

	code := 0

	for _, path := range paths {
		if !check(path, *rewrite, stdout) {
			code = 1
		}
	}

	return code
}

func check(path string, rewrite bool, w io.Writer) bool {
	f, err := mapping.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}

	diags := mapping.Validate(f, nil)

	for _, d := range slices.Concat(diags.Errors, diags.Warnings) {
		fmt.Fprintf(w, "%s: %s\n", path, d)
	}

	if diags.HasErrors() {
		return false
	}

	fmt.Fprintf(w, "%s: ok (%d mappings)\n", path, len(f.TypeMappings))

	if !rewrite {
		return true
	}

	for i := range f.TypeMappings {
		mapping.Normalize(&f.TypeMappings[i])
	}

	if err := mapping.WriteFile(f, path); err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}

	fmt.Fprintf(w, "%s: rewritten\n", path)

	return true
}
