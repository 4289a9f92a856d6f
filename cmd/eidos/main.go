package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/eidoslang/eidos/interp"
	"github.com/pkg/errors"
)

// defineList collects -d name=expr flags, in order of appearance, the
// way db47h/ngaro's cmd/retro collects -with file flags.
type defineList []string

func (d *defineList) String() string     { return "" }
func (d *defineList) Set(s string) error { *d = append(*d, s); return nil }
func (d *defineList) Get() interface{}   { return *d }

var (
	debug  bool
	inline string
	quiet  bool
)

// atExit reports a fatal error and exits with status 1. err may be a
// bare *interp.TerminationError or one wrapped by errors.Wrapf for
// extra context; errors.Cause unwraps to the original either way. A
// TerminationError carries enough to render a caret diagram against
// src (the script text that produced it, or "" when none applies,
// e.g. a file-read failure); anything else falls back to a plain
// message, with -debug adding a stack trace via pkg/errors.
func atExit(err error, src string) {
	if err == nil {
		return
	}
	if te, ok := errors.Cause(err).(*interp.TerminationError); ok {
		fmt.Fprintln(os.Stderr, te.Error())
		if diagram := te.CaretDiagram(src); diagram != "" {
			fmt.Fprintln(os.Stderr, diagram)
		}
	} else if debug {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(1)
}

func main() {
	var defines defineList

	flag.Var(&defines, "d", "Define a command-line constant `name=expr` (can be specified multiple times)")
	flag.StringVar(&inline, "e", "", "Evaluate `script` given inline instead of reading a file")
	flag.BoolVar(&debug, "debug", false, "print a stack trace on error")
	flag.BoolVar(&quiet, "q", false, "suppress the REPL's interactive banner")
	flag.Parse()

	interp.Warmup()

	vars := interp.NewVariablesScope(interp.IntrinsicScope())
	if err := interp.DefineCommandLineConstants(vars, defines); err != nil {
		atExit(err, "")
		return
	}

	if inline != "" {
		atExit(runSource(vars, inline, true), inline)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		atExit(runREPL(vars), "")
		return
	}

	for _, name := range args {
		raw, err := os.ReadFile(name)
		if err != nil {
			atExit(errors.Wrapf(err, "reading %s", name), "")
			return
		}
		src := string(raw)
		if err := runSource(vars, src, false); err != nil {
			atExit(errors.Wrapf(err, "running %s", name), src)
			return
		}
	}
}

// runSource runs one script to completion under exit mode: a
// termination error raised during evaluation prints its caret diagram
// and ends the process from inside the core itself (spec §4.7). Lex
// and parse errors come from the Script's own throw-mode stream and
// are returned here, so atExit reports them. Either way a file or an
// inline -e script fails noisily and stops, unlike the REPL's
// catch-and-continue behavior.
func runSource(vars *interp.Scope, src string, print bool) error {
	script, err := interp.NewScript(src, true)
	if err != nil {
		return err
	}
	funcs := interp.NewFunctionMap()
	ip := interp.NewInterpreter(script, vars, funcs, interp.NopContext{}, interp.ModeExit)
	_, err = ip.EvaluateInterpreterBlock(print)
	return err
}

func runREPL(vars *interp.Scope) error {
	if !quiet {
		fmt.Println("eidos interactive interpreter")
	}
	funcs := interp.NewFunctionMap()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if !quiet {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "reading stdin")
			}
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		script, err := interp.NewScript(line, true)
		if err != nil {
			reportLine(err, line)
			continue
		}
		ip := interp.NewInterpreter(script, vars, funcs, interp.NopContext{}, interp.ModeThrow)
		if _, err := ip.EvaluateInterpreterBlock(true); err != nil {
			reportLine(err, line)
		}
	}
}

// reportLine prints one REPL line's error to stderr without exiting,
// rendering a caret diagram when the error carries one.
func reportLine(err error, line string) {
	te, ok := errors.Cause(err).(*interp.TerminationError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintln(os.Stderr, te.Error())
	if diagram := te.CaretDiagram(line); diagram != "" {
		fmt.Fprintln(os.Stderr, diagram)
	}
}
