package interp

import (
	"io"
	"os"
)

// Interpreter evaluates one script's AST against a symbol-table chain
// and function registry (C8). It is single-threaded and not
// reentrant: a host embedding multiple scripts runs them one at a
// time, each against its own Interpreter (spec §5).
type Interpreter struct {
	script *Script
	vars   *Scope
	funcs  *FunctionMap
	ctx    Context
	errs   *errorStream
	out    io.Writer
}

// NewInterpreter binds a parsed script to the symbol-table chain,
// function map, and embedding context it will evaluate against (spec
// §6). Callers build vars with NewVariablesScope(IntrinsicScope()) (or
// one chained off a host-defined DefinedConstants layer) and funcMap
// with NewFunctionMap(). Warmup must already have run. A nil ctx is
// replaced with NopContext; mode selects throw-vs-exit diagnostics
// (spec §9) for everything evaluated past this point.
func NewInterpreter(script *Script, vars *Scope, funcMap *FunctionMap, ctx Context, mode TerminationMode) *Interpreter {
	if ctx == nil {
		ctx = NopContext{}
	}
	errs := newErrorStream(mode)
	errs.SetSource(script.Source())
	return &Interpreter{
		script: script,
		vars:   vars,
		funcs:  funcMap,
		ctx:    ctx,
		errs:   errs,
		out:    os.Stdout,
	}
}

// SetOutput redirects the interpreter's print/cat destination, used by
// tests and by hosts embedding the core into their own I/O.
func (ip *Interpreter) SetOutput(w io.Writer) { ip.out = w }

func (ip *Interpreter) stdout() io.Writer { return ip.out }

// Vars returns the interpreter's leaf Variables scope, the host-facing
// entry point for DefineCommandLineConstants and similar setup (spec §6).
func (ip *Interpreter) Vars() *Scope { return ip.vars }

// Functions returns the interpreter's function map, so a host can
// Extend it with delegate implementations before evaluating (spec §6).
func (ip *Interpreter) Functions() *FunctionMap { return ip.funcs }

// breakSignal and nextSignal are control-flow errors used internally
// to unwind statement evaluation up to the nearest enclosing loop.
// They are never returned to a caller outside this package.
type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type nextSignal struct{}

func (nextSignal) Error() string { return "next" }

// returnSignal unwinds statement evaluation up to the interpreter
// block boundary, carrying the value named in a `return` statement (or
// NULL for a bare `return`).
type returnSignal struct{ value *Value }

func (returnSignal) Error() string { return "return" }

// EvaluateInterpreterBlock runs the script's parsed top-level
// statements in order (parsing it first if that has not happened
// yet). A top-level `return` ends evaluation early with that value
// (resolved Open Question: spec.md leaves top-level return behavior
// unspecified; a console or script-block execution model naturally
// treats it as "stop here, this is the result", which this mirrors).
// When printLastResult is true and the final statement produced a
// visible value, it is streamed to the interpreter's output exactly
// once, matching the behavior of an interactive console.
func (ip *Interpreter) EvaluateInterpreterBlock(printLastResult bool) (*Value, error) {
	if ip.script.AST() == nil {
		if err := ip.script.ParseInterpreterBlock(); err != nil {
			return nil, err
		}
	}
	root := ip.script.AST()

	var last *Value = InvisibleNullValue
	for _, stmt := range root.Children {
		v, err := ip.evalStatement(stmt)
		if err != nil {
			switch sig := err.(type) {
			case returnSignal:
				return sig.value, nil
			case breakSignal:
				return nil, ip.errs.Raise(ControlFlowError, "interp", "break statement outside of a loop")
			case nextSignal:
				return nil, ip.errs.Raise(ControlFlowError, "interp", "next statement outside of a loop")
			}
			return nil, err
		}
		last = v
	}
	if printLastResult && last != nil && !last.IsInvisible() {
		if err := last.StreamTo(ip.out); err != nil {
			return nil, err
		}
		if _, err := io.WriteString(ip.out, "\n"); err != nil {
			return nil, err
		}
	}
	return last, nil
}
