package interp

import (
	"strings"
	"testing"
)

func runScript(t *testing.T, src string) (*Value, error) {
	t.Helper()
	Warmup()
	script, err := NewScript(src, true)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	vars := NewVariablesScope(IntrinsicScope())
	funcs := NewFunctionMap()
	ip := NewInterpreter(script, vars, funcs, NopContext{}, ModeThrow)
	return ip.EvaluateInterpreterBlock(false)
}

func TestScenarioSubscriptAssignMutatesInPlace(t *testing.T) {
	v, err := runScript(t, "x = 1:5; x[2] = 99; x;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1, 2, 99, 4, 5}
	if len(v.integer) != len(want) {
		t.Fatalf("got %v, want %v", v.integer, want)
	}
	for i, w := range want {
		if v.integer[i] != w {
			t.Errorf("element %d = %d, want %d", i, v.integer[i], w)
		}
	}
}

func TestScenarioCopyOnWriteAcrossAssignment(t *testing.T) {
	v, err := runScript(t, "x = 1:3; y = x; x[0] = 0; c(x[0], y[0]);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.integer) != 2 || v.integer[0] != 0 || v.integer[1] != 1 {
		t.Fatalf("got %v, want [0 1]", v.integer)
	}
}

func TestScenarioRedefiningIntrinsicConstantFails(t *testing.T) {
	_, err := runScript(t, "PI = 4;")
	if err == nil {
		t.Fatalf("expected RedefinitionOfConstant, got success")
	}
	te, ok := err.(*TerminationError)
	if !ok {
		t.Fatalf("expected *TerminationError, got %T: %v", err, err)
	}
	if te.Kind != RedefinitionOfConstant {
		t.Fatalf("got error kind %s, want RedefinitionOfConstant", te.Kind)
	}

	// PI must still read back unchanged after the failed assignment.
	v, err := runScript(t, "PI;")
	if err != nil {
		t.Fatalf("unexpected error reading PI back: %v", err)
	}
	if len(v.float) != 1 || v.float[0] != piValue {
		t.Fatalf("PI changed after a failed assignment: %v", v.float)
	}
}

func TestScenarioLengthMismatchOnBinaryOp(t *testing.T) {
	_, err := runScript(t, "a = c(1.0, 2.0); b = c(10.0, 20.0, 30.0); a + b;")
	if err == nil {
		t.Fatalf("expected LengthMismatch, got success")
	}
	te, ok := err.(*TerminationError)
	if !ok {
		t.Fatalf("expected *TerminationError, got %T: %v", err, err)
	}
	if te.Kind != LengthMismatch {
		t.Fatalf("got error kind %s, want LengthMismatch", te.Kind)
	}
}

func TestScenarioBroadcastRecyclesLengthOneOperand(t *testing.T) {
	v, err := runScript(t, "c(1, 2, 3) + 10;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{11, 12, 13}
	if len(v.integer) != len(want) {
		t.Fatalf("got %v, want %v", v.integer, want)
	}
	for i, w := range want {
		if v.integer[i] != w {
			t.Errorf("element %d = %d, want %d", i, v.integer[i], w)
		}
	}
}

func TestScenarioExistsGuardsUnboundAccumulator(t *testing.T) {
	v, err := runScript(t, "for (i in 1:3) s = (exists(s) ? s else 0) + i; s;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := v.asIntScalar()
	if err != nil {
		t.Fatalf("expected an integer singleton: %v", err)
	}
	if n != 6 {
		t.Fatalf("got %d, want 6", n)
	}
}

func TestScenarioParseErrorCaretAlignsUnderOffendingToken(t *testing.T) {
	src := "x = 1 + ;"
	_, err := NewScript(src, true)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	script, _ := NewScript(src, true)
	err = script.ParseInterpreterBlock()
	if err == nil {
		t.Fatalf("expected a ParseError for a dangling operator")
	}
	te, ok := err.(*TerminationError)
	if !ok {
		t.Fatalf("expected *TerminationError, got %T: %v", err, err)
	}
	if te.Kind != ParseError {
		t.Fatalf("got error kind %s, want ParseError", te.Kind)
	}
	diagram := te.CaretDiagram(src)
	lines := strings.Split(diagram, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a two-line caret diagram, got %q", diagram)
	}
	caretCol := strings.IndexByte(lines[1], '^')
	if caretCol < 0 {
		t.Fatalf("no caret found in diagram %q", diagram)
	}
	if lines[0][caretCol] != ';' {
		t.Fatalf("caret should align under the ';' token, aligned under %q instead", lines[0][caretCol])
	}
}

func TestScenarioBareAssignmentExpressionDoesNotPrint(t *testing.T) {
	var buf strings.Builder
	script, err := NewScript("x = 5;", true)
	if err != nil {
		t.Fatal(err)
	}
	vars := NewVariablesScope(IntrinsicScope())
	funcs := NewFunctionMap()
	ip := NewInterpreter(script, vars, funcs, NopContext{}, ModeThrow)
	ip.SetOutput(&buf)
	if _, err := ip.EvaluateInterpreterBlock(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("an assignment expression's value must never print, got %q", buf.String())
	}
}

func TestScenarioExitModeRendersCaretDiagramAndExits(t *testing.T) {
	Warmup()
	src := "PI = 4;"
	script, err := NewScript(src, true)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	vars := NewVariablesScope(IntrinsicScope())
	funcs := NewFunctionMap()
	ip := NewInterpreter(script, vars, funcs, NopContext{}, ModeExit)

	var printed string
	var exitCode int
	exited := false
	ip.errs.print = func(s string) { printed = s }
	ip.errs.exit = func(code int) { exited = true; exitCode = code }

	_, err = ip.EvaluateInterpreterBlock(false)
	if err == nil {
		t.Fatalf("expected a RedefinitionOfConstant error")
	}
	te, ok := err.(*TerminationError)
	if !ok {
		t.Fatalf("expected *TerminationError, got %T", err)
	}
	if te.Kind != RedefinitionOfConstant {
		t.Fatalf("got error kind %s, want RedefinitionOfConstant", te.Kind)
	}
	if !exited {
		t.Fatalf("exit mode should have called the stream's exit hook")
	}
	if exitCode != 1 {
		t.Fatalf("got exit code %d, want 1", exitCode)
	}
	if !strings.Contains(printed, "PI") {
		t.Fatalf("printed message should mention the offending source, got %q", printed)
	}
	lines := strings.Split(printed, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected a message line plus a two-line caret diagram, got %q", printed)
	}
	caretLine := lines[len(lines)-1]
	if !strings.Contains(caretLine, "^") {
		t.Fatalf("expected a caret diagram as the last line, got %q", printed)
	}
}

func TestScenarioIntrinsicsAreProcessWideSingletons(t *testing.T) {
	a := IntrinsicScope()
	b := IntrinsicScope()
	for _, name := range []string{"T", "F", "NULL", "PI", "E", "INF", "NAN"} {
		id := Intern(name)
		va, _ := a.GetValue(id)
		vb, _ := b.GetValue(id)
		if va != vb {
			t.Errorf("%s is not a process-wide singleton across IntrinsicScope() calls", name)
		}
	}
}
