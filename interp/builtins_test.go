package interp

import (
	"strings"
	"testing"
)

func captureOutput(t *testing.T, src string) string {
	t.Helper()
	Warmup()
	var buf strings.Builder
	script, err := NewScript(src, true)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	vars := NewVariablesScope(IntrinsicScope())
	funcs := NewFunctionMap()
	ip := NewInterpreter(script, vars, funcs, NopContext{}, ModeThrow)
	ip.SetOutput(&buf)
	if _, err := ip.EvaluateInterpreterBlock(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return buf.String()
}

func TestBuiltinPrintAppendsNewline(t *testing.T) {
	got := captureOutput(t, "print(1:3);")
	if got != "1 2 3\n" {
		t.Fatalf("got %q, want %q", got, "1 2 3\n")
	}
}

func TestBuiltinCatOmitsNewline(t *testing.T) {
	got := captureOutput(t, `cat("a"); cat("b");`)
	if got != `"a""b"` {
		t.Fatalf("got %q, want %q", got, `"a""b"`)
	}
}

func TestBuiltinStrReturnsCanonicalText(t *testing.T) {
	v, err := runScript(t, "str(1:3);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := v.asStringScalar()
	if err != nil || s != "1 2 3" {
		t.Fatalf("got %q (%v), want %q", s, err, "1 2 3")
	}
}

func TestBuiltinPasteJoinsElementsWithSeparator(t *testing.T) {
	v, err := runScript(t, `paste(c(1, 2, 3), sep="-");`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := v.asStringScalar()
	if err != nil || s != "1-2-3" {
		t.Fatalf("got %q (%v), want %q", s, err, "1-2-3")
	}
}

func TestBuiltinPasteDefaultSeparatorIsSpace(t *testing.T) {
	v, err := runScript(t, "paste(c(1, 2, 3));")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := v.asStringScalar()
	if err != nil || s != "1 2 3" {
		t.Fatalf("got %q (%v), want %q", s, err, "1 2 3")
	}
}

func TestBuiltinSizeAndLengthCountElements(t *testing.T) {
	for _, name := range []string{"size", "length"} {
		v, err := runScript(t, name+"(c(1, 2, 3, 4));")
		if err != nil {
			t.Fatalf("%s(): unexpected error: %v", name, err)
		}
		n, err := v.asIntScalar()
		if err != nil || n != 4 {
			t.Fatalf("%s(): got %v (%v), want 4", name, v, err)
		}
	}

	v, err := runScript(t, "length(NULL);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := v.asIntScalar()
	if err != nil || n != 0 {
		t.Fatalf("length(NULL): got %v (%v), want 0", v, err)
	}
}

func TestBuiltinSeqAscendingAndDescending(t *testing.T) {
	v, err := runScript(t, "seq(1, 5);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1, 2, 3, 4, 5}
	if len(v.integer) != len(want) {
		t.Fatalf("got %v, want %v", v.integer, want)
	}
	for i, w := range want {
		if v.integer[i] != w {
			t.Errorf("element %d = %d, want %d", i, v.integer[i], w)
		}
	}

	v, err = runScript(t, "seq(10, 2, by=-2);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = []int64{10, 8, 6, 4, 2}
	if len(v.integer) != len(want) {
		t.Fatalf("got %v, want %v", v.integer, want)
	}
	for i, w := range want {
		if v.integer[i] != w {
			t.Errorf("element %d = %d, want %d", i, v.integer[i], w)
		}
	}
}

func TestBuiltinSeqRejectsZeroStep(t *testing.T) {
	_, err := runScript(t, "seq(1, 5, by=0);")
	if err == nil {
		t.Fatalf("expected an error for a zero step")
	}
}

func TestBuiltinSeqRejectsStepSignMismatch(t *testing.T) {
	_, err := runScript(t, "seq(1, 5, by=-1);")
	if err == nil {
		t.Fatalf("expected an error for a positive range with a negative step")
	}
}

func TestBuiltinRepRepeatsWholeVector(t *testing.T) {
	v, err := runScript(t, "rep(c(1, 2), 3);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1, 2, 1, 2, 1, 2}
	if len(v.integer) != len(want) {
		t.Fatalf("got %v, want %v", v.integer, want)
	}
	for i, w := range want {
		if v.integer[i] != w {
			t.Errorf("element %d = %d, want %d", i, v.integer[i], w)
		}
	}
}

func TestBuiltinRepZeroCountYieldsEmptyOfSameType(t *testing.T) {
	v, err := runScript(t, "rep(c(1, 2), 0);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.typ != IntType || v.Count() != 0 {
		t.Fatalf("got %s[%d], want an empty IntType", v.Type(), v.Count())
	}
}

func TestBuiltinRepRejectsNegativeCount(t *testing.T) {
	_, err := runScript(t, "rep(c(1, 2), -1);")
	if err == nil {
		t.Fatalf("expected an error for a negative count")
	}
}
