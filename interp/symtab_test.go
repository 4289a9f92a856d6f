package interp

import "testing"

func TestIntrinsicScopePrePopulated(t *testing.T) {
	root := NewIntrinsicScope()
	for _, name := range []string{"T", "F", "NULL", "PI", "E", "INF", "NAN"} {
		id := Intern(name)
		if !root.ContainsSymbol(id) {
			t.Errorf("intrinsic scope missing %q", name)
		}
	}
}

func TestVariablesScopeRejectsVariablesParent(t *testing.T) {
	root := NewIntrinsicScope()
	vars := NewVariablesScope(root)
	if _, err := NewScope(Variables, vars); err == nil {
		t.Fatalf("constructing a Variables scope whose parent is itself Variables must fail")
	}
}

func TestVariablesWriteCannotShadowConstant(t *testing.T) {
	root := NewIntrinsicScope()
	dc, err := NewScope(DefinedConstants, root)
	if err != nil {
		t.Fatal(err)
	}
	vars := NewVariablesScope(dc)

	id := Intern("x")
	if err := dc.DefineConstantForSymbol(id, NewInt(1)); err != nil {
		t.Fatal(err)
	}
	// A Variables-scope write to an already-constant name must fail...
	if err := vars.SetValueForSymbol(id, NewInt(2)); err == nil {
		t.Fatalf("redefining a constant from the Variables scope should fail")
	}
	v, err := vars.GetValue(id)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := v.asIntScalar()
	if n != 1 {
		t.Fatalf("x should still resolve to the constant value 1, got %d", n)
	}
}

func TestArrayToHashMigrationPreservesBindings(t *testing.T) {
	root := NewIntrinsicScope()
	vars := NewVariablesScope(root)
	for i := 0; i < scopeArrayCapacity+5; i++ {
		name := "v" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		if err := vars.SetValueForSymbol(Intern(name), NewInt(int64(i))); err != nil {
			t.Fatalf("SetValueForSymbol(%s): %v", name, err)
		}
	}
	if !vars.hashed {
		t.Fatalf("scope should have migrated to hash storage past capacity %d", scopeArrayCapacity)
	}
}

func TestSetValueForSymbolCopiesSharedValue(t *testing.T) {
	root := NewIntrinsicScope()
	vars := NewVariablesScope(root)
	shared := NewInt(7, 8)
	Acquire(shared)
	Acquire(shared)
	if err := vars.SetValueForSymbol(Intern("y"), shared); err != nil {
		t.Fatal(err)
	}
	stored, _ := vars.GetValue(Intern("y"))
	if stored == shared {
		t.Fatalf("SetValueForSymbol should copy a non-unique value rather than alias it")
	}
}

func TestRemoveSymbolProtectsIntrinsics(t *testing.T) {
	root := NewIntrinsicScope()
	if err := root.RemoveSymbol(Intern("T"), true); err == nil {
		t.Fatalf("removing an intrinsic constant must always fail")
	}
}

func TestDefinedConstantsScopeIsSpliced(t *testing.T) {
	root := NewIntrinsicScope()
	vars := NewVariablesScope(root)
	if err := vars.DefineConstantForSymbol(Intern("k"), NewInt(42)); err != nil {
		t.Fatal(err)
	}
	if vars.parent == root {
		t.Fatalf("defining a constant should splice a DefinedConstants scope between vars and its old parent")
	}
	if vars.parent.kind != DefinedConstants {
		t.Fatalf("spliced scope should be of kind DefinedConstants, got %s", vars.parent.kind)
	}
	if vars.parent.parent != root {
		t.Fatalf("spliced scope's parent should still be the original root")
	}
}

func TestEnumerateNamesIsRootFirst(t *testing.T) {
	root := NewIntrinsicScope()
	vars := NewVariablesScope(root)
	if err := vars.SetValueForSymbol(Intern("local1"), NewInt(1)); err != nil {
		t.Fatal(err)
	}
	names := vars.EnumerateNames(true, true)
	if len(names) == 0 {
		t.Fatalf("expected at least the intrinsic names plus local1")
	}
	lastName := NameOf(names[len(names)-1])
	if lastName != "local1" {
		t.Fatalf("local bindings should be enumerated after ancestor bindings, last was %q", lastName)
	}
}
