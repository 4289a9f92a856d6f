package interp

import "fmt"

// ScopeKind distinguishes the three roles a scope can play in the
// chain (spec §3, §4.4).
type ScopeKind int

const (
	IntrinsicConstants ScopeKind = iota
	DefinedConstants
	Variables
)

func (k ScopeKind) String() string {
	switch k {
	case IntrinsicConstants:
		return "IntrinsicConstants"
	case DefinedConstants:
		return "DefinedConstants"
	case Variables:
		return "Variables"
	default:
		return "UnknownScopeKind"
	}
}

func (k ScopeKind) isConstant() bool {
	return k == IntrinsicConstants || k == DefinedConstants
}

// scopeArrayCapacity is the small-array threshold (spec §3 recommends
// N=32) before a scope migrates to hash storage.
const scopeArrayCapacity = 32

type symbolEntry struct {
	name  StringID
	value *Value
}

// Scope is one link of the symbol table chain (C6): a kind tag, an
// optional parent, and either small-array or hash storage for its own
// bindings. The storage transition from array to hash is one-way.
type Scope struct {
	kind   ScopeKind
	parent *Scope

	array  []symbolEntry
	hashed bool
	table  map[StringID]*Value
}

// NewScope constructs a scope of the given kind with the given
// parent. A Variables scope's parent must never itself be a Variables
// scope (spec §3 invariant); this is enforced with an internal
// invariant error rather than silently accepted.
func NewScope(kind ScopeKind, parent *Scope) (*Scope, error) {
	if parent != nil && parent.kind == Variables {
		return nil, fmt.Errorf("internal invariant violated: a scope's parent must be a constant scope")
	}
	return &Scope{kind: kind, parent: parent}, nil
}

// NewIntrinsicScope builds the root IntrinsicConstants scope,
// pre-populated with T, F, NULL, PI, E, INF, NAN (spec §4.4).
func NewIntrinsicScope() *Scope {
	s := &Scope{kind: IntrinsicConstants}
	s.array = []symbolEntry{
		{Intern("T"), TrueValue},
		{Intern("F"), FalseValue},
		{Intern("NULL"), NullValue},
		{Intern("PI"), NewFloat(piValue)},
		{Intern("E"), NewFloat(eValue)},
		{Intern("INF"), NewFloat(infValue)},
		{Intern("NAN"), NewFloat(nanValue)},
	}
	return s
}

// NewVariablesScope builds a Variables scope linked to parent, the
// host-facing entry point named in spec §6.
func NewVariablesScope(parent *Scope) *Scope {
	s, err := NewScope(Variables, parent)
	if err != nil {
		// Can only happen if the caller passes a Variables parent,
		// which is a programming error in the host, not a script error.
		panic(err)
	}
	return s
}

// lookupLocal scans this scope's own storage, back-to-front in array
// mode so that the most-recently-defined binding shadows earlier ones
// (spec §4.4, §9).
func (s *Scope) lookupLocal(id StringID) (*Value, bool) {
	if s.hashed {
		v, ok := s.table[id]
		return v, ok
	}
	for i := len(s.array) - 1; i >= 0; i-- {
		if s.array[i].name == id {
			return s.array[i].value, true
		}
	}
	return nil, false
}

// ContainsSymbol reports whether id is bound in this scope or any
// ancestor.
func (s *Scope) ContainsSymbol(id StringID) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.lookupLocal(id); ok {
			return true
		}
	}
	return false
}

// GetValue resolves id by walking self→parent, failing
// IdentifierUndefined at the root.
func (s *Scope) GetValue(id StringID) (*Value, error) {
	v, _, err := s.GetValueConst(id)
	return v, err
}

// GetValueConst is GetValue plus a report of whether the binding was
// found in a constant scope.
func (s *Scope) GetValueConst(id StringID) (*Value, bool, error) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.lookupLocal(id); ok {
			return v, sc.kind.isConstant(), nil
		}
	}
	return nil, false, fmt.Errorf("undefined identifier %q", NameOf(id))
}

// migrateToHash performs the one-way array→hash storage transition,
// preserving every existing binding (spec §4.4, §9).
func (s *Scope) migrateToHash() {
	s.table = make(map[StringID]*Value, len(s.array)*2)
	for _, e := range s.array {
		s.table[e.name] = e.value
	}
	s.array = nil
	s.hashed = true
}

func (s *Scope) upsertLocal(id StringID, v *Value) {
	if s.hashed {
		s.table[id] = v
		return
	}
	for i := range s.array {
		if s.array[i].name == id {
			s.array[i].value = v
			return
		}
	}
	if len(s.array) >= scopeArrayCapacity {
		s.migrateToHash()
		s.table[id] = v
		return
	}
	s.array = append(s.array, symbolEntry{id, v})
}

// SetValueForSymbol applies a write to the nearest Variables scope.
// If id is already bound in an ancestor (necessarily a constant
// scope, since only the final Variables link accepts writes), the
// write fails with RedefinitionOfConstant. The value is copied unless
// it is already uniquely owned and not invisible (spec §4.4).
func (s *Scope) SetValueForSymbol(id StringID, v *Value) error {
	if s.kind != Variables {
		return fmt.Errorf("internal invariant violated: SetValueForSymbol on a %s scope", s.kind)
	}
	for sc := s.parent; sc != nil; sc = sc.parent {
		if _, ok := sc.lookupLocal(id); ok {
			return fmt.Errorf("redefinition of constant %q", NameOf(id))
		}
	}
	if v.invisible || !isUnique(v) {
		v = v.CopyValues()
	}
	s.upsertLocal(id, v)
	return nil
}

// SetValueForSymbolNoCopy is SetValueForSymbol without the copy step,
// reserved for the interpreter's performance-critical in-place
// mutation paths (for-loop induction variables, subscript
// reification). Although exported, it is called only from those two
// interpreter paths (spec §4.6, §9). It refuses invisible values,
// matching the source contract.
func (s *Scope) SetValueForSymbolNoCopy(id StringID, v *Value) error {
	if s.kind != Variables {
		return fmt.Errorf("internal invariant violated: SetValueForSymbolNoCopy on a %s scope", s.kind)
	}
	if v.invisible {
		return fmt.Errorf("internal invariant violated: cannot store an invisible value without copying")
	}
	for sc := s.parent; sc != nil; sc = sc.parent {
		if _, ok := sc.lookupLocal(id); ok {
			return fmt.Errorf("redefinition of constant %q", NameOf(id))
		}
	}
	s.upsertLocal(id, v)
	return nil
}

// DefineConstantForSymbol installs a binding into the chain's
// DefinedConstants scope, creating one between the nearest Variables
// scope and the IntrinsicConstants root if none exists yet. Fails if
// the name is already bound anywhere in the chain (spec §4.4).
func (s *Scope) DefineConstantForSymbol(id StringID, v *Value) error {
	if s.ContainsSymbol(id) {
		return fmt.Errorf("cannot define constant %q: already defined", NameOf(id))
	}
	dc := s.definedConstantsScope()
	if v.invisible || !isUnique(v) {
		v = v.CopyValues()
	}
	dc.upsertLocal(id, v)
	return nil
}

// definedConstantsScope returns the chain's DefinedConstants link,
// inserting one between the first Variables scope and its parent if
// none is present. This is the "privileged linking operation" named
// in spec §5, performed only by the chain itself.
func (s *Scope) definedConstantsScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == DefinedConstants {
			return sc
		}
	}
	// Find the nearest Variables scope; splice a DefinedConstants link
	// between it and its current parent.
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == Variables {
			dc := &Scope{kind: DefinedConstants, parent: sc.parent}
			sc.parent = dc
			return dc
		}
	}
	// No Variables scope in the chain: insert directly above s.
	dc := &Scope{kind: DefinedConstants, parent: s.parent}
	s.parent = dc
	return dc
}

// RemoveSymbol removes id from the nearest scope in the chain that
// holds it. Intrinsic constants may never be removed; other constants
// only when allowConstant is true (spec §4.4, §8).
func (s *Scope) RemoveSymbol(id StringID, allowConstant bool) error {
	for sc := s; sc != nil; sc = sc.parent {
		idx := sc.localIndex(id)
		if idx < 0 && !sc.hashed {
			continue
		}
		if sc.hashed {
			if _, ok := sc.table[id]; !ok {
				continue
			}
		} else if idx < 0 {
			continue
		}
		if sc.kind == IntrinsicConstants {
			return fmt.Errorf("cannot remove intrinsic constant %q", NameOf(id))
		}
		if sc.kind == DefinedConstants && !allowConstant {
			return fmt.Errorf("cannot remove constant %q without allow_constant", NameOf(id))
		}
		if sc.hashed {
			delete(sc.table, id)
		} else {
			sc.array = append(sc.array[:idx], sc.array[idx+1:]...)
		}
		return nil
	}
	return fmt.Errorf("undefined identifier %q", NameOf(id))
}

func (s *Scope) localIndex(id StringID) int {
	for i, e := range s.array {
		if e.name == id {
			return i
		}
	}
	return -1
}

// EnumerateNames returns bound names assembled root-first (ancestor
// names precede local names), optionally filtering by scope kind
// (spec §4.4).
func (s *Scope) EnumerateNames(includeConstants, includeVariables bool) []StringID {
	chain := make([]*Scope, 0, 4)
	for sc := s; sc != nil; sc = sc.parent {
		chain = append(chain, sc)
	}
	var names []StringID
	for i := len(chain) - 1; i >= 0; i-- {
		sc := chain[i]
		if sc.kind == Variables && !includeVariables {
			continue
		}
		if sc.kind != Variables && !includeConstants {
			continue
		}
		if sc.hashed {
			for id := range sc.table {
				names = append(names, id)
			}
		} else {
			for _, e := range sc.array {
				names = append(names, e.name)
			}
		}
	}
	return names
}
