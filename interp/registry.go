package interp

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
)

// ParamSpec describes one formal argument of a function/method
// signature: a type mask, an optional name (for keyword matching),
// and an optional default value (spec §3 "Function signature").
type ParamSpec struct {
	Name       string
	Mask       TypeMask
	HasDefault bool
	Default    *Value
}

// DelegateFunc is the shape of a function implementation supplied by
// an embedding Context at registration time (spec §6, "Delegate
// function implementation").
type DelegateFunc func(ctx Context, ip *Interpreter, args []*Value) (*Value, error)

// internalFunc is the shape of a built-in implementation, stored
// directly on its signature rather than looked up by name at call
// time.
type internalFunc func(ip *Interpreter, args []*Value) (*Value, error)

// FunctionSignature names a callable, its return type mask, its
// formal arguments, and its implementation: either an internal Go
// function or a Context-supplied delegate (spec §3, §4.5).
type FunctionSignature struct {
	Name       string
	ReturnMask TypeMask
	Params     []ParamSpec
	// Variadic marks a signature whose single ParamSpec's mask applies
	// to every positional argument, of which there may be any number
	// (e.g. c()). Keyword arguments are not supported for such calls.
	Variadic bool

	internal internalFunc
	delegate DelegateFunc
}

// Call invokes the signature's implementation after argument binding
// has already produced the final positional argument vector.
func (s *FunctionSignature) Call(ctx Context, ip *Interpreter, args []*Value) (*Value, error) {
	if s.internal != nil {
		return s.internal(ip, args)
	}
	if s.delegate != nil {
		return s.delegate(ctx, ip, args)
	}
	return nil, fmt.Errorf("function %q has no implementation", s.Name)
}

// Context is the embedding host's extensibility surface: it can layer
// additional functions/methods over the immutable built-in map and
// resolve object classes referenced by scripts (spec §6, §7).
type Context interface {
	LookupClass(name string) (*Class, bool)
	ResolveFunction(name string) (*FunctionSignature, bool)
}

// NopContext is a Context with no host-supplied extensions; used when
// embedding code has nothing to add to the built-in surface.
type NopContext struct{}

func (NopContext) LookupClass(string) (*Class, bool)       { return nil, false }
func (NopContext) ResolveFunction(string) (*FunctionSignature, bool) { return nil, false }

// FunctionMap resolves a call name to a signature: an immutable
// built-in table, computed once at warmup and shared, with an
// optional host-provided layer on top (spec §4.5).
type FunctionMap struct {
	builtin  map[string]*FunctionSignature
	extended *ordereddict.Dict
}

// NewFunctionMap returns a function map backed by the shared built-in
// table. Host extensions can be layered in afterward with Extend.
func NewFunctionMap() *FunctionMap {
	return &FunctionMap{builtin: builtinSignatures, extended: ordereddict.NewDict()}
}

// Extend registers or overrides a signature in the host layer, which
// is always consulted before the built-in table.
func (m *FunctionMap) Extend(sig *FunctionSignature) {
	m.extended.Set(sig.Name, sig)
}

// Lookup resolves name, preferring the host-extended layer.
func (m *FunctionMap) Lookup(name string) (*FunctionSignature, bool) {
	if raw, ok := m.extended.Get(name); ok {
		if sig, ok := raw.(*FunctionSignature); ok {
			return sig, true
		}
	}
	sig, ok := m.builtin[name]
	return sig, ok
}

// Enumerate lists all callable names, built-ins first, then the
// host-extended names in insertion order.
func (m *FunctionMap) Enumerate() []string {
	names := make([]string, 0, len(m.builtin)+m.extended.Len())
	for name := range m.builtin {
		names = append(names, name)
	}
	for _, name := range m.extended.Keys() {
		names = append(names, name)
	}
	return names
}

// resolveArgs matches positional and keyword arguments against sig's
// parameter list, fills in defaults, and enforces each parameter's
// type mask (spec §4.5, §4.6 "Call").
func resolveArgs(sig *FunctionSignature, positional []*Value, named map[string]*Value) ([]*Value, error) {
	if sig.Variadic {
		if len(named) > 0 {
			return nil, fmt.Errorf("%s(): keyword arguments not supported", sig.Name)
		}
		mask := MaskAny
		if len(sig.Params) > 0 {
			mask = sig.Params[0].Mask
		}
		for _, a := range positional {
			if a.Type().Mask()&mask == 0 {
				return nil, fmt.Errorf("%s(): argument expects type matching mask %#x, got %s", sig.Name, mask, a.Type())
			}
		}
		return positional, nil
	}

	out := make([]*Value, len(sig.Params))
	filled := make([]bool, len(sig.Params))

	if len(positional) > len(sig.Params) {
		return nil, fmt.Errorf("%s(): too many arguments (%d given, %d accepted)", sig.Name, len(positional), len(sig.Params))
	}
	for i, arg := range positional {
		out[i] = arg
		filled[i] = true
	}
	for name, arg := range named {
		idx := -1
		for i, p := range sig.Params {
			if p.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%s(): unknown argument name %q", sig.Name, name)
		}
		if filled[idx] {
			return nil, fmt.Errorf("%s(): argument %q given more than once", sig.Name, name)
		}
		out[idx] = arg
		filled[idx] = true
	}
	for i, p := range sig.Params {
		if filled[i] {
			continue
		}
		if !p.HasDefault {
			return nil, fmt.Errorf("%s(): missing required argument %q", sig.Name, p.Name)
		}
		out[i] = p.Default
		filled[i] = true
	}
	for i, p := range sig.Params {
		if out[i] == nil {
			continue
		}
		if out[i].Type().Mask()&p.Mask == 0 {
			return nil, fmt.Errorf("%s(): argument %q expects type matching mask %#x, got %s", sig.Name, p.Name, p.Mask, out[i].Type())
		}
	}
	return out, nil
}
