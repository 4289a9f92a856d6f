package interp

import (
	"fmt"
	"sort"

	"github.com/Velocidex/ordereddict"
)

// PropertySpec is one entry of an element class's property surface: a
// getter, an optional setter (nil means read-only), and the type mask
// the property's value must satisfy (spec §6, "Element class
// descriptor").
type PropertySpec struct {
	Name   string
	Mask   TypeMask
	Getter func(elem *ObjectElement) (*Value, error)
	Setter func(elem *ObjectElement, v *Value) error
}

// Class is the host-supplied, read-only descriptor an object value's
// elements point to: identity, display name, and the enumerable
// property/method lists used to resolve `.` and method-call dispatch
// (spec §3, §4.6, §6).
type Class struct {
	Name       string
	Properties map[string]*PropertySpec
	Methods    map[string]*FunctionSignature
}

// Property looks up a property by name.
func (c *Class) Property(name string) (*PropertySpec, bool) {
	p, ok := c.Properties[name]
	return p, ok
}

// Method looks up a method signature by name.
func (c *Class) Method(name string) (*FunctionSignature, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// PropertyNames returns the class's property names in sorted order,
// for diagnostics and introspection builtins.
func (c *Class) PropertyNames() []string {
	names := make([]string, 0, len(c.Properties))
	for n := range c.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// dictionaryClass backs the built-in Dictionary-like object value: a
// string-keyed heterogeneous bag over an insertion-ordered map,
// grounded on the ordereddict.Dict usage pattern in the pack's
// Velocidex/vfilter scope model (types/scope.go's Stats.Snapshot).
var dictionaryClass = &Class{
	Name: "Dictionary",
	Properties: map[string]*PropertySpec{
		"allKeys": {
			Mask: MaskString,
			Getter: func(elem *ObjectElement) (*Value, error) {
				d := elem.Data.(*ordereddict.Dict)
				return NewString(d.Keys()...), nil
			},
		},
	},
	Methods: map[string]*FunctionSignature{
		"getValue": {
			Name:       "getValue",
			ReturnMask: MaskAny,
			Params:     []ParamSpec{{Name: "key", Mask: MaskString}},
			internal: func(ip *Interpreter, args []*Value) (*Value, error) {
				return nil, fmt.Errorf("getValue must be called on a Dictionary instance")
			},
		},
		"setValue": {
			Name:       "setValue",
			ReturnMask: MaskNull,
			Params:     []ParamSpec{{Name: "key", Mask: MaskString}, {Name: "value", Mask: MaskAny}},
			internal: func(ip *Interpreter, args []*Value) (*Value, error) {
				return nil, fmt.Errorf("setValue must be called on a Dictionary instance")
			},
		},
	},
}

// NewDictionaryElement wraps an *ordereddict.Dict as an object element
// of the built-in Dictionary class.
func NewDictionaryElement(d *ordereddict.Dict) *ObjectElement {
	return &ObjectElement{Class: dictionaryClass, Data: d}
}

// NewDictionary returns a fresh empty Dictionary object value.
func NewDictionary() *Value {
	return NewObject(dictionaryClass, NewDictionaryElement(ordereddict.NewDict()))
}

// DictionaryGet resolves dict.getValue(key) directly against the
// backing ordereddict.Dict, used by the "getValue" method dispatch
// path in eval_expr.go (methods that need access to the live element,
// not just its declared signature, are dispatched by name here rather
// than through FunctionSignature.internal).
func DictionaryGet(elem *ObjectElement, key string) (*Value, bool) {
	d, ok := elem.Data.(*ordereddict.Dict)
	if !ok {
		return nil, false
	}
	raw, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	v, ok := raw.(*Value)
	return v, ok
}

// DictionarySet installs key=value into the backing dict.
func DictionarySet(elem *ObjectElement, key string, value *Value) {
	d := elem.Data.(*ordereddict.Dict)
	d.Set(key, value)
}
