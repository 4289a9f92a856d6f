package interp

import (
	"fmt"
	"io"
	"strings"
)

// builtinSignatures is the immutable, shared built-in function table
// (spec §4.5: "computed once at warmup and shared"). It is filled in
// by initBuiltins, called from Warmup.
var builtinSignatures = map[string]*FunctionSignature{}

func registerBuiltin(sig *FunctionSignature) {
	builtinSignatures[sig.Name] = sig
}

// initBuiltins populates builtinSignatures. Besides the handful of
// read/write and vector-construction builtins spec.md names directly
// (StreamTo backs print/cat/str, AppendFrom backs c()), it also
// registers size/length/seq/rep/paste/exists, which spec §11 derives
// from the value-model contracts and scenario 5's `exists` reference.
func initBuiltins() {
	builtinSignatures = map[string]*FunctionSignature{}

	registerBuiltin(&FunctionSignature{
		Name:       "print",
		ReturnMask: MaskNull,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			if err := args[0].StreamTo(ip.stdout()); err != nil {
				return nil, err
			}
			_, err := io.WriteString(ip.stdout(), "\n")
			return InvisibleNullValue, err
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "cat",
		ReturnMask: MaskNull,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}, {Name: "sep", Mask: MaskString, HasDefault: true, Default: NewString(" ")}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			if err := args[0].StreamTo(ip.stdout()); err != nil {
				return nil, err
			}
			return InvisibleNullValue, nil
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "str",
		ReturnMask: MaskString,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			var b strings.Builder
			if err := args[0].StreamTo(&b); err != nil {
				return nil, err
			}
			return NewString(b.String()), nil
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "paste",
		ReturnMask: MaskString,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}, {Name: "sep", Mask: MaskString, HasDefault: true, Default: NewString(" ")}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			sep := args[1].str[0]
			parts := make([]string, args[0].Count())
			for i := range parts {
				elem, err := args[0].GetValueAtIndex(i)
				if err != nil {
					return nil, err
				}
				var b strings.Builder
				if err := elem.StreamTo(&b); err != nil {
					return nil, err
				}
				parts[i] = b.String()
			}
			return NewString(strings.Join(parts, sep)), nil
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "c",
		ReturnMask: MaskAny,
		Params:     []ParamSpec{{Name: "values", Mask: MaskAny}},
		Variadic:   true,
		internal:   biConcat,
	})

	registerBuiltin(&FunctionSignature{
		Name:       "size",
		ReturnMask: MaskInt,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			return NewInt(int64(args[0].Count())), nil
		},
	})
	registerBuiltin(&FunctionSignature{
		Name:       "length",
		ReturnMask: MaskInt,
		Params:     []ParamSpec{{Name: "x", Mask: MaskAny}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			return NewInt(int64(args[0].Count())), nil
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "seq",
		ReturnMask: MaskInt | MaskFloat,
		Params: []ParamSpec{
			{Name: "from", Mask: MaskNumeric},
			{Name: "to", Mask: MaskNumeric},
			{Name: "by", Mask: MaskNumeric, HasDefault: true, Default: NewInt(1)},
		},
		internal: biSeq,
	})

	registerBuiltin(&FunctionSignature{
		Name:       "rep",
		ReturnMask: MaskAny,
		Params: []ParamSpec{
			{Name: "x", Mask: MaskAny},
			{Name: "count", Mask: MaskInt},
		},
		internal: biRep,
	})

	registerBuiltin(&FunctionSignature{
		Name:       "exists",
		ReturnMask: MaskLogical,
		Params:     []ParamSpec{{Name: "symbol", Mask: MaskString}},
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			name := args[0].str[0]
			id, ok := globalInterner.Lookup(name)
			if !ok {
				return FalseValue, nil
			}
			return LogicalSingleton(ip.vars.ContainsSymbol(id)), nil
		},
	})

	registerBuiltin(&FunctionSignature{
		Name:       "Dictionary",
		ReturnMask: MaskObject,
		Params:     nil,
		internal: func(ip *Interpreter, args []*Value) (*Value, error) {
			return NewDictionary(), nil
		},
	})
}

func biConcat(ip *Interpreter, args []*Value) (*Value, error) {
	result := Null(false)
	for _, a := range args {
		if a.typ == NullType {
			continue
		}
		if result.typ == NullType {
			result = a.CopyValues()
			continue
		}
		if err := result.AppendFrom(a); err != nil {
			return nil, fmt.Errorf("c(): %w", err)
		}
	}
	return result, nil
}

func biSeq(ip *Interpreter, args []*Value) (*Value, error) {
	from, err := args[0].asIntScalar()
	if err != nil {
		return nil, fmt.Errorf("seq(): non-finite or non-scalar endpoint: %w", err)
	}
	to, err := args[1].asIntScalar()
	if err != nil {
		return nil, fmt.Errorf("seq(): non-finite or non-scalar endpoint: %w", err)
	}
	by, err := args[2].asIntScalar()
	if err != nil || by == 0 {
		return nil, fmt.Errorf("seq(): step must be a nonzero finite scalar")
	}
	return buildIntSequence(from, to, by)
}

func buildIntSequence(from, to, by int64) (*Value, error) {
	if by > 0 && from > to {
		return nil, fmt.Errorf("seq(): positive step but from > to")
	}
	if by < 0 && from < to {
		return nil, fmt.Errorf("seq(): negative step but from < to")
	}
	var out []int64
	if by > 0 {
		for n := from; n <= to; n += by {
			out = append(out, n)
		}
	} else {
		for n := from; n >= to; n += by {
			out = append(out, n)
		}
	}
	return NewInt(out...), nil
}

func biRep(ip *Interpreter, args []*Value) (*Value, error) {
	count, err := args[1].asIntScalar()
	if err != nil || count < 0 {
		return nil, fmt.Errorf("rep(): count must be a nonnegative scalar integer")
	}
	result := Null(false)
	src := args[0]
	if src.typ != NullType {
		result = src.CopyValues()
		for i := int64(1); i < count; i++ {
			if err := result.AppendFrom(src); err != nil {
				return nil, err
			}
		}
		if count == 0 {
			result = emptyOfType(src.typ)
		}
	}
	return result, nil
}

func emptyOfType(t ValueType) *Value {
	switch t {
	case LogicalType:
		return emptyLogical
	case IntType:
		return emptyInt
	case FloatType:
		return emptyFloat
	case StringType:
		return emptyString
	default:
		return Null(false)
	}
}
