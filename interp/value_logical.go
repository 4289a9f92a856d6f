package interp

// TrueValue and FalseValue are the process-wide shared logical
// singletons (spec §3): "they are never mutated and their refcount is
// frozen." Every call to NewLogical(true)/NewLogical(false) for a
// scalar returns these directly instead of allocating.
var (
	TrueValue  = markStatic(&Value{typ: LogicalType, logical: []bool{true}})
	FalseValue = markStatic(&Value{typ: LogicalType, logical: []bool{false}})

	emptyLogical = markStatic(&Value{typ: LogicalType})
)

// NewLogical builds a logical vector. A single-element call returns
// the shared T/F static singleton.
func NewLogical(vals ...bool) *Value {
	if len(vals) == 0 {
		return emptyLogical
	}
	if len(vals) == 1 {
		if vals[0] {
			return TrueValue
		}
		return FalseValue
	}
	v := newPooledValue(LogicalType)
	v.logical = append([]bool(nil), vals...)
	return v
}

// LogicalSingleton returns the shared T or F instance for b.
func LogicalSingleton(b bool) *Value {
	if b {
		return TrueValue
	}
	return FalseValue
}
