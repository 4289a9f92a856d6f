package interp

// Static integer singletons for the common small values named in
// spec §4.1 ("integer 0/1 ... bypass refcount accounting").
var (
	intZero = markStatic(&Value{typ: IntType, integer: []int64{0}})
	intOne  = markStatic(&Value{typ: IntType, integer: []int64{1}})

	emptyInt = markStatic(&Value{typ: IntType})
)

// NewInt builds an integer vector, returning a static singleton for
// the common scalar values 0 and 1.
func NewInt(vals ...int64) *Value {
	if len(vals) == 0 {
		return emptyInt
	}
	if len(vals) == 1 {
		switch vals[0] {
		case 0:
			return intZero
		case 1:
			return intOne
		}
	}
	v := newPooledValue(IntType)
	v.integer = append([]int64(nil), vals...)
	return v
}
