package interp

import "math"

// Intrinsic float constants (spec §4.4: PI, E, INF, NAN).
const (
	piValue = math.Pi
	eValue  = math.E
)

var (
	infValue = math.Inf(1)
	nanValue = math.NaN()
)

// Static float singletons named in spec §4.1 ("float 0/0.5/1/∞").
var (
	floatZero  = markStatic(&Value{typ: FloatType, float: []float64{0}})
	floatHalf  = markStatic(&Value{typ: FloatType, float: []float64{0.5}})
	floatOne   = markStatic(&Value{typ: FloatType, float: []float64{1}})
	floatInf   = markStatic(&Value{typ: FloatType, float: []float64{math.Inf(1)}})
	floatNInf  = markStatic(&Value{typ: FloatType, float: []float64{math.Inf(-1)}})
	floatNaNV  = markStatic(&Value{typ: FloatType, float: []float64{math.NaN()}})
	emptyFloat = markStatic(&Value{typ: FloatType})
)

// NewFloat builds a float vector, returning a static singleton for
// the common scalar constants.
func NewFloat(vals ...float64) *Value {
	if len(vals) == 0 {
		return emptyFloat
	}
	if len(vals) == 1 {
		switch f := vals[0]; {
		case f == 0:
			return floatZero
		case f == 0.5:
			return floatHalf
		case f == 1:
			return floatOne
		case math.IsInf(f, 1):
			return floatInf
		case math.IsInf(f, -1):
			return floatNInf
		case math.IsNaN(f):
			return floatNaNV
		}
	}
	v := newPooledValue(FloatType)
	v.float = append([]float64(nil), vals...)
	return v
}
