package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ValueType is the closed set of semantic types a Value can hold
// (spec §3). Every value is logically a vector of its element type.
type ValueType uint8

const (
	NullType ValueType = iota
	LogicalType
	IntType
	FloatType
	StringType
	ObjectType
)

func (t ValueType) String() string {
	switch t {
	case NullType:
		return "NULL"
	case LogicalType:
		return "logical"
	case IntType:
		return "integer"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case ObjectType:
		return "object"
	default:
		return "unknown"
	}
}

// TypeMask is a bitmask of ValueType, used by function/method
// signatures to describe acceptable argument and return types (C7).
type TypeMask uint8

const (
	MaskNull TypeMask = 1 << iota
	MaskLogical
	MaskInt
	MaskFloat
	MaskString
	MaskObject

	MaskNumeric = MaskLogical | MaskInt | MaskFloat
	MaskAny     = MaskNull | MaskLogical | MaskInt | MaskFloat | MaskString | MaskObject
)

func (t ValueType) Mask() TypeMask {
	switch t {
	case NullType:
		return MaskNull
	case LogicalType:
		return MaskLogical
	case IntType:
		return MaskInt
	case FloatType:
		return MaskFloat
	case StringType:
		return MaskString
	case ObjectType:
		return MaskObject
	default:
		return 0
	}
}

// Value is a vector-valued, reference-counted, pool-backed runtime
// value (spec §3). The zero Value is a well-formed empty NULL value,
// but production code should go through the pool via the New*
// constructors so refcounting and the free list stay consistent.
type Value struct {
	pool      *valuePool
	typ       ValueType
	invisible bool
	static    bool
	refcount  int32

	logical []bool
	integer []int64
	float   []float64
	str     []string
	object  []*ObjectElement
	class   *Class // set only when typ == ObjectType
}

// Type returns the value's element type.
func (v *Value) Type() ValueType { return v.typ }

// Count returns the number of elements in the value.
func (v *Value) Count() int {
	switch v.typ {
	case NullType:
		return 0
	case LogicalType:
		return len(v.logical)
	case IntType:
		return len(v.integer)
	case FloatType:
		return len(v.float)
	case StringType:
		return len(v.str)
	case ObjectType:
		return len(v.object)
	default:
		return 0
	}
}

// IsInvisible reports whether the value is flagged to suppress
// automatic printing of a top-level expression result.
func (v *Value) IsInvisible() bool { return v.invisible }

// Invert returns a value equal to v but marked invisible, copying
// first if v is not uniquely owned (copy-on-write, spec §4.2). NULL
// maps to the canonical InvisibleNullValue.
func (v *Value) Invert() *Value {
	if v.invisible {
		return v
	}
	if v.typ == NullType {
		return InvisibleNullValue
	}
	if isUnique(v) {
		v.invisible = true
		return v
	}
	cp := v.CopyValues()
	cp.invisible = true
	return cp
}

// markStatic marks v as a process-wide shared constant: its refcount
// saturates and Acquire/Release become no-ops (spec §4.1).
func markStatic(v *Value) *Value {
	v.static = true
	return v
}

// newPooledValue allocates a fresh chunk from the global pool for the
// given type; callers fill in the type-specific storage.
func newPooledValue(typ ValueType) *Value {
	v := globalValuePool.acquire()
	v.typ = typ
	v.pool = globalValuePool
	return v
}

// GetValueAtIndex returns a fresh (or shared-static) singleton value
// for element i.
func (v *Value) GetValueAtIndex(i int) (*Value, error) {
	if i < 0 || i >= v.Count() {
		return nil, fmt.Errorf("index %d out of range (count %d)", i, v.Count())
	}
	switch v.typ {
	case LogicalType:
		return NewLogical(v.logical[i]), nil
	case IntType:
		return NewInt(v.integer[i]), nil
	case FloatType:
		return NewFloat(v.float[i]), nil
	case StringType:
		return NewString(v.str[i]), nil
	case ObjectType:
		return NewObject(v.class, v.object[i]), nil
	default:
		return NullValue, nil
	}
}

// SetValueAtIndex writes element i in place. The caller must already
// hold a uniquely-owned value (refcount == 1); violating this is a
// programming error in the core, not a user-facing one.
func (v *Value) SetValueAtIndex(i int, elem *Value) error {
	if i < 0 || i >= v.Count() {
		return fmt.Errorf("index %d out of range (count %d)", i, v.Count())
	}
	if !isUnique(v) {
		return fmt.Errorf("internal invariant violated: SetValueAtIndex on shared value")
	}
	switch v.typ {
	case LogicalType:
		b, err := elem.asLogicalScalar()
		if err != nil {
			return err
		}
		v.logical[i] = b
	case IntType:
		n, err := elem.asIntScalar()
		if err != nil {
			return err
		}
		v.integer[i] = n
	case FloatType:
		f, err := elem.asFloatScalar()
		if err != nil {
			return err
		}
		v.float[i] = f
	case StringType:
		if elem.typ != StringType || elem.Count() != 1 {
			return fmt.Errorf("cannot assign non-scalar-string into string vector")
		}
		v.str[i] = elem.str[0]
	case ObjectType:
		if elem.typ != ObjectType || elem.Count() != 1 {
			return fmt.Errorf("cannot assign non-scalar-object into object vector")
		}
		v.object[i] = elem.object[0]
	default:
		return fmt.Errorf("cannot index into NULL")
	}
	return nil
}

// CopyValues returns a deep copy of v's element storage as a fresh,
// unshared (refcount 0) value.
func (v *Value) CopyValues() *Value {
	switch v.typ {
	case NullType:
		return v // NULL is a stateless singleton; sharing it is always safe.
	case LogicalType:
		cp := newPooledValue(LogicalType)
		cp.logical = append([]bool(nil), v.logical...)
		return cp
	case IntType:
		cp := newPooledValue(IntType)
		cp.integer = append([]int64(nil), v.integer...)
		return cp
	case FloatType:
		cp := newPooledValue(FloatType)
		cp.float = append([]float64(nil), v.float...)
		return cp
	case StringType:
		cp := newPooledValue(StringType)
		cp.str = append([]string(nil), v.str...)
		return cp
	case ObjectType:
		cp := newPooledValue(ObjectType)
		cp.object = append([]*ObjectElement(nil), v.object...)
		cp.class = v.class
		return cp
	default:
		return v
	}
}

// EnsureUnique returns v unchanged if it is uniquely owned, or a copy
// otherwise. This is the copy-on-write gate every in-place mutation
// must pass through (spec §4.2, §5).
func EnsureUnique(v *Value) *Value {
	if isUnique(v) {
		return v
	}
	return v.CopyValues()
}

// Compare orders element i of v against element j of other, following
// the element-type-aware rules of spec §4.2: strings lexicographic,
// floats with NaN unordered-but-equal-to-self for sort stability.
func (v *Value) Compare(other *Value, i, j int) (int, error) {
	if v.typ != other.typ {
		return 0, fmt.Errorf("cannot compare %s to %s", v.typ, other.typ)
	}
	switch v.typ {
	case LogicalType:
		a, b := v.logical[i], other.logical[j]
		return boolCompare(a, b), nil
	case IntType:
		a, b := v.integer[i], other.integer[j]
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case FloatType:
		a, b := v.float[i], other.float[j]
		return floatCompare(a, b), nil
	case StringType:
		return strings.Compare(v.str[i], other.str[j]), nil
	default:
		return 0, fmt.Errorf("values of type %s are not ordered", v.typ)
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func floatCompare(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// promote returns the lattice join of two element types: logical ≤
// integer ≤ float; string and object are incompatible with numeric
// and with each other (spec §4.2).
func promote(a, b ValueType) (ValueType, bool) {
	if a == b {
		return a, true
	}
	rank := func(t ValueType) int {
		switch t {
		case LogicalType:
			return 1
		case IntType:
			return 2
		case FloatType:
			return 3
		default:
			return -1
		}
	}
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return 0, false
	}
	if ra > rb {
		return a, true
	}
	return b, true
}

// AppendFrom appends other's elements to v, promoting types per the
// lattice. v must be uniquely owned.
func (v *Value) AppendFrom(other *Value) error {
	if !isUnique(v) {
		return fmt.Errorf("internal invariant violated: AppendFrom on shared value")
	}
	if other.typ == NullType || other.Count() == 0 {
		return nil
	}
	if v.typ == NullType {
		*v = *other.CopyValues()
		v.pool = globalValuePool
		v.refcount = 0
		v.static = false
		return nil
	}
	result, ok := promote(v.typ, other.typ)
	if !ok {
		return fmt.Errorf("cannot combine %s and %s", v.typ, other.typ)
	}
	if result != v.typ {
		if err := v.widenTo(result); err != nil {
			return err
		}
	}
	return v.appendPromoted(other, result)
}

// widenTo promotes v's own storage up the numeric lattice in place.
func (v *Value) widenTo(target ValueType) error {
	switch {
	case v.typ == LogicalType && target == IntType:
		ints := make([]int64, len(v.logical))
		for i, b := range v.logical {
			ints[i] = boolToInt(b)
		}
		v.logical = nil
		v.integer = ints
		v.typ = IntType
	case v.typ == LogicalType && target == FloatType:
		floats := make([]float64, len(v.logical))
		for i, b := range v.logical {
			floats[i] = boolToFloat(b)
		}
		v.logical = nil
		v.float = floats
		v.typ = FloatType
	case v.typ == IntType && target == FloatType:
		floats := make([]float64, len(v.integer))
		for i, n := range v.integer {
			floats[i] = float64(n)
		}
		v.integer = nil
		v.float = floats
		v.typ = FloatType
	default:
		return fmt.Errorf("cannot widen %s to %s", v.typ, target)
	}
	return nil
}

func (v *Value) appendPromoted(other *Value, target ValueType) error {
	switch target {
	case LogicalType:
		v.logical = append(v.logical, other.logical...)
	case IntType:
		switch other.typ {
		case IntType:
			v.integer = append(v.integer, other.integer...)
		case LogicalType:
			for _, b := range other.logical {
				v.integer = append(v.integer, boolToInt(b))
			}
		}
	case FloatType:
		switch other.typ {
		case FloatType:
			v.float = append(v.float, other.float...)
		case IntType:
			for _, n := range other.integer {
				v.float = append(v.float, float64(n))
			}
		case LogicalType:
			for _, b := range other.logical {
				v.float = append(v.float, boolToFloat(b))
			}
		}
	case StringType:
		if other.typ != StringType {
			return fmt.Errorf("cannot combine %s and string", other.typ)
		}
		v.str = append(v.str, other.str...)
	case ObjectType:
		if other.typ != ObjectType {
			return fmt.Errorf("cannot combine %s and object", other.typ)
		}
		v.object = append(v.object, other.object...)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// StreamTo writes the canonical textual form of v to out (spec §4.2;
// backs the print/cat/str builtins).
func (v *Value) StreamTo(out io.Writer) error {
	switch v.typ {
	case NullType:
		_, err := io.WriteString(out, "NULL")
		return err
	case LogicalType:
		return streamElements(out, len(v.logical), func(i int) string {
			if v.logical[i] {
				return "T"
			}
			return "F"
		})
	case IntType:
		return streamElements(out, len(v.integer), func(i int) string {
			return strconv.FormatInt(v.integer[i], 10)
		})
	case FloatType:
		return streamElements(out, len(v.float), func(i int) string {
			return formatFloat(v.float[i])
		})
	case StringType:
		return streamElements(out, len(v.str), func(i int) string {
			return quoteEidosString(v.str[i])
		})
	case ObjectType:
		name := "object"
		if v.class != nil {
			name = v.class.Name
		}
		_, err := fmt.Fprintf(out, "%s<%d>", name, len(v.object))
		return err
	default:
		return nil
	}
}

func streamElements(out io.Writer, n int, at func(int) string) error {
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := io.WriteString(out, " "); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, at(i)); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func quoteEidosString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// String implements fmt.Stringer for debugging convenience only; the
// canonical user-visible form always goes through StreamTo.
func (v *Value) String() string {
	var b strings.Builder
	_ = v.StreamTo(&b)
	return b.String()
}

func (v *Value) asLogicalScalar() (bool, error) {
	switch v.typ {
	case LogicalType:
		if v.Count() != 1 {
			return false, fmt.Errorf("expected a singleton logical value")
		}
		return v.logical[0], nil
	default:
		return false, fmt.Errorf("cannot coerce %s to logical", v.typ)
	}
}

func (v *Value) asIntScalar() (int64, error) {
	if v.Count() != 1 {
		return 0, fmt.Errorf("expected a singleton numeric value")
	}
	switch v.typ {
	case IntType:
		return v.integer[0], nil
	case LogicalType:
		return boolToInt(v.logical[0]), nil
	case FloatType:
		f := v.float[0]
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("cannot coerce non-finite float to integer")
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("cannot coerce %s to integer", v.typ)
	}
}

func (v *Value) asFloatScalar() (float64, error) {
	if v.Count() != 1 {
		return 0, fmt.Errorf("expected a singleton numeric value")
	}
	switch v.typ {
	case FloatType:
		return v.float[0], nil
	case IntType:
		return float64(v.integer[0]), nil
	case LogicalType:
		return boolToFloat(v.logical[0]), nil
	default:
		return 0, fmt.Errorf("cannot coerce %s to float", v.typ)
	}
}

func (v *Value) asStringScalar() (string, error) {
	if v.typ != StringType || v.Count() != 1 {
		return "", fmt.Errorf("expected a singleton string value")
	}
	return v.str[0], nil
}

// AsBool reports the truthiness of a singleton logical value, used by
// if/while/do conditions.
func (v *Value) AsBool() (bool, error) {
	if v.typ != LogicalType || v.Count() != 1 {
		return false, fmt.Errorf("condition must be a singleton logical, got %s[%d]", v.typ, v.Count())
	}
	return v.logical[0], nil
}
