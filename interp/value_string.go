package interp

var emptyString = markStatic(&Value{typ: StringType})

// NewString builds a string vector. Strings are never static even as
// scalars, since there is no small closed set of canonical strings to
// share (spec §4.1 names only logical/null/numeric constants).
func NewString(vals ...string) *Value {
	if len(vals) == 0 {
		return emptyString
	}
	v := newPooledValue(StringType)
	v.str = append([]string(nil), vals...)
	return v
}
