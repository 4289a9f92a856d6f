package interp

// NullValue and InvisibleNullValue are the two canonical, process-wide
// NULL instances (spec §3: "there is a canonical non-invisible and a
// canonical invisible instance shared process-wide"). Null carries no
// element storage, so both share the same zero-length representation.
var (
	NullValue          = markStatic(&Value{typ: NullType})
	InvisibleNullValue = markStatic(&Value{typ: NullType, invisible: true})
)

// Null returns the canonical NULL singleton for the requested
// invisibility.
func Null(invisible bool) *Value {
	if invisible {
		return InvisibleNullValue
	}
	return NullValue
}
