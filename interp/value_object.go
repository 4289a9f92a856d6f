package interp

// ObjectElement is one element of an object-typed Value: an opaque
// host-defined payload plus a back-pointer to the class descriptor
// that resolves its property/method surface (spec §3, §6).
type ObjectElement struct {
	Class *Class
	Data  interface{}
}

func emptyObject(class *Class) *Value {
	v := markStatic(&Value{typ: ObjectType, class: class})
	return v
}

// NewObject builds an object vector of the given class.
func NewObject(class *Class, elems ...*ObjectElement) *Value {
	if len(elems) == 0 {
		return emptyObject(class)
	}
	v := newPooledValue(ObjectType)
	v.class = class
	v.object = append([]*ObjectElement(nil), elems...)
	return v
}

// Class returns the element class descriptor of an object value, or
// nil for non-object values.
func (v *Value) ElementClass() *Class { return v.class }
