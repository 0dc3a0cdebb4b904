// FILE: lixenwraith/mapconf/resolve.go
package mapconf

import (
	"reflect"
)

// FieldDescriptor describes one field declared on an entity type.
type FieldDescriptor struct {
	Name     string
	Type     reflect.Type
	Index    []int
	Tag      reflect.StructTag
	Exported bool
}

// Describe lists the fields declared directly on t, in declaration order.
// Pointers are dereferenced; anything that is not a struct has no fields.
// Embedded structs are reported as a single field, their members are not
// promoted.
func Describe(t reflect.Type) []FieldDescriptor {
	t = baseType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]FieldDescriptor, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fields = append(fields, FieldDescriptor{
			Name:     sf.Name,
			Type:     sf.Type,
			Index:    sf.Index,
			Tag:      sf.Tag,
			Exported: sf.IsExported(),
		})
	}
	return fields
}

// DescribeValue is Describe for the dynamic type of v.
func DescribeValue(v any) []FieldDescriptor {
	if v == nil {
		return nil
	}
	return Describe(reflect.TypeOf(v))
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Binding is the resolved association of one field: the key it is known by
// externally and the accessor methods found for it, if any.
type Binding struct {
	Field       FieldDescriptor
	ExternalKey string
	Getter      *reflect.Method
	Setter      *reflect.Method
}

// Resolver works out how entity fields map to external keys and accessor
// methods. The zero value uses the MapKey annotation.
type Resolver struct {
	// Kind is the annotation kind holding an explicit external key.
	Kind string
}

func (r Resolver) kind() string {
	if r.Kind == "" {
		return MapKeyAnnotation
	}
	return r.Kind
}

// ExternalKey returns the key field is addressed by in a map. A non-empty
// annotation wins over a non-empty entry in overrides (keyed by field name),
// which wins over the field name itself.
func (r Resolver) ExternalKey(field FieldDescriptor, overrides map[string]string) string {
	if anno, ok := ResolveAnnotation(FieldTarget(field), r.kind()); ok {
		if kv, ok := anno.(keyValuer); ok {
			if key := kv.KeyValue(); key != "" {
				return key
			}
		}
	}

	if key := overrides[field.Name]; key != "" {
		return key
	}
	return field.Name
}

// ValueForField finds the value for field in m. Keys are compared normalized,
// and a leading "is" is optional on either side, so a field "active" matches
// the key "is_active" and a field "isActive" matches "active".
func (r Resolver) ValueForField(m map[string]any, field FieldDescriptor, overrides map[string]string) (any, bool) {
	if len(m) == 0 {
		return nil, false
	}

	want := NormalizeKey(r.ExternalKey(field, overrides))
	if want == "" {
		return nil, false
	}

	for k, v := range m {
		if k == "" {
			continue
		}
		if equalIgnoringIs(NormalizeKey(k), want) {
			return v, true
		}
	}
	return nil, false
}

// methodsOf lists the exported methods callable on a *T, which includes the
// value-receiver methods of T.
func methodsOf(t reflect.Type) []reflect.Method {
	t = baseType(t)
	if t == nil {
		return nil
	}
	pt := reflect.PointerTo(t)
	methods := make([]reflect.Method, 0, pt.NumMethod())
	for i := 0; i < pt.NumMethod(); i++ {
		methods = append(methods, pt.Method(i))
	}
	return methods
}

// Getter finds the read accessor for field among candidates, or among the
// method set of *t when candidates is empty. Candidates are methods obtained
// from a reflect.Type, so In(0) is the receiver.
//
// A method named "Get"+Field is preferred. Failing that, a method whose
// normalized name equals the field name with an optional leading "is" is
// accepted: IsActive for field active, or Name for field name. In strict mode
// the first result must be of exactly the field's type.
func (r Resolver) Getter(t reflect.Type, field FieldDescriptor, candidates []reflect.Method, strict bool) (reflect.Method, bool) {
	if len(candidates) == 0 {
		candidates = methodsOf(t)
	}
	if field.Name == "" || len(candidates) == 0 {
		return reflect.Method{}, false
	}

	usable := func(m reflect.Method) bool {
		mt := m.Type
		if mt == nil || mt.NumIn() != 1 || mt.NumOut() < 1 {
			return false
		}
		return !strict || mt.Out(0) == field.Type
	}

	getName := "Get" + upperFirst(field.Name)
	for _, m := range candidates {
		if m.Name == getName && usable(m) {
			return m, true
		}
	}

	want := NormalizeKey(field.Name)
	for _, m := range candidates {
		if usable(m) && ensureIs(NormalizeKey(m.Name)) == ensureIs(want) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// Setter finds the write accessor for field: a method named "Set"+Field taking
// exactly one argument. In strict mode that argument must be of exactly the
// field's type.
func (r Resolver) Setter(t reflect.Type, field FieldDescriptor, candidates []reflect.Method, strict bool) (reflect.Method, bool) {
	if len(candidates) == 0 {
		candidates = methodsOf(t)
	}
	if field.Name == "" {
		return reflect.Method{}, false
	}

	setName := "Set" + upperFirst(field.Name)
	for _, m := range candidates {
		mt := m.Type
		if mt == nil || mt.NumIn() != 2 || m.Name != setName {
			continue
		}
		if strict && mt.In(1) != field.Type {
			continue
		}
		return m, true
	}
	return reflect.Method{}, false
}

// Bind resolves the external key and both accessors of field on t.
func (r Resolver) Bind(t reflect.Type, field FieldDescriptor, overrides map[string]string, strict bool) Binding {
	b := Binding{Field: field, ExternalKey: r.ExternalKey(field, overrides)}
	methods := methodsOf(t)
	if m, ok := r.Getter(t, field, methods, strict); ok {
		b.Getter = &m
	}
	if m, ok := r.Setter(t, field, methods, strict); ok {
		b.Setter = &m
	}
	return b
}

// BindAll binds every field of t in declaration order.
func (r Resolver) BindAll(t reflect.Type, overrides map[string]string, strict bool) []Binding {
	fields := Describe(t)
	bindings := make([]Binding, 0, len(fields))
	for _, f := range fields {
		bindings = append(bindings, r.Bind(t, f, overrides, strict))
	}
	return bindings
}
