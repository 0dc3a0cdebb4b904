// FILE: lixenwraith/mapconf/mapper.go
package mapconf

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/mapconf/cast"
	"github.com/lixenwraith/mapconf/units"
)

// Mapper converts between flat maps and struct entities. Mapping is best
// effort: a field that cannot be read or assigned is skipped, never fatal.
// A Mapper holds no mutable state and is safe for concurrent use.
type Mapper struct {
	resolver Resolver
	logger   zerolog.Logger
	strict   bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger that receives skipped-field events at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Mapper) { m.logger = logger }
}

// WithResolver replaces the field resolver, e.g. Resolver{Kind: "json"} to take
// external keys from json tags.
func WithResolver(r Resolver) Option {
	return func(m *Mapper) { m.resolver = r }
}

// WithStrictAccessors requires accessor methods used for unexported fields to
// match the field type exactly.
func WithStrictAccessors(strict bool) Option {
	return func(m *Mapper) { m.strict = strict }
}

// NewMapper creates a Mapper. Without options it logs nothing, uses the MapKey
// annotation and matches accessors loosely.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMapper = NewMapper()

// SkippedField records a map entry that could not be applied to a field.
type SkippedField struct {
	Key   string
	Field string
	Err   error
}

// Result reports what FromMap did. Err is set only for structural failures,
// when the entity cannot be mapped at all.
type Result struct {
	Assigned []string
	Skipped  []SkippedField
	Err      error
}

// OK reports whether every matching entry was applied.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Skipped) == 0
}

// FromMap applies data to the struct pointed to by entity.
//
// Keys are first rewritten into camelCase field names ("max-retries" becomes
// "maxRetries") and typed markers are expanded. Each resulting key is then
// matched to a field by exact name, by its exported spelling ("MaxRetries"),
// and finally by normalized comparison with the field name or its external
// key. Keys naming no field are ignored, fields without a key keep their
// value. Exported fields are assigned with weak conversion; unexported fields
// go through their setter when one exists.
func (m *Mapper) FromMap(entity any, data map[string]any) Result {
	rv := reflect.ValueOf(entity)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return Result{Err: fmt.Errorf("%w: FromMap requires a non-nil struct pointer, got %T", ErrInvalidTarget, entity)}
	}

	t := rv.Elem().Type()
	fields := Describe(t)
	var res Result

	for _, entry := range rewriteKeys(data) {
		field, ok := m.matchField(fields, entry.key)
		if !ok {
			continue
		}

		if err := m.assign(rv, field, entry); err != nil {
			res.Skipped = append(res.Skipped, SkippedField{Key: entry.key, Field: field.Name, Err: err})
			m.logger.Debug().
				Str("type", t.String()).
				Str("field", field.Name).
				Str("key", entry.key).
				Stringer("marker", entry.marker).
				Err(err).
				Msg("Field skipped")
			continue
		}
		res.Assigned = append(res.Assigned, field.Name)
	}
	return res
}

func (m *Mapper) matchField(fields []FieldDescriptor, key string) (FieldDescriptor, bool) {
	exported := upperFirst(key)
	for _, f := range fields {
		if f.Name == key {
			return f, true
		}
	}
	for _, f := range fields {
		if f.Name == exported {
			return f, true
		}
	}

	norm := NormalizeKey(key)
	for _, f := range fields {
		if NormalizeKey(f.Name) == norm {
			return f, true
		}
	}
	for _, f := range fields {
		if NormalizeKey(m.resolver.ExternalKey(f, nil)) == norm {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// assign sets one field, converting any panic into an error.
func (m *Mapper) assign(ptr reflect.Value, field FieldDescriptor, entry rekeyed) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTypeMismatch, r)
		}
	}()

	fv := ptr.Elem().FieldByIndex(field.Index)
	if field.Exported && fv.CanSet() {
		return convertInto(fv, entry.value)
	}

	setter, ok := m.resolver.Setter(ptr.Type(), field, nil, m.strict)
	if !ok {
		return ErrFieldNotSettable
	}
	arg := reflect.New(setter.Type.In(1)).Elem()
	if err := convertInto(arg, entry.value); err != nil {
		return err
	}
	setter.Func.Call([]reflect.Value{ptr, arg})
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// convertInto stores value in dst, converting where the conversion is
// lossless in intent: assignable values, numeric to numeric, text to text,
// then a weakly typed decode for everything else. Numbers assigned to a
// time.Duration are seconds.
func convertInto(dst reflect.Value, value any) error {
	if value == nil {
		switch dst.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return fmt.Errorf("%w: nil for %s", ErrTypeMismatch, dst.Type())
	}

	sv := reflect.ValueOf(value)
	if dst.Type() == durationType && sv.Type() != durationType && sameFamily(sv.Kind(), reflect.Int64) {
		// Plain numbers, including expanded duration markers, count seconds
		dst.SetInt(int64(units.FromSeconds(cast.ToFloat(value, 0))))
		return nil
	}

	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	if sameFamily(sv.Kind(), dst.Kind()) && sv.Type().ConvertibleTo(dst.Type()) {
		if isUnsigned(dst.Kind()) && isNegative(sv) {
			return fmt.Errorf("%w: %v is negative for %s", ErrTypeMismatch, value, dst.Type())
		}
		converted := sv.Convert(dst.Type())
		// Round-trip to reject truncation and overflow
		if !reflect.DeepEqual(converted.Convert(sv.Type()).Interface(), sv.Interface()) {
			return fmt.Errorf("%w: %v cannot be represented as %s", ErrTypeMismatch, value, dst.Type())
		}
		dst.Set(converted)
		return nil
	}

	target := reflect.New(dst.Type())
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		WeaklyTypedInput: true,
		DecodeHook:       valueDecodeHook(),
		MatchName:        KeysEqual,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	dst.Set(target.Elem())
	return nil
}

func sameFamily(a, b reflect.Kind) bool {
	family := func(k reflect.Kind) int {
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return 1
		case reflect.String:
			return 2
		case reflect.Bool:
			return 3
		}
		return 0
	}
	fa := family(a)
	return fa != 0 && fa == family(b)
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNegative(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() < 0
	case reflect.Float32, reflect.Float64:
		return v.Float() < 0
	}
	return false
}

// Pair is one entry of an ordered map rendering.
type Pair struct {
	Key   string
	Value any
}

// ToMap renders the fields declared on the dynamic type of entity as a map
// keyed by each field's external key (see Resolver.ExternalKey). Exported
// fields are read directly, unexported fields through their getter; fields
// that cannot be read are skipped. With ignoreNull, nil pointers, maps,
// slices and interfaces are left out. A non-struct entity yields an empty map.
func (m *Mapper) ToMap(entity any, overrides map[string]string, ignoreNull bool) map[string]any {
	pairs := m.ToPairs(entity, overrides, ignoreNull)
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out
}

// ToPairs is ToMap preserving field declaration order.
func (m *Mapper) ToPairs(entity any, overrides map[string]string, ignoreNull bool) []Pair {
	ptr, ok := addressable(entity)
	if !ok {
		return []Pair{}
	}

	fields := Describe(ptr.Type())
	pairs := make([]Pair, 0, len(fields))
	for _, f := range fields {
		value, err := m.read(ptr, f)
		if err != nil {
			m.logger.Debug().
				Str("type", ptr.Type().Elem().String()).
				Str("field", f.Name).
				Err(err).
				Msg("Field not readable")
			continue
		}
		if ignoreNull && isNull(value) {
			continue
		}
		key := m.resolver.ExternalKey(f, overrides)
		if key == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs
}

// addressable returns a pointer to the struct held by entity, copying it when
// entity is a struct value so that pointer-receiver getters can be called.
func addressable(entity any) (reflect.Value, bool) {
	rv := reflect.ValueOf(entity)
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	for rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		return rv, true
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return ptr, true
}

func (m *Mapper) read(ptr reflect.Value, field FieldDescriptor) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFieldNotReadable, r)
		}
	}()

	if field.Exported {
		return ptr.Elem().FieldByIndex(field.Index).Interface(), nil
	}

	getter, ok := m.resolver.Getter(ptr.Type(), field, nil, m.strict)
	if !ok {
		return nil, ErrFieldNotReadable
	}
	out := getter.Func.Call([]reflect.Value{ptr})
	return out[0].Interface(), nil
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// ToMapper is implemented by entities that render themselves as maps.
type ToMapper interface {
	ToMap(overrides map[string]string, ignoreNull bool) map[string]any
}

// MapOf renders v through its own ToMap method when it has one, otherwise
// through the default Mapper.
func MapOf(v any, overrides map[string]string, ignoreNull bool) map[string]any {
	if tm, ok := v.(ToMapper); ok {
		return tm.ToMap(overrides, ignoreNull)
	}
	return defaultMapper.ToMap(v, overrides, ignoreNull)
}

// FromMap applies data to entity with the default Mapper.
func FromMap(entity any, data map[string]any) Result {
	return defaultMapper.FromMap(entity, data)
}

// ToMap renders entity with the default Mapper.
func ToMap(entity any, overrides map[string]string, ignoreNull bool) map[string]any {
	return defaultMapper.ToMap(entity, overrides, ignoreNull)
}
