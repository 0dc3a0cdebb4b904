// FILE: lixenwraith/mapconf/annotation.go
package mapconf

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structtag"
)

// MapKeyAnnotation is the annotation kind that carries an explicit external
// key. On a struct field it is written as a `mapkey:"uid"` tag.
const MapKeyAnnotation = "MapKey"

// Annotator is implemented by entity types that attach metadata to members
// which cannot carry struct tags. The returned table is keyed by member:
// "" for the type itself, a method name for a method, and "Method#N" for the
// N-th argument of a method (receiver excluded, counted from 0).
type Annotator interface {
	Annotations() map[string]reflect.StructTag
}

// MapKey is the rebuilt form of a mapkey annotation.
type MapKey struct {
	Value string
}

// KeyValue returns the external key the annotation names.
func (k MapKey) KeyValue() string { return k.Value }

// Tag is the rebuilt form of an annotation whose kind has no registered
// factory. Key is the tag key, Name the first comma-separated element and
// Options the rest.
type Tag struct {
	Key     string
	Name    string
	Options []string
}

// KeyValue returns the tag name, so a `json:"user_id"` tag can serve as an
// external key when the resolver is configured with the "json" kind.
func (t *Tag) KeyValue() string { return t.Name }

// keyValuer is satisfied by annotations that name an external key.
type keyValuer interface {
	KeyValue() string
}

// AnnotationFactory rebuilds an annotation from its recorded arguments.
type AnnotationFactory func(name string, options []string) (any, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]AnnotationFactory{
		"mapkey": func(name string, _ []string) (any, error) {
			return MapKey{Value: name}, nil
		},
	}
)

// RegisterAnnotation installs the factory used to rebuild annotations whose tag
// key equals key (case-insensitive). Registering nil removes the factory.
// Registration is meant for init time.
func RegisterAnnotation(key string, factory AnnotationFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	key = strings.ToLower(key)
	if factory == nil {
		delete(factories, key)
		return
	}
	factories[key] = factory
}

func lookupFactory(key string) AnnotationFactory {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	return factories[strings.ToLower(key)]
}

// AnnotationTarget is a member whose metadata can be searched.
type AnnotationTarget struct {
	label string
	tag   reflect.StructTag
}

// String names the target for log output.
func (t AnnotationTarget) String() string { return t.label }

// FieldTarget targets a described field.
func FieldTarget(f FieldDescriptor) AnnotationTarget {
	return AnnotationTarget{label: "field " + f.Name, tag: f.Tag}
}

// StructFieldTarget targets a raw struct field.
func StructFieldTarget(f reflect.StructField) AnnotationTarget {
	return AnnotationTarget{label: "field " + f.Name, tag: f.Tag}
}

// TypeTarget targets the type itself through its Annotator table.
func TypeTarget(t reflect.Type) AnnotationTarget {
	return AnnotationTarget{label: "type " + typeName(t), tag: annotationsOf(t)[""]}
}

// MethodTarget targets a method through the Annotator table of t.
func MethodTarget(t reflect.Type, method string) AnnotationTarget {
	return AnnotationTarget{label: "method " + method, tag: annotationsOf(t)[method]}
}

// ParamTarget targets argument i of a method through the Annotator table of t.
func ParamTarget(t reflect.Type, method string, i int) AnnotationTarget {
	member := fmt.Sprintf("%s#%d", method, i)
	return AnnotationTarget{label: "param " + member, tag: annotationsOf(t)[member]}
}

// annotationsOf asks a fresh instance of t for its Annotator table. Any panic
// raised by the implementation counts as no metadata.
func annotationsOf(t reflect.Type) (table map[string]reflect.StructTag) {
	defer func() {
		if recover() != nil {
			table = nil
		}
	}()

	t = baseType(t)
	if t == nil {
		return nil
	}
	if a, ok := reflect.New(t).Interface().(Annotator); ok {
		return a.Annotations()
	}
	return nil
}

// ResolveAnnotation searches the metadata attached to target for the first
// entry whose key contains kind (case-insensitive) and rebuilds it as a live
// value through the registered factory. A missing entry, an unparsable tag or
// a failing factory all report false.
func ResolveAnnotation(target AnnotationTarget, kind string) (any, bool) {
	if target.tag == "" || kind == "" {
		return nil, false
	}

	tags, err := structtag.Parse(string(target.tag))
	if err != nil || tags == nil {
		return nil, false
	}

	kind = strings.ToLower(kind)
	for _, tag := range tags.Tags() {
		if !strings.Contains(strings.ToLower(tag.Key), kind) {
			continue
		}
		return buildAnnotation(tag)
	}
	return nil, false
}

func buildAnnotation(tag *structtag.Tag) (anno any, ok bool) {
	defer func() {
		if recover() != nil {
			anno, ok = nil, false
		}
	}()

	factory := lookupFactory(tag.Key)
	if factory == nil {
		return &Tag{Key: tag.Key, Name: tag.Name, Options: append([]string(nil), tag.Options...)}, true
	}

	anno, err := factory(tag.Name, tag.Options)
	if err != nil || anno == nil {
		return nil, false
	}
	return anno, true
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
