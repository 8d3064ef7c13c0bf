package apidoc

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

// Rules is implemented by request-validation types. The returned map holds one rule
// expression per field: a pipe-delimited string ("required|email"), a slice of rule
// tokens, an In value, or any fmt.Stringer.
type Rules interface {
	Rules() map[string]any
}

// In is the structured allow-list rule. Its first value is used as the field example.
type In []any

// Values returns the allowed values as strings.
func (in In) Values() []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// RequestSpec describes the request-validation type accepted by a handler.
type RequestSpec struct {
	// Type is the request type. It is used to build a zero value when New is nil or fails.
	Type reflect.Type
	// New constructs a ready instance. Optional.
	New func() (Rules, error)
}

// StaticRules is a Rules backed by a fixed map.
type StaticRules map[string]any

func (s StaticRules) Rules() map[string]any {
	return s
}

// Ordered is implemented by rule sets that know the declaration order of their
// fields. Parameters follow that order instead of being sorted by name.
type Ordered interface {
	FieldOrder() []string
}

// OrderedRules is a Rules that keeps the order its fields were added or decoded in.
type OrderedRules struct {
	*orderedmap.Map[string, any]
}

func NewOrderedRules() OrderedRules {
	return OrderedRules{Map: orderedmap.New[string, any]()}
}

func (o OrderedRules) Rules() map[string]any {
	out := make(map[string]any, orderedmap.Len(o.Map))
	if o.Map == nil {
		return out
	}
	for k, v := range o.FromOldest() {
		out[k] = v
	}
	return out
}

func (o OrderedRules) FieldOrder() []string {
	if o.Map == nil {
		return nil
	}
	return slices.Collect(o.KeysFromOldest())
}

// UnmarshalYAML decodes a mapping of field -> rule expression.
func (o *OrderedRules) UnmarshalYAML(n *yaml.Node) error {
	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalYAML(n); err != nil {
		return fmt.Errorf("decoding rules: %w", err)
	}
	o.Map = fields
	return nil
}

var rulesType = reflect.TypeFor[Rules]()

// IsPrimitive reports whether t is a scalar builtin that can never be a request type.
func IsPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// ImplementsRules reports whether t or a pointer to t implements Rules.
func ImplementsRules(t reflect.Type) bool {
	if t == nil || t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(rulesType) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(rulesType))
}

// RequestTypeOf returns the first non-primitive parameter of fn that implements Rules.
func RequestTypeOf(fn any) (reflect.Type, bool) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, false
	}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if IsPrimitive(in) {
			continue
		}
		if ImplementsRules(in) {
			return in, true
		}
	}
	return nil, false
}
