package metadata

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/internal/rules"
	"github.com/kolah/routedoc/route"
)

// Overrides looks routes up by name in the configured override table.
type Overrides struct {
	table map[string]config.Override
}

func NewOverrides(table map[string]config.Override) *Overrides {
	return &Overrides{table: table}
}

func (o *Overrides) Provide(r route.Route) model.EndpointMetadata {
	if r.Name == "" {
		return model.EndpointMetadata{}
	}
	override, ok := o.table[r.Name]
	if !ok {
		return model.EndpointMetadata{}
	}
	return FromOverride(override)
}

// Annotations reads the annotation attached to a route's named handler.
type Annotations struct {
	reader apidoc.Reader
}

func NewAnnotations(reader apidoc.Reader) *Annotations {
	return &Annotations{reader: reader}
}

func (a *Annotations) Provide(r route.Route) model.EndpointMetadata {
	if a.reader == nil || !r.Handler.Named() {
		return model.EndpointMetadata{}
	}
	ann, ok := a.reader.Annotation(r.Handler)
	if !ok {
		return model.EndpointMetadata{}
	}
	return FromAnnotation(ann)
}

// RequestRules infers parameters from the request-validation type of a route's handler.
// Routes answering only GET get query parameters, all others get body parameters.
type RequestRules struct {
	reader apidoc.Reader
}

func NewRequestRules(reader apidoc.Reader) *RequestRules {
	return &RequestRules{reader: reader}
}

func (p *RequestRules) Provide(r route.Route) model.EndpointMetadata {
	if p.reader == nil || !r.Handler.Named() {
		return model.EndpointMetadata{}
	}
	spec, ok := p.reader.Request(r.Handler)
	if !ok {
		return model.EndpointMetadata{}
	}
	set, order, ok := ruleSet(spec)
	if !ok || len(set) == 0 {
		return model.EndpointMetadata{}
	}
	params := rules.Translate(set, order...)
	if len(params) == 0 {
		return model.EndpointMetadata{}
	}
	if QueryOnly(r.Methods) {
		return model.EndpointMetadata{QueryParams: params}
	}
	return model.EndpointMetadata{BodyParams: params}
}

// QueryOnly reports whether methods, ignoring HEAD, are exactly GET.
func QueryOnly(methods []string) bool {
	var rest []string
	for _, m := range methods {
		if m = strings.ToUpper(m); m != "HEAD" {
			rest = append(rest, m)
		}
	}
	return slices.Equal(rest, []string{"GET"})
}

func ruleSet(spec apidoc.RequestSpec) (map[string]any, []string, bool) {
	holder, ok := instantiate(spec)
	if !ok {
		return nil, nil, false
	}
	set, order, err := callRules(holder)
	if err != nil {
		log.Debugw("request rules unavailable", "type", typeName(spec.Type), "error", err)
		return nil, nil, false
	}
	return set, order, true
}

// instantiate tries the declared constructor first, then a zero value of the type.
func instantiate(spec apidoc.RequestSpec) (apidoc.Rules, bool) {
	if spec.New != nil {
		holder, err := construct(spec.New)
		if err == nil && holder != nil {
			return holder, true
		}
		log.Debugw("request constructor failed, using zero value", "type", typeName(spec.Type), "error", err)
	}
	holder, err := zeroValue(spec.Type)
	if err != nil {
		log.Debugw("cannot instantiate request type", "type", typeName(spec.Type), "error", err)
		return nil, false
	}
	return holder, true
}

func construct(fn func() (apidoc.Rules, error)) (holder apidoc.Rules, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("constructor panicked: %v", p)
		}
	}()
	return fn()
}

func zeroValue(t reflect.Type) (holder apidoc.Rules, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("zero value panicked: %v", p)
		}
	}()
	if t == nil {
		return nil, fmt.Errorf("no request type")
	}
	if t.Kind() == reflect.Pointer {
		if h, ok := reflect.New(t.Elem()).Interface().(apidoc.Rules); ok {
			return h, nil
		}
		return nil, fmt.Errorf("%s does not implement Rules", t)
	}
	ptr := reflect.New(t)
	if h, ok := ptr.Elem().Interface().(apidoc.Rules); ok {
		return h, nil
	}
	if h, ok := ptr.Interface().(apidoc.Rules); ok {
		return h, nil
	}
	return nil, fmt.Errorf("%s does not implement Rules", t)
}

func callRules(holder apidoc.Rules) (set map[string]any, order []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rules panicked: %v", p)
		}
	}()
	if o, ok := holder.(apidoc.Ordered); ok {
		order = o.FieldOrder()
	}
	return holder.Rules(), order, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
