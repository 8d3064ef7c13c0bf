package apidoc

import (
	"net/http"
	"reflect"
	"sync"

	"github.com/kolah/routedoc/route"
)

// Option configures a Registry entry.
type Option func(*entry)

type entry struct {
	annotation    Annotation
	hasAnnotation bool
	request       *RequestSpec
}

// WithRequest declares the request-validation value accepted by the handler.
// The value itself is returned as the constructed instance.
func WithRequest(req Rules) Option {
	return func(e *entry) {
		if req == nil {
			return
		}
		e.request = &RequestSpec{
			Type: reflect.TypeOf(req),
			New:  func() (Rules, error) { return req, nil },
		}
	}
}

// WithRequestFunc declares a constructor for the request-validation value.
func WithRequestFunc[T Rules](fn func() (T, error)) Option {
	return func(e *entry) {
		e.request = &RequestSpec{
			Type: reflect.TypeFor[T](),
			New: func() (Rules, error) {
				v, err := fn()
				if err != nil {
					return nil, err
				}
				return v, nil
			},
		}
	}
}

// WithRequestType declares the request-validation type without a constructor. A zero
// value is built when rules are needed.
func WithRequestType[T Rules]() Option {
	return func(e *entry) {
		e.request = &RequestSpec{Type: reflect.TypeFor[T]()}
	}
}

// Registry is a Reader backed by an in-memory table keyed by handler identity.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Handle attaches a to the handler fn. Only the first annotation registered for a
// handler is kept; later request options still apply. Anonymous functions are ignored
// because they have no stable identity.
//
// When no request option is given, the first parameter of fn implementing Rules is
// used as the request type.
func (r *Registry) Handle(fn any, a Annotation, opts ...Option) {
	h := route.HandlerOf(fn)
	if !h.Named() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h.Action]
	if !ok {
		e = &entry{}
		r.entries[h.Action] = e
	}
	if !e.hasAnnotation {
		e.annotation = a
		e.hasAnnotation = true
	}
	if t, ok := RequestTypeOf(fn); ok && e.request == nil {
		e.request = &RequestSpec{Type: t}
	}
	for _, opt := range opts {
		opt(e)
	}
}

// HandlerFunc registers fn like Handle and returns it, so it can be used inline when
// mounting routes.
func (r *Registry) HandlerFunc(fn func(http.ResponseWriter, *http.Request), a Annotation, opts ...Option) http.HandlerFunc {
	r.Handle(fn, a, opts...)
	return fn
}

func (r *Registry) lookup(h route.Handler) (*entry, bool) {
	if r == nil || !h.Named() {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[h.Action]
	return e, ok
}

func (r *Registry) Annotation(h route.Handler) (Annotation, bool) {
	e, ok := r.lookup(h)
	if !ok || !e.hasAnnotation {
		return Annotation{}, false
	}
	return e.annotation, true
}

func (r *Registry) Request(h route.Handler) (RequestSpec, bool) {
	e, ok := r.lookup(h)
	if !ok || e.request == nil {
		return RequestSpec{}, false
	}
	return *e.request, true
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
