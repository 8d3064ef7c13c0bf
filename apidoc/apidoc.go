// Package apidoc attaches documentation to route handlers.
//
// Go has no method annotations, so documentation lives in a side table keyed by the
// handler's runtime identity. A Registry is filled at route registration time:
//
//	reg := apidoc.NewRegistry()
//	r.HandleFunc("/api/users", reg.HandlerFunc(users.Store, apidoc.Annotation{
//		Summary: "Create user",
//		Tags:    []string{"Users"},
//		Auth:    "api_key",
//	}, apidoc.WithRequestType[CreateUserRequest]())).Methods("POST").Name("users.store")
//
// Doc comments can carry the same payload as YAML directives, read with LoadComments:
//
//	// Store creates a user.
//	//
//	//routedoc: summary: Create user
//	//routedoc: tags: [Users]
//	func (c *Controller) Store(w http.ResponseWriter, r *http.Request) {}
package apidoc

import "github.com/kolah/routedoc/route"

// Annotation is the declarative documentation attached to one handler.
type Annotation struct {
	Summary     string     `yaml:"summary"`
	Description string     `yaml:"description"`
	Tags        []string   `yaml:"tags"`
	Auth        string     `yaml:"auth"`
	Headers     []Header   `yaml:"headers"`
	Query       []Param    `yaml:"query"`
	Body        []Param    `yaml:"body"`
	Responses   []Response `yaml:"responses"`
	Deprecated  *bool      `yaml:"deprecated"`
}

// Header documents a request or response header. Entries without a name or value are
// ignored; an explicitly empty value is kept.
type Header struct {
	Name        string  `yaml:"name"`
	Value       *string `yaml:"value"`
	Required    bool    `yaml:"required"`
	Description string  `yaml:"description"`
}

// Param documents a query or body field. Entries without a name or type are ignored.
type Param struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description"`
	Example     any    `yaml:"example"`
}

// Response documents one example response. Entries without a status are ignored.
type Response struct {
	Status      int      `yaml:"status"`
	Description string   `yaml:"description"`
	Headers     []Header `yaml:"headers"`
	Body        any      `yaml:"body"`
	Example     any      `yaml:"example"`
	MediaType   string   `yaml:"media_type"`
}

// Reader resolves documentation for a handler.
type Reader interface {
	// Annotation returns the annotation attached to h, if any.
	Annotation(h route.Handler) (Annotation, bool)
	// Request returns the request-validation type accepted by h, if any.
	Request(h route.Handler) (RequestSpec, bool)
}

// Chain queries readers in order; the first hit wins.
type Chain []Reader

func (c Chain) Annotation(h route.Handler) (Annotation, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if a, ok := r.Annotation(h); ok {
			return a, true
		}
	}
	return Annotation{}, false
}

func (c Chain) Request(h route.Handler) (RequestSpec, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if spec, ok := r.Request(h); ok {
			return spec, true
		}
	}
	return RequestSpec{}, false
}
