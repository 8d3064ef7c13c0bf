// Package middleware compares the operations a server answers with a generated
// OpenAPI document. Requests to operations the document lacks are reported so routes
// added after the last generation show up in logs. Payloads are not inspected.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

var log = logging.Logger("routedoc/middleware")

// Middleware matches requests against the operations of an OpenAPI document.
type Middleware struct {
	model   *libopenapi.DocumentModel[v3.Document]
	options *Options
}

// New creates middleware from OpenAPI document bytes, JSON or YAML.
func New(doc []byte, opts *Options) (*Middleware, error) {
	document, err := libopenapi.NewDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	model, err := document.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	return &Middleware{
		model:   model,
		options: opts,
	}, nil
}

// NewFromFile creates middleware from a generated document on disk.
func NewFromFile(path string, opts *Options) (*Middleware, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading openapi document: %w", err)
	}
	return New(data, opts)
}

// Handler returns an http.Handler middleware.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.options.Skip != nil && m.options.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		if mismatch := m.Check(r); mismatch != nil {
			m.report(r, mismatch)
			if m.options.Enforce {
				writeMismatch(w, mismatch)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Check looks r up without serving it. It returns nil when the document has an
// operation for the request method and path.
func (m *Middleware) Check(r *http.Request) *Mismatch {
	if m.findOperation(r.URL.Path, r.Method) != nil {
		return nil
	}
	return &Mismatch{Method: r.Method, Path: r.URL.Path}
}

func (m *Middleware) report(r *http.Request, mismatch *Mismatch) {
	log.Warnw("request to undocumented operation", "method", mismatch.Method, "path", mismatch.Path)
	if m.options.Reporter != nil {
		m.options.Reporter(r, mismatch)
	}
}

func (m *Middleware) findOperation(path, method string) *v3.Operation {
	if m.model.Model.Paths == nil || m.model.Model.Paths.PathItems == nil {
		return nil
	}

	for pair := m.model.Model.Paths.PathItems.Oldest(); pair != nil; pair = pair.Next() {
		if matchPath(pair.Key, path) {
			if op := getOperation(pair.Value, method); op != nil {
				return op
			}
		}
	}
	return nil
}

func matchPath(pattern, path string) bool {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i, pp := range patternParts {
		if len(pp) > 0 && pp[0] == '{' && pp[len(pp)-1] == '}' {
			continue
		}
		if pp != pathParts[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if len(p) == 0 {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			parts = append(parts, p[start:i])
			start = i + 1
		}
	}
	parts = append(parts, p[start:])
	return parts
}

func getOperation(pathItem *v3.PathItem, method string) *v3.Operation {
	switch method {
	case http.MethodGet:
		return pathItem.Get
	case http.MethodPost:
		return pathItem.Post
	case http.MethodPut:
		return pathItem.Put
	case http.MethodDelete:
		return pathItem.Delete
	case http.MethodPatch:
		return pathItem.Patch
	case http.MethodHead:
		return pathItem.Head
	case http.MethodOptions:
		return pathItem.Options
	}
	return nil
}

func writeMismatch(w http.ResponseWriter, mismatch *Mismatch) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   "undocumented_operation",
		"message": mismatch.Error(),
	})
}
