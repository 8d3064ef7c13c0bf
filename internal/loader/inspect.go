package loader

import (
	"fmt"
	"slices"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/samber/lo"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/routedoc/route"
)

// Operation is one method of one path as read back from the document.
type Operation struct {
	Method     string
	Path       string
	PathParams []string
	Security   []string
}

// Summary lists what the parsed document declares.
type Summary struct {
	Operations []Operation
	Schemes    []string
}

// Inspect walks the parsed model in document order.
func Inspect(doc *libopenapi.DocumentModel[v3.Document]) Summary {
	var s Summary
	if doc == nil {
		return s
	}
	m := doc.Model

	if m.Components != nil && m.Components.SecuritySchemes != nil {
		for name := range m.Components.SecuritySchemes.FromOldest() {
			s.Schemes = append(s.Schemes, name)
		}
	}

	if m.Paths == nil || m.Paths.PathItems == nil {
		return s
	}
	for path, item := range m.Paths.PathItems.FromOldest() {
		methods := []struct {
			method string
			op     *v3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"PATCH", item.Patch},
			{"DELETE", item.Delete},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
		}
		for _, mo := range methods {
			if mo.op == nil {
				continue
			}
			s.Operations = append(s.Operations, inspectOperation(mo.method, path, mo.op))
		}
	}
	return s
}

func inspectOperation(method, path string, op *v3.Operation) Operation {
	o := Operation{Method: method, Path: path}
	for _, p := range op.Parameters {
		if p != nil && p.In == "path" {
			o.PathParams = append(o.PathParams, p.Name)
		}
	}
	for _, req := range op.Security {
		if req == nil || req.Requirements == nil {
			continue
		}
		for name := range req.Requirements.FromOldest() {
			o.Security = append(o.Security, name)
		}
	}
	return o
}

// Problems reports path template variables without a matching path parameter and
// security requirements naming undeclared schemes.
func (s Summary) Problems() []string {
	var out []string
	for _, op := range s.Operations {
		for _, name := range route.ParamNames(op.Path) {
			if !slices.Contains(op.PathParams, name) {
				out = append(out, fmt.Sprintf("%s %s: path parameter %q is not declared", op.Method, op.Path, name))
			}
		}
		for _, scheme := range op.Security {
			if !slices.Contains(s.Schemes, scheme) {
				out = append(out, fmt.Sprintf("%s %s: unknown security scheme %q", op.Method, op.Path, scheme))
			}
		}
	}
	return out
}

// DuplicateKeys reports mapping keys that occur more than once in the same object.
// Parsers keep only one of them, so the others are silently lost.
func DuplicateKeys(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	var out []string
	walkMappings(&root, "", func(path, key string) {
		out = append(out, fmt.Sprintf("%s: duplicate key %q", lo.Ternary(path == "", "document", path), key))
	})
	return out, nil
}

func walkMappings(n *yaml.Node, path string, report func(path, key string)) {
	switch n.Kind {
	case yaml.MappingNode:
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if seen[key] {
				report(path, key)
			}
			seen[key] = true
			walkMappings(n.Content[i+1], lo.Ternary(path == "", key, path+"."+key), report)
		}
	default:
		for _, c := range n.Content {
			walkMappings(c, path, report)
		}
	}
}
