// Package rules infers parameters from request-validation rule sets.
package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/model"
)

// Canned example values.
const (
	ExampleEmail    = "user@example.com"
	ExampleDate     = "2024-01-01"
	ExampleDateTime = "2024-01-01 10:00:00"
	ExampleISO8601  = "2024-01-01T10:00:00+00:00"
	ExampleFile     = "file.txt"
)

// Translate converts a field -> rule expression map into parameters. Fields named in
// order come first, in that order; the rest follow sorted by name. Fields without any
// rule token are dropped.
func Translate(set map[string]any, order ...string) []model.Parameter {
	var names, rest []string
	for _, name := range order {
		if _, ok := set[name]; ok && name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for name := range set {
		if name != "" && !slices.Contains(names, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	var params []model.Parameter
	for _, name := range names {
		r := Normalize(set[name])
		if len(r.Tokens) == 0 {
			continue
		}
		typ := r.Type()
		params = append(params, model.Parameter{
			Name:     name,
			Type:     typ,
			Required: r.Required(),
			Example:  r.Example(typ),
		})
	}
	return params
}

// Ruleset is the normalized form of one field's rule expression.
type Ruleset struct {
	// Tokens are "name" or "name:arg1,arg2" strings in declaration order.
	Tokens []string
	// Enum holds the values of the first structured allow-list rule.
	Enum []string
}

// Normalize flattens a rule expression. Accepted forms are pipe-delimited strings,
// slices of rules, apidoc.In and fmt.Stringer values. Anything else contributes nothing.
func Normalize(expr any) Ruleset {
	var r Ruleset
	r.add(expr)
	return r
}

func (r *Ruleset) add(expr any) {
	switch v := expr.(type) {
	case nil:
	case string:
		for _, tok := range strings.Split(v, "|") {
			if tok = strings.TrimSpace(tok); tok != "" {
				r.Tokens = append(r.Tokens, tok)
			}
		}
	case []string:
		for _, s := range v {
			r.add(s)
		}
	case []any:
		for _, item := range v {
			r.add(item)
		}
	case apidoc.In:
		r.Tokens = append(r.Tokens, "in")
		if r.Enum == nil {
			r.Enum = v.Values()
		}
	case fmt.Stringer:
		r.add(v.String())
	}
}

func tokenName(tok string) string {
	name, _, _ := strings.Cut(tok, ":")
	return strings.ToLower(strings.TrimSpace(name))
}

func tokenArg(tok string) (string, bool) {
	_, arg, ok := strings.Cut(tok, ":")
	return strings.TrimSpace(arg), ok
}

func (r Ruleset) has(name string) bool {
	for _, tok := range r.Tokens {
		if tokenName(tok) == name {
			return true
		}
	}
	return false
}

// Required reports a required or present rule without a nullable rule.
func (r Ruleset) Required() bool {
	required := false
	for _, tok := range r.Tokens {
		name := tokenName(tok)
		if name == "nullable" {
			return false
		}
		if strings.HasPrefix(name, "required") || name == "present" {
			required = true
		}
	}
	return required
}

// Type returns the first type-bearing rule, defaulting to string.
func (r Ruleset) Type() model.ParamType {
	for _, tok := range r.Tokens {
		switch tokenName(tok) {
		case "integer", "int":
			return model.TypeInteger
		case "numeric", "decimal", "float", "double":
			return model.TypeFloat
		case "boolean", "bool":
			return model.TypeBoolean
		case "array":
			return model.TypeArray
		}
	}
	return model.TypeString
}

// Example picks an example value for a field of the given type.
func (r Ruleset) Example(typ model.ParamType) any {
	if v, ok := r.inValue(); ok {
		return v
	}
	if len(r.Enum) > 0 {
		return r.Enum[0]
	}
	switch {
	case r.has("email"):
		return ExampleEmail
	case r.has("uuid"):
		return uuid.Nil.String()
	}
	if f, ok := r.dateFormat(); ok {
		return dateExample(f)
	}
	switch {
	case r.has("date"), r.has("datetime"):
		return ExampleDate
	case r.has("file"), r.has("image"):
		return ExampleFile
	}
	return typ.DefaultExample()
}

func (r Ruleset) inValue() (string, bool) {
	for _, tok := range r.Tokens {
		if tokenName(tok) != "in" {
			continue
		}
		arg, ok := tokenArg(tok)
		if !ok {
			continue
		}
		for _, v := range strings.Split(arg, ",") {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (r Ruleset) dateFormat() (string, bool) {
	for _, tok := range r.Tokens {
		if tokenName(tok) != "date_format" {
			continue
		}
		if arg, ok := tokenArg(tok); ok {
			return arg, true
		}
	}
	return "", false
}

func dateExample(format string) string {
	switch format {
	case "Y-m-d H:i:s":
		return ExampleDateTime
	case "c":
		return ExampleISO8601
	default:
		return ExampleDate
	}
}
