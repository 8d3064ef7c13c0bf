// Package route describes the route table that routedoc documents.
//
// A Table enumerates Route records. Adapters for gorilla/mux and chi live in the
// muxroute and chiroute subpackages; Static serves hand-built or decoded tables.
package route

import (
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// Route is one registered route as seen by the scanner.
type Route struct {
	// URI is the path template, e.g. "api/users/{id}".
	URI string
	// Methods are the HTTP methods the route answers, upper-case.
	Methods []string
	// Handler identifies the code serving the route.
	Handler Handler
	// Middleware holds identifiers of middleware attached to the route.
	Middleware []string
	// Name is the optional route name.
	Name string
	// Host is the optional bound host pattern.
	Host string
	// Params lists the declared path parameter names, in template order.
	Params []string
}

// Table enumerates routes in a stable order.
type Table interface {
	Routes() ([]Route, error)
}

// Static is a Table backed by a slice.
type Static []Route

func (s Static) Routes() ([]Route, error) {
	return s, nil
}

// Handler identifies a route handler.
type Handler struct {
	// Action is the fully qualified identifier, e.g. "example.com/app/users.(*Controller).Store".
	Action string
	// Package is the qualifying namespace, e.g. "example.com/app/users".
	Package string
	// Receiver is the method receiver type name, empty for plain functions.
	Receiver string
	// Method is the function or method name.
	Method string
	// Inline is set for closures and anything that cannot be resolved to a named function.
	Inline bool
	// Func is the original handler value, when known.
	Func any
}

// Named reports whether the handler resolves to a named function or method.
func (h Handler) Named() bool {
	return !h.Inline && h.Action != "" && h.Method != ""
}

var closureSuffix = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// ParseAction splits a runtime function name into a Handler.
//
//	example.com/app/users.(*Controller).Store-fm -> Package example.com/app/users, Receiver Controller, Method Store
//	example.com/app/users.List                   -> Package example.com/app/users, Method List
//	main.main.func1                              -> Inline
func ParseAction(action string) Handler {
	action = strings.TrimSuffix(action, "-fm")
	h := Handler{Action: action}
	if action == "" || closureSuffix.MatchString(action) {
		h.Inline = true
		return h
	}

	// Dots before the last slash belong to the module path.
	slash := strings.LastIndex(action, "/")
	dot := strings.Index(action[slash+1:], ".")
	if dot < 0 {
		h.Inline = true
		return h
	}
	dot += slash + 1
	h.Package = action[:dot]
	rest := action[dot+1:]

	if i := strings.LastIndex(rest, "."); i >= 0 {
		recv := rest[:i]
		recv = strings.TrimPrefix(recv, "(*")
		recv = strings.TrimSuffix(recv, ")")
		h.Receiver = recv
		h.Method = rest[i+1:]
	} else {
		h.Method = rest
	}
	return h
}

// HandlerOf identifies fn, which may be a func value, an http.HandlerFunc or any
// other value. Non-func values are identified by their type's ServeHTTP method.
func HandlerOf(fn any) Handler {
	if fn == nil {
		return Handler{Inline: true}
	}
	v := reflect.ValueOf(fn)
	if v.Kind() == reflect.Func {
		if v.IsNil() {
			return Handler{Inline: true, Func: fn}
		}
		f := runtime.FuncForPC(v.Pointer())
		if f == nil {
			return Handler{Inline: true, Func: fn}
		}
		h := ParseAction(f.Name())
		h.Func = fn
		return h
	}

	t := v.Type()
	star := ""
	if t.Kind() == reflect.Pointer {
		star = "*"
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return Handler{Inline: true, Func: fn}
	}
	recv := t.Name()
	if star != "" {
		recv = "(*" + recv + ")"
	}
	h := ParseAction(t.PkgPath() + "." + recv + ".ServeHTTP")
	h.Func = fn
	return h
}

// FuncName returns a short identifier for a function value, e.g. "middleware.Logger".
// Closures returned by middleware factories are named after the factory.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	name = closureSuffix.ReplaceAllString(name, "")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
