package route

import "strings"

// NormalizeTemplate strips inline patterns from path variables so that
// "/users/{id:[0-9]+}" becomes "/users/{id}". A trailing chi wildcard "*" becomes
// "{wildcard}".
func NormalizeTemplate(tpl string) string {
	var b strings.Builder
	b.Grow(len(tpl))
	depth := 0
	skipping := false
	for _, r := range tpl {
		switch {
		case r == '{':
			depth++
			if depth == 1 {
				skipping = false
			}
			if depth == 1 || !skipping {
				b.WriteRune(r)
			}
		case r == '}':
			depth--
			if depth == 0 {
				skipping = false
				b.WriteRune(r)
			}
		case r == ':' && depth == 1:
			skipping = true
		default:
			if !skipping {
				b.WriteRune(r)
			}
		}
	}
	out := b.String()
	if strings.HasSuffix(out, "/*") {
		out = strings.TrimSuffix(out, "*") + "{wildcard}"
	}
	return out
}

// ParamNames returns the variable names declared in a path template, in order.
func ParamNames(tpl string) []string {
	tpl = NormalizeTemplate(tpl)
	var names []string
	for {
		start := strings.Index(tpl, "{")
		if start < 0 {
			return names
		}
		end := strings.Index(tpl[start:], "}")
		if end < 0 {
			return names
		}
		name := strings.TrimSuffix(tpl[start+1:start+end], "?")
		if name != "" {
			names = append(names, name)
		}
		tpl = tpl[start+end+1:]
	}
}
