package middleware

// Mismatch describes a request for which the generated document has no operation.
type Mismatch struct {
	Method string
	Path   string
}

func (m *Mismatch) Error() string {
	return "undocumented operation: " + m.Method + " " + m.Path
}
