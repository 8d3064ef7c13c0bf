// Package targets holds helpers shared by the document builders.
package targets

import (
	"bytes"
	"encoding/json"
)

// Indent is the indentation of every generated JSON document.
const Indent = "    "

// JSON encodes v with four-space indentation and without HTML escaping, so URL
// templates such as {{base_url}}/a?b=1&c=2 stay readable.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
