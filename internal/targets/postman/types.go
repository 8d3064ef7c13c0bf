package postman

// SchemaURL identifies the collection format version.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type Collection struct {
	Info     Info       `json:"info"`
	Item     []Item     `json:"item"`
	Variable []Variable `json:"variable,omitempty"`
}

type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
}

// Item is either a folder (Item set) or a request (Request set).
type Item struct {
	Name     string     `json:"name"`
	Item     []Item     `json:"item,omitempty"`
	Request  *Request   `json:"request,omitempty"`
	Response []Response `json:"response,omitempty"`
}

type Request struct {
	Method      string   `json:"method"`
	Header      []Header `json:"header"`
	URL         URL      `json:"url"`
	Description string   `json:"description"`
	Auth        *Auth    `json:"auth,omitempty"`
	Body        *Body    `json:"body,omitempty"`
}

type Header struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Disabled    bool   `json:"disabled"`
	Description string `json:"description,omitempty"`
}

type URL struct {
	Raw      string       `json:"raw"`
	Path     []string     `json:"path"`
	Variable []PathVar    `json:"variable"`
	Query    []QueryParam `json:"query"`
}

type PathVar struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type QueryParam struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	Disabled    bool   `json:"disabled"`
	Description string `json:"description,omitempty"`
}

type Auth struct {
	Type   string      `json:"type"`
	Bearer []Attribute `json:"bearer,omitempty"`
	APIKey []Attribute `json:"apikey,omitempty"`
	Basic  []Attribute `json:"basic,omitempty"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type Body struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw"`
}

type Response struct {
	Name            string   `json:"name"`
	OriginalRequest Request  `json:"originalRequest"`
	Status          string   `json:"status"`
	Code            int      `json:"code"`
	PreviewLanguage string   `json:"_postman_previewlanguage"`
	Header          []Header `json:"header"`
	Body            string   `json:"body"`
}

type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
