package apidoc

import (
	"fmt"
	"go/ast"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"go.yaml.in/yaml/v4"
	"golang.org/x/tools/go/packages"

	"github.com/kolah/routedoc/route"
)

var log = logging.Logger("routedoc/apidoc")

// DirectivePrefix marks doc-comment lines holding annotation YAML.
const DirectivePrefix = "//routedoc:"

// Comments is a Reader built from doc-comment directives on handler functions.
// It never reports request types; those need the running program.
type Comments struct {
	annotations map[string]Annotation
}

// LoadComments parses the packages matched by patterns, relative to dir, and collects
// the annotations declared on their functions and methods. Consecutive directive
// lines form one YAML document:
//
//	//routedoc: summary: List users
//	//routedoc: query:
//	//routedoc:   - {name: page, type: integer}
func LoadComments(dir string, patterns ...string) (*Comments, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	c := &Comments{annotations: make(map[string]Annotation)}
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			log.Warnw("package error", "package", pkg.PkgPath, "error", e.Msg)
		}
		// The runtime names functions of main packages "main.X".
		pkgPath := pkg.PkgPath
		if pkg.Name == "main" {
			pkgPath = "main"
		}
		for _, file := range pkg.Syntax {
			c.collect(pkgPath, file)
		}
	}
	return c, nil
}

func (c *Comments) collect(pkgPath string, file *ast.File) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		lines := directiveLines(fn.Doc)
		if len(lines) == 0 {
			continue
		}
		key := commentKey(pkgPath, receiverName(fn), fn.Name.Name)
		if _, dup := c.annotations[key]; dup {
			continue
		}
		a, err := ParseDirectives(lines)
		if err != nil {
			log.Warnw("skipping malformed annotation", "handler", key, "error", err)
			continue
		}
		c.annotations[key] = a
	}
}

// directiveLines reads the raw comment list; CommentGroup.Text drops directives.
func directiveLines(doc *ast.CommentGroup) []string {
	var lines []string
	for _, cm := range doc.List {
		payload, ok := strings.CutPrefix(cm.Text, DirectivePrefix)
		if !ok {
			continue
		}
		lines = append(lines, strings.TrimPrefix(payload, " "))
	}
	return lines
}

// ParseDirectives decodes directive payload lines into an Annotation.
func ParseDirectives(lines []string) (Annotation, error) {
	var a Annotation
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &a); err != nil {
		return Annotation{}, fmt.Errorf("parsing annotation: %w", err)
	}
	return a, nil
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	case *ast.IndexListExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}

func commentKey(pkg, recv, method string) string {
	if recv == "" {
		return pkg + "." + method
	}
	return pkg + "." + recv + "." + method
}

func (c *Comments) Annotation(h route.Handler) (Annotation, bool) {
	if c == nil || !h.Named() {
		return Annotation{}, false
	}
	a, ok := c.annotations[commentKey(h.Package, h.Receiver, h.Method)]
	return a, ok
}

func (c *Comments) Request(route.Handler) (RequestSpec, bool) {
	return RequestSpec{}, false
}

// Len returns the number of annotated functions.
func (c *Comments) Len() int {
	if c == nil {
		return 0
	}
	return len(c.annotations)
}
