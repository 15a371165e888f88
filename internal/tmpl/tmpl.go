// Package tmpl renders the fixed program fragments that carry `${name}`
// placeholders. Templates use HCL template syntax, so placeholders are found
// by walking the parsed expression rather than by scanning text, and every
// missing one is reported at once.
package tmpl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Template is a parsed fragment.
type Template struct {
	name         string
	expr         hclsyntax.Expression
	placeholders []string
}

// Parse parses src as an HCL template.
func Parse(name, src string) (*Template, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), name, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, diags)
	}

	seen := make(map[string]struct{})
	var placeholders []string
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		placeholders = append(placeholders, root)
	}
	sort.Strings(placeholders)

	return &Template{name: name, expr: expr, placeholders: placeholders}, nil
}

// Must is like Parse but panics on error. It is meant for package-level
// templates whose source is a constant.
func Must(name, src string) *Template {
	t, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Placeholders returns the sorted placeholder names the template uses.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Execute substitutes params, which hold already-rendered code, into the
// template. Unused params are ignored.
func (t *Template) Execute(params map[string]string) (string, error) {
	var missing []string
	vars := make(map[string]cty.Value, len(t.placeholders))
	for _, name := range t.placeholders {
		code, ok := params[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vars[name] = cty.StringVal(code)
	}
	if len(missing) > 0 {
		return "", &scripterr.MissingParameterError{Template: t.name, Names: missing}
	}

	val, diags := t.expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to render template %s: %w", t.name, diags)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("template %s did not render to text: %w", t.name, err)
	}
	return str.AsString(), nil
}
