package render

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/schema"
)

//go:embed templates/*.md.tmpl
var builtinFS embed.FS

const templateExt = ".md.tmpl"

// slotFuncs are the template functions whose first argument names a field.
var slotFuncs = map[string]bool{
	"field": true, "money": true, "unit": true, "link": true,
	"has": true, "items": true, "rows": true, "iso": true,
}

// Template is a parsed document layout together with the field names its
// slots reference.
type Template struct {
	Name   string
	tmpl   *template.Template
	fields []string
}

// Parse parses a layout. Field names must be string literals so that the
// set of referenced fields is known before any data is rendered.
func Parse(name, text string) (*Template, error) {
	t, err := template.New(name).Funcs(stubFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	seen := map[string]bool{}
	for _, tt := range t.Templates() {
		if tt.Tree == nil {
			continue
		}
		if err := collectSlots(tt.Tree.Root, seen); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	return &Template{Name: name, tmpl: t, fields: fields}, nil
}

// Builtin returns the embedded layouts keyed by name.
func Builtin() (map[string]*Template, error) {
	entries, err := builtinFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("list builtin templates: %w", err)
	}
	out := make(map[string]*Template, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read builtin template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), templateExt)
		t, err := Parse(name, string(data))
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// Fields returns the sorted, unique field names the template references.
func (t *Template) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Check verifies that every referenced field exists in s.
func (t *Template) Check(s *schema.Schema) error {
	var unknown []string
	for _, f := range t.fields {
		if !s.Has(f) {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return &model.SchemaMismatchError{Template: t.Name, Schema: s.Name, Fields: unknown}
	}
	return nil
}

func collectSlots(node parse.Node, seen map[string]bool) error {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return nil
		}
		for _, c := range n.Nodes {
			if err := collectSlots(c, seen); err != nil {
				return err
			}
		}
	case *parse.ActionNode:
		return collectSlots(n.Pipe, seen)
	case *parse.IfNode:
		return collectBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		return collectBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		return collectBranch(&n.BranchNode, seen)
	case *parse.TemplateNode:
		return collectSlots(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return nil
		}
		for _, cmd := range n.Cmds {
			if err := collectSlots(cmd, seen); err != nil {
				return err
			}
		}
	case *parse.CommandNode:
		if len(n.Args) > 0 {
			if id, ok := n.Args[0].(*parse.IdentifierNode); ok && slotFuncs[id.Ident] {
				if len(n.Args) < 2 {
					return fmt.Errorf("%s needs a field name", id.Ident)
				}
				s, ok := n.Args[1].(*parse.StringNode)
				if !ok {
					return fmt.Errorf("%s: field name must be a string literal, got %s", id.Ident, n.Args[1])
				}
				seen[s.Text] = true
			}
		}
		for _, a := range n.Args {
			if err := collectSlots(a, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectBranch(b *parse.BranchNode, seen map[string]bool) error {
	if err := collectSlots(b.Pipe, seen); err != nil {
		return err
	}
	if err := collectSlots(b.List, seen); err != nil {
		return err
	}
	return collectSlots(b.ElseList, seen)
}
