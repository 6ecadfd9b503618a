package pipeline

import (
	"fmt"
	"os"
	"sort"

	"github.com/amishk599/jobpress/internal/render"
	"github.com/amishk599/jobpress/internal/schema"
)

// Layout pairs a template with the schema its slots are filled from.
type Layout struct {
	Name     string
	Schema   *schema.Schema
	Template *render.Template
}

// NewLayout checks that every field t references exists in s.
func NewLayout(name string, s *schema.Schema, t *render.Template) (*Layout, error) {
	if err := t.Check(s); err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}
	return &Layout{Name: name, Schema: s, Template: t}, nil
}

// builtinLayoutSchemas maps each embedded template to its schema.
var builtinLayoutSchemas = map[string]string{
	"sarkari": "recruitment",
	"plain":   "recruitment",
}

// BuiltinLayouts returns the embedded layouts keyed by name.
func BuiltinLayouts() (map[string]*Layout, error) {
	schemas, err := schema.Builtin()
	if err != nil {
		return nil, err
	}
	templates, err := render.Builtin()
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Layout, len(builtinLayoutSchemas))
	for name, schemaName := range builtinLayoutSchemas {
		t, ok := templates[name]
		if !ok {
			return nil, fmt.Errorf("builtin template %s not found", name)
		}
		s, ok := schemas[schemaName]
		if !ok {
			return nil, fmt.Errorf("builtin schema %s not found", schemaName)
		}
		l, err := NewLayout(name, s, t)
		if err != nil {
			return nil, err
		}
		out[name] = l
	}
	return out, nil
}

// LoadLayout builds a layout from a template file. schemaRef names a schema
// in schemas or, failing that, a schema YAML file.
func LoadLayout(name, schemaRef, templatePath string, schemas map[string]*schema.Schema) (*Layout, error) {
	s, ok := schemas[schemaRef]
	if !ok {
		var err error
		s, err = schema.LoadFile(schemaRef)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", name, err)
		}
	}
	text, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("layout %s: read template: %w", name, err)
	}
	t, err := render.Parse(name, string(text))
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}
	return NewLayout(name, s, t)
}

// LayoutNames returns the sorted keys of a layout map.
func LayoutNames(m map[string]*Layout) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
