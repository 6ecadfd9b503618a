// Package schema defines the versioned field schemas the extractor fills.
// Schemas are YAML documents; the built-in ones are embedded in the binary.
package schema

import (
	"embed"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobpress/internal/model"
)

//go:embed schemas/*.yaml
var builtinFS embed.FS

const (
	defaultWindow  = 60
	defaultContext = 120
)

// Label is one way a field can be announced in source text.
type Label struct {
	Pattern    string `yaml:"pattern"`
	Pick       int    `yaml:"pick"`        // 1-based index of the value to take after the label
	Range      bool   `yaml:"range"`       // value must be part of an "A to B" range
	ValueFirst bool   `yaml:"value_first"` // value precedes the label ("500 Posts")

	Re *regexp.Regexp `yaml:"-"`
}

// Column describes one column of a table-shaped field.
type Column struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Numeric  bool     `yaml:"numeric"`
	Optional bool     `yaml:"optional"` // header may lack this column

	Re *regexp.Regexp `yaml:"-"`
}

// Field is one fact a document attempts to fill.
type Field struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Shape       model.Shape `yaml:"shape"`
	Optional    bool        `yaml:"optional"` // list-type sections omitted when empty
	Labels      []Label     `yaml:"labels"`
	Context     string      `yaml:"context"` // must occur shortly before the label
	Reject      string      `yaml:"reject"`  // label is ignored when this appears next to it
	Window      int         `yaml:"window"`  // runes after the label searched for a value
	Rephrase    bool        `yaml:"rephrase"`
	Columns     []Column    `yaml:"columns"`

	ContextRe     *regexp.Regexp `yaml:"-"`
	RejectRe      *regexp.Regexp `yaml:"-"`
	ContextWindow int            `yaml:"-"`
}

// Schema is a named, versioned list of fields.
type Schema struct {
	Name    string  `yaml:"name"`
	Version int     `yaml:"version"`
	Fields  []Field `yaml:"fields"`

	index map[string]int
}

// Field returns the definition for name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Has reports whether the schema defines name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Parse decodes and compiles a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a schema document from disk.
func LoadFile(p string) (*Schema, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Builtin returns the embedded schemas keyed by name.
func Builtin() (map[string]*Schema, error) {
	entries, err := builtinFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("list builtin schemas: %w", err)
	}
	out := make(map[string]*Schema, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read builtin schema %s: %w", e.Name(), err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin schema %s: %w", e.Name(), err)
		}
		out[s.Name] = s
	}
	return out, nil
}

// Names returns the sorted keys of a schema map.
func Names(m map[string]*Schema) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Schema) compile() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if s.Version <= 0 {
		return fmt.Errorf("schema %s: version must be positive", s.Name)
	}
	s.index = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("schema %s: field %d has no name", s.Name, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		s.index[f.Name] = i
		if err := f.compile(); err != nil {
			return fmt.Errorf("schema %s: field %s: %w", s.Name, f.Name, err)
		}
	}
	return nil
}

func (f *Field) compile() error {
	switch f.Shape {
	case model.ShapeDate, model.ShapeCurrency, model.ShapeInteger, model.ShapeText,
		model.ShapeList, model.ShapeURL:
		if len(f.Labels) == 0 {
			return fmt.Errorf("shape %s needs at least one label", f.Shape)
		}
	case model.ShapeTable:
		if len(f.Columns) == 0 {
			return fmt.Errorf("table shape needs columns")
		}
	case model.ShapeQA:
	default:
		return fmt.Errorf("unknown shape %q", f.Shape)
	}

	if f.Window <= 0 {
		f.Window = defaultWindow
	}
	f.ContextWindow = defaultContext

	for i := range f.Labels {
		l := &f.Labels[i]
		if l.Pick <= 0 {
			l.Pick = 1
		}
		re, err := regexp.Compile(`(?i)` + l.Pattern)
		if err != nil {
			return fmt.Errorf("label %q: %w", l.Pattern, err)
		}
		l.Re = re
	}
	for i := range f.Columns {
		c := &f.Columns[i]
		if len(c.Aliases) == 0 {
			c.Aliases = []string{c.Name}
		}
		alts := make([]string, len(c.Aliases))
		for j, a := range c.Aliases {
			alts[j] = regexp.QuoteMeta(a)
		}
		re, err := regexp.Compile(`(?i)(?:^|[^\pL\pN])(?:` + strings.Join(alts, "|") + `)(?:[^\pL\pN]|$)`)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		c.Re = re
	}

	var err error
	if f.Context != "" {
		if f.ContextRe, err = regexp.Compile(`(?i)` + f.Context); err != nil {
			return fmt.Errorf("context: %w", err)
		}
	}
	if f.Reject != "" {
		if f.RejectRe, err = regexp.Compile(`(?i)` + f.Reject); err != nil {
			return fmt.Errorf("reject: %w", err)
		}
	}
	return nil
}
