// Package render fills document layouts from extraction results.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/amishk599/jobpress/internal/model"
)

// DefaultPlaceholder stands in for every fact that could not be extracted.
const DefaultPlaceholder = "Update Soon"

var blankRunRe = regexp.MustCompile(`\n{3,}`)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

// Renderer implements the template rendering stage. It is pure: the same
// result, template and topic always produce the same document.
type Renderer struct {
	placeholder string
}

// NewRenderer creates a renderer. An empty placeholder uses DefaultPlaceholder.
func NewRenderer(placeholder string) *Renderer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Renderer{placeholder: placeholder}
}

type pageData struct {
	Topic       string
	Placeholder string
}

// Render executes t against res. A template that references a field the
// result does not carry fails with *model.SchemaMismatchError before any
// output is produced.
func (r *Renderer) Render(res *model.ExtractionResult, t *Template, topic string) (*model.Document, error) {
	var unknown []string
	for _, f := range t.fields {
		if _, ok := res.Get(f); !ok {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return nil, &model.SchemaMismatchError{Template: t.Name, Schema: res.Schema, Fields: unknown}
	}

	fill := &filler{res: res, placeholder: r.placeholder, seen: map[string]bool{}}
	tt, err := t.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name, err)
	}
	tt.Funcs(fill.funcs())

	var buf bytes.Buffer
	if err := tt.Execute(&buf, pageData{Topic: topic, Placeholder: r.placeholder}); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name, err)
	}

	out := blankRunRe.ReplaceAllString(buf.String(), "\n\n")
	return &model.Document{
		Topic:    topic,
		Layout:   t.Name,
		Markdown: strings.TrimSpace(out) + "\n",
		Missing:  fill.missing,
	}, nil
}

// filler holds the per-render state behind the template functions.
type filler struct {
	res         *model.ExtractionResult
	placeholder string
	missing     []string
	seen        map[string]bool
}

func (f *filler) funcs() template.FuncMap {
	return template.FuncMap{
		"field": f.field,
		"money": f.money,
		"unit":  f.unit,
		"link":  f.link,
		"has":   f.has,
		"items": f.items,
		"rows":  f.rows,
		"iso":   f.iso,
		"cell":  escapeCell,
	}
}

// stubFuncs lets templates parse before any result is bound.
func stubFuncs() template.FuncMap {
	return (&filler{}).funcs()
}

func (f *filler) record(name string) (model.FieldRecord, bool) {
	rec, _ := f.res.Get(name)
	if rec.Missing || (rec.Value == "" && len(rec.Items) == 0 && len(rec.Rows) == 0) {
		if !f.seen[name] {
			f.seen[name] = true
			f.missing = append(f.missing, name)
		}
		return rec, false
	}
	return rec, true
}

func (f *filler) field(name string) string {
	rec, ok := f.record(name)
	if !ok {
		return f.placeholder
	}
	if rec.Value == "" && len(rec.Items) > 0 {
		return escapeCell(strings.Join(rec.Items, ", "))
	}
	return escapeCell(rec.Value)
}

// money prefixes a bare amount with the rupee sign.
func (f *filler) money(name string) string {
	v := f.field(name)
	if v == f.placeholder || strings.HasPrefix(v, "₹") {
		return v
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "rs") || strings.HasPrefix(lower, "inr") {
		return v
	}
	return "₹" + v
}

func (f *filler) unit(name, suffix string) string {
	v := f.field(name)
	if v == f.placeholder {
		return v
	}
	return v + " " + suffix
}

func (f *filler) link(name, label string) string {
	rec, ok := f.record(name)
	if !ok {
		return f.placeholder
	}
	return fmt.Sprintf("[%s](%s)", label, rec.Value)
}

func (f *filler) has(name string) bool {
	rec, _ := f.res.Get(name)
	return !rec.Missing && (rec.Value != "" || len(rec.Items) > 0 || len(rec.Rows) > 0)
}

func (f *filler) items(name string) []string {
	rec, _ := f.res.Get(name)
	if rec.Missing {
		return nil
	}
	out := make([]string, len(rec.Items))
	for i, it := range rec.Items {
		out[i] = strings.ReplaceAll(it, "\n", " ")
	}
	return out
}

func (f *filler) rows(name string) [][]string {
	rec, _ := f.res.Get(name)
	if rec.Missing {
		return nil
	}
	out := make([][]string, len(rec.Rows))
	for i, row := range rec.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = escapeCell(c)
		}
		out[i] = cells
	}
	return out
}

func (f *filler) iso(name string) string {
	rec, _ := f.res.Get(name)
	if rec.Missing {
		return ""
	}
	return rec.ISO
}

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
