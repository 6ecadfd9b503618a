package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/jobpress/internal/model"
)

func TestBuiltin_Recruitment(t *testing.T) {
	all, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	s, ok := all["recruitment"]
	if !ok {
		t.Fatalf("recruitment schema missing, got %v", Names(all))
	}
	if s.Version != 1 {
		t.Errorf("version = %d, want 1", s.Version)
	}

	for _, name := range []string{"totalVacancy", "applyStartDate", "applyLastDate", "feeGeneral", "feeReserved", "minimumAge", "maximumAge", "zoneVacancy"} {
		if !s.Has(name) {
			t.Errorf("field %s not defined", name)
		}
	}

	f, _ := s.Field("applyLastDate")
	if f.Shape != model.ShapeDate {
		t.Errorf("applyLastDate shape = %s", f.Shape)
	}
	if f.RejectRe == nil {
		t.Error("applyLastDate reject pattern not compiled")
	}
	for _, l := range f.Labels {
		if l.Re == nil || l.Pick < 1 {
			t.Errorf("label %q not compiled (pick=%d)", l.Pattern, l.Pick)
		}
	}

	zone, _ := s.Field("zoneVacancy")
	if zone.Shape != model.ShapeTable || len(zone.Columns) != 7 {
		t.Errorf("zoneVacancy = %s with %d columns", zone.Shape, len(zone.Columns))
	}
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(`
name: mini
version: 2
fields:
  - name: total
    shape: integer
    labels:
      - pattern: 'total posts'
  - name: rows
    shape: table
    columns:
      - name: zone
      - name: count
        numeric: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	total, _ := s.Field("total")
	if total.Window != defaultWindow {
		t.Errorf("window = %d, want %d", total.Window, defaultWindow)
	}
	if total.Labels[0].Pick != 1 {
		t.Errorf("pick = %d, want 1", total.Labels[0].Pick)
	}
	if !total.Labels[0].Re.MatchString("TOTAL POSTS: 5") {
		t.Error("label regex should be case-insensitive")
	}

	rows, _ := s.Field("rows")
	c := rows.Columns[0]
	if !c.Re.MatchString("Zone | Count") || c.Re.MatchString("Ozone") {
		t.Errorf("column regex %q should match whole words only", c.Re)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no name", "version: 1\nfields: []\n", "name is required"},
		{"bad version", "name: x\nversion: 0\n", "version must be positive"},
		{"unknown shape", "name: x\nversion: 1\nfields:\n  - name: a\n    shape: blob\n", "unknown shape"},
		{"no labels", "name: x\nversion: 1\nfields:\n  - name: a\n    shape: date\n", "at least one label"},
		{"duplicate", "name: x\nversion: 1\nfields:\n  - name: a\n    shape: qa\n  - name: a\n    shape: qa\n", "duplicate field"},
		{"bad regex", "name: x\nversion: 1\nfields:\n  - name: a\n    shape: date\n    labels:\n      - pattern: '(unclosed'\n", "label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.yaml")
	doc := "name: custom\nversion: 3\nfields:\n  - name: faqs\n    shape: qa\n"
	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Name != "custom" || s.Version != 3 || !s.Has("faqs") {
		t.Errorf("unexpected schema %+v", s)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
