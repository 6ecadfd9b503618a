package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/schema"
)

func recruitment(t *testing.T) *schema.Schema {
	t.Helper()
	all, err := schema.Builtin()
	if err != nil {
		t.Fatalf("schema.Builtin: %v", err)
	}
	return all["recruitment"]
}

// result returns a result for s with every field missing except those in set.
func result(s *schema.Schema, set map[string]model.FieldRecord) *model.ExtractionResult {
	res := &model.ExtractionResult{Schema: s.Name, Version: s.Version}
	for _, f := range s.Fields {
		if rec, ok := set[f.Name]; ok {
			rec.Name, rec.Shape = f.Name, f.Shape
			res.Fields = append(res.Fields, rec)
			continue
		}
		res.Fields = append(res.Fields, model.MissingField(f.Name, f.Shape, model.ReasonNotFound))
	}
	return res
}

func builtin(t *testing.T, name string) *Template {
	t.Helper()
	all, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	tmpl, ok := all[name]
	if !ok {
		t.Fatalf("layout %s not embedded", name)
	}
	return tmpl
}

func TestBuiltin_MatchesRecruitmentSchema(t *testing.T) {
	s := recruitment(t)
	for _, name := range []string{"sarkari", "plain"} {
		tmpl := builtin(t, name)
		if err := tmpl.Check(s); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if len(tmpl.Fields()) == 0 {
			t.Errorf("%s references no fields", name)
		}
	}
}

func TestRender_PlaceholderCountMatchesMissingFields(t *testing.T) {
	tmpl, err := Parse("five", `A={{field "a"}} B={{field "b"}} C={{field "c"}} D={{field "d"}} E={{field "e"}}`)
	if err != nil {
		t.Fatal(err)
	}
	res := &model.ExtractionResult{Schema: "mini", Version: 1, Fields: []model.FieldRecord{
		{Name: "a", Value: "1"},
		model.MissingField("b", model.ShapeText, model.ReasonNotFound),
		{Name: "c", Value: "3"},
		model.MissingField("d", model.ShapeText, model.ReasonAmbiguous),
		{Name: "e", Value: "5"},
	}}

	doc, err := NewRenderer("").Render(res, tmpl, "topic")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := strings.Count(doc.Markdown, DefaultPlaceholder); got != 2 {
		t.Errorf("placeholders = %d, want 2\n%s", got, doc.Markdown)
	}
	if diff := cmp.Diff([]string{"b", "d"}, doc.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if doc.Markdown != "A=1 B=Update Soon C=3 D=Update Soon E=5\n" {
		t.Errorf("markdown = %q", doc.Markdown)
	}
}

func TestRender_CustomPlaceholder(t *testing.T) {
	tmpl, _ := Parse("one", `{{field "a"}}`)
	res := &model.ExtractionResult{Fields: []model.FieldRecord{model.MissingField("a", model.ShapeText, model.ReasonNotFound)}}
	doc, err := NewRenderer("जल्द अपडेट").Render(res, tmpl, "x")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Markdown != "जल्द अपडेट\n" {
		t.Errorf("markdown = %q", doc.Markdown)
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	s := recruitment(t)
	res := result(s, map[string]model.FieldRecord{
		"totalVacancy": {Value: "500"},
		"feeGeneral":   {Value: "500"},
		"zoneVacancy":  {Rows: [][]string{{"ZoneA", "10", "5", "2", "3", "1", "21"}}},
	})
	tmpl := builtin(t, "sarkari")
	r := NewRenderer("")
	a, err := r.Render(res, tmpl, "RRB Group D Recruitment 2026")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(res, tmpl, "RRB Group D Recruitment 2026")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("renders differ (-a +b):\n%s", diff)
	}
}

func TestRender_OptionalSectionsOmitted(t *testing.T) {
	s := recruitment(t)
	res := result(s, map[string]model.FieldRecord{"totalVacancy": {Value: "500"}})
	doc, err := NewRenderer("").Render(res, builtin(t, "sarkari"), "RRB Group D Recruitment 2026")
	if err != nil {
		t.Fatal(err)
	}
	for _, heading := range []string{"Zone/Category Wise Vacancy", "Selection Process", "FAQs", "Eligibility Details"} {
		if strings.Contains(doc.Markdown, heading) {
			t.Errorf("section %q should be omitted", heading)
		}
	}
	if strings.Contains(doc.Markdown, "\n\n\n") {
		t.Error("omitted sections left blank runs behind")
	}
	for _, name := range []string{"zoneVacancy", "selectionProcess", "faqs", "eligibility", "postDetails"} {
		for _, m := range doc.Missing {
			if m == name {
				t.Errorf("optional field %s reported as placeholder", name)
			}
		}
	}
}

func TestRender_ZoneTableCopiedCellForCell(t *testing.T) {
	s := recruitment(t)
	res := result(s, map[string]model.FieldRecord{
		"zoneVacancy": {Rows: [][]string{
			{"ZoneA", "10", "5", "2", "3", "1", "21"},
			{"", "7", "4", "1", "2", "0", "14"},
		}},
	})
	doc, err := NewRenderer("").Render(res, builtin(t, "sarkari"), "x")
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range []string{
		"| ZoneA | 10 | 5 | 2 | 3 | 1 | 21 |",
		"| - | 7 | 4 | 1 | 2 | 0 | 14 |",
	} {
		if !strings.Contains(doc.Markdown, row) {
			t.Errorf("missing row %q in\n%s", row, doc.Markdown)
		}
	}
}

func TestRender_SarkariFacts(t *testing.T) {
	s := recruitment(t)
	res := result(s, map[string]model.FieldRecord{
		"totalVacancy":   {Value: "500"},
		"applyStartDate": {Value: "01-01-2026", ISO: "2026-01-01"},
		"applyLastDate":  {Value: "28-02-2026", ISO: "2026-02-28"},
		"feeGeneral":     {Value: "500"},
		"feeReserved":    {Value: "250"},
		"applyLink":      {Value: "https://rrbapply.gov.in"},
		"faqs":           {Rows: [][]string{{"Is there negative marking?", "Yes"}}},
	})
	doc, err := NewRenderer("").Render(res, builtin(t, "sarkari"), "RRB Group D Recruitment 2026")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"**Meta Title:** RRB Group D Recruitment 2026: 500 पदों पर",
		"**Apply Start:** 01-01-2026",
		"**Last Date:** 28-02-2026",
		"**Gen/OBC/EWS:** ₹500",
		"**SC/ST/Female:** ₹250",
		"**500 Posts**",
		"**Minimum Age:** Update Soon",
		"[Click Here](https://rrbapply.gov.in)",
		"**Q. Is there negative marking?**\nAns. Yes",
	} {
		if !strings.Contains(doc.Markdown, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if doc.Layout != "sarkari" || doc.Topic != "RRB Group D Recruitment 2026" {
		t.Errorf("document header = %q / %q", doc.Layout, doc.Topic)
	}
	for _, name := range []string{"minimumAge", "maximumAge", "boardName"} {
		found := false
		for _, m := range doc.Missing {
			found = found || m == name
		}
		if !found {
			t.Errorf("%s not reported missing: %v", name, doc.Missing)
		}
	}
}

func TestRender_SchemaMismatch(t *testing.T) {
	tmpl, err := Parse("broken", `{{field "totalVacancy"}} {{if has "bogus"}}x{{end}}`)
	if err != nil {
		t.Fatal(err)
	}
	s := recruitment(t)

	var mismatch *model.SchemaMismatchError
	if err := tmpl.Check(s); !errors.As(err, &mismatch) {
		t.Fatalf("Check: expected SchemaMismatchError, got %v", err)
	}
	if diff := cmp.Diff([]string{"bogus"}, mismatch.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}

	_, err = NewRenderer("").Render(result(s, nil), tmpl, "x")
	if !errors.As(err, &mismatch) {
		t.Fatalf("Render: expected SchemaMismatchError, got %v", err)
	}
}

func TestParse_FieldNamesMustBeLiterals(t *testing.T) {
	if _, err := Parse("dynamic", `{{field .Topic}}`); err == nil {
		t.Fatal("expected error for non-literal field name")
	}
}

func TestParse_CollectsNestedSlots(t *testing.T) {
	tmpl, err := Parse("nested", `{{if or (has "a") (has "b")}}{{range rows "c"}}{{index . 0}}{{end}}{{else}}{{money "d"}}{{end}}{{define "x"}}{{iso "e"}}{{end}}`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, tmpl.Fields()); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestRender_EscapesTableCells(t *testing.T) {
	tmpl, _ := Parse("cells", `| {{field "a"}} |{{range rows "t"}} {{index . 0}} |{{end}}`)
	res := &model.ExtractionResult{Fields: []model.FieldRecord{
		{Name: "a", Value: "10th | ITI"},
		{Name: "t", Rows: [][]string{{"line one\nline two"}}},
	}}
	doc, err := NewRenderer("").Render(res, tmpl, "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := "| 10th \\| ITI | line one<br>line two |\n"; doc.Markdown != want {
		t.Errorf("markdown = %q, want %q", doc.Markdown, want)
	}
}

func TestMoney(t *testing.T) {
	res := &model.ExtractionResult{Fields: []model.FieldRecord{
		{Name: "bare", Value: "1,000"},
		{Name: "rupee", Value: "₹100"},
		{Name: "rs", Value: "Rs. 100"},
		model.MissingField("none", model.ShapeCurrency, model.ReasonNotFound),
	}}
	f := &filler{res: res, placeholder: DefaultPlaceholder, seen: map[string]bool{}}
	tests := map[string]string{
		"bare":  "₹1,000",
		"rupee": "₹100",
		"rs":    "Rs. 100",
		"none":  DefaultPlaceholder,
	}
	for name, want := range tests {
		if got := f.money(name); got != want {
			t.Errorf("money(%q) = %q, want %q", name, got, want)
		}
	}
}
