package model

// Shape is the expected form of a schema field's value.
type Shape string

const (
	ShapeDate     Shape = "date"
	ShapeCurrency Shape = "currency"
	ShapeInteger  Shape = "integer"
	ShapeText     Shape = "text"
	ShapeList     Shape = "list"
	ShapeTable    Shape = "table"
	ShapeQA       Shape = "qa"
	ShapeURL      Shape = "url"
)

// Reasons a field can end up missing.
const (
	ReasonNotFound  = "not_found"
	ReasonAmbiguous = "ambiguous"
)

// FieldRecord is one schema field's extracted value or its explicit absence.
type FieldRecord struct {
	Name  string
	Shape Shape

	Value string     // scalar shapes
	Items []string   // list shape
	Rows  [][]string // table and qa shapes, cells in schema column order

	Missing bool
	Reason  string // set when Missing

	Span      string // verbatim source substring the value came from
	ISO       string // date fields: ISO-8601 form when the literal is unambiguous
	Rephrased bool   // Value was reworded; Span holds the verbatim text
}

// MissingField returns a record marked missing for the given reason.
func MissingField(name string, shape Shape, reason string) FieldRecord {
	return FieldRecord{Name: name, Shape: shape, Missing: true, Reason: reason}
}

// ExtractionResult holds one record per schema field, in schema order.
type ExtractionResult struct {
	Schema  string
	Version int
	Fields  []FieldRecord
}

// Get looks up a record by field name.
func (r *ExtractionResult) Get(name string) (FieldRecord, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldRecord{}, false
}

// Missing returns the names of all fields marked missing, in schema order.
func (r *ExtractionResult) Missing() []string {
	var names []string
	for _, f := range r.Fields {
		if f.Missing {
			names = append(names, f.Name)
		}
	}
	return names
}
