package model

// Source identifies where a field value came from.
type Source string

const (
	SourceInput    Source = "input"
	SourceRegistry Source = "registry"
	SourceDocument Source = "document"
)

// Sources lists every source in discrepancy reporting order.
var Sources = []Source{SourceInput, SourceRegistry, SourceDocument}

// FieldComparison records the values each source reported for one field and
// whether they agree. Values holds present values only.
type FieldComparison struct {
	Field   Field             `json:"field_name"`
	Values  map[Source]string `json:"values_by_source"`
	Matched bool              `json:"matched"`
}

// Compared reports whether the field had enough sources to be cross-checked.
func (c FieldComparison) Compared() bool {
	return len(c.Values) >= 2
}

// Present returns the sources that reported a value, in fixed order.
func (c FieldComparison) Present() []Source {
	out := make([]Source, 0, len(c.Values))
	for _, s := range Sources {
		if _, ok := c.Values[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
