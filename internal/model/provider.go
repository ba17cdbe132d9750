package model

import "strings"

// ProviderRecord is one provider as known from a single source.
// An empty or whitespace-only field is treated as absent.
type ProviderRecord struct {
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Address string `json:"address" yaml:"address"`
	License string `json:"license" yaml:"license"`
	NPI     string `json:"npi_id,omitempty" yaml:"npi_id,omitempty"`
}

// Field names a ProviderRecord attribute.
type Field string

const (
	FieldName    Field = "name"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
	FieldLicense Field = "license"
)

// ComparedFields lists the fields cross-checked during reconciliation, in
// report order. Name is identity and is never compared.
var ComparedFields = []Field{FieldPhone, FieldAddress, FieldLicense}

// Get returns the trimmed value of f, or "" when absent.
func (r ProviderRecord) Get(f Field) string {
	switch f {
	case FieldName:
		return strings.TrimSpace(r.Name)
	case FieldPhone:
		return strings.TrimSpace(r.Phone)
	case FieldAddress:
		return strings.TrimSpace(r.Address)
	case FieldLicense:
		return strings.TrimSpace(r.License)
	default:
		return ""
	}
}

// With returns a copy of r with f set to value.
func (r ProviderRecord) With(f Field, value string) ProviderRecord {
	switch f {
	case FieldName:
		r.Name = value
	case FieldPhone:
		r.Phone = value
	case FieldAddress:
		r.Address = value
	case FieldLicense:
		r.License = value
	}
	return r
}

// Has reports whether f carries a non-empty value.
func (r ProviderRecord) Has(f Field) bool {
	return r.Get(f) != ""
}
