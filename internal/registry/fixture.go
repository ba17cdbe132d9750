package registry

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/provider-verify/internal/model"
)

// Fixtures maps an NPI to the record the mock registry serves for it.
type Fixtures map[string]model.ProviderRecord

type fixtureFile struct {
	Providers map[string]wireRecord `yaml:"providers"`
}

// DefaultFixtures is the built-in demo dataset. Dr. Sharma's phone differs
// from the demo roster on purpose.
func DefaultFixtures() Fixtures {
	return Fixtures{
		"1234567890": {
			Name:    "Dr. Priya Sharma",
			Phone:   "555-1233",
			Address: "123 Main St, Mumbai",
			License: "MH-98765",
		},
		"2345678901": {
			Name:    "Dr. Arjun Gupta",
			Phone:   "555-5678",
			Address: "456 Old Rd, Delhi",
			License: "DL-12345",
		},
	}
}

// LoadFixturesFromFile reads a YAML (or JSON) document of the form
// {providers: {<npi>: {name, phone, address, license}}}.
func LoadFixturesFromFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read fixtures")
	}

	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal fixtures")
	}
	if len(f.Providers) == 0 {
		return nil, eris.Errorf("registry: fixtures file %s has no providers", path)
	}

	out := make(Fixtures, len(f.Providers))
	for npi, rec := range f.Providers {
		out[npi] = rec.toModel("")
	}
	return out, nil
}

// IDs returns the fixture identifiers in sorted order.
func (f Fixtures) IDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
