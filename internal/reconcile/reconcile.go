// Package reconcile merges a provider's input, registry, and document records
// into a single scored report.
package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/provider-verify/internal/model"
)

// NoteNoComparison is attached when no field had two or more sources.
const NoteNoComparison = "no field could be cross-checked against an external source; confidence reported as 0"

// Reconcile compares phone, address, and license across the three sources,
// builds the final profile by precedence (registry > document > input), and
// scores the fraction of cross-checkable fields that agree. It never fails:
// unsuccessful lookups simply contribute no values.
func Reconcile(input model.ProviderRecord, registry, document model.LookupResult) model.ReconciliationReport {
	report := model.ReconciliationReport{
		FinalProfile:  finalProfile(input, registry, document),
		Discrepancies: []string{},
	}

	var compared, matched int
	for _, field := range model.ComparedFields {
		cmp := compareField(field, input, registry, document)
		report.Comparisons = append(report.Comparisons, cmp)

		if !cmp.Compared() {
			continue
		}
		compared++
		if cmp.Matched {
			matched++
			continue
		}
		report.Discrepancies = append(report.Discrepancies, describe(cmp))
	}

	if compared == 0 {
		report.Notes = append(report.Notes, NoteNoComparison)
		return report
	}
	report.ConfidenceScore = float64(matched) / float64(compared)
	return report
}

// collect gathers the present values of field, keyed by source. The document
// only ever contributes a license.
func collect(field model.Field, input model.ProviderRecord, registry, document model.LookupResult) map[model.Source]string {
	values := make(map[model.Source]string, len(model.Sources))
	if v := input.Get(field); v != "" {
		values[model.SourceInput] = v
	}
	if v := registry.Value(field); v != "" {
		values[model.SourceRegistry] = v
	}
	if field == model.FieldLicense {
		if v := document.Value(field); v != "" {
			values[model.SourceDocument] = v
		}
	}
	return values
}

func compareField(field model.Field, input model.ProviderRecord, registry, document model.LookupResult) model.FieldComparison {
	values := collect(field, input, registry, document)
	cmp := model.FieldComparison{Field: field, Values: values, Matched: true}

	var first string
	seen := false
	for _, src := range cmp.Present() {
		key := canonical(field, values[src])
		if !seen {
			first, seen = key, true
			continue
		}
		if key != first {
			cmp.Matched = false
			break
		}
	}
	return cmp
}

// canonical returns the comparison key for a value. Phones drop all
// whitespace, addresses collapse whitespace runs, and both are case-folded.
// License tokens compare exactly.
func canonical(field model.Field, value string) string {
	fields := strings.Fields(value)
	switch field {
	case model.FieldLicense:
		return strings.TrimSpace(value)
	case model.FieldPhone:
		value = strings.Join(fields, "")
	default:
		value = strings.Join(fields, " ")
	}
	// Casers are stateful, so each call gets its own.
	return cases.Fold().String(value)
}

func describe(cmp model.FieldComparison) string {
	parts := make([]string, 0, len(cmp.Values))
	for _, src := range cmp.Present() {
		parts = append(parts, fmt.Sprintf("%s(%s)", src, cmp.Values[src]))
	}
	return fmt.Sprintf("%s mismatch: %s", cmp.Field, strings.Join(parts, " vs "))
}

func finalProfile(input model.ProviderRecord, registry, document model.LookupResult) model.ProviderRecord {
	profile := model.ProviderRecord{NPI: input.NPI}
	for _, field := range []model.Field{model.FieldName, model.FieldPhone, model.FieldAddress, model.FieldLicense} {
		profile = profile.With(field, pick(field, input, registry, document))
	}
	return profile
}

func pick(field model.Field, input model.ProviderRecord, registry, document model.LookupResult) string {
	if v := registry.Value(field); v != "" {
		return v
	}
	if field == model.FieldLicense {
		if v := document.Value(field); v != "" {
			return v
		}
	}
	return input.Get(field)
}
