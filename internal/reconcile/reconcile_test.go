package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provider-verify/internal/model"
)

var (
	priyaInput = model.ProviderRecord{
		Name:    "Dr. Priya Sharma",
		Phone:   "555-1234",
		Address: "123 Main St, Mumbai",
		License: "MH-98765",
		NPI:     "1234567890",
	}
	priyaRegistry = model.ProviderRecord{
		Name:    "Dr. Priya Sharma",
		Phone:   "555-1233",
		Address: "123 Main St, Mumbai",
		License: "MH-98765",
	}
)

func TestReconcile_PhoneMismatchOnly(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{Phone: "555-1234"},
		model.Success(model.ProviderRecord{Phone: "555-1233"}),
		model.NotFound("no document"),
	)

	assert.Equal(t, []string{"phone mismatch: input(555-1234) vs registry(555-1233)"}, report.Discrepancies)
	assert.Equal(t, "555-1233", report.FinalProfile.Phone)
	assert.InDelta(t, 0.0, report.ConfidenceScore, 1e-9)
	assert.Empty(t, report.Notes)
}

func TestReconcile_LicenseAgreesEverywhere(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{License: "MH-98765"},
		model.Success(model.ProviderRecord{License: "MH-98765"}),
		model.Success(model.ProviderRecord{License: "MH-98765"}),
	)

	assert.Empty(t, report.Discrepancies)
	assert.InDelta(t, 1.0, report.ConfidenceScore, 1e-9)
	assert.Equal(t, "MH-98765", report.FinalProfile.License)
}

func TestReconcile_LicenseMismatchNamesBothValues(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{License: "MH-98765"},
		model.Success(model.ProviderRecord{License: "MH-11111"}),
		model.NotFound(""),
	)

	require.Len(t, report.Discrepancies, 1)
	d := report.Discrepancies[0]
	assert.Contains(t, d, "license")
	assert.Contains(t, d, "MH-98765")
	assert.Contains(t, d, "MH-11111")
	assert.Equal(t, "MH-11111", report.FinalProfile.License)
}

func TestReconcile_ThreeWayLicenseDiscrepancyOrder(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{License: "A-1"},
		model.Success(model.ProviderRecord{License: "A-1"}),
		model.Success(model.ProviderRecord{License: "A-2"}),
	)

	assert.Equal(t, []string{"license mismatch: input(A-1) vs registry(A-1) vs document(A-2)"}, report.Discrepancies)
	assert.Equal(t, "A-1", report.FinalProfile.License, "registry wins over document")
}

func TestReconcile_BothLookupsFailed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		registry model.LookupResult
		document model.LookupResult
	}{
		{"not found twice", model.NotFound("NPI not found"), model.NotFound("no pdf")},
		{"transient twice", model.TransientError("timeout", nil), model.TransientError("cannot open", nil)},
		{"mixed", model.NotFound(""), model.TransientError("boom", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := Reconcile(priyaInput, tt.registry, tt.document)

			assert.Empty(t, report.Discrepancies)
			assert.NotNil(t, report.Discrepancies)
			assert.Zero(t, report.ConfidenceScore)
			assert.Equal(t, []string{NoteNoComparison}, report.Notes)
			assert.Equal(t, priyaInput, report.FinalProfile)
		})
	}
}

func TestReconcile_RegistryPreferredForPhone(t *testing.T) {
	t.Parallel()

	report := Reconcile(priyaInput, model.Success(priyaRegistry), model.NotFound(""))
	assert.Equal(t, "555-1233", report.FinalProfile.Phone)
	assert.Equal(t, "1234567890", report.FinalProfile.NPI)
	assert.Equal(t, []string{"phone mismatch: input(555-1234) vs registry(555-1233)"}, report.Discrepancies)
	assert.InDelta(t, 2.0/3.0, report.ConfidenceScore, 1e-9)
	assert.Equal(t, "67%", report.ConfidencePercent())
}

func TestReconcile_DocumentFillsMissingLicense(t *testing.T) {
	t.Parallel()

	input := model.ProviderRecord{Name: "Dr. Arjun Gupta", Phone: "555-5678"}
	reg := model.Success(model.ProviderRecord{Phone: "555-5678"})
	doc := model.Success(model.ProviderRecord{License: "DL-12345"})

	report := Reconcile(input, reg, doc)
	assert.Equal(t, "DL-12345", report.FinalProfile.License)
	assert.Equal(t, "Dr. Arjun Gupta", report.FinalProfile.Name)
	// phone compared and matched; license has a single source; address absent.
	assert.InDelta(t, 1.0, report.ConfidenceScore, 1e-9)
	assert.Empty(t, report.Discrepancies)
}

func TestReconcile_DocumentOnlyContributesLicense(t *testing.T) {
	t.Parallel()

	doc := model.Success(model.ProviderRecord{Phone: "999-0000", License: "MH-98765"})
	report := Reconcile(model.ProviderRecord{Phone: "555-1234", License: "MH-98765"}, model.NotFound(""), doc)

	assert.Equal(t, "555-1234", report.FinalProfile.Phone)
	assert.Empty(t, report.Discrepancies)
	assert.InDelta(t, 1.0, report.ConfidenceScore, 1e-9)
}

func TestReconcile_CaseAndWhitespaceInsensitiveAddress(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{Address: "123  main st,\tMUMBAI"},
		model.Success(model.ProviderRecord{Address: "123 Main St, Mumbai"}),
		model.NotFound(""),
	)
	assert.Empty(t, report.Discrepancies)
	assert.InDelta(t, 1.0, report.ConfidenceScore, 1e-9)
	assert.Equal(t, "123 Main St, Mumbai", report.FinalProfile.Address)
}

func TestReconcile_PhoneIgnoresWhitespace(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{Phone: "555 1234"},
		model.Success(model.ProviderRecord{Phone: "5551234"}),
		model.NotFound(""),
	)
	assert.Empty(t, report.Discrepancies)
	assert.InDelta(t, 1.0, report.ConfidenceScore, 1e-9)
}

func TestReconcile_AddressKeepsWordBoundaries(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{Address: "12 Elm St"},
		model.Success(model.ProviderRecord{Address: "12ElmSt"}),
		model.NotFound(""),
	)
	assert.Len(t, report.Discrepancies, 1)
	assert.Zero(t, report.ConfidenceScore)
}

func TestReconcile_LicenseIsCaseSensitive(t *testing.T) {
	t.Parallel()

	report := Reconcile(
		model.ProviderRecord{License: "mh-98765"},
		model.Success(model.ProviderRecord{License: "MH-98765"}),
		model.NotFound(""),
	)
	assert.Len(t, report.Discrepancies, 1)
	assert.Zero(t, report.ConfidenceScore)
}

func TestReconcile_ComparisonsRecordSources(t *testing.T) {
	t.Parallel()

	report := Reconcile(priyaInput, model.Success(priyaRegistry), model.Success(model.ProviderRecord{License: "MH-98765"}))
	require.Len(t, report.Comparisons, 3)

	lic := report.Comparisons[2]
	assert.Equal(t, model.FieldLicense, lic.Field)
	assert.True(t, lic.Matched)
	assert.Equal(t, []model.Source{model.SourceInput, model.SourceRegistry, model.SourceDocument}, lic.Present())

	phone := report.Comparisons[0]
	assert.False(t, phone.Matched)
	assert.NotContains(t, phone.Values, model.SourceDocument)
}

func TestReconcile_ScoreAlwaysInUnitInterval(t *testing.T) {
	t.Parallel()

	values := []string{"", "A", "a", "B"}
	results := func(v string) []model.LookupResult {
		return []model.LookupResult{
			model.NotFound(""),
			model.TransientError("x", nil),
			model.Success(model.ProviderRecord{Phone: v, Address: v, License: v}),
		}
	}

	for _, in := range values {
		for _, rv := range values {
			for _, dv := range values {
				for _, reg := range results(rv) {
					for _, doc := range results(dv) {
						input := model.ProviderRecord{Phone: in, Address: in, License: in}
						r := Reconcile(input, reg, doc)
						assert.GreaterOrEqual(t, r.ConfidenceScore, 0.0)
						assert.LessOrEqual(t, r.ConfidenceScore, 1.0)
						assert.LessOrEqual(t, len(r.Discrepancies), len(model.ComparedFields))
					}
				}
			}
		}
	}
}
