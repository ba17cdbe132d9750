package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// ReconciliationReport is the merged, scored view of a provider across sources.
type ReconciliationReport struct {
	FinalProfile    ProviderRecord
	Discrepancies   []string
	ConfidenceScore float64
	Comparisons     []FieldComparison
	Notes           []string
}

// reportJSON is the downstream display shape.
type reportJSON struct {
	FinalProfile    profileJSON `json:"final_profile"`
	Discrepancies   []string    `json:"discrepancies"`
	ConfidenceScore string      `json:"confidence_score"`
	Notes           []string    `json:"notes,omitempty"`
}

type profileJSON struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	License string `json:"license"`
}

// ConfidencePercent renders the score as a whole percentage, e.g. "66%".
func (r ReconciliationReport) ConfidencePercent() string {
	return FormatPercent(r.ConfidenceScore)
}

// FormatPercent renders a [0,1] score as a rounded whole percentage.
func FormatPercent(score float64) string {
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// MarshalJSON emits the display shape with a percentage confidence score.
func (r ReconciliationReport) MarshalJSON() ([]byte, error) {
	discrepancies := r.Discrepancies
	if discrepancies == nil {
		discrepancies = []string{}
	}
	return json.Marshal(reportJSON{
		FinalProfile: profileJSON{
			Name:    r.FinalProfile.Name,
			Phone:   r.FinalProfile.Phone,
			Address: r.FinalProfile.Address,
			License: r.FinalProfile.License,
		},
		Discrepancies:   discrepancies,
		ConfidenceScore: r.ConfidencePercent(),
		Notes:           r.Notes,
	})
}
