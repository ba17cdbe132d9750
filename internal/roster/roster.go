// Package roster reads provider rosters from CSV and XLSX files.
package roster

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provider-verify/internal/model"
)

// Column headers recognized in a roster.
const (
	ColName       = "Provider_Name"
	ColNPI        = "NPI"
	ColLicensePDF = "License_PDF"
	ColPhone      = "Phone"
	ColAddress    = "Address"
	ColLicense    = "License"
)

var requiredCols = []string{ColName, ColNPI}

// Row is one provider from the roster plus the license document that backs it.
type Row struct {
	Record     model.ProviderRecord `json:"record"`
	LicensePDF string               `json:"license_pdf,omitempty"`
	Line       int                  `json:"line"`
}

// Options tunes roster parsing.
type Options struct {
	// SheetName selects an XLSX sheet; the first sheet is used when empty.
	SheetName string
}

// Read parses the roster at path, choosing the format by extension.
func Read(ctx context.Context, path string, opts Options) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		records, err = readCSV(ctx, path)
	case ".xlsx":
		records, err = readXLSX(ctx, path, opts.SheetName)
	default:
		return nil, eris.Errorf("roster: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return parseRecords(records, filepath.Dir(path))
}

// parseRecords maps header-indexed cells to rows. License_PDF values are
// resolved against baseDir.
func parseRecords(records [][]string, baseDir string) ([]Row, error) {
	if len(records) < 2 {
		return nil, eris.New("roster: no data rows")
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		colIdx[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range requiredCols {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("roster: missing required column %q", col)
		}
	}

	seen := make(map[string]bool)
	var rows []Row
	for i, cells := range records[1:] {
		npi := getCol(cells, colIdx, ColNPI)
		if npi == "" {
			continue
		}
		if seen[npi] {
			zap.L().Warn("roster: duplicate NPI skipped", zap.String("npi", npi), zap.Int("line", i+2))
			continue
		}
		seen[npi] = true

		pdf := getCol(cells, colIdx, ColLicensePDF)
		if pdf != "" && !filepath.IsAbs(pdf) {
			pdf = filepath.Join(baseDir, pdf)
		}

		rows = append(rows, Row{
			Record: model.ProviderRecord{
				Name:    getCol(cells, colIdx, ColName),
				Phone:   getCol(cells, colIdx, ColPhone),
				Address: getCol(cells, colIdx, ColAddress),
				License: getCol(cells, colIdx, ColLicense),
				NPI:     npi,
			},
			LicensePDF: pdf,
			Line:       i + 2,
		})
	}

	if len(rows) == 0 {
		return nil, eris.New("roster: no rows with an NPI")
	}
	return rows, nil
}

func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Find returns the row for npi.
func Find(rows []Row, npi string) (Row, bool) {
	for _, r := range rows {
		if r.Record.NPI == npi {
			return r, true
		}
	}
	return Row{}, false
}
