package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/provider-verify/internal/model"
	"github.com/sells-group/provider-verify/internal/roster"
	"github.com/sells-group/provider-verify/internal/verify"
)

var (
	validateRoster      string
	validateSheet       string
	validateNPI         string
	validateOutput      string
	validateConcurrency int
	validateWithText    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate roster providers against the registry and their license scans",
	Long: `Reads a CSV or XLSX roster and, for each provider, looks up the NPI in the
registry and OCRs the License_PDF, then prints a reconciliation report.

Examples:
  # One provider
  provider-verify validate --roster providers.csv --npi 1234567890

  # Whole roster, four at a time, to a file
  provider-verify validate --roster providers.xlsx --concurrency 4 --output reports.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if validateConcurrency > 0 {
			cfg.Batch.Concurrency = validateConcurrency
		}
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		rows, err := roster.Read(ctx, validateRoster, roster.Options{SheetName: validateSheet})
		if err != nil {
			return eris.Wrap(err, "validate: read roster")
		}
		zap.L().Info("parsed roster", zap.String("path", validateRoster), zap.Int("providers", len(rows)))

		runner := verify.New(
			newRegistryClient(cfg),
			newLicenseExtractor(cfg),
			verify.WithRetry(cfg.Registry.MaxAttempts),
		)

		w, closeOut, err := openOutput(validateOutput)
		if err != nil {
			return eris.Wrap(err, "validate")
		}
		defer closeOut() //nolint:errcheck

		return runValidate(ctx, runner, rows, validateOptions{
			NPI:         validateNPI,
			Concurrency: cfg.Batch.Concurrency,
			WithText:    validateWithText,
		}, w)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateRoster, "roster", "", "path to CSV or XLSX roster (required)")
	validateCmd.Flags().StringVar(&validateSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	validateCmd.Flags().StringVar(&validateNPI, "npi", "", "validate only the provider with this NPI")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "write reports JSON to file (default: stdout)")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 0, "max providers validated at once (default from config)")
	validateCmd.Flags().BoolVar(&validateWithText, "with-text", false, "include the OCR text of each license document")
	_ = validateCmd.MarkFlagRequired("roster")
	rootCmd.AddCommand(validateCmd)
}

type validateOptions struct {
	NPI         string
	Concurrency int
	WithText    bool
}

// validationOutput is the per-provider document printed by validate.
type validationOutput struct {
	RunID          string                     `json:"run_id"`
	NPI            string                     `json:"npi_id"`
	Provider       string                     `json:"provider_name"`
	RegistryStatus model.LookupStatus         `json:"registry_status"`
	RegistryReason string                     `json:"registry_reason,omitempty"`
	DocumentStatus model.LookupStatus         `json:"document_status"`
	DocumentReason string                     `json:"document_reason,omitempty"`
	Report         model.ReconciliationReport `json:"report"`
	FullText       string                     `json:"full_text,omitempty"`
}

func newValidationOutput(res *verify.Result, withText bool) validationOutput {
	out := validationOutput{
		RunID:          res.RunID,
		NPI:            res.Input.NPI,
		Provider:       res.Input.Name,
		RegistryStatus: res.Registry.Status,
		RegistryReason: res.Registry.Reason,
		DocumentStatus: res.Document.Status,
		DocumentReason: res.Document.Reason,
		Report:         res.Report,
	}
	if withText && res.Extraction != nil {
		out.FullText = res.Extraction.FullText
	}
	return out
}

// runValidate prints one object for --npi and an array otherwise.
func runValidate(ctx context.Context, runner *verify.Runner, rows []roster.Row, opts validateOptions, w io.Writer) error {
	if opts.NPI != "" {
		row, ok := roster.Find(rows, opts.NPI)
		if !ok {
			return eris.Errorf("validate: npi %s not in roster", opts.NPI)
		}
		return writeJSON(w, newValidationOutput(runner.Run(ctx, row), opts.WithText))
	}

	results := runner.RunAll(ctx, rows, opts.Concurrency)
	outputs := make([]validationOutput, 0, len(results))
	for _, res := range results {
		outputs = append(outputs, newValidationOutput(res, opts.WithText))
	}
	return writeJSON(w, outputs)
}
