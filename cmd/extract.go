package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE.pdf",
	Short: "OCR a license PDF and print its text and license number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "extract: read document")
		}

		x, err := newLicenseExtractor(cfg).ExtractText(cmd.Context(), data)
		if err != nil {
			return eris.Wrapf(err, "extract: %s", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), x)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
