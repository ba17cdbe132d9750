package main

import (
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup NPI",
	Short: "Look up one provider in the NPI registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}
		res := newRegistryClient(cfg).Lookup(cmd.Context(), args[0])
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
