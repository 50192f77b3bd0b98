package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "policyparse",
	Short: "Structured table-of-contents extraction for insurance policy PDFs",
	Long: `policyparse scans multi-section insurance policy PDFs, locates their
table of contents with an external reasoning model, and extracts each
section's body text with derived metadata.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
}
