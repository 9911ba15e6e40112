package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "affigen",
		Short: "Affidavit document tool",
		Long: `affigen validates, fills and converts affidavit documents.

Documents are JSON arrays of blocks (paragraph, heading, list) holding
formatted text runs. Templates carry {{KEY}} placeholders that are filled
from a case record.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(fillCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(templatesCmd())
	rootCmd.AddCommand(officersCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		failColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
