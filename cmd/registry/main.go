package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry",
		Short: "Training registry - trainers and trainees over HTTP",
		Long: `The training registry stores trainers (Ausbilder) and trainees (Auszubildende)
in PostgreSQL and serves them over HTTP. Configuration is read from REGISTRY_*
environment variables and an optional .env file.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration with secrets redacted",
			RunE:  runConfig,
		},
		&cobra.Command{
			Use:   "email-preview [template]",
			Short: "Render an e-mail template with sample data to stdout",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runEmailPreview,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "registry %s (commit: %s)\n", version, commit)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
