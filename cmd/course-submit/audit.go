package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-submit/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit [assignment-dir]",
	Short: "List files that would bloat a submission",
	Long: `Audit walks the assignment directory and lists files that match the
manifest's exclude patterns (model weights, videos, datasets, caches) or
are at least the artifact size limit. Nothing is modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		m, err := resolveManifest(cmd, dir)
		if err != nil {
			return err
		}

		report, err := audit.Scan(cmd.Context(), m, dir)
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		audit.Print(report, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	auditCmd.Flags().String("manifest", "", "manifest YAML (default: <assignment-dir>/submission.yaml, else built-in)")
	rootCmd.AddCommand(auditCmd)
}
