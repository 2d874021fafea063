package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/course-submit/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest [assignment-dir]",
	Short: "Print the effective submission manifest as YAML",
	Long: `Manifest prints the manifest a run would use for the assignment directory.
Redirect it to submission.yaml and edit it to adapt course-submit to another
assignment.`,
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
		return manifest.Encode(m, cmd.OutOrStdout())
	},
}

func init() {
	manifestCmd.Flags().String("manifest", "", "manifest YAML to validate and print")
	rootCmd.AddCommand(manifestCmd)
}
