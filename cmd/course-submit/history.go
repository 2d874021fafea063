package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-submit/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent submission runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistory(viper.GetString("history_path"))
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No submission runs recorded.")
			return nil
		}
		for _, r := range runs {
			pdf := "no PDF"
			switch {
			case r.Merged:
				pdf = filepath.Base(r.PDFPath)
			case r.PDFParts > 0:
				pdf = fmt.Sprintf("%d unmerged PDF(s)", r.PDFParts)
			}
			fmt.Fprintf(w, "%s  %s  %s\n", r.StartedAt.Local().Format(time.DateTime), shortID(r.ID), r.Dir)
			fmt.Fprintf(w, "    %s (%s, %d file(s), %d missing), %s, took %s\n",
				filepath.Base(r.ZipPath), humanize.IBytes(uint64(r.ZipSize)),
				len(r.Added), len(r.Missing), pdf, r.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "maximum number of runs to show")
	historyCmd.PersistentFlags().String("history-path", "", "history database (default: $XDG_DATA_HOME/course-submit/history.db)")
	_ = viper.BindPFlag("history_path", historyCmd.PersistentFlags().Lookup("history-path"))
	rootCmd.AddCommand(historyCmd)
}

// shortID abbreviates a run id for listing.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
