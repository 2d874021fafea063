package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-submit/internal/convert"
	"github.com/pdiddy/course-submit/internal/history"
	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/internal/merge"
	"github.com/pdiddy/course-submit/internal/submit"
	"github.com/pdiddy/course-submit/pkg/types"
)

// manifestFile is picked up from the assignment directory when no
// --manifest flag or config key is given.
const manifestFile = "submission.yaml"

var runCmd = &cobra.Command{
	Use:   "run [assignment-dir]",
	Short: "Build the code zip and inline PDF for an assignment",
	Long: `Run zips the manifest's code files, notebooks and grading artifacts from the
assignment directory (default: current directory), converts each notebook to
PDF with jupyter nbconvert, and merges the PDFs into a single inline
submission. Problems with individual files are reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	runCmd.Flags().String("manifest", "", "manifest YAML (default: <assignment-dir>/submission.yaml, else built-in)")
	runCmd.Flags().Bool("skip-pdf", false, "only build the code zip")
	runCmd.Flags().Duration("timeout", convert.DefaultTimeout, "timeout per notebook conversion, as a duration such as 300s or 5m")
	runCmd.Flags().String("merge-backend", string(types.MergePdfcpu), "PDF merger: pdfcpu or none")
	runCmd.Flags().Bool("no-history", false, "do not record this run in the history database")

	_ = viper.BindPFlag("skip_pdf", runCmd.Flags().Lookup("skip-pdf"))
	_ = viper.BindPFlag("timeout", runCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("merge_backend", runCmd.Flags().Lookup("merge-backend"))
	viper.SetDefault("history", true)

	rootCmd.AddCommand(runCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	cfg, err := loadSubmitConfig(cmd, absDir)
	if err != nil {
		return err
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		cfg.History.Enabled = false
	}

	merger, err := merge.New(cfg.Conversion.MergeBackend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := submit.Options{
		Dir:          cfg.Dir,
		Manifest:     cfg.Manifest,
		SkipPDF:      cfg.Conversion.SkipPDF,
		NewConverter: submit.DetectConverter(cfg.Conversion.Timeout, logger),
		Timeout:      cfg.Conversion.Timeout,
		Merger:       merger,
		Logger:       logger,
	}

	if cfg.History.Enabled {
		store, err := openHistory(cfg.History.Path)
		if err != nil {
			logger.Warn("history disabled for this run", "err", err)
		} else {
			defer store.Close()
			opts.History = store
		}
	}

	submit.Run(ctx, opts, cmd.OutOrStdout())
	return nil
}

// loadSubmitConfig resolves the manifest and stage settings from flags,
// config file and environment.
func loadSubmitConfig(cmd *cobra.Command, dir string) (types.SubmitConfig, error) {
	m, err := resolveManifest(cmd, dir)
	if err != nil {
		return types.SubmitConfig{}, err
	}

	timeout, err := conversionTimeout(viper.GetViper())
	if err != nil {
		return types.SubmitConfig{}, err
	}

	return types.SubmitConfig{
		Dir:      dir,
		Manifest: m,
		Conversion: types.ConversionConfig{
			Timeout:      timeout,
			MergeBackend: types.MergeBackend(viper.GetString("merge_backend")),
			SkipPDF:      viper.GetBool("skip_pdf"),
		},
		History: types.HistoryConfig{
			Enabled: viper.GetBool("history"),
			Path:    viper.GetString("history_path"),
		},
	}, nil
}

// conversionTimeout reads the per-notebook timeout. A bare number in the
// config file decodes as nanoseconds, so anything under a second is rejected
// rather than timing out every notebook.
func conversionTimeout(v *viper.Viper) (time.Duration, error) {
	timeout := v.GetDuration("timeout")
	switch {
	case timeout == 0:
		return convert.DefaultTimeout, nil
	case timeout < time.Second:
		return 0, fmt.Errorf("timeout %q is under one second; use a duration such as 300s or 5m", v.GetString("timeout"))
	}
	return timeout, nil
}

// resolveManifest loads the manifest named by --manifest or the config,
// then <dir>/submission.yaml, falling back to the built-in manifest.
func resolveManifest(cmd *cobra.Command, dir string) (types.Manifest, error) {
	p, _ := cmd.Flags().GetString("manifest")
	if p == "" {
		p = viper.GetString("manifest")
	}
	if p != "" {
		return manifest.Load(p)
	}
	local := filepath.Join(dir, manifestFile)
	if _, err := os.Stat(local); err == nil {
		logger.Debug("using assignment manifest", "path", local)
		return manifest.Load(local)
	}
	return manifest.Default(), nil
}

func openHistory(path string) (*history.Store, error) {
	if path == "" {
		path = history.DefaultPath()
	}
	return history.Open(path)
}
