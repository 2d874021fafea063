// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the course-submit CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-submit/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger carries diagnostics for every subcommand. It is replaced in
// PersistentPreRunE once the log level is known.
var logger = logging.Discard()

// rootCmd is the base command for the course-submit CLI.
var rootCmd = &cobra.Command{
	Use:   "course-submit",
	Short: "Package course assignment submissions",
	Long: `course-submit assembles an assignment submission: a zip of the required
source files, notebooks and small grading artifacts, plus an inline PDF
rendered from the notebooks with jupyter nbconvert and merged into one file.

Missing files, oversized artifacts and conversion failures are reported and
skipped; a run always finishes with a summary of what to upload.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(os.Stderr, viper.GetString("log_level"), "course-submit")
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./course-submit.yaml or ~/.config/course-submit/course-submit.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "diagnostic log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("course-submit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "course-submit"))
		}
	}

	viper.SetEnvPrefix("COURSE_SUBMIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
