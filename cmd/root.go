/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bakerypay/config"
)

const envPrefix = "BAKERYPAY"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bakerypay",
	Short: "Ingest branch payroll spreadsheets and report payroll expenses.",
	Long: `
**********************************************
*               BAKERY PAY                   *
**********************************************

This CLI ingests branch payroll workbooks (.xlsx, .xls) into a local SQLite database,
stores the original files under a canonical name, and reports payroll expenses per month.

Each workbook must carry the branch name in its acknowledgement line, a "For the period of"
line and an employee table. Files that fail any check are rejected without writing anything.
`,
	Example: `
  # Create configuration file
  bakerypay config create

  # Ingest a batch of payroll workbooks
  bakerypay import -i MainBranchJan1.xlsx -i AnnexJan1.xls

  # List ingested periods of one branch
  bakerypay periods --branch "MAIN BRANCH"

  # Show monthly payroll expenses for all branches
  bakerypay summary

  # Export monthly expenses of a date range to Excel
  bakerypay export --mode monthly --from 2025-01-01 --to 2025-03-31 --output ./expenses.xlsx

  # Start the upload and report API
  bakerypay serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.bakerypay.yaml, then ./.bakerypay.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bakerypay")
	}

	// BAKERYPAY_DATABASE_PATH overrides database.path and so on.
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: bakerypay config create")
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	options := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}
