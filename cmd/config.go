package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the bakerypay configuration file.",
	Long: `Create, display, and validate the bakerypay configuration file.

The configuration stores:
- database.path
- storage.dir / storage.bucket / storage.public_url
- import.concurrency / import.insert_batch_size / import.scan_rows / import.period_convention
- log.level / log.format
- server.port

Every key can also be set through the environment, e.g. BAKERYPAY_DATABASE_PATH.`,
	Example: `
  # Create default config in $HOME/.bakerypay.yaml
  bakerypay config create

  # Show active config and source file
  bakerypay config show

  # Check a config file before using it
  bakerypay config validate ./staging.yaml
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
