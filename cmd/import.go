package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bakerypay/importer"
	"bakerypay/payroll"
)

var importInputs []string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest payroll workbooks into the local database and file store",
	Long: `Read payroll workbooks, extract branch, period and employee rows, and persist them.

Every file is validated on its own. A rejected file writes nothing and does not stop the
rest of the batch. Accepted files are stored under a canonical name derived from branch,
period id and period dates.`,
	Example: `
  # Ingest two workbooks
  bakerypay import -i MainBranchJan1.xlsx -i AnnexJan1.xls

  # Ingest with a custom config file
  bakerypay --configFile ./custom-bakerypay.yaml import -i ./payroll.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return runImport(cmd.Context(), a.service, append(importInputs, args...), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input workbook path (repeatable)")
}

func runImport(ctx context.Context, service *importer.Service, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given (use -i)")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	uploads, err := readUploads(paths)
	if err != nil {
		return err
	}

	results := service.IngestBatch(ctx, uploads)
	for _, result := range results {
		if result.Status == payroll.StatusSuccess {
			fmt.Fprintf(out, "OK    %s -> %s (%d entries)\n", result.Filename, result.StoredAs, result.Entries)
			continue
		}
		fmt.Fprintf(out, "ERROR %s: %s\n", result.Filename, result.Message)
	}

	summary := payroll.Summarize(results)
	fmt.Fprintf(out, "Import completed. Files: %d, Succeeded: %d, Failed: %d\n", len(results), summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files rejected", summary.Failed, len(results))
	}
	return nil
}

// readUploads loads every file up front; the stored name keeps only the base name.
func readUploads(paths []string) ([]importer.Upload, error) {
	uploads := make([]importer.Upload, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", path, err)
		}
		uploads = append(uploads, importer.Upload{Name: filepath.Base(path), Data: data})
	}
	return uploads, nil
}
