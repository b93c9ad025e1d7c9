package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bakerypay/internal/classify"
	"bakerypay/report"
	"bakerypay/storage"
)

var filesSearch string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored payroll workbooks grouped by year, month and branch",
	Example: `
  # All stored files
  bakerypay files

  # Files whose stored name contains "January"
  bakerypay files --search january
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return printFiles(cmd.Context(), a.gateway, filesSearch, cmd.OutOrStdout())
	},
}

var filesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare file records with the objects in the bucket",
	Long: `Report file records whose workbook is missing from storage and stored workbooks
that no record points at. Either can be left behind when the final insert and upload
of an import do not both succeed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return checkFiles(cmd.Context(), a.gateway, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesCheckCmd)

	filesCmd.Flags().StringVar(&filesSearch, "search", "", "Case-insensitive filter on the stored file name")
}

func printFiles(ctx context.Context, gateway *storage.Gateway, search string, out io.Writer) error {
	records, err := gateway.Store.ListFileRecords(ctx, 0)
	if err != nil {
		return err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search != "" {
		filtered := records[:0]
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Filename), search) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	groups, skipped := report.GroupFiles(records)
	if len(groups) == 0 && len(skipped) == 0 {
		fmt.Fprintln(out, "No stored payroll files found.")
		return nil
	}

	for _, group := range groups {
		fmt.Fprintf(out, "%d %s - %s\n", group.Year, group.Month, group.Branch)
		for _, file := range group.Files {
			fmt.Fprintf(out, "  %s  %s\n", file.Filename, gateway.Blobs.PublicURL(file.Filename))
		}
	}
	for _, name := range skipped {
		fmt.Fprintf(out, "Skipped file without period in name: %s\n", name)
	}
	return nil
}

func checkFiles(ctx context.Context, gateway *storage.Gateway, out io.Writer) error {
	records, err := gateway.Store.ListFileRecords(ctx, 0)
	if err != nil {
		return err
	}
	objects, err := gateway.Blobs.List(ctx, "")
	if err != nil {
		return err
	}

	result := classify.ClassifyStoredFiles(records, objects)
	for _, record := range result.MissingObjects {
		fmt.Fprintf(out, "MISSING  %s (period %d)\n", record.Filename, record.PeriodID)
	}
	for _, object := range result.OrphanObjects {
		fmt.Fprintf(out, "ORPHAN   %s (%d bytes)\n", object.Name, object.Size)
	}
	fmt.Fprintf(out, "Files checked. Matched: %d, Missing: %d, Orphaned: %d\n",
		result.Matched, len(result.MissingObjects), len(result.OrphanObjects))

	if !result.Consistent() {
		return fmt.Errorf("stored files are out of sync with file records")
	}
	return nil
}
