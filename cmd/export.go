package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bakerypay/output"
	"bakerypay/payroll"
	"bakerypay/storage"
)

var (
	exportFormat   string
	exportMode     string
	exportOutput   string
	exportPeriodID int64
	exportBranch   string
	exportFrom     string
	exportTo       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export payroll entries or monthly expenses to CSV/Excel",
	Long: `Export payroll data from SQLite.

Modes:
- entries: export every employee row (optionally of one period or one branch)
- monthly: export monthly payroll expenses (same selection as the summary command)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export all employee rows to CSV
  bakerypay export --mode entries --output ./entries.csv

  # Export the rows of one period to Excel
  bakerypay export --mode entries --period 7 --output ./period-7.xlsx

  # Export monthly expenses of one branch
  bakerypay export --mode monthly --branch "MAIN BRANCH" --output ./main-branch.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "entries":
			entries, err := selectEntries(cmd.Context(), a.store, exportPeriodID, exportBranch)
			if err != nil {
				return err
			}
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: entries, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "monthly":
			months, err := monthlyExpenses(cmd.Context(), a.store, exportBranch, exportFrom, exportTo)
			if err != nil {
				return err
			}
			if err := output.WriteMonthlySummaries(exportOutput, format, months); err != nil {
				return err
			}
			fmt.Printf("Export completed. Months: %d, Mode: monthly, Format: %s, File: %s\n", len(months), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: entries, monthly)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func selectEntries(ctx context.Context, store *storage.SQLiteStore, periodID int64, branch string) ([]payroll.Entry, error) {
	if periodID > 0 {
		if _, err := store.GetPeriod(ctx, periodID); err != nil {
			return nil, err
		}
		return store.ListEntriesByPeriod(ctx, periodID)
	}

	var (
		periods []payroll.Period
		err     error
	)
	if strings.TrimSpace(branch) == "" {
		periods, err = store.ListPeriods(ctx)
	} else {
		periods, err = store.ListPeriodsByBranch(ctx, strings.TrimSpace(branch))
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(periods))
	for _, period := range periods {
		ids = append(ids, period.ID)
	}
	return store.ListEntriesByPeriodIDs(ctx, ids)
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "entries", "Export mode: entries|monthly")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().Int64Var(&exportPeriodID, "period", 0, "Only export rows of this period id (entries mode)")
	addExpenseFlags(exportCmd, &exportBranch, &exportFrom, &exportTo)

	_ = exportCmd.MarkFlagRequired("output")
}
