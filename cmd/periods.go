package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bakerypay/payroll"
	"bakerypay/storage"
	"bakerypay/web"
)

var periodsBranch string

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List ingested payroll periods with employee count and totals",
	Example: `
  # All periods, newest first
  bakerypay periods

  # Periods of one branch
  bakerypay periods --branch "MAIN BRANCH"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return printPeriods(cmd.Context(), a.store, periodsBranch, cmd.OutOrStdout())
	},
}

var periodEntriesCmd = &cobra.Command{
	Use:   "entries <period-id>",
	Short: "Show the employee rows of one payroll period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePeriodID(args[0])
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return printPeriodEntries(cmd.Context(), a.store, id, cmd.OutOrStdout())
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List branches that have at least one ingested period",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		branches, err := a.store.ListBranches(cmd.Context())
		if err != nil {
			return err
		}
		for _, branch := range branches {
			fmt.Fprintln(cmd.OutOrStdout(), branch)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(branchesCmd)
	periodsCmd.AddCommand(periodEntriesCmd)

	periodsCmd.Flags().StringVar(&periodsBranch, "branch", "", "Only list periods of this branch")
}

func printPeriods(ctx context.Context, store *storage.SQLiteStore, branch string, out io.Writer) error {
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
		return err
	}
	if len(periods) == 0 {
		fmt.Fprintln(out, "No payroll periods found.")
		return nil
	}

	ids := make([]int64, 0, len(periods))
	for _, period := range periods {
		ids = append(ids, period.ID)
	}
	entries, err := store.ListEntriesByPeriodIDs(ctx, ids)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-6s %-30s %-10s %-10s %9s %14s\n", "ID", "BRANCH", "START", "END", "EMPLOYEES", "NET SALARY")
	for _, row := range web.BuildPeriodRows(periods, entries) {
		fmt.Fprintf(out, "%-6d %-30s %-10s %-10s %9d %14s\n",
			row.ID, row.Branch, row.Start, row.End, row.Employees, row.NetSalary.StringFixed(2))
	}
	return nil
}

func printPeriodEntries(ctx context.Context, store *storage.SQLiteStore, id int64, out io.Writer) error {
	period, err := store.GetPeriod(ctx, id)
	if err != nil {
		return err
	}
	entries, err := store.ListEntriesByPeriod(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s to %s\n", period.Branch, period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly))
	fmt.Fprintf(out, "%-30s %8s %14s %14s\n", "EMPLOYEE", "DAYS", "GROSS PAY", "NET SALARY")
	for _, entry := range entries {
		fmt.Fprintf(out, "%-30s %8s %14s %14s\n",
			entry.Employee, entry.DaysWorked.String(), entry.GrossPay.StringFixed(2), entry.NetSalary.StringFixed(2))
	}

	totals := web.SumEntries(entries)
	fmt.Fprintf(out, "%-30s %8s %14s %14s\n", fmt.Sprintf("TOTAL (%d)", totals.Employees), "", totals.GrossPay.StringFixed(2), totals.NetSalary.StringFixed(2))
	return nil
}

func parsePeriodID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid period id %q", value)
	}
	return id, nil
}
