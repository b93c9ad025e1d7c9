package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bakerypay/internal/timeutil"
	"bakerypay/report"
)

var (
	summaryBranch string
	summaryFrom   string
	summaryTo     string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show payroll expenses (sum of net salary) per month",
	Long: `Show monthly payroll expenses.

Without flags, every branch is summarized and combined into "All Branches".
--branch limits the summary to one branch. --from/--to select the periods that start
inside the given date range across all branches.`,
	Example: `
  # All branches, combined per month
  bakerypay summary

  # One branch
  bakerypay summary --branch "MAIN BRANCH"

  # First quarter
  bakerypay summary --from 2025-01-01 --to 2025-03-31
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		months, err := monthlyExpenses(cmd.Context(), a.store, summaryBranch, summaryFrom, summaryTo)
		if err != nil {
			return err
		}
		printMonthlyExpenses(cmd.OutOrStdout(), months)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	addExpenseFlags(summaryCmd, &summaryBranch, &summaryFrom, &summaryTo)
}

func addExpenseFlags(cmd *cobra.Command, branch, from, to *string) {
	cmd.Flags().StringVar(branch, "branch", "", "Only summarize this branch")
	cmd.Flags().StringVar(from, "from", "", "Range start, format YYYY-MM-DD")
	cmd.Flags().StringVar(to, "to", "", "Range end, format YYYY-MM-DD")
}

func monthlyExpenses(ctx context.Context, source report.Source, branch, fromValue, toValue string) ([]report.MonthlyExpense, error) {
	fromValue = strings.TrimSpace(fromValue)
	toValue = strings.TrimSpace(toValue)
	if fromValue != "" || toValue != "" {
		from, to, err := parseDayRange(fromValue, toValue)
		if err != nil {
			return nil, err
		}
		return report.RangeMonthly(ctx, source, from, to)
	}
	if strings.TrimSpace(branch) != "" {
		return report.BranchMonthly(ctx, source, strings.TrimSpace(branch))
	}
	return report.AllBranchesMonthly(ctx, source)
}

// parseDayRange accepts open bounds: a lone --from runs to the end of its month, a lone --to
// starts at the beginning of its month.
func parseDayRange(fromValue, toValue string) (time.Time, time.Time, error) {
	parse := func(flag, raw string) (time.Time, error) {
		if raw == "" {
			return time.Time{}, nil
		}
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s value %q (expected YYYY-MM-DD)", flag, raw)
		}
		return parsed, nil
	}

	from, err := parse("from", fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parse("to", toValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.IsZero() {
		from = timeutil.StartOfMonth(to)
	}
	if to.IsZero() {
		to = timeutil.EndOfMonth(from)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: --from must be <= --to")
	}
	return from, to, nil
}

func printMonthlyExpenses(out io.Writer, months []report.MonthlyExpense) {
	if len(months) == 0 {
		fmt.Fprintln(out, "No payroll expenses found.")
		return
	}
	fmt.Fprintf(out, "%-8s %-30s %14s\n", "MONTH", "BRANCH", "EXPENSES")
	for _, month := range months {
		fmt.Fprintf(out, "%-8s %-30s %14s\n", month.Month, month.Branch, month.Expenses.StringFixed(2))
	}
	fmt.Fprintf(out, "%-8s %-30s %14s\n", "TOTAL", "", report.Total(months).StringFixed(2))
}
