package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bakerypay/internal/timeutil"
	"bakerypay/payroll"
)

// AllBranches labels totals that combine every branch.
const AllBranches = "All Branches"

// MonthlyExpense is the summed net salary of one month. Month is "YYYY-MM" of the period start.
type MonthlyExpense struct {
	Month    string          `json:"month"`
	Branch   string          `json:"branch"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Source is the read side of the payroll tables.
type Source interface {
	ListBranches(ctx context.Context) ([]string, error)
	ListPeriodsByBranch(ctx context.Context, branch string) ([]payroll.Period, error)
	ListPeriodsInRange(ctx context.Context, from, to time.Time) ([]payroll.Period, error)
	ListEntriesByPeriodIDs(ctx context.Context, ids []int64) ([]payroll.Entry, error)
}

// BranchMonthly sums net salary per month for one branch.
func BranchMonthly(ctx context.Context, source Source, branch string) ([]MonthlyExpense, error) {
	periods, err := source.ListPeriodsByBranch(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("list periods for %s: %w", branch, err)
	}
	return aggregate(ctx, source, periods, branch)
}

// AllBranchesMonthly sums net salary per month across every branch.
func AllBranchesMonthly(ctx context.Context, source Source) ([]MonthlyExpense, error) {
	branches, err := source.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	perBranch := make([]MonthlyExpense, 0, len(branches)*12)
	for _, branch := range branches {
		expenses, err := BranchMonthly(ctx, source, branch)
		if err != nil {
			return nil, err
		}
		perBranch = append(perBranch, expenses...)
	}
	return combine(perBranch, AllBranches), nil
}

// RangeMonthly sums net salary per month over periods lying entirely within [from, to].
func RangeMonthly(ctx context.Context, source Source, from, to time.Time) ([]MonthlyExpense, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	periods, err := source.ListPeriodsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list periods in range: %w", err)
	}
	return aggregate(ctx, source, periods, AllBranches)
}

// Total sums the expenses of all months.
func Total(expenses []MonthlyExpense) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range expenses {
		total = total.Add(expense.Expenses)
	}
	return total
}

func aggregate(ctx context.Context, source Source, periods []payroll.Period, label string) ([]MonthlyExpense, error) {
	if len(periods) == 0 {
		return []MonthlyExpense{}, nil
	}

	ids := make([]int64, 0, len(periods))
	for _, period := range periods {
		ids = append(ids, period.ID)
	}
	entries, err := source.ListEntriesByPeriodIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list payroll entries: %w", err)
	}

	byPeriod := make(map[int64]decimal.Decimal, len(periods))
	for _, entry := range entries {
		byPeriod[entry.PeriodID] = byPeriod[entry.PeriodID].Add(entry.NetSalary)
	}

	monthly := make([]MonthlyExpense, 0, len(periods))
	for _, period := range periods {
		monthly = append(monthly, MonthlyExpense{
			Month:    timeutil.MonthKey(period.Start),
			Branch:   label,
			Expenses: byPeriod[period.ID],
		})
	}
	return combine(monthly, label), nil
}

// combine merges expenses of the same month and sorts them chronologically.
func combine(expenses []MonthlyExpense, label string) []MonthlyExpense {
	byMonth := make(map[string]decimal.Decimal, len(expenses))
	for _, expense := range expenses {
		byMonth[expense.Month] = byMonth[expense.Month].Add(expense.Expenses)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	combined := make([]MonthlyExpense, 0, len(months))
	for _, month := range months {
		combined = append(combined, MonthlyExpense{Month: month, Branch: label, Expenses: byMonth[month]})
	}
	return combined
}
