package web

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bakerypay/payroll"
)

// PeriodRow is a period with the totals of its entries.
type PeriodRow struct {
	ID        int64           `json:"id"`
	Branch    string          `json:"branch"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Employees int             `json:"employees"`
	GrossPay  decimal.Decimal `json:"gross_pay"`
	NetSalary decimal.Decimal `json:"net_salary"`
}

// EntryTotals sums the main amounts of a list of entries.
type EntryTotals struct {
	Employees int             `json:"employees"`
	GrossPay  decimal.Decimal `json:"gross_pay"`
	NetSalary decimal.Decimal `json:"net_salary"`
}

// BuildPeriodRows attaches entry totals to periods, newest period first.
func BuildPeriodRows(periods []payroll.Period, entries []payroll.Entry) []PeriodRow {
	totals := make(map[int64]EntryTotals, len(periods))
	for _, entry := range entries {
		total := totals[entry.PeriodID]
		total.Employees++
		total.GrossPay = total.GrossPay.Add(entry.GrossPay)
		total.NetSalary = total.NetSalary.Add(entry.NetSalary)
		totals[entry.PeriodID] = total
	}

	sorted := append([]payroll.Period(nil), periods...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Branch < sorted[j].Branch
		}
		return sorted[i].Start.After(sorted[j].Start)
	})

	rows := make([]PeriodRow, 0, len(sorted))
	for _, period := range sorted {
		total := totals[period.ID]
		rows = append(rows, PeriodRow{
			ID:        period.ID,
			Branch:    period.Branch,
			Start:     period.Start.Format(time.DateOnly),
			End:       period.End.Format(time.DateOnly),
			Employees: total.Employees,
			GrossPay:  total.GrossPay,
			NetSalary: total.NetSalary,
		})
	}
	return rows
}

func SumEntries(entries []payroll.Entry) EntryTotals {
	totals := EntryTotals{}
	for _, entry := range entries {
		totals.Employees++
		totals.GrossPay = totals.GrossPay.Add(entry.GrossPay)
		totals.NetSalary = totals.NetSalary.Add(entry.NetSalary)
	}
	return totals
}
