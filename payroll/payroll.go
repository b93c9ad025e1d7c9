package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is one pay period of one branch. At most one exists per (Branch, Start, End).
type Period struct {
	ID     int64     `json:"id"`
	Branch string    `json:"branch"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Entry is the normalized payroll row of one employee for one period.
// Every amount is a decimal whose zero value is 0, so blank source cells never leave a field unset.
type Entry struct {
	ID       int64 `json:"id"`
	PeriodID int64 `json:"period_id"`

	// Denormalized copies of the period bounds.
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Employee string `json:"employee"`

	DaysWorked      decimal.Decimal `json:"days_worked"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	BasicRate       decimal.Decimal `json:"basic_rate"`
	OvertimeHours   decimal.Decimal `json:"overtime_hrs"`
	OvertimeAmount  decimal.Decimal `json:"overtime_amount"`
	HolidayNo       decimal.Decimal `json:"holiday_no"`
	HolidayPay      decimal.Decimal `json:"holiday_pay"`
	SpecialNo       decimal.Decimal `json:"special_no"`
	SpecialPay      decimal.Decimal `json:"special_pay"`
	RestDayNo       decimal.Decimal `json:"rest_day_no"`
	RestDayPay      decimal.Decimal `json:"rest_day_pay"`
	NightShiftHours decimal.Decimal `json:"no_of_ns_hours"`
	NightShiftPay   decimal.Decimal `json:"nsd_pay"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	SSS             decimal.Decimal `json:"sss"`
	PhilHealth      decimal.Decimal `json:"philhealth"`
	PagIBIG         decimal.Decimal `json:"pagibig"`
	SSSLoan         decimal.Decimal `json:"sssloan"`
	CashAdvance     decimal.Decimal `json:"ca"`
	Hidden          decimal.Decimal `json:"hidden"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

// AmountFields lists the numeric fields of an entry in source column order.
func (e *Entry) AmountFields() []*decimal.Decimal {
	return []*decimal.Decimal{
		&e.DaysWorked,
		&e.MonthlyRate,
		&e.DailyRate,
		&e.BasicRate,
		&e.OvertimeHours,
		&e.OvertimeAmount,
		&e.HolidayNo,
		&e.HolidayPay,
		&e.SpecialNo,
		&e.SpecialPay,
		&e.RestDayNo,
		&e.RestDayPay,
		&e.NightShiftHours,
		&e.NightShiftPay,
		&e.GrossPay,
		&e.SSS,
		&e.PhilHealth,
		&e.PagIBIG,
		&e.SSSLoan,
		&e.CashAdvance,
		&e.Hidden,
		&e.NetSalary,
	}
}

// AmountColumns names the numeric fields in the same order as AmountFields.
var AmountColumns = []string{
	"days_worked",
	"monthly_rate",
	"daily_rate",
	"basic_rate",
	"overtime_hrs",
	"overtime_amount",
	"holiday_no",
	"holiday_pay",
	"special_no",
	"special_pay",
	"rest_day_no",
	"rest_day_pay",
	"no_of_ns_hours",
	"nsd_pay",
	"gross_pay",
	"sss",
	"philhealth",
	"pagibig",
	"sssloan",
	"ca",
	"hidden",
	"net_salary",
}

// IngestedFile indexes one stored workbook. Filename is the dedup key.
type IngestedFile struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Branch    string    `json:"branch"`
	PeriodID  int64     `json:"period_id"`
	PublicURL string    `json:"public_url"`
	CreatedAt time.Time `json:"created_at"`
}

// FileDescriptor describes one object in blob storage.
type FileDescriptor struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of ingesting one uploaded file.
type Result struct {
	Filename string `json:"file"`
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	StoredAs string `json:"storedAs,omitempty"`
	Entries  int    `json:"entries,omitempty"`
}
