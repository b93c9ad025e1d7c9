package payroll

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrCorruptFile       = errors.New("corrupt workbook")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrPeriodNotFound    = errors.New("pay period not found")
	ErrNoEmployeeData    = errors.New("no employee data found")
	ErrDuplicateFile     = errors.New("duplicate file")
	ErrPersistence       = errors.New("persistence failure")

	// ErrPeriodMissing is returned by lookups of a period id that does not exist.
	ErrPeriodMissing = errors.New("payroll period does not exist")
)
