package importer

import (
	"context"
	"fmt"
	"time"

	"bakerypay/payroll"
)

// ResolvePeriod returns the id of the period matching all three fields, creating it when absent.
func ResolvePeriod(ctx context.Context, gw Gateway, branch string, start, end time.Time) (int64, error) {
	id, found, err := gw.FindPeriod(ctx, branch, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: find payroll period: %v", payroll.ErrPersistence, err)
	}
	if found {
		return id, nil
	}

	id, err = gw.InsertPeriod(ctx, branch, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: insert payroll period: %v", payroll.ErrPersistence, err)
	}
	return id, nil
}

// FileExists reports whether storage holds an object named exactly filename.
func FileExists(ctx context.Context, gw Gateway, filename string) (bool, error) {
	files, err := gw.ListFiles(ctx, filename)
	if err != nil {
		return false, fmt.Errorf("%w: list stored files: %v", payroll.ErrPersistence, err)
	}
	for _, file := range files {
		if file.Name == filename {
			return true, nil
		}
	}
	return false, nil
}
