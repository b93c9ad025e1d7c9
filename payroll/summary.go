package payroll

import (
	"fmt"
	"strings"
)

// Summary condenses the results of one batch for display.
type Summary struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Failures  []Result `json:"failures,omitempty"`
}

func Summarize(results []Result) Summary {
	summary := Summary{}
	for _, result := range results {
		if result.Status == StatusSuccess {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, result)
	}
	return summary
}

// String renders e.g. "7 succeeded, 2 failed: a.xlsx: duplicate file; b.xls: corrupt workbook".
func (s Summary) String() string {
	head := fmt.Sprintf("%d succeeded, %d failed", s.Succeeded, s.Failed)
	if len(s.Failures) == 0 {
		return head
	}

	parts := make([]string, 0, len(s.Failures))
	for _, failure := range s.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", failure.Filename, failure.Message))
	}
	return head + ": " + strings.Join(parts, "; ")
}
