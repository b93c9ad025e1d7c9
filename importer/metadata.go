package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bakerypay/internal/timeutil"
	"bakerypay/payroll"
)

const (
	// DefaultScanRows bounds the header block searched for metadata phrases.
	DefaultScanRows = 50

	BranchPhrase = "WE HEREBY ACKNOWLEDGE to have received from"
	PeriodPhrase = "For the period of"
)

type PeriodConvention string

const (
	SemiMonthly PeriodConvention = "semi-monthly"
	Monthly     PeriodConvention = "monthly"
)

// Metadata is what the header block of a payroll sheet tells about the file.
type Metadata struct {
	Branch string
	Start  time.Time
	End    time.Time

	// DocumentStartDay is the start day written in a "D-D" range, 0 for a single date.
	// It is informational only; Start is always derived from End.
	DocumentStartDay int
}

// PeriodEnd is the period end date recovered from the period phrase, already clamped.
type PeriodEnd struct {
	Year     int
	Month    time.Month
	Day      int
	StartDay int
}

func (p PeriodEnd) Date() time.Time {
	return time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC)
}

var (
	receivedFromPattern = regexp.MustCompile(`(?i)received\s+from\s+`)
	periodOfPattern     = regexp.MustCompile(`(?i)(for\s+the\s+)?period\s+of`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
	commaParenPattern   = regexp.MustCompile(`,\s*\(([^)]+)\)`)
	ampersandPattern    = regexp.MustCompile(`\s*&\s*`)

	periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([a-z]+)\s*(\d{1,2})\s*[-–]\s*(\d{1,2})\s*,?\s*(\d{4})`),
		regexp.MustCompile(`(?i)([a-z]+)\s*(\d{1,2})\s*to\s*(\d{1,2})\s*,?\s*(\d{4})`),
		regexp.MustCompile(`(?i)([a-z]+)\s*(\d{1,2})\s*,?\s*(\d{4})`),
	}
)

// ExtractMetadata reads branch and period from the first scanRows rows.
func ExtractMetadata(grid *Grid, scanRows int, convention PeriodConvention) (Metadata, error) {
	branch, err := ExtractBranch(grid, scanRows)
	if err != nil {
		return Metadata{}, err
	}

	end, err := ExtractPeriodEnd(grid, scanRows)
	if err != nil {
		return Metadata{}, err
	}

	endDate := end.Date()
	return Metadata{
		Branch:           NormalizeBranch(branch),
		Start:            DerivePeriodStart(endDate, convention),
		End:              endDate,
		DocumentStartDay: end.StartDay,
	}, nil
}

// ExtractBranch returns the raw branch name following the acknowledgment phrase.
func ExtractBranch(grid *Grid, scanRows int) (string, error) {
	var found string
	scanText(grid, scanRows, func(text string) bool {
		branch, ok := captureBranch(text)
		if ok {
			found = branch
		}
		return ok
	})
	if found == "" {
		return "", fmt.Errorf("%w: expected a cell containing %q followed by the branch name", payroll.ErrBranchNotFound, BranchPhrase+" [BRANCH NAME]")
	}
	return found, nil
}

// captureBranch takes the text after "received from" up to the first comma, '#' or digit.
// A digit only ends the name once something has been captured, so "7th Ave Branch" stays whole.
// A comma directly followed by "(" belongs to the name ("Bakery,(Contractual)") and the
// name then ends at the closing parenthesis.
func captureBranch(text string) (string, bool) {
	loc := receivedFromPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := []rune(text[loc[1]:])
	end := len(rest)
	qualified := false
	started := false
scan:
	for i, r := range rest {
		switch {
		case qualified:
			if r == ')' {
				end = i + 1
				break scan
			}
		case r == '#' || (started && unicode.IsDigit(r)):
			end = i
			break scan
		case r == ',':
			if next := nextNonSpace(rest[i+1:]); next != '(' {
				end = i
				break scan
			}
			qualified = true
		}
		if !unicode.IsSpace(r) {
			started = true
		}
	}

	branch := strings.TrimSpace(string(rest[:end]))
	return branch, branch != ""
}

func nextNonSpace(runes []rune) rune {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

// ExtractPeriodEnd finds the "period of" phrase and parses its end date.
func ExtractPeriodEnd(grid *Grid, scanRows int) (PeriodEnd, error) {
	var (
		found PeriodEnd
		ok    bool
	)
	scanText(grid, scanRows, func(text string) bool {
		if !periodOfPattern.MatchString(text) {
			return false
		}
		found, ok = parsePeriodText(text)
		return ok
	})
	if !ok {
		return PeriodEnd{}, fmt.Errorf("%w: expected a cell containing %q with a date such as \"February 16-28, 2025\"", payroll.ErrPeriodNotFound, PeriodPhrase)
	}
	return found, nil
}

func parsePeriodText(text string) (PeriodEnd, bool) {
	cleaned := periodOfPattern.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))

	for _, pattern := range periodPatterns {
		for _, match := range pattern.FindAllStringSubmatch(cleaned, -1) {
			month, ok := lookupMonth(match[1])
			if !ok {
				continue
			}

			var startDay, endDay, year int
			if len(match) == 5 {
				startDay, _ = strconv.Atoi(match[2])
				endDay, _ = strconv.Atoi(match[3])
				year, _ = strconv.Atoi(match[4])
			} else {
				endDay, _ = strconv.Atoi(match[2])
				year, _ = strconv.Atoi(match[3])
			}
			if endDay < 1 || year < 1 {
				continue
			}

			return PeriodEnd{
				Year:     year,
				Month:    month,
				Day:      ClampDay(year, month, endDay),
				StartDay: startDay,
			}, true
		}
	}
	return PeriodEnd{}, false
}

// ClampDay limits day to the last day of the month, so "February 30" becomes the 28th or 29th.
func ClampDay(year int, month time.Month, day int) int {
	last := DaysInMonth(year, month)
	if day > last {
		return last
	}
	return day
}

func DaysInMonth(year int, month time.Month) int {
	return timeutil.EndOfMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)).Day()
}

// DerivePeriodStart computes the period start from its end date. Documents only carry the end.
func DerivePeriodStart(end time.Time, convention PeriodConvention) time.Time {
	day := 1
	if convention != Monthly && end.Day() > 15 {
		day = 16
	}
	return time.Date(end.Year(), end.Month(), day, 0, 0, 0, 0, end.Location())
}

func NormalizeBranch(branch string) string {
	normalized := commaParenPattern.ReplaceAllString(branch, " ($1)")
	normalized = ampersandPattern.ReplaceAllString(normalized, " & ")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

var monthsByName = func() map[string]time.Month {
	months := make(map[string]time.Month, 25)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		months[name] = m
		months[name[:3]] = m
	}
	months["sept"] = time.September
	return months
}()

func lookupMonth(name string) (time.Month, bool) {
	month, ok := monthsByName[strings.ToLower(name)]
	return month, ok
}

// scanText visits text cells of the first scanRows rows, row by row, until visit returns true.
func scanText(grid *Grid, scanRows int, visit func(text string) bool) {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	rows := min(grid.RowCount(), scanRows+1)
	cols := grid.ColCount()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			text := grid.Cell(row, col).StringValue()
			if text == "" {
				continue
			}
			if visit(text) {
				return
			}
		}
	}
}
