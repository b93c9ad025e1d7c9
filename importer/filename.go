package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const documentDateLayout = "January 2, 2006"

// DeriveFilename builds the storage name of an ingested workbook:
// "{branch}_{periodID}_{start}{end}.{ext}", e.g. "MainBranch_7_January12025January152025.xlsx".
// The end token is left out when it equals the start token.
func DeriveFilename(branch string, periodID int64, start, end time.Time, ext string) string {
	startToken := sanitizeToken(start.Format(documentDateLayout))
	endToken := sanitizeToken(end.Format(documentDateLayout))
	if endToken == startToken {
		endToken = ""
	}

	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	return fmt.Sprintf("%s_%d_%s%s.%s", sanitizeToken(branch), periodID, startToken, endToken, ext)
}

// sanitizeToken drops whitespace, commas, ampersands and parentheses.
func sanitizeToken(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case ',', '&', '(', ')':
			return -1
		}
		return r
	}, value)
}

// FilenameInfo is what a derived filename says about its content.
type FilenameInfo struct {
	Branch   string
	PeriodID int64
	Start    time.Time
	End      time.Time
	Ext      string
}

var dateTokensPattern = regexp.MustCompile(`^([A-Za-z]+)(\d{1,2})(\d{4})(?:([A-Za-z]+)(\d{1,2})(\d{4}))?$`)

// ParseFilename reverses DeriveFilename. Branch is the sanitized token, not the original name.
func ParseFilename(name string) (FilenameInfo, error) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dateSep := strings.LastIndex(stem, "_")
	if dateSep <= 0 {
		return FilenameInfo{}, fmt.Errorf("filename %q has no date token", name)
	}
	idSep := strings.LastIndex(stem[:dateSep], "_")
	if idSep <= 0 {
		return FilenameInfo{}, fmt.Errorf("filename %q has no period id", name)
	}

	periodID, err := strconv.ParseInt(stem[idSep+1:dateSep], 10, 64)
	if err != nil {
		return FilenameInfo{}, fmt.Errorf("filename %q has invalid period id: %w", name, err)
	}

	match := dateTokensPattern.FindStringSubmatch(stem[dateSep+1:])
	if match == nil {
		return FilenameInfo{}, fmt.Errorf("filename %q has invalid date token", name)
	}
	start, err := parseDateToken(match[1], match[2], match[3])
	if err != nil {
		return FilenameInfo{}, fmt.Errorf("filename %q: %w", name, err)
	}
	end := start
	if match[4] != "" {
		end, err = parseDateToken(match[4], match[5], match[6])
		if err != nil {
			return FilenameInfo{}, fmt.Errorf("filename %q: %w", name, err)
		}
	}

	return FilenameInfo{
		Branch:   stem[:idSep],
		PeriodID: periodID,
		Start:    start,
		End:      end,
		Ext:      strings.ToLower(strings.TrimPrefix(ext, ".")),
	}, nil
}

func parseDateToken(monthName, dayValue, yearValue string) (time.Time, error) {
	month, ok := lookupMonth(monthName)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", monthName)
	}
	day, _ := strconv.Atoi(dayValue)
	year, _ := strconv.Atoi(yearValue)
	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, fmt.Errorf("invalid day %d for %s %d", day, month, year)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
