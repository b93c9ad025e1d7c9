package report

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"bakerypay/importer"
	"bakerypay/payroll"
)

// FileGroup holds the stored workbooks of one branch in one month.
type FileGroup struct {
	Year   int                    `json:"year"`
	Month  time.Month             `json:"month"`
	Branch string                 `json:"branch"`
	Files  []payroll.IngestedFile `json:"files"`
}

// GroupFiles buckets files by year, month and branch using the date encoded in the stored name.
// Groups are ordered newest month first, then by branch. Files whose name carries no date are
// returned as skipped.
func GroupFiles(files []payroll.IngestedFile) (groups []FileGroup, skipped []string) {
	type groupKey struct {
		year   int
		month  time.Month
		branch string
	}

	index := make(map[groupKey]int)
	for _, file := range files {
		info, err := importer.ParseFilename(file.Filename)
		if err != nil {
			skipped = append(skipped, file.Filename)
			continue
		}

		branch := groupBranch(file.Branch)
		if branch == "" {
			branch = groupBranch(info.Branch)
		}
		key := groupKey{year: info.Start.Year(), month: info.Start.Month(), branch: branch}

		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, FileGroup{Year: key.year, Month: key.month, Branch: key.branch})
		}
		groups[pos].Files = append(groups[pos].Files, file)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		if groups[i].Month != groups[j].Month {
			return groups[i].Month > groups[j].Month
		}
		return groups[i].Branch < groups[j].Branch
	})
	return groups, skipped
}

// groupBranch folds spelling variants of one branch ("MAIN  BRANCH", "Main Branch") together.
func groupBranch(branch string) string {
	lower := strings.ToLower(importer.NormalizeBranch(branch))
	if lower == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(first)) + lower[size:]
}
