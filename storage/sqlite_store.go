package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bakerypay/payroll"
)

const (
	dateLayout = "2006-01-02"

	DefaultInsertBatchSize = 100
)

type SQLiteStore struct {
	db        *sql.DB
	batchSize int
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps concurrent ingests from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, batchSize: DefaultInsertBatchSize}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SetInsertBatchSize sets how many entries go into one insert transaction.
func (s *SQLiteStore) SetInsertBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

func (s *SQLiteStore) ensureSchema() error {
	amountColumns := make([]string, 0, len(payroll.AmountColumns))
	for _, column := range payroll.AmountColumns {
		amountColumns = append(amountColumns, fmt.Sprintf("\t%s TEXT NOT NULL DEFAULT '0',", column))
	}

	schema := `
CREATE TABLE IF NOT EXISTS pay_periods (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	branch TEXT NOT NULL,
	period_start TEXT NOT NULL,
	period_end TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(branch, period_start, period_end)
);

CREATE TABLE IF NOT EXISTS payroll_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payroll_period_id INTEGER NOT NULL REFERENCES pay_periods(id),
	payroll_start TEXT NOT NULL,
	payroll_end TEXT NOT NULL,
	employee TEXT NOT NULL CHECK(employee <> ''),
` + strings.Join(amountColumns, "\n") + `
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_payroll_entries_period ON payroll_entries(payroll_period_id);

CREATE TABLE IF NOT EXISTS payroll_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL UNIQUE,
	branch TEXT NOT NULL,
	payroll_period_id INTEGER NOT NULL REFERENCES pay_periods(id),
	public_url TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// FindPeriod looks up the period matching branch and both bounds exactly.
func (s *SQLiteStore) FindPeriod(ctx context.Context, branch string, start, end time.Time) (int64, bool, error) {
	const query = `
SELECT id FROM pay_periods
WHERE branch = ? AND period_start = ? AND period_end = ?;`

	var id int64
	err := s.db.QueryRowContext(ctx, query, branch, start.Format(dateLayout), end.Format(dateLayout)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query pay period: %w", err)
	}
	return id, true, nil
}

// InsertPeriod creates the period and returns its id. When a concurrent writer created the
// same period first, the existing id is returned instead.
func (s *SQLiteStore) InsertPeriod(ctx context.Context, branch string, start, end time.Time) (int64, error) {
	const insertStmt = `
INSERT INTO pay_periods (branch, period_start, period_end)
VALUES (?, ?, ?)
ON CONFLICT(branch, period_start, period_end) DO UPDATE SET branch = excluded.branch
RETURNING id;`

	var id int64
	if err := s.db.QueryRowContext(ctx, insertStmt, branch, start.Format(dateLayout), end.Format(dateLayout)).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert pay period: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid inserted period id %d", id)
	}
	return id, nil
}

func (s *SQLiteStore) GetPeriod(ctx context.Context, id int64) (payroll.Period, error) {
	if id <= 0 {
		return payroll.Period{}, fmt.Errorf("period id must be > 0")
	}

	const query = `
SELECT id, branch, period_start, period_end
FROM pay_periods
WHERE id = ?;`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("query pay period %d: %w", id, err)
	}
	periods, err := scanPeriods(rows)
	if err != nil {
		return payroll.Period{}, err
	}
	if len(periods) == 0 {
		return payroll.Period{}, fmt.Errorf("%w: id %d", payroll.ErrPeriodMissing, id)
	}
	return periods[0], nil
}

func (s *SQLiteStore) ListBranches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT branch FROM pay_periods ORDER BY branch;`)
	if err != nil {
		return nil, fmt.Errorf("query branches: %w", err)
	}
	defer rows.Close()

	branches := make([]string, 0, 16)
	for rows.Next() {
		var branch string
		if err := rows.Scan(&branch); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, branch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate branches: %w", err)
	}
	return branches, nil
}

func (s *SQLiteStore) ListPeriods(ctx context.Context) ([]payroll.Period, error) {
	const query = `
SELECT id, branch, period_start, period_end
FROM pay_periods
ORDER BY period_start, branch, id;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pay periods: %w", err)
	}
	return scanPeriods(rows)
}

func (s *SQLiteStore) ListPeriodsByBranch(ctx context.Context, branch string) ([]payroll.Period, error) {
	const query = `
SELECT id, branch, period_start, period_end
FROM pay_periods
WHERE branch = ?
ORDER BY period_start, id;`

	rows, err := s.db.QueryContext(ctx, query, branch)
	if err != nil {
		return nil, fmt.Errorf("query pay periods for %s: %w", branch, err)
	}
	return scanPeriods(rows)
}

// ListPeriodsInRange returns periods lying entirely within [from, to].
func (s *SQLiteStore) ListPeriodsInRange(ctx context.Context, from, to time.Time) ([]payroll.Period, error) {
	const query = `
SELECT id, branch, period_start, period_end
FROM pay_periods
WHERE period_start >= ? AND period_end <= ?
ORDER BY period_start, branch, id;`

	rows, err := s.db.QueryContext(ctx, query, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query pay periods in range: %w", err)
	}
	return scanPeriods(rows)
}

func scanPeriods(rows *sql.Rows) ([]payroll.Period, error) {
	defer rows.Close()

	periods := make([]payroll.Period, 0, 16)
	for rows.Next() {
		var (
			period   payroll.Period
			startRaw string
			endRaw   string
			err      error
		)
		if err := rows.Scan(&period.ID, &period.Branch, &startRaw, &endRaw); err != nil {
			return nil, fmt.Errorf("scan pay period: %w", err)
		}
		if period.Start, err = parseDate(startRaw); err != nil {
			return nil, err
		}
		if period.End, err = parseDate(endRaw); err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pay periods: %w", err)
	}
	return periods, nil
}

// InsertEntries writes entries in transactions of at most the configured batch size.
// A failing batch leaves earlier batches committed.
func (s *SQLiteStore) InsertEntries(ctx context.Context, entries []payroll.Entry) error {
	for start := 0; start < len(entries); start += s.batchSize {
		end := min(start+s.batchSize, len(entries))
		if err := s.insertEntryBatch(ctx, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) insertEntryBatch(ctx context.Context, entries []payroll.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	columns := append([]string{"payroll_period_id", "payroll_start", "payroll_end", "employee"}, payroll.AmountColumns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO payroll_entries (%s) VALUES (%s);", strings.Join(columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		args := []any{
			entry.PeriodID,
			entry.PeriodStart.Format(dateLayout),
			entry.PeriodEnd.Format(dateLayout),
			entry.Employee,
		}
		for _, amount := range entry.AmountFields() {
			args = append(args, amount.String())
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert payroll entry %q: %w", entry.Employee, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListEntriesByPeriodIDs returns the entries of all given periods ordered by period and id.
func (s *SQLiteStore) ListEntriesByPeriodIDs(ctx context.Context, ids []int64) ([]payroll.Entry, error) {
	if len(ids) == 0 {
		return []payroll.Entry{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf(`
SELECT id, payroll_period_id, payroll_start, payroll_end, employee, %s
FROM payroll_entries
WHERE payroll_period_id IN (%s)
ORDER BY payroll_period_id, id;`, strings.Join(payroll.AmountColumns, ", "), placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payroll entries: %w", err)
	}
	defer rows.Close()

	entries := make([]payroll.Entry, 0, 64)
	for rows.Next() {
		var (
			entry    payroll.Entry
			startRaw string
			endRaw   string
		)
		dest := []any{&entry.ID, &entry.PeriodID, &startRaw, &endRaw, &entry.Employee}
		for _, amount := range entry.AmountFields() {
			dest = append(dest, amount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan payroll entry: %w", err)
		}
		if entry.PeriodStart, err = parseDate(startRaw); err != nil {
			return nil, err
		}
		if entry.PeriodEnd, err = parseDate(endRaw); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payroll entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) ListEntriesByPeriod(ctx context.Context, id int64) ([]payroll.Entry, error) {
	return s.ListEntriesByPeriodIDs(ctx, []int64{id})
}

func (s *SQLiteStore) InsertFileRecord(ctx context.Context, file payroll.IngestedFile) error {
	const insertStmt = `
INSERT INTO payroll_files (filename, branch, payroll_period_id, public_url)
VALUES (?, ?, ?, ?);`

	if _, err := s.db.ExecContext(ctx, insertStmt, file.Filename, file.Branch, file.PeriodID, file.PublicURL); err != nil {
		return fmt.Errorf("insert payroll file %s: %w", file.Filename, err)
	}
	return nil
}

// ListFileRecords returns every indexed file, newest period first. periodID 0 means all periods.
func (s *SQLiteStore) ListFileRecords(ctx context.Context, periodID int64) ([]payroll.IngestedFile, error) {
	query := `
SELECT f.id, f.filename, f.branch, f.payroll_period_id, f.public_url, f.created_at
FROM payroll_files f
JOIN pay_periods p ON p.id = f.payroll_period_id`
	args := []any{}
	if periodID > 0 {
		query += "\nWHERE f.payroll_period_id = ?"
		args = append(args, periodID)
	}
	query += "\nORDER BY p.period_start DESC, f.branch, f.id;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payroll files: %w", err)
	}
	defer rows.Close()

	files := make([]payroll.IngestedFile, 0, 32)
	for rows.Next() {
		var (
			file       payroll.IngestedFile
			createdRaw string
		)
		if err := rows.Scan(&file.ID, &file.Filename, &file.Branch, &file.PeriodID, &file.PublicURL, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan payroll file: %w", err)
		}
		file.CreatedAt, _ = time.Parse(time.DateTime, createdRaw)
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payroll files: %w", err)
	}
	return files, nil
}

// DeletePeriod removes a period with its entries and file records in one transaction.
// It returns the filenames that were indexed for the period.
func (s *SQLiteStore) DeletePeriod(ctx context.Context, id int64) ([]string, error) {
	if id <= 0 {
		return nil, fmt.Errorf("period id must be > 0")
	}

	files, err := s.ListFileRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM payroll_entries WHERE payroll_period_id = ?;`,
		`DELETE FROM payroll_files WHERE payroll_period_id = ?;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("delete period %d: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM pay_periods WHERE id = ?;`, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("delete period %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("read deleted row count: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%w: id %d", payroll.ErrPeriodMissing, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete transaction: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Filename)
	}
	return names, nil
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return parsed, nil
}
