package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bakerypay/payroll"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "bakerypay_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteStore_InsertPeriodReturnsExistingID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.InsertPeriod(ctx, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))
	if err != nil {
		t.Fatalf("insert period: %v", err)
	}
	second, err := store.InsertPeriod(ctx, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))
	if err != nil {
		t.Fatalf("insert same period again: %v", err)
	}
	if first != second {
		t.Fatalf("expected same period id, got %d and %d", first, second)
	}

	id, found, err := store.FindPeriod(ctx, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))
	if err != nil {
		t.Fatalf("find period: %v", err)
	}
	if !found || id != first {
		t.Fatalf("expected to find period %d, got found=%t id=%d", first, found, id)
	}

	_, found, err = store.FindPeriod(ctx, "Other Branch", day(2025, 1, 1), day(2025, 1, 15))
	if err != nil {
		t.Fatalf("find period for other branch: %v", err)
	}
	if found {
		t.Fatalf("expected no period for other branch")
	}
}

func TestSQLiteStore_InsertEntriesInBatches(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	store.SetInsertBatchSize(2)
	ctx := context.Background()

	periodID, err := store.InsertPeriod(ctx, "Main Branch", day(2025, 2, 16), day(2025, 2, 28))
	if err != nil {
		t.Fatalf("insert period: %v", err)
	}

	names := []string{"Ana", "Ben", "Cora", "Dan", "Eve"}
	entries := make([]payroll.Entry, 0, len(names))
	for i, name := range names {
		entries = append(entries, payroll.Entry{
			PeriodID:    periodID,
			PeriodStart: day(2025, 2, 16),
			PeriodEnd:   day(2025, 2, 28),
			Employee:    name,
			DaysWorked:  decimal.NewFromInt(int64(10 + i)),
			NetSalary:   decimal.RequireFromString("5123.45"),
		})
	}

	if err := store.InsertEntries(ctx, entries); err != nil {
		t.Fatalf("insert entries: %v", err)
	}

	listed, err := store.ListEntriesByPeriod(ctx, periodID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(listed) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(listed))
	}
	for i, entry := range listed {
		if entry.Employee != names[i] {
			t.Fatalf("entry %d: expected employee %q, got %q", i, names[i], entry.Employee)
		}
		if !entry.NetSalary.Equal(decimal.RequireFromString("5123.45")) {
			t.Fatalf("entry %d: unexpected net salary %s", i, entry.NetSalary)
		}
		if !entry.GrossPay.IsZero() {
			t.Fatalf("entry %d: expected zero gross pay, got %s", i, entry.GrossPay)
		}
		if !entry.PeriodEnd.Equal(day(2025, 2, 28)) {
			t.Fatalf("entry %d: unexpected period end %s", i, entry.PeriodEnd)
		}
	}
}

func TestSQLiteStore_ListPeriodsByBranchAndRange(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	mustInsertPeriod(t, store, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))
	mustInsertPeriod(t, store, "Main Branch", day(2025, 1, 16), day(2025, 1, 31))
	mustInsertPeriod(t, store, "Annex", day(2025, 2, 1), day(2025, 2, 15))

	branches, err := store.ListBranches(ctx)
	if err != nil {
		t.Fatalf("list branches: %v", err)
	}
	if len(branches) != 2 || branches[0] != "Annex" || branches[1] != "Main Branch" {
		t.Fatalf("unexpected branches: %v", branches)
	}

	mainPeriods, err := store.ListPeriodsByBranch(ctx, "Main Branch")
	if err != nil {
		t.Fatalf("list periods by branch: %v", err)
	}
	if len(mainPeriods) != 2 || !mainPeriods[0].Start.Equal(day(2025, 1, 1)) {
		t.Fatalf("unexpected main branch periods: %+v", mainPeriods)
	}

	january, err := store.ListPeriodsInRange(ctx, day(2025, 1, 1), day(2025, 1, 31))
	if err != nil {
		t.Fatalf("list periods in range: %v", err)
	}
	if len(january) != 2 {
		t.Fatalf("expected 2 January periods, got %d", len(january))
	}
}

func TestSQLiteStore_DeletePeriodRemovesEntriesAndFiles(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	periodID := mustInsertPeriod(t, store, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))
	if err := store.InsertEntries(ctx, []payroll.Entry{{
		PeriodID:    periodID,
		PeriodStart: day(2025, 1, 1),
		PeriodEnd:   day(2025, 1, 15),
		Employee:    "Ana",
	}}); err != nil {
		t.Fatalf("insert entries: %v", err)
	}
	if err := store.InsertFileRecord(ctx, payroll.IngestedFile{
		Filename:  "MainBranch_1_January12025January152025.xlsx",
		Branch:    "Main Branch",
		PeriodID:  periodID,
		PublicURL: "http://localhost/payroll-files/MainBranch_1_January12025January152025.xlsx",
	}); err != nil {
		t.Fatalf("insert file record: %v", err)
	}

	names, err := store.DeletePeriod(ctx, periodID)
	if err != nil {
		t.Fatalf("delete period: %v", err)
	}
	if len(names) != 1 || names[0] != "MainBranch_1_January12025January152025.xlsx" {
		t.Fatalf("unexpected deleted file names: %v", names)
	}

	entries, err := store.ListEntriesByPeriod(ctx, periodID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after delete, got %d", len(entries))
	}

	if _, err := store.GetPeriod(ctx, periodID); !errors.Is(err, payroll.ErrPeriodMissing) {
		t.Fatalf("expected ErrPeriodMissing, got %v", err)
	}
	if _, err := store.DeletePeriod(ctx, periodID); !errors.Is(err, payroll.ErrPeriodMissing) {
		t.Fatalf("expected ErrPeriodMissing on second delete, got %v", err)
	}
}

func TestSQLiteStore_FileRecordFilenameIsUnique(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	periodID := mustInsertPeriod(t, store, "Main Branch", day(2025, 1, 1), day(2025, 1, 15))

	record := payroll.IngestedFile{Filename: "a.xlsx", Branch: "Main Branch", PeriodID: periodID, PublicURL: "u"}
	if err := store.InsertFileRecord(ctx, record); err != nil {
		t.Fatalf("insert file record: %v", err)
	}
	if err := store.InsertFileRecord(ctx, record); err == nil {
		t.Fatalf("expected unique constraint violation for duplicate filename")
	}
}

func mustInsertPeriod(t *testing.T, store *SQLiteStore, branch string, start, end time.Time) int64 {
	t.Helper()
	id, err := store.InsertPeriod(context.Background(), branch, start, end)
	if err != nil {
		t.Fatalf("insert period: %v", err)
	}
	return id
}
