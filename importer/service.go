package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"bakerypay/payroll"
)

const DefaultConcurrency = 3

type Options struct {
	// Concurrency is the number of files ingested at once within a batch group.
	Concurrency int
	ScanRows    int
	Convention  PeriodConvention
}

func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
		ScanRows:    DefaultScanRows,
		Convention:  SemiMonthly,
	}
}

// Upload is one submitted workbook.
type Upload struct {
	Name string
	Data []byte
}

// Outcome describes a successfully ingested file.
type Outcome struct {
	StoredAs  string
	PublicURL string
	Period    payroll.Period
	Entries   int
}

type Service struct {
	gateway Gateway
	options Options
	logger  *slog.Logger
}

func NewService(gateway Gateway, options Options, logger *slog.Logger) *Service {
	defaults := DefaultOptions()
	if options.Concurrency <= 0 {
		options.Concurrency = defaults.Concurrency
	}
	if options.ScanRows <= 0 {
		options.ScanRows = defaults.ScanRows
	}
	if options.Convention == "" {
		options.Convention = defaults.Convention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gateway, options: options, logger: logger}
}

// IngestFile runs the whole pipeline for one workbook. Nothing is written when the file
// is rejected before the final step; the final entry insert and file upload are not rolled
// back against each other.
func (s *Service) IngestFile(ctx context.Context, name string, data []byte) (Outcome, error) {
	grid, err := ReadWorkbook(name, data)
	if err != nil {
		return Outcome{}, err
	}

	meta, err := ExtractMetadata(grid, s.options.ScanRows, s.options.Convention)
	if err != nil {
		return Outcome{}, err
	}
	if meta.DocumentStartDay != 0 && meta.DocumentStartDay != meta.Start.Day() {
		s.logger.Warn("document period start differs from derived start",
			"file", name,
			"document_start_day", meta.DocumentStartDay,
			"derived_start", meta.Start.Format("2006-01-02"),
			"convention", string(s.options.Convention),
		)
	}

	rows := LocateRows(grid)
	if len(rows) == 0 {
		return Outcome{}, fmt.Errorf("%w in %s: check that employee names are in column B below the header", payroll.ErrNoEmployeeData, name)
	}

	periodID, err := ResolvePeriod(ctx, s.gateway, meta.Branch, meta.Start, meta.End)
	if err != nil {
		return Outcome{}, err
	}
	period := payroll.Period{ID: periodID, Branch: meta.Branch, Start: meta.Start, End: meta.End}

	storedAs := DeriveFilename(meta.Branch, periodID, meta.Start, meta.End, FileExtension(name))
	exists, err := FileExists(ctx, s.gateway, storedAs)
	if err != nil {
		return Outcome{}, err
	}
	if exists {
		return Outcome{}, fmt.Errorf("%w: %s already exists", payroll.ErrDuplicateFile, storedAs)
	}

	entries := NormalizeRows(rows, period)

	var (
		group     errgroup.Group
		publicURL string
	)
	group.Go(func() error {
		if err := s.gateway.InsertEntries(ctx, entries); err != nil {
			return fmt.Errorf("%w: insert payroll entries: %v", payroll.ErrPersistence, err)
		}
		return nil
	})
	group.Go(func() error {
		url, err := s.gateway.UploadFile(ctx, data, storedAs)
		if err != nil {
			return fmt.Errorf("%w: upload file: %v", payroll.ErrPersistence, err)
		}
		publicURL = url
		record := payroll.IngestedFile{
			Filename:  storedAs,
			Branch:    meta.Branch,
			PeriodID:  periodID,
			PublicURL: url,
		}
		if err := s.gateway.InsertFileRecord(ctx, record); err != nil {
			return fmt.Errorf("%w: insert file record: %v", payroll.ErrPersistence, err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return Outcome{}, err
	}

	return Outcome{
		StoredAs:  storedAs,
		PublicURL: publicURL,
		Period:    period,
		Entries:   len(entries),
	}, nil
}

// IngestBatch ingests uploads in groups of Options.Concurrency. A group finishes before the
// next one starts; files never affect their siblings. Results follow the order of uploads.
func (s *Service) IngestBatch(ctx context.Context, uploads []Upload) []payroll.Result {
	results := make([]payroll.Result, len(uploads))
	size := s.options.Concurrency

	for start := 0; start < len(uploads); start += size {
		end := min(start+size, len(uploads))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Go(func() {
				results[i] = s.ingestOne(ctx, uploads[i])
			})
		}
		wg.Wait()
	}

	return results
}

func (s *Service) ingestOne(ctx context.Context, upload Upload) payroll.Result {
	outcome, err := s.IngestFile(ctx, upload.Name, upload.Data)
	if err != nil {
		s.logger.Warn("payroll file rejected", "file", upload.Name, "error", err)
		return payroll.Result{
			Filename: upload.Name,
			Status:   payroll.StatusError,
			Message:  err.Error(),
		}
	}

	s.logger.Info("payroll file ingested",
		"file", upload.Name,
		"stored_as", outcome.StoredAs,
		"branch", outcome.Period.Branch,
		"period_id", outcome.Period.ID,
		"entries", outcome.Entries,
	)
	return payroll.Result{
		Filename: upload.Name,
		Status:   payroll.StatusSuccess,
		StoredAs: outcome.StoredAs,
		Entries:  outcome.Entries,
	}
}
