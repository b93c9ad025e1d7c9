// Package web serves the payroll upload and read API for a single office on a trusted
// network; it intentionally has no auth/CSRF protection in this mode.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bakerypay/importer"
	"bakerypay/internal/timeutil"
	"bakerypay/payroll"
	"bakerypay/report"
	"bakerypay/storage"
)

const (
	maxUploadBytes  = 64 << 20
	multipartMemory = 32 << 20
)

type Server struct {
	gateway *storage.Gateway
	ingest  *importer.Service
	logger  *slog.Logger
	mux     *http.ServeMux
}

type uploadResponse struct {
	Results []payroll.Result `json:"results"`
	Summary payroll.Summary  `json:"summary"`
	Message string           `json:"message"`
}

type periodEntriesResponse struct {
	Period  payroll.Period  `json:"period"`
	Totals  EntryTotals     `json:"totals"`
	Entries []payroll.Entry `json:"entries"`
}

type summaryResponse struct {
	Months []report.MonthlyExpense `json:"months"`
	Total  string                  `json:"total"`
}

type filesResponse struct {
	Groups  []report.FileGroup `json:"groups"`
	Skipped []string           `json:"skipped,omitempty"`
}

func NewServer(gateway *storage.Gateway, ingest *importer.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		gateway: gateway,
		ingest:  ingest,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	server.mux.HandleFunc("POST /api/payroll/upload", server.handleAPIUpload)
	server.mux.HandleFunc("GET /api/branches", server.handleAPIBranches)
	server.mux.HandleFunc("GET /api/periods", server.handleAPIPeriods)
	server.mux.HandleFunc("GET /api/periods/{id}/entries", server.handleAPIPeriodEntries)
	server.mux.HandleFunc("DELETE /api/periods/{id}", server.handleAPIPeriodDelete)
	server.mux.HandleFunc("GET /api/summary", server.handleAPISummary)
	server.mux.HandleFunc("GET /api/files", server.handleAPIFiles)
	server.mux.HandleFunc("GET /files/{bucket}/{name}", server.handleStoredFile)

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}

	uploads := make([]importer.Upload, 0, len(headers))
	for _, header := range headers {
		data, err := readUpload(header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uploads = append(uploads, importer.Upload{Name: header.Filename, Data: data})
	}

	results := s.ingest.IngestBatch(r.Context(), uploads)
	summary := payroll.Summarize(results)
	s.logger.Info("payroll upload processed",
		"files", len(results),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	writeJSON(w, http.StatusOK, uploadResponse{
		Results: results,
		Summary: summary,
		Message: summary.String(),
	})
}

func (s *Server) handleAPIBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.gateway.Store.ListBranches(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

func (s *Server) handleAPIPeriods(w http.ResponseWriter, r *http.Request) {
	branch := strings.TrimSpace(r.URL.Query().Get("branch"))

	var (
		periods []payroll.Period
		err     error
	)
	if branch == "" {
		periods, err = s.gateway.Store.ListPeriods(r.Context())
	} else {
		periods, err = s.gateway.Store.ListPeriodsByBranch(r.Context(), branch)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ids := make([]int64, 0, len(periods))
	for _, period := range periods {
		ids = append(ids, period.ID)
	}
	entries, err := s.gateway.Store.ListEntriesByPeriodIDs(r.Context(), ids)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, BuildPeriodRows(periods, entries))
}

func (s *Server) handleAPIPeriodEntries(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid period id", http.StatusBadRequest)
		return
	}

	period, err := s.gateway.Store.GetPeriod(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	entries, err := s.gateway.Store.ListEntriesByPeriod(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, periodEntriesResponse{
		Period:  period,
		Totals:  SumEntries(entries),
		Entries: entries,
	})
}

func (s *Server) handleAPIPeriodDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid period id", http.StatusBadRequest)
		return
	}

	removed, err := s.gateway.DeletePeriod(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	s.logger.Info("payroll period deleted", "period_id", id, "files", len(removed))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	branch := strings.TrimSpace(query.Get("branch"))
	fromRaw := strings.TrimSpace(query.Get("from"))
	toRaw := strings.TrimSpace(query.Get("to"))

	var (
		months []report.MonthlyExpense
		err    error
	)
	switch {
	case fromRaw != "" || toRaw != "":
		from, to, parseErr := parseDateRange(fromRaw, toRaw)
		if parseErr != nil {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		months, err = report.RangeMonthly(r.Context(), s.gateway.Store, from, to)
	case branch != "":
		months, err = report.BranchMonthly(r.Context(), s.gateway.Store, branch)
	default:
		months, err = report.AllBranchesMonthly(r.Context(), s.gateway.Store)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Months: months,
		Total:  report.Total(months).StringFixed(2),
	})
}

func (s *Server) handleAPIFiles(w http.ResponseWriter, r *http.Request) {
	records, err := s.gateway.Store.ListFileRecords(r.Context(), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		filtered := records[:0]
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Filename), strings.ToLower(search)) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	groups, skipped := report.GroupFiles(records)
	if groups == nil {
		groups = []report.FileGroup{}
	}
	writeJSON(w, http.StatusOK, filesResponse{Groups: groups, Skipped: skipped})
}

func (s *Server) handleStoredFile(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("bucket") != s.gateway.Blobs.Bucket() {
		http.NotFound(w, r)
		return
	}

	name := r.PathValue("name")
	file, err := s.gateway.Blobs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	return data, nil
}

func parseISODate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.StartOfDay(parsed), nil
}

// parseDateRange accepts YYYY-MM-DD bounds. A missing bound is filled from the other one's month.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = parseISODate(fromRaw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date (expected YYYY-MM-DD)")
		}
	}
	if toRaw != "" {
		if to, err = parseISODate(toRaw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date (expected YYYY-MM-DD)")
		}
	}
	if from.IsZero() {
		from = timeutil.StartOfMonth(to)
	}
	if to.IsZero() {
		to = timeutil.EndOfMonth(from)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date must not be before from date")
	}
	return from, to, nil
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func statusForError(err error) int {
	if errors.Is(err, payroll.ErrPeriodMissing) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
