package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"bakerypay/importer"
	"bakerypay/payroll"
	"bakerypay/storage"
)

type testUpload struct {
	name string
	data []byte
}

func newTestServer(t *testing.T) (*httptest.Server, *storage.Gateway) {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "bakerypay_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := storage.NewBlobStore(afero.NewMemMapFs(), "payroll-files", "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}

	gateway := storage.NewGateway(store, blobs)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := importer.NewService(gateway, importer.DefaultOptions(), logger)

	ts := httptest.NewServer(NewServer(gateway, service, logger))
	t.Cleanup(ts.Close)
	return ts, gateway
}

func workbook(t *testing.T, branch, period string) []byte {
	t.Helper()

	rows := [][]any{
		{"BAKERY PAYROLL"},
		{"WE HEREBY ACKNOWLEDGE to have received from " + branch + ", the amount set opposite our names"},
		{"For the period of " + period},
		{},
		{"NO.", "EMPLOYEE", "DAYS", "MONTHLY", "DAILY", "BASIC"},
		{1, "Ana Cruz", 13, 15000, 577, 7501},
		{2, "Ben Reyes", 12, 15000, 577, 6924},
		{3, "Cora Lim", 10, 15000, 577, 5770},
		{"Prepared by:", nil, nil, "Approved by:"},
	}

	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buffer.Bytes()
}

func postUploads(t *testing.T, ts *httptest.Server, uploads ...testUpload) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, upload := range uploads {
		part, err := writer.CreateFormFile("file", upload.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(upload.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/payroll/upload", writer.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	return resp
}

func uploadOK(t *testing.T, ts *httptest.Server, uploads ...testUpload) uploadResponse {
	t.Helper()

	resp := postUploads(t, ts, uploads...)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return payload
}

func getJSON(t *testing.T, url string, target any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || target == nil {
		return resp.StatusCode
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func deleteRequest(t *testing.T, url string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("new delete request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestServer_UploadIngestsWorkbooks(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	payload := uploadOK(t, ts,
		testUpload{name: "main.xlsx", data: workbook(t, "MAIN BRANCH", "February 16-28, 2025")},
		testUpload{name: "annex.xlsx", data: workbook(t, "ANNEX", "January 1-15, 2025")},
	)

	if payload.Summary.Succeeded != 2 || payload.Summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
	if len(payload.Results) != 2 || payload.Results[0].Filename != "main.xlsx" || payload.Results[1].Filename != "annex.xlsx" {
		t.Fatalf("unexpected results %+v", payload.Results)
	}
	if payload.Results[0].StoredAs != "MAINBRANCH_1_February162025February282025.xlsx" || payload.Results[0].Entries != 3 {
		t.Fatalf("unexpected first result %+v", payload.Results[0])
	}

	var branches []string
	getJSON(t, ts.URL+"/api/branches", &branches)
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %v", branches)
	}

	var rows []PeriodRow
	getJSON(t, ts.URL+"/api/periods", &rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(rows))
	}
	if rows[0].Branch != "MAIN BRANCH" || rows[0].Start != "2025-02-16" || rows[0].End != "2025-02-28" || rows[0].Employees != 3 {
		t.Fatalf("unexpected newest period %+v", rows[0])
	}

	var filtered []PeriodRow
	getJSON(t, ts.URL+"/api/periods?branch=ANNEX", &filtered)
	if len(filtered) != 1 || filtered[0].Start != "2025-01-01" {
		t.Fatalf("unexpected filtered periods %+v", filtered)
	}
}

func TestServer_UploadReportsRejectedFiles(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	payload := uploadOK(t, ts,
		testUpload{name: "notes.csv", data: []byte("a,b\n")},
		testUpload{name: "main.xlsx", data: workbook(t, "MAIN BRANCH", "February 16-28, 2025")},
	)

	if payload.Summary.Succeeded != 1 || payload.Summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
	if payload.Results[0].Status != payroll.StatusError || payload.Results[0].Message == "" {
		t.Fatalf("expected csv to be rejected with a message, got %+v", payload.Results[0])
	}
	if payload.Results[1].Status != payroll.StatusSuccess {
		t.Fatalf("expected workbook to succeed, got %+v", payload.Results[1])
	}

	again := uploadOK(t, ts, testUpload{name: "main-copy.xlsx", data: workbook(t, "MAIN BRANCH", "February 16-28, 2025")})
	if again.Summary.Failed != 1 || again.Results[0].Status != payroll.StatusError {
		t.Fatalf("expected duplicate upload to fail, got %+v", again)
	}
}

func TestServer_UploadRequiresFile(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	resp := postUploads(t, ts)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServer_PeriodEntriesAndDelete(t *testing.T) {
	t.Parallel()

	ts, gateway := newTestServer(t)
	payload := uploadOK(t, ts, testUpload{name: "main.xlsx", data: workbook(t, "MAIN BRANCH", "February 16-28, 2025")})
	storedAs := payload.Results[0].StoredAs

	var rows []PeriodRow
	getJSON(t, ts.URL+"/api/periods", &rows)
	if len(rows) != 1 {
		t.Fatalf("expected 1 period, got %d", len(rows))
	}
	periodURL := ts.URL + "/api/periods/" + strconv.FormatInt(rows[0].ID, 10)

	var detail periodEntriesResponse
	if status := getJSON(t, periodURL+"/entries", &detail); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(detail.Entries) != 3 || detail.Totals.Employees != 3 || detail.Period.Branch != "MAIN BRANCH" {
		t.Fatalf("unexpected period detail %+v", detail)
	}
	if detail.Entries[0].Employee != "Ana Cruz" {
		t.Fatalf("expected entries in sheet order, got %q first", detail.Entries[0].Employee)
	}

	if status := deleteRequest(t, periodURL); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	if status := getJSON(t, periodURL+"/entries", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
	if status := deleteRequest(t, periodURL); status != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", status)
	}

	files, err := gateway.Blobs.List(t.Context(), storedAs)
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected stored workbook to be removed, got %+v", files)
	}
}

func TestServer_PeriodRoutesRejectBadIDs(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	for _, path := range []string{"/api/periods/abc/entries", "/api/periods/0/entries"} {
		if status := getJSON(t, ts.URL+path, nil); status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, status)
		}
	}
	if status := deleteRequest(t, ts.URL+"/api/periods/-1"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative id, got %d", status)
	}
}

func TestServer_SummaryByBranchAndRange(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	uploadOK(t, ts,
		testUpload{name: "a.xlsx", data: workbook(t, "MAIN BRANCH", "January 1-15, 2025")},
		testUpload{name: "b.xlsx", data: workbook(t, "MAIN BRANCH", "January 16-31, 2025")},
		testUpload{name: "c.xlsx", data: workbook(t, "ANNEX", "February 1-15, 2025")},
	)

	var all summaryResponse
	getJSON(t, ts.URL+"/api/summary", &all)
	if len(all.Months) == 0 {
		t.Fatalf("expected monthly totals")
	}

	var branch summaryResponse
	getJSON(t, ts.URL+"/api/summary?branch=ANNEX", &branch)
	if len(branch.Months) != 1 || branch.Months[0].Month != "2025-02" || branch.Months[0].Branch != "ANNEX" {
		t.Fatalf("unexpected branch summary %+v", branch.Months)
	}

	var ranged summaryResponse
	getJSON(t, ts.URL+"/api/summary?from=2025-01-01&to=2025-01-31", &ranged)
	for _, month := range ranged.Months {
		if month.Month != "2025-01" {
			t.Fatalf("unexpected month %s in january range", month.Month)
		}
	}

	if status := getJSON(t, ts.URL+"/api/summary?from=2025-02-01&to=2025-01-01", nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", status)
	}
	if status := getJSON(t, ts.URL+"/api/summary?from=01/02/2025", nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", status)
	}
}

func TestServer_FilesGroupedByMonth(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	uploadOK(t, ts,
		testUpload{name: "a.xlsx", data: workbook(t, "MAIN BRANCH", "January 1-15, 2025")},
		testUpload{name: "c.xlsx", data: workbook(t, "MAIN BRANCH", "February 1-15, 2025")},
	)

	var files filesResponse
	getJSON(t, ts.URL+"/api/files", &files)
	if len(files.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", files.Groups)
	}
	if files.Groups[0].Month != time.February || files.Groups[1].Month != time.January {
		t.Fatalf("expected newest month first, got %+v", files.Groups)
	}
	if files.Groups[0].Branch != "Mainbranch" || len(files.Groups[0].Files) != 1 {
		t.Fatalf("unexpected february group %+v", files.Groups[0])
	}

	var searched filesResponse
	getJSON(t, ts.URL+"/api/files?search=january", &searched)
	if len(searched.Groups) != 1 || searched.Groups[0].Month != time.January {
		t.Fatalf("unexpected search result %+v", searched.Groups)
	}
}

func TestServer_StoredFileDownload(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	data := workbook(t, "MAIN BRANCH", "February 16-28, 2025")
	payload := uploadOK(t, ts, testUpload{name: "main.xlsx", data: data})

	resp, err := http.Get(ts.URL + "/files/payroll-files/" + payload.Results[0].StoredAs)
	if err != nil {
		t.Fatalf("download stored file: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, data) {
		t.Fatalf("downloaded bytes differ from upload")
	}

	if status := getJSON(t, ts.URL+"/files/other-bucket/"+payload.Results[0].StoredAs, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown bucket, got %d", status)
	}
	if status := getJSON(t, ts.URL+"/files/payroll-files/missing.xlsx", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing file, got %d", status)
	}
}
