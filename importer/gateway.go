package importer

import (
	"context"
	"time"

	"bakerypay/payroll"
)

// Gateway is the persistence the ingestion pipeline writes through.
type Gateway interface {
	FindPeriod(ctx context.Context, branch string, start, end time.Time) (int64, bool, error)
	InsertPeriod(ctx context.Context, branch string, start, end time.Time) (int64, error)
	InsertEntries(ctx context.Context, entries []payroll.Entry) error
	ListFiles(ctx context.Context, search string) ([]payroll.FileDescriptor, error)
	UploadFile(ctx context.Context, data []byte, filename string) (string, error)
	InsertFileRecord(ctx context.Context, file payroll.IngestedFile) error
}
