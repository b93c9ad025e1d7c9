package storage

import (
	"context"
	"fmt"
	"time"

	"bakerypay/payroll"
)

// Gateway joins the tables and the blob bucket into the persistence used by ingestion.
type Gateway struct {
	Store *SQLiteStore
	Blobs *BlobStore
}

func NewGateway(store *SQLiteStore, blobs *BlobStore) *Gateway {
	return &Gateway{Store: store, Blobs: blobs}
}

func (g *Gateway) FindPeriod(ctx context.Context, branch string, start, end time.Time) (int64, bool, error) {
	return g.Store.FindPeriod(ctx, branch, start, end)
}

func (g *Gateway) InsertPeriod(ctx context.Context, branch string, start, end time.Time) (int64, error) {
	return g.Store.InsertPeriod(ctx, branch, start, end)
}

func (g *Gateway) InsertEntries(ctx context.Context, entries []payroll.Entry) error {
	return g.Store.InsertEntries(ctx, entries)
}

func (g *Gateway) ListFiles(ctx context.Context, search string) ([]payroll.FileDescriptor, error) {
	return g.Blobs.List(ctx, search)
}

func (g *Gateway) UploadFile(ctx context.Context, data []byte, filename string) (string, error) {
	return g.Blobs.Put(ctx, filename, data)
}

func (g *Gateway) InsertFileRecord(ctx context.Context, file payroll.IngestedFile) error {
	return g.Store.InsertFileRecord(ctx, file)
}

// DeletePeriod removes the period rows and then the stored workbooks that belonged to it.
func (g *Gateway) DeletePeriod(ctx context.Context, id int64) ([]string, error) {
	names, err := g.Store.DeletePeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := g.Blobs.Remove(ctx, name); err != nil {
			return names, fmt.Errorf("period %d deleted but stored file remains: %w", id, err)
		}
	}
	return names, nil
}
