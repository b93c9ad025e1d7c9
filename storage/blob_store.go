package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"bakerypay/payroll"
)

// BlobStore keeps uploaded workbooks as flat objects inside one bucket directory.
type BlobStore struct {
	fs        afero.Fs
	bucket    string
	publicURL string
}

func NewBlobStore(fs afero.Fs, bucket, publicURL string) (*BlobStore, error) {
	bucket = strings.Trim(strings.TrimSpace(bucket), "/")
	if bucket == "" {
		return nil, fmt.Errorf("blob bucket name is required")
	}
	if err := fs.MkdirAll(bucket, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return &BlobStore{fs: fs, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// OpenBlobStore stores objects below dir on the local disk.
func OpenBlobStore(dir, bucket, publicURL string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return NewBlobStore(afero.NewBasePathFs(afero.NewOsFs(), dir), bucket, publicURL)
}

func (b *BlobStore) Bucket() string {
	return b.bucket
}

// Put writes the object, replacing an existing one, and returns its public URL.
func (b *BlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	objectPath, err := b.objectPath(name)
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(b.fs, objectPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	return b.PublicURL(name), nil
}

// List returns the objects whose name contains search, sorted by name.
func (b *BlobStore) List(ctx context.Context, search string) ([]payroll.FileDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(b.fs, b.bucket)
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", b.bucket, err)
	}

	files := make([]payroll.FileDescriptor, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.Contains(info.Name(), search) {
			continue
		}
		files = append(files, payroll.FileDescriptor{Name: info.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (b *BlobStore) Open(name string) (afero.File, error) {
	objectPath, err := b.objectPath(name)
	if err != nil {
		return nil, err
	}
	return b.fs.Open(objectPath)
}

// Remove deletes the object. Missing objects are not an error.
func (b *BlobStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objectPath, err := b.objectPath(name)
	if err != nil {
		return err
	}
	if err := b.fs.Remove(objectPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

func (b *BlobStore) PublicURL(name string) string {
	return b.publicURL + "/" + b.bucket + "/" + url.PathEscape(name)
}

func (b *BlobStore) objectPath(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return path.Join(b.bucket, name), nil
}
