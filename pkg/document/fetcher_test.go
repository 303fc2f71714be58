package document

import (
	"context"
	"errors"
	"sync"
	"testing"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	calls   []string
}

func (f *fakeBlobStore) Fetch(_ context.Context, bucket, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, bucket+"/"+path)
	data, ok := f.objects[bucket+"/"+path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func TestFetch(t *testing.T) {
	blobs := &fakeBlobStore{objects: map[string][]byte{
		"loans/notes/summary.txt":  []byte("Borrower requests a 30-year fixed mortgage."),
		"loans/notes/scan.txt":     {0xff, 0xfe, 0x00, 0x81},
		"loans/notes/manifest.txt": []byte("gs://loans/a.pdf was uploaded by the borrower on 2024-01-02"),
	}}
	f := NewFetcher(blobs, "loans", logger.NewNopLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		bucket  string
		path    string
		want    string
		wantRef bool
	}{
		{name: "pdf passed by reference", bucket: "loans", path: "apps/application.pdf", want: "gs://loans/apps/application.pdf", wantRef: true},
		{name: "spreadsheet passed by reference", bucket: "loans", path: "apps/Rent-Roll.XLSX", want: "gs://loans/apps/Rent-Roll.XLSX", wantRef: true},
		{name: "text inlined", bucket: "loans", path: "notes/summary.txt", want: "Borrower requests a 30-year fixed mortgage."},
		{name: "default bucket", bucket: "", path: "notes/summary.txt", want: "Borrower requests a 30-year fixed mortgage."},
		{name: "text starting with a uri stays inline", bucket: "loans", path: "notes/manifest.txt", want: "gs://loans/a.pdf was uploaded by the borrower on 2024-01-02"},
		{name: "invalid utf8 falls back to reference", bucket: "loans", path: "notes/scan.txt", want: "gs://loans/notes/scan.txt", wantRef: true},
		{name: "fetch error yields empty", bucket: "loans", path: "notes/missing.txt", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, reference := f.Fetch(ctx, tt.bucket, tt.path)
			assert.Equal(t, tt.want, content)
			assert.Equal(t, tt.wantRef, reference)
		})
	}

	for _, call := range blobs.calls {
		assert.NotContains(t, call, ".pdf")
		assert.NotContains(t, call, ".XLSX")
	}
}

func TestFetchWithoutBlobStore(t *testing.T) {
	f := NewFetcher(nil, "loans", logger.NewNopLogger())
	content, reference := f.Fetch(context.Background(), "", "notes/a.txt")
	assert.Equal(t, "", content)
	assert.False(t, reference)

	content, reference = f.Fetch(context.Background(), "", "a.pdf")
	assert.Equal(t, "gs://loans/a.pdf", content)
	assert.True(t, reference)
}

func TestFetchAllPreservesOrder(t *testing.T) {
	blobs := &fakeBlobStore{objects: map[string][]byte{
		"b/one.txt":   []byte("first"),
		"b/three.csv": []byte("a,b\n1,2"),
	}}
	f := NewFetcher(blobs, "b", logger.NewNopLogger())

	refs := f.FetchAll(context.Background(), []Source{
		{Filename: "one.txt", ObjectPath: "one.txt"},
		{ObjectPath: "dir/two.pdf", ContentType: "application/pdf"},
		{Filename: "three.csv", ObjectPath: "three.csv", ContentType: "text/csv"},
	})

	assert.Equal(t, []store.DocumentRef{
		{Filename: "one.txt", Content: "first"},
		{Filename: "two.pdf", Content: "gs://b/dir/two.pdf", ContentType: "application/pdf", Reference: true},
		{Filename: "three.csv", Content: "a,b\n1,2", ContentType: "text/csv"},
	}, refs)
}
