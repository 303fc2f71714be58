package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

// largeBinaryExtensions are never downloaded; the model reads them from storage directly.
var largeBinaryExtensions = map[string]struct{}{
	".pdf":  {},
	".xls":  {},
	".xlsx": {},
	".ods":  {},
	".doc":  {},
	".docx": {},
	".ppt":  {},
	".pptx": {},
}

var ErrNoBlobStore = errors.New("blob store is not configured")

// BlobStore fetches raw object bytes.
type BlobStore interface {
	Fetch(ctx context.Context, bucket, path string) ([]byte, error)
}

// Source locates one document in object storage.
type Source struct {
	Filename    string
	Bucket      string
	ObjectPath  string
	ContentType string
}

type Fetcher struct {
	blobs         BlobStore
	defaultBucket string
	concurrency   int
	logger        logger.ILogger
}

// NewFetcher accepts a nil BlobStore; every text fetch then resolves to empty content.
func NewFetcher(blobs BlobStore, defaultBucket string, log logger.ILogger) *Fetcher {
	return &Fetcher{
		blobs:         blobs,
		defaultBucket: defaultBucket,
		concurrency:   4,
		logger:        log,
	}
}

// Reference renders the tagged object reference for bucket/path.
func Reference(bucket, path string) string {
	return fmt.Sprintf("%s%s/%s", store.ReferencePrefix, bucket, strings.TrimPrefix(path, "/"))
}

// IsLargeBinary reports whether the file is handed to the model by reference.
func IsLargeBinary(name string) bool {
	_, ok := largeBinaryExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Fetch returns inline UTF-8 text, a gs:// reference (reference=true), or "" when the object cannot be read.
func (f *Fetcher) Fetch(ctx context.Context, bucket, path string) (content string, reference bool) {
	if bucket == "" {
		bucket = f.defaultBucket
	}
	ref := Reference(bucket, path)

	if IsLargeBinary(path) {
		return ref, true
	}

	if f.blobs == nil {
		f.logger.Warn("DocumentFetcher", "Skipping document fetch", map[string]interface{}{
			"object": ref,
			"error":  ErrNoBlobStore,
		})
		return "", false
	}

	data, err := f.blobs.Fetch(ctx, bucket, path)
	if err != nil {
		f.logger.Error("DocumentFetcher", "Failed to fetch document", map[string]interface{}{
			"object": ref,
			"error":  err,
		})
		return "", false
	}

	if !utf8.Valid(data) {
		f.logger.Info("DocumentFetcher", "Binary content behind text extension, passing by reference", map[string]interface{}{
			"object": ref,
			"bytes":  len(data),
		})
		return ref, true
	}

	return string(data), false
}

// FetchAll resolves sources concurrently and returns refs in source order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []store.DocumentRef {
	refs := make([]store.DocumentRef, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			filename := src.Filename
			if filename == "" {
				filename = filepath.Base(src.ObjectPath)
			}
			content, reference := f.Fetch(gctx, src.Bucket, src.ObjectPath)
			refs[i] = store.DocumentRef{
				Filename:    filename,
				Content:     content,
				ContentType: src.ContentType,
				Reference:   reference,
			}
			return nil
		})
	}
	_ = g.Wait() // Fetch never fails

	return refs
}
