package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"loan-assist-be/internal/pkg/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// maxObjectBytes caps how much of a text object is read into memory.
const maxObjectBytes = 20 * 1024 * 1024

// Store reads loan documents from Google Cloud Storage.
type Store struct {
	storageClient *storage.Client
	logger        logger.ILogger
}

// NewStore uses the service account key at saKeyPath when given, application default credentials otherwise.
func NewStore(ctx context.Context, saKeyPath string, log logger.ILogger) (*Store, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Store{storageClient: storageClient, logger: log}, nil
}

func (s *Store) Fetch(ctx context.Context, bucket, path string) ([]byte, error) {
	reader, err := s.storageClient.Bucket(bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, path, err)
	}

	data, truncated := truncate(data, maxObjectBytes)
	if truncated {
		s.logger.Warn("GCSStore", "Object exceeds read limit, content truncated", map[string]interface{}{
			"object":      fmt.Sprintf("gs://%s/%s", bucket, path),
			"object_size": reader.Attrs.Size,
			"kept_bytes":  len(data),
		})
	}
	return data, nil
}

// truncate cuts data to at most limit bytes without splitting a trailing UTF-8 sequence.
func truncate(data []byte, limit int) ([]byte, bool) {
	if len(data) <= limit {
		return data, false
	}
	data = data[:limit]
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				data = data[:i]
			}
			break
		}
	}
	return data, true
}

func (s *Store) Close() error {
	return s.storageClient.Close()
}
