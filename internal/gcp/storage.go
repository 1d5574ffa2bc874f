package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Archiver keeps a copy of every assembled document and completed report in
// GCS for the firm's retention requirements.
type Archiver struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

func NewArchiver(ctx context.Context, bucket string, logger *slog.Logger) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket must be provided")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{client: client, bucket: bucket, logger: logger}, nil
}

func (a *Archiver) Close() error {
	return a.client.Close()
}

// ObjectName builds the archive path for a generated artifact, partitioned
// by month for retention sweeps.
func ObjectName(kind, id, ext string, t time.Time) string {
	return fmt.Sprintf("%s/%s/%s%s", kind, t.Format("2006/01"), id, ext)
}

// Archive writes an object only if it does not already exist. Archived
// artifacts are immutable; a precondition failure means the artifact was
// already stored and is not an error.
func (a *Archiver) Archive(ctx context.Context, objectName string, contentType string, data []byte) error {
	obj := a.client.Bucket(a.bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true})
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			a.logger.Info("archive object already exists, skipping", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to write archive object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			a.logger.Info("archive object already exists, skipping", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize archive object %s: %w", objectName, err)
	}
	a.logger.Info("artifact archived", "object", objectName, "bytes", len(data))
	return nil
}
