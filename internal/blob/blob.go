// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blob keeps the original bytes of uploaded documents in a local
// directory or an S3 bucket so that deleting an analysis can also delete
// its upload.
package blob

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Storage stores uploads under generated keys.
type Storage interface {
	// Upload stores data and returns its storage key.
	Upload(ctx context.Context, id uuid.UUID, filename string, data io.Reader) (string, error)

	// Download opens the upload stored under key. Unknown keys return
	// errs.ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the upload stored under key. Unknown keys are not an
	// error.
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by cfg.Type.
func New(ctx context.Context, cfg types.UploadConfig) (Storage, error) {
	switch cfg.Type {
	case types.UploadLocal, "":
		return NewLocal(cfg.LocalPath)
	case types.UploadS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown upload type %q", errs.ErrInvalidInput, cfg.Type)
	}
}

// Key returns the storage key for an upload: a two-character shard
// directory, then the id and the sanitized file name.
func Key(id uuid.UUID, filename string) string {
	filename = filepath.Base(filepath.ToSlash(filename))
	ext := filepath.Ext(filename)
	name := strings.NewReplacer(" ", "_", "/", "_", `\`, "_", "..", "_").Replace(strings.TrimSuffix(filename, ext))
	s := id.String()
	return fmt.Sprintf("%s/%s_%s%s", s[:2], s, name, strings.ToLower(ext))
}

// ContentType maps an allowed document extension to its MIME type.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".rtf":
		return "application/rtf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
