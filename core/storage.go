package core

import (
	"context"
	"errors"
	"io"
	"strings"
)

// MaxUploadSize is the advisory client-side cap; the bucket policy remains
// the real enforcement boundary.
const MaxUploadSize = 50 << 20 // 50MB

var (
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size of 50MB")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	allowedUploadTypes = map[string]struct{}{
		"application/pdf":    {},
		"application/msword": {},
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
		"application/vnd.ms-powerpoint":                                             {},
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
		"application/vnd.ms-excel": {},
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
		"image/png":  {},
		"image/jpeg": {},
		"image/gif":  {},
		"image/webp": {},
		"video/mp4":  {},
		"video/webm": {},
	}
)

type (
	// UploadResult describes a stored file.
	UploadResult struct {
		Key      string `json:"key"`       // object key within the bucket
		URL      string `json:"url"`       // publicly resolvable URL
		FileType string `json:"file_type"` // image | video | pdf, inferred from the content type
	}

	// FileStore is any service that can store binary blobs and serve them publicly.
	FileStore interface {
		Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (UploadResult, error)
		Delete(ctx context.Context, key string) error
	}
)

// ValidateUpload checks an upload against the allowed MIME set and size cap.
func ValidateUpload(contentType string, size int64) error {
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return ErrUnsupportedFileType
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

// InferFileType maps an uploaded content type to the resource file type
// stored alongside it. Anything that is neither an image nor a video is
// treated as a document.
func InferFileType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "pdf"
	}
}
