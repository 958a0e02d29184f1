package storage

import (
	"context"
	"fmt"
	"mime/multipart"
)

// PutFile uploads a multipart file to storage.
// MIME type is detected from magic bytes and refined by the filename extension.
// Returns ErrEmptyFile if the file is nil or has zero size.
// If WithValidation is used and any rule fails, returns *FileValidationError.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	mimeType := o.contentType
	if mimeType == "" {
		mimeType = DetectMIME(fh)
		opts = append(opts, WithContentType(mimeType))
	}

	if len(o.validationRules) > 0 {
		if err := ValidateFile(fh, mimeType, o.validationRules...); err != nil {
			return nil, err
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open file: %w", err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}
