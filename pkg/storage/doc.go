// Package storage archives uploaded recipient files in S3-compatible object storage.
//
// Uploads are validated before they are stored. The MIME type is detected from the
// file's magic bytes and refined by its extension, since an .xlsx workbook is a zip
// container and a .csv file is plain text:
//
//	info, err := storage.PutFile(ctx, store, fh,
//		storage.WithValidation(
//			storage.NotEmpty(),
//			storage.MaxSize(10<<20),
//			storage.SpreadsheetsOnly(),
//		),
//		storage.WithTenant(sessionID),
//		storage.WithPrefix("recipients"),
//	)
//
// A failed rule returns a *FileValidationError whose Message can be shown to the user.
// S3 failures are mapped to ErrNotFound, ErrAccessDenied, ErrUploadFailed and
// ErrDeleteFailed; check them with errors.Is.
package storage
