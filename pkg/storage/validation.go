package storage

import (
	"fmt"
	"mime/multipart"
)

// FileValidationError represents a file validation failure.
type FileValidationError struct {
	Details map[string]any // Error-specific data
	Field   string         // Form field name (e.g., "recipients")
	Code    string         // Error code (e.g., "file_too_large", "invalid_mime", "empty_file")
	Message string         // Human-readable message
}

// Error implements the error interface.
func (e *FileValidationError) Error() string {
	return e.Message
}

// Error codes for FileValidationError.
const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// ValidationRule defines a validation check for file uploads.
type ValidationRule interface {
	// Validate checks a file of size bytes with the detected mimeType.
	Validate(size int64, mimeType string) error
}

// ValidateFile runs all validation rules against a multipart file.
// Returns the first validation error encountered, or nil if all pass.
// The mimeType should be pre-detected with DetectMIME.
func ValidateFile(fh *multipart.FileHeader, mimeType string, rules ...ValidationRule) error {
	var size int64
	if fh != nil {
		size = fh.Size
	}
	return ValidateReader(size, mimeType, rules...)
}

// ValidateReader runs all validation rules against content of the given size and type.
func ValidateReader(size int64, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.Validate(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

type maxSizeRule struct {
	maxBytes int64
}

// MaxSize returns a rule that rejects files larger than the specified size.
func MaxSize(bytes int64) ValidationRule {
	return &maxSizeRule{maxBytes: bytes}
}

// Validate implements ValidationRule.
func (r *maxSizeRule) Validate(size int64, _ string) error {
	if size > r.maxBytes {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, r.maxBytes),
			Details: map[string]any{
				"limit": r.maxBytes,
				"got":   size,
			},
		}
	}
	return nil
}

type notEmptyRule struct{}

// NotEmpty returns a rule that rejects empty files.
func NotEmpty() ValidationRule {
	return &notEmptyRule{}
}

// Validate implements ValidationRule.
func (r *notEmptyRule) Validate(size int64, _ string) error {
	if size <= 0 {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeEmptyFile,
			Message: "file is empty",
			Details: map[string]any{},
		}
	}
	return nil
}

type allowedTypesRule struct {
	message  string
	patterns []string
}

// AllowedTypes returns a rule that only accepts files matching the given MIME patterns.
// Supports wildcards like "text/*".
func AllowedTypes(patterns ...string) ValidationRule {
	return &allowedTypesRule{patterns: patterns}
}

// Validate implements ValidationRule.
func (r *allowedTypesRule) Validate(_ int64, mimeType string) error {
	if matchesMIME(mimeType, r.patterns) {
		return nil
	}

	msg := r.message
	if msg == "" {
		msg = fmt.Sprintf("file type %q is not allowed", mimeType)
	}
	return &FileValidationError{
		Field:   "file",
		Code:    ErrCodeInvalidMIME,
		Message: msg,
		Details: map[string]any{
			"type":    mimeType,
			"allowed": r.patterns,
		},
	}
}

// SpreadsheetsOnly returns a rule that accepts .xlsx workbooks and .csv files.
// Legacy .xls workbooks are rejected.
func SpreadsheetsOnly() ValidationRule {
	return &allowedTypesRule{
		patterns: []string{MIMEXLSX, MIMECSV},
		message:  "only .xlsx and .csv files are supported",
	}
}
