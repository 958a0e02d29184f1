package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MIME types of the supported recipient files.
const (
	MIMEOctetStream = "application/octet-stream"
	MIMEXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS         = "application/vnd.ms-excel"
	MIMECSV         = "text/csv"

	mimeDetectionBytes = 512 // http.DetectContentType requires up to 512 bytes
)

// oleSignature starts every legacy Office binary file, including .xls.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var mimeExtensions = map[string]string{
	MIMEXLSX:          ".xlsx",
	MIMEXLS:           ".xls",
	MIMECSV:           ".csv",
	"text/plain":      ".txt",
	"application/zip": ".zip",
}

// DetectMIME detects the MIME type of an uploaded file from its magic bytes.
// Zip and plain-text results are refined with the filename extension, since an
// .xlsx is a zip container and a .csv is plain text.
// Returns "application/octet-stream" if detection fails.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}

	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	buf := make([]byte, mimeDetectionBytes)
	n, err := io.ReadFull(f, buf)
	if n == 0 && err != nil {
		return MIMEOctetStream
	}
	return detectMIME(buf[:n], fh.Filename)
}

// ExtFromMIME returns the file extension for a MIME type.
// Returns empty string if MIME type is unknown.
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[normalizeMIME(mimeType)]
}

func detectMIME(head []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if bytes.HasPrefix(head, oleSignature) {
		if ext == ".xls" {
			return MIMEXLS
		}
		return MIMEOctetStream
	}

	detected := http.DetectContentType(head)
	switch normalizeMIME(detected) {
	case "application/zip":
		if ext == ".xlsx" || ext == ".xlsm" {
			return MIMEXLSX
		}
	case "text/plain":
		if ext == ".csv" {
			return MIMECSV
		}
	}
	return detected
}

// detectMIMEWithReader detects MIME type from a reader and returns a seekable reader.
// AWS SDK v2 requires io.ReadSeeker for computing payload hash.
// If input is already seekable, it seeks back to start after detection.
// Otherwise, it buffers the entire content into memory.
func detectMIMEWithReader(r io.Reader, filename string) (string, io.ReadSeeker) {
	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, mimeDetectionBytes)
		n, _ := io.ReadFull(rs, buf)
		_, _ = rs.Seek(0, io.SeekStart)
		if n > 0 {
			return detectMIME(buf[:n], filename), rs
		}
		return MIMEOctetStream, rs
	}

	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return MIMEOctetStream, bytes.NewReader(nil)
	}

	return detectMIME(data, filename), bytes.NewReader(data)
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME checks if a MIME type matches any of the allowed patterns.
// Supports wildcards like "text/*".
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}

		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}
