package roster

import "errors"

var (
	ErrRowNotFound       = errors.New("roster: row not found")
	ErrUnsupportedFormat = errors.New("roster: unsupported file format, upload an .xlsx or .csv file")
	ErrInvalidFile       = errors.New("roster: file could not be read")
	ErrMissingColumn     = errors.New("roster: required column is missing")
	ErrInvalidStatus     = errors.New("roster: invalid status")
)
