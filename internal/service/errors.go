package service

import "errors"

// Error kinds returned by the upload, query and deletion services. Callers match them
// with errors.Is, the wrapped cause is only meant for logs
var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidSession      = errors.New("invalid session")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidURL          = errors.New("invalid url")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrDisk                = errors.New("disk error")
	ErrStat                = errors.New("stat failure")
	ErrDatabase            = errors.New("database error")
)
