package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDegreeNotFound indicates the degree document or degree/batch pair does not exist.
	ErrDegreeNotFound = errors.New("degree not found")
	// ErrNoSemesterResults indicates a degree has no semester result files registered.
	ErrNoSemesterResults = errors.New("semester results not found")
	// ErrSemesterResultNotFound indicates the requested semester has no result file registered.
	ErrSemesterResultNotFound = errors.New("result file not registered for semester")
	// ErrResultFileFormat indicates the stored blob is not delimited text.
	ErrResultFileFormat = errors.New("result file is not a text file")
	// ErrUniversityNotFound indicates the requested university does not exist.
	ErrUniversityNotFound = errors.New("university not found")
	// ErrBatchNotFound indicates the requested batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInvalidUniversityQuery indicates that not exactly one of id or name was given.
	ErrInvalidUniversityQuery = errors.New("either id or name should be provided, only one, not both")
)

// Sources reported by FetchError.
const (
	SourceFileStore     = "file_store"
	SourceMetadataStore = "metadata_store"
)

// FetchError wraps a failure of an external collaborator. The message of the
// underlying error is preserved as is.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s request failed", e.Source)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fileStoreError(err error) error {
	return &FetchError{Source: SourceFileStore, Err: err}
}

func metadataError(err error) error {
	return &FetchError{Source: SourceMetadataStore, Err: err}
}
