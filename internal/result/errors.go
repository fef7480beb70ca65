package result

import "errors"

var (
	// ErrEmptyDataset indicates a result file produced no data rows.
	ErrEmptyDataset = errors.New("no data found in result file")
	// ErrMissingColumn indicates a mandatory column is absent from the header.
	ErrMissingColumn = errors.New("result file is missing a mandatory column")
	// ErrMalformedResultFile indicates the delimited text could not be read.
	ErrMalformedResultFile = errors.New("result file is malformed")
	// ErrStudentNotFound indicates no row matched the requested roll number.
	ErrStudentNotFound = errors.New("student not found in result file")
	// ErrInvalidRollNumber indicates a roll number that does not follow the 11 digit encoding.
	ErrInvalidRollNumber = errors.New("invalid roll number")
	// ErrMalformedMark indicates a mark cell that does not follow the tuple grammar.
	ErrMalformedMark = errors.New("malformed mark tuple")
)
