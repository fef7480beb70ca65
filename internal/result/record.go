package result

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Column names shared with every consumer of a result file.
const (
	ColumnRollNum          = "roll_num"
	ColumnName             = "name"
	ColumnCollegeID        = "college_id"
	ColumnTotalMarksScored = "total_marks_scored"
	ColumnMaxMarksPossible = "max_marks_possible"
	ColumnCGPA             = "cgpa"

	// SubjectColumnPrefix marks a per-subject column; the suffix is the subject id.
	SubjectColumnPrefix = "sub_"
)

// RequiredColumns lists the columns every result file must carry.
var RequiredColumns = []string{
	ColumnRollNum,
	ColumnName,
	ColumnCollegeID,
	ColumnTotalMarksScored,
	ColumnMaxMarksPossible,
	ColumnCGPA,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one parsed row keyed by column name.
type Record map[string]string

// RollNum returns the roll number column.
func (r Record) RollNum() string { return r[ColumnRollNum] }

// CollegeID returns the college id column.
func (r Record) CollegeID() string { return r[ColumnCollegeID] }

// CGPA returns the raw cgpa column.
func (r Record) CGPA() string { return r[ColumnCGPA] }

// SubjectCell returns the raw mark cell for the subject and whether the column exists.
func (r Record) SubjectCell(subjectID string) (string, bool) {
	value, ok := r[SubjectColumnPrefix+subjectID]
	return value, ok
}

// Header is the ordered column list of a result file.
type Header []string

// SubjectIDs returns the subject ids encoded in sub_<id> columns, in column order.
func (h Header) SubjectIDs() []string {
	ids := make([]string, 0, len(h))
	for _, column := range h {
		if id, ok := subjectIDFromColumn(column); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Dataset holds the parsed rows of a result file together with its header.
type Dataset struct {
	Header  Header
	Records []Record
}

// SubjectIDs returns the subject ids present in the dataset header.
func (d Dataset) SubjectIDs() []string {
	return d.Header.SubjectIDs()
}

// FilterByCollege keeps rows whose college id matches; an empty id keeps every row.
func (d Dataset) FilterByCollege(collegeID string) []Record {
	collegeID = strings.TrimSpace(collegeID)
	if collegeID == "" {
		out := make([]Record, len(d.Records))
		copy(out, d.Records)
		return out
	}

	out := make([]Record, 0, len(d.Records))
	for _, record := range d.Records {
		if record.CollegeID() == collegeID {
			out = append(out, record)
		}
	}
	return out
}

// ParseRecords reads comma separated text with a header line into records.
// Empty lines are skipped and every row must have as many fields as the header.
func ParseRecords(r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read result file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	columns, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, ErrEmptyDataset
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %v", ErrMalformedResultFile, err)
	}

	header := make(Header, len(columns))
	for i, column := range columns {
		header[i] = strings.TrimSpace(column)
	}
	if err := validateHeader(header); err != nil {
		return Dataset{}, err
	}

	var records []Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: %v", ErrMalformedResultFile, err)
		}

		record := make(Record, len(header))
		for i, column := range header {
			record[column] = strings.TrimSpace(fields[i])
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return Dataset{}, ErrEmptyDataset
	}

	return Dataset{Header: header, Records: records}, nil
}

func validateHeader(header Header) error {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[column] = struct{}{}
	}

	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func subjectIDFromColumn(column string) (string, bool) {
	if !strings.HasPrefix(column, SubjectColumnPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(column, SubjectColumnPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}
