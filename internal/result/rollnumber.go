package result

import (
	"fmt"
	"strconv"
	"strings"
)

// RollNumberLength is the number of digits in a roll number.
const RollNumberLength = 11

// RollNumber is a roll number split into its positional fields:
// serial [0,3), college [3,6), degree [6,9) and two digit batch year [9,11).
type RollNumber struct {
	Raw       string
	Serial    string
	CollegeID string
	DegreeID  string
	BatchYear int
}

// ParseRollNumber validates and slices a roll number. The batch year is the
// last two digits prefixed with "20".
func ParseRollNumber(value string) (RollNumber, error) {
	raw := strings.TrimSpace(value)
	if len(raw) != RollNumberLength {
		return RollNumber{}, fmt.Errorf("%w: expected %d digits, got %d characters", ErrInvalidRollNumber, RollNumberLength, len(raw))
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return RollNumber{}, fmt.Errorf("%w: non-digit character %q", ErrInvalidRollNumber, r)
		}
	}

	year, err := strconv.Atoi("20" + raw[9:11])
	if err != nil {
		return RollNumber{}, fmt.Errorf("%w: %v", ErrInvalidRollNumber, err)
	}

	return RollNumber{
		Raw:       raw,
		Serial:    raw[0:3],
		CollegeID: raw[3:6],
		DegreeID:  raw[6:9],
		BatchYear: year,
	}, nil
}

// FindStudent returns the rows whose roll number equals rollNumber.
// It fails with ErrStudentNotFound when nothing matches. Rows are not ranked.
func FindStudent(records []Record, rollNumber string) ([]Record, error) {
	target := strings.TrimSpace(rollNumber)
	var matches []Record
	for _, record := range records {
		if record.RollNum() == target {
			matches = append(matches, record)
		}
	}
	if len(matches) == 0 {
		return nil, ErrStudentNotFound
	}
	return matches, nil
}
