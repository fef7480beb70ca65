package result

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// RankedRecord is a record with its leaderboard position and numeric cgpa.
type RankedRecord struct {
	Record Record
	Rank   int
	CGPA   float64
}

// MarshalJSON flattens the record columns and injects rank and the numeric cgpa.
// A cgpa that could not be parsed is written as null.
func (r RankedRecord) MarshalJSON() ([]byte, error) {
	payload := make(map[string]interface{}, len(r.Record)+1)
	for column, value := range r.Record {
		payload[column] = value
	}
	payload["rank"] = r.Rank
	if math.IsNaN(r.CGPA) || math.IsInf(r.CGPA, 0) {
		payload[ColumnCGPA] = nil
	} else {
		payload[ColumnCGPA] = r.CGPA
	}
	return json.Marshal(payload)
}

// ParseCGPA converts a cgpa cell to a float. Anything unparsable or infinite becomes NaN.
func ParseCGPA(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsInf(parsed, 0) {
		return math.NaN()
	}
	return parsed
}

// Rank orders records by cgpa, highest first, and assigns competition ranks:
// tied records share a rank and the next distinct cgpa takes its 1-based position.
// NaN sorts below every number and NaNs tie with each other. Ties keep input order.
func Rank(records []Record) []RankedRecord {
	ranked := make([]RankedRecord, len(records))
	for i, record := range records {
		ranked[i] = RankedRecord{Record: record, CGPA: ParseCGPA(record.CGPA())}
	}

	slices.SortStableFunc(ranked, func(a, b RankedRecord) int {
		return compareCGPADesc(a.CGPA, b.CGPA)
	})

	for i := range ranked {
		if i > 0 && compareCGPADesc(ranked[i-1].CGPA, ranked[i].CGPA) == 0 {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	return ranked
}

func compareCGPADesc(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
