package result

import "math"

var gradePoints = map[string]int{
	"O":  10,
	"A+": 9,
	"A":  8,
	"B+": 7,
	"B":  6,
	"C":  5,
	"P":  4,
	"F":  0,
}

var gradeDescriptions = map[string]string{
	"O":  "Outstanding",
	"A+": "Excellent",
	"A":  "Very Good",
	"B+": "Good",
	"B":  "Above Average",
	"C":  "Average",
	"P":  "Pass",
	"F":  "Fail",
}

// GradePoint maps a letter grade to its point value; unknown grades score 0.
func GradePoint(grade string) int {
	return gradePoints[grade]
}

// GradeDescription maps a letter grade to its label; unknown grades are "N/A".
func GradeDescription(grade string) string {
	if description, ok := gradeDescriptions[grade]; ok {
		return description
	}
	return "N/A"
}

// CGPADescription bands a cgpa into a label. NaN is reported as "N/A".
func CGPADescription(cgpa float64) string {
	switch {
	case math.IsNaN(cgpa):
		return "N/A"
	case cgpa >= 9.5:
		return "Outstanding"
	case cgpa >= 8.5:
		return "Excellent"
	case cgpa >= 7.5:
		return "Very Good"
	case cgpa >= 6.5:
		return "Good"
	case cgpa >= 5.5:
		return "Above Average"
	case cgpa >= 4.5:
		return "Average"
	default:
		return "Fail"
	}
}
