package dto

import "github.com/noah-isme/resultboard-api/internal/models"

// MetadataBundle is the document set loaded by the seeding tool. Documents
// reference each other by id, so every entry must carry one.
type MetadataBundle struct {
	Universities []models.University `json:"universities"`
	Batches      []models.Batch      `json:"batches"`
	Degrees      []DegreeSeed        `json:"degrees"`
	Subjects     []models.Subject    `json:"subjects"`
}

// DegreeSeed is a degree with its college list in structured form.
type DegreeSeed struct {
	models.Degree
	CollegeList []models.CollegeData `json:"colleges"`
}

// SeedSummary reports rows written per collection.
type SeedSummary struct {
	Universities int64 `json:"universities"`
	Batches      int64 `json:"batches"`
	Degrees      int64 `json:"degrees"`
	Subjects     int64 `json:"subjects"`
}
