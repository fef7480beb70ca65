package dto

import "github.com/noah-isme/resultboard-api/internal/models"

// UniversityResponse is a university without its storage folder.
type UniversityResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ShortName string            `json:"short_name"`
	Batches   map[string]string `json:"batches"`
}

// NewUniversityResponse maps a university model.
func NewUniversityResponse(university models.University) UniversityResponse {
	return UniversityResponse{
		ID:        university.ID,
		Name:      university.Name,
		ShortName: university.ShortName,
		Batches:   models.StringMap(university.Batches),
	}
}

// DegreeGroup lists the branches of one degree name within a batch. Each branch
// maps its name to the pair [degree_id, degree_doc_id].
type DegreeGroup struct {
	DegreeName string                `json:"degree_name"`
	Branches   []map[string][]string `json:"branches"`
}

// DegreeResponse is a degree without subjects, batch linkage or storage folder.
type DegreeResponse struct {
	ID         string               `json:"id"`
	DegreeID   string               `json:"degree_id"`
	DegreeName string               `json:"degree_name"`
	BranchName string               `json:"branch_name"`
	Colleges   []models.CollegeData `json:"colleges"`
	SemResults map[string]string    `json:"sem_results"`
}

// NewDegreeResponse maps a degree model.
func NewDegreeResponse(degree models.Degree) DegreeResponse {
	colleges := degree.CollegeList()
	if colleges == nil {
		colleges = []models.CollegeData{}
	}
	return DegreeResponse{
		ID:         degree.ID,
		DegreeID:   degree.DegreeID,
		DegreeName: degree.DegreeName,
		BranchName: degree.BranchName,
		Colleges:   colleges,
		SemResults: degree.SemesterResults(),
	}
}
