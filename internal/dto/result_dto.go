package dto

import (
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/result"
)

// ResultRequest identifies the roster to rank. An empty college id returns
// every college in the file; an empty result file id is resolved from the
// degree's semester map.
type ResultRequest struct {
	CollegeID    string `json:"college_id" validate:"omitempty,numeric,max=8"`
	DegreeDocID  string `json:"degree_doc_id" validate:"required,max=64"`
	SemesterNum  int    `json:"semester_num" validate:"required,min=1,max=12"`
	ResultFileID string `json:"result_file_id" validate:"omitempty,max=255"`
}

// SubjectResponse is the pedagogic metadata of a subject, without any
// university linkage.
type SubjectResponse struct {
	ID               string `json:"id"`
	SubjectID        string `json:"subject_id"`
	SubjectCode      string `json:"subject_code"`
	SubjectName      string `json:"subject_name"`
	SubjectCredit    int    `json:"subject_credit"`
	MaxInternalMarks int    `json:"max_internal_marks"`
	MaxExternalMarks int    `json:"max_external_marks"`
	PassingMarks     int    `json:"passing_marks"`
}

// NewSubjectResponse maps a subject model to its public representation.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:               subject.ID,
		SubjectID:        subject.SubjectID,
		SubjectCode:      subject.SubjectCode,
		SubjectName:      subject.SubjectName,
		SubjectCredit:    subject.SubjectCredit,
		MaxInternalMarks: subject.MaxInternalMarks,
		MaxExternalMarks: subject.MaxExternalMarks,
		PassingMarks:     subject.PassingMarks,
	}
}

// NewSubjectResponseSlice maps subject models to responses.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}
	return responses
}

// ResultResponse is a ranked roster with the metadata of its subjects.
type ResultResponse struct {
	Result   []result.RankedRecord `json:"result"`
	Subjects []SubjectResponse     `json:"subjects"`
}

// MarkView is a decoded subject cell for a single student.
type MarkView struct {
	Present          bool   `json:"present"`
	Internal         int    `json:"internal"`
	External         int    `json:"external"`
	Total            int    `json:"total"`
	Grade            string `json:"grade"`
	GradePoint       int    `json:"grade_point"`
	GradeDescription string `json:"grade_description"`
	Credit           int    `json:"credit"`
}

// SemesterResult carries either the student's row for a semester or the
// reason it could not be produced.
type SemesterResult struct {
	Results         result.Record       `json:"results,omitempty"`
	Marks           map[string]MarkView `json:"marks,omitempty"`
	CGPADescription string              `json:"cgpa_description,omitempty"`
	Error           string              `json:"error,omitempty"`
}

// StudentHistoryResponse aggregates a student's rows across every semester.
type StudentHistoryResponse struct {
	StudentID  string                    `json:"student_id"`
	CollegeID  string                    `json:"college_id"`
	DegreeID   string                    `json:"degree_id"`
	BatchYear  int                       `json:"batch_year"`
	DegreeName string                    `json:"degree_name"`
	BranchName string                    `json:"branch_name"`
	Results    map[string]SemesterResult `json:"results"`
	Subjects   []SubjectResponse         `json:"subjects"`
}
