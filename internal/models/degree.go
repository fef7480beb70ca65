package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollegeShifts holds the college codes of the morning and evening shifts.
type CollegeShifts struct {
	M string `json:"M,omitempty"`
	E string `json:"E,omitempty"`
}

// CollegeData describes a college offering a degree.
type CollegeData struct {
	CollegeName       string        `json:"college_name"`
	CollegeID         string        `json:"college_id,omitempty"`
	AvailableSemester []int         `json:"available_semester"`
	Shifts            CollegeShifts `json:"shifts"`
}

// Degree maps a degree+branch for one batch year to its subjects and the
// result file of every published semester.
type Degree struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	DegreeID   string            `gorm:"size:16;not null;index:idx_degree_batch" json:"degree_id"`
	DegreeName string            `gorm:"size:255;not null" json:"degree_name"`
	BranchName string            `gorm:"size:255" json:"branch_name"`
	Colleges   datatypes.JSON    `gorm:"type:json" json:"colleges"`
	Subjects   datatypes.JSONMap `gorm:"type:json" json:"subjects"`
	SemResults datatypes.JSONMap `gorm:"type:json" json:"sem_results"`
	BatchYear  int               `gorm:"not null;index:idx_degree_batch" json:"batch_year"`
	BatchID    string            `gorm:"size:36;index" json:"batch_id"`
	FolderID   string            `gorm:"size:128" json:"folder_id"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (d *Degree) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = newDocumentID()
	}
	return nil
}

// SubjectMap returns subject id -> subject document id.
func (d Degree) SubjectMap() map[string]string {
	return StringMap(d.Subjects)
}

// SemesterResults returns semester label -> result file id.
func (d Degree) SemesterResults() map[string]string {
	return StringMap(d.SemResults)
}

// SetColleges serializes the college list into the JSON column.
func (d *Degree) SetColleges(colleges []CollegeData) {
	data, err := json.Marshal(colleges)
	if err != nil {
		d.Colleges = datatypes.JSON([]byte("[]"))
		return
	}
	d.Colleges = datatypes.JSON(data)
}

// CollegeList deserializes the stored college list.
func (d Degree) CollegeList() []CollegeData {
	if len(d.Colleges) == 0 {
		return nil
	}

	var colleges []CollegeData
	if err := json.Unmarshal(d.Colleges, &colleges); err != nil {
		return nil
	}
	return colleges
}
