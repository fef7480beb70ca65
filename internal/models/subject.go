package models

import "gorm.io/gorm"

// Subject holds the pedagogic metadata of a subject. Degrees reference it by id.
type Subject struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	SubjectID        string `gorm:"size:32;not null;index" json:"subject_id"`
	SubjectCode      string `gorm:"size:32;not null" json:"subject_code"`
	SubjectName      string `gorm:"size:255" json:"subject_name"`
	SubjectCredit    int    `gorm:"not null" json:"subject_credit"`
	MaxInternalMarks int    `gorm:"not null" json:"max_internal_marks"`
	MaxExternalMarks int    `gorm:"not null" json:"max_external_marks"`
	PassingMarks     int    `gorm:"not null" json:"passing_marks"`
	UniversityID     string `gorm:"size:36;index;not null" json:"university_id"`
	FolderID         string `gorm:"size:128" json:"folder_id"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newDocumentID()
	}
	return nil
}
