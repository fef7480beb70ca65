package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// University is the root of the metadata tree.
type University struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	Name      string            `gorm:"size:255;uniqueIndex;not null" json:"name"`
	ShortName string            `gorm:"size:64;not null" json:"short_name"`
	Batches   datatypes.JSONMap `gorm:"type:json" json:"batches"`
	FolderID  string            `gorm:"size:128" json:"folder_id"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (u *University) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newDocumentID()
	}
	return nil
}

// Batch groups the degrees admitted in one year at a university.
type Batch struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	Batch        int               `gorm:"not null;index" json:"batch"`
	Degrees      datatypes.JSONMap `gorm:"type:json" json:"degrees"`
	UniversityID string            `gorm:"size:36;index;not null" json:"university_id"`
	FolderID     string            `gorm:"size:128" json:"folder_id"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = newDocumentID()
	}
	return nil
}

// DegreeDocIDs returns the degree document ids registered for the batch.
func (b Batch) DegreeDocIDs() []string {
	degrees := StringMap(b.Degrees)
	ids := make([]string, 0, len(degrees))
	for _, key := range SortedKeys(degrees) {
		ids = append(ids, degrees[key])
	}
	return ids
}
