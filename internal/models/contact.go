package models

import "time"

// Contact submission states.
const (
	ContactStatusQueued = "queued"
	ContactStatusSent   = "sent"
)

// ContactSubmission stores a message sent through the public contact form.
type ContactSubmission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ReferenceID string     `gorm:"size:64;uniqueIndex" json:"reference_id"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Email       string     `gorm:"size:160;not null" json:"email"`
	Subject     string     `gorm:"size:160" json:"subject"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Source      string     `gorm:"size:64" json:"source"`
	Status      string     `gorm:"size:32;not null" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

// AllModels lists every model managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{&University{}, &Batch{}, &Degree{}, &Subject{}, &ContactSubmission{}}
}
