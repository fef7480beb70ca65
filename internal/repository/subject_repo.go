package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/resultboard-api/internal/models"
)

// SubjectRepository provides access to subject documents.
type SubjectRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
	UpsertBatch(ctx context.Context, items []models.Subject) (int64, error)
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs a GORM-backed subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

// ListByIDs fetches every subject whose document id is in ids with one query.
func (r *subjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return []models.Subject{}, nil
	}

	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("subject_id ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) UpsertBatch(ctx context.Context, items []models.Subject) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject_id", "subject_code", "subject_name", "subject_credit",
			"max_internal_marks", "max_external_marks", "passing_marks", "university_id", "folder_id",
		}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}
