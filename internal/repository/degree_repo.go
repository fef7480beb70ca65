package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/resultboard-api/internal/models"
)

// DegreeRepository provides access to degree documents.
type DegreeRepository interface {
	GetByID(ctx context.Context, id string) (models.Degree, error)
	GetByDegreeAndBatch(ctx context.Context, degreeID string, batchYear int) (models.Degree, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Degree, error)
	UpsertBatch(ctx context.Context, items []models.Degree) (int64, error)
}

type degreeRepository struct {
	db *gorm.DB
}

// NewDegreeRepository constructs a GORM-backed degree repository.
func NewDegreeRepository(db *gorm.DB) DegreeRepository {
	return &degreeRepository{db: db}
}

func (r *degreeRepository) GetByID(ctx context.Context, id string) (models.Degree, error) {
	var degree models.Degree
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&degree).Error; err != nil {
		return models.Degree{}, err
	}
	return degree, nil
}

func (r *degreeRepository) GetByDegreeAndBatch(ctx context.Context, degreeID string, batchYear int) (models.Degree, error) {
	var degree models.Degree
	err := r.db.WithContext(ctx).
		Where("degree_id = ? AND batch_year = ?", degreeID, batchYear).
		First(&degree).Error
	if err != nil {
		return models.Degree{}, err
	}
	return degree, nil
}

func (r *degreeRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Degree, error) {
	if len(ids) == 0 {
		return []models.Degree{}, nil
	}

	var degrees []models.Degree
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("degree_name ASC, branch_name ASC").Find(&degrees).Error; err != nil {
		return nil, err
	}
	return degrees, nil
}

func (r *degreeRepository) UpsertBatch(ctx context.Context, items []models.Degree) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"degree_id", "degree_name", "branch_name", "colleges", "subjects",
			"sem_results", "batch_year", "batch_id", "folder_id",
		}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}
