package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/resultboard-api/internal/models"
)

// UniversityRepository provides access to university documents.
type UniversityRepository interface {
	GetByID(ctx context.Context, id string) (models.University, error)
	GetByName(ctx context.Context, name string) (models.University, error)
	List(ctx context.Context) ([]models.University, error)
	UpsertBatch(ctx context.Context, items []models.University) (int64, error)
}

type universityRepository struct {
	db *gorm.DB
}

// NewUniversityRepository constructs a GORM-backed university repository.
func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

func (r *universityRepository) GetByID(ctx context.Context, id string) (models.University, error) {
	var university models.University
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&university).Error; err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *universityRepository) GetByName(ctx context.Context, name string) (models.University, error) {
	var university models.University
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&university).Error; err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *universityRepository) List(ctx context.Context) ([]models.University, error) {
	var universities []models.University
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&universities).Error; err != nil {
		return nil, err
	}
	return universities, nil
}

func (r *universityRepository) UpsertBatch(ctx context.Context, items []models.University) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "short_name", "batches", "folder_id"}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}
