package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/resultboard-api/internal/models"
)

// BatchRepository provides access to batch documents.
type BatchRepository interface {
	GetByID(ctx context.Context, id string) (models.Batch, error)
	UpsertBatch(ctx context.Context, items []models.Batch) (int64, error)
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository constructs a GORM-backed batch repository.
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) GetByID(ctx context.Context, id string) (models.Batch, error) {
	var batch models.Batch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return models.Batch{}, err
	}
	return batch, nil
}

func (r *batchRepository) UpsertBatch(ctx context.Context, items []models.Batch) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"batch", "degrees", "university_id", "folder_id"}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}
