package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/repository"
	"github.com/noah-isme/resultboard-api/internal/result"
)

// ErrSeedInvalid indicates a bundle document is missing a field other documents depend on.
var ErrSeedInvalid = errors.New("invalid metadata bundle")

// SeedService loads metadata documents into the store.
type SeedService interface {
	SeedMetadata(ctx context.Context, bundle dto.MetadataBundle) (dto.SeedSummary, error)
}

type seedService struct {
	db          *gorm.DB
	invalidator MetadataInvalidator
	logger      zerolog.Logger
}

// NewSeedService constructs a seeding service. invalidator may be nil.
func NewSeedService(db *gorm.DB, invalidator MetadataInvalidator, logger zerolog.Logger) SeedService {
	return &seedService{
		db:          db,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedMetadata validates the whole bundle, then upserts parents before children
// in a single transaction. Cached metadata for the written documents is dropped
// once the transaction commits.
func (s *seedService) SeedMetadata(ctx context.Context, bundle dto.MetadataBundle) (dto.SeedSummary, error) {
	universities, batches, degrees, subjects, err := normalizeBundle(bundle)
	if err != nil {
		return dto.SeedSummary{}, err
	}

	var summary dto.SeedSummary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if summary.Universities, err = repository.NewUniversityRepository(tx).UpsertBatch(ctx, universities); err != nil {
			return fmt.Errorf("seed universities: %w", err)
		}
		if summary.Batches, err = repository.NewBatchRepository(tx).UpsertBatch(ctx, batches); err != nil {
			return fmt.Errorf("seed batches: %w", err)
		}
		if summary.Subjects, err = repository.NewSubjectRepository(tx).UpsertBatch(ctx, subjects); err != nil {
			return fmt.Errorf("seed subjects: %w", err)
		}
		if summary.Degrees, err = repository.NewDegreeRepository(tx).UpsertBatch(ctx, degrees); err != nil {
			return fmt.Errorf("seed degrees: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.SeedSummary{}, err
	}

	if s.invalidator != nil {
		change := MetadataChange{}
		for _, university := range universities {
			change.UniversityIDs = append(change.UniversityIDs, university.ID)
		}
		for _, batch := range batches {
			change.BatchIDs = append(change.BatchIDs, batch.ID)
		}
		for _, degree := range degrees {
			change.DegreeIDs = append(change.DegreeIDs, degree.ID)
		}
		if err := s.invalidator.InvalidateMetadata(ctx, change); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate metadata cache after seeding")
		}
	}

	s.logger.Info().
		Int64("universities", summary.Universities).
		Int64("batches", summary.Batches).
		Int64("degrees", summary.Degrees).
		Int64("subjects", summary.Subjects).
		Msg("metadata seeded")
	return summary, nil
}

func normalizeBundle(bundle dto.MetadataBundle) ([]models.University, []models.Batch, []models.Degree, []models.Subject, error) {
	universities := make([]models.University, 0, len(bundle.Universities))
	for i, item := range bundle.Universities {
		item.ID = strings.TrimSpace(item.ID)
		item.Name = strings.TrimSpace(item.Name)
		if item.ID == "" || item.Name == "" {
			return nil, nil, nil, nil, fmt.Errorf("%w: university %d needs id and name", ErrSeedInvalid, i)
		}
		universities = append(universities, item)
	}

	batches := make([]models.Batch, 0, len(bundle.Batches))
	for i, item := range bundle.Batches {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || item.UniversityID == "" || item.Batch == 0 {
			return nil, nil, nil, nil, fmt.Errorf("%w: batch %d needs id, university_id and batch", ErrSeedInvalid, i)
		}
		batches = append(batches, item)
	}

	degrees := make([]models.Degree, 0, len(bundle.Degrees))
	for i, item := range bundle.Degrees {
		degree := item.Degree
		degree.ID = strings.TrimSpace(degree.ID)
		degree.DegreeID = strings.TrimSpace(degree.DegreeID)
		if degree.ID == "" || len(degree.DegreeID) != 3 || degree.BatchYear == 0 {
			return nil, nil, nil, nil, fmt.Errorf("%w: degree %d needs id, a 3 digit degree_id and batch_year", ErrSeedInvalid, i)
		}
		if item.CollegeList != nil {
			degree.SetColleges(item.CollegeList)
		}
		degrees = append(degrees, degree)
	}

	subjects := make([]models.Subject, 0, len(bundle.Subjects))
	for i, item := range bundle.Subjects {
		item.ID = strings.TrimSpace(item.ID)
		item.SubjectID = strings.TrimPrefix(strings.TrimSpace(item.SubjectID), result.SubjectColumnPrefix)
		if item.ID == "" || item.SubjectID == "" {
			return nil, nil, nil, nil, fmt.Errorf("%w: subject %d needs id and subject_id", ErrSeedInvalid, i)
		}
		subjects = append(subjects, item)
	}

	return universities, batches, degrees, subjects, nil
}
