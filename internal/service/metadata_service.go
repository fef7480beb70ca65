package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/repository"
)

// MetadataService serves the university, batch and degree documents used to
// navigate to a result.
type MetadataService interface {
	GetUniversity(ctx context.Context, id, name string) (dto.UniversityResponse, error)
	ListUniversities(ctx context.Context) ([]dto.UniversityResponse, error)
	ListBatchDegrees(ctx context.Context, batchID string) ([]dto.DegreeGroup, error)
	GetDegree(ctx context.Context, id string) (dto.DegreeResponse, error)
	MetadataInvalidator
}

// MetadataInvalidator drops cached metadata after the underlying documents change.
type MetadataInvalidator interface {
	InvalidateMetadata(ctx context.Context, change MetadataChange) error
}

// MetadataChange lists the documents written by a single update.
type MetadataChange struct {
	UniversityIDs []string
	BatchIDs      []string
	DegreeIDs     []string
}

const (
	cacheKeyUniversityByID   = "metadata:university:id:"
	cacheKeyUniversityByName = "metadata:university:name:"
	cacheKeyUniversities     = "metadata:universities"
	cacheKeyBatch            = "metadata:batch:"
	cacheKeyDegree           = "metadata:degree:"
)

type metadataService struct {
	universities repository.UniversityRepository
	batches      repository.BatchRepository
	degrees      repository.DegreeRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewMetadataService builds the metadata reader. cache may be nil.
func NewMetadataService(universities repository.UniversityRepository, batches repository.BatchRepository, degrees repository.DegreeRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MetadataService {
	return &metadataService{
		universities: universities,
		batches:      batches,
		degrees:      degrees,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "metadata_service").Logger(),
	}
}

func (s *metadataService) GetUniversity(ctx context.Context, id, name string) (dto.UniversityResponse, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if (id == "") == (name == "") {
		return dto.UniversityResponse{}, ErrInvalidUniversityQuery
	}

	cacheKey := cacheKeyUniversityByID + id
	if id == "" {
		cacheKey = cacheKeyUniversityByName + strings.ToLower(name)
	}

	var response dto.UniversityResponse
	if s.readCache(ctx, cacheKey, &response) {
		return response, nil
	}

	var (
		university models.University
		err        error
	)
	if id != "" {
		university, err = s.universities.GetByID(ctx, id)
	} else {
		university, err = s.universities.GetByName(ctx, name)
	}
	if err != nil {
		return dto.UniversityResponse{}, translateLookupError(err, ErrUniversityNotFound)
	}

	response = dto.NewUniversityResponse(university)
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *metadataService) ListUniversities(ctx context.Context) ([]dto.UniversityResponse, error) {
	const cacheKey = cacheKeyUniversities

	var responses []dto.UniversityResponse
	if s.readCache(ctx, cacheKey, &responses) {
		return responses, nil
	}

	universities, err := s.universities.List(ctx)
	if err != nil {
		return nil, metadataError(err)
	}

	responses = make([]dto.UniversityResponse, 0, len(universities))
	for _, university := range universities {
		responses = append(responses, dto.NewUniversityResponse(university))
	}
	s.writeCache(ctx, cacheKey, responses)
	return responses, nil
}

// ListBatchDegrees groups the degrees of a batch by degree name. Groups keep the
// order of first appearance of each name.
func (s *metadataService) ListBatchDegrees(ctx context.Context, batchID string) ([]dto.DegreeGroup, error) {
	cacheKey := cacheKeyBatch + batchID

	var groups []dto.DegreeGroup
	if s.readCache(ctx, cacheKey, &groups) {
		return groups, nil
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, translateLookupError(err, ErrBatchNotFound)
	}

	degrees, err := s.degrees.ListByIDs(ctx, batch.DegreeDocIDs())
	if err != nil {
		return nil, metadataError(err)
	}

	groups = make([]dto.DegreeGroup, 0)
	index := make(map[string]int)
	for _, degree := range degrees {
		branch := map[string][]string{degree.BranchName: {degree.DegreeID, degree.ID}}
		pos, ok := index[degree.DegreeName]
		if !ok {
			index[degree.DegreeName] = len(groups)
			groups = append(groups, dto.DegreeGroup{DegreeName: degree.DegreeName, Branches: []map[string][]string{branch}})
			continue
		}
		groups[pos].Branches = append(groups[pos].Branches, branch)
	}

	s.writeCache(ctx, cacheKey, groups)
	return groups, nil
}

func (s *metadataService) GetDegree(ctx context.Context, id string) (dto.DegreeResponse, error) {
	cacheKey := cacheKeyDegree + id

	var response dto.DegreeResponse
	if s.readCache(ctx, cacheKey, &response) {
		return response, nil
	}

	degree, err := s.degrees.GetByID(ctx, id)
	if err != nil {
		return dto.DegreeResponse{}, translateLookupError(err, ErrDegreeNotFound)
	}

	response = dto.NewDegreeResponse(degree)
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// InvalidateMetadata deletes every cached lookup that may embed a changed
// document. University names and batch groupings are not keyed by document id,
// so those entries are matched by prefix.
func (s *metadataService) InvalidateMetadata(ctx context.Context, change MetadataChange) error {
	if s.cache == nil {
		return nil
	}

	keys := make([]string, 0, len(change.UniversityIDs)+len(change.BatchIDs)+len(change.DegreeIDs)+1)
	for _, id := range change.UniversityIDs {
		keys = append(keys, cacheKeyUniversityByID+id)
	}
	for _, id := range change.BatchIDs {
		keys = append(keys, cacheKeyBatch+id)
	}
	for _, id := range change.DegreeIDs {
		keys = append(keys, cacheKeyDegree+id)
	}

	var prefixes []string
	if len(change.UniversityIDs) > 0 {
		keys = append(keys, cacheKeyUniversities)
		prefixes = append(prefixes, cacheKeyUniversityByName)
	}
	if len(change.DegreeIDs) > 0 {
		prefixes = append(prefixes, cacheKeyBatch)
	}
	for _, prefix := range prefixes {
		iter := s.cache.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan metadata cache: %w", err)
		}
	}

	if len(keys) == 0 {
		return nil
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete metadata cache: %w", err)
	}
	s.logger.Debug().Int("keys", len(keys)).Msg("metadata cache invalidated")
	return nil
}

func (s *metadataService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read metadata cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable metadata cache entry")
		return false
	}

	s.logger.Debug().Str("key", key).Msg("metadata cache hit")
	return true
}

func (s *metadataService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store metadata cache")
	}
}

func translateLookupError(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return metadataError(err)
}
