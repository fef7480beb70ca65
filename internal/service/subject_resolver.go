package service

import (
	"context"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/repository"
)

// SubjectResolver turns subject ids seen in a result file into subject metadata.
type SubjectResolver interface {
	Resolve(ctx context.Context, subjectIDs []string, degreeSubjects map[string]string) ([]dto.SubjectResponse, error)
}

type subjectResolver struct {
	subjects repository.SubjectRepository
}

// NewSubjectResolver builds a resolver backed by the subject repository.
func NewSubjectResolver(subjects repository.SubjectRepository) SubjectResolver {
	return &subjectResolver{subjects: subjects}
}

// Resolve looks every id up in the degree's subject map and fetches the mapped
// documents in one query. Ids missing from the map are dropped without error.
func (r *subjectResolver) Resolve(ctx context.Context, subjectIDs []string, degreeSubjects map[string]string) ([]dto.SubjectResponse, error) {
	seen := make(map[string]struct{}, len(subjectIDs))
	docIDs := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		docID, ok := degreeSubjects[id]
		if !ok || docID == "" {
			continue
		}
		if _, dup := seen[docID]; dup {
			continue
		}
		seen[docID] = struct{}{}
		docIDs = append(docIDs, docID)
	}

	if len(docIDs) == 0 {
		return []dto.SubjectResponse{}, nil
	}

	subjects, err := r.subjects.ListByIDs(ctx, docIDs)
	if err != nil {
		return nil, metadataError(err)
	}

	return dto.NewSubjectResponseSlice(subjects), nil
}
