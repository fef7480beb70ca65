package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/observability"
	"github.com/noah-isme/resultboard-api/internal/repository"
	"github.com/noah-isme/resultboard-api/internal/result"
)

const defaultSemesterConcurrency = 4

// ResultFileStore reads result files by their opaque id.
type ResultFileStore interface {
	Read(ctx context.Context, fileID string) ([]byte, error)
}

// ResultService ranks rosters and assembles per-student histories.
type ResultService interface {
	FetchResult(ctx context.Context, req dto.ResultRequest) (dto.ResultResponse, error)
	FetchStudentHistory(ctx context.Context, rollNumber string) (dto.StudentHistoryResponse, error)
}

type stage string

const (
	stageFetchingMetadata  stage = "fetching_metadata"
	stageFetchingFile      stage = "fetching_file"
	stageParsing           stage = "parsing"
	stageResolvingSubjects stage = "resolving_subjects"
	stageFiltering         stage = "filtering"
	stageRanking           stage = "ranking"
	stageDone              stage = "done"
)

// pipeline tracks the stage a request is in so failures can report where they happened.
type pipeline struct {
	span    trace.Span
	current stage
}

func (p *pipeline) enter(next stage) {
	if p == nil {
		return
	}
	p.current = next
	p.span.AddEvent(string(next))
}

func (p *pipeline) stage() string {
	if p == nil {
		return ""
	}
	return string(p.current)
}

type resultService struct {
	degrees     repository.DegreeRepository
	resolver    SubjectResolver
	files       ResultFileStore
	validator   *validator.Validate
	decoder     result.MarkDecoder
	concurrency int
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewResultService builds the result engine. Every call works on freshly fetched
// files; nothing is cached between calls.
func NewResultService(degrees repository.DegreeRepository, resolver SubjectResolver, files ResultFileStore, validate *validator.Validate, concurrency int, logger zerolog.Logger) ResultService {
	if concurrency <= 0 {
		concurrency = defaultSemesterConcurrency
	}
	serviceLogger := logger.With().Str("component", "result_service").Logger()
	return &resultService{
		degrees:     degrees,
		resolver:    resolver,
		files:       files,
		validator:   validate,
		decoder:     result.NewMarkDecoder(serviceLogger, observability.MarkDecodeFailures()),
		concurrency: concurrency,
		logger:      serviceLogger,
		tracer:      otel.Tracer("github.com/noah-isme/resultboard-api/internal/service/result"),
	}
}

func (s *resultService) FetchResult(ctx context.Context, req dto.ResultRequest) (dto.ResultResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "results.fetch", trace.WithAttributes(
		attribute.String("result.degree_doc_id", req.DegreeDocID),
		attribute.String("result.college_id", req.CollegeID),
		attribute.Int("result.semester", req.SemesterNum),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.ResultResponse{}, s.fail(span, "fetch_result", nil, start, err)
	}

	p := &pipeline{span: span}
	p.enter(stageFetchingMetadata)
	degree, err := s.degreeByID(ctx, req.DegreeDocID)
	if err != nil {
		return dto.ResultResponse{}, s.fail(span, "fetch_result", p, start, err)
	}

	fileID := strings.TrimSpace(req.ResultFileID)
	if fileID == "" {
		registered, ok := degree.SemesterResults()[strconv.Itoa(req.SemesterNum)]
		if !ok || registered == "" {
			return dto.ResultResponse{}, s.fail(span, "fetch_result", p, start, ErrSemesterResultNotFound)
		}
		fileID = registered
	}
	span.SetAttributes(attribute.String("result.file_id", fileID))

	dataset, err := s.loadDataset(ctx, p, fileID)
	if err != nil {
		return dto.ResultResponse{}, s.fail(span, "fetch_result", p, start, err)
	}

	p.enter(stageResolvingSubjects)
	subjects, err := s.resolver.Resolve(ctx, dataset.SubjectIDs(), degree.SubjectMap())
	if err != nil {
		return dto.ResultResponse{}, s.fail(span, "fetch_result", p, start, err)
	}

	p.enter(stageFiltering)
	rows := dataset.FilterByCollege(req.CollegeID)

	p.enter(stageRanking)
	ranked := result.Rank(rows)

	p.enter(stageDone)
	s.observe("fetch_result", "success", start)
	span.SetStatus(codes.Ok, "ranked")
	s.logger.Debug().
		Str("degree_doc_id", req.DegreeDocID).
		Str("college_id", req.CollegeID).
		Int("semester", req.SemesterNum).
		Int("rows", len(ranked)).
		Int("subjects", len(subjects)).
		Msg("result ranked")

	return dto.ResultResponse{Result: ranked, Subjects: subjects}, nil
}

type semesterOutcome struct {
	label      string
	record     result.Record
	subjectIDs []string
	err        error
}

func (s *resultService) FetchStudentHistory(ctx context.Context, rollNumber string) (dto.StudentHistoryResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "results.student_history")
	defer span.End()

	roll, err := result.ParseRollNumber(rollNumber)
	if err != nil {
		return dto.StudentHistoryResponse{}, s.fail(span, "student_history", nil, start, err)
	}
	span.SetAttributes(
		attribute.String("result.degree_id", roll.DegreeID),
		attribute.Int("result.batch_year", roll.BatchYear),
	)

	degree, err := s.degrees.GetByDegreeAndBatch(ctx, roll.DegreeID, roll.BatchYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrDegreeNotFound
		} else {
			err = metadataError(err)
		}
		return dto.StudentHistoryResponse{}, s.fail(span, "student_history", nil, start, err)
	}

	semesters := degree.SemesterResults()
	if len(semesters) == 0 {
		return dto.StudentHistoryResponse{}, s.fail(span, "student_history", nil, start, ErrNoSemesterResults)
	}

	labels := models.SortedKeys(semesters)
	outcomes := make([]semesterOutcome, len(labels))

	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for i, label := range labels {
		group.Go(func() error {
			outcomes[i] = s.fetchSemester(ctx, label, semesters[label], roll.Raw)
			return nil
		})
	}
	_ = group.Wait()

	subjectSet := make(map[string]struct{})
	for _, outcome := range outcomes {
		for _, id := range outcome.subjectIDs {
			subjectSet[id] = struct{}{}
		}
	}
	subjectIDs := make([]string, 0, len(subjectSet))
	for id := range subjectSet {
		subjectIDs = append(subjectIDs, id)
	}
	sort.Strings(subjectIDs)

	subjects, err := s.resolver.Resolve(ctx, subjectIDs, degree.SubjectMap())
	if err != nil {
		return dto.StudentHistoryResponse{}, s.fail(span, "student_history", nil, start, err)
	}

	results := make(map[string]dto.SemesterResult, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		if outcome.err != nil {
			failed++
			results[outcome.label] = dto.SemesterResult{Error: fmt.Sprintf("Error : %s", outcome.err.Error())}
			continue
		}
		results[outcome.label] = s.semesterResult(outcome.record)
	}

	s.observe("student_history", "success", start)
	span.SetAttributes(attribute.Int("result.semesters", len(outcomes)), attribute.Int("result.semesters_failed", failed))
	span.SetStatus(codes.Ok, "assembled")

	return dto.StudentHistoryResponse{
		StudentID:  roll.Raw,
		CollegeID:  roll.CollegeID,
		DegreeID:   roll.DegreeID,
		BatchYear:  roll.BatchYear,
		DegreeName: degree.DegreeName,
		BranchName: degree.BranchName,
		Results:    results,
		Subjects:   subjects,
	}, nil
}

// fetchSemester never returns an error; a failure is carried in the outcome so
// one bad semester does not hide the others.
func (s *resultService) fetchSemester(ctx context.Context, label, fileID, rollNumber string) semesterOutcome {
	ctx, span := s.tracer.Start(ctx, "results.semester", trace.WithAttributes(
		attribute.String("result.semester", label),
		attribute.String("result.file_id", fileID),
	))
	defer span.End()

	outcome := semesterOutcome{label: label}

	dataset, err := s.loadDataset(ctx, nil, fileID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.logger.Warn().Err(err).Str("semester", label).Str("file_id", fileID).Msg("semester result unavailable")
		outcome.err = err
		return outcome
	}
	outcome.subjectIDs = dataset.SubjectIDs()

	rows, err := result.FindStudent(dataset.Records, rollNumber)
	if err != nil {
		span.SetStatus(codes.Error, "student missing")
		outcome.err = err
		return outcome
	}

	outcome.record = rows[0]
	return outcome
}

func (s *resultService) semesterResult(record result.Record) dto.SemesterResult {
	marks := make(map[string]dto.MarkView)
	for column, cell := range record {
		if !strings.HasPrefix(column, result.SubjectColumnPrefix) {
			continue
		}
		subjectID := strings.TrimPrefix(column, result.SubjectColumnPrefix)
		mark, present := s.decoder.Decode(cell)
		if !present {
			marks[subjectID] = dto.MarkView{Present: false}
			continue
		}
		marks[subjectID] = dto.MarkView{
			Present:          true,
			Internal:         mark.Internal,
			External:         mark.External,
			Total:            mark.Total(),
			Grade:            mark.Grade,
			GradePoint:       result.GradePoint(mark.Grade),
			GradeDescription: result.GradeDescription(mark.Grade),
			Credit:           mark.Credit,
		}
	}

	return dto.SemesterResult{
		Results:         record,
		Marks:           marks,
		CGPADescription: result.CGPADescription(result.ParseCGPA(record.CGPA())),
	}
}

func (s *resultService) degreeByID(ctx context.Context, id string) (models.Degree, error) {
	degree, err := s.degrees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Degree{}, ErrDegreeNotFound
		}
		return models.Degree{}, metadataError(err)
	}
	return degree, nil
}

func (s *resultService) loadDataset(ctx context.Context, p *pipeline, fileID string) (result.Dataset, error) {
	p.enter(stageFetchingFile)
	data, err := s.files.Read(ctx, fileID)
	if err != nil {
		return result.Dataset{}, fileStoreError(err)
	}

	if !isText(data) {
		return result.Dataset{}, fmt.Errorf("%w: detected %s", ErrResultFileFormat, mimetype.Detect(data).String())
	}

	p.enter(stageParsing)
	return result.ParseRecords(bytes.NewReader(data))
}

func isText(data []byte) bool {
	for mime := mimetype.Detect(data); mime != nil; mime = mime.Parent() {
		if mime.Is("text/plain") {
			return true
		}
	}
	return false
}

func (s *resultService) fail(span trace.Span, operation string, p *pipeline, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	outcome := outcomeLabel(err)
	s.observe(operation, outcome, start)

	event := s.logger.Warn()
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		event = s.logger.Error().Str("source", fetchErr.Source)
	}
	event.Err(err).Str("operation", operation).Str("stage", p.stage()).Str("outcome", outcome).Msg("result request failed")

	return err
}

func (s *resultService) observe(operation, outcome string, start time.Time) {
	observability.ResultFetches().WithLabelValues(operation, outcome).Inc()
	observability.ResultFetchDuration().WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcomeLabel(err error) string {
	var fetchErr *FetchError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fetchErr):
		return "fetch_failure"
	case errors.As(err, &validationErrs):
		return "invalid_request"
	case errors.Is(err, result.ErrInvalidRollNumber):
		return "invalid_roll_number"
	case errors.Is(err, ErrDegreeNotFound):
		return "degree_not_found"
	case errors.Is(err, ErrNoSemesterResults), errors.Is(err, ErrSemesterResultNotFound):
		return "no_semester_results"
	case errors.Is(err, result.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, result.ErrMissingColumn), errors.Is(err, result.ErrMalformedResultFile), errors.Is(err, ErrResultFileFormat):
		return "malformed_file"
	default:
		return "error"
	}
}
