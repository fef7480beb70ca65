package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/repository"
	"github.com/noah-isme/resultboard-api/internal/result"
)

const semesterOneCSV = `roll_num,name,college_id,total_marks_scored,max_marks_possible,cgpa,sub_101,sub_102,sub_999
00115602722,Asha,156,540,600,9.1,"[65, 24, 'A', 8]","[70, 25, 'O', 4]",
00215602722,Bilal,156,530,600,9.5,"[60, 20, 'B', 8]",,"[50, 20, 'P', 2]"
00316402722,Chen,164,560,600,9.5,"[75, 25, 'O', 8]",garbage,
`

const semesterThreeCSV = `roll_num,name,college_id,total_marks_scored,max_marks_possible,cgpa,sub_103
00215602722,Bilal,156,500,600,8.0,"[40, 30, 'A', 4]"
`

type resultFixture struct {
	svc    ResultService
	db     *gorm.DB
	files  *fileStoreStub
	degree models.Degree
}

func newResultFixture(t *testing.T) resultFixture {
	t.Helper()
	db := setupServiceTestDB(t)

	subjects := []models.Subject{
		{ID: "subj-101", SubjectID: "101", SubjectCode: "ES101", SubjectName: "Maths", SubjectCredit: 8, UniversityID: "uni-1"},
		{ID: "subj-102", SubjectID: "102", SubjectCode: "ES102", SubjectName: "Physics", SubjectCredit: 4, UniversityID: "uni-1"},
		{ID: "subj-103", SubjectID: "103", SubjectCode: "ES103", SubjectName: "Chemistry", SubjectCredit: 4, UniversityID: "uni-1"},
	}
	require.NoError(t, db.Create(&subjects).Error)

	degree := models.Degree{
		ID:         "deg-1",
		DegreeID:   "027",
		DegreeName: "B.Tech",
		BranchName: "Computer Science",
		Subjects:   models.JSONMapFromStrings(map[string]string{"101": "subj-101", "102": "subj-102", "103": "subj-103"}),
		SemResults: models.JSONMapFromStrings(map[string]string{"1": "file-1", "2": "file-2", "3": "file-3"}),
		BatchYear:  2022,
	}
	require.NoError(t, db.Create(&degree).Error)

	files := newFileStoreStub()
	files.put("file-1", semesterOneCSV)
	files.put("file-3", semesterThreeCSV)
	files.errs["file-2"] = errors.New("drive quota exceeded")

	resolver := NewSubjectResolver(repository.NewSubjectRepository(db))
	svc := NewResultService(repository.NewDegreeRepository(db), resolver, files, validator.New(), 2, testLogger())

	return resultFixture{svc: svc, db: db, files: files, degree: degree}
}

func TestResultServiceFetchResultRanksWholeFile(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchResult(context.Background(), dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 1})
	require.NoError(t, err)
	require.Len(t, resp.Result, 3)

	require.Equal(t, "00215602722", resp.Result[0].Record.RollNum())
	require.Equal(t, "00316402722", resp.Result[1].Record.RollNum())
	require.Equal(t, "00115602722", resp.Result[2].Record.RollNum())
	require.Equal(t, []int{1, 1, 3}, []int{resp.Result[0].Rank, resp.Result[1].Rank, resp.Result[2].Rank})

	require.Len(t, resp.Subjects, 2, "sub_999 is not mapped by the degree")
	require.Equal(t, "101", resp.Subjects[0].SubjectID)
	require.Equal(t, "102", resp.Subjects[1].SubjectID)
	require.Equal(t, []string{"file-1"}, fx.files.reads)
}

func TestResultServiceFetchResultFiltersCollege(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchResult(context.Background(), dto.ResultRequest{CollegeID: "156", DegreeDocID: "deg-1", SemesterNum: 1})
	require.NoError(t, err)
	require.Len(t, resp.Result, 2)
	for _, row := range resp.Result {
		require.Equal(t, "156", row.Record.CollegeID())
	}
	require.Equal(t, 1, resp.Result[0].Rank)
	require.Equal(t, 2, resp.Result[1].Rank)

	resp, err = fx.svc.FetchResult(context.Background(), dto.ResultRequest{CollegeID: "999", DegreeDocID: "deg-1", SemesterNum: 1})
	require.NoError(t, err)
	require.Empty(t, resp.Result)
	require.NotNil(t, resp.Result)
}

func TestResultServiceFetchResultExplicitFile(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchResult(context.Background(), dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 5, ResultFileID: "file-3"})
	require.NoError(t, err)
	require.Len(t, resp.Result, 1)
	require.Equal(t, "103", resp.Subjects[0].SubjectID)
}

func TestResultServiceFetchResultErrors(t *testing.T) {
	fx := newResultFixture(t)
	ctx := context.Background()

	_, err := fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "missing", SemesterNum: 1})
	require.ErrorIs(t, err, ErrDegreeNotFound)

	_, err = fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 7})
	require.ErrorIs(t, err, ErrSemesterResultNotFound)

	_, err = fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "deg-1"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 2})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, SourceFileStore, fetchErr.Source)
	require.Equal(t, "drive quota exceeded", err.Error())

	fx.files.put("empty", "roll_num,name,college_id,total_marks_scored,max_marks_possible,cgpa\n")
	_, err = fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 1, ResultFileID: "empty"})
	require.ErrorIs(t, err, result.ErrEmptyDataset)

	fx.files.put("image", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	_, err = fx.svc.FetchResult(ctx, dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 1, ResultFileID: "image"})
	require.ErrorIs(t, err, ErrResultFileFormat)
}

func TestResultServiceReportsMetadataStoreFailures(t *testing.T) {
	t.Run("degrees unavailable", func(t *testing.T) {
		fx := newResultFixture(t)
		require.NoError(t, fx.db.Migrator().DropTable(&models.Degree{}))

		_, err := fx.svc.FetchResult(context.Background(), dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 1})
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		require.Equal(t, SourceMetadataStore, fetchErr.Source)
		require.NotErrorIs(t, err, ErrDegreeNotFound)

		_, err = fx.svc.FetchStudentHistory(context.Background(), "00215602722")
		fetchErr = nil
		require.ErrorAs(t, err, &fetchErr)
		require.Equal(t, SourceMetadataStore, fetchErr.Source)
		require.NotErrorIs(t, err, ErrDegreeNotFound)
	})

	t.Run("subjects unavailable", func(t *testing.T) {
		fx := newResultFixture(t)
		require.NoError(t, fx.db.Migrator().DropTable(&models.Subject{}))

		_, err := fx.svc.FetchResult(context.Background(), dto.ResultRequest{DegreeDocID: "deg-1", SemesterNum: 1})
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		require.Equal(t, SourceMetadataStore, fetchErr.Source)

		_, err = fx.svc.FetchStudentHistory(context.Background(), "00215602722")
		fetchErr = nil
		require.ErrorAs(t, err, &fetchErr)
		require.Equal(t, SourceMetadataStore, fetchErr.Source)
	})
}

func TestResultServiceStudentHistory(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchStudentHistory(context.Background(), "00215602722")
	require.NoError(t, err)

	require.Equal(t, "00215602722", resp.StudentID)
	require.Equal(t, "156", resp.CollegeID)
	require.Equal(t, "027", resp.DegreeID)
	require.Equal(t, 2022, resp.BatchYear)
	require.Equal(t, "B.Tech", resp.DegreeName)
	require.Len(t, resp.Results, 3)

	first := resp.Results["1"]
	require.Empty(t, first.Error)
	require.Equal(t, "Bilal", first.Results[result.ColumnName])
	require.Equal(t, "Outstanding", first.CGPADescription)
	require.True(t, first.Marks["101"].Present)
	require.Equal(t, 80, first.Marks["101"].Total)
	require.Equal(t, 6, first.Marks["101"].GradePoint)
	require.False(t, first.Marks["102"].Present)
	require.Equal(t, "Pass", first.Marks["999"].GradeDescription)

	require.Equal(t, "Error : drive quota exceeded", resp.Results["2"].Error)
	require.Nil(t, resp.Results["2"].Results)

	third := resp.Results["3"]
	require.Empty(t, third.Error)
	require.Equal(t, "Very Good", third.CGPADescription)

	var ids []string
	for _, subject := range resp.Subjects {
		ids = append(ids, subject.SubjectID)
	}
	require.Equal(t, []string{"101", "102", "103"}, ids)
}

func TestResultServiceStudentHistoryMissingRow(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchStudentHistory(context.Background(), "00115602722")
	require.NoError(t, err)
	require.Empty(t, resp.Results["1"].Error)
	require.Equal(t, "Error : "+result.ErrStudentNotFound.Error(), resp.Results["3"].Error)
}

func TestResultServiceStudentHistoryMarksMalformedCell(t *testing.T) {
	fx := newResultFixture(t)

	resp, err := fx.svc.FetchStudentHistory(context.Background(), "00316402722")
	require.NoError(t, err)
	mark := resp.Results["1"].Marks["102"]
	require.True(t, mark.Present)
	require.Equal(t, "N/A", mark.Grade)
	require.Equal(t, 0, mark.Total)
}

func TestResultServiceStudentHistoryUnparsableCGPA(t *testing.T) {
	fx := newResultFixture(t)
	fx.files.put("file-1", "roll_num,name,college_id,total_marks_scored,max_marks_possible,cgpa\n00215602722,Bilal,156,0,600,absent\n")

	resp, err := fx.svc.FetchStudentHistory(context.Background(), "00215602722")
	require.NoError(t, err)
	require.Empty(t, resp.Results["1"].Error)
	require.Equal(t, "N/A", resp.Results["1"].CGPADescription)
	require.Equal(t, "Very Good", resp.Results["3"].CGPADescription)
}

func TestResultServiceStudentHistoryErrors(t *testing.T) {
	fx := newResultFixture(t)
	ctx := context.Background()

	_, err := fx.svc.FetchStudentHistory(ctx, "0021560272")
	require.ErrorIs(t, err, result.ErrInvalidRollNumber)

	_, err = fx.svc.FetchStudentHistory(ctx, "00215603122")
	require.ErrorIs(t, err, ErrDegreeNotFound)
}

func TestResultServiceStudentHistoryNoSemesters(t *testing.T) {
	db := setupServiceTestDB(t)
	require.NoError(t, db.Create(&models.Degree{ID: "deg-x", DegreeID: "044", DegreeName: "BBA", BatchYear: 2021}).Error)

	svc := NewResultService(repository.NewDegreeRepository(db), NewSubjectResolver(repository.NewSubjectRepository(db)), newFileStoreStub(), validator.New(), 0, testLogger())
	_, err := svc.FetchStudentHistory(context.Background(), "00115604421")
	require.ErrorIs(t, err, ErrNoSemesterResults)
}
