package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

var courseRowColumns = []string{"id", "subject_code", "course_number", "title", "description", "units", "lecture_hours", "lab_hours", "outside_hours",
	"cb_codes", "cid_number", "status", "version", "created_by", "department_id", "created_at", "updated_at"}

func sampleCourse() *models.Course {
	return &models.Course{
		SubjectCode:  "PSYCH",
		CourseNumber: "001",
		Title:        "General Psychology",
		Description:  "Survey of psychology.",
		Units:        decimal.NewNullDecimal(decimal.NewFromInt(3)),
		LectureHours: decimal.NewNullDecimal(decimal.NewFromInt(3)),
		Codes:        models.ClassificationCodes{models.CodeCreditStatus: "D"},
		CreatedBy:    "faculty-1",
		DepartmentID: "dept-1",
		Outcomes: []models.LearningOutcome{
			{Text: "Analyze research designs.", BloomLevel: models.BloomAnalyze},
		},
		Content: []models.ContentItem{
			{Topic: "Methods", HoursAllocated: decimal.NewNullDecimal(decimal.NewFromInt(18))},
		},
	}
}

func TestCourseRepositoryCreateWritesChildren(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_outcomes")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_content")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	course := sampleCourse()
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.StatusDraft, course.Status)
	assert.Equal(t, 1, course.Version)
	assert.Equal(t, course.ID, course.Outcomes[0].CourseID)
	assert.Equal(t, 1, course.Outcomes[0].Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateRollsBackOnChildFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_outcomes")).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleCourse())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryGetAndLoadChildren(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows(courseRowColumns).
			AddRow("course-1", "PSYCH", "001", "General Psychology", "Survey", "3.00", "3", "0", nil,
				`{"cb04":"D","CB05":"A"}`, "PSY 110", "DeptReview", 2, "faculty-1", "dept-1", now, now))

	course, err := repo.GetByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.True(t, course.Units.Valid)
	assert.True(t, course.Units.Decimal.Equal(decimal.NewFromInt(3)))
	assert.False(t, course.OutsideHours.Valid)
	credit, ok := course.Codes.Get(models.CodeCreditStatus)
	require.True(t, ok)
	assert.Equal(t, "D", credit)
	assert.Equal(t, models.StatusDeptReview, course.Status)

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_outcomes WHERE course_id = $1 ORDER BY sequence")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "sequence", "outcome_text", "bloom_level"}).
			AddRow("o1", "course-1", 1, "Analyze designs.", "ANALYZE"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_content WHERE course_id = $1 ORDER BY sequence")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "sequence", "topic", "hours_allocated"}).
			AddRow("c1", "course-1", 1, "Methods", "18"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_requisites WHERE course_id = $1 ORDER BY sequence")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "sequence", "requisite_type", "requisite_course_id", "content_review"}).
			AddRow("r-ffff", "course-1", 1, "ADVISORY", nil, nil).
			AddRow("r-0000", "course-1", 2, "PREREQUISITE", "course-9", "Content review on file."))

	require.NoError(t, repo.LoadChildren(context.Background(), course))
	require.Len(t, course.Outcomes, 1)
	assert.Equal(t, models.BloomAnalyze, course.Outcomes[0].BloomLevel)
	require.Len(t, course.Content, 1)
	require.Len(t, course.Requisites, 2)
	assert.Equal(t, models.RequisiteAdvisory, course.Requisites[0].Type)
	assert.Equal(t, 2, course.Requisites[1].Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE department_id = $1 AND status IN ($2,$3) ORDER BY updated_at DESC LIMIT 50 OFFSET 0")).
		WithArgs("dept-1", "Draft", "DeptReview").
		WillReturnRows(sqlmock.NewRows(courseRowColumns))

	list, err := repo.List(context.Background(), models.CourseFilter{
		DepartmentID: "dept-1",
		Status:       []models.RecordStatus{models.StatusDraft, models.StatusDeptReview},
	})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListKeyset(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE department_id = $1 ORDER BY id LIMIT 200")).
		WithArgs("dept-1").
		WillReturnRows(sqlmock.NewRows(courseRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE department_id = $1 AND id > $2 ORDER BY id LIMIT 200")).
		WithArgs("dept-1", "c199").
		WillReturnRows(sqlmock.NewRows(courseRowColumns))

	_, err := repo.List(context.Background(), models.CourseFilter{DepartmentID: "dept-1", Limit: 200, ByID: true, Offset: 40})
	require.NoError(t, err)
	_, err = repo.List(context.Background(), models.CourseFilter{DepartmentID: "dept-1", Limit: 200, ByID: true, AfterID: "c199"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateDraftVersionGuard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	course := sampleCourse()
	course.ID = "course-1"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateDraft(context.Background(), course, 3)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_outcomes")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_content")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_requisites")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_outcomes")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_content")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateDraft(context.Background(), course, 3))
	assert.Equal(t, 4, course.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryRequisitesKeepEntryOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	course := sampleCourse()
	course.ID = "course-1"
	course.Outcomes = nil
	course.Content = nil
	course.Requisites = []models.Requisite{
		{Type: models.RequisiteAdvisory},
		{Type: models.RequisitePrerequisite},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_outcomes")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_content")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_requisites")).WithArgs("course-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_requisites (id, course_id, sequence,")).
		WithArgs(sqlmock.AnyArg(), "course-1", 1, "ADVISORY", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_requisites (id, course_id, sequence,")).
		WithArgs(sqlmock.AnyArg(), "course-1", 2, "PREREQUISITE", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateDraft(context.Background(), course, 1))
	assert.Equal(t, 1, course.Requisites[0].Sequence)
	assert.Equal(t, 2, course.Requisites[1].Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}
