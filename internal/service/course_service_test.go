package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type courseStoreStub struct {
	courses    map[string]*models.Course
	lastFilter models.CourseFilter
	updateErr  error
	created    int
}

func newCourseStoreStub() *courseStoreStub {
	return &courseStoreStub{courses: map[string]*models.Course{}}
}

func (s *courseStoreStub) Create(_ context.Context, course *models.Course) error {
	s.created++
	course.ID = "course-new"
	course.Version = 1
	stored := *course
	s.courses[course.ID] = &stored
	return nil
}

func (s *courseStoreStub) GetByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (s *courseStoreStub) LoadChildren(_ context.Context, _ *models.Course) error {
	return nil
}

func (s *courseStoreStub) List(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *courseStoreStub) UpdateDraft(_ context.Context, course *models.Course, expectedVersion int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	course.Version = expectedVersion + 1
	stored := *course
	s.courses[course.ID] = &stored
	return nil
}

func validCourseRequest() dto.CourseRequest {
	return dto.CourseRequest{
		SubjectCode:  "MATH",
		CourseNumber: "227",
		Title:        "Statistics",
		Units:        decimal.NewNullDecimal(decimal.NewFromInt(4)),
		LectureHours: decimal.NewNullDecimal(decimal.NewFromInt(72)),
		DepartmentID: "dept-math",
		Outcomes: []dto.OutcomeRequest{
			{Text: "Apply hypothesis tests", BloomLevel: string(models.BloomApply)},
		},
		Requisites: []dto.RequisiteRequest{
			{Type: string(models.RequisitePrerequisite)},
		},
	}
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newCourseStoreStub()
	audit := &auditLogStub{}
	svc := NewCourseService(repo, audit, nil, nil)
	actor := &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}

	course, err := svc.Create(context.Background(), actor, validCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, course.Status)
	assert.Equal(t, "author", course.CreatedBy)
	require.Len(t, course.Outcomes, 1)
	assert.Equal(t, 1, course.Outcomes[0].Sequence)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionCourseCreate, audit.entries[0].Action)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc := NewCourseService(newCourseStoreStub(), nil, nil, nil)
	actor := &models.JWTClaims{UserID: "author"}

	req := validCourseRequest()
	req.Outcomes[0].BloomLevel = "Memorize"
	_, err := svc.Create(context.Background(), actor, req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validCourseRequest()
	req.LabHours = decimal.NewNullDecimal(decimal.NewFromInt(-1))
	_, err = svc.Create(context.Background(), actor, req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validCourseRequest()
	req.Requisites[0].Type = "Suggestion"
	_, err = svc.Create(context.Background(), actor, req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	svc := NewCourseService(newCourseStoreStub(), nil, nil, nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceListMine(t *testing.T) {
	repo := newCourseStoreStub()
	svc := NewCourseService(repo, nil, nil, nil)

	courses, err := svc.List(context.Background(), &models.JWTClaims{UserID: "author"}, dto.CourseQuery{
		DepartmentID: "dept-math",
		Status:       []string{"Draft", "DeptReview"},
		Mine:         true,
	})
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Equal(t, "author", repo.lastFilter.CreatedBy)
	assert.Equal(t, []models.RecordStatus{models.StatusDraft, models.StatusDeptReview}, repo.lastFilter.Status)
}

func TestCourseServiceUpdate(t *testing.T) {
	repo := newCourseStoreStub()
	repo.courses["c1"] = &models.Course{ID: "c1", Status: models.StatusDraft, Version: 2, CreatedBy: "author", DepartmentID: "dept-math"}
	audit := &auditLogStub{}
	svc := NewCourseService(repo, audit, nil, nil)

	req := validCourseRequest()
	req.Version = 2
	updated, err := svc.Update(context.Background(), &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}, "c1", req)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Version)
	assert.Equal(t, "author", updated.CreatedBy)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionCourseUpdate, audit.entries[0].Action)
	assert.NotEmpty(t, audit.entries[0].OldValues)
}

func TestCourseServiceUpdateKeepsDepartment(t *testing.T) {
	repo := newCourseStoreStub()
	repo.courses["c1"] = &models.Course{ID: "c1", Status: models.StatusDraft, Version: 2, CreatedBy: "author", DepartmentID: "dept-math"}
	svc := NewCourseService(repo, nil, nil, nil)

	req := validCourseRequest()
	req.DepartmentID = "dept-art"
	_, err := svc.Update(context.Background(), &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}, "c1", req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "dept-math", repo.courses["c1"].DepartmentID)
	assert.Equal(t, 2, repo.courses["c1"].Version)

	updated, err := svc.Update(context.Background(), &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}, "c1", validCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, repo.courses["c1"].DepartmentID, updated.DepartmentID)
}

func TestCourseServiceUpdateGuards(t *testing.T) {
	repo := newCourseStoreStub()
	repo.courses["draft"] = &models.Course{ID: "draft", Status: models.StatusDraft, Version: 2, CreatedBy: "author", DepartmentID: "dept-math"}
	repo.courses["review"] = &models.Course{ID: "review", Status: models.StatusDeptReview, Version: 4, CreatedBy: "author", DepartmentID: "dept-math"}
	svc := NewCourseService(repo, nil, nil, nil)
	author := &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}

	_, err := svc.Update(context.Background(), &models.JWTClaims{UserID: "other", Role: models.RoleFaculty}, "draft", validCourseRequest())
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}, "draft", validCourseRequest())
	assert.NoError(t, err)

	_, err = svc.Update(context.Background(), author, "review", validCourseRequest())
	assert.Equal(t, appErrors.ErrRecordLocked.Code, appErrors.FromError(err).Code)

	stale := validCourseRequest()
	stale.Version = 1
	_, err = svc.Update(context.Background(), author, "draft", stale)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	repo.updateErr = sql.ErrNoRows
	_, err = svc.Update(context.Background(), author, "draft", validCourseRequest())
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
