package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/authz"
	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Update(ctx context.Context, course *models.Course) error
	SetExaminationMethod(ctx context.Context, id string, method models.ExamKind) error
	ListAssistantIDs(ctx context.Context, courseID string) ([]string, error)
	ReplaceAssistants(ctx context.Context, courseID string, userIDs []string) error
}

type courseUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type courseGroupReader interface {
	FindByLeader(ctx context.Context, leaderID string) (*models.Group, error)
}

// CourseService manages course metadata and the examination method choice.
type CourseService struct {
	repo      courseRepository
	users     courseUserReader
	groups    courseGroupReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, users courseUserReader, groups courseGroupReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, users: users, groups: groups, validator: validate, logger: logger}
}

// List returns courses visible to the caller. Coordinators see only their
// own courses; group leaders see the courses of their group's cohort.
func (s *CourseService) List(ctx context.Context, claims *models.JWTClaims, query dto.CourseListQuery) ([]models.CourseDetail, error) {
	if !authz.IsPermitted(claims.Role, authz.ActionViewCourses) {
		return nil, appErrors.ErrForbidden
	}

	filter := models.CourseFilter{
		Specialization: query.Specialization,
		StudyYear:      query.StudyYear,
	}
	switch claims.Role {
	case models.RoleCoordinator:
		filter.CoordinatorID = claims.UserID
	case models.RoleGroupLeader:
		group, err := s.groups.FindByLeader(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []models.CourseDetail{}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve group")
		}
		if group.Specialization != nil {
			filter.Specialization = *group.Specialization
		}
		if group.StudyYear != nil {
			filter.StudyYear = group.StudyYear
		}
	}

	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course with its coordinator name and assistant roster.
func (s *CourseService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.CourseDetail, error) {
	if !authz.IsPermitted(claims.Role, authz.ActionViewCourses) {
		return nil, appErrors.ErrForbidden
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	assistants, err := s.repo.ListAssistantIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course assistants")
	}
	detail.AssistantIDs = assistants
	return detail, nil
}

// SetExaminationMethod records EXAM or COLLOQUIUM for a course. Coordinators
// may only set it on their own courses; the secretariat on any.
func (s *CourseService) SetExaminationMethod(ctx context.Context, claims *models.JWTClaims, id string, req dto.SetExaminationMethodRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid examination method payload")
	}
	if !authz.IsPermitted(claims.Role, authz.ActionSetExaminationMethod) {
		return nil, appErrors.ErrForbidden
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if claims.Role == models.RoleCoordinator && course.CoordinatorID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course coordinator can set the examination method")
	}

	method := models.ExamKind(req.Method)
	if err := s.repo.SetExaminationMethod(ctx, id, method); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set examination method")
	}
	course.ExaminationMethod = &method
	return course, nil
}

// Update amends course metadata and the assistant roster.
func (s *CourseService) Update(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !authz.IsPermitted(claims.Role, authz.ActionEditCourse) {
		return nil, appErrors.ErrForbidden
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.StudyYear != nil {
		course.StudyYear = req.StudyYear
	}
	if req.Specialization != nil {
		course.Specialization = req.Specialization
	}
	if req.CoordinatorID != nil {
		coordinator, err := s.users.FindByID(ctx, *req.CoordinatorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "coordinator not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coordinator")
		}
		if coordinator.Role != models.RoleCoordinator {
			return nil, appErrors.Clone(appErrors.ErrValidation, "the assigned user is not a coordinator")
		}
		course.CoordinatorID = coordinator.ID
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	if req.AssistantIDs != nil {
		if err := s.repo.ReplaceAssistants(ctx, id, req.AssistantIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course assistants")
		}
	}

	return course, nil
}
