package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByTeacherID(ctx context.Context, teacherID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type userGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
}

const professorsCacheKey = "professors:list"

// UserService manages user accounts and the professor roster.
type UserService struct {
	repo      userRepository
	groups    userGroupRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, groups userGroupRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, groups: groups, cache: cache, validator: validate, logger: logger}
}

// List returns users matching the filter with pagination info.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListProfessors returns coordinator accounts, served from cache when
// possible. This is the professor roster used to populate review forms.
func (s *UserService) ListProfessors(ctx context.Context) ([]models.User, bool, error) {
	var cached []models.User
	if hit, err := s.cache.Get(ctx, professorsCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	role := models.RoleCoordinator
	active := true
	professors, _, err := s.repo.List(ctx, models.UserFilter{Role: &role, Active: &active, PageSize: 100, SortBy: "full_name", SortOrder: "ASC"})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	if err := s.cache.Set(ctx, professorsCacheKey, professors, 0); err != nil {
		s.logger.Warn("failed to cache professors", zap.Error(err))
	}
	return professors, false, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new account. Coordinator accounts must carry a unique
// teacher id; a group id may be supplied to make the new user a group leader.
func (s *UserService) Create(ctx context.Context, actorID string, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	role := models.UserRole(req.Role)
	if err := s.checkTeacherID(ctx, role, req.TeacherID, ""); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a user with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing users")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		TeacherID:    req.TeacherID,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	if req.GroupID != nil && role == models.RoleGroupLeader {
		if err := s.assignGroupLeadership(ctx, *req.GroupID, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserCreate,
		Resource:   "users",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"role":"` + req.Role + `"}`),
	}); err != nil {
		s.logger.Warn("failed to record user create audit log", zap.Error(err))
	}

	s.invalidateProfessors(ctx, role)
	return user, nil
}

// Update amends account fields.
func (s *UserService) Update(ctx context.Context, actorID, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.TeacherID != nil {
		user.TeacherID = req.TeacherID
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.checkTeacherID(ctx, user.Role, user.TeacherID, user.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserUpdate,
		Resource:   "users",
		ResourceID: &user.ID,
	}); err != nil {
		s.logger.Warn("failed to record user update audit log", zap.Error(err))
	}

	s.invalidateProfessors(ctx, user.Role)
	return user, nil
}

// Deactivate soft deletes an account.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserUpdate,
		Resource:   "users",
		ResourceID: &id,
		NewValues:  []byte(`{"active":false}`),
	}); err != nil {
		s.logger.Warn("failed to record user deactivate audit log", zap.Error(err))
	}

	s.invalidateProfessors(ctx, user.Role)
	return nil
}

// checkTeacherID enforces the coordinator/teacher link rules: coordinators
// must carry a teacher id, other roles must not, and the id must be unique.
func (s *UserService) checkTeacherID(ctx context.Context, role models.UserRole, teacherID *string, selfID string) error {
	if role == models.RoleCoordinator {
		if teacherID == nil || *teacherID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "coordinator accounts require a teacherId")
		}
		existing, err := s.repo.FindByTeacherID(ctx, *teacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher id")
		}
		if existing.ID != selfID {
			return appErrors.Clone(appErrors.ErrConflict, "another account already uses this teacherId")
		}
		return nil
	}
	if teacherID != nil && *teacherID != "" {
		return appErrors.Clone(appErrors.ErrValidation, "only coordinator accounts may carry a teacherId")
	}
	return nil
}

func (s *UserService) assignGroupLeadership(ctx context.Context, groupID, userID string) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.LeaderID != nil && *group.LeaderID != userID {
		return appErrors.Clone(appErrors.ErrConflict, "the group already has a leader")
	}
	group.LeaderID = &userID
	if err := s.groups.Update(ctx, group); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign group leader")
	}
	return nil
}

func (s *UserService) invalidateProfessors(ctx context.Context, role models.UserRole) {
	if role != models.RoleCoordinator {
		return
	}
	if err := s.cache.Invalidate(ctx, professorsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate professor cache", zap.Error(err))
	}
}
