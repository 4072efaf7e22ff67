package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.ExaminationPeriod, error)
	FindByKind(ctx context.Context, kind models.ExamKind) (*models.ExaminationPeriod, error)
	FindByID(ctx context.Context, id string) (*models.ExaminationPeriod, error)
	Create(ctx context.Context, period *models.ExaminationPeriod) error
	Update(ctx context.Context, period *models.ExaminationPeriod) error
	Delete(ctx context.Context, id string) error
}

const periodsCacheKey = "periods:list"

// PeriodService manages examination period configuration.
type PeriodService struct {
	repo      periodRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs a PeriodService instance.
func NewPeriodService(repo periodRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PeriodService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all configured periods, served from cache when possible.
func (s *PeriodService) List(ctx context.Context) ([]models.ExaminationPeriod, bool, error) {
	var cached []models.ExaminationPeriod
	if hit, err := s.cache.Get(ctx, periodsCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	if err := s.cache.Set(ctx, periodsCacheKey, periods, 0); err != nil {
		s.logger.Warn("failed to cache periods", zap.Error(err))
	}
	return periods, false, nil
}

// Create adds the period for an examination kind. Only one period may exist
// per kind.
func (s *PeriodService) Create(ctx context.Context, req dto.PeriodRequest) (*models.ExaminationPeriod, error) {
	start, end, err := s.parseBounds(req)
	if err != nil {
		return nil, err
	}

	kind := models.ExamKind(req.Kind)
	if _, err := s.repo.FindByKind(ctx, kind); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a period for %s already exists", kind))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing period")
	}

	period := &models.ExaminationPeriod{Kind: kind, Start: start, End: end}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}

	s.invalidate(ctx)
	return period, nil
}

// Update changes the bounds of an existing period. The kind is fixed at
// creation.
func (s *PeriodService) Update(ctx context.Context, id string, req dto.PeriodRequest) (*models.ExaminationPeriod, error) {
	start, end, err := s.parseBounds(req)
	if err != nil {
		return nil, err
	}

	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if string(period.Kind) != req.Kind {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the kind of an existing period cannot change")
	}

	period.Start = start
	period.End = end
	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}

	s.invalidate(ctx)
	return period, nil
}

// Delete removes a period.
func (s *PeriodService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete period")
	}
	s.invalidate(ctx)
	return nil
}

func (s *PeriodService) parseBounds(req dto.PeriodRequest) (time.Time, time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	start, err := time.Parse(dayFormat, req.Start)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start %q is not a valid YYYY-MM-DD date", req.Start))
	}
	end, err := time.Parse(dayFormat, req.End)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("end %q is not a valid YYYY-MM-DD date", req.End))
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start must not fall after end")
	}
	return start, end, nil
}

func (s *PeriodService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, periodsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate period cache", zap.Error(err))
	}
}
