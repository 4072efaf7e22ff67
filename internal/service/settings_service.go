package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type settingsRepository interface {
	ResetData(ctx context.Context) error
}

type settingsAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SettingsService exposes maintenance operations.
type SettingsService struct {
	repo   settingsRepository
	audit  settingsAuditWriter
	cache  *CacheService
	logger *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, audit settingsAuditWriter, cache *CacheService, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, audit: audit, cache: cache, logger: logger}
}

// ResetDatabase wipes all planning data except ADMIN and SECRETARY accounts.
func (s *SettingsService) ResetDatabase(ctx context.Context, actorID string) error {
	if err := s.repo.ResetData(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset database")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:   &actorID,
		Action:   models.AuditActionDatabaseReset,
		Resource: "database",
	}); err != nil {
		s.logger.Warn("failed to record database reset audit log", zap.Error(err))
	}

	for _, key := range []string{periodsCacheKey, roomsCacheKey, professorsCacheKey} {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("failed to invalidate cache after reset", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
