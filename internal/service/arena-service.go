package service

import (
	"context"
	"time"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

const (
	ArenaActionJoined = "joined"
	ArenaActionLeft   = "left"
)

type ArenaService interface {
	Join(ctx context.Context, userId string) (*models.ArenaEntry, error)
	Leave(ctx context.Context, userId string) error
	ListQueued(ctx context.Context) ([]models.ArenaEntry, error)
}

type arenaService struct {
	arenaRepo   repository.ArenaRepository
	broadcaster EventBroadcaster
	logger      *logger.Logger
}

func NewArenaService(
	arenaRepo repository.ArenaRepository,
	broadcaster EventBroadcaster,
	logger *logger.Logger,
) ArenaService {
	return &arenaService{
		arenaRepo:   arenaRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *arenaService) Join(ctx context.Context, userId string) (*models.ArenaEntry, error) {
	if userId == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "user id is required")
	}

	entry := &models.ArenaEntry{
		UserId:   userId,
		QueuedAt: time.Now(),
	}
	if err := s.arenaRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	// The broadcast is what wakes the matchmaking consumer; queue membership
	// stands even if it fails.
	if err := s.broadcaster.PublishArenaUpdated(ctx, userId, ArenaActionJoined); err != nil {
		s.logger.Error("Failed to publish arena updated event", "userId", userId, "error", err)
	}

	return entry, nil
}

func (s *arenaService) Leave(ctx context.Context, userId string) error {
	if userId == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "user id is required")
	}

	if err := s.arenaRepo.Delete(ctx, userId); err != nil {
		return err
	}

	if err := s.broadcaster.PublishArenaUpdated(ctx, userId, ArenaActionLeft); err != nil {
		s.logger.Error("Failed to publish arena updated event", "userId", userId, "error", err)
	}

	return nil
}

func (s *arenaService) ListQueued(ctx context.Context) ([]models.ArenaEntry, error) {
	return s.arenaRepo.ListQueued(ctx)
}
