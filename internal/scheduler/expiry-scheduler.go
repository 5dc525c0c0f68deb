package scheduler

import (
	"context"
	"time"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/service"
)

// ExpiryScheduler finishes active tournaments whose end time has passed.
type ExpiryScheduler struct {
	tournamentRepo    repository.TournamentRepository
	tournamentService service.TournamentService
	logger            *logger.Logger
}

func NewExpiryScheduler(
	tournamentRepo repository.TournamentRepository,
	tournamentService service.TournamentService,
	logger *logger.Logger,
) *ExpiryScheduler {
	return &ExpiryScheduler{
		tournamentRepo:    tournamentRepo,
		tournamentService: tournamentService,
		logger:            logger,
	}
}

func (s *ExpiryScheduler) SweepExpired(ctx context.Context, now time.Time) error {
	tournaments, err := s.tournamentRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, t := range tournaments {
		if t.EndsAt.IsZero() || t.EndsAt.After(now) {
			continue
		}

		if err := s.tournamentService.Finish(ctx, t.TournamentId); err != nil {
			// Losing the completion race to a concurrent finish is fine.
			if apperrors.Is(err, apperrors.CodeTournamentState) {
				continue
			}
			s.logger.Error("Failed to finish expired tournament",
				"tournamentId", t.TournamentId, "error", err)
			continue
		}

		s.logger.Info("Finished expired tournament", "tournamentId", t.TournamentId)
	}

	return nil
}
