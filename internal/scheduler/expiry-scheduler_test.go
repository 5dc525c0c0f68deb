package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/service"
)

type fakeTournamentService struct {
	service.TournamentService

	finished []string
	finishFn func(tournamentId string) error
}

func (f *fakeTournamentService) Finish(_ context.Context, tournamentId string) error {
	if f.finishFn != nil {
		if err := f.finishFn(tournamentId); err != nil {
			return err
		}
	}
	f.finished = append(f.finished, tournamentId)
	return nil
}

func TestSweepExpiredFinishesOnlyPastEndDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tournamentRepo := &repository.FakeTournamentRepository{
		ListActiveFn: func(context.Context) ([]models.Tournament, error) {
			return []models.Tournament{
				{TournamentId: "t-expired", EndsAt: now.Add(-time.Hour)},
				{TournamentId: "t-running", EndsAt: now.Add(time.Hour)},
				{TournamentId: "t-open-ended"},
			}, nil
		},
	}
	svc := &fakeTournamentService{}

	s := NewExpiryScheduler(tournamentRepo, svc, logger.Development("test"))
	require.NoError(t, s.SweepExpired(context.Background(), now))

	assert.Equal(t, []string{"t-expired"}, svc.finished)
}

func TestSweepExpiredToleratesLostRaces(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tournamentRepo := &repository.FakeTournamentRepository{
		ListActiveFn: func(context.Context) ([]models.Tournament, error) {
			return []models.Tournament{
				{TournamentId: "t-raced", EndsAt: now.Add(-time.Hour)},
				{TournamentId: "t-expired", EndsAt: now.Add(-time.Minute)},
			}, nil
		},
	}
	svc := &fakeTournamentService{
		finishFn: func(tournamentId string) error {
			if tournamentId == "t-raced" {
				return apperrors.New(apperrors.CodeTournamentState, "tournament already completed")
			}
			return nil
		},
	}

	s := NewExpiryScheduler(tournamentRepo, svc, logger.Development("test"))
	require.NoError(t, s.SweepExpired(context.Background(), now))

	// The lost race is skipped, the rest of the sweep continues.
	assert.Equal(t, []string{"t-expired"}, svc.finished)
}
