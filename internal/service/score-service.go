package service

import (
	"context"
	"math"
	"time"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

// EventBroadcaster is the slice of the event publisher the services need.
type EventBroadcaster interface {
	PublishArenaUpdated(ctx context.Context, userId, action string) error
	PublishScoreUpdated(ctx context.Context, userId, tournamentId, challengeId string, newScore int) error
	PublishTournamentCompleted(ctx context.Context, tournamentId, winnerUserId string) error
}

type SubmitAttemptInput struct {
	ChallengeId     string
	UserId          string
	Points          float64
	BonusTimePoints float64
}

type ScoreService interface {
	// SubmitAttempt records one (challenge, user) result exactly once and
	// credits the rounded total to the player's tournament score.
	SubmitAttempt(ctx context.Context, input SubmitAttemptInput) (*models.Attempt, error)
}

type scoreService struct {
	challengeRepo   repository.ChallengeRepository
	tournamentRepo  repository.TournamentRepository
	playerRepo      repository.PlayerRepository
	attemptRepo     repository.AttemptRepository
	transactionRepo database.TransactionRepository
	rankingService  RankingService
	broadcaster     EventBroadcaster
	logger          *logger.Logger
}

func NewScoreService(
	challengeRepo repository.ChallengeRepository,
	tournamentRepo repository.TournamentRepository,
	playerRepo repository.PlayerRepository,
	attemptRepo repository.AttemptRepository,
	transactionRepo database.TransactionRepository,
	rankingService RankingService,
	broadcaster EventBroadcaster,
	logger *logger.Logger,
) ScoreService {
	return &scoreService{
		challengeRepo:   challengeRepo,
		tournamentRepo:  tournamentRepo,
		playerRepo:      playerRepo,
		attemptRepo:     attemptRepo,
		transactionRepo: transactionRepo,
		rankingService:  rankingService,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// RoundPoints folds the raw and bonus points into the integer total that is
// credited everywhere. Halfway values round to the nearest even integer.
func RoundPoints(points, bonusTimePoints float64) int {
	return int(math.RoundToEven(points + bonusTimePoints))
}

func (s *scoreService) SubmitAttempt(ctx context.Context, input SubmitAttemptInput) (*models.Attempt, error) {
	if input.ChallengeId == "" || input.UserId == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "challenge id and user id are required")
	}
	if input.Points < 0 || input.BonusTimePoints < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "points must not be negative")
	}

	challenge, err := s.challengeRepo.GetById(ctx, input.ChallengeId)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetById(ctx, challenge.TournamentId)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentActive {
		return nil, apperrors.New(apperrors.CodeTournamentState, "tournament is not active")
	}

	if _, err := s.playerRepo.Get(ctx, challenge.TournamentId, input.UserId); err != nil {
		return nil, err
	}

	total := RoundPoints(input.Points, input.BonusTimePoints)
	attempt := &models.Attempt{
		ChallengeId:     input.ChallengeId,
		TournamentId:    challenge.TournamentId,
		UserId:          input.UserId,
		Points:          input.Points,
		BonusTimePoints: input.BonusTimePoints,
		TotalPoints:     total,
		CreatedAt:       time.Now(),
	}

	// The attempt put and the score increment commit together, so a
	// duplicate submission cannot credit points twice.
	builder := database.NewTransactionBuilder()

	attemptPut, err := s.attemptRepo.GetTransactionForCreate(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if err := builder.AddPut(attemptPut); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build attempt transaction")
	}
	if err := builder.AddUpdate(s.playerRepo.GetTransactionForAddPoints(ctx, challenge.TournamentId, input.UserId, total)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build attempt transaction")
	}

	if err := s.transactionRepo.Execute(ctx, builder); err != nil {
		if database.IsConditionalCheckFailure(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "attempt already submitted for this challenge")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to record attempt")
	}

	if err := s.rankingService.RecomputeTournamentRanking(ctx, challenge.TournamentId); err != nil {
		s.logger.Error("Failed to recompute tournament ranking after attempt",
			"tournamentId", challenge.TournamentId, "error", err)
	}
	if err := s.rankingService.RecordLedgerPoints(ctx, input.UserId, total); err != nil {
		s.logger.Error("Failed to record ledger points after attempt",
			"userId", input.UserId, "error", err)
	}

	if err := s.broadcaster.PublishScoreUpdated(ctx, input.UserId, challenge.TournamentId, input.ChallengeId, total); err != nil {
		s.logger.Error("Failed to publish score updated event", "error", err)
	}

	return attempt, nil
}
