package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/reward"
	"github.com/dvergaray/quizarena/internal/sampler"
)

const (
	// topPlayerBonus is credited to the rank 1 player when a tournament
	// finishes, on top of the external reward payout.
	topPlayerBonus = 500

	defaultChallengeCategory  = "General"
	defaultChallengeLevel     = "1"
	defaultChallengeTimeLimit = 5

	// One transaction holds the tournament row plus every challenge row.
	maxChallengesPerTournament = 99
)

type CreateTournamentInput struct {
	Title            string
	Resume           string
	ChallengesNumber int
	QuestionsNumber  int
	Reward           int
	CurrencyId       string
	OwnerId          string
	StartsAt         time.Time
	EndsAt           time.Time
}

// TournamentDetail is the aggregate read: the tournament plus its players
// ordered by rank and its challenge list.
type TournamentDetail struct {
	Tournament models.Tournament  `json:"tournament"`
	Players    []models.Player    `json:"players"`
	Challenges []models.Challenge `json:"challenges"`
}

type TournamentService interface {
	// CreateTournament creates the tournament and generates its challenges
	// in one atomic write. Every challenge draws a disjoint question set.
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentId string) (*TournamentDetail, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	Join(ctx context.Context, tournamentId, userId string) (*models.Player, error)
	GetUserInTournament(ctx context.Context, tournamentId, userId string) (*models.Player, error)
	GetChallenge(ctx context.Context, challengeId string) (*models.Challenge, error)
	GetChallengeQuestions(ctx context.Context, challengeId string) ([]models.Question, error)
	// GetChallengesByUser lists the challenges a user has already completed
	// within a tournament.
	GetChallengesByUser(ctx context.Context, tournamentId, userId string) ([]models.Challenge, error)
	// Finish completes the tournament: status flip, reward payout request,
	// winner bonus and a final ranking pass.
	Finish(ctx context.Context, tournamentId string) error
}

type tournamentService struct {
	tournamentRepo  repository.TournamentRepository
	challengeRepo   repository.ChallengeRepository
	playerRepo      repository.PlayerRepository
	attemptRepo     repository.AttemptRepository
	questionRepo    repository.QuestionRepository
	transactionRepo database.TransactionRepository
	rankingService  RankingService
	payer           reward.Payer
	broadcaster     EventBroadcaster
	sampler         *sampler.Sampler
	logger          *logger.Logger
}

func NewTournamentService(
	tournamentRepo repository.TournamentRepository,
	challengeRepo repository.ChallengeRepository,
	playerRepo repository.PlayerRepository,
	attemptRepo repository.AttemptRepository,
	questionRepo repository.QuestionRepository,
	transactionRepo database.TransactionRepository,
	rankingService RankingService,
	payer reward.Payer,
	broadcaster EventBroadcaster,
	sampler *sampler.Sampler,
	logger *logger.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		challengeRepo:   challengeRepo,
		playerRepo:      playerRepo,
		attemptRepo:     attemptRepo,
		questionRepo:    questionRepo,
		transactionRepo: transactionRepo,
		rankingService:  rankingService,
		payer:           payer,
		broadcaster:     broadcaster,
		sampler:         sampler,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "title is required")
	}
	if input.ChallengesNumber <= 0 || input.QuestionsNumber <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "challenges and questions numbers must be positive")
	}
	if input.ChallengesNumber > maxChallengesPerTournament {
		return nil, apperrors.New(apperrors.CodeInvalidInput,
			fmt.Sprintf("challenges number must not exceed %d", maxChallengesPerTournament))
	}
	if !input.EndsAt.IsZero() && !input.EndsAt.After(input.StartsAt) {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "end time must be after start time")
	}

	pool, err := s.questionRepo.ListIds(ctx)
	if err != nil {
		return nil, err
	}

	// Capacity is checked before any write, so an undersized question bank
	// fails the whole creation.
	sets, sampleErr := s.sampler.Partition(pool, input.ChallengesNumber, input.QuestionsNumber)
	if sampleErr != nil {
		return nil, sampleErr
	}

	now := time.Now()
	tournament := &models.Tournament{
		TournamentId: uuid.New().String(),
		Title:        input.Title,
		Resume:       input.Resume,
		Status:       models.TournamentActive,
		Reward:       input.Reward,
		CurrencyId:   input.CurrencyId,
		OwnerId:      input.OwnerId,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	builder := database.NewTransactionBuilder()

	tournamentPut, err := s.tournamentRepo.GetTransactionForCreate(ctx, tournament)
	if err != nil {
		return nil, err
	}
	if err := builder.AddPut(tournamentPut); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build creation transaction")
	}

	for i, questionIds := range sets {
		challenge := &models.Challenge{
			ChallengeId:     uuid.New().String(),
			TournamentId:    tournament.TournamentId,
			Name:            fmt.Sprintf("Desafío %d", i+1),
			Category:        defaultChallengeCategory,
			Level:           defaultChallengeLevel,
			TimeLimit:       defaultChallengeTimeLimit,
			QuestionsNumber: len(questionIds),
			QuestionIds:     questionIds,
			CreatedAt:       now,
		}

		challengePut, err := s.challengeRepo.GetTransactionForCreate(ctx, challenge, i+1)
		if err != nil {
			return nil, err
		}
		if err := builder.AddPut(challengePut); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build creation transaction")
		}
	}

	if err := s.transactionRepo.Execute(ctx, builder); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to create tournament")
	}

	s.logger.Info("Created tournament",
		"tournamentId", tournament.TournamentId, "challenges", len(sets))

	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentId string) (*TournamentDetail, error) {
	tournament, err := s.tournamentRepo.GetById(ctx, tournamentId)
	if err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByTournament(ctx, tournamentId)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		// Unranked players come last.
		ri, rj := players[i].Ranking, players[j].Ranking
		if ri == 0 {
			return false
		}
		if rj == 0 {
			return true
		}
		return ri < rj
	})

	challenges, err := s.challengeRepo.ListByTournament(ctx, tournamentId)
	if err != nil {
		return nil, err
	}

	return &TournamentDetail{
		Tournament: *tournament,
		Players:    players,
		Challenges: challenges,
	}, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.ListAll(ctx)
}

func (s *tournamentService) Join(ctx context.Context, tournamentId, userId string) (*models.Player, error) {
	if userId == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "user id is required")
	}

	tournament, err := s.tournamentRepo.GetById(ctx, tournamentId)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentActive {
		return nil, apperrors.New(apperrors.CodeTournamentState, "tournament is not active")
	}

	player := &models.Player{
		UserId:       userId,
		TournamentId: tournamentId,
		Points:       0,
		Ranking:      0,
		JoinedAt:     time.Now(),
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

func (s *tournamentService) GetUserInTournament(ctx context.Context, tournamentId, userId string) (*models.Player, error) {
	return s.playerRepo.Get(ctx, tournamentId, userId)
}

func (s *tournamentService) GetChallenge(ctx context.Context, challengeId string) (*models.Challenge, error) {
	return s.challengeRepo.GetById(ctx, challengeId)
}

func (s *tournamentService) GetChallengeQuestions(ctx context.Context, challengeId string) ([]models.Question, error) {
	challenge, err := s.challengeRepo.GetById(ctx, challengeId)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.GetByIds(ctx, challenge.QuestionIds)
}

func (s *tournamentService) GetChallengesByUser(ctx context.Context, tournamentId, userId string) ([]models.Challenge, error) {
	attempts, err := s.attemptRepo.ListByUserAndTournament(ctx, userId, tournamentId)
	if err != nil {
		return nil, err
	}

	challenges := make([]models.Challenge, 0, len(attempts))
	for _, attempt := range attempts {
		challenge, err := s.challengeRepo.GetById(ctx, attempt.ChallengeId)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		challenges = append(challenges, *challenge)
	}

	return challenges, nil
}

func (s *tournamentService) Finish(ctx context.Context, tournamentId string) error {
	tournament, err := s.tournamentRepo.GetById(ctx, tournamentId)
	if err != nil {
		return err
	}

	if tournament.Status == models.TournamentCompleted && tournament.FinalizedAt != nil {
		return apperrors.New(apperrors.CodeTournamentState, "tournament is not active")
	}

	// The conditional status flip is the arbiter under concurrent finishes,
	// and the flip winner owns the payout request. A completed tournament
	// without the finalized marker is a finish that failed partway through;
	// it skips both and resumes the ranking work below.
	if tournament.Status == models.TournamentActive {
		if err := s.tournamentRepo.CompleteTournament(ctx, tournamentId); err != nil {
			return err
		}
		tournament.Status = models.TournamentCompleted

		if tournament.Reward > 0 {
			// A payout failure must not undo the completion; the wallet
			// side reconciles from the event stream.
			if err := s.payer.PayReward(ctx, tournament); err != nil {
				s.logger.Error("Failed to request reward payout",
					"tournamentId", tournamentId, "error", err)
			}
		}
	}

	winnerUserId, err := s.finalize(ctx, tournament)
	if err != nil {
		return err
	}

	if err := s.broadcaster.PublishTournamentCompleted(ctx, tournamentId, winnerUserId); err != nil {
		s.logger.Error("Failed to publish tournament completed event",
			"tournamentId", tournamentId, "error", err)
	}

	s.logger.Info("Finished tournament", "tournamentId", tournamentId, "winner", winnerUserId)
	return nil
}

// finalize runs the post-completion ranking work and is safe to re-run:
// recomputes are idempotent and the bonus credit is guarded by a conditional
// write on the tournament row. The finalized marker is only stamped once
// everything before it succeeded.
func (s *tournamentService) finalize(ctx context.Context, tournament *models.Tournament) (string, error) {
	tournamentId := tournament.TournamentId

	if err := s.rankingService.RecomputeTournamentRanking(ctx, tournamentId); err != nil {
		return "", err
	}

	players, err := s.playerRepo.ListByTournament(ctx, tournamentId)
	if err != nil {
		return "", err
	}

	winnerUserId := tournament.BonusUserId
	if len(players) > 0 && winnerUserId == "" {
		winner := RankPlayers(players)[0]
		winnerUserId = winner.UserId

		builder := database.NewTransactionBuilder()
		if err := builder.AddUpdate(s.playerRepo.GetTransactionForAddPoints(ctx, tournamentId, winner.UserId, topPlayerBonus)); err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build winner bonus transaction")
		}
		if err := builder.AddUpdate(s.tournamentRepo.GetTransactionForAwardBonus(ctx, tournamentId, winner.UserId)); err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to build winner bonus transaction")
		}

		if err := s.transactionRepo.Execute(ctx, builder); err != nil {
			if !database.IsConditionalCheckFailure(err) {
				return "", apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to credit winner bonus")
			}
			// A concurrent finalization already credited the bonus.
		} else {
			// The bonus changed the standings, so rank once more.
			if err := s.rankingService.RecomputeTournamentRanking(ctx, tournamentId); err != nil {
				return "", err
			}
			if err := s.rankingService.RecordLedgerPoints(ctx, winner.UserId, topPlayerBonus); err != nil {
				s.logger.Error("Failed to record winner bonus in ledger",
					"userId", winner.UserId, "error", err)
			}
		}
	}

	if err := s.tournamentRepo.MarkFinalized(ctx, tournamentId); err != nil {
		return "", err
	}

	return winnerUserId, nil
}
