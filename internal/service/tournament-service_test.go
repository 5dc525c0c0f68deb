package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/sampler"
)

type tournamentFixture struct {
	tournamentRepo  *repository.FakeTournamentRepository
	challengeRepo   *repository.FakeChallengeRepository
	playerRepo      repository.PlayerRepository
	attemptRepo     *repository.FakeAttemptRepository
	questionRepo    *repository.FakeQuestionRepository
	transactionRepo *repository.FakeTransactionRepository
	ranking         *fakeRankingService
	payer           *fakePayer
	broadcaster     *fakeBroadcaster
}

func newTournamentFixture() *tournamentFixture {
	return &tournamentFixture{
		tournamentRepo: &repository.FakeTournamentRepository{
			GetByIdFn: func(_ context.Context, tournamentId string) (*models.Tournament, error) {
				return &models.Tournament{
					TournamentId: tournamentId,
					Status:       models.TournamentActive,
					Reward:       1000,
					CurrencyId:   "coins",
				}, nil
			},
		},
		challengeRepo:   &repository.FakeChallengeRepository{},
		playerRepo:      &repository.FakePlayerRepository{},
		attemptRepo:     &repository.FakeAttemptRepository{},
		questionRepo:    &repository.FakeQuestionRepository{},
		transactionRepo: &repository.FakeTransactionRepository{},
		ranking:         &fakeRankingService{},
		payer:           &fakePayer{},
		broadcaster:     &fakeBroadcaster{},
	}
}

func (f *tournamentFixture) service() TournamentService {
	return NewTournamentService(
		f.tournamentRepo,
		f.challengeRepo,
		f.playerRepo,
		f.attemptRepo,
		f.questionRepo,
		f.transactionRepo,
		f.ranking,
		f.payer,
		f.broadcaster,
		sampler.NewWithSource(rand.NewSource(1)),
		logger.Development("test"),
	)
}

func questionBank(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("q-%03d", i))
	}
	return ids
}

func TestCreateTournamentGeneratesChallenges(t *testing.T) {
	f := newTournamentFixture()
	f.questionRepo.ListIdsFn = func(context.Context) ([]string, error) {
		return questionBank(50), nil
	}

	var challenges []*models.Challenge
	f.challengeRepo.GetTransactionForCreateFn = func(_ context.Context, challenge *models.Challenge, seq int) (types.Put, error) {
		challenges = append(challenges, challenge)
		assert.Equal(t, len(challenges), seq)
		return types.Put{}, nil
	}

	executed := 0
	f.transactionRepo.ExecuteFn = func(context.Context, *database.TransactionBuilder) error {
		executed++
		return nil
	}

	tournament, err := f.service().CreateTournament(context.Background(), CreateTournamentInput{
		Title:            "Copa Trivia",
		ChallengesNumber: 4,
		QuestionsNumber:  10,
		Reward:           2000,
		CurrencyId:       "coins",
		OwnerId:          "u-owner",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, executed)
	assert.Equal(t, models.TournamentActive, tournament.Status)
	assert.NotEmpty(t, tournament.TournamentId)

	require.Len(t, challenges, 4)
	seen := make(map[string]struct{})
	for i, c := range challenges {
		assert.Equal(t, fmt.Sprintf("Desafío %d", i+1), c.Name)
		assert.Equal(t, "General", c.Category)
		assert.Equal(t, "1", c.Level)
		assert.Equal(t, 5, c.TimeLimit)
		assert.Equal(t, tournament.TournamentId, c.TournamentId)
		require.Len(t, c.QuestionIds, 10)
		for _, id := range c.QuestionIds {
			_, dup := seen[id]
			assert.False(t, dup, "question %s appears in two challenges", id)
			seen[id] = struct{}{}
		}
	}
}

func TestCreateTournamentCapacityExceededWritesNothing(t *testing.T) {
	f := newTournamentFixture()
	f.questionRepo.ListIdsFn = func(context.Context) ([]string, error) {
		return questionBank(39), nil
	}

	executed := false
	f.transactionRepo.ExecuteFn = func(context.Context, *database.TransactionBuilder) error {
		executed = true
		return nil
	}

	_, err := f.service().CreateTournament(context.Background(), CreateTournamentInput{
		Title:            "Copa Trivia",
		ChallengesNumber: 4,
		QuestionsNumber:  10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeCapacityExceeded))
	assert.False(t, executed)
}

func TestCreateTournamentValidation(t *testing.T) {
	f := newTournamentFixture()
	svc := f.service()
	ctx := context.Background()

	for _, tc := range []struct {
		name  string
		input CreateTournamentInput
	}{
		{"missing title", CreateTournamentInput{ChallengesNumber: 1, QuestionsNumber: 1}},
		{"zero challenges", CreateTournamentInput{Title: "x", QuestionsNumber: 1}},
		{"zero questions", CreateTournamentInput{Title: "x", ChallengesNumber: 1}},
		{"ends before starts", CreateTournamentInput{
			Title: "x", ChallengesNumber: 1, QuestionsNumber: 1,
			StartsAt: joinedAt(time.Hour), EndsAt: joinedAt(0),
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTournament(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestJoinRules(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown tournament", func(t *testing.T) {
		f := newTournamentFixture()
		f.tournamentRepo.GetByIdFn = func(context.Context, string) (*models.Tournament, error) {
			return nil, apperrors.New(apperrors.CodeNotFound, "tournament not found")
		}

		_, err := f.service().Join(ctx, "missing", "u-1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("completed tournament", func(t *testing.T) {
		f := newTournamentFixture()
		f.tournamentRepo.GetByIdFn = func(_ context.Context, tournamentId string) (*models.Tournament, error) {
			return &models.Tournament{TournamentId: tournamentId, Status: models.TournamentCompleted}, nil
		}

		_, err := f.service().Join(ctx, "t-1", "u-1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeTournamentState))
	})

	t.Run("second join conflicts", func(t *testing.T) {
		f := newTournamentFixture()
		f.playerRepo = &repository.FakePlayerRepository{
			CreateFn: func(context.Context, *models.Player) error {
				return apperrors.New(apperrors.CodeAlreadyExists, "player already joined")
			},
		}

		_, err := f.service().Join(ctx, "t-1", "u-1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyExists))
	})

	t.Run("success starts at zero points unranked", func(t *testing.T) {
		f := newTournamentFixture()
		var created *models.Player
		f.playerRepo = &repository.FakePlayerRepository{
			CreateFn: func(_ context.Context, player *models.Player) error {
				created = player
				return nil
			},
		}

		player, err := f.service().Join(ctx, "t-1", "u-1")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Zero(t, player.Points)
		assert.Zero(t, player.Ranking)
		assert.False(t, player.JoinedAt.IsZero())
	})
}

func TestFinish(t *testing.T) {
	ctx := context.Background()

	t.Run("pays bonus to leader and recomputes twice", func(t *testing.T) {
		f := newTournamentFixture()
		players := newMemoryPlayerRepo()
		players.put(&models.Player{UserId: "u-lead", TournamentId: "t-1", Points: 120, JoinedAt: joinedAt(0)})
		players.put(&models.Player{UserId: "u-second", TournamentId: "t-1", Points: 80, JoinedAt: joinedAt(time.Minute)})
		f.playerRepo = players

		require.NoError(t, f.service().Finish(ctx, "t-1"))

		assert.Equal(t, []string{"t-1"}, f.payer.payouts)

		leader, _ := players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 620, leader.Points)

		assert.Equal(t, 2, f.ranking.recomputeCalls)
		assert.Equal(t, map[string]int{"u-lead": 500}, f.ranking.ledgerCredits)
		assert.Equal(t, []string{"t-1:u-lead"}, f.broadcaster.completedEvents)
	})

	t.Run("double finish is rejected before any payout", func(t *testing.T) {
		f := newTournamentFixture()
		f.tournamentRepo.CompleteTournamentFn = func(context.Context, string) error {
			return apperrors.New(apperrors.CodeTournamentState, "tournament already completed")
		}

		err := f.service().Finish(ctx, "t-1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeTournamentState))
		assert.Empty(t, f.payer.payouts)
		assert.Empty(t, f.broadcaster.completedEvents)
	})

	t.Run("payout failure does not roll back completion", func(t *testing.T) {
		f := newTournamentFixture()
		f.payer.err = errors.New("wallet unavailable")
		players := newMemoryPlayerRepo()
		players.put(&models.Player{UserId: "u-1", TournamentId: "t-1", Points: 10, JoinedAt: joinedAt(0)})
		f.playerRepo = players

		require.NoError(t, f.service().Finish(ctx, "t-1"))
		assert.Equal(t, []string{"t-1:u-1"}, f.broadcaster.completedEvents)
	})

	t.Run("finalization resumes after a transient ranking failure", func(t *testing.T) {
		f := newTournamentFixture()
		tournaments := newMemoryTournamentRepo(models.Tournament{
			TournamentId: "t-1",
			Status:       models.TournamentActive,
			Reward:       1000,
			CurrencyId:   "coins",
		})
		players := newMemoryPlayerRepo()
		players.put(&models.Player{UserId: "u-lead", TournamentId: "t-1", Points: 50, JoinedAt: joinedAt(0)})
		players.put(&models.Player{UserId: "u-second", TournamentId: "t-1", Points: 20, JoinedAt: joinedAt(time.Minute)})

		outage := true
		f.ranking.RecomputeTournamentRankingFn = func(context.Context, string) error {
			if outage {
				return errors.New("ranking store unavailable")
			}
			return nil
		}

		svc := NewTournamentService(
			tournaments, f.challengeRepo, players, f.attemptRepo, f.questionRepo,
			f.transactionRepo, f.ranking, f.payer, f.broadcaster,
			sampler.NewWithSource(rand.NewSource(1)), logger.Development("test"),
		)

		// The first finish flips the status and requests the payout, then
		// dies on the ranking pass before any bonus is credited.
		require.Error(t, svc.Finish(ctx, "t-1"))
		assert.Equal(t, []string{"t-1"}, f.payer.payouts)
		leader, _ := players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 50, leader.Points)
		assert.Empty(t, f.broadcaster.completedEvents)

		// A retry resumes the completed-but-unfinalized tournament: no
		// second payout, bonus credited once, final ranking pass runs.
		outage = false
		require.NoError(t, svc.Finish(ctx, "t-1"))
		assert.Equal(t, []string{"t-1"}, f.payer.payouts)
		leader, _ = players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 550, leader.Points)
		assert.Equal(t, map[string]int{"u-lead": 500}, f.ranking.ledgerCredits)
		assert.Equal(t, []string{"t-1:u-lead"}, f.broadcaster.completedEvents)

		// Once finalized, another finish is a state error and pays nothing.
		err := svc.Finish(ctx, "t-1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeTournamentState))
		leader, _ = players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 550, leader.Points)
		assert.Equal(t, []string{"t-1"}, f.payer.payouts)
	})

	t.Run("retry after a credited bonus does not pay it again", func(t *testing.T) {
		f := newTournamentFixture()
		tournaments := newMemoryTournamentRepo(models.Tournament{
			TournamentId: "t-1",
			Status:       models.TournamentActive,
		})
		players := newMemoryPlayerRepo()
		players.put(&models.Player{UserId: "u-lead", TournamentId: "t-1", Points: 50, JoinedAt: joinedAt(0)})

		// The ranking pass right after the bonus credit fails once.
		calls := 0
		f.ranking.RecomputeTournamentRankingFn = func(context.Context, string) error {
			calls++
			if calls == 2 {
				return errors.New("ranking store unavailable")
			}
			return nil
		}

		svc := NewTournamentService(
			tournaments, f.challengeRepo, players, f.attemptRepo, f.questionRepo,
			f.transactionRepo, f.ranking, f.payer, f.broadcaster,
			sampler.NewWithSource(rand.NewSource(1)), logger.Development("test"),
		)

		require.Error(t, svc.Finish(ctx, "t-1"))
		leader, _ := players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 550, leader.Points)
		assert.Empty(t, f.broadcaster.completedEvents)

		// The retry sees the recorded bonus recipient and only reruns the
		// ranking pass and the completion event.
		require.NoError(t, svc.Finish(ctx, "t-1"))
		leader, _ = players.Get(ctx, "t-1", "u-lead")
		assert.Equal(t, 550, leader.Points)
		assert.Equal(t, []string{"t-1:u-lead"}, f.broadcaster.completedEvents)
	})

	t.Run("empty tournament completes without bonus", func(t *testing.T) {
		f := newTournamentFixture()
		f.playerRepo = &repository.FakePlayerRepository{
			ListByTournamentFn: func(context.Context, string) ([]models.Player, error) {
				return nil, nil
			},
		}

		require.NoError(t, f.service().Finish(ctx, "t-1"))
		assert.Empty(t, f.ranking.ledgerCredits)
		assert.Equal(t, []string{"t-1:"}, f.broadcaster.completedEvents)
	})
}

func TestGetChallengesByUser(t *testing.T) {
	f := newTournamentFixture()
	f.attemptRepo.ListByUserAndTournamentFn = func(_ context.Context, userId, tournamentId string) ([]models.Attempt, error) {
		return []models.Attempt{
			{ChallengeId: "c-1", UserId: userId, TournamentId: tournamentId},
			{ChallengeId: "c-2", UserId: userId, TournamentId: tournamentId},
		}, nil
	}
	f.challengeRepo.GetByIdFn = func(_ context.Context, challengeId string) (*models.Challenge, error) {
		return &models.Challenge{ChallengeId: challengeId, TournamentId: "t-1"}, nil
	}

	challenges, err := f.service().GetChallengesByUser(context.Background(), "t-1", "u-1")
	require.NoError(t, err)

	require.Len(t, challenges, 2)
	assert.Equal(t, "c-1", challenges[0].ChallengeId)
	assert.Equal(t, "c-2", challenges[1].ChallengeId)
}

// Two players work through a tournament: score order flips as attempts land
// and the finish bonus settles the final standing.
func TestTwoPlayerTournamentScenario(t *testing.T) {
	ctx := context.Background()

	players := newMemoryPlayerRepo()
	players.put(&models.Player{UserId: "alice", TournamentId: "t-1", JoinedAt: joinedAt(0)})
	players.put(&models.Player{UserId: "bruno", TournamentId: "t-1", JoinedAt: joinedAt(time.Hour)})

	ranking := NewRankingService(
		&repository.FakeTournamentRepository{},
		players,
		&repository.FakeRankingRepository{},
		&repository.FakeProfileRepository{},
		&fakeBoard{},
		logger.Development("test"),
	)

	rank := func(userId string) int {
		p, err := players.Get(ctx, "t-1", userId)
		require.NoError(t, err)
		return p.Ranking
	}

	// Bruno scores first and leads.
	_, err := players.AddPoints(ctx, "t-1", "bruno", 100)
	require.NoError(t, err)
	require.NoError(t, ranking.RecomputeTournamentRanking(ctx, "t-1"))
	assert.Equal(t, 1, rank("bruno"))
	assert.Equal(t, 2, rank("alice"))

	// Alice answers two challenges and overtakes.
	_, err = players.AddPoints(ctx, "t-1", "alice", 60)
	require.NoError(t, err)
	require.NoError(t, ranking.RecomputeTournamentRanking(ctx, "t-1"))
	assert.Equal(t, 2, rank("alice"))

	_, err = players.AddPoints(ctx, "t-1", "alice", 50)
	require.NoError(t, err)
	require.NoError(t, ranking.RecomputeTournamentRanking(ctx, "t-1"))
	assert.Equal(t, 1, rank("alice"))
	assert.Equal(t, 2, rank("bruno"))

	// Finish: the leader takes the bonus and keeps rank 1.
	f := newTournamentFixture()
	f.playerRepo = players
	svc := NewTournamentService(
		f.tournamentRepo, f.challengeRepo, players, f.attemptRepo, f.questionRepo,
		f.transactionRepo, ranking, f.payer, f.broadcaster,
		sampler.NewWithSource(rand.NewSource(1)), logger.Development("test"),
	)

	require.NoError(t, svc.Finish(ctx, "t-1"))

	alice, _ := players.Get(ctx, "t-1", "alice")
	bruno, _ := players.Get(ctx, "t-1", "bruno")
	assert.Equal(t, 610, alice.Points)
	assert.Equal(t, 1, alice.Ranking)
	assert.Equal(t, 100, bruno.Points)
	assert.Equal(t, 2, bruno.Ranking)

	assert.Equal(t, []string{"t-1:alice"}, f.broadcaster.completedEvents)
	assert.Equal(t, []string{"t-1"}, f.payer.payouts)
}
