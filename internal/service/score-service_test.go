package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

func TestRoundPoints(t *testing.T) {
	for _, tc := range []struct {
		points float64
		bonus  float64
		want   int
	}{
		{10, 0, 10},
		{10.4, 0, 10},
		{10.6, 0, 11},
		{2.5, 0, 2},
		{3.5, 0, 4},
		{2.25, 0.25, 2},
		{0, 0, 0},
	} {
		assert.Equal(t, tc.want, RoundPoints(tc.points, tc.bonus),
			"RoundPoints(%v, %v)", tc.points, tc.bonus)
	}
}

type scoreFixture struct {
	challengeRepo   *repository.FakeChallengeRepository
	tournamentRepo  *repository.FakeTournamentRepository
	playerRepo      *repository.FakePlayerRepository
	attemptRepo     *repository.FakeAttemptRepository
	transactionRepo *repository.FakeTransactionRepository
	ranking         *fakeRankingService
	broadcaster     *fakeBroadcaster
}

func newScoreFixture() *scoreFixture {
	return &scoreFixture{
		challengeRepo: &repository.FakeChallengeRepository{
			GetByIdFn: func(_ context.Context, challengeId string) (*models.Challenge, error) {
				return &models.Challenge{ChallengeId: challengeId, TournamentId: "t-1"}, nil
			},
		},
		tournamentRepo: &repository.FakeTournamentRepository{
			GetByIdFn: func(_ context.Context, tournamentId string) (*models.Tournament, error) {
				return &models.Tournament{TournamentId: tournamentId, Status: models.TournamentActive}, nil
			},
		},
		playerRepo: &repository.FakePlayerRepository{
			GetFn: func(_ context.Context, tournamentId, userId string) (*models.Player, error) {
				return &models.Player{UserId: userId, TournamentId: tournamentId}, nil
			},
		},
		attemptRepo:     &repository.FakeAttemptRepository{},
		transactionRepo: &repository.FakeTransactionRepository{},
		ranking:         &fakeRankingService{},
		broadcaster:     &fakeBroadcaster{},
	}
}

func (f *scoreFixture) service() ScoreService {
	return NewScoreService(
		f.challengeRepo,
		f.tournamentRepo,
		f.playerRepo,
		f.attemptRepo,
		f.transactionRepo,
		f.ranking,
		f.broadcaster,
		logger.Development("test"),
	)
}

func TestSubmitAttemptSuccess(t *testing.T) {
	f := newScoreFixture()

	executed := false
	f.transactionRepo.ExecuteFn = func(_ context.Context, builder *database.TransactionBuilder) error {
		executed = true
		return nil
	}

	attempt, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId:     "c-1",
		UserId:          "u-1",
		Points:          12.3,
		BonusTimePoints: 1.4,
	})
	require.NoError(t, err)

	assert.True(t, executed)
	assert.Equal(t, 14, attempt.TotalPoints)
	assert.Equal(t, "t-1", attempt.TournamentId)

	assert.Equal(t, []string{"t-1"}, f.ranking.recomputed)
	assert.Equal(t, map[string]int{"u-1": 14}, f.ranking.ledgerCredits)
	assert.Equal(t, []string{"u-1:t-1:c-1"}, f.broadcaster.scoreEvents)
}

func TestSubmitAttemptDuplicateRejected(t *testing.T) {
	f := newScoreFixture()
	f.transactionRepo.ExecuteFn = func(context.Context, *database.TransactionBuilder) error {
		return &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
			},
		}
	}

	_, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId: "c-1",
		UserId:      "u-1",
		Points:      10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	// Nothing downstream runs when the transaction is rejected.
	assert.Empty(t, f.ranking.recomputed)
	assert.Empty(t, f.ranking.ledgerCredits)
	assert.Empty(t, f.broadcaster.scoreEvents)
}

func TestSubmitAttemptCompletedTournament(t *testing.T) {
	f := newScoreFixture()
	f.tournamentRepo.GetByIdFn = func(_ context.Context, tournamentId string) (*models.Tournament, error) {
		return &models.Tournament{TournamentId: tournamentId, Status: models.TournamentCompleted}, nil
	}

	_, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId: "c-1",
		UserId:      "u-1",
		Points:      10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeTournamentState))
}

func TestSubmitAttemptUnknownChallenge(t *testing.T) {
	f := newScoreFixture()
	f.challengeRepo.GetByIdFn = func(context.Context, string) (*models.Challenge, error) {
		return nil, apperrors.New(apperrors.CodeNotFound, "challenge not found")
	}

	_, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId: "missing",
		UserId:      "u-1",
		Points:      10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestSubmitAttemptNotJoined(t *testing.T) {
	f := newScoreFixture()
	f.playerRepo.GetFn = func(context.Context, string, string) (*models.Player, error) {
		return nil, apperrors.New(apperrors.CodeNotFound, "player not found")
	}

	_, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId: "c-1",
		UserId:      "u-outsider",
		Points:      10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestSubmitAttemptNegativePoints(t *testing.T) {
	f := newScoreFixture()

	_, err := f.service().SubmitAttempt(context.Background(), SubmitAttemptInput{
		ChallengeId: "c-1",
		UserId:      "u-1",
		Points:      -1,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

// Submissions for different players touch different rows, so any
// interleaving must persist every increment.
func TestSubmitAttemptConcurrentPlayers(t *testing.T) {
	ctx := context.Background()

	players := newMemoryPlayerRepo()
	userIds := []string{"u-1", "u-2", "u-3", "u-4"}
	for i, userId := range userIds {
		players.put(&models.Player{
			UserId:       userId,
			TournamentId: "t-1",
			JoinedAt:     joinedAt(time.Duration(i) * time.Minute),
		})
	}

	ranking := NewRankingService(
		&repository.FakeTournamentRepository{},
		players,
		&repository.FakeRankingRepository{},
		&repository.FakeProfileRepository{},
		&fakeBoard{},
		logger.Development("test"),
	)

	f := newScoreFixture()
	svc := NewScoreService(
		f.challengeRepo,
		f.tournamentRepo,
		players,
		f.attemptRepo,
		f.transactionRepo,
		ranking,
		f.broadcaster,
		logger.Development("test"),
	)

	var wg sync.WaitGroup
	for i, userId := range userIds {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(userId string, i, j int) {
				defer wg.Done()
				_, err := svc.SubmitAttempt(ctx, SubmitAttemptInput{
					ChallengeId: fmt.Sprintf("c-%d-%d", i, j),
					UserId:      userId,
					Points:      float64(10*(i+1) + j),
				})
				assert.NoError(t, err)
			}(userId, i, j)
		}
	}
	wg.Wait()

	// Every increment landed, whatever the interleaving.
	for i, userId := range userIds {
		p, err := players.Get(ctx, "t-1", userId)
		require.NoError(t, err)
		assert.Equal(t, 30*(i+1)+3, p.Points, userId)
	}

	// The next ranking pass sees the settled totals and assigns dense
	// ranks in points order.
	require.NoError(t, ranking.RecomputeTournamentRanking(ctx, "t-1"))
	for i, userId := range userIds {
		p, err := players.Get(ctx, "t-1", userId)
		require.NoError(t, err)
		assert.Equal(t, len(userIds)-i, p.Ranking, userId)
	}
}

func TestSubmitAttemptCumulativeTotals(t *testing.T) {
	f := newScoreFixture()
	svc := f.service()

	totals := []struct {
		points float64
		bonus  float64
	}{
		{10.5, 0.5}, // 11
		{20, 2},     // 22
		{0.5, 0},    // 0
	}

	sum := 0
	for i, tc := range totals {
		attempt, err := svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
			ChallengeId:     "c-" + string(rune('a'+i)),
			UserId:          "u-1",
			Points:          tc.points,
			BonusTimePoints: tc.bonus,
		})
		require.NoError(t, err)
		sum += attempt.TotalPoints
	}

	assert.Equal(t, 33, sum)
	assert.Equal(t, 33, f.ranking.ledgerCredits["u-1"])
}
