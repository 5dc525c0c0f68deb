package service

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dvergaray/quizarena/internal/cache"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

// Test doubles shared by the service tests, in the same Fn-field style as
// the repository fakes.

type fakeBroadcaster struct {
	mu sync.Mutex

	arenaEvents     []string
	scoreEvents     []string
	completedEvents []string

	arenaErr error
}

func (f *fakeBroadcaster) PublishArenaUpdated(_ context.Context, userId, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.arenaErr != nil {
		return f.arenaErr
	}
	f.arenaEvents = append(f.arenaEvents, userId+":"+action)
	return nil
}

func (f *fakeBroadcaster) PublishScoreUpdated(_ context.Context, userId, tournamentId, challengeId string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreEvents = append(f.scoreEvents, userId+":"+tournamentId+":"+challengeId)
	return nil
}

func (f *fakeBroadcaster) PublishTournamentCompleted(_ context.Context, tournamentId, winnerUserId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completedEvents = append(f.completedEvents, tournamentId+":"+winnerUserId)
	return nil
}

type fakeRankingService struct {
	RecomputeTournamentRankingFn func(ctx context.Context, tournamentId string) error
	RecordLedgerPointsFn         func(ctx context.Context, userId string, delta int) error

	recomputed     []string
	ledgerCredits  map[string]int
	recomputeCalls int
}

func (f *fakeRankingService) RecomputeTournamentRanking(ctx context.Context, tournamentId string) error {
	f.recomputeCalls++
	f.recomputed = append(f.recomputed, tournamentId)
	if f.RecomputeTournamentRankingFn != nil {
		return f.RecomputeTournamentRankingFn(ctx, tournamentId)
	}
	return nil
}

func (f *fakeRankingService) RecordLedgerPoints(ctx context.Context, userId string, delta int) error {
	if f.ledgerCredits == nil {
		f.ledgerCredits = make(map[string]int)
	}
	f.ledgerCredits[userId] += delta
	if f.RecordLedgerPointsFn != nil {
		return f.RecordLedgerPointsFn(ctx, userId, delta)
	}
	return nil
}

func (f *fakeRankingService) RecomputeScopes(context.Context) error { return nil }

func (f *fakeRankingService) GetRanking(context.Context, RankingQuery) (*RankingResult, error) {
	return &RankingResult{}, nil
}

func (f *fakeRankingService) GetAllTournamentsPlayers(context.Context) ([]TournamentPlayer, error) {
	return nil, nil
}

type fakePayer struct {
	payouts []string
	err     error
}

func (f *fakePayer) PayReward(_ context.Context, tournament *models.Tournament) error {
	if f.err != nil {
		return f.err
	}
	f.payouts = append(f.payouts, tournament.TournamentId)
	return nil
}

type fakeBoard struct {
	rebuilt map[string][]cache.BoardMember
	pageFn  func(key string, skip, first int) []string
}

func (f *fakeBoard) Rebuild(_ context.Context, boards map[string][]cache.BoardMember) error {
	f.rebuilt = boards
	return nil
}

func (f *fakeBoard) Page(_ context.Context, key string, skip, first int) ([]string, error) {
	if f.pageFn != nil {
		return f.pageFn(key, skip, first), nil
	}
	return nil, nil
}

// memoryPlayerRepo keeps player rows in a map so multi-step scenarios can
// observe accumulated state.
type memoryPlayerRepo struct {
	repository.FakePlayerRepository

	mu      sync.Mutex
	players map[string]*models.Player
}

func newMemoryPlayerRepo() *memoryPlayerRepo {
	return &memoryPlayerRepo{players: make(map[string]*models.Player)}
}

func (m *memoryPlayerRepo) put(p *models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.players[p.UserId] = &cp
}

func (m *memoryPlayerRepo) Get(_ context.Context, _, userId string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[userId]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memoryPlayerRepo) ListByTournament(context.Context, string) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryPlayerRepo) AddPoints(_ context.Context, _, userId string, delta int) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.players[userId]
	p.Points += delta
	cp := *p
	return &cp, nil
}

func (m *memoryPlayerRepo) UpdateRanking(_ context.Context, _, userId string, ranking int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[userId].Ranking = ranking
	return nil
}

// GetTransactionForAddPoints applies the increment at build time; the fake
// transaction repo paired with it in these tests commits unconditionally.
func (m *memoryPlayerRepo) GetTransactionForAddPoints(_ context.Context, _, userId string, delta int) types.Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[userId].Points += delta
	return types.Update{}
}

// memoryTournamentRepo keeps one tournament row and mirrors the conditional
// write semantics of the real repository: the status flip only succeeds from
// ACTIVE and the finish markers stick once written.
type memoryTournamentRepo struct {
	repository.FakeTournamentRepository

	mu         sync.Mutex
	tournament models.Tournament
}

func newMemoryTournamentRepo(tournament models.Tournament) *memoryTournamentRepo {
	return &memoryTournamentRepo{tournament: tournament}
}

func (m *memoryTournamentRepo) GetById(context.Context, string) (*models.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.tournament
	return &cp, nil
}

func (m *memoryTournamentRepo) CompleteTournament(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tournament.Status != models.TournamentActive {
		return apperrors.New(apperrors.CodeTournamentState, "tournament is not active")
	}
	m.tournament.Status = models.TournamentCompleted
	return nil
}

func (m *memoryTournamentRepo) MarkFinalized(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.tournament.FinalizedAt = &now
	return nil
}

func (m *memoryTournamentRepo) GetTransactionForAwardBonus(_ context.Context, _, userId string) types.Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournament.BonusUserId = userId
	return types.Update{}
}

func joinedAt(offset time.Duration) time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(offset)
}
