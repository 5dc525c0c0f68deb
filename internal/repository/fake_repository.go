package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dvergaray/quizarena/internal/database"
	"github.com/dvergaray/quizarena/internal/models"
)

// Fake implementations for testing. Unset Fn fields fall back to zero-value
// returns.

type FakeTournamentRepository struct {
	GetByIdFn                     func(ctx context.Context, tournamentId string) (*models.Tournament, error)
	ListAllFn                     func(ctx context.Context) ([]models.Tournament, error)
	ListActiveFn                  func(ctx context.Context) ([]models.Tournament, error)
	CompleteTournamentFn          func(ctx context.Context, tournamentId string) error
	MarkFinalizedFn               func(ctx context.Context, tournamentId string) error
	GetTransactionForCreateFn     func(ctx context.Context, tournament *models.Tournament) (types.Put, error)
	GetTransactionForAwardBonusFn func(ctx context.Context, tournamentId, userId string) types.Update
}

func (f *FakeTournamentRepository) GetById(ctx context.Context, tournamentId string) (*models.Tournament, error) {
	if f.GetByIdFn != nil {
		return f.GetByIdFn(ctx, tournamentId)
	}
	return nil, nil
}

func (f *FakeTournamentRepository) ListAll(ctx context.Context) ([]models.Tournament, error) {
	if f.ListAllFn != nil {
		return f.ListAllFn(ctx)
	}
	return nil, nil
}

func (f *FakeTournamentRepository) ListActive(ctx context.Context) ([]models.Tournament, error) {
	if f.ListActiveFn != nil {
		return f.ListActiveFn(ctx)
	}
	return nil, nil
}

func (f *FakeTournamentRepository) CompleteTournament(ctx context.Context, tournamentId string) error {
	if f.CompleteTournamentFn != nil {
		return f.CompleteTournamentFn(ctx, tournamentId)
	}
	return nil
}

func (f *FakeTournamentRepository) MarkFinalized(ctx context.Context, tournamentId string) error {
	if f.MarkFinalizedFn != nil {
		return f.MarkFinalizedFn(ctx, tournamentId)
	}
	return nil
}

func (f *FakeTournamentRepository) GetTransactionForCreate(ctx context.Context, tournament *models.Tournament) (types.Put, error) {
	if f.GetTransactionForCreateFn != nil {
		return f.GetTransactionForCreateFn(ctx, tournament)
	}
	return types.Put{}, nil
}

func (f *FakeTournamentRepository) GetTransactionForAwardBonus(ctx context.Context, tournamentId, userId string) types.Update {
	if f.GetTransactionForAwardBonusFn != nil {
		return f.GetTransactionForAwardBonusFn(ctx, tournamentId, userId)
	}
	return types.Update{}
}

type FakeChallengeRepository struct {
	GetByIdFn                 func(ctx context.Context, challengeId string) (*models.Challenge, error)
	ListByTournamentFn        func(ctx context.Context, tournamentId string) ([]models.Challenge, error)
	GetTransactionForCreateFn func(ctx context.Context, challenge *models.Challenge, seq int) (types.Put, error)
}

func (f *FakeChallengeRepository) GetById(ctx context.Context, challengeId string) (*models.Challenge, error) {
	if f.GetByIdFn != nil {
		return f.GetByIdFn(ctx, challengeId)
	}
	return nil, nil
}

func (f *FakeChallengeRepository) ListByTournament(ctx context.Context, tournamentId string) ([]models.Challenge, error) {
	if f.ListByTournamentFn != nil {
		return f.ListByTournamentFn(ctx, tournamentId)
	}
	return nil, nil
}

func (f *FakeChallengeRepository) GetTransactionForCreate(ctx context.Context, challenge *models.Challenge, seq int) (types.Put, error) {
	if f.GetTransactionForCreateFn != nil {
		return f.GetTransactionForCreateFn(ctx, challenge, seq)
	}
	return types.Put{}, nil
}

type FakePlayerRepository struct {
	CreateFn                     func(ctx context.Context, player *models.Player) error
	GetFn                        func(ctx context.Context, tournamentId, userId string) (*models.Player, error)
	ListByTournamentFn           func(ctx context.Context, tournamentId string) ([]models.Player, error)
	AddPointsFn                  func(ctx context.Context, tournamentId, userId string, delta int) (*models.Player, error)
	UpdateRankingFn              func(ctx context.Context, tournamentId, userId string, ranking int) error
	GetTransactionForAddPointsFn func(ctx context.Context, tournamentId, userId string, delta int) types.Update
}

func (f *FakePlayerRepository) Create(ctx context.Context, player *models.Player) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, player)
	}
	return nil
}

func (f *FakePlayerRepository) Get(ctx context.Context, tournamentId, userId string) (*models.Player, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, tournamentId, userId)
	}
	return nil, nil
}

func (f *FakePlayerRepository) ListByTournament(ctx context.Context, tournamentId string) ([]models.Player, error) {
	if f.ListByTournamentFn != nil {
		return f.ListByTournamentFn(ctx, tournamentId)
	}
	return nil, nil
}

func (f *FakePlayerRepository) AddPoints(ctx context.Context, tournamentId, userId string, delta int) (*models.Player, error) {
	if f.AddPointsFn != nil {
		return f.AddPointsFn(ctx, tournamentId, userId, delta)
	}
	return nil, nil
}

func (f *FakePlayerRepository) UpdateRanking(ctx context.Context, tournamentId, userId string, ranking int) error {
	if f.UpdateRankingFn != nil {
		return f.UpdateRankingFn(ctx, tournamentId, userId, ranking)
	}
	return nil
}

func (f *FakePlayerRepository) GetTransactionForAddPoints(ctx context.Context, tournamentId, userId string, delta int) types.Update {
	if f.GetTransactionForAddPointsFn != nil {
		return f.GetTransactionForAddPointsFn(ctx, tournamentId, userId, delta)
	}
	return types.Update{}
}

type FakeAttemptRepository struct {
	GetFn                     func(ctx context.Context, challengeId, userId string) (*models.Attempt, error)
	ListByUserAndTournamentFn func(ctx context.Context, userId, tournamentId string) ([]models.Attempt, error)
	GetTransactionForCreateFn func(ctx context.Context, attempt *models.Attempt) (types.Put, error)
}

func (f *FakeAttemptRepository) Get(ctx context.Context, challengeId, userId string) (*models.Attempt, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, challengeId, userId)
	}
	return nil, nil
}

func (f *FakeAttemptRepository) ListByUserAndTournament(ctx context.Context, userId, tournamentId string) ([]models.Attempt, error) {
	if f.ListByUserAndTournamentFn != nil {
		return f.ListByUserAndTournamentFn(ctx, userId, tournamentId)
	}
	return nil, nil
}

func (f *FakeAttemptRepository) GetTransactionForCreate(ctx context.Context, attempt *models.Attempt) (types.Put, error) {
	if f.GetTransactionForCreateFn != nil {
		return f.GetTransactionForCreateFn(ctx, attempt)
	}
	return types.Put{}, nil
}

type FakeRankingRepository struct {
	GetFn          func(ctx context.Context, userId string) (*models.RankingEntry, error)
	GetByUserIdsFn func(ctx context.Context, userIds []string) ([]models.RankingEntry, error)
	UpsertPointsFn func(ctx context.Context, userId string, delta int, loc Location) (*models.RankingEntry, error)
	ListAllFn      func(ctx context.Context) ([]models.RankingEntry, error)
	SaveRanksFn    func(ctx context.Context, entries []models.RankingEntry) error
}

func (f *FakeRankingRepository) Get(ctx context.Context, userId string) (*models.RankingEntry, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, userId)
	}
	return nil, nil
}

func (f *FakeRankingRepository) GetByUserIds(ctx context.Context, userIds []string) ([]models.RankingEntry, error) {
	if f.GetByUserIdsFn != nil {
		return f.GetByUserIdsFn(ctx, userIds)
	}
	return nil, nil
}

func (f *FakeRankingRepository) UpsertPoints(ctx context.Context, userId string, delta int, loc Location) (*models.RankingEntry, error) {
	if f.UpsertPointsFn != nil {
		return f.UpsertPointsFn(ctx, userId, delta, loc)
	}
	return nil, nil
}

func (f *FakeRankingRepository) ListAll(ctx context.Context) ([]models.RankingEntry, error) {
	if f.ListAllFn != nil {
		return f.ListAllFn(ctx)
	}
	return nil, nil
}

func (f *FakeRankingRepository) SaveRanks(ctx context.Context, entries []models.RankingEntry) error {
	if f.SaveRanksFn != nil {
		return f.SaveRanksFn(ctx, entries)
	}
	return nil
}

type FakeArenaRepository struct {
	CreateFn     func(ctx context.Context, entry *models.ArenaEntry) error
	DeleteFn     func(ctx context.Context, userId string) error
	ListQueuedFn func(ctx context.Context) ([]models.ArenaEntry, error)
}

func (f *FakeArenaRepository) Create(ctx context.Context, entry *models.ArenaEntry) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, entry)
	}
	return nil
}

func (f *FakeArenaRepository) Delete(ctx context.Context, userId string) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, userId)
	}
	return nil
}

func (f *FakeArenaRepository) ListQueued(ctx context.Context) ([]models.ArenaEntry, error) {
	if f.ListQueuedFn != nil {
		return f.ListQueuedFn(ctx)
	}
	return nil, nil
}

type FakeQuestionRepository struct {
	CreateFn         func(ctx context.Context, question *models.Question) error
	DeleteFn         func(ctx context.Context, questionId string) error
	ListIdsFn        func(ctx context.Context) ([]string, error)
	GetByIdsFn       func(ctx context.Context, questionIds []string) ([]models.Question, error)
	ListFn           func(ctx context.Context, filter QuestionFilter) ([]models.Question, error)
	CreateCategoryFn func(ctx context.Context, category *models.QuestionCategory) error
	DeleteCategoryFn func(ctx context.Context, categoryId string) error
	ListCategoriesFn func(ctx context.Context) ([]models.QuestionCategory, error)
}

func (f *FakeQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, question)
	}
	return nil
}

func (f *FakeQuestionRepository) Delete(ctx context.Context, questionId string) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, questionId)
	}
	return nil
}

func (f *FakeQuestionRepository) ListIds(ctx context.Context) ([]string, error) {
	if f.ListIdsFn != nil {
		return f.ListIdsFn(ctx)
	}
	return nil, nil
}

func (f *FakeQuestionRepository) GetByIds(ctx context.Context, questionIds []string) ([]models.Question, error) {
	if f.GetByIdsFn != nil {
		return f.GetByIdsFn(ctx, questionIds)
	}
	return nil, nil
}

func (f *FakeQuestionRepository) List(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, filter)
	}
	return nil, nil
}

func (f *FakeQuestionRepository) CreateCategory(ctx context.Context, category *models.QuestionCategory) error {
	if f.CreateCategoryFn != nil {
		return f.CreateCategoryFn(ctx, category)
	}
	return nil
}

func (f *FakeQuestionRepository) DeleteCategory(ctx context.Context, categoryId string) error {
	if f.DeleteCategoryFn != nil {
		return f.DeleteCategoryFn(ctx, categoryId)
	}
	return nil
}

func (f *FakeQuestionRepository) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	if f.ListCategoriesFn != nil {
		return f.ListCategoriesFn(ctx)
	}
	return nil, nil
}

type FakeProfileRepository struct {
	GetFn          func(ctx context.Context, userId string) (*models.UserProfile, error)
	GetByUserIdsFn func(ctx context.Context, userIds []string) ([]models.UserProfile, error)
	PutFn          func(ctx context.Context, profile *models.UserProfile) error
}

func (f *FakeProfileRepository) Get(ctx context.Context, userId string) (*models.UserProfile, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, userId)
	}
	return nil, nil
}

func (f *FakeProfileRepository) GetByUserIds(ctx context.Context, userIds []string) ([]models.UserProfile, error) {
	if f.GetByUserIdsFn != nil {
		return f.GetByUserIdsFn(ctx, userIds)
	}
	return nil, nil
}

func (f *FakeProfileRepository) Put(ctx context.Context, profile *models.UserProfile) error {
	if f.PutFn != nil {
		return f.PutFn(ctx, profile)
	}
	return nil
}

// FakeTransactionRepository implements database.TransactionRepository.
type FakeTransactionRepository struct {
	ExecuteFn func(ctx context.Context, transactionBuilder *database.TransactionBuilder) error
}

func (f *FakeTransactionRepository) Execute(ctx context.Context, transactionBuilder *database.TransactionBuilder) error {
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, transactionBuilder)
	}
	return nil
}
