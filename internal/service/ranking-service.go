package service

import (
	"context"
	"sort"

	"github.com/dvergaray/quizarena/internal/cache"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// RankingQuery selects exactly one geographic scope: no filters is
// international, country alone is national, country+state is state,
// country+state+city is city. Skipping a level is invalid.
type RankingQuery struct {
	Country string
	State   string
	City    string
	First   int
	Skip    int
}

type RankedEntry struct {
	Points  int                `json:"points"`
	Ranking int                `json:"ranking"`
	User    models.UserProfile `json:"user"`
}

// RankingResult populates exactly one of the four scope slices per query.
type RankingResult struct {
	International []RankedEntry `json:"rankingInternational"`
	National      []RankedEntry `json:"rankingNational"`
	State         []RankedEntry `json:"rankingState"`
	City          []RankedEntry `json:"rankingCity"`
}

// TournamentPlayer is the cross-tournament aggregate row for the
// all-players listing.
type TournamentPlayer struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Points   int    `json:"points"`
	Ranking  int    `json:"ranking"`
}

type scopeBoard interface {
	Rebuild(ctx context.Context, boards map[string][]cache.BoardMember) error
	Page(ctx context.Context, key string, skip, first int) ([]string, error)
}

type RankingService interface {
	// RecomputeTournamentRanking reorders one tournament's players and
	// persists their ranks. Idempotent.
	RecomputeTournamentRanking(ctx context.Context, tournamentId string) error
	// RecordLedgerPoints folds a points contribution into the user's
	// durable ledger row and re-ranks all four scopes.
	RecordLedgerPoints(ctx context.Context, userId string, delta int) error
	RecomputeScopes(ctx context.Context) error
	GetRanking(ctx context.Context, query RankingQuery) (*RankingResult, error)
	GetAllTournamentsPlayers(ctx context.Context) ([]TournamentPlayer, error)
}

type rankingService struct {
	tournamentRepo repository.TournamentRepository
	playerRepo     repository.PlayerRepository
	rankingRepo    repository.RankingRepository
	profileRepo    repository.ProfileRepository
	board          scopeBoard
	logger         *logger.Logger
}

func NewRankingService(
	tournamentRepo repository.TournamentRepository,
	playerRepo repository.PlayerRepository,
	rankingRepo repository.RankingRepository,
	profileRepo repository.ProfileRepository,
	board scopeBoard,
	logger *logger.Logger,
) RankingService {
	return &rankingService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		rankingRepo:    rankingRepo,
		profileRepo:    profileRepo,
		board:          board,
		logger:         logger,
	}
}

// RankPlayers orders players by points descending, earliest join first on
// ties, user id as the final deterministic key, and assigns ranks 1..N.
func RankPlayers(players []models.Player) []models.Player {
	ranked := make([]models.Player, len(players))
	copy(ranked, players)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].UserId < ranked[j].UserId
	})

	for i := range ranked {
		ranked[i].Ranking = i + 1
	}

	return ranked
}

// RankLedger computes the four scope ranks for every ledger entry. Each
// scope orders by points descending with the earliest-entry tie-break.
func RankLedger(entries []models.RankingEntry) []models.RankingEntry {
	ranked := make([]models.RankingEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
		}
		return ranked[i].UserId < ranked[j].UserId
	})

	national := make(map[string]int)
	state := make(map[string]int)
	city := make(map[string]int)

	for i := range ranked {
		e := &ranked[i]
		e.RankingInternational = i + 1

		nKey := e.Country
		national[nKey]++
		e.RankingNational = national[nKey]

		sKey := e.Country + "|" + e.State
		state[sKey]++
		e.RankingState = state[sKey]

		cKey := e.Country + "|" + e.State + "|" + e.City
		city[cKey]++
		e.RankingCity = city[cKey]
	}

	return ranked
}

func (s *rankingService) RecomputeTournamentRanking(ctx context.Context, tournamentId string) error {
	players, err := s.playerRepo.ListByTournament(ctx, tournamentId)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return nil
	}

	previous := make(map[string]int, len(players))
	for _, p := range players {
		previous[p.UserId] = p.Ranking
	}

	for _, p := range RankPlayers(players) {
		if previous[p.UserId] == p.Ranking {
			continue
		}
		if err := s.playerRepo.UpdateRanking(ctx, tournamentId, p.UserId, p.Ranking); err != nil {
			return err
		}
	}

	return nil
}

func (s *rankingService) RecordLedgerPoints(ctx context.Context, userId string, delta int) error {
	loc := repository.Location{}
	profile, err := s.profileRepo.Get(ctx, userId)
	if err != nil && !apperrors.Is(err, apperrors.CodeNotFound) {
		return err
	}
	if profile != nil {
		loc = repository.Location{
			Country: profile.Country,
			State:   profile.State,
			City:    profile.City,
		}
	}

	if _, err := s.rankingRepo.UpsertPoints(ctx, userId, delta, loc); err != nil {
		return err
	}

	return s.RecomputeScopes(ctx)
}

func (s *rankingService) RecomputeScopes(ctx context.Context) error {
	entries, err := s.rankingRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	ranked := RankLedger(entries)

	if err := s.rankingRepo.SaveRanks(ctx, ranked); err != nil {
		return err
	}

	boards := make(map[string][]cache.BoardMember)
	for _, e := range ranked {
		boards[cache.InternationalKey()] = append(boards[cache.InternationalKey()],
			cache.BoardMember{UserId: e.UserId, Rank: e.RankingInternational})
		boards[cache.NationalKey(e.Country)] = append(boards[cache.NationalKey(e.Country)],
			cache.BoardMember{UserId: e.UserId, Rank: e.RankingNational})
		boards[cache.StateKey(e.Country, e.State)] = append(boards[cache.StateKey(e.Country, e.State)],
			cache.BoardMember{UserId: e.UserId, Rank: e.RankingState})
		boards[cache.CityKey(e.Country, e.State, e.City)] = append(boards[cache.CityKey(e.Country, e.State, e.City)],
			cache.BoardMember{UserId: e.UserId, Rank: e.RankingCity})
	}

	// The boards only serve reads; a cache failure must not fail the write.
	if err := s.board.Rebuild(ctx, boards); err != nil {
		s.logger.Error("Failed to rebuild ranking boards", "error", err)
	}

	return nil
}

func resolveScope(query RankingQuery) (models.RankingScope, string, error) {
	switch {
	case query.Country != "" && query.State != "" && query.City != "":
		return models.ScopeCity, cache.CityKey(query.Country, query.State, query.City), nil
	case query.Country != "" && query.State != "" && query.City == "":
		return models.ScopeState, cache.StateKey(query.Country, query.State), nil
	case query.Country != "" && query.State == "" && query.City == "":
		return models.ScopeNational, cache.NationalKey(query.Country), nil
	case query.Country == "" && query.State == "" && query.City == "":
		return models.ScopeInternational, cache.InternationalKey(), nil
	default:
		// A filter that skips a level, e.g. city without state.
		return "", "", apperrors.New(apperrors.CodeInvalidInput, "invalid ranking scope filter")
	}
}

func (s *rankingService) GetRanking(ctx context.Context, query RankingQuery) (*RankingResult, error) {
	scope, key, err := resolveScope(query)
	if err != nil {
		return nil, err
	}

	first := query.First
	if first <= 0 {
		first = defaultPageSize
	}
	if first > maxPageSize {
		first = maxPageSize
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}

	userIds, err := s.board.Page(ctx, key, skip, first)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRedisOperationError, "failed to read ranking board")
	}
	if len(userIds) == 0 {
		return emptyResult(scope), nil
	}

	entries, err := s.rankingRepo.GetByUserIds(ctx, userIds)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.GetByUserIds(ctx, userIds)
	if err != nil {
		return nil, err
	}
	profileById := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		profileById[p.UserId] = p
	}

	page := make([]RankedEntry, 0, len(entries))
	for _, e := range entries {
		page = append(page, RankedEntry{
			Points:  e.Points,
			Ranking: scopeRank(scope, e),
			User:    profileById[e.UserId],
		})
	}

	return scopedResult(scope, page), nil
}

func emptyResult(scope models.RankingScope) *RankingResult {
	return scopedResult(scope, []RankedEntry{})
}

func scopedResult(scope models.RankingScope, page []RankedEntry) *RankingResult {
	result := &RankingResult{}
	switch scope {
	case models.ScopeCity:
		result.City = page
	case models.ScopeState:
		result.State = page
	case models.ScopeNational:
		result.National = page
	default:
		result.International = page
	}
	return result
}

func scopeRank(scope models.RankingScope, entry models.RankingEntry) int {
	switch scope {
	case models.ScopeCity:
		return entry.RankingCity
	case models.ScopeState:
		return entry.RankingState
	case models.ScopeNational:
		return entry.RankingNational
	default:
		return entry.RankingInternational
	}
}

func (s *rankingService) GetAllTournamentsPlayers(ctx context.Context) ([]TournamentPlayer, error) {
	tournaments, err := s.tournamentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	order := make([]string, 0)

	for _, t := range tournaments {
		players, err := s.playerRepo.ListByTournament(ctx, t.TournamentId)
		if err != nil {
			return nil, err
		}
		for _, p := range players {
			if _, seen := totals[p.UserId]; !seen {
				order = append(order, p.UserId)
			}
			totals[p.UserId] += p.Points
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if totals[order[i]] != totals[order[j]] {
			return totals[order[i]] > totals[order[j]]
		}
		return order[i] < order[j]
	})

	profiles, err := s.profileRepo.GetByUserIds(ctx, order)
	if err != nil {
		return nil, err
	}
	profileById := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		profileById[p.UserId] = p
	}

	result := make([]TournamentPlayer, 0, len(order))
	for i, userId := range order {
		profile := profileById[userId]
		result = append(result, TournamentPlayer{
			UserId:   userId,
			Username: profile.Username,
			Avatar:   profile.Avatar,
			Points:   totals[userId],
			Ranking:  i + 1,
		})
	}

	return result, nil
}
