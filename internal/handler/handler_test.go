package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/service"
)

type fakeArenaService struct {
	service.ArenaService

	joinErr error
}

func (f *fakeArenaService) Join(_ context.Context, userId string) (*models.ArenaEntry, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &models.ArenaEntry{UserId: userId}, nil
}

type fakeRankingSvc struct {
	service.RankingService

	err error
}

func (f *fakeRankingSvc) GetRanking(context.Context, service.RankingQuery) (*service.RankingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.RankingResult{International: []service.RankedEntry{}}, nil
}

func testRouter(arenaSvc service.ArenaService, rankingSvc service.RankingService) http.Handler {
	log := logger.Development("test")
	return NewRouter(
		NewTournamentHandler(nil, nil, log),
		NewRankingHandler(rankingSvc, log),
		NewArenaHandler(arenaSvc, log),
		NewQuestionHandler(nil, log),
	)
}

func TestArenaJoinRequiresCaller(t *testing.T) {
	router := testRouter(&fakeArenaService{}, &fakeRankingSvc{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/arena/join", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArenaJoinConflictMapsTo409(t *testing.T) {
	router := testRouter(&fakeArenaService{
		joinErr: apperrors.New(apperrors.CodeAlreadyExists, "user already queued"),
	}, &fakeRankingSvc{})

	req := httptest.NewRequest(http.MethodPost, "/arena/join", nil)
	req.Header.Set("X-User-ID", "u-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeAlreadyExists, body.Code)
	assert.Equal(t, "user already queued", body.Message)
}

func TestArenaJoinSuccess(t *testing.T) {
	router := testRouter(&fakeArenaService{}, &fakeRankingSvc{})

	req := httptest.NewRequest(http.MethodPost, "/arena/join", nil)
	req.Header.Set("X-User-ID", "u-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var entry models.ArenaEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.Equal(t, "u-1", entry.UserId)
}

func TestRankingInvalidScopeMapsTo400(t *testing.T) {
	router := testRouter(&fakeArenaService{}, &fakeRankingSvc{
		err: apperrors.New(apperrors.CodeInvalidInput, "invalid ranking scope filter"),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rankings?city=Lima", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankingOK(t *testing.T) {
	router := testRouter(&fakeArenaService{}, &fakeRankingSvc{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rankings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthz(t *testing.T) {
	router := testRouter(&fakeArenaService{}, &fakeRankingSvc{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
