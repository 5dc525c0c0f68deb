package handler

import (
	"net/http"
	"strconv"

	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/service"
)

type RankingHandler struct {
	rankingService service.RankingService
	logger         *logger.Logger
}

func NewRankingHandler(rankingService service.RankingService, logger *logger.Logger) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, logger: logger}
}

func (h *RankingHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	first, _ := strconv.Atoi(q.Get("first"))
	skip, _ := strconv.Atoi(q.Get("skip"))

	result, err := h.rankingService.GetRanking(r.Context(), service.RankingQuery{
		Country: q.Get("country"),
		State:   q.Get("state"),
		City:    q.Get("city"),
		First:   first,
		Skip:    skip,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *RankingHandler) AllTournamentsPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.rankingService.GetAllTournamentsPlayers(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}
