package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/service"
)

type TournamentHandler struct {
	tournamentService service.TournamentService
	scoreService      service.ScoreService
	logger            *logger.Logger
}

func NewTournamentHandler(
	tournamentService service.TournamentService,
	scoreService service.ScoreService,
	logger *logger.Logger,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		scoreService:      scoreService,
		logger:            logger,
	}
}

type createTournamentRequest struct {
	Title            string    `json:"title"`
	Resume           string    `json:"resume"`
	ChallengesNumber int       `json:"challengesNumber"`
	QuestionsNumber  int       `json:"questionsNumber"`
	Reward           int       `json:"reward"`
	CurrencyId       string    `json:"currencyId"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createTournamentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), service.CreateTournamentInput{
		Title:            req.Title,
		Resume:           req.Resume,
		ChallengesNumber: req.ChallengesNumber,
		QuestionsNumber:  req.QuestionsNumber,
		Reward:           req.Reward,
		CurrencyId:       req.CurrencyId,
		OwnerId:          ownerId,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, tournament)
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tournaments)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.tournamentService.GetTournament(r.Context(), chi.URLParam(r, "tournamentId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	player, err := h.tournamentService.Join(r.Context(), chi.URLParam(r, "tournamentId"), userId)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, player)
}

func (h *TournamentHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	player, err := h.tournamentService.GetUserInTournament(r.Context(), chi.URLParam(r, "tournamentId"), userId)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

func (h *TournamentHandler) CompletedChallenges(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	challenges, err := h.tournamentService.GetChallengesByUser(r.Context(), chi.URLParam(r, "tournamentId"), userId)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, challenges)
}

func (h *TournamentHandler) Finish(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Finish(r.Context(), chi.URLParam(r, "tournamentId")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"finished": true})
}

func (h *TournamentHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.tournamentService.GetChallenge(r.Context(), chi.URLParam(r, "challengeId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, challenge)
}

func (h *TournamentHandler) GetChallengeQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.tournamentService.GetChallengeQuestions(r.Context(), chi.URLParam(r, "challengeId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

type submitAttemptRequest struct {
	Points          float64 `json:"points"`
	BonusTimePoints float64 `json:"bonusTimePoints"`
}

func (h *TournamentHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req submitAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	attempt, err := h.scoreService.SubmitAttempt(r.Context(), service.SubmitAttemptInput{
		ChallengeId:     chi.URLParam(r, "challengeId"),
		UserId:          userId,
		Points:          req.Points,
		BonusTimePoints: req.BonusTimePoints,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, attempt)
}
