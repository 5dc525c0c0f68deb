package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every handler into the service's route tree.
func NewRouter(
	tournamentHandler *TournamentHandler,
	rankingHandler *RankingHandler,
	arenaHandler *ArenaHandler,
	questionHandler *QuestionHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.Create)
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentId}", tournamentHandler.Get)
		r.Post("/{tournamentId}/join", tournamentHandler.Join)
		r.Get("/{tournamentId}/me", tournamentHandler.GetMe)
		r.Get("/{tournamentId}/challenges/completed", tournamentHandler.CompletedChallenges)
		r.Post("/{tournamentId}/finish", tournamentHandler.Finish)
	})

	r.Route("/challenges", func(r chi.Router) {
		r.Get("/{challengeId}", tournamentHandler.GetChallenge)
		r.Get("/{challengeId}/questions", tournamentHandler.GetChallengeQuestions)
		r.Post("/{challengeId}/attempts", tournamentHandler.SubmitAttempt)
	})

	r.Route("/rankings", func(r chi.Router) {
		r.Get("/", rankingHandler.Get)
		r.Get("/players", rankingHandler.AllTournamentsPlayers)
	})

	r.Route("/arena", func(r chi.Router) {
		r.Get("/", arenaHandler.List)
		r.Post("/join", arenaHandler.Join)
		r.Post("/leave", arenaHandler.Leave)
	})

	r.Route("/questions", func(r chi.Router) {
		r.Post("/", questionHandler.Create)
		r.Get("/", questionHandler.List)
		r.Delete("/{questionId}", questionHandler.Delete)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", questionHandler.CreateCategory)
			r.Get("/", questionHandler.ListCategories)
			r.Delete("/{categoryId}", questionHandler.DeleteCategory)
		})
	})

	return r
}
