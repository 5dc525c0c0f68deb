package handler

import (
	"net/http"

	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/service"
)

type ArenaHandler struct {
	arenaService service.ArenaService
	logger       *logger.Logger
}

func NewArenaHandler(arenaService service.ArenaService, logger *logger.Logger) *ArenaHandler {
	return &ArenaHandler{arenaService: arenaService, logger: logger}
}

func (h *ArenaHandler) Join(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	entry, err := h.arenaService.Join(r.Context(), userId)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (h *ArenaHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userId, err := callerID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.arenaService.Leave(r.Context(), userId); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"left": true})
}

func (h *ArenaHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.arenaService.ListQueued(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
