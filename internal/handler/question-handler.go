package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/service"
)

type QuestionHandler struct {
	questionService service.QuestionService
	logger          *logger.Logger
}

func NewQuestionHandler(questionService service.QuestionService, logger *logger.Logger) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, logger: logger}
}

type createQuestionRequest struct {
	Question            string `json:"question"`
	Categories          string `json:"categories"`
	Tags                string `json:"tags"`
	Level               string `json:"level"`
	Answers             string `json:"answers"`
	AnswerSelectionType string `json:"answerSelectionType"`
	QuestionType        string `json:"questionType"`
	CorrectAnswer       string `json:"correctAnswer"`
	Explanation         string `json:"explanation"`
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	question, err := h.questionService.CreateQuestion(r.Context(), service.CreateQuestionInput{
		Question:            req.Question,
		Categories:          req.Categories,
		Tags:                req.Tags,
		Level:               req.Level,
		Answers:             req.Answers,
		AnswerSelectionType: req.AnswerSelectionType,
		QuestionType:        req.QuestionType,
		CorrectAnswer:       req.CorrectAnswer,
		Explanation:         req.Explanation,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questionService.DeleteQuestion(r.Context(), chi.URLParam(r, "questionId")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	questions, err := h.questionService.ListQuestions(r.Context(), repository.QuestionFilter{
		CategoryId: q.Get("categoryId"),
		NameSearch: q.Get("search"),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, questions)
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentId    string `json:"parentId"`
}

func (h *QuestionHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	category, err := h.questionService.CreateCategory(r.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentId:    req.ParentId,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (h *QuestionHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.questionService.DeleteCategory(r.Context(), chi.URLParam(r, "categoryId")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *QuestionHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.questionService.ListCategories(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
