package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/models"
	"github.com/dvergaray/quizarena/internal/repository"
)

type CreateQuestionInput struct {
	Question            string
	Categories          string
	Tags                string
	Level               string
	Answers             string
	AnswerSelectionType string
	QuestionType        string
	CorrectAnswer       string
	Explanation         string
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentId    string
}

type QuestionService interface {
	CreateQuestion(ctx context.Context, input CreateQuestionInput) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionId string) error
	ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error)

	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.QuestionCategory, error)
	DeleteCategory(ctx context.Context, categoryId string) error
	ListCategories(ctx context.Context) ([]models.QuestionCategory, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
	logger       *logger.Logger
}

func NewQuestionService(questionRepo repository.QuestionRepository, logger *logger.Logger) QuestionService {
	return &questionService{questionRepo: questionRepo, logger: logger}
}

func (s *questionService) CreateQuestion(ctx context.Context, input CreateQuestionInput) (*models.Question, error) {
	if input.Question == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "question text is required")
	}
	if input.Answers == "" || input.CorrectAnswer == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "answers and correct answer are required")
	}

	question := &models.Question{
		QuestionId:          uuid.New().String(),
		Question:            input.Question,
		Categories:          input.Categories,
		Tags:                input.Tags,
		Level:               input.Level,
		Answers:             input.Answers,
		AnswerSelectionType: input.AnswerSelectionType,
		QuestionType:        input.QuestionType,
		CorrectAnswer:       input.CorrectAnswer,
		Explanation:         input.Explanation,
		CreatedAt:           time.Now(),
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}

	s.logger.Info("Created question", "questionId", question.QuestionId)
	return question, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, questionId string) error {
	if questionId == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "question id is required")
	}
	return s.questionRepo.Delete(ctx, questionId)
}

func (s *questionService) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error) {
	return s.questionRepo.List(ctx, filter)
}

func (s *questionService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.QuestionCategory, error) {
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "category name is required")
	}

	category := &models.QuestionCategory{
		CategoryId:  uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		ParentId:    input.ParentId,
		CreatedAt:   time.Now(),
	}

	if err := s.questionRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *questionService) DeleteCategory(ctx context.Context, categoryId string) error {
	if categoryId == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "category id is required")
	}
	return s.questionRepo.DeleteCategory(ctx, categoryId)
}

func (s *questionService) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	return s.questionRepo.ListCategories(ctx)
}
