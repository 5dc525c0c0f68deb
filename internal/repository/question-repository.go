package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/models"
)

type QuestionFilter struct {
	CategoryId string
	NameSearch string
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, questionId string) error
	// ListIds feeds challenge generation; only the ids are projected.
	ListIds(ctx context.Context) ([]string, error)
	// GetByIds resolves the stored challenge question list back to full
	// records, preserving the requested order.
	GetByIds(ctx context.Context, questionIds []string) ([]models.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]models.Question, error)

	CreateCategory(ctx context.Context, category *models.QuestionCategory) error
	DeleteCategory(ctx context.Context, categoryId string) error
	ListCategories(ctx context.Context) ([]models.QuestionCategory, error)
}

type questionRepo struct {
	db *database.DynamoDBClient
}

func NewQuestionRepository(db *database.DynamoDBClient) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Create(ctx context.Context, question *models.Question) error {
	question.PK = models.QuestionPK(question.QuestionId)
	question.SK = models.MetaSK()
	question.GSI1PK = models.QuestionGSI1PK()
	question.CreatedAt = time.Now()
	question.GSI1SK = models.CreatedGSI1SK(question.CreatedAt.UTC().Format(time.RFC3339Nano))

	item, err := attributevalue.MarshalMap(question)
	if err != nil {
		return fmt.Errorf("failed to marshal question: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

func (r *questionRepo) Delete(ctx context.Context, questionId string) error {
	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.QuestionPK(questionId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeNotFound, "question not found")
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	return nil
}

func (r *questionRepo) ListIds(ctx context.Context) ([]string, error) {
	var ids []string
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ProjectionExpression:   aws.String("question_id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: models.QuestionGSI1PK()},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list question ids: %w", err)
		}

		var page []struct {
			QuestionId string `dynamodbav:"question_id"`
		}
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question ids: %w", err)
		}
		for _, p := range page {
			ids = append(ids, p.QuestionId)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return ids, nil
}

func (r *questionRepo) GetByIds(ctx context.Context, questionIds []string) ([]models.Question, error) {
	if len(questionIds) == 0 {
		return nil, nil
	}

	questions := make([]models.Question, 0, len(questionIds))

	for start := 0; start < len(questionIds); start += 100 {
		end := start + 100
		if end > len(questionIds) {
			end = len(questionIds)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range questionIds[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: models.QuestionPK(id)},
				"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
			})
		}

		result, err := r.db.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.db.Table(): {Keys: keys},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get questions: %w", err)
		}

		var batch []models.Question
		if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.db.Table()], &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
		}
		questions = append(questions, batch...)
	}

	// Restore the challenge's stored order.
	byId := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byId[q.QuestionId] = q
	}

	ordered := make([]models.Question, 0, len(questions))
	for _, id := range questionIds {
		if q, ok := byId[id]; ok {
			ordered = append(ordered, q)
		}
	}

	return ordered, nil
}

func (r *questionRepo) List(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.QuestionGSI1PK()},
		},
		// Newest first, the original listing order.
		ScanIndexForward: aws.Bool(false),
	}

	filterExpr := ""
	if filter.CategoryId != "" {
		filterExpr = "contains(categories, :category)"
		input.ExpressionAttributeValues[":category"] =
			&types.AttributeValueMemberS{Value: filter.CategoryId}
	}
	if filter.NameSearch != "" {
		if filterExpr != "" {
			filterExpr += " AND "
		}
		filterExpr += "contains(question, :search)"
		input.ExpressionAttributeValues[":search"] =
			&types.AttributeValueMemberS{Value: filter.NameSearch}
	}
	if filterExpr != "" {
		input.FilterExpression = aws.String(filterExpr)
	}

	result, err := r.db.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	var questions []models.Question
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}

	return questions, nil
}

func (r *questionRepo) CreateCategory(ctx context.Context, category *models.QuestionCategory) error {
	category.PK = models.CategoryPK(category.CategoryId)
	category.SK = models.MetaSK()
	category.GSI1PK = models.CategoryGSI1PK()
	category.GSI1SK = models.CategoryNameGSI1SK(category.Name)
	category.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(category)
	if err != nil {
		return fmt.Errorf("failed to marshal question category: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeAlreadyExists, "question category already exists")
		}
		return fmt.Errorf("failed to create question category: %w", err)
	}

	return nil
}

func (r *questionRepo) DeleteCategory(ctx context.Context, categoryId string) error {
	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.CategoryPK(categoryId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeNotFound, "question category not found")
		}
		return fmt.Errorf("failed to delete question category: %w", err)
	}

	return nil
}

func (r *questionRepo) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.CategoryGSI1PK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list question categories: %w", err)
	}

	var categories []models.QuestionCategory
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question categories: %w", err)
	}

	return categories, nil
}
