package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/models"
)

type ArenaRepository interface {
	// Create enforces the one-entry-per-user invariant at the data layer.
	Create(ctx context.Context, entry *models.ArenaEntry) error
	Delete(ctx context.Context, userId string) error
	ListQueued(ctx context.Context) ([]models.ArenaEntry, error)
}

type arenaRepo struct {
	db *database.DynamoDBClient
}

func NewArenaRepository(db *database.DynamoDBClient) ArenaRepository {
	return &arenaRepo{db: db}
}

func (r *arenaRepo) Create(ctx context.Context, entry *models.ArenaEntry) error {
	entry.PK = models.ArenaPK(entry.UserId)
	entry.SK = models.MetaSK()

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal arena entry: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeAlreadyExists, "user is already queued in the arena")
		}
		return fmt.Errorf("failed to create arena entry: %w", err)
	}

	return nil
}

func (r *arenaRepo) Delete(ctx context.Context, userId string) error {
	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ArenaPK(userId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeNotFound, "user is not queued in the arena")
		}
		return fmt.Errorf("failed to delete arena entry: %w", err)
	}

	return nil
}

func (r *arenaRepo) ListQueued(ctx context.Context) ([]models.ArenaEntry, error) {
	result, err := r.db.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.db.Table()),
		FilterExpression: aws.String("begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: "ARENA#"},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list arena entries: %w", err)
	}

	var entries []models.ArenaEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arena entries: %w", err)
	}

	return entries, nil
}
