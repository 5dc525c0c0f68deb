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

type AttemptRepository interface {
	Get(ctx context.Context, challengeId, userId string) (*models.Attempt, error)
	// ListByUserAndTournament resolves a user's completed challenges with a
	// single indexed query instead of enumerating every challenge.
	ListByUserAndTournament(ctx context.Context, userId, tournamentId string) ([]models.Attempt, error)

	// Transactions
	GetTransactionForCreate(ctx context.Context, attempt *models.Attempt) (types.Put, error)
}

type attemptRepo struct {
	db *database.DynamoDBClient
}

func NewAttemptRepository(db *database.DynamoDBClient) AttemptRepository {
	return &attemptRepo{db: db}
}

func (r *attemptRepo) Get(ctx context.Context, challengeId, userId string) (*models.Attempt, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ChallengePK(challengeId)},
			"SK": &types.AttributeValueMemberS{Value: models.AttemptSK(userId)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "attempt not found")
	}

	var attempt models.Attempt
	if err := attributevalue.UnmarshalMap(result.Item, &attempt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt: %w", err)
	}

	return &attempt, nil
}

func (r *attemptRepo) ListByUserAndTournament(
	ctx context.Context,
	userId, tournamentId string,
) ([]models.Attempt, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: models.UserGSI1PK(userId)},
			":prefix": &types.AttributeValueMemberS{Value: models.AttemptTournamentGSI1SKPrefix(tournamentId)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	var attempts []models.Attempt
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &attempts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempts: %w", err)
	}

	return attempts, nil
}

// Transactions

func (r *attemptRepo) GetTransactionForCreate(
	ctx context.Context,
	attempt *models.Attempt,
) (types.Put, error) {
	attempt.PK = models.ChallengePK(attempt.ChallengeId)
	attempt.SK = models.AttemptSK(attempt.UserId)
	attempt.GSI1PK = models.UserGSI1PK(attempt.UserId)
	attempt.GSI1SK = models.AttemptGSI1SK(attempt.TournamentId, attempt.ChallengeId)
	attempt.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(attempt)
	if err != nil {
		return types.Put{}, fmt.Errorf("failed to marshal attempt: %w", err)
	}

	return types.Put{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	}, nil
}
