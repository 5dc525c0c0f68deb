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

type ChallengeRepository interface {
	GetById(ctx context.Context, challengeId string) (*models.Challenge, error)
	ListByTournament(ctx context.Context, tournamentId string) ([]models.Challenge, error)

	// Transactions
	GetTransactionForCreate(ctx context.Context, challenge *models.Challenge, seq int) (types.Put, error)
}

type challengeRepo struct {
	db *database.DynamoDBClient
}

func NewChallengeRepository(db *database.DynamoDBClient) ChallengeRepository {
	return &challengeRepo{db: db}
}

func (r *challengeRepo) GetById(ctx context.Context, challengeId string) (*models.Challenge, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ChallengePK(challengeId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "challenge not found")
	}

	var challenge models.Challenge
	if err := attributevalue.UnmarshalMap(result.Item, &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	return &challenge, nil
}

func (r *challengeRepo) ListByTournament(ctx context.Context, tournamentId string) ([]models.Challenge, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			":prefix": &types.AttributeValueMemberS{Value: "CHALLENGE#"},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	var challenges []models.Challenge
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &challenges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenges: %w", err)
	}

	return challenges, nil
}

// Transactions

func (r *challengeRepo) GetTransactionForCreate(
	ctx context.Context,
	challenge *models.Challenge,
	seq int,
) (types.Put, error) {
	challenge.PK = models.ChallengePK(challenge.ChallengeId)
	challenge.SK = models.MetaSK()
	challenge.GSI1PK = models.TournamentPK(challenge.TournamentId)
	challenge.GSI1SK = models.ChallengeSeqGSI1SK(seq)
	challenge.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(challenge)
	if err != nil {
		return types.Put{}, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	return types.Put{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}, nil
}
