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

type PlayerRepository interface {
	// Create is the join path. The conditional put makes a second join for
	// the same (user, tournament) fail with ALREADY_EXISTS.
	Create(ctx context.Context, player *models.Player) error
	Get(ctx context.Context, tournamentId, userId string) (*models.Player, error)
	ListByTournament(ctx context.Context, tournamentId string) ([]models.Player, error)
	// AddPoints is an atomic ADD on the points attribute.
	AddPoints(ctx context.Context, tournamentId, userId string, delta int) (*models.Player, error)
	UpdateRanking(ctx context.Context, tournamentId, userId string, ranking int) error

	// Transactions
	GetTransactionForAddPoints(ctx context.Context, tournamentId, userId string, delta int) types.Update
}

type playerRepo struct {
	db *database.DynamoDBClient
}

func NewPlayerRepository(db *database.DynamoDBClient) PlayerRepository {
	return &playerRepo{db: db}
}

func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	player.PK = models.TournamentPK(player.TournamentId)
	player.SK = models.PlayerSK(player.UserId)
	player.GSI1PK = models.UserGSI1PK(player.UserId)
	player.GSI1SK = models.PlayerJoinedGSI1SK(player.TournamentId, player.JoinedAt.UTC().Format(time.RFC3339Nano))

	item, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeAlreadyExists, "user already joined this tournament")
		}
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

func (r *playerRepo) Get(ctx context.Context, tournamentId, userId string) (*models.Player, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.PlayerSK(userId)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "player not found in tournament")
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(result.Item, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}

func (r *playerRepo) ListByTournament(ctx context.Context, tournamentId string) ([]models.Player, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			":prefix": &types.AttributeValueMemberS{Value: "PLAYER#"},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	var players []models.Player
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}

	return players, nil
}

func (r *playerRepo) AddPoints(
	ctx context.Context,
	tournamentId, userId string,
	delta int,
) (*models.Player, error) {
	result, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.PlayerSK(userId)},
		},
		UpdateExpression: aws.String("ADD points :delta SET updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ReturnValues:        types.ReturnValueAllNew,
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "player not found in tournament")
		}
		return nil, fmt.Errorf("failed to add player points: %w", err)
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(result.Attributes, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}

func (r *playerRepo) UpdateRanking(ctx context.Context, tournamentId, userId string, ranking int) error {
	_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.PlayerSK(userId)},
		},
		UpdateExpression: aws.String("SET ranking = :ranking, updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ranking": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ranking)},
			":now":     &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		return fmt.Errorf("failed to update player ranking: %w", err)
	}

	return nil
}

// Transactions

func (r *playerRepo) GetTransactionForAddPoints(
	ctx context.Context,
	tournamentId, userId string,
	delta int,
) types.Update {
	return types.Update{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.PlayerSK(userId)},
		},
		UpdateExpression: aws.String("ADD points :delta SET updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}
}
