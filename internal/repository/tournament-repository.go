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

type TournamentRepository interface {
	GetById(ctx context.Context, tournamentId string) (*models.Tournament, error)
	ListAll(ctx context.Context) ([]models.Tournament, error)
	ListActive(ctx context.Context) ([]models.Tournament, error)
	// CompleteTournament flips ACTIVE -> COMPLETED. The conditional write is
	// what makes a concurrent double-finish lose.
	CompleteTournament(ctx context.Context, tournamentId string) error
	// MarkFinalized records that the post-completion ranking pass ran.
	// A completed tournament without this marker resumes finalization.
	MarkFinalized(ctx context.Context, tournamentId string) error

	// Transactions
	GetTransactionForCreate(ctx context.Context, tournament *models.Tournament) (types.Put, error)
	// GetTransactionForAwardBonus stamps the bonus recipient on the
	// tournament row. The attribute_not_exists condition makes the bonus
	// credit in the same transaction exactly-once across retries.
	GetTransactionForAwardBonus(ctx context.Context, tournamentId, userId string) types.Update
}

type tournamentRepo struct {
	db *database.DynamoDBClient
}

func NewTournamentRepository(db *database.DynamoDBClient) TournamentRepository {
	return &tournamentRepo{db: db}
}

func (r *tournamentRepo) GetById(ctx context.Context, tournamentId string) (*models.Tournament, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "tournament not found")
	}

	var tournament models.Tournament
	if err := attributevalue.UnmarshalMap(result.Item, &tournament); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament: %w", err)
	}

	return &tournament, nil
}

func (r *tournamentRepo) ListAll(ctx context.Context) ([]models.Tournament, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.TournamentGSI1PK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	var tournaments []models.Tournament
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &tournaments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournaments: %w", err)
	}

	return tournaments, nil
}

func (r *tournamentRepo) ListActive(ctx context.Context) ([]models.Tournament, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		FilterExpression:       aws.String("#status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: models.TournamentGSI1PK()},
			":active": &types.AttributeValueMemberS{Value: string(models.TournamentActive)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}

	var tournaments []models.Tournament
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &tournaments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournaments: %w", err)
	}

	return tournaments, nil
}

func (r *tournamentRepo) CompleteTournament(ctx context.Context, tournamentId string) error {
	_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		UpdateExpression: aws.String("SET #status = :completed, updated_at = :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed": &types.AttributeValueMemberS{Value: string(models.TournamentCompleted)},
			":active":    &types.AttributeValueMemberS{Value: string(models.TournamentActive)},
			":now":       &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND #status = :active"),
	})

	if err != nil {
		if database.IsConditionalCheckFailure(err) {
			return apperrors.New(apperrors.CodeTournamentState, "tournament is not active")
		}
		return fmt.Errorf("failed to complete tournament: %w", err)
	}

	return nil
}

func (r *tournamentRepo) MarkFinalized(ctx context.Context, tournamentId string) error {
	_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		UpdateExpression: aws.String("SET finalized_at = :now, updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		return fmt.Errorf("failed to mark tournament finalized: %w", err)
	}

	return nil
}

// Transactions

func (r *tournamentRepo) GetTransactionForCreate(
	ctx context.Context,
	tournament *models.Tournament,
) (types.Put, error) {
	tournament.PK = models.TournamentPK(tournament.TournamentId)
	tournament.SK = models.MetaSK()
	tournament.GSI1PK = models.TournamentGSI1PK()
	tournament.GSI1SK = models.StartTimeGSI1SK(tournament.StartsAt.UTC().Format(time.RFC3339))
	tournament.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(tournament)
	if err != nil {
		return types.Put{}, fmt.Errorf("failed to marshal tournament: %w", err)
	}

	return types.Put{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}, nil
}

func (r *tournamentRepo) GetTransactionForAwardBonus(ctx context.Context, tournamentId, userId string) types.Update {
	return types.Update{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.TournamentPK(tournamentId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		UpdateExpression: aws.String("SET bonus_user_id = :user, updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberS{Value: userId},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_not_exists(bonus_user_id)"),
	}
}
