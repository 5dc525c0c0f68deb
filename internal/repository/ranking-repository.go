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

// Location carries the grouping keys for the geographic scopes.
type Location struct {
	Country string
	State   string
	City    string
}

type RankingRepository interface {
	Get(ctx context.Context, userId string) (*models.RankingEntry, error)
	GetByUserIds(ctx context.Context, userIds []string) ([]models.RankingEntry, error)
	// UpsertPoints folds a points contribution into the user's ledger row,
	// creating it with the given location on first write.
	UpsertPoints(ctx context.Context, userId string, delta int, loc Location) (*models.RankingEntry, error)
	// ListAll reads the whole ledger in one paginated query pass. Rank
	// computation happens in memory on that snapshot; no row locks.
	ListAll(ctx context.Context) ([]models.RankingEntry, error)
	SaveRanks(ctx context.Context, entries []models.RankingEntry) error
}

type rankingRepo struct {
	db *database.DynamoDBClient
}

func NewRankingRepository(db *database.DynamoDBClient) RankingRepository {
	return &rankingRepo{db: db}
}

func (r *rankingRepo) Get(ctx context.Context, userId string) (*models.RankingEntry, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.RankingPK(userId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get ranking entry: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "ranking entry not found")
	}

	var entry models.RankingEntry
	if err := attributevalue.UnmarshalMap(result.Item, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking entry: %w", err)
	}

	return &entry, nil
}

func (r *rankingRepo) GetByUserIds(ctx context.Context, userIds []string) ([]models.RankingEntry, error) {
	if len(userIds) == 0 {
		return nil, nil
	}

	entries := make([]models.RankingEntry, 0, len(userIds))

	// BatchGetItem caps at 100 keys per call.
	for start := 0; start < len(userIds); start += 100 {
		end := start + 100
		if end > len(userIds) {
			end = len(userIds)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range userIds[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: models.RankingPK(id)},
				"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
			})
		}

		result, err := r.db.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.db.Table(): {Keys: keys},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get ranking entries: %w", err)
		}

		var batch []models.RankingEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.db.Table()], &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ranking entries: %w", err)
		}
		entries = append(entries, batch...)
	}

	// BatchGetItem does not preserve request order.
	byUser := make(map[string]models.RankingEntry, len(entries))
	for _, e := range entries {
		byUser[e.UserId] = e
	}

	ordered := make([]models.RankingEntry, 0, len(entries))
	for _, id := range userIds {
		if e, ok := byUser[id]; ok {
			ordered = append(ordered, e)
		}
	}

	return ordered, nil
}

func (r *rankingRepo) UpsertPoints(
	ctx context.Context,
	userId string,
	delta int,
	loc Location,
) (*models.RankingEntry, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.RankingPK(userId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
		UpdateExpression: aws.String(
			"ADD points :delta " +
				"SET user_id = :user, country = :country, #state = :state, city = :city, " +
				"GSI1PK = :gsi1pk, GSI1SK = :gsi1sk, " +
				"created_at = if_not_exists(created_at, :now), updated_at = :now"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
			":user":    &types.AttributeValueMemberS{Value: userId},
			":country": &types.AttributeValueMemberS{Value: loc.Country},
			":state":   &types.AttributeValueMemberS{Value: loc.State},
			":city":    &types.AttributeValueMemberS{Value: loc.City},
			":gsi1pk":  &types.AttributeValueMemberS{Value: models.RankingGSI1PK()},
			":gsi1sk":  &types.AttributeValueMemberS{Value: models.UserGSI1PK(userId)},
			":now":     &types.AttributeValueMemberS{Value: now},
		},
		ReturnValues: types.ReturnValueAllNew,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to upsert ranking points: %w", err)
	}

	var entry models.RankingEntry
	if err := attributevalue.UnmarshalMap(result.Attributes, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking entry: %w", err)
	}

	return &entry, nil
}

func (r *rankingRepo) ListAll(ctx context.Context) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: models.RankingGSI1PK()},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list ranking entries: %w", err)
		}

		var page []models.RankingEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ranking entries: %w", err)
		}
		entries = append(entries, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return entries, nil
}

func (r *rankingRepo) SaveRanks(ctx context.Context, entries []models.RankingEntry) error {
	// BatchWriteItem caps at 25 puts per call.
	for start := 0; start < len(entries); start += 25 {
		end := start + 25
		if end > len(entries) {
			end = len(entries)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for i := start; i < end; i++ {
			entry := entries[i]
			entry.PK = models.RankingPK(entry.UserId)
			entry.SK = models.MetaSK()
			entry.GSI1PK = models.RankingGSI1PK()
			entry.GSI1SK = models.UserGSI1PK(entry.UserId)

			item, err := attributevalue.MarshalMap(entry)
			if err != nil {
				return fmt.Errorf("failed to marshal ranking entry: %w", err)
			}
			writes = append(writes, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		_, err := r.db.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.db.Table(): writes,
			},
		})
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save ranking entries")
		}
	}

	return nil
}
