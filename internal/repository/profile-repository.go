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

type ProfileRepository interface {
	Get(ctx context.Context, userId string) (*models.UserProfile, error)
	GetByUserIds(ctx context.Context, userIds []string) ([]models.UserProfile, error)
	Put(ctx context.Context, profile *models.UserProfile) error
}

type profileRepo struct {
	db *database.DynamoDBClient
}

func NewProfileRepository(db *database.DynamoDBClient) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, userId string) (*models.UserProfile, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ProfilePK(userId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	if result.Item == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user profile not found")
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(result.Item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepo) GetByUserIds(ctx context.Context, userIds []string) ([]models.UserProfile, error) {
	if len(userIds) == 0 {
		return nil, nil
	}

	profiles := make([]models.UserProfile, 0, len(userIds))

	for start := 0; start < len(userIds); start += 100 {
		end := start + 100
		if end > len(userIds) {
			end = len(userIds)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range userIds[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: models.ProfilePK(id)},
				"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
			})
		}

		result, err := r.db.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.db.Table(): {Keys: keys},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get user profiles: %w", err)
		}

		var batch []models.UserProfile
		if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.db.Table()], &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user profiles: %w", err)
		}
		profiles = append(profiles, batch...)
	}

	return profiles, nil
}

func (r *profileRepo) Put(ctx context.Context, profile *models.UserProfile) error {
	profile.PK = models.ProfilePK(profile.UserId)
	profile.SK = models.MetaSK()
	profile.UpdatedAt = time.Now()

	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})

	if err != nil {
		return fmt.Errorf("failed to put user profile: %w", err)
	}

	return nil
}
