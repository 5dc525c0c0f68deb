package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RankingBoard serves the paginated geographic leaderboard reads. One ZSET
// per scope key, member=userId, score=the rank computed by the ledger
// recompute. Storing the rank (not the points) preserves the tie-break
// order exactly; reads are a plain ascending ZRANGE.
type RankingBoard struct {
	client *redis.Client
}

func NewRankingBoard(client *RedisClient) *RankingBoard {
	return &RankingBoard{client: client.GetClient()}
}

// Key Generation Helpers

func InternationalKey() string {
	return "ranking:international"
}

func NationalKey(country string) string {
	return fmt.Sprintf("ranking:national:%s", country)
}

func StateKey(country, state string) string {
	return fmt.Sprintf("ranking:state:%s:%s", country, state)
}

func CityKey(country, state, city string) string {
	return fmt.Sprintf("ranking:city:%s:%s:%s", country, state, city)
}

type BoardMember struct {
	UserId string
	Rank   int
}

// registryKey holds the set of board keys written by the last rebuild, so
// the next rebuild can delete boards that no longer have any members.
const registryKey = "ranking:boards"

// staleKeys returns the previously written board keys absent from the new
// board set.
func staleKeys(known []string, boards map[string][]BoardMember) []string {
	var stale []string
	for _, key := range known {
		if _, ok := boards[key]; !ok {
			stale = append(stale, key)
		}
	}
	return stale
}

// Rebuild replaces every board in one pipeline. Deleting before re-adding
// drops members whose location attributes changed, and boards missing from
// the new set are deleted outright so a scope whose last member moved away
// does not keep serving stale entries.
func (r *RankingBoard) Rebuild(ctx context.Context, boards map[string][]BoardMember) error {
	if len(boards) == 0 {
		return nil
	}

	known, err := r.client.SMembers(ctx, registryKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := r.client.Pipeline()

	for _, key := range staleKeys(known, boards) {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, registryKey, key)
	}

	for key, members := range boards {
		pipe.SAdd(ctx, registryKey, key)
		pipe.Del(ctx, key)
		zs := make([]redis.Z, 0, len(members))
		for _, m := range members {
			zs = append(zs, redis.Z{
				Score:  float64(m.Rank),
				Member: m.UserId,
			})
		}
		if len(zs) > 0 {
			pipe.ZAdd(ctx, key, zs...)
		}
	}

	_, err = pipe.Exec(ctx)
	return err
}

// Page returns user ids ordered by rank for one scope board.
func (r *RankingBoard) Page(ctx context.Context, key string, skip, first int) ([]string, error) {
	stop := int64(skip + first - 1)
	members, err := r.client.ZRange(ctx, key, int64(skip), stop).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return members, err
}
