package models

import (
	"fmt"
	"time"
)

// RankingEntry is the durable cross-tournament ledger row for one user.
// The four rank numbers are maintained independently, each within its own
// grouping scope.
type RankingEntry struct {
	UserId  string `dynamodbav:"user_id" json:"userId"`
	Points  int    `dynamodbav:"points" json:"points"`
	Country string `dynamodbav:"country" json:"country"`
	State   string `dynamodbav:"state" json:"state"`
	City    string `dynamodbav:"city" json:"city"`

	RankingInternational int `dynamodbav:"ranking_international" json:"rankingInternational"`
	RankingNational      int `dynamodbav:"ranking_national" json:"rankingNational"`
	RankingState         int `dynamodbav:"ranking_state" json:"rankingState"`
	RankingCity          int `dynamodbav:"ranking_city" json:"rankingCity"`

	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// RankingScope selects which of the four leaderboards a read populates.
type RankingScope string

const (
	ScopeInternational RankingScope = "international"
	ScopeNational      RankingScope = "national"
	ScopeState         RankingScope = "state"
	ScopeCity          RankingScope = "city"
)

// Key handlers
func RankingPK(userID string) string {
	return fmt.Sprintf("RANKING#%s", userID)
}

func RankingGSI1PK() string {
	return "RANKING"
}
