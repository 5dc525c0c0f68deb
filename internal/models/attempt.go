package models

import (
	"fmt"
	"time"
)

// Attempt is one player's recorded result for one challenge, keyed directly
// by (challenge, user) so duplicate detection is a single conditional put.
type Attempt struct {
	ChallengeId     string    `dynamodbav:"challenge_id" json:"challengeId"`
	TournamentId    string    `dynamodbav:"tournament_id" json:"tournamentId"`
	UserId          string    `dynamodbav:"user_id" json:"userId"`
	Points          float64   `dynamodbav:"points" json:"points"`
	BonusTimePoints float64   `dynamodbav:"bonus_time_points" json:"bonusTimePoints"`
	TotalPoints     int       `dynamodbav:"total_points" json:"totalPoints"`
	CreatedAt       time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// Key handlers
func AttemptSK(userID string) string {
	return fmt.Sprintf("ATTEMPT#%s", userID)
}

func AttemptGSI1SK(tournamentID, challengeID string) string {
	return fmt.Sprintf("ATTEMPT#%s#%s", tournamentID, challengeID)
}

func AttemptTournamentGSI1SKPrefix(tournamentID string) string {
	return fmt.Sprintf("ATTEMPT#%s#", tournamentID)
}
