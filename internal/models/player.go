package models

import (
	"fmt"
	"time"
)

// Player is one (user, tournament) row. Ranking 0 means unranked; the
// ranking service is the only writer of that field.
type Player struct {
	UserId       string    `dynamodbav:"user_id" json:"userId"`
	TournamentId string    `dynamodbav:"tournament_id" json:"tournamentId"`
	Points       int       `dynamodbav:"points" json:"points"`
	Ranking      int       `dynamodbav:"ranking" json:"ranking"`
	JoinedAt     time.Time `dynamodbav:"joined_at" json:"joinedAt"`
	UpdatedAt    time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// Key handlers
func PlayerSK(userID string) string {
	return fmt.Sprintf("PLAYER#%s", userID)
}

func UserGSI1PK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func PlayerJoinedGSI1SK(tournamentID, joinedAt string) string {
	return fmt.Sprintf("TOURNAMENT#%s#JOINED#%s", tournamentID, joinedAt)
}
