package models

import (
	"fmt"
	"time"
)

type Tournament struct {
	TournamentId string           `dynamodbav:"tournament_id" json:"tournamentId"`
	Title        string           `dynamodbav:"title" json:"title"`
	Resume       string           `dynamodbav:"resume" json:"resume"`
	Status       TournamentStatus `dynamodbav:"status" json:"status"`
	Reward       int              `dynamodbav:"reward" json:"reward"`
	CurrencyId   string           `dynamodbav:"currency_id" json:"currencyId"`
	OwnerId      string           `dynamodbav:"owner_id" json:"ownerId"`
	StartsAt     time.Time        `dynamodbav:"starts_at" json:"startsAt"`
	EndsAt       time.Time        `dynamodbav:"ends_at" json:"endsAt"`
	CreatedAt    time.Time        `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `dynamodbav:"updated_at" json:"updatedAt"`

	// BonusUserId records the player credited with the winner bonus, and
	// FinalizedAt records that the final ranking pass ran. Both are absent
	// until finish time so finalization can resume after a partial failure
	// without paying anything twice.
	BonusUserId string     `dynamodbav:"bonus_user_id,omitempty" json:"bonusUserId,omitempty"`
	FinalizedAt *time.Time `dynamodbav:"finalized_at,omitempty" json:"finalizedAt,omitempty"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "ACTIVE"
	TournamentCompleted TournamentStatus = "COMPLETED"
)

// Key handlers
func TournamentPK(tournamentID string) string {
	return fmt.Sprintf("TOURNAMENT#%s", tournamentID)
}

func MetaSK() string {
	return "META"
}

func TournamentGSI1PK() string {
	return "TOURNAMENT"
}

func StartTimeGSI1SK(startTime string) string {
	return fmt.Sprintf("START#%s", startTime)
}

func ExtractTournamentID(pk string) (string, error) {
	if len(pk) < 12 || pk[:11] != "TOURNAMENT#" {
		return "", fmt.Errorf("invalid tournament PK format: %s", pk)
	}
	return pk[11:], nil
}
