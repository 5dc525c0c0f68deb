package models

import (
	"fmt"
	"time"
)

// Challenge is immutable once written. QuestionIds keeps the sampled order
// so the question read path can resolve ids without re-sorting.
type Challenge struct {
	ChallengeId     string    `dynamodbav:"challenge_id" json:"challengeId"`
	TournamentId    string    `dynamodbav:"tournament_id" json:"tournamentId"`
	Name            string    `dynamodbav:"name" json:"name"`
	Category        string    `dynamodbav:"category" json:"category"`
	Level           string    `dynamodbav:"level" json:"level"`
	TimeLimit       int       `dynamodbav:"time_limit" json:"timeLimit"`
	QuestionsNumber int       `dynamodbav:"questions_number" json:"questionsNumber"`
	QuestionIds     []string  `dynamodbav:"question_ids" json:"questionIds"`
	CreatedAt       time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// Key handlers
func ChallengePK(challengeID string) string {
	return fmt.Sprintf("CHALLENGE#%s", challengeID)
}

func ChallengeSeqGSI1SK(seq int) string {
	return fmt.Sprintf("CHALLENGE#%04d", seq)
}
