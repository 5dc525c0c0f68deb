package models

import (
	"fmt"
	"time"
)

// ArenaEntry is ephemeral queue membership. The PK carries the user id, so
// the table itself enforces at most one entry per user.
type ArenaEntry struct {
	UserId   string    `dynamodbav:"user_id" json:"userId"`
	QueuedAt time.Time `dynamodbav:"queued_at" json:"queuedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

func ArenaPK(userID string) string {
	return fmt.Sprintf("ARENA#%s", userID)
}
