package models

import (
	"fmt"
	"time"
)

// UserProfile is a read-mostly projection of the external user directory:
// display attributes plus the location keys the geographic scopes group by.
type UserProfile struct {
	UserId   string `dynamodbav:"user_id" json:"userId"`
	Username string `dynamodbav:"username" json:"username"`
	Avatar   string `dynamodbav:"avatar" json:"avatar"`
	Country  string `dynamodbav:"country" json:"country"`
	State    string `dynamodbav:"state" json:"state"`
	City     string `dynamodbav:"city" json:"city"`

	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

func ProfilePK(userID string) string {
	return fmt.Sprintf("PROFILE#%s", userID)
}
