package models

import (
	"fmt"
	"time"
)

type Question struct {
	QuestionId          string    `dynamodbav:"question_id" json:"questionId"`
	Question            string    `dynamodbav:"question" json:"question"`
	Categories          string    `dynamodbav:"categories" json:"categories"`
	Tags                string    `dynamodbav:"tags" json:"tags"`
	Level               string    `dynamodbav:"level" json:"level"`
	Answers             string    `dynamodbav:"answers" json:"answers"`
	AnswerSelectionType string    `dynamodbav:"answer_selection_type" json:"answerSelectionType"`
	QuestionType        string    `dynamodbav:"question_type" json:"questionType"`
	CorrectAnswer       string    `dynamodbav:"correct_answer" json:"correctAnswer"`
	Explanation         string    `dynamodbav:"explanation" json:"explanation"`
	CreatedAt           time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

type QuestionCategory struct {
	CategoryId  string    `dynamodbav:"category_id" json:"categoryId"`
	Name        string    `dynamodbav:"name" json:"name"`
	Description string    `dynamodbav:"description" json:"description"`
	ParentId    string    `dynamodbav:"parent_id" json:"parentId"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// Key handlers
func QuestionPK(questionID string) string {
	return fmt.Sprintf("QUESTION#%s", questionID)
}

func QuestionGSI1PK() string {
	return "QUESTION"
}

func CreatedGSI1SK(createdAt string) string {
	return fmt.Sprintf("CREATED#%s", createdAt)
}

func CategoryPK(categoryID string) string {
	return fmt.Sprintf("QCATEGORY#%s", categoryID)
}

func CategoryGSI1PK() string {
	return "QCATEGORY"
}

func CategoryNameGSI1SK(name string) string {
	return fmt.Sprintf("NAME#%s", name)
}
