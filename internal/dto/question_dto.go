package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	Text      string `json:"text"`
	Anonymous bool   `json:"anonymous"`
}

type AnswerRequest struct {
	Text string `json:"text"`
}

type QuestionResponse struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	IsAnonymous bool      `json:"is_anonymous"`
	SenderName  string    `json:"sender_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type FeedItem struct {
	QuestionText string    `json:"question_text"`
	IsAnonymous  bool      `json:"is_anonymous"`
	AnswerText   string    `json:"answer_text"`
	PublicID     string    `json:"public_id"`
	Author       string    `json:"author"`
	AnsweredAt   time.Time `json:"answered_at"`
}
