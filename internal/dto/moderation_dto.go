package dto

import (
	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/models"
)

type ModerateQuestionRequest struct {
	Action string `json:"action"` // "hide" or "flag"
}

type ReportAnswerRequest struct {
	Reason string `json:"reason"`
}

type CreateBlockRequest struct {
	UserID    *uuid.UUID `json:"user_id"`
	IPAddress string     `json:"ip_address"`
	Reason    string     `json:"reason"`
	Hours     string     `json:"hours"` // empty or unparseable means indefinite
}

// FlagAlert is one computed alert line on the admin overview: a receiver/IP
// pair whose flagged-question count crossed the alert threshold.
type FlagAlert struct {
	ReceiverID       uuid.UUID `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username"`
	IPAddress        string    `json:"ip_address"`
	FlaggedCount     int64     `json:"flagged_count"`
}

type ModerationOverview struct {
	FlaggedQuestions  []models.Question     `json:"flagged_questions"`
	UnresolvedReports []models.AnswerReport `json:"unresolved_reports"`
	Blocks            []models.Block        `json:"blocks"`
	Alerts            []FlagAlert           `json:"alerts"`
}
