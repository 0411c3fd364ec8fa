package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnswerReport is a visitor-submitted flag on a published answer. The
// reporter may be anonymous; the reporting IP is always captured for audit.
// Reports are resolved by admins and never deleted or reopened.
type AnswerReport struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AnswerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"answer_id"`
	ReporterUserID *uuid.UUID `gorm:"type:uuid" json:"reporter_user_id"`
	ReporterIP     string     `gorm:"size:45;not null" json:"-"`
	Reason         string     `gorm:"size:500" json:"reason"`
	Resolved       bool       `gorm:"not null;default:false" json:"resolved"`
	CreatedAt      time.Time  `json:"created_at"`
	Answer         Answer     `gorm:"foreignKey:AnswerID" json:"-"`
	Reporter       *User      `gorm:"foreignKey:ReporterUserID" json:"-"`
}

func (r *AnswerReport) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (AnswerReport) TableName() string {
	return "answer_reports"
}
