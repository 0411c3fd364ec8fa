package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question is a directed ask from an optional sender to a receiver.
// SenderID is nil for anonymous-origin questions (unauthenticated visitors).
// IsHidden and IsFlagged are only ever set, never cleared; flags are
// permanent audit markers.
type Question struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	ReceiverID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	IsAnonymous bool       `gorm:"default:false" json:"is_anonymous"`
	Text        string     `gorm:"size:500;not null" json:"text"`
	IPAddress   string     `gorm:"size:45;not null;index" json:"-"`
	IsHidden    bool       `gorm:"default:false" json:"is_hidden"`
	IsFlagged   bool       `gorm:"default:false" json:"is_flagged"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	Sender      *User      `gorm:"foreignKey:SenderID" json:"-"`
	Receiver    User       `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (q *Question) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (Question) TableName() string {
	return "questions"
}
