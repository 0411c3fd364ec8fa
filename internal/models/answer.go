package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is the single response to a question, authored by the question's
// receiver. PublicID is the opaque token used for permalinks instead of the
// row id; it is assigned once and never changes.
type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"question_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	PublicID   string    `gorm:"size:32;not null;uniqueIndex" json:"public_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	Question   Question  `gorm:"foreignKey:QuestionID" json:"-"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
}

func (a *Answer) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PublicID == "" {
		a.PublicID = NewPublicID()
	}
	return nil
}

func (Answer) TableName() string {
	return "answers"
}

// NewPublicID returns a 16-character random hex token for answer permalinks.
func NewPublicID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
