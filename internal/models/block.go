package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Block is a standing admission restriction keyed by user id, IP address, or
// both. A nil ExpiresAt means the block is indefinite.
type Block struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	IPAddress *string    `gorm:"size:45;index" json:"ip_address"`
	Reason    string     `gorm:"size:500" json:"reason"`
	ExpiresAt *time.Time `json:"expires_at"`
	Active    bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
}

func (b *Block) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Block) TableName() string {
	return "blocks"
}

// Expired reports whether the block has a non-nil expiry at or before now.
func (b *Block) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// InEffect reports whether the block should currently reject submissions.
func (b *Block) InEffect(now time.Time) bool {
	return b.Active && !b.Expired(now)
}
