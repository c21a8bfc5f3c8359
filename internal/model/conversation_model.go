package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Conversation is the denormalized training/analytics record, one per session.
type Conversation struct {
	SessionId   uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Document    datatypes.JSON `gorm:"type:jsonb;not null"`
	HasFeedback bool           `gorm:"not null;default:false;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
