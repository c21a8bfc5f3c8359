package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session stores the full session document as a single JSONB column; the
// store only supports document-level reads and writes, which is what the
// orchestrator's read-modify-write cycle relies on.
type Session struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Document              datatypes.JSON `gorm:"type:jsonb;not null"`
	ClarificationComplete bool           `gorm:"not null;default:false"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	LastActivity          time.Time      `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
