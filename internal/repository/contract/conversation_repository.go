package contract

import (
	"context"

	"github.com/google/uuid"

	"greentrip-be/internal/entity"
)

// ConversationRepository stores the training/analytics projection. Save is an
// upsert keyed by session id.
type ConversationRepository interface {
	Get(ctx context.Context, sessionId uuid.UUID) (*entity.Conversation, error)
	Save(ctx context.Context, conversation *entity.Conversation) error
	FindAll(ctx context.Context, limit int) ([]*entity.Conversation, error)
}
