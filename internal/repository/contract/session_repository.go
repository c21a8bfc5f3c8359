package contract

import (
	"context"

	"github.com/google/uuid"

	"greentrip-be/internal/entity"
)

// SessionRepository is the document store for live sessions. Get returns
// (nil, nil) when the session does not exist; Update replaces the whole
// document (document-level write granularity).
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}
